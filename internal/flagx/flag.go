// Package flagx holds helpers for components that each parse only their own
// subset of the command line.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs keeps only the flags listed in allowed, together with their
// values. Both "-c conf.json" and "-config=conf.json" forms are recognised;
// a following argument that starts with "-" is never taken as a value.
func FilterArgs(args []string, allowed []string) []string {
	set := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		set[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, found := strings.Cut(arg, "="); found && strings.HasPrefix(arg, "-") {
			if _, ok := set[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := set[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}
	return filtered
}

// ConfigPath returns the JSON config file named by -c or -config in args,
// or "" when neither is present.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}
