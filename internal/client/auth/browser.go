package auth

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// OpenBrowser launches the platform's default browser on url.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// PrintingOpener writes the URL to w and then tries to open it, so the user
// can still copy it by hand on a headless machine.
func PrintingOpener(w io.Writer, open BrowserOpener) BrowserOpener {
	return func(url string) error {
		fmt.Fprintf(w, "Open this URL to sign in:\n  %s\n", url)
		if open != nil {
			_ = open(url)
		}
		return nil
	}
}
