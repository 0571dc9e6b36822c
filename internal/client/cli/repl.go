package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Google(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Update(ctx context.Context) error
	Shorten(ctx context.Context, url string) error
	List(ctx context.Context) error
	Copy(ctx context.Context, id string) error
	Open(ctx context.Context, id string) error
	Fetch(ctx context.Context, url string) error
}

const (
	helpLoggedOut = "Available commands: login, google, fetch <url>, exit"
	helpLoggedIn  = "Available commands: whoami, update, shorten <url>, (l)ist, copy <id>, open <id>, fetch <url>, logout, exit"
)

// runREPL starts a read–eval–print loop over reader.
//
// The first token of every line is the command. Link commands require a
// session; fetch, whoami and update are always accepted and report what the
// session allows. The loop exits on EOF or on "exit"/"quit". Handler errors
// are ignored here; handlers print their own.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("shonkhipto %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "login":
			_ = a.Login(ctx)

		case "google":
			_ = a.Google(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "update":
			_ = a.Update(ctx)

		case "fetch":
			if len(args) == 0 {
				printlnFn("Usage: fetch <url>")
				continue
			}
			_ = a.Fetch(ctx, args[0])

		case "shorten", "l", "list", "copy", "open":
			if !a.isLoggedIn() {
				printlnFn("Please log in first")
				continue
			}
			runLinkCommand(ctx, a, cmd, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func runLinkCommand(ctx context.Context, a execIface, cmd string, args []string) {
	if cmd == "l" || cmd == "list" {
		_ = a.List(ctx)
		return
	}
	if len(args) == 0 {
		if cmd == "shorten" {
			printlnFn("Usage: shorten <url>")
		} else {
			printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
		}
		return
	}

	switch cmd {
	case "shorten":
		_ = a.Shorten(ctx, args[0])
	case "copy":
		_ = a.Copy(ctx, args[0])
	case "open":
		_ = a.Open(ctx, args[0])
	}
}
