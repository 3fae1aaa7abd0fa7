package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests can provide a stub.
type execIface interface {
	isSignedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	New(ctx context.Context) error
	Save(ctx context.Context) error
	List(ctx context.Context) error
	Open(ctx context.Context, arg string) error
	Select(ctx context.Context, arg string) error
	Delete(ctx context.Context) error
	DeleteSelected(ctx context.Context) error
	DeleteAll(ctx context.Context) error
	Share(ctx context.Context) error
	SyncShared(ctx context.Context) error
	Export(ctx context.Context, format string) error
	Read(ctx context.Context) error
	ReadSelected(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	StopReading(ctx context.Context) error
	Settings(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
}

const signedOutHelp = "Available commands: register, login, exit"

const signedInHelp = `Available commands:
  new, save, list, open <n|id>, select <n|id>
  delete, delselected, delall
  share, syncshared
  export <md|txt|pdf>
  read, readselected, pause, resume, stopreading
  settings, delaccount, logout, exit`

// runREPL reads one line per iteration, dispatches the first token as the
// command, and loops until EOF or an exit command. Handler errors are
// printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, out io.Writer) {
	for {
		fmt.Fprintf(out, "chalkboard [%s]> ", statusFn())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		if cmd == "exit" || cmd == "quit" {
			fmt.Fprintln(out, "Bye!")
			return
		}
		if cmd == "help" {
			if a.isSignedIn() {
				fmt.Fprintln(out, signedInHelp)
			} else {
				fmt.Fprintln(out, signedOutHelp)
			}
			continue
		}

		var err error
		switch cmd {
		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		default:
			if !a.isSignedIn() {
				fmt.Fprintln(out, "Sign in first. "+signedOutHelp)
				continue
			}
			switch cmd {
			case "logout":
				err = a.Logout(ctx)
			case "new":
				err = a.New(ctx)
			case "save":
				err = a.Save(ctx)
			case "l", "list":
				err = a.List(ctx)
			case "open":
				err = a.Open(ctx, arg)
			case "select":
				err = a.Select(ctx, arg)
			case "delete":
				err = a.Delete(ctx)
			case "delselected":
				err = a.DeleteSelected(ctx)
			case "delall":
				err = a.DeleteAll(ctx)
			case "share":
				err = a.Share(ctx)
			case "syncshared":
				err = a.SyncShared(ctx)
			case "export":
				err = a.Export(ctx, arg)
			case "read":
				err = a.Read(ctx)
			case "readselected":
				err = a.ReadSelected(ctx)
			case "pause":
				err = a.Pause(ctx)
			case "resume":
				err = a.Resume(ctx)
			case "stopreading":
				err = a.StopReading(ctx)
			case "settings":
				err = a.Settings(ctx)
			case "delaccount":
				err = a.DeleteAccount(ctx)
			default:
				fmt.Fprintln(out, "Unknown command:", cmd)
				continue
			}
		}
		if err != nil {
			fmt.Fprintln(out, "Error:", err)
		}
	}
}
