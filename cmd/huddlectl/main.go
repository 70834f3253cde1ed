package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/matheus3301/huddle/internal/tui/client"
	"github.com/matheus3301/huddle/internal/workspace"
)

type cli struct {
	c         *client.Client
	workspace string
	user      string
	json      bool
}

func main() {
	workspaceFlag := flag.String("workspace", "", "workspace name (overrides config default)")
	userFlag := flag.String("user", "", "acting user id (overrides config user_id)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	noStart := flag.Bool("no-start", false, "do not start the daemon if it is not running")
	flag.Usage = printUsage
	flag.Parse()

	name := workspace.Resolve(*workspaceFlag)
	if err := workspace.ValidateName(name); err != nil {
		fatalf("%v", err)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	socketPath := workspace.SocketPath(name)
	if !*noStart {
		if err := client.EnsureDaemon(name, socketPath); err != nil {
			fatalf("%v", err)
		}
	}

	c, err := client.New(socketPath)
	if err != nil {
		fatalf("cannot connect to daemon for workspace %q: %v", name, err)
	}
	defer func() { _ = c.Close() }()

	app := &cli{c: c, workspace: name, user: workspace.ResolveUser(*userFlag), json: *jsonFlag}

	// tail runs until interrupted; everything else is a single round trip.
	if args[0] == "tail" {
		app.tail(args[1:])
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch args[0] {
	case "status":
		app.status(ctx)
	case "conversations":
		app.conversations(ctx)
	case "messages":
		app.messages(ctx, args[1:])
	case "send":
		app.send(ctx, args[1:])
	case "dm":
		app.dm(ctx, args[1:])
	case "channel":
		app.channel(ctx, args[1:])
	case "members":
		app.members(ctx, args[1:])
	case "users":
		app.users(ctx, args[1:])
	case "profile":
		app.profile(ctx, args[1:])
	case "search":
		app.search(ctx, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: huddlectl [--workspace <name>] [--user <id>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status                              Show daemon status")
	fmt.Fprintln(os.Stderr, "  conversations                       List your conversations")
	fmt.Fprintln(os.Stderr, "  messages <conversation>             Print a conversation's history")
	fmt.Fprintln(os.Stderr, "  tail [--resync-on-drop] <conv>      Follow a conversation live")
	fmt.Fprintln(os.Stderr, "  send <conversation> <text>          Send a message")
	fmt.Fprintln(os.Stderr, "  dm <user>                           Open a direct conversation")
	fmt.Fprintln(os.Stderr, "  channel create [--desc d] <name>    Create a channel")
	fmt.Fprintln(os.Stderr, "  channel clone <channel>             Clone a channel")
	fmt.Fprintln(os.Stderr, "  members list <conversation>         List members")
	fmt.Fprintln(os.Stderr, "  members add [--role r] <conv> <user>")
	fmt.Fprintln(os.Stderr, "  members remove <conv> <user>")
	fmt.Fprintln(os.Stderr, "  users [query]                       Find people")
	fmt.Fprintln(os.Stderr, "  profile set [flags] <id>            Create or update a profile")
	fmt.Fprintln(os.Stderr, "  search [--in conv] <query>          Search messages")
}

func (a *cli) requireUser() string {
	if a.user == "" {
		fatalf("no acting user: pass --user or set user_id in %s", workspace.ConfigPath())
	}
	return a.user
}

func needArgs(args []string, n int, usage string) {
	if len(args) < n {
		fmt.Fprintf(os.Stderr, "usage: huddlectl %s\n", usage)
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func check(err error) {
	if err != nil {
		fatalf("%v", err)
	}
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}

func formatTime(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04")
}
