package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	flagUsage := func() {
		fmt.Fprintf(os.Stderr, "Usage: pieces <command> [flags] [args]\n\nCommands:\n"+
			"  ask       Ask one question and print the answer\n"+
			"  generate  Ask several questions, one per argument\n"+
			"  stream    Ask one question and print the answer as it arrives\n"+
			"  models    List the models Pieces OS supports\n"+
			"  mcp       Serve the copilot as MCP tools on stdio\n"+
			"\nRun 'pieces <command> -h' for the flags of a command.\n")
	}

	if len(os.Args) < 2 {
		flagUsage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error

	switch os.Args[1] {
	case "ask":
		err = runAsk(ctx, os.Args[2:])
	case "generate":
		err = runGenerate(ctx, os.Args[2:])
	case "stream":
		err = runStream(ctx, os.Args[2:])
	case "models":
		err = runModels(ctx, os.Args[2:])
	case "mcp":
		err = runMCP(ctx, os.Args[2:])
	case "-h", "-help", "--help", "help":
		flagUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		flagUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
