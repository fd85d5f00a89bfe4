package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/corsfs/internal/scaffold"
	"github.com/Kush-Singh-26/corsfs/internal/server"
	"github.com/Kush-Singh-26/corsfs/internal/version"
)

func main() {
	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	switch command {
	case "serve":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err := server.Run(ctx, args)
		stop()
		if err != nil && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
			os.Exit(1)
		}
	case "init":
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		if err := scaffold.Run(afero.NewOsFs(), dir, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Println(version.String())
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: corsfs [command] [flags]")
	fmt.Println("\nCommands:")
	fmt.Println("  serve          Serve the current directory (default)")
	fmt.Println("  init [dir]     Write a starter site and corsfs.yaml")
	fmt.Println("  version        Print version information")
	fmt.Println("  help           Show this help message")
	fmt.Println("\nFlags for serve:")
	fmt.Println("  -port <n>      Port to listen on (default 3000)")
	fmt.Println("  -host <addr>   Address to bind (default all interfaces)")
	fmt.Println("  -root <dir>    Directory to serve (default .)")
	fmt.Println("  -start <page>  Page to open in the browser (default homepage.html)")
	fmt.Println("  -open=false    Do not open a browser")
	fmt.Println("  -livereload    Enable the /__livereload event stream")
	fmt.Println("  -compress      Gzip responses")
	fmt.Println("  -etag          Send content-hash ETags")
	fmt.Println("  -max-conns <n> Cap concurrent connections")
	fmt.Println("  -config <file> YAML config file (default ./corsfs.yaml)")
	fmt.Println("  -verbose       Log every request")
}
