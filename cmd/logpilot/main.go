// Package main is a small command line tool around a logpilot Stream.
// Use it to write lines into a stream from a shell script, to force a
// rotation check, to bundle a stream's logs, or to watch rotation in action.
//
// Usage:
//
//	logpilot [global options] <command> [arguments]
//
// Commands:
//
//	write [message...]  append one line, or every line from stdin
//	rotate              rotate the log now if it is over its size limit
//	bundle              zip the log and its archives into <name>.zip
//	demo                write fake logs until interrupted
//
// Examples:
//
//	logpilot --dir /tmp/logs --name myapp write "service started"
//	tail -f app.out | logpilot -c /etc/logpilot.yaml write
//	logpilot --dir /tmp/logs --max-size 7K --keep 5 --verbose demo
//	logpilot --dir /tmp/logs --name myapp bundle
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// Version can be injected with -ldflags "-X main.Version=1.0.0".
var Version = "0.1.0-dev"

func main() {
	os.Exit(run())
}

func createApp() *cli.Command {
	return &cli.Command{
		Name:    "logpilot",
		Usage:   "write, rotate and bundle local log files",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file; flags override it",
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "log directory (default: application data directory)",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "stream name (default: app_log)",
			},
			&cli.StringFlag{
				Name:    "max-size",
				Aliases: []string{"s"},
				Usage:   "rotate after this size, like 512K or 10M (default: 512K)",
			},
			&cli.IntFlag{
				Name:    "keep",
				Aliases: []string{"k"},
				Usage:   "archives to keep (default: 3)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "print rotation progress",
			},
		},
		// run() maps errors to exit codes; keep cli from calling os.Exit.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Commands: []*cli.Command{
			createWriteCommand(),
			createRotateCommand(),
			createBundleCommand(),
			createDemoCommand(),
		},
	}
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := createApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "logpilot: %v\n", err)

		if exitErr, ok := err.(cli.ExitCoder); ok { //nolint:errorlint
			return exitErr.ExitCode()
		}

		return 1
	}

	return 0
}
