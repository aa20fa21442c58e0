package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"golift.io/logpilot"
)

// Demo defaults.
const (
	bytesPerLogLine = 120
	timeBetweenLogs = 5 * time.Millisecond
)

func createWriteCommand() *cli.Command {
	return &cli.Command{
		Name:      "write",
		Usage:     "append a line, or every line read from stdin",
		ArgsUsage: "[message...]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			stream, done, err := newStream(cmd)
			if err != nil {
				return err
			}
			defer done()

			if cmd.Args().Len() > 0 {
				stream.Log(strings.Join(cmd.Args().Slice(), " "))
				return nil
			}

			return writeLines(stream, os.Stdin)
		},
	}
}

// writeLines logs every line from the reader.
func writeLines(stream *logpilot.Stream, input io.Reader) error {
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		stream.Log(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	return nil
}

func createRotateCommand() *cli.Command {
	return &cli.Command{
		Name:  "rotate",
		Usage: "rotate the log now if it is over its size limit",
		Action: func(_ context.Context, cmd *cli.Command) error {
			stream, done, err := newStream(cmd)
			if err != nil {
				return err
			}
			defer done()

			stream.RotateIfNeeded()
			fmt.Println(stream.CurrentLogFile())

			return nil
		},
	}
}

func createBundleCommand() *cli.Command {
	return &cli.Command{
		Name:  "bundle",
		Usage: "zip the log and its archives, replacing the previous bundle",
		Action: func(_ context.Context, cmd *cli.Command) error {
			stream, done, err := newStream(cmd)
			if err != nil {
				return err
			}
			defer done()

			path, err := stream.Bundle()
			if err != nil {
				return cli.Exit(err.Error(), 2) //nolint:mnd
			} else if path == "" {
				return cli.Exit("bundle was not created, see messages above", 1)
			}

			fmt.Println(path)

			return nil
		},
	}
}

func createDemoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "write fake logs to see rotation in action",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "lines",
				Usage: "stop after this many lines; 0 runs until interrupted",
			},
			&cli.IntFlag{
				Name:  "bytes",
				Usage: "bytes per log line",
				Value: bytesPerLogLine,
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "time between log lines",
				Value: timeBetweenLogs,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			stream, done, err := newStream(cmd)
			if err != nil {
				return err
			}
			defer done()

			makeLogs(ctx, stream, cmd.Int("lines"), cmd.Int("bytes"), cmd.Duration("interval"))

			return nil
		},
	}
}

// Write fake logs!
func makeLogs(ctx context.Context, stream *logpilot.Stream, lines, size int, interval time.Duration) {
	logLine := strings.Repeat("_", max(size, 1))

	if interval <= 0 {
		interval = timeBetweenLogs
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for count := 1; lines == 0 || count <= lines; count++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Print(".")
			stream.Logf("%d %s", count, logLine)
		}
	}
}
