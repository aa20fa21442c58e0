package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golift.io/logpilot"
)

// ErrInvalidSize is returned for a max-size that is not a size.
var ErrInvalidSize = errors.New("invalid max size")

// fileConfig is the YAML config file layout. Every key is optional.
//
//	dir: /var/log/myapp
//	name: myapp
//	max_size: 10M
//	keep: 5
//	verbose: true
type fileConfig struct {
	Dir     string `koanf:"dir"`
	Name    string `koanf:"name"`
	MaxSize string `koanf:"max_size"`
	Keep    int    `koanf:"keep"`
	Verbose bool   `koanf:"verbose"`
}

// loadConfig reads the optional config file, then applies any flags that were set.
func loadConfig(cmd *cli.Command) (*fileConfig, error) {
	config := &fileConfig{}

	if path := cmd.String("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if config, err = parseConfig(data); err != nil {
			return nil, err
		}
	}

	if cmd.IsSet("dir") {
		config.Dir = cmd.String("dir")
	}

	if cmd.IsSet("name") {
		config.Name = cmd.String("name")
	}

	if cmd.IsSet("max-size") {
		config.MaxSize = cmd.String("max-size")
	}

	if cmd.IsSet("keep") {
		config.Keep = cmd.Int("keep")
	}

	if cmd.IsSet("verbose") {
		config.Verbose = cmd.Bool("verbose")
	}

	return config, nil
}

// parseConfig parses a YAML config file.
func parseConfig(data []byte) (*fileConfig, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config := &fileConfig{}
	if err := k.Unmarshal("", config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// parseSize accepts plain bytes (524288) or a size with a unit (512K, 10MB).
// Empty is zero: the library default.
func parseSize(size string) (int64, error) {
	size = strings.TrimSpace(size)
	if size == "" {
		return 0, nil
	}

	if bytes, err := strconv.ParseInt(size, 10, 64); err == nil && bytes >= 0 {
		return bytes, nil
	}

	bytes, err := bytefmt.ToBytes(size)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidSize, size, err)
	}

	return int64(bytes), nil //nolint:gosec
}

// newStream builds a Stream from the config. Diagnostics go to a zap logger;
// call the returned function to flush it.
func newStream(cmd *cli.Command) (*logpilot.Stream, func(), error) {
	config, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	maxSize, err := parseSize(config.MaxSize)
	if err != nil {
		return nil, nil, err
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, fmt.Errorf("creating diagnostic logger: %w", err)
	}

	stream, err := logpilot.New(&logpilot.Config{
		Dir:       config.Dir,
		Name:      config.Name,
		FileSize:  maxSize,
		FileCount: config.Keep,
		Verbose:   config.Verbose,
		Printf:    logger.Sugar().Infof,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("opening log stream: %w", err)
	}

	return stream, func() { _ = logger.Sync() }, nil
}
