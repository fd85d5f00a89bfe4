// Package config loads the serve settings from defaults, an optional
// corsfs.yaml file and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory
// when -config is not given.
const DefaultFile = "corsfs.yaml"

type Config struct {
	Port        int    `yaml:"port"`        // TCP port, 0 picks a free one (default: 3000)
	Host        string `yaml:"host"`        // Bind address, empty means all interfaces
	RootDir     string `yaml:"rootDir"`     // Served directory (default: working directory)
	StartPage   string `yaml:"startPage"`   // Page opened in the browser (default: homepage.html)
	OpenBrowser bool   `yaml:"openBrowser"` // Open the start page after binding (default: true)

	LiveReload     bool `yaml:"liveReload"`     // Serve /__livereload and watch RootDir
	Compress       bool `yaml:"compress"`       // Gzip responses for clients that accept it
	ETag           bool `yaml:"etag"`           // Content-hash ETags for regular files
	MaxConnections int  `yaml:"maxConnections"` // Concurrent connection cap, 0 is unlimited

	ShutdownTimeout  time.Duration `yaml:"shutdownTimeout"`  // Graceful shutdown budget (default: 5s)
	DebounceDuration time.Duration `yaml:"debounceDuration"` // Live reload debounce (default: 300ms)

	Verbose bool `yaml:"verbose"`
}

// Default returns the configuration used when nothing else is specified.
func Default() *Config {
	return &Config{
		Port:        3000,
		Host:        "",
		RootDir:     ".",
		StartPage:   "homepage.html",
		OpenBrowser: true,

		ShutdownTimeout:  5 * time.Second,
		DebounceDuration: 300 * time.Millisecond,
	}
}

// Load builds a Config from args. A missing default config file is not an
// error; a missing file named with -config is.
func Load(args []string) (*Config, error) {
	return load(args, os.Stderr)
}

func load(args []string, output io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(output)

	configPath := fs.String("config", "", "Path to a YAML config file (default: ./"+DefaultFile+" if present)")
	port := fs.Int("port", 3000, "The port to listen on")
	host := fs.String("host", "", "The host/IP to bind to (empty for all interfaces)")
	root := fs.String("root", ".", "Directory to serve")
	start := fs.String("start", "homepage.html", "Page to open in the browser")
	open := fs.Bool("open", true, "Open the start page in the default browser")
	liveReload := fs.Bool("livereload", false, "Enable the /__livereload event stream")
	compress := fs.Bool("compress", false, "Gzip responses")
	etag := fs.Bool("etag", false, "Send content-hash ETags")
	maxConns := fs.Int("max-conns", 0, "Maximum concurrent connections (0 = unlimited)")
	verbose := fs.Bool("verbose", false, "Log every request")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()

	path := *configPath
	if path == "" {
		path = DefaultFile
	}
	if err := cfg.readFile(path); err != nil {
		if *configPath != "" || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "host":
			cfg.Host = *host
		case "root":
			cfg.RootDir = *root
		case "start":
			cfg.StartPage = *start
		case "open":
			cfg.OpenBrowser = *open
		case "livereload":
			cfg.LiveReload = *liveReload
		case "compress":
			cfg.Compress = *compress
		case "etag":
			cfg.ETag = *etag
		case "max-conns":
			cfg.MaxConnections = *maxConns
		case "verbose":
			cfg.Verbose = *verbose
		}
	})

	cfg.validate()
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// validate ensures configuration values are within reasonable bounds
func (c *Config) validate() {
	if c.Port < 0 || c.Port > 65535 {
		c.Port = 3000
	}
	if strings.TrimSpace(c.RootDir) == "" {
		c.RootDir = "."
	}
	c.StartPage = strings.TrimLeft(c.StartPage, "/")

	if c.MaxConnections < 0 {
		c.MaxConnections = 0
	}

	if c.ShutdownTimeout < 1*time.Second {
		c.ShutdownTimeout = 1 * time.Second
	}
	if c.ShutdownTimeout > 60*time.Second {
		c.ShutdownTimeout = 60 * time.Second
	}
	if c.DebounceDuration < 10*time.Millisecond {
		c.DebounceDuration = 10 * time.Millisecond
	}
	if c.DebounceDuration > 5*time.Second {
		c.DebounceDuration = 5 * time.Second
	}
}

// Addr is the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
