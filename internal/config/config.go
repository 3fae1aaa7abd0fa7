// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and
// an optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
)

// ServerOptions holds the configuration values for the API server.
type ServerOptions struct {
	// Addr defines the server's listening address (ip:port).
	Addr string

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string

	// TokenSecret signs session tokens. Must be non-empty in production.
	TokenSecret string

	// Config is the path to the JSON config file.
	Config string
}

// ClientOptions holds the configuration values for the CLI client.
type ClientOptions struct {
	// ServerURL is the base URL of the API server.
	ServerURL string

	// CachePath is the path of the local SQLite cache file.
	CachePath string

	// Config is the path to the JSON config file.
	Config string
}

// ParseServer parses command-line flags, the optional config file and
// environment variables into ServerOptions. Environment variables win over
// the config file, which wins over flag defaults.
func ParseServer(args []string) *ServerOptions {
	opts := &ServerOptions{}

	fs := flag.NewFlagSet("server", flag.ExitOnError)
	fs.StringVar(&opts.Addr, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&opts.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&opts.TokenSecret, "t", "", "session token signing secret")
	fs.StringVar(&opts.Config, "c", "config.json", "path to config file")
	_ = fs.Parse(args)

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		opts.Config = configPath
	}
	loadFile(opts.Config, opts)

	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		opts.Addr = addr
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		opts.DatabaseDSN = dsn
	}
	if secret := os.Getenv("TOKEN_SECRET"); secret != "" {
		opts.TokenSecret = secret
	}

	return opts
}

// ParseClient parses command-line flags, the optional config file and
// environment variables into ClientOptions.
func ParseClient(args []string) *ClientOptions {
	opts := &ClientOptions{}

	fs := flag.NewFlagSet("client", flag.ExitOnError)
	fs.StringVar(&opts.ServerURL, "s", "http://localhost:8080", "API server base URL")
	fs.StringVar(&opts.CachePath, "f", "chalkboard.db", "path to local cache file")
	fs.StringVar(&opts.Config, "c", "", "path to config file")
	_ = fs.Parse(args)

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		opts.Config = configPath
	}
	loadFile(opts.Config, opts)

	if serverURL := os.Getenv("CHALKBOARD_SERVER"); serverURL != "" {
		opts.ServerURL = serverURL
	}
	if cachePath := os.Getenv("CHALKBOARD_CACHE"); cachePath != "" {
		opts.CachePath = cachePath
	}

	return opts
}

// loadFile overlays values from a JSON config file onto opts if the file
// exists. A missing file is not an error; a malformed one is fatal.
func loadFile(path string, opts any) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("error while reading config file: %v", err)
	}
	if err := json.Unmarshal(data, opts); err != nil {
		log.Fatalf("error while parsing config file: %v", err)
	}
}
