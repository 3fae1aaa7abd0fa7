// Package main starts the interactive Chalkboard terminal client.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os"

	"github.com/avolkov/chalkboard/internal/client/api"
	"github.com/avolkov/chalkboard/internal/client/cli"
	"github.com/avolkov/chalkboard/internal/client/localcache"
	"github.com/avolkov/chalkboard/internal/config"
	"github.com/avolkov/chalkboard/internal/logger"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options := config.ParseClient(os.Args[1:])

	fmt.Printf("Chalkboard client %s (built %s)\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))

	zapLogger, err := logger.New("warn")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	cache, err := localcache.Open(options.CachePath)
	if err != nil {
		zapLogger.Fatal("cannot open local cache", zap.Error(err))
	}
	defer cache.Close()

	app := cli.NewApp(api.New(options.ServerURL), cache, zapLogger)
	app.Run(context.Background())
}
