// Package main is the flowlint command. It loads flow definition files,
// validates them structurally, and reports navigation graph warnings.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/andyoucreate/rilaykit/config"
	"github.com/andyoucreate/rilaykit/definition"
	"github.com/andyoucreate/rilaykit/observability"
)

// Build-time variables set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc1234"
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	strict := flag.Bool("strict", false, "treat graph warnings as errors")
	flag.Parse()

	// Definition directories can also be passed as positional arguments,
	// bypassing the config file entirely.
	dirs := flag.Args()

	cfg := config.Defaults()
	if len(dirs) == 0 {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
			return 1
		}
		cfg = loaded
		dirs = cfg.Definitions.Directories
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	loader := definition.NewLoader()
	defs, err := loader.LoadAll(dirs)
	if err != nil {
		logger.Error("definition loading failed", zap.Error(err))
		return 1
	}

	validator := definition.NewValidator()
	verrs := validator.Validate(defs)
	for _, ve := range verrs {
		logger.Error("definition error",
			zap.String("path", ve.Path),
			zap.String("code", ve.Code),
			zap.String("message", ve.Message),
		)
	}

	warnings := validator.Warnings(defs)
	for _, w := range warnings {
		logger.Warn("navigation warning",
			zap.String("code", w.Code),
			zap.String("page_id", w.PageID),
			zap.String("message", w.Message),
		)
	}

	registry := definition.NewRegistry(defs)
	logger.Info("lint complete",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.Int("flows", len(defs)),
		zap.Int("errors", len(verrs)),
		zap.Int("warnings", len(warnings)),
		zap.String("checksum", registry.Checksum()),
	)

	if len(verrs) > 0 {
		return 1
	}
	if *strict && len(warnings) > 0 {
		return 1
	}
	return 0
}
