// Command emit-metric sends a single metric through the configured backend.
// It is used to smoke-test dashboards and alarms without invoking a handler.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skillscout/skillscout/internal/config"
	"github.com/skillscout/skillscout/internal/logging"
	"github.com/skillscout/skillscout/internal/telemetry"
)

// Build variables - set by ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
)

type dimensionFlags []telemetry.Dimension

func (d *dimensionFlags) String() string {
	parts := make([]string, 0, len(*d))
	for _, dim := range *d {
		parts = append(parts, dim.Name+"="+dim.Value)
	}
	return strings.Join(parts, ",")
}

func (d *dimensionFlags) Set(value string) error {
	name, val, ok := strings.Cut(value, "=")
	if !ok || name == "" {
		return fmt.Errorf("dimension must be Name=Value, got %q", value)
	}
	*d = append(*d, telemetry.Dim(name, val))
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("emit-metric", flag.ContinueOnError)
	var (
		configPath  string
		name        string
		value       float64
		unit        string
		dims        dimensionFlags
		showVersion bool
	)
	fs.StringVar(&configPath, "config", "", "config file (YAML)")
	fs.StringVar(&name, "name", "", "metric name, e.g. QuestionViewed")
	fs.Float64Var(&value, "value", 1, "metric value")
	fs.StringVar(&unit, "unit", string(telemetry.UnitCount), "metric unit")
	fs.Var(&dims, "dim", "dimension as Name=Value (repeatable)")
	fs.BoolVar(&showVersion, "version", false, "print version information")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVersion {
		fmt.Printf("emit-metric %s (%s)\n", version, commit)
		return nil
	}
	if name == "" {
		return errors.New("-name is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	metrics, shutdown, err := telemetry.New(ctx, cfg.Telemetry(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	metrics.Emitter().Emit(ctx, name, value, telemetry.Unit(unit), dims...)
	return nil
}
