package main

import (
	"fmt"
	"log/slog"
	"os"

	cmdcalculate "metro-costs/command/calculate"
	cmdimport "metro-costs/command/import"
	cmdweb "metro-costs/command/web"
	"metro-costs/connectors/config"
)

// Metro network cost estimator.
// Usage:
//   metro-costs import [-dataset track|rolling_stock|all]
//   metro-costs calculate [-pipeline all|track|rolling_stock|metro]
//   metro-costs web [-addr :8080] [-data ./data/output] [-ui ./ui/dist]
// Notes:
// - Inputs are read from paths.raw_dir and outputs written to paths.output_dir (see config.yml).
// - Pipeline settings can be overridden with METRO_* environment variables.

const usage = `usage: metro-costs import [-dataset track|rolling_stock|all] | calculate [-pipeline all|track|rolling_stock|metro] | web [-addr :8080] [-data ./data/output] [-ui ./ui/dist]
ENV: set CONFIG_PATH to point to a YAML config file (default ./config.yml)`

func main() {
	args := os.Args
	var run func(*config.Config, []string) error
	if len(args) > 1 {
		switch args[1] {
		case "import":
			run = cmdimport.Run
		case "calculate":
			run = cmdcalculate.Run
		case "web":
			run = cmdweb.Run
		}
	}
	if run == nil {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})
	slog.SetDefault(slog.New(h))
	if cfg.Source != "" {
		slog.Info("config.loaded", "path", cfg.Source)
	} else {
		slog.Info("config.defaults", "reason", "no config file", "path", config.DefaultPath)
	}

	sub := args[1]
	rest := append([]string{}, args[2:]...)
	if err := run(cfg, rest); err != nil {
		slog.Error("command.failed", "command", sub, "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
