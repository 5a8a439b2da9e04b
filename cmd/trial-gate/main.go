// Command trial-gate is the host shell around the trial license guard.
// Run without arguments it enforces the trial interactively; the
// "status" argument prints the raw status as JSON for scripting.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"ticketzero/internal/config"
	"ticketzero/internal/infrastructure"
	"ticketzero/internal/trial"
)

const configFile = "trial-gate.yml"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, in io.Reader, out io.Writer) int {
	cfg, err := config.Load(configFile)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("starting trial gate",
		slog.String("app_name", cfg.App.Name),
		slog.String("version", cfg.App.Version),
	)

	guard, err := trial.NewGuard(trial.Config{
		AppName:      cfg.App.Name,
		TrialLength:  cfg.Trial.Length.Std(),
		Salt:         cfg.Trial.Salt,
		SupportEmail: cfg.Trial.SupportEmail,
		AuditFile:    cfg.Trial.AuditFile,
		Logger:       logger,
	})
	if err != nil {
		logger.Error("failed to initialize trial guard", slog.String("error", err.Error()))
		return 1
	}
	guard.SetIO(in, out)

	if metrics, err := trial.DefaultMetrics(); err == nil {
		guard.Manager().SetMetrics(metrics)
	} else {
		logger.Warn("trial metrics unavailable", slog.String("error", err.Error()))
	}

	if len(args) > 0 && args[0] == "status" {
		return printStatus(guard, out)
	}

	if !guard.RequireValidTrial(false) {
		return 1
	}

	guard.ShowTrialInfoBanner()
	fmt.Fprintf(out, "Trial verified. %s is ready.\n", cfg.App.Name)
	return 0
}

func printStatus(guard *trial.Guard, out io.Writer) int {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(guard.GetStatus()); err != nil {
		slog.Error("failed to encode status", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
