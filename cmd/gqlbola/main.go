// Command gqlbola is the CLI entry point: it loads a JSON ScanTarget
// document plus an optional YAML runtime-tuning document, runs a single
// scan, prints the graded findings, and sets the process exit code.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/roomkangali/gqlbola/internal/config"
	"github.com/roomkangali/gqlbola/internal/httpclient"
	"github.com/roomkangali/gqlbola/internal/logger"
	"github.com/roomkangali/gqlbola/internal/model"
	"github.com/roomkangali/gqlbola/internal/orchestrator"
	"github.com/roomkangali/gqlbola/internal/reporter"
	"github.com/roomkangali/gqlbola/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	var (
		configPath  string
		runtimePath string
		outputJSON  string
		dbConn      string
	)
	flag.StringVar(&configPath, "c", "", "path to the JSON ScanTarget document (required)")
	flag.StringVar(&configPath, "config", "", "path to the JSON ScanTarget document (required)")
	flag.StringVar(&runtimePath, "r", "", "path to an optional YAML RuntimeConfig document")
	flag.StringVar(&runtimePath, "runtime", "", "path to an optional YAML RuntimeConfig document")
	flag.StringVar(&outputJSON, "o", "", "path to write the full ScanResult as JSON")
	flag.StringVar(&outputJSON, "output-json", "", "path to write the full ScanResult as JSON")
	flag.StringVar(&dbConn, "db", os.Getenv("DATABASE_URL"), "optional connection string for the persistence adapter")
	flag.Parse()

	if configPath == "" {
		fmt.Fprintln(os.Stderr, "gqlbola: -c/--config is required")
		return 1
	}

	target, err := config.LoadScanTarget(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gqlbola: loading target config: %v\n", err)
		return 1
	}

	runtimeCfg, err := config.LoadRuntimeConfig(runtimePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gqlbola: loading runtime config: %v\n", err)
		return 1
	}

	log := logger.NewLogger(logLevelFromString(runtimeCfg.LogLevel))
	client := httpclient.New(log, httpclient.Options{
		UserAgent:  runtimeCfg.UserAgent,
		MaxRetries: runtimeCfg.MaxRetries,
	})
	orch := orchestrator.New(client, log, runtimeCfg)

	ctx := context.Background()

	scanID := uuid.NewString()

	var db *store.Store
	if dbConn != "" {
		db, err = store.Open(ctx, dbConn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "gqlbola: opening persistence adapter: %v\n", err)
			return 1
		}
		defer db.Close()

		if err := db.InsertQueued(ctx, scanID, target.URL); err != nil {
			log.Warn("persistence: failed to write queued row: %v", err)
		}
	}

	result := orch.RunScanWithID(ctx, scanID, target)

	if db != nil {
		if err := db.Finalize(ctx, result); err != nil {
			log.Warn("persistence: failed to finalize row: %v", err)
		}
	}

	reporter.PrintSummary(os.Stdout, result)

	if outputJSON != "" {
		if err := reporter.WriteJSON(outputJSON, result); err != nil {
			fmt.Fprintf(os.Stderr, "gqlbola: writing JSON report: %v\n", err)
			return 1
		}
	}

	if result.Status == model.StatusFailed || reporter.HasCriticalOrHigh(result.Findings) {
		return 1
	}
	return 0
}

func logLevelFromString(level string) logger.LogLevel {
	switch level {
	case "trace":
		return logger.TRACE
	case "debug":
		return logger.DEBUG
	case "warn":
		return logger.WARN
	case "error":
		return logger.ERROR
	default:
		return logger.INFO
	}
}
