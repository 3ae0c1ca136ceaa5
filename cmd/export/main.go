package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hanna-collector/internal/collector"
	"hanna-collector/internal/coordinator"
	"hanna-collector/internal/hanna"
	"hanna-collector/internal/output"
	"hanna-collector/internal/reading"
)

func main() {
	var cfgPath string
	var outJSON string
	var outCSV string
	var timeout string
	flag.StringVar(&cfgPath, "config", "config/config.yaml", "path to YAML config")
	flag.StringVar(&outJSON, "json", "", "path to write JSON snapshot (optional)")
	flag.StringVar(&outCSV, "csv", "", "path to write CSV snapshot (optional)")
	flag.StringVar(&timeout, "timeout", "60s", "overall fetch timeout (e.g., 60s)")
	flag.Parse()

	if outJSON == "" && outCSV == "" {
		log.Fatalf("no output specified: set --json and/or --csv")
	}

	_ = godotenv.Load()

	cfg, err := collector.LoadYAML(cfgPath)
	if err != nil {
		log.Fatalf("load yaml config: %v", err)
	}

	d, err := time.ParseDuration(timeout)
	if err != nil {
		d = 60 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigs; cancel() }()

	api := hanna.NewClient(&http.Client{}, cfg.Hanna.Email, cfg.Hanna.Password)
	if cfg.Hanna.BaseURL != "" {
		api.BaseURL = cfg.Hanna.BaseURL
	}

	// one synchronous cycle, no background loop
	coord := coordinator.New(api, cfg.Hanna.UpdateIntervalMinutes)
	if err := coord.Start(ctx); err != nil {
		log.Fatalf("fetch error: %v", err)
	}
	result := coord.Snapshot()

	snap := reading.Snapshot(result.Devices, result.Readings, result.FetchedAt)

	if outJSON != "" {
		if err := output.WriteJSON(outJSON, snap); err != nil {
			log.Printf("write json error: %v", err)
		}
	}
	if outCSV != "" {
		if err := output.WriteCSV(outCSV, snap); err != nil {
			log.Printf("write csv error: %v", err)
		}
	}
}
