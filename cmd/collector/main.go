package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"hanna-collector/internal/collector"
)

func main() {
	var cfgPath string
	var envPath string
	flag.StringVar(&cfgPath, "config", "config/config.yaml", "path to YAML config")
	flag.StringVar(&envPath, "env", "", "path to .env file with HANNA_EMAIL/HANNA_PASSWORD (optional)")
	flag.Parse()

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			log.Fatalf("load env file: %v", err)
		}
	} else {
		// best effort: a .env beside the binary is picked up when present
		_ = godotenv.Load()
	}

	cfg, err := collector.LoadYAML(cfgPath)
	if err != nil {
		log.Fatalf("load yaml config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		log.Printf("received signal: %v, shutting down...", s)
		cancel()
	}()

	mgr := &collector.Manager{Cfg: cfg}
	if err := mgr.Run(ctx); err != nil {
		log.Fatalf("collector not ready: %v", err)
	}
}
