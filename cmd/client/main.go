package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"hanna-collector/internal/hanna"
)

// Command line client for ad-hoc account checks and fleet dumps.
func main() {
	var email string
	var password string
	var check bool
	var timeout string
	flag.StringVar(&email, "email", "", "account email (or HANNA_EMAIL)")
	flag.StringVar(&password, "password", "", "account password (or HANNA_PASSWORD)")
	flag.BoolVar(&check, "check", false, "only validate credentials, do not fetch data")
	flag.StringVar(&timeout, "timeout", "60s", "overall timeout (e.g., 60s)")
	flag.Parse()

	_ = godotenv.Load()
	if email == "" {
		email = os.Getenv("HANNA_EMAIL")
	}
	if password == "" {
		password = os.Getenv("HANNA_PASSWORD")
	}
	if email == "" || password == "" {
		log.Fatalf("email and password are required (flags or HANNA_EMAIL/HANNA_PASSWORD)")
	}

	d, err := time.ParseDuration(timeout)
	if err != nil {
		d = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	api := hanna.NewClient(&http.Client{}, email, password)

	if !api.Authenticate(ctx) {
		log.Fatalf("login failed: check the account credentials")
	}
	log.Printf("login ok")
	if check {
		return
	}

	devices, err := api.GetDevices(ctx)
	if err != nil {
		log.Fatalf("fetch devices: %v", err)
	}
	log.Printf("account has %d device(s)", len(devices))

	ids := make([]string, 0, len(devices))
	for _, dev := range devices {
		ids = append(ids, dev.ID)
	}

	readings := map[string]hanna.Reading{}
	if len(ids) > 0 {
		readings, err = api.GetDeviceReadings(ctx, ids)
		if err != nil {
			log.Fatalf("fetch readings: %v", err)
		}
	}

	dump := struct {
		Devices  []hanna.Device           `json:"devices"`
		Readings map[string]hanna.Reading `json:"readings"`
	}{Devices: devices, Readings: readings}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dump); err != nil {
		log.Fatalf("encode output: %v", err)
	}
}
