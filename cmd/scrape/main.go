// Scrape-only entry point for debugging the pipeline: logs into the portal,
// walks the calendar and writes the parsed future lectures as JSON to
// stdout. No store or calendar access.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gherardi/geop-sync/internal/config"
	"github.com/gherardi/geop-sync/internal/scraper"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.PortalURL == "" || cfg.UserEmail == "" || cfg.UserPassword == "" {
		log.Fatal("PORTAL_URL, USER_EMAIL and USER_PASSWORD are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	lectures, err := scraper.New(cfg, nil).ScrapeLectures(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(lectures)
}
