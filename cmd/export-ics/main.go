// Scrapes the portal and writes the upcoming lectures as an iCalendar file,
// for importing into clients that are not Google Calendar.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gherardi/geop-sync/internal/config"
	"github.com/gherardi/geop-sync/internal/ics"
	"github.com/gherardi/geop-sync/internal/scraper"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	output := flag.String("o", "lectures.ics", "output file, - for stdout")
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

	rendered, err := ics.Export(lectures, cfg.Timezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *output == "-" {
		fmt.Print(rendered)
		return
	}
	if err := os.WriteFile(*output, []byte(rendered), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Printf("Wrote %d lectures to %s", len(lectures), *output)
}
