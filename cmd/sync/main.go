package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/robfig/cron/v3"

	"github.com/gherardi/geop-sync/internal/calendar"
	"github.com/gherardi/geop-sync/internal/config"
	"github.com/gherardi/geop-sync/internal/firestore"
	"github.com/gherardi/geop-sync/internal/scraper"
	"github.com/gherardi/geop-sync/internal/store"
	"github.com/gherardi/geop-sync/internal/syncer"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	cronSpec := flag.String("cron", "", "run as a daemon on this cron schedule instead of once")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if *cronSpec == "" {
		if err := runCycle(cfg); err != nil {
			log.Printf("Synchronization failed: %v", err)
			os.Exit(1)
		}
		log.Printf("Synchronization completed successfully")
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(*cronSpec, func() {
		if err := runCycle(cfg); err != nil {
			log.Printf("Synchronization failed: %v", err)
			return
		}
		log.Printf("Synchronization completed successfully")
	}); err != nil {
		log.Fatalf("Invalid cron schedule %q: %v", *cronSpec, err)
	}

	log.Printf("Running on schedule %q", *cronSpec)
	c.Run()
}

// runCycle wires the collaborators and executes one synchronization cycle.
// Clients are created per cycle so a daemon recovers from stale connections.
func runCycle(cfg *config.Config) error {
	ctx := context.Background()

	fsClient, err := firestore.New(ctx, cfg.GCPProjectID, cfg.FirestoreCollection)
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	defer fsClient.Close()

	calClient, err := calendar.New(ctx, cfg.GoogleServiceAccountFile, cfg.GoogleCalendarID, cfg.Timezone)
	if err != nil {
		return fmt.Errorf("initializing calendar service: %w", err)
	}

	sc := scraper.New(cfg, newSnapshotStore(ctx, cfg))
	return syncer.New(fsClient, calClient, sc).Sync(ctx)
}

// newSnapshotStore picks the raw-block archive backend, GCS over local when
// both are configured. Archiving is best-effort; setup failures only lose
// the diagnostic trail.
func newSnapshotStore(ctx context.Context, cfg *config.Config) store.Store {
	if cfg.SnapshotBucket != "" {
		s, err := store.NewGCS(ctx, cfg.SnapshotBucket)
		if err != nil {
			log.Printf("Snapshot bucket unavailable, archiving disabled: %v", err)
			return nil
		}
		log.Printf("Snapshots: GCS bucket %s", cfg.SnapshotBucket)
		return s
	}
	if cfg.SnapshotDir != "" {
		s, err := store.NewLocal(cfg.SnapshotDir)
		if err != nil {
			log.Printf("Snapshot directory unavailable, archiving disabled: %v", err)
			return nil
		}
		log.Printf("Snapshots: directory %s", cfg.SnapshotDir)
		return s
	}
	return nil
}
