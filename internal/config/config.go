package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every setting the synchronizer needs. Values come from the
// environment (a .env file is honored if present); an optional YAML file can
// pre-populate them, with the environment taking precedence.
type Config struct {
	PortalURL    string `yaml:"portal_url"`
	UserEmail    string `yaml:"user_email"`
	UserPassword string `yaml:"user_password"`

	GCPProjectID        string `yaml:"gcp_project_id"`
	FirestoreCollection string `yaml:"firestore_collection"`

	GoogleCalendarID         string `yaml:"google_calendar_id"`
	GoogleServiceAccountFile string `yaml:"google_service_account_file"`

	// Timezone is the IANA zone lectures are scheduled in.
	Timezone string `yaml:"timezone"`

	// SnapshotBucket and SnapshotDir enable the raw-block archive; both are
	// optional, GCS wins when both are set.
	SnapshotBucket string `yaml:"snapshot_bucket"`
	SnapshotDir    string `yaml:"snapshot_dir"`

	// ChromePath overrides the browser binary used by chromedp.
	ChromePath string `yaml:"chrome_path"`
}

// Load reads configuration from the optional YAML file at path (empty means
// no file), then overlays environment variables. A .env file in the working
// directory is loaded first if it exists.
func Load(path string) (*Config, error) {
	// Missing .env is fine; real deployments use plain environment variables.
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overlay(&c.PortalURL, "PORTAL_URL")
	overlay(&c.UserEmail, "USER_EMAIL")
	overlay(&c.UserPassword, "USER_PASSWORD")
	overlay(&c.GCPProjectID, "GCP_PROJECT_ID")
	overlay(&c.FirestoreCollection, "FIRESTORE_COLLECTION")
	overlay(&c.GoogleCalendarID, "GOOGLE_CALENDAR_ID")
	overlay(&c.GoogleServiceAccountFile, "GOOGLE_SERVICE_ACCOUNT_FILE")
	overlay(&c.Timezone, "TIMEZONE")
	overlay(&c.SnapshotBucket, "GCS_BUCKET")
	overlay(&c.SnapshotDir, "SNAPSHOT_DIR")
	overlay(&c.ChromePath, "CHROME_PATH")
}

func overlay(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) normalize() {
	if c.FirestoreCollection == "" {
		c.FirestoreCollection = "lectures"
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Rome"
	}
}

// Validate reports every missing required setting at once so a misconfigured
// deployment can be fixed in a single pass.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"PORTAL_URL", c.PortalURL},
		{"USER_EMAIL", c.UserEmail},
		{"USER_PASSWORD", c.UserPassword},
		{"GCP_PROJECT_ID", c.GCPProjectID},
		{"GOOGLE_CALENDAR_ID", c.GoogleCalendarID},
		{"GOOGLE_SERVICE_ACCOUNT_FILE", c.GoogleServiceAccountFile},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}
