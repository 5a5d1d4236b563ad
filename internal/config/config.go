// Package config loads the service configuration from a YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is read when no path is given and the file exists.
	DefaultPath = "dutyroster.yaml"
	envPrefix   = "DUTYROSTER_"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
	Timezone    string            `yaml:"timezone"`
	Rotation    RotationConfig    `yaml:"rotation"`
	Completion  CompletionConfig  `yaml:"completion"`
	Schedule    map[string]string `yaml:"schedule"`
	Chores      []ChoreConfig     `yaml:"chores"`
	Students    []StudentConfig   `yaml:"students"`
	Cron        CronConfig        `yaml:"cron"`
	Notify      NotifyConfig      `yaml:"notify"`
	Attachments AttachmentConfig  `yaml:"attachments"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// BaseURL is the public address used in notification links.
	BaseURL        string   `yaml:"base_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// SubmitRate is the number of submissions and uploads allowed per
	// client per minute.
	SubmitRate int `yaml:"submit_rate"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type RotationConfig struct {
	WindowDays int    `yaml:"window_days"`
	TieBreak   string `yaml:"tie_break"`
}

type CompletionConfig struct {
	ResubmitPolicy string `yaml:"resubmit_policy"`
}

type ChoreConfig struct {
	ID   int64    `yaml:"id"`
	Text string   `yaml:"text"`
	Days []string `yaml:"days"`
}

type StudentConfig struct {
	ID    int64  `yaml:"id"`
	Name  string `yaml:"name"`
	Group string `yaml:"group"`
}

type CronConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Weekly     string `yaml:"weekly"`
	Daily      string `yaml:"daily"`
	RunOnStart bool   `yaml:"run_on_start"`
}

type NotifyConfig struct {
	Timeout  time.Duration   `yaml:"timeout"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
	Email    EmailConfig     `yaml:"email"`
}

type WebhookConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	// Kinds limits the webhook to some event kinds. Empty means all.
	Kinds []string `yaml:"kinds"`
}

type EmailConfig struct {
	PostmarkToken string   `yaml:"postmark_token"`
	From          string   `yaml:"from"`
	To            []string `yaml:"to"`
}

// Enabled reports whether email notifications can be sent.
func (e EmailConfig) Enabled() bool {
	return e.PostmarkToken != "" && e.From != "" && len(e.To) > 0
}

type AttachmentConfig struct {
	Dir            string   `yaml:"dir"`
	Quality        int      `yaml:"quality"`
	MaxDimension   int      `yaml:"max_dimension"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	S3             S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Prefix    string `yaml:"prefix"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       ":8080",
			BaseURL:    "http://localhost:8080",
			SubmitRate: 10,
		},
		Database: DatabaseConfig{Path: "dutyroster.db"},
		Log:      LogConfig{Level: "info", Format: "text"},
		Timezone: "Europe/Oslo",
		Rotation: RotationConfig{WindowDays: 180, TieBreak: "roster"},
		Completion: CompletionConfig{
			ResubmitPolicy: "overwrite",
		},
		Schedule: map[string]string{
			"monday":    "IM1",
			"tuesday":   "IT2",
			"wednesday": "IM2",
			"thursday":  "IT1",
			"friday":    "IT2",
		},
		Chores: []ChoreConfig{
			{ID: 1, Text: "Start the dishwasher", Days: []string{"monday", "tuesday", "wednesday", "thursday", "friday"}},
			{ID: 2, Text: "Empty the dishwasher", Days: []string{"monday", "tuesday", "wednesday", "thursday", "friday"}},
			{ID: 3, Text: "Wipe the surfaces"},
			{ID: 4, Text: "Take out the trash", Days: []string{"friday"}},
			{ID: 5, Text: "Tidy the common area"},
		},
		Cron: CronConfig{
			Enabled: true,
			Weekly:  "0 6 * * 1",
			Daily:   "1 6 * * *",
		},
		Notify: NotifyConfig{Timeout: 10 * time.Second},
		Attachments: AttachmentConfig{
			Dir:            "attachments",
			Quality:        35,
			MaxDimension:   1920,
			MaxUploadBytes: 10 << 20,
			S3:             S3Config{Region: "auto"},
		},
	}
}

// Load builds the configuration: defaults, then the YAML file, then the
// environment (a .env file in the working directory is read first), then
// validation. An empty path falls back to $DUTYROSTER_CONFIG and then to
// DefaultPath if that file exists.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads path over the defaults without consulting the
// environment.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	// Lists and maps from the file replace the defaults instead of
	// merging into them.
	var probe struct {
		Schedule map[string]string `yaml:"schedule"`
		Chores   []ChoreConfig     `yaml:"chores"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if probe.Schedule != nil {
		c.Schedule = nil
	}
	if probe.Chores != nil {
		c.Chores = nil
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
