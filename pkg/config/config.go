package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the Instagram crawler
type Config struct {
	// Instagram credentials and transport identity
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Rate limiting and retry configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Crawl caps
	Crawl CrawlConfig `yaml:"crawl" json:"crawl"`

	// Session persistence
	Session SessionConfig `yaml:"session" json:"session"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InstagramConfig holds Instagram-specific configuration
type InstagramConfig struct {
	SessionID  string `yaml:"session_id" json:"session_id"`
	CSRFToken  string `yaml:"csrf_token" json:"csrf_token"`
	ClaimToken string `yaml:"claim_token" json:"claim_token"`
	UserAgent  string `yaml:"user_agent" json:"user_agent"`
}

// RateLimitConfig holds request pacing and retry configuration
type RateLimitConfig struct {
	// RequestDelay is the politeness interval slept before every API call
	RequestDelay time.Duration `yaml:"request_delay" json:"request_delay"`
	// JitterMax is the upper bound of the random delay added to RequestDelay
	JitterMax time.Duration `yaml:"jitter_max" json:"jitter_max"`
	// Cooldown is slept after an HTTP 429 before the request is retried
	Cooldown time.Duration `yaml:"cooldown" json:"cooldown"`
	// MaxRetries bounds throttling retries for one logical call
	MaxRetries int `yaml:"max_retries" json:"max_retries"`
	// RequestTimeout bounds each individual network call
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// CrawlConfig holds crawl caps
type CrawlConfig struct {
	MaxPostsPerHashtag int `yaml:"max_posts_per_hashtag" json:"max_posts_per_hashtag"`
	MaxCommentsPerPost int `yaml:"max_comments_per_post" json:"max_comments_per_post"`
	// MaxPages guards every pagination loop against servers that keep
	// returning a cursor forever
	MaxPages int `yaml:"max_pages" json:"max_pages"`
}

// SessionConfig holds session persistence configuration
type SessionConfig struct {
	// Backend selects the credential store: "file", "keyring" or "encrypted"
	Backend string `yaml:"backend" json:"backend"`
	// Directory holds the session file for the file and encrypted backends
	Directory string `yaml:"directory" json:"directory"`
}

// OutputConfig holds output settings
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
	SaveCSV       bool   `yaml:"save_csv" json:"save_csv"`
	SaveJSON      bool   `yaml:"save_json" json:"save_json"`
	SaveRawJSON   bool   `yaml:"save_raw_json" json:"save_raw_json"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		RateLimit: RateLimitConfig{
			RequestDelay:   2 * time.Second,
			JitterMax:      time.Second,
			Cooldown:       60 * time.Second,
			MaxRetries:     5,
			RequestTimeout: 30 * time.Second,
		},
		Crawl: CrawlConfig{
			MaxPostsPerHashtag: 50,
			MaxCommentsPerPost: 100,
			MaxPages:           100,
		},
		Session: SessionConfig{
			Backend:   "file",
			Directory: "sessions",
		},
		Output: OutputConfig{
			BaseDirectory: "output",
			SaveCSV:       true,
			SaveJSON:      true,
			SaveRawJSON:   false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if sessionID := os.Getenv("IGCRAWLER_SESSION_ID"); sessionID != "" {
		c.Instagram.SessionID = sessionID
	}
	if csrfToken := os.Getenv("IGCRAWLER_CSRF_TOKEN"); csrfToken != "" {
		c.Instagram.CSRFToken = csrfToken
	}
	if claim := os.Getenv("IGCRAWLER_CLAIM_TOKEN"); claim != "" {
		c.Instagram.ClaimToken = claim
	}
	if userAgent := os.Getenv("IGCRAWLER_USER_AGENT"); userAgent != "" {
		c.Instagram.UserAgent = userAgent
	}

	if delay := os.Getenv("IGCRAWLER_REQUEST_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d >= 0 {
			c.RateLimit.RequestDelay = d
		}
	}
	if cooldown := os.Getenv("IGCRAWLER_COOLDOWN"); cooldown != "" {
		if d, err := time.ParseDuration(cooldown); err == nil && d > 0 {
			c.RateLimit.Cooldown = d
		}
	}
	if retries := os.Getenv("IGCRAWLER_MAX_RETRIES"); retries != "" {
		if v, err := strconv.Atoi(retries); err == nil && v > 0 {
			c.RateLimit.MaxRetries = v
		}
	}

	if maxPosts := os.Getenv("IGCRAWLER_MAX_POSTS"); maxPosts != "" {
		if v, err := strconv.Atoi(maxPosts); err == nil && v >= 0 {
			c.Crawl.MaxPostsPerHashtag = v
		}
	}
	if maxComments := os.Getenv("IGCRAWLER_MAX_COMMENTS"); maxComments != "" {
		if v, err := strconv.Atoi(maxComments); err == nil && v >= 0 {
			c.Crawl.MaxCommentsPerPost = v
		}
	}

	if backend := os.Getenv("IGCRAWLER_SESSION_BACKEND"); backend != "" {
		c.Session.Backend = backend
	}
	if dir := os.Getenv("IGCRAWLER_SESSION_DIR"); dir != "" {
		c.Session.Directory = dir
	}

	if outputDir := os.Getenv("IGCRAWLER_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if logLevel := os.Getenv("IGCRAWLER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".igcrawler.yaml",
		".igcrawler.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "igcrawler", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "igcrawler", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".igcrawler.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.RateLimit.RequestDelay < 0 {
		errs = append(errs, errors.New("request delay cannot be negative"))
	}
	if c.RateLimit.JitterMax < 0 {
		errs = append(errs, errors.New("jitter cannot be negative"))
	}
	if c.RateLimit.Cooldown <= 0 {
		errs = append(errs, errors.New("cooldown must be positive"))
	}
	if c.RateLimit.MaxRetries <= 0 {
		errs = append(errs, errors.New("max retries must be positive"))
	}
	if c.RateLimit.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Crawl.MaxPostsPerHashtag < 0 {
		errs = append(errs, errors.New("max posts cannot be negative"))
	}
	if c.Crawl.MaxCommentsPerPost < 0 {
		errs = append(errs, errors.New("max comments cannot be negative"))
	}
	if c.Crawl.MaxPages <= 0 {
		errs = append(errs, errors.New("max pages must be positive"))
	}

	validBackends := map[string]bool{"file": true, "keyring": true, "encrypted": true}
	if !validBackends[strings.ToLower(c.Session.Backend)] {
		errs = append(errs, fmt.Errorf("invalid session backend: %s", c.Session.Backend))
	}
	if c.Session.Directory == "" {
		errs = append(errs, errors.New("session directory is required"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Environment variables > .env file > Config file > Defaults
func Load(configPath string) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igcrawler.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
