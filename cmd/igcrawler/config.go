package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igcrawler/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage igcrawler configuration.

Configuration is merged from, in order of priority:
  - Command line flags
  - Environment variables (IGCRAWLER_*)
  - Configuration file
  - Default values`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created as '.igcrawler.yaml' in the current directory unless
a different path is given with the --config flag.`,
	RunE: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging all sources. Sensitive values
are masked.`,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

const exampleConfig = `# igcrawler configuration file
#
# Every option can also be set through an environment variable prefixed
# with IGCRAWLER_, for example IGCRAWLER_SESSION_ID.

# Instagram session cookies. Leave empty to use the session stored by
# 'igcrawler auth login' instead.
instagram:
  session_id: ""
  csrf_token: ""
  claim_token: ""
  user_agent: ""

# Request pacing. Every API call waits request_delay plus a random
# jitter up to jitter_max; a throttled request cools down for cooldown
# before retrying, up to max_retries attempts.
rate_limit:
  request_delay: 2s
  jitter_max: 1s
  cooldown: 60s
  max_retries: 5
  request_timeout: 30s

# Crawl caps. max_pages bounds pagination regardless of the caps below.
crawl:
  max_posts_per_hashtag: 50
  max_comments_per_post: 100
  max_pages: 100

# Session persistence backend: file, keyring or encrypted
session:
  backend: "file"
  directory: "sessions"

# Export settings
output:
  base_directory: "output"
  save_csv: true
  save_json: true
  save_raw_json: false

# Logging
logging:
  # debug, info, warn, error
  level: "info"
  # optional log file, stdout when empty
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".igcrawler.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	fmt.Printf("Configuration file created: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Run 'igcrawler auth login' to store a session")
	fmt.Println("2. Run 'igcrawler config show' to check the effective settings")
	fmt.Println("3. Start a crawl with 'igcrawler hashtag <tag>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	display := *cfg
	if display.Instagram.SessionID != "" {
		display.Instagram.SessionID = sanitizeSecret(display.Instagram.SessionID)
	}
	if display.Instagram.CSRFToken != "" {
		display.Instagram.CSRFToken = sanitizeSecret(display.Instagram.CSRFToken)
	}
	if display.Instagram.ClaimToken != "" {
		display.Instagram.ClaimToken = sanitizeSecret(display.Instagram.ClaimToken)
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (IGCRAWLER_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (auto-discovered)")
	}
	fmt.Println("4. Default values")
	return nil
}
