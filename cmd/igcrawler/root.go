package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"igcrawler/pkg/config"
	"igcrawler/pkg/logger"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	outputDir  string

	// cfg is the loaded configuration shared by all commands
	cfg *config.Config
	// log is the process logger shared by all commands
	log logger.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "igcrawler",
	Short: "Crawl Instagram hashtags and comment threads into tabular exports",
	Long: `igcrawler retrieves posts under a hashtag and full comment trees of
posts through the authenticated Instagram web API, reconstructs the
parent/reply hierarchy across pages, and exports the normalized records
as CSV and JSON.

It needs a logged-in browser session: run 'igcrawler auth login' once and
paste the sessionid and csrftoken cookie values from your browser.

Requests are paced with a politeness delay and retried with a cooldown
when the API throttles, so expect large crawls to take a while.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if outputDir != "" {
			cfg.Output.BaseDirectory = outputDir
		}

		if err := logger.Initialize(logger.Options{
			Level: cfg.Logging.Level,
			File:  cfg.Logging.File,
		}); err != nil {
			return err
		}
		log = logger.GetLogger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: .igcrawler.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "output directory for exports")
}
