package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"igcrawler/pkg/errors"
	"igcrawler/pkg/export"
)

var (
	maxPosts int
	saveRaw  bool
)

// hashtagCmd crawls the posts under one hashtag
var hashtagCmd = &cobra.Command{
	Use:   "hashtag <tag>",
	Short: "Collect the authors posting under a hashtag",
	Long: `Crawl the hashtag search endpoint and export one record per unique
author, in the order they were first seen. Pagination stops once the
requested number of authors is reached or the results run out.`,
	Example: `  # Up to 50 unique authors under #streetphotography
  igcrawler hashtag streetphotography

  # A larger crawl with the raw API payloads kept
  igcrawler hashtag streetphotography --max-posts 200 --save-raw`,
	Args: cobra.ExactArgs(1),
	RunE: runHashtag,
}

func init() {
	rootCmd.AddCommand(hashtagCmd)
	hashtagCmd.Flags().IntVar(&maxPosts, "max-posts", 0, "maximum unique authors to collect (default from config)")
	hashtagCmd.Flags().BoolVar(&saveRaw, "save-raw", false, "also save the unprocessed media JSON")
}

func runHashtag(cmd *cobra.Command, args []string) error {
	hashtag := args[0]

	limit := cfg.Crawl.MaxPostsPerHashtag
	if maxPosts > 0 {
		limit = maxPosts
	}
	if saveRaw {
		cfg.Output.SaveRawJSON = true
	}

	cr, err := newLoggedInCrawler()
	if err != nil {
		return err
	}

	result, crawlErr := cr.CrawlHashtag(hashtag, limit)
	if crawlErr != nil {
		if errors.IsAuth(crawlErr) {
			log.Warn("session expired, run 'igcrawler auth login' and try again")
		}
		if result == nil || len(result.Records) == 0 {
			return fmt.Errorf("hashtag crawl failed: %w", crawlErr)
		}
		log.WithError(crawlErr).Warn("crawl incomplete, exporting partial results")
	}

	exporter, err := export.NewManager(&cfg.Output, log)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("hashtag_%s_users", result.Hashtag)
	if _, err := exporter.SaveMediaRecords(result.Records, name); err != nil {
		return err
	}
	if _, err := exporter.SaveRawMedias(result.RawMedias, fmt.Sprintf("hashtag_%s_medias", result.Hashtag)); err != nil {
		log.WithError(err).Warn("failed to save raw media dump")
	}

	log.InfoWithFields("done", map[string]interface{}{
		"hashtag": result.Hashtag,
		"authors": len(result.Records),
	})
	return nil
}
