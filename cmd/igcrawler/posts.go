package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"igcrawler/pkg/errors"
	"igcrawler/pkg/export"
)

// trimHashtag strips whitespace and a leading # from a user-supplied tag
func trimHashtag(tag string) string {
	return strings.TrimPrefix(strings.TrimSpace(tag), "#")
}

var (
	postsMaxPosts    int
	postsMaxComments int
)

// postsCmd crawls a hashtag's posts together with their comment trees
var postsCmd = &cobra.Command{
	Use:   "posts <tag>",
	Short: "Collect a hashtag's posts together with their comments",
	Long: `Crawl the posts under a hashtag and fetch the comment tree of each
one in a single run. Every post is exported as a marked header row
followed by its comments in thread order.

Posts are unique per media id; unlike 'igcrawler hashtag' there is no
per-author deduplication.`,
	Example: `  # 10 posts with up to 50 comments each under #streetphotography
  igcrawler posts streetphotography

  # A larger crawl
  igcrawler posts streetphotography --max-posts 25 --max-comments 100`,
	Args: cobra.ExactArgs(1),
	RunE: runPosts,
}

func init() {
	rootCmd.AddCommand(postsCmd)
	postsCmd.Flags().IntVar(&postsMaxPosts, "max-posts", 10, "maximum posts to collect")
	postsCmd.Flags().IntVar(&postsMaxComments, "max-comments", 50, "maximum comments and replies per post")
}

func runPosts(cmd *cobra.Command, args []string) error {
	hashtag := args[0]

	cr, err := newLoggedInCrawler()
	if err != nil {
		return err
	}

	posts, crawlErr := cr.CrawlHashtagWithComments(hashtag, postsMaxPosts, postsMaxComments)
	if crawlErr != nil {
		if errors.IsAuth(crawlErr) {
			log.Warn("session expired, run 'igcrawler auth login' and try again")
		}
		if len(posts) == 0 {
			return fmt.Errorf("hashtag post crawl failed: %w", crawlErr)
		}
		log.WithError(crawlErr).Warn("crawl incomplete, exporting partial results")
	}

	exporter, err := export.NewManager(&cfg.Output, log)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("hashtag_%s_posts_comments", trimHashtag(hashtag))
	if _, err := exporter.SavePostsWithComments(posts, name); err != nil {
		return err
	}

	totalComments := 0
	for _, p := range posts {
		totalComments += len(p.Comments)
	}
	log.InfoWithFields("done", map[string]interface{}{
		"hashtag":  trimHashtag(hashtag),
		"posts":    len(posts),
		"comments": totalComments,
	})
	return nil
}
