package crawler

import (
	"strings"

	"github.com/google/uuid"

	"igcrawler/pkg/errors"
	"igcrawler/pkg/instagram"
	"igcrawler/pkg/models"
)

// CrawlHashtagWithComments collects up to maxPosts posts under a hashtag
// and fetches each post's comment tree, up to maxCommentsPerPost comments
// and replies per post. Posts are unique per media pk in page order; no
// per-author dedup applies here, unlike CrawlHashtag. A failing comment
// fetch degrades that post to whatever was accumulated; only a failing
// search page stops the crawl, returning the partial post list together
// with the typed error.
func (c *Crawler) CrawlHashtagWithComments(hashtag string, maxPosts, maxCommentsPerPost int) ([]models.PostWithComments, error) {
	hashtag = strings.TrimPrefix(strings.TrimSpace(hashtag), "#")
	if hashtag == "" {
		return nil, errors.New(errors.ErrorTypeValidation, "hashtag must not be empty", 0)
	}

	posts := []models.PostWithComments{}
	if maxPosts <= 0 {
		return posts, nil
	}

	log := c.logger.WithField("hashtag", hashtag)
	log.InfoWithFields("starting hashtag post crawl", map[string]interface{}{
		"max_posts":             maxPosts,
		"max_comments_per_post": maxCommentsPerPost,
	})

	rankToken := uuid.NewString()
	seen := make(map[string]struct{})

	err := c.paginate(func(cursor string) (string, bool, error) {
		var resp instagram.SearchResponse
		params := instagram.SearchParams(hashtag, rankToken, cursor)
		if err := c.requester.GetJSON(instagram.SearchPath(), params, &resp); err != nil {
			return "", false, err
		}

		medias := instagram.ExtractMedias(&resp)
		if len(medias) == 0 {
			log.Debug("no media items on this page, stopping")
			return "", true, nil
		}

		for i := range medias {
			if len(posts) >= maxPosts {
				break
			}
			media := medias[i].Resolve()

			pk := media.PK.String()
			if pk == "" {
				continue
			}
			if _, ok := seen[pk]; ok {
				continue
			}
			seen[pk] = struct{}{}

			post := models.PostWithComments{
				Post:     mediaRecord(media),
				Comments: []models.CommentRecord{},
			}

			comments, err := c.CrawlComments(pk, maxCommentsPerPost)
			post.Comments = comments
			if err != nil {
				log.WithError(err).WarnWithFields("comment fetch failed for post, continuing", map[string]interface{}{
					"media_pk": pk,
				})
			}

			posts = append(posts, post)
			log.InfoWithFields("collected post", map[string]interface{}{
				"media_pk": pk,
				"username": post.Post.Username,
				"comments": len(post.Comments),
				"count":    len(posts),
			})
		}

		if len(posts) >= maxPosts {
			return "", true, nil
		}
		return resp.NextCursor(), false, nil
	})

	if err != nil {
		log.WithError(err).WarnWithFields("hashtag post crawl stopped early", map[string]interface{}{
			"collected": len(posts),
		})
		return posts, err
	}

	log.InfoWithFields("hashtag post crawl finished", map[string]interface{}{
		"posts": len(posts),
	})
	return posts, nil
}
