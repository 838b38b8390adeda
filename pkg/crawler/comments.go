package crawler

import (
	"strings"

	"igcrawler/pkg/errors"
	"igcrawler/pkg/instagram"
	"igcrawler/pkg/models"
)

// CrawlComments pages through the comments of one post and flattens the
// comment tree depth-first: each top-level comment is followed by all of
// its replies before the next sibling appears. The global cap bounds the
// combined count of comments and replies.
//
// Reply threads are fetched against a live remaining budget, so a thread
// started near the cap cannot overshoot it even when it spans several
// pages. A failed reply thread degrades to whatever was accumulated;
// only a failing top-level page stops the crawl, returning the partial
// sequence together with the typed error.
func (c *Crawler) CrawlComments(mediaID string, maxComments int) ([]models.CommentRecord, error) {
	mediaID = strings.TrimSpace(mediaID)
	if mediaID == "" {
		return nil, errors.New(errors.ErrorTypeValidation, "media id must not be empty", 0)
	}

	records := []models.CommentRecord{}
	if maxComments <= 0 {
		return records, nil
	}

	log := c.logger.WithField("media_id", mediaID)
	log.InfoWithFields("starting comment crawl", map[string]interface{}{
		"max_comments": maxComments,
	})

	err := c.paginate(func(cursor string) (string, bool, error) {
		var resp instagram.CommentsResponse
		params := instagram.CommentsParams(cursor)
		if err := c.requester.GetJSON(instagram.CommentsPath(mediaID), params, &resp); err != nil {
			return "", false, err
		}

		if cursor == "" && resp.Caption != nil {
			log.DebugWithFields("post found", map[string]interface{}{
				"author": resp.Caption.User.Username,
			})
		}

		for _, comment := range resp.Comments {
			if len(records) >= maxComments {
				return "", true, nil
			}
			records = append(records, commentRecord(models.DepthRoot, comment, mediaID))

			if comment.ChildCommentCount > 0 && len(records) < maxComments && comment.PK.String() != "" {
				children, err := c.fetchChildComments(mediaID, comment.PK.String(), maxComments-len(records))
				records = append(records, children...)
				if err != nil {
					log.WithError(err).WarnWithFields("reply thread fetch failed, continuing", map[string]interface{}{
						"comment_pk": comment.PK.String(),
					})
				}
			}
		}

		if len(records) >= maxComments {
			return "", true, nil
		}
		return resp.NextMinID, false, nil
	})

	if err != nil {
		log.WithError(err).WarnWithFields("comment crawl stopped early", map[string]interface{}{
			"collected": len(records),
		})
		return records, err
	}

	log.InfoWithFields("comment crawl finished", map[string]interface{}{
		"comments": len(records),
	})
	return records, nil
}

// fetchChildComments retrieves up to budget replies under one comment,
// following the thread's own cursor across as many pages as needed.
func (c *Crawler) fetchChildComments(mediaID, commentPK string, budget int) ([]models.CommentRecord, error) {
	var children []models.CommentRecord
	if budget <= 0 {
		return children, nil
	}

	err := c.paginate(func(cursor string) (string, bool, error) {
		var resp instagram.ChildCommentsResponse
		params := instagram.ChildCommentsParams(cursor)
		if err := c.requester.GetJSON(instagram.ChildCommentsPath(mediaID, commentPK), params, &resp); err != nil {
			return "", false, err
		}

		for _, child := range resp.ChildComments {
			if len(children) >= budget {
				return "", true, nil
			}
			children = append(children, commentRecord(models.DepthChild, child, mediaID))
		}

		if len(children) >= budget {
			return "", true, nil
		}
		return resp.NextMinID, false, nil
	})

	return children, err
}

// commentRecord flattens one comment into the export schema
func commentRecord(depth models.CommentDepth, comment instagram.Comment, mediaID string) models.CommentRecord {
	rec := models.CommentRecord{
		Depth:             depth,
		Username:          comment.User.Username,
		FullName:          comment.User.FullName,
		Text:              comment.Text,
		CommentLikeCount:  comment.CommentLikeCount,
		ChildCommentCount: comment.ChildCommentCount,
		PK:                comment.PK.String(),
		MediaID:           mediaID,
	}
	if depth == models.DepthChild {
		// Replies cannot nest further; the API reports no counts for them.
		rec.ChildCommentCount = 0
	}
	return rec
}
