package crawler

import (
	"strings"

	"github.com/google/uuid"

	"igcrawler/pkg/errors"
	"igcrawler/pkg/instagram"
	"igcrawler/pkg/models"
)

// HashtagResult is the outcome of one hashtag crawl. Records are unique
// per author in first-seen order; RawMedias keeps every media item the
// search returned, for the raw exporter.
type HashtagResult struct {
	Hashtag   string
	Records   []models.MediaRecord
	RawMedias []instagram.MediaItem
}

// CrawlHashtag pages through the hashtag search endpoint collecting at
// most maxPosts unique authors. Later posts by an already-seen author are
// dropped. On a mid-crawl failure the accumulated records are returned
// together with the typed error that stopped the crawl; err is nil when
// pagination ended naturally.
func (c *Crawler) CrawlHashtag(hashtag string, maxPosts int) (*HashtagResult, error) {
	hashtag = strings.TrimPrefix(strings.TrimSpace(hashtag), "#")
	if hashtag == "" {
		return nil, errors.New(errors.ErrorTypeValidation, "hashtag must not be empty", 0)
	}

	result := &HashtagResult{
		Hashtag: hashtag,
		Records: []models.MediaRecord{},
	}
	if maxPosts <= 0 {
		return result, nil
	}

	log := c.logger.WithField("hashtag", hashtag)
	log.InfoWithFields("starting hashtag crawl", map[string]interface{}{
		"max_posts": maxPosts,
	})

	// One correlation token per crawl, required by the search endpoint.
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
		result.RawMedias = append(result.RawMedias, medias...)

		for i := range medias {
			if len(result.Records) >= maxPosts {
				break
			}
			media := medias[i].Resolve()

			username := ""
			if media.Caption != nil {
				username = media.Caption.User.Username
			}
			if username == "" {
				continue
			}
			if _, ok := seen[username]; ok {
				// First occurrence per author wins; later posts by
				// the same author are dropped.
				continue
			}
			seen[username] = struct{}{}

			result.Records = append(result.Records, mediaRecord(media))
			log.DebugWithFields("collected author", map[string]interface{}{
				"username": username,
				"count":    len(result.Records),
			})
		}

		if len(result.Records) >= maxPosts {
			return "", true, nil
		}
		return resp.NextCursor(), false, nil
	})

	if err != nil {
		log.WithError(err).WarnWithFields("hashtag crawl stopped early", map[string]interface{}{
			"collected": len(result.Records),
		})
		return result, err
	}

	log.InfoWithFields("hashtag crawl finished", map[string]interface{}{
		"unique_authors": len(result.Records),
		"raw_medias":     len(result.RawMedias),
	})
	return result, nil
}

// mediaRecord flattens one media into the export schema. Missing nested
// objects leave the corresponding fields at their zero values.
func mediaRecord(media *instagram.Media) models.MediaRecord {
	rec := models.MediaRecord{
		PK:           media.PK.String(),
		LikeCount:    media.LikeCount,
		CommentCount: media.CommentCount,
	}
	if caption := media.Caption; caption != nil {
		rec.Username = caption.User.Username
		rec.FullName = caption.User.FullName
		rec.ContentType = caption.ContentType
		rec.Text = caption.Text
		rec.TextTranslation = caption.TextTranslation
	}
	if location := media.Location; location != nil {
		rec.LocationName = location.Name
		rec.LocationAddress = location.Address
		rec.LocationCity = location.City
		rec.LocationShortName = location.ShortName
	}
	return rec
}
