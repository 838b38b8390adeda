package crawler

import (
	"igcrawler/pkg/instagram"
	"igcrawler/pkg/logger"
)

// Crawler runs hashtag and comment-tree crawls through one rate-limited
// requester. Crawls are strictly sequential: every call blocks until its
// outcome is resolved, so the politeness interval orders all traffic of
// the session.
type Crawler struct {
	requester *instagram.Requester
	maxPages  int
	logger    logger.Logger
}

// New creates a crawler. maxPages bounds every pagination loop as a guard
// against endpoints that keep returning a cursor.
func New(requester *instagram.Requester, maxPages int, log logger.Logger) *Crawler {
	if log == nil {
		log = logger.GetLogger()
	}
	if maxPages <= 0 {
		maxPages = 1
	}
	return &Crawler{
		requester: requester,
		maxPages:  maxPages,
		logger:    log,
	}
}
