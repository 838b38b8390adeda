package crawler

// fetchPage fetches one page for the given cursor. It returns the cursor
// of the next page (empty when the endpoint has no more), whether the
// caller wants to stop early (cap reached, empty page), and the fetch
// error if any.
type fetchPage func(cursor string) (next string, stop bool, err error)

// paginate drives a cursor loop until the cursor is absent, the fetch
// signals stop, an error occurs, or the page guard trips. Every paginated
// endpoint (hashtag search, comments, child comments) goes through here
// so the termination rules live in one place.
func (c *Crawler) paginate(fetch fetchPage) error {
	cursor := ""
	for page := 0; page < c.maxPages; page++ {
		next, stop, err := fetch(cursor)
		if err != nil {
			return err
		}
		if stop || next == "" {
			return nil
		}
		cursor = next
	}

	c.logger.WarnWithFields("page guard reached, stopping pagination", map[string]interface{}{
		"max_pages": c.maxPages,
	})
	return nil
}
