package instagram

import (
	"fmt"
	"net/url"
)

const (
	// BaseURL is the base URL for Instagram web API calls
	BaseURL = "https://www.instagram.com"

	// SearchEndpoint serves hashtag search results
	SearchEndpoint = "/api/v1/fbsearch/web/top_serp/"

	// CommentsEndpointPattern serves top-level comments for one media
	CommentsEndpointPattern = "/api/v1/media/%s/comments/"

	// ChildCommentsEndpointPattern serves replies under one comment
	ChildCommentsEndpointPattern = "/api/v1/media/%s/comments/%s/child_comments/"

	// AccountSettingsEndpoint answers 200 only for authenticated sessions
	// and redirects to the login page otherwise
	AccountSettingsEndpoint = "/accounts/edit/"

	// AppID is the X-IG-App-ID value the web client sends
	AppID = "936619743392459"

	// ASBDID is the X-ASBD-ID anti-bot identifier
	ASBDID = "359341"
)

// SearchPath returns the hashtag search endpoint path
func SearchPath() string {
	return SearchEndpoint
}

// CommentsPath returns the comments endpoint path for a media ID
func CommentsPath(mediaID string) string {
	return fmt.Sprintf(CommentsEndpointPattern, url.PathEscape(mediaID))
}

// ChildCommentsPath returns the child-comments endpoint path for a comment
// under a media
func ChildCommentsPath(mediaID, commentPK string) string {
	return fmt.Sprintf(ChildCommentsEndpointPattern, url.PathEscape(mediaID), url.PathEscape(commentPK))
}

// SearchParams builds the query parameters for one hashtag search page.
// rankToken is a per-crawl correlation token; cursor is empty for the
// first page.
func SearchParams(hashtag, rankToken, cursor string) url.Values {
	params := url.Values{}
	params.Set("enable_metadata", "true")
	params.Set("query", "#"+hashtag)
	params.Set("search_session_id", "")
	params.Set("rank_token", rankToken)
	if cursor != "" {
		params.Set("next_max_id", cursor)
	}
	return params
}

// CommentsParams builds the query parameters for one page of top-level
// comments. cursor is empty for the first page.
func CommentsParams(cursor string) url.Values {
	params := url.Values{}
	params.Set("can_support_threading", "true")
	params.Set("permalink_enabled", "false")
	if cursor != "" {
		params.Set("min_id", cursor)
	}
	return params
}

// ChildCommentsParams builds the query parameters for one page of replies
func ChildCommentsParams(cursor string) url.Values {
	params := url.Values{}
	params.Set("min_id", cursor)
	params.Set("is_chronological", "true")
	params.Set("paging_direction", "view_more")
	return params
}
