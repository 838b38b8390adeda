package instagram

import "encoding/json"

// User is the nested author object on medias, captions and comments
type User struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// Caption carries the post text and its author
type Caption struct {
	User            User   `json:"user"`
	ContentType     string `json:"content_type"`
	Text            string `json:"text"`
	TextTranslation string `json:"text_translation"`
}

// Location is the optional place attached to a media
type Location struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	ShortName string `json:"short_name"`
}

// Media is one post. PK is a json.Number because the API serves it as a
// bare integer on some endpoints and a string on others.
type Media struct {
	PK           json.Number `json:"pk"`
	LikeCount    *int        `json:"like_count"`
	CommentCount *int        `json:"comment_count"`
	Caption      *Caption    `json:"caption"`
	Location     *Location   `json:"location"`
}

// MediaItem is one entry of a media list. Search sections wrap the media
// under a "media" key; the top-level medias/items shapes inline it.
type MediaItem struct {
	Media
	Wrapped *Media `json:"media"`
}

// Resolve returns the wrapped media when present, else the inline one
func (mi *MediaItem) Resolve() *Media {
	if mi.Wrapped != nil {
		return mi.Wrapped
	}
	return &mi.Media
}

// LayoutContent holds the medias of one search section
type LayoutContent struct {
	Medias []MediaItem `json:"medias"`
}

// Section is one layout section of a search response
type Section struct {
	LayoutContent LayoutContent `json:"layout_content"`
}

// MediaGrid is the primary search result container
type MediaGrid struct {
	Sections  []Section `json:"sections"`
	NextMaxID string    `json:"next_max_id"`
}

// SearchResponse is the hashtag search envelope. The API serves one of
// four shapes; all are mapped here and disambiguated by ExtractMedias.
type SearchResponse struct {
	MediaGrid *MediaGrid  `json:"media_grid"`
	Sections  []Section   `json:"sections"`
	Medias    []MediaItem `json:"medias"`
	Items     []MediaItem `json:"items"`
	NextMaxID string      `json:"next_max_id"`
}

// NextCursor returns the pagination cursor for the next search page.
// It lives under media_grid when that container is present, with the
// top-level value as fallback. Empty means no more pages.
func (r *SearchResponse) NextCursor() string {
	if r.MediaGrid != nil && r.MediaGrid.NextMaxID != "" {
		return r.MediaGrid.NextMaxID
	}
	return r.NextMaxID
}

// Comment is one comment or reply
type Comment struct {
	PK                json.Number `json:"pk"`
	Text              string      `json:"text"`
	CommentLikeCount  int         `json:"comment_like_count"`
	ChildCommentCount int         `json:"child_comment_count"`
	User              User        `json:"user"`
}

// CommentsResponse is one page of top-level comments
type CommentsResponse struct {
	Comments     []Comment `json:"comments"`
	Caption      *Caption  `json:"caption"`
	CommentCount *int      `json:"comment_count"`
	NextMinID    string    `json:"next_min_id"`
}

// ChildCommentsResponse is one page of replies under a comment
type ChildCommentsResponse struct {
	ChildComments []Comment `json:"child_comments"`
	NextMinID     string    `json:"next_min_id"`
}
