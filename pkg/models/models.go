// Package models defines the normalized records handed to exporters.
package models

// CommentDepth marks a comment's position in the flattened tree
type CommentDepth string

const (
	// DepthRoot marks a top-level comment
	DepthRoot CommentDepth = "root"
	// DepthChild marks a reply nested under a top-level comment
	DepthChild CommentDepth = "child"
)

// MediaRecord is one discovered post, keyed by author username within a
// hashtag crawl. Count fields are nil when the API omitted them.
type MediaRecord struct {
	Username          string `json:"username"`
	FullName          string `json:"full_name"`
	PK                string `json:"pk"`
	LikeCount         *int   `json:"like_count"`
	CommentCount      *int   `json:"comment_count"`
	LocationName      string `json:"location_name"`
	LocationAddress   string `json:"location_address"`
	LocationCity      string `json:"location_city"`
	LocationShortName string `json:"location_short_name"`
	ContentType       string `json:"content_type"`
	Text              string `json:"text"`
	TextTranslation   string `json:"text_translation"`
}

// PostWithComments pairs one post with its collected comment sequence,
// in the same order CommentRecord mandates.
type PostWithComments struct {
	Post     MediaRecord     `json:"post"`
	Comments []CommentRecord `json:"comments"`
}

// CommentRecord is one comment or reply. Output order is significant: a
// child record immediately follows its parent and precedes the parent's
// next sibling.
type CommentRecord struct {
	Depth             CommentDepth `json:"depth"`
	Username          string       `json:"username"`
	FullName          string       `json:"full_name"`
	Text              string       `json:"text"`
	CommentLikeCount  int          `json:"comment_like_count"`
	ChildCommentCount int          `json:"child_comment_count"`
	PK                string       `json:"pk"`
	MediaID           string       `json:"media_id"`
}
