package instagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaths(t *testing.T) {
	assert.Equal(t, "/api/v1/fbsearch/web/top_serp/", SearchPath())
	assert.Equal(t, "/api/v1/media/3271813298215588707/comments/", CommentsPath("3271813298215588707"))
	assert.Equal(t, "/api/v1/media/123/comments/456/child_comments/", ChildCommentsPath("123", "456"))
}

func TestPathsEscapeIDs(t *testing.T) {
	assert.Equal(t, "/api/v1/media/a%2Fb/comments/", CommentsPath("a/b"))
}

func TestSearchParams(t *testing.T) {
	params := SearchParams("streetphotography", "rank-token", "")

	assert.Equal(t, "true", params.Get("enable_metadata"))
	assert.Equal(t, "#streetphotography", params.Get("query"))
	assert.Equal(t, "rank-token", params.Get("rank_token"))
	assert.False(t, params.Has("next_max_id"))

	withCursor := SearchParams("streetphotography", "rank-token", "cursor-1")
	assert.Equal(t, "cursor-1", withCursor.Get("next_max_id"))
}

func TestCommentsParams(t *testing.T) {
	params := CommentsParams("")
	assert.Equal(t, "true", params.Get("can_support_threading"))
	assert.Equal(t, "false", params.Get("permalink_enabled"))
	assert.False(t, params.Has("min_id"))

	withCursor := CommentsParams("min-5")
	assert.Equal(t, "min-5", withCursor.Get("min_id"))
}

func TestChildCommentsParams(t *testing.T) {
	params := ChildCommentsParams("min-7")
	assert.Equal(t, "min-7", params.Get("min_id"))
	assert.Equal(t, "true", params.Get("is_chronological"))
	assert.Equal(t, "view_more", params.Get("paging_direction"))

	// min_id is always sent for replies, even empty.
	first := ChildCommentsParams("")
	assert.True(t, first.Has("min_id"))
	assert.Equal(t, "", first.Get("min_id"))
}
