// Package crawler implements the hashtag and comment-tree crawls: cursor
// pagination with a shared termination guard, per-author deduplication,
// and budget-aware depth-first flattening of reply threads.
package crawler
