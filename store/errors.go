package store

import "errors"

var (
	// ErrDuplicateKey is returned when a post with the same timestamp already exists
	ErrDuplicateKey = errors.New("duplicate timestamp")
	// ErrNotFound is returned for lookups against an absent key or an empty bucket
	ErrNotFound = errors.New("post not found")
	// ErrEmpty is returned by extremal queries against an empty rank structure
	ErrEmpty = errors.New("no more posts")
	// ErrInvalidRange is returned when a range query has start after end
	ErrInvalidRange = errors.New("invalid range")
	// ErrInvalidPost is returned for candidates with a zero timestamp or negative views
	ErrInvalidPost = errors.New("invalid post")
)
