package store

import (
	"fmt"
	"time"

	"github.com/brettboylen/post-index/models"
)

// IdentityIndex maps a timestamp to the authoritative post record
type IdentityIndex struct {
	posts map[time.Time]*models.Post
}

// NewIdentityIndex creates an empty index
func NewIdentityIndex() *IdentityIndex {
	return &IdentityIndex{
		posts: make(map[time.Time]*models.Post),
	}
}

// timestampKey is the identity of a post.
// UTC drops the zone and the monotonic reading, so equal instants are equal keys.
func timestampKey(ts time.Time) time.Time {
	return ts.UTC()
}

// Len returns the number of indexed posts
func (i *IdentityIndex) Len() int {
	return len(i.posts)
}

// Contains reports whether a post with this timestamp exists
func (i *IdentityIndex) Contains(ts time.Time) bool {
	_, exists := i.posts[timestampKey(ts)]
	return exists
}

// Insert stores the post under its timestamp
func (i *IdentityIndex) Insert(post *models.Post) error {
	key := timestampKey(post.Timestamp)
	if _, exists := i.posts[key]; exists {
		return fmt.Errorf("post at %s: %w", post.Timestamp.Format(time.RFC3339Nano), ErrDuplicateKey)
	}
	i.posts[key] = post
	return nil
}

// Get returns the post stored under the timestamp
func (i *IdentityIndex) Get(ts time.Time) (*models.Post, error) {
	post, exists := i.posts[timestampKey(ts)]
	if !exists {
		return nil, fmt.Errorf("post at %s: %w", ts.Format(time.RFC3339Nano), ErrNotFound)
	}
	return post, nil
}
