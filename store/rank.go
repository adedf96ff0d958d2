package store

import (
	"container/heap"
	"fmt"
	"time"

	"github.com/brettboylen/post-index/models"
)

// rankEntry copies the sort keys so heap ordering never has to follow the pointer
type rankEntry struct {
	views int
	key   time.Time
	post  *models.Post
}

// rankHeap implements heap.Interface; less decides the direction
type rankHeap struct {
	entries []rankEntry
	less    func(a, b rankEntry) bool
}

func (h *rankHeap) Len() int           { return len(h.entries) }
func (h *rankHeap) Less(i, j int) bool { return h.less(h.entries[i], h.entries[j]) }
func (h *rankHeap) Swap(i, j int)      { h.entries[i], h.entries[j] = h.entries[j], h.entries[i] }

func (h *rankHeap) Push(x any) {
	h.entries = append(h.entries, x.(rankEntry))
}

func (h *rankHeap) Pop() any {
	old := h.entries
	n := len(old)
	entry := old[n-1]
	old[n-1] = rankEntry{}
	h.entries = old[:n-1]
	return entry
}

// ties go to the earlier timestamp in both directions
func fewerViews(a, b rankEntry) bool {
	if a.views != b.views {
		return a.views < b.views
	}
	return a.key.Before(b.key)
}

func moreViews(a, b rankEntry) bool {
	if a.views != b.views {
		return a.views > b.views
	}
	return a.key.Before(b.key)
}

// Rank keeps a min and a max heap over view counts.
// Every push lands in both heaps; pops drain only the heap they read from.
type Rank struct {
	min *rankHeap
	max *rankHeap
}

// NewRank creates an empty pair of rank heaps
func NewRank() *Rank {
	return &Rank{
		min: &rankHeap{less: fewerViews},
		max: &rankHeap{less: moreViews},
	}
}

// Push adds a post to both heaps
func (r *Rank) Push(post *models.Post) {
	entry := rankEntry{
		views: post.Views,
		key:   timestampKey(post.Timestamp),
		post:  post,
	}
	heap.Push(r.min, entry)
	heap.Push(r.max, entry)
}

// MinLen returns the number of entries left in the min heap
func (r *Rank) MinLen() int {
	return r.min.Len()
}

// MaxLen returns the number of entries left in the max heap
func (r *Rank) MaxLen() int {
	return r.max.Len()
}

// PeekMax returns the most viewed post without removing it
func (r *Rank) PeekMax() (*models.Post, error) {
	return peek(r.max, "most viewed")
}

// PeekMin returns the least viewed post without removing it
func (r *Rank) PeekMin() (*models.Post, error) {
	return peek(r.min, "least viewed")
}

// PopMin removes and returns the least viewed post
func (r *Rank) PopMin() (*models.Post, error) {
	if r.min.Len() == 0 {
		return nil, fmt.Errorf("least viewed: %w", ErrEmpty)
	}
	return heap.Pop(r.min).(rankEntry).post, nil
}

// DrainDescending empties the max heap, most viewed first
func (r *Rank) DrainDescending() []*models.Post {
	return drain(r.max)
}

// DrainAscending empties the min heap, least viewed first
func (r *Rank) DrainAscending() []*models.Post {
	return drain(r.min)
}

func peek(h *rankHeap, what string) (*models.Post, error) {
	if h.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", what, ErrEmpty)
	}
	return h.entries[0].post, nil
}

func drain(h *rankHeap) []*models.Post {
	posts := make([]*models.Post, 0, h.Len())
	for h.Len() > 0 {
		posts = append(posts, heap.Pop(h).(rankEntry).post)
	}
	return posts
}
