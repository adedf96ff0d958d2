package models

import (
	"time"
)

// Content is one of the fixed captions the generator draws from
type Content string

const (
	ContentLife      Content = "Just living life #love"
	ContentWorld     Content = "What a wonderful world #travel #blessed"
	ContentShocked   Content = "Can't believe this happened! #shocked"
	ContentPhoto     Content = "Look at this! #photooftheday"
	ContentThrowback Content = "Throwback to last year! #nostalgia"
	ContentHappy     Content = "Best day ever! #happy"
	ContentTech      Content = "Check out my new gear! #tech"
	ContentWaves     Content = "Making waves #innovation #startups"
)

// Contents lists every caption in declaration order
var Contents = []Content{
	ContentLife,
	ContentWorld,
	ContentShocked,
	ContentPhoto,
	ContentThrowback,
	ContentHappy,
	ContentTech,
	ContentWaves,
}

// Post represents a timestamped content record.
// Author is assigned by the store on insert and is blank on candidates.
type Post struct {
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Views     int       `json:"views"`
}

// StoreStats holds a snapshot of the post store
type StoreStats struct {
	TotalPosts    int         `json:"total_posts"`
	PostsByYear   map[int]int `json:"posts_by_year"`
	MaxRankSize   int         `json:"max_rank_size"`
	MinRankSize   int         `json:"min_rank_size"`
	TreeHeight    int         `json:"tree_height"`
	Earliest      *time.Time  `json:"earliest,omitempty"`
	Latest        *time.Time  `json:"latest,omitempty"`
	StartTime     time.Time   `json:"start_time"`
	LastUpdated   time.Time   `json:"last_updated"`
	InsertedInRun int         `json:"inserted_in_run"`
}
