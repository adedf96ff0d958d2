package stats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/brettboylen/post-index/models"
	"github.com/brettboylen/post-index/store"
)

const defaultStatsInterval = 10 * time.Second

// PostSource produces candidate posts
type PostSource interface {
	Generate(n int) []models.Post
}

// Collector feeds generated posts into the store and keeps a statistics snapshot
type Collector struct {
	store          *store.Store
	source         PostSource
	feedInterval   time.Duration
	batchSize      int
	statsInterval  time.Duration
	stats          models.StoreStats
	log            *logrus.Logger
	mutex          sync.RWMutex
	insertedPosts  int
	duplicatePosts int
}

// NewCollector creates a new collector
func NewCollector(
	postStore *store.Store,
	source PostSource,
	feedInterval int,
	batchSize int,
	log *logrus.Logger,
) *Collector {
	return &Collector{
		store:         postStore,
		source:        source,
		feedInterval:  time.Duration(feedInterval) * time.Second,
		batchSize:     batchSize,
		statsInterval: defaultStatsInterval,
		stats: models.StoreStats{
			PostsByYear: make(map[int]int),
			StartTime:   time.Now(),
			LastUpdated: time.Now(),
		},
		log: log,
	}
}

// Start feeds the store on every tick until ctx is cancelled.
// With a zero feed interval only the statistics are refreshed.
func (c *Collector) Start(ctx context.Context) error {
	c.updateStatistics()

	var feed <-chan time.Time
	if c.feedInterval > 0 {
		ticker := time.NewTicker(c.feedInterval)
		defer ticker.Stop()
		feed = ticker.C

		c.log.WithFields(logrus.Fields{
			"interval_sec": c.feedInterval.Seconds(),
			"batch_size":   c.batchSize,
		}).Info("Post feeder started")
	}

	statsTicker := time.NewTicker(c.statsInterval)
	defer statsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-feed:
			c.Feed(c.batchSize)
		case <-statsTicker.C:
			c.updateStatistics()
			c.logStatistics()
		}
	}
}

// Feed generates n posts and inserts them in generation order,
// so authors follow the generator sequence. It returns the posts the store accepted.
func (c *Collector) Feed(n int) []models.Post {
	candidates := c.source.Generate(n)
	if len(candidates) == 0 {
		return nil
	}

	accepted := make([]models.Post, 0, len(candidates))
	for _, candidate := range candidates {
		post, err := c.insertPost(candidate)
		if err != nil {
			c.log.WithError(err).Warn("Error inserting generated post")
			continue
		}
		accepted = append(accepted, post)
	}

	c.log.WithFields(logrus.Fields{
		"generated": len(candidates),
		"accepted":  len(accepted),
	}).Info("Fed generated posts")

	c.updateStatistics()
	return accepted
}

// insertPost stores a single post
func (c *Collector) insertPost(candidate models.Post) (models.Post, error) {
	post, err := c.store.Insert(candidate)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			c.mutex.Lock()
			c.duplicatePosts++
			c.mutex.Unlock()
		}
		return models.Post{}, fmt.Errorf("failed to insert post: %w", err)
	}

	c.mutex.Lock()
	c.insertedPosts++
	c.mutex.Unlock()

	return post, nil
}

// updateStatistics refreshes the snapshot from the store
func (c *Collector) updateStatistics() {
	snapshot := c.store.Stats()

	c.mutex.Lock()
	snapshot.StartTime = c.stats.StartTime
	snapshot.LastUpdated = time.Now()
	snapshot.InsertedInRun = c.insertedPosts
	c.stats = snapshot
	c.mutex.Unlock()
}

// logStatistics logs the current statistics
func (c *Collector) logStatistics() {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	c.log.WithFields(logrus.Fields{
		"total_posts":      humanize.Comma(int64(c.stats.TotalPosts)),
		"inserted_in_run":  c.insertedPosts,
		"duplicates":       c.duplicatePosts,
		"years":            len(c.stats.PostsByYear),
		"tree_height":      c.stats.TreeHeight,
		"max_rank_entries": c.stats.MaxRankSize,
		"min_rank_entries": c.stats.MinRankSize,
		"running_since":    humanize.Time(c.stats.StartTime),
	}).Info("Statistics updated")
}

// GetStatistics returns a copy of the current statistics
func (c *Collector) GetStatistics() models.StoreStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := c.stats
	stats.PostsByYear = make(map[int]int, len(c.stats.PostsByYear))
	for year, count := range c.stats.PostsByYear {
		stats.PostsByYear[year] = count
	}
	return stats
}
