package store

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brettboylen/post-index/models"
)

// Store keeps every post in four indexes at once:
// identity (exact lookup), calendar (range and sampling),
// timestamp tree (ordered walk) and rank heaps (popularity).
// A single mutex covers all of them so an insert is never half visible.
type Store struct {
	identity *IdentityIndex
	calendar *CalendarIndex
	tree     *TimestampTree
	rank     *Rank

	rng   *rand.Rand
	rngMu sync.Mutex

	hooks []InsertHook

	log   *logrus.Logger
	mutex sync.RWMutex
}

// InsertHook observes every accepted post.
// Hooks run under the store lock, in the order authors are assigned, and must not call back into the store.
type InsertHook func(post models.Post)

// Option configures a Store
type Option func(*Store)

// WithRand sets the random source used for bucket sampling
func WithRand(rng *rand.Rand) Option {
	return func(s *Store) {
		s.rng = rng
	}
}

// WithInsertHook registers a hook called after each successful insert
func WithInsertHook(hook InsertHook) Option {
	return func(s *Store) {
		s.hooks = append(s.hooks, hook)
	}
}

// NewStore creates an empty store
func NewStore(log *logrus.Logger, opts ...Option) *Store {
	s := &Store{
		identity: NewIdentityIndex(),
		calendar: NewCalendarIndex(),
		tree:     NewTimestampTree(),
		rank:     NewRank(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert validates the candidate, assigns its author and adds it to every index.
// A rejected candidate leaves the store unchanged.
func (s *Store) Insert(candidate models.Post) (models.Post, error) {
	if candidate.Timestamp.IsZero() {
		return models.Post{}, fmt.Errorf("missing timestamp: %w", ErrInvalidPost)
	}
	if candidate.Views < 0 {
		return models.Post{}, fmt.Errorf("negative view count %d: %w", candidate.Views, ErrInvalidPost)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	post := &models.Post{
		Timestamp: candidate.Timestamp.UTC(),
		Content:   candidate.Content,
		Views:     candidate.Views,
	}

	if s.identity.Contains(post.Timestamp) {
		s.log.WithField("timestamp", post.Timestamp).Warn("Rejected duplicate post")
		return models.Post{}, fmt.Errorf("post at %s: %w", post.Timestamp.Format(time.RFC3339Nano), ErrDuplicateKey)
	}

	post.Author = fmt.Sprintf("user %d", s.identity.Len()+1)

	s.calendar.Insert(post)
	if err := s.identity.Insert(post); err != nil {
		panic(fmt.Sprintf("store: identity index out of sync: %v", err))
	}
	if err := s.tree.Insert(post); err != nil {
		panic(fmt.Sprintf("store: timestamp tree out of sync: %v", err))
	}
	s.rank.Push(post)

	for _, hook := range s.hooks {
		hook(*post)
	}

	s.log.WithFields(logrus.Fields{
		"timestamp": post.Timestamp,
		"author":    post.Author,
		"views":     post.Views,
	}).Debug("Inserted post")

	return *post, nil
}

// Len returns the number of stored posts
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.identity.Len()
}

// LookupByTimestamp returns the post created at exactly ts
func (s *Store) LookupByTimestamp(ts time.Time) (models.Post, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	post, err := s.identity.Get(ts)
	if err != nil {
		return models.Post{}, err
	}
	return *post, nil
}

// RangeByYear returns all posts from startYear through endYear inclusive
func (s *Store) RangeByYear(startYear, endYear int) ([]models.Post, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	posts, err := s.calendar.Range(startYear, endYear)
	if err != nil {
		return nil, err
	}
	return copyPosts(posts), nil
}

// SampleByYearMonth returns a random post from the given calendar month
func (s *Store) SampleByYearMonth(year int, month time.Month) (models.Post, error) {
	if month < time.January || month > time.December {
		return models.Post{}, fmt.Errorf("month %d: %w", int(month), ErrInvalidRange)
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	post, err := s.calendar.Sample(year, month, s.choose)
	if err != nil {
		return models.Post{}, err
	}
	return *post, nil
}

// rand.Rand is not safe for concurrent use and sampling only holds the read lock
func (s *Store) choose(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

// PeekMostViewed returns the most viewed post still in the max rank
func (s *Store) PeekMostViewed() (models.Post, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	post, err := s.rank.PeekMax()
	if err != nil {
		return models.Post{}, err
	}
	return *post, nil
}

// PeekLeastViewed returns the least viewed post still in the min rank
func (s *Store) PeekLeastViewed() (models.Post, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	post, err := s.rank.PeekMin()
	if err != nil {
		return models.Post{}, err
	}
	return *post, nil
}

// PopLeastViewed removes the least viewed post from the min rank.
// The post stays reachable through every other query.
func (s *Store) PopLeastViewed() (models.Post, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	post, err := s.rank.PopMin()
	if err != nil {
		return models.Post{}, err
	}
	return *post, nil
}

// DrainByPopularityDescending empties the max rank, most viewed first
func (s *Store) DrainByPopularityDescending() []models.Post {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return copyPosts(s.rank.DrainDescending())
}

// DrainByPopularityAscending empties the min rank, least viewed first
func (s *Store) DrainByPopularityAscending() []models.Post {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return copyPosts(s.rank.DrainAscending())
}

// InOrder returns every post in ascending timestamp order
func (s *Store) InOrder() []models.Post {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	posts := make([]models.Post, 0, s.tree.Len())
	s.tree.Walk(func(post *models.Post) bool {
		posts = append(posts, *post)
		return true
	})
	return posts
}

// Stats returns a snapshot of index sizes
func (s *Store) Stats() models.StoreStats {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stats := models.StoreStats{
		TotalPosts:  s.identity.Len(),
		PostsByYear: s.calendar.CountByYear(),
		MaxRankSize: s.rank.MaxLen(),
		MinRankSize: s.rank.MinLen(),
		TreeHeight:  s.tree.Height(),
	}

	if earliest := s.tree.Min(); earliest != nil {
		ts := earliest.Timestamp
		stats.Earliest = &ts
	}
	if latest := s.tree.Max(); latest != nil {
		ts := latest.Timestamp
		stats.Latest = &ts
	}

	return stats
}

func copyPosts(posts []*models.Post) []models.Post {
	out := make([]models.Post, len(posts))
	for i, post := range posts {
		out[i] = *post
	}
	return out
}
