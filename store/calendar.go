package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/brettboylen/post-index/models"
)

// CalendarIndex buckets posts by year and month in insertion order
type CalendarIndex struct {
	years map[int]map[time.Month][]*models.Post
}

// NewCalendarIndex creates an empty index
func NewCalendarIndex() *CalendarIndex {
	return &CalendarIndex{
		years: make(map[int]map[time.Month][]*models.Post),
	}
}

// Insert appends the post to its (year, month) bucket, creating it if needed
func (c *CalendarIndex) Insert(post *models.Post) {
	year, month := post.Timestamp.Year(), post.Timestamp.Month()

	months, exists := c.years[year]
	if !exists {
		months = make(map[time.Month][]*models.Post)
		c.years[year] = months
	}
	months[month] = append(months[month], post)
}

// Range returns every post whose year falls in [startYear, endYear].
// Years and months are visited in ascending order, posts in insertion order.
func (c *CalendarIndex) Range(startYear, endYear int) ([]*models.Post, error) {
	if startYear > endYear {
		return nil, fmt.Errorf("start year %d after end year %d: %w", startYear, endYear, ErrInvalidRange)
	}

	posts := make([]*models.Post, 0)
	for _, year := range c.sortedYears() {
		if year < startYear || year > endYear {
			continue
		}
		months := c.years[year]
		for month := time.January; month <= time.December; month++ {
			posts = append(posts, months[month]...)
		}
	}
	return posts, nil
}

// Bucket returns the posts stored for a year and month
func (c *CalendarIndex) Bucket(year int, month time.Month) ([]*models.Post, error) {
	bucket := c.years[year][month]
	if len(bucket) == 0 {
		return nil, fmt.Errorf("no posts for %d-%02d: %w", year, int(month), ErrNotFound)
	}
	return bucket, nil
}

// Sample picks one post from the bucket using choose(n), which must return a value in [0, n)
func (c *CalendarIndex) Sample(year int, month time.Month, choose func(n int) int) (*models.Post, error) {
	bucket, err := c.Bucket(year, month)
	if err != nil {
		return nil, err
	}
	return bucket[choose(len(bucket))], nil
}

// CountByYear returns the number of posts per year
func (c *CalendarIndex) CountByYear() map[int]int {
	counts := make(map[int]int, len(c.years))
	for year, months := range c.years {
		for _, bucket := range months {
			counts[year] += len(bucket)
		}
	}
	return counts
}

func (c *CalendarIndex) sortedYears() []int {
	years := make([]int, 0, len(c.years))
	for year := range c.years {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}
