package generator

import (
	"math"
	"math/rand"
	"time"

	"github.com/brettboylen/post-index/models"
)

const (
	// DefaultStartDate is the earliest timestamp the generator produces
	DefaultStartDate = "2020-01-01"

	weibullScale = 1.5
	weibullShape = 2.0
	viewsFactor  = 1000
)

// Generator produces random candidate posts with blank authors
type Generator struct {
	rng   *rand.Rand
	start time.Time
	now   func() time.Time
}

// NewGenerator creates a generator producing timestamps between start and now.
// A zero seed seeds from the clock.
func NewGenerator(start time.Time, seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng:   rand.New(rand.NewSource(seed)),
		start: start.UTC(),
		now:   time.Now,
	}
}

// RandomTimestamp returns a whole second chosen uniformly in [start, now]
func (g *Generator) RandomTimestamp() time.Time {
	span := int64(g.now().Sub(g.start) / time.Second)
	if span <= 0 {
		return g.start
	}
	return g.start.Add(time.Duration(g.rng.Int63n(span+1)) * time.Second)
}

// RandomContent returns one of the fixed captions
func (g *Generator) RandomContent() string {
	return string(models.Contents[g.rng.Intn(len(models.Contents))])
}

// RandomViews draws a Weibull-distributed view count
func (g *Generator) RandomViews() int {
	u := g.rng.Float64()
	sample := weibullScale * math.Pow(-math.Log(1-u), 1/weibullShape)
	return int(sample * viewsFactor)
}

// Post returns one candidate post
func (g *Generator) Post() models.Post {
	return models.Post{
		Timestamp: g.RandomTimestamp(),
		Content:   g.RandomContent(),
		Views:     g.RandomViews(),
	}
}

// Generate returns n candidate posts
func (g *Generator) Generate(n int) []models.Post {
	if n <= 0 {
		return nil
	}
	posts := make([]models.Post, n)
	for i := range posts {
		posts[i] = g.Post()
	}
	return posts
}
