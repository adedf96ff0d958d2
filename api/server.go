package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/brettboylen/post-index/models"
	"github.com/brettboylen/post-index/store"
)

// StatsProvider returns the latest statistics snapshot
type StatsProvider interface {
	GetStatistics() models.StoreStats
}

// PostRequest is the body accepted by POST /api/posts
type PostRequest struct {
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
	Views     int       `json:"views"`
}

// Server exposes the post store over HTTP
type Server struct {
	echo    *echo.Echo
	store   *store.Store
	stats   StatsProvider
	metrics *Metrics
	log     *logrus.Logger
}

// NewServer builds the Echo router; maxRequestsPerMinute limits each client IP
func NewServer(postStore *store.Store, stats StatsProvider, maxRequestsPerMinute int, log *logrus.Logger) *Server {
	s := &Server{
		echo:    echo.New(),
		store:   postStore,
		stats:   stats,
		metrics: NewMetrics(postStore),
		log:     log,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true

	// middleware
	s.echo.Use(middleware.Logger())
	s.echo.Use(middleware.Recover())
	s.echo.Use(s.metrics.Middleware())

	requestsPerSecond := float64(maxRequestsPerMinute) / 60.0

	rateLimiterConfig := middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz" || c.Path() == "/metrics"
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(requestsPerSecond),
				Burst:     max(1, maxRequestsPerMinute/10),
				ExpiresIn: 3 * time.Minute,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(ctx echo.Context, err error) error {
			return ctx.JSON(http.StatusForbidden, errorBody("Unable to identify client"))
		},
		DenyHandler: func(ctx echo.Context, identifier string, err error) error {
			return ctx.JSON(http.StatusTooManyRequests, errorBody("Rate limit exceeded, please try again later"))
		},
	}
	s.echo.Use(middleware.RateLimiterWithConfig(rateLimiterConfig))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/api/posts", s.rangeByYear)
	s.echo.POST("/api/posts", s.insert)
	s.echo.GET("/api/posts/ordered", s.inOrder)
	s.echo.GET("/api/posts/top", s.mostViewed)
	s.echo.POST("/api/posts/drain", s.drain)
	s.echo.POST("/api/posts/least-viewed/pop", s.popLeastViewed)
	s.echo.GET("/api/posts/sample/:year/:month", s.sample)
	s.echo.GET("/api/posts/:timestamp", s.lookup)
	s.echo.GET("/api/stats", s.statistics)
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	// health check endpoint
	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}

// Handler returns the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on port until ctx is cancelled
func (s *Server) Run(ctx context.Context, port int) error {
	errCh := make(chan error, 1)
	go func() {
		serverAddr := fmt.Sprintf(":%d", port)
		s.log.WithField("port", port).Info("Starting API server")
		if err := s.echo.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("API server failed: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("API server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) insert(c echo.Context) error {
	var req PostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}

	post, err := s.store.Insert(models.Post{
		Timestamp: req.Timestamp,
		Content:   req.Content,
		Views:     req.Views,
	})
	if err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusCreated, post)
}

func (s *Server) lookup(c echo.Context) error {
	ts, err := time.Parse(time.RFC3339Nano, c.Param("timestamp"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("timestamp must be RFC3339"))
	}

	post, err := s.store.LookupByTimestamp(ts)
	if err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

func (s *Server) rangeByYear(c echo.Context) error {
	startYear, err := strconv.Atoi(c.QueryParam("start_year"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("start_year must be an integer"))
	}
	endYear, err := strconv.Atoi(c.QueryParam("end_year"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("end_year must be an integer"))
	}

	posts, err := s.store.RangeByYear(startYear, endYear)
	if err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (s *Server) sample(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("year must be an integer"))
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("month must be an integer"))
	}

	post, err := s.store.SampleByYearMonth(year, time.Month(month))
	if err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

func (s *Server) mostViewed(c echo.Context) error {
	post, err := s.store.PeekMostViewed()
	if err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

func (s *Server) popLeastViewed(c echo.Context) error {
	post, err := s.store.PopLeastViewed()
	if err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

func (s *Server) drain(c echo.Context) error {
	switch c.QueryParam("order") {
	case "", "desc":
		return c.JSON(http.StatusOK, s.store.DrainByPopularityDescending())
	case "asc":
		return c.JSON(http.StatusOK, s.store.DrainByPopularityAscending())
	default:
		return c.JSON(http.StatusBadRequest, errorBody("order must be asc or desc"))
	}
}

func (s *Server) inOrder(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.InOrder())
}

func (s *Server) statistics(c echo.Context) error {
	if s.stats == nil {
		return c.JSON(http.StatusOK, s.store.Stats())
	}
	return c.JSON(http.StatusOK, s.stats.GetStatistics())
}

// storeError maps store sentinels onto HTTP status codes
func (s *Server) storeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrEmpty):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateKey):
		status = http.StatusConflict
	case errors.Is(err, store.ErrInvalidRange), errors.Is(err, store.ErrInvalidPost):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.log.WithError(err).WithField("path", c.Path()).Error("Unexpected store error")
	}
	return c.JSON(status, errorBody(err.Error()))
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
