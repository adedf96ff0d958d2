package store

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brettboylen/post-index/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newPost(ts time.Time, views int) *models.Post {
	return &models.Post{Timestamp: ts, Content: string(models.ContentHappy), Views: views}
}
