package db

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettboylen/post-index/models"
)

func openTestDatabase(t *testing.T) (*Database, string) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	path := filepath.Join(t.TempDir(), "posts.db")
	database, err := NewDatabase(path, log)
	require.NoError(t, err)
	return database, path
}

func TestSaveAndLoadPosts(t *testing.T) {
	database, _ := openTestDatabase(t)
	defer database.Close()

	posts := []models.Post{
		{Timestamp: time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC), Content: "b", Author: "user 1", Views: 3},
		{Timestamp: time.Date(2020, time.March, 1, 12, 0, 0, 5, time.UTC), Content: "a", Author: "user 2", Views: 9999},
	}
	for i := range posts {
		require.NoError(t, database.SavePost(&posts[i]))
	}

	loaded, err := database.LoadPosts()
	require.NoError(t, err)
	assert.Equal(t, posts, loaded)

	total, err := database.GetTotalPosts()
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestSavePostIgnoresDuplicateTimestamp(t *testing.T) {
	database, _ := openTestDatabase(t)
	defer database.Close()

	ts := time.Date(2021, time.July, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, database.SavePost(&models.Post{Timestamp: ts, Content: "first", Author: "user 1", Views: 1}))
	require.NoError(t, database.SavePost(&models.Post{Timestamp: ts, Content: "second", Author: "user 2", Views: 2}))

	loaded, err := database.LoadPosts()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "first", loaded[0].Content)
}

func TestArchiveSurvivesReopen(t *testing.T) {
	database, path := openTestDatabase(t)
	ts := time.Date(2023, time.May, 5, 5, 5, 5, 0, time.UTC)
	require.NoError(t, database.SavePost(&models.Post{Timestamp: ts, Content: "kept", Author: "user 1", Views: 7}))
	require.NoError(t, database.Close())

	log := logrus.New()
	log.SetOutput(io.Discard)
	reopened, err := NewDatabase(path, log)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.LoadPosts()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0].Timestamp.Equal(ts))
}
