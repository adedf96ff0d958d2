package menu

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettboylen/post-index/models"
	"github.com/brettboylen/post-index/store"
)

type storeFeeder struct {
	store *store.Store
	next  int
}

func (f *storeFeeder) Feed(n int) []models.Post {
	accepted := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		post, err := f.store.Insert(models.Post{
			Timestamp: time.Date(2023, time.March, 1+f.next, 8, 0, 0, 0, time.UTC),
			Content:   string(models.ContentThrowback),
			Views:     1000 + f.next,
		})
		f.next++
		if err == nil {
			accepted = append(accepted, post)
		}
	}
	return accepted
}

func runMenu(t *testing.T, postStore *store.Store, input ...string) (string, error) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	var out bytes.Buffer
	m := NewMenu(postStore, &storeFeeder{store: postStore}, strings.NewReader(strings.Join(input, "\n")+"\n"), &out, log)
	err := m.Run()
	return out.String(), err
}

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	postStore := store.NewStore(log)
	for _, p := range []models.Post{
		{Timestamp: time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC), Content: "a", Views: 10},
		{Timestamp: time.Date(2021, time.July, 15, 12, 30, 45, 0, time.UTC), Content: "b", Views: 9999},
		{Timestamp: time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC), Content: "c", Views: 3},
	} {
		_, err := postStore.Insert(p)
		require.NoError(t, err)
	}
	return postStore
}

func TestMenuExit(t *testing.T) {
	out, err := runMenu(t, seededStore(t), "6")
	require.NoError(t, err)
	assert.Contains(t, out, "Exiting program.")
}

func TestMenuEndOfInput(t *testing.T) {
	_, err := runMenu(t, seededStore(t), "9")
	assert.True(t, IsEndOfInput(err))
}

func TestMenuInvalidChoice(t *testing.T) {
	out, err := runMenu(t, seededStore(t), "x", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "Invalid choice, please try again.")
}

func TestMenuAddRandomPosts(t *testing.T) {
	postStore := seededStore(t)
	out, err := runMenu(t, postStore, "1", "two", "2", "6")
	require.NoError(t, err)

	assert.Contains(t, out, "Invalid input. Please enter a whole number.")
	assert.Equal(t, 2, strings.Count(out, "Added Post:"))
	assert.Contains(t, out, "by user 4")
	assert.Equal(t, 5, postStore.Len())
}

func TestMenuGetPostByExactTime(t *testing.T) {
	out, err := runMenu(t, seededStore(t), "2", "2021", "7", "yes", "15", "12", "30", "45", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "Retrieved Post: (2021-07-15 12:30:45, 'b', by user 2, views: 9,999)")

	out, err = runMenu(t, seededStore(t), "2", "2021", "7", "yes", "15", "12", "30", "46", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "No post found for the specified datetime.")

	out, err = runMenu(t, seededStore(t), "2", "2021", "7", "yes", "15", "25", "30", "45", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "Invalid input. Please enter valid numerical values.")
}

func TestMenuGetRandomPost(t *testing.T) {
	out, err := runMenu(t, seededStore(t), "2", "2022", "1", "no", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "Retrieved Random Post: (2022-01-01 00:00:00, 'c', by user 3, views: 3)")

	out, err = runMenu(t, seededStore(t), "2", "2022", "5", "no", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "No posts found for the specified year and month.")
}

func TestMenuRange(t *testing.T) {
	out, err := runMenu(t, seededStore(t), "3", "2020", "2021", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "Posts in Range: 2")
	assert.Contains(t, out, "2021-07-15 12:30:45")
	assert.NotContains(t, out, "2022-01-01 00:00:00")

	out, err = runMenu(t, seededStore(t), "3", "2022", "2020", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "Start year must not be after end year.")
}

func TestMenuMostViewedAndDrain(t *testing.T) {
	postStore := seededStore(t)
	out, err := runMenu(t, postStore, "4", "5", "1", "1", "4", "4", "6")
	require.NoError(t, err)

	assert.Contains(t, out, "Most Viewed Post: (2021-07-15 12:30:45, 'b', by user 2, views: 9,999)")
	assert.Contains(t, out, "9,999")
	// second drain and the final peek find the max rank empty
	assert.Equal(t, 2, strings.Count(out, noMorePosts))
	assert.Contains(t, out, "Most Viewed Post: No more posts to display.")

	// the drained posts are still reachable by timestamp
	_, err = postStore.LookupByTimestamp(time.Date(2021, time.July, 15, 12, 30, 45, 0, time.UTC))
	assert.NoError(t, err)
}

func TestMenuAscendingAndPop(t *testing.T) {
	out, err := runMenu(t, seededStore(t), "5", "3", "2", "3", "4", "6")
	require.NoError(t, err)

	assert.Contains(t, out, "Least Viewed Post: (2022-01-01 00:00:00, 'c', by user 3, views: 3)")
	drained := out[strings.Index(out, "Least Viewed Post:"):]
	first := strings.Index(drained, "2020-03-01 00:00:00")
	second := strings.Index(drained, "2021-07-15 12:30:45")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
	assert.Contains(t, drained, noMorePosts)
}

func TestMenuRejectsDayOutsideMonth(t *testing.T) {
	postStore := seededStore(t)
	_, err := postStore.Insert(models.Post{
		Timestamp: time.Date(2021, time.March, 3, 0, 0, 0, 0, time.UTC),
		Content:   "march",
		Views:     1,
	})
	require.NoError(t, err)

	out, err := runMenu(t, postStore, "2", "2021", "2", "yes", "31", "0", "0", "0", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "Invalid input. Please enter valid numerical values.")
	assert.NotContains(t, out, "Retrieved Post:")

	out, err = runMenu(t, postStore, "2", "2021", "3", "yes", "3", "0", "0", "0", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "Retrieved Post: (2021-03-03 00:00:00, 'march', by user 4, views: 1)")
}
