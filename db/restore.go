package db

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brettboylen/post-index/models"
	"github.com/brettboylen/post-index/store"
)

// Hook returns a store insert hook that archives every accepted post.
// It runs under the store lock, so archive order matches author order.
func (d *Database) Hook(log *logrus.Logger) store.InsertHook {
	return func(post models.Post) {
		if err := d.SavePost(&post); err != nil {
			log.WithError(err).WithField("timestamp", post.Timestamp).Error("Failed to archive post")
		}
	}
}

// Restore replays the archive into postStore and checks that every post gets back its archived author
func (d *Database) Restore(postStore *store.Store) (int, error) {
	posts, err := d.LoadPosts()
	if err != nil {
		return 0, err
	}

	for _, archived := range posts {
		post, err := postStore.Insert(archived)
		if err != nil {
			return 0, fmt.Errorf("failed to restore post at %s: %w", archived.Timestamp.Format(time.RFC3339Nano), err)
		}
		if post.Author != archived.Author {
			return 0, fmt.Errorf("archived post at %s belongs to %q but replays as %q",
				archived.Timestamp.Format(time.RFC3339Nano), archived.Author, post.Author)
		}
	}

	d.log.WithField("count", len(posts)).Info("Restored archived posts")
	return len(posts), nil
}
