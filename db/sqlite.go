package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/brettboylen/post-index/models"
)

// Database archives inserted posts so a store can be rebuilt on the next start
type Database struct {
	db    *sql.DB
	mutex sync.RWMutex
	log   *logrus.Logger
}

// NewDatabase creates a new SQLite database connection
func NewDatabase(dbPath string, log *logrus.Logger) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &Database{
		db:  db,
		log: log,
	}

	if err := database.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return database, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.db.Close()
}

// initTables creates the posts table if it doesn't exist.
// seq preserves insertion order, which is what author labels are derived from.
func (d *Database) initTables() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	query := `
	CREATE TABLE IF NOT EXISTS posts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp_sec INTEGER NOT NULL,
		timestamp_nsec INTEGER NOT NULL,
		content TEXT NOT NULL,
		author TEXT NOT NULL,
		views INTEGER NOT NULL,
		UNIQUE (timestamp_sec, timestamp_nsec)
	);
	CREATE INDEX IF NOT EXISTS idx_posts_views ON posts(views DESC);
	`

	_, err := d.db.Exec(query)
	return err
}

// SavePost appends a post to the archive.
// A post already archived under the same timestamp is left as is.
func (d *Database) SavePost(post *models.Post) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	query := `
	INSERT OR IGNORE INTO posts (timestamp_sec, timestamp_nsec, content, author, views)
	VALUES (?, ?, ?, ?, ?)
	`

	ts := post.Timestamp.UTC()
	_, err := d.db.Exec(query, ts.Unix(), ts.Nanosecond(), post.Content, post.Author, post.Views)
	if err != nil {
		return fmt.Errorf("failed to save post: %w", err)
	}

	return nil
}

// LoadPosts returns every archived post in the order it was saved
func (d *Database) LoadPosts() ([]models.Post, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	query := `
	SELECT timestamp_sec, timestamp_nsec, content, author, views
	FROM posts
	ORDER BY seq ASC
	`

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		var post models.Post
		var seconds, nanos int64

		if err := rows.Scan(&seconds, &nanos, &post.Content, &post.Author, &post.Views); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}

		post.Timestamp = time.Unix(seconds, nanos).UTC()
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	d.log.WithField("count", len(posts)).Debug("Loaded archived posts")
	return posts, nil
}

// GetTotalPosts returns the total number of archived posts
func (d *Database) GetTotalPosts() (int, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get total posts: %w", err)
	}

	return count, nil
}
