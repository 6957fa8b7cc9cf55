package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/laurfratila/microblog/internal/snowflake"
)

// MockUser creates a new user in the database.
func MockUser(t *testing.T, tx *gorm.DB, name string) *User {
	t.Helper()
	require := require.New(t)

	user, err := NewUsers(tx).Create(name, fmt.Sprintf("%s@example.com", name), "password")
	require.NoError(err)
	return user
}

// WithCreatedAt backdates a post to the given time.
func WithCreatedAt(ts time.Time) func(*Post) {
	return func(p *Post) {
		p.ID = snowflake.TimeToID(ts)
	}
}

// MockPost creates a new post in the database.
func MockPost(t *testing.T, tx *gorm.DB, author *User, body string, opts ...func(*Post)) *Post {
	t.Helper()
	require := require.New(t)

	post := &Post{
		ID:       snowflake.Now(),
		AuthorID: author.ID,
		Body:     body,
	}
	for _, opt := range opts {
		opt(post)
	}
	require.NoError(tx.Create(post).Error)
	return post
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	require := require.New(t)
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	require.NoError(err)

	err = db.AutoMigrate(AllTables()...)
	require.NoError(err)

	// enable foreign key constraints
	err = db.Exec("PRAGMA foreign_keys = ON").Error
	require.NoError(err)

	return db
}
