package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPosts(t *testing.T) {
	db := setupTestDB(t)

	t.Run("create updates the author's counters", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		john := MockUser(t, tx, "john")

		post, err := NewPosts(tx).Create(john, "beautiful day in Portland!", "en")
		require.NoError(err)
		require.Equal(john.ID, post.AuthorID)

		require.NoError(tx.Find(john).Error)
		require.EqualValues(1, john.PostsCount)
		require.Equal(post.CreatedAt(), john.LastPostAt.UTC())
	})

	t.Run("body length is bounded", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		john := MockUser(t, tx, "john")

		_, err := NewPosts(tx).Create(john, "", "")
		require.ErrorIs(err, ErrInvalidOperation)

		_, err = NewPosts(tx).Create(john, strings.Repeat("a", MaxPostLen+1), "")
		require.ErrorIs(err, ErrInvalidOperation)

		_, err = NewPosts(tx).Create(john, strings.Repeat("a", MaxPostLen), "")
		require.NoError(err)
	})

	t.Run("only the author can delete", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		john := MockUser(t, tx, "john")
		susan := MockUser(t, tx, "susan")
		post := MockPost(t, tx, john, "mine")

		err := NewPosts(tx).Delete(susan, post.ID)
		require.ErrorIs(err, ErrInvalidOperation)

		require.NoError(NewPosts(tx).Delete(john, post.ID))

		_, err = NewPosts(tx).FindByID(post.ID)
		require.True(IsNotFound(err))
	})

	t.Run("missing post is not found", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		_, err := NewPosts(tx).FindByID(42)
		require.True(IsNotFound(err))
	})
}
