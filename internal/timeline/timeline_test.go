package timeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/laurfratila/microblog/internal/models"
	"github.com/laurfratila/microblog/internal/snowflake"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	require := require.New(t)
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	require.NoError(err)

	require.NoError(db.AutoMigrate(models.AllTables()...))
	require.NoError(db.Exec("PRAGMA foreign_keys = ON").Error)
	return db
}

func mockUser(t *testing.T, tx *gorm.DB, name string) *models.User {
	t.Helper()
	user, err := models.NewUsers(tx).Create(name, fmt.Sprintf("%s@example.com", name), "password")
	require.NoError(t, err)
	return user
}

func mockPostAt(t *testing.T, tx *gorm.DB, author *models.User, body string, ts time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		ID:       snowflake.TimeToID(ts),
		AuthorID: author.ID,
		Body:     body,
	}
	require.NoError(t, tx.Create(post).Error)
	return post
}

func TestHome(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("follow graph scenario", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		a := mockUser(t, tx, "a")
		b := mockUser(t, tx, "b")
		c := mockUser(t, tx, "c")

		rels := models.NewRelationships(tx)
		require.NoError(rels.Follow(a, b))
		require.NoError(rels.Follow(a, c))

		pb := mockPostAt(t, tx, b, "from b", base.Add(10*time.Second))
		pa := mockPostAt(t, tx, a, "from a", base.Add(15*time.Second))
		pc := mockPostAt(t, tx, c, "from c", base.Add(20*time.Second))

		composer := NewComposer(tx)

		page1, err := composer.Home(a, 1, 2)
		require.NoError(err)
		require.Len(page1.Items, 2)
		require.Equal(pc.ID, page1.Items[0].ID)
		require.Equal(pa.ID, page1.Items[1].ID)
		require.True(page1.HasNext)
		require.False(page1.HasPrev)

		page2, err := composer.Home(a, 2, 2)
		require.NoError(err)
		require.Len(page2.Items, 1)
		require.Equal(pb.ID, page2.Items[0].ID)
		require.False(page2.HasNext)
		require.True(page2.HasPrev)
	})

	t.Run("only visible authors appear", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		a := mockUser(t, tx, "a")
		b := mockUser(t, tx, "b")
		stranger := mockUser(t, tx, "stranger")

		require.NoError(models.NewRelationships(tx).Follow(a, b))

		mockPostAt(t, tx, b, "visible", base)
		mockPostAt(t, tx, stranger, "invisible", base.Add(time.Second))

		page, err := NewComposer(tx).Home(a, 1, 10)
		require.NoError(err)
		require.Len(page.Items, 1)
		require.Equal(b.ID, page.Items[0].AuthorID)
	})

	t.Run("pages partition the full feed", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		a := mockUser(t, tx, "a")
		for i := 0; i < 7; i++ {
			mockPostAt(t, tx, a, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Second))
		}

		composer := NewComposer(tx)
		seen := make(map[snowflake.ID]bool)
		var all []snowflake.ID
		for page := 1; ; page++ {
			p, err := composer.Home(a, page, 3)
			require.NoError(err)
			for _, post := range p.Items {
				require.False(seen[post.ID], "post returned twice")
				seen[post.ID] = true
				all = append(all, post.ID)
			}
			if !p.HasNext {
				break
			}
		}
		require.Len(all, 7)
		for i := 1; i < len(all); i++ {
			require.Greater(all[i-1], all[i], "feed must be newest first")
		}
	})

	t.Run("out of range pages are empty, not errors", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		a := mockUser(t, tx, "a")
		mockPostAt(t, tx, a, "only one", base)

		page, err := NewComposer(tx).Home(a, 5, 10)
		require.NoError(err)
		require.Empty(page.Items)
		require.False(page.HasNext)
		require.True(page.HasPrev)
	})

	t.Run("malformed pagination is rejected", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		a := mockUser(t, tx, "a")

		_, err := NewComposer(tx).Home(a, 1, 0)
		require.ErrorIs(err, models.ErrInvalidOperation)
		_, err = NewComposer(tx).Home(a, 0, 10)
		require.ErrorIs(err, models.ErrInvalidOperation)
	})
}

func TestExploreAndAuthored(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("explore sees every author", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		a := mockUser(t, tx, "a")
		b := mockUser(t, tx, "b")
		mockPostAt(t, tx, a, "one", base)
		mockPostAt(t, tx, b, "two", base.Add(time.Second))

		page, err := NewComposer(tx).Explore(1, 10)
		require.NoError(err)
		require.Len(page.Items, 2)
		require.Equal("two", page.Items[0].Body)
		require.Equal("one", page.Items[1].Body)
	})

	t.Run("authored is restricted to one author", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		a := mockUser(t, tx, "a")
		b := mockUser(t, tx, "b")
		mockPostAt(t, tx, a, "mine", base)
		mockPostAt(t, tx, b, "theirs", base.Add(time.Second))

		page, err := NewComposer(tx).Authored(a, 1, 10)
		require.NoError(err)
		require.Len(page.Items, 1)
		require.Equal("mine", page.Items[0].Body)
	})
}

func TestFromIDSet(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("external ranking is preserved", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		a := mockUser(t, tx, "a")
		oldest := mockPostAt(t, tx, a, "oldest", base)
		middle := mockPostAt(t, tx, a, "middle", base.Add(time.Second))
		newest := mockPostAt(t, tx, a, "newest", base.Add(2*time.Second))

		// ranked by relevance, deliberately not by time
		ranked := []snowflake.ID{middle.ID, oldest.ID, newest.ID}

		page, err := NewComposer(tx).FromIDSet(ranked, 1, 10)
		require.NoError(err)
		require.Len(page.Items, 3)
		require.Equal(middle.ID, page.Items[0].ID)
		require.Equal(oldest.ID, page.Items[1].ID)
		require.Equal(newest.ID, page.Items[2].ID)
	})

	t.Run("windows paginate the ranked list", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		a := mockUser(t, tx, "a")
		var ranked []snowflake.ID
		for i := 0; i < 5; i++ {
			post := mockPostAt(t, tx, a, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Second))
			ranked = append(ranked, post.ID)
		}

		composer := NewComposer(tx)

		page1, err := composer.FromIDSet(ranked, 1, 2)
		require.NoError(err)
		require.Len(page1.Items, 2)
		require.Equal(ranked[0], page1.Items[0].ID)
		require.Equal(ranked[1], page1.Items[1].ID)
		require.True(page1.HasNext)
		require.False(page1.HasPrev)

		page3, err := composer.FromIDSet(ranked, 3, 2)
		require.NoError(err)
		require.Len(page3.Items, 1)
		require.False(page3.HasNext)
		require.True(page3.HasPrev)
	})

	t.Run("stale ids are skipped", func(t *testing.T) {
		require := require.New(t)
		tx := db.Begin()
		defer tx.Rollback()

		a := mockUser(t, tx, "a")
		post := mockPostAt(t, tx, a, "still here", base)

		page, err := NewComposer(tx).FromIDSet([]snowflake.ID{99999, post.ID}, 1, 10)
		require.NoError(err)
		require.Len(page.Items, 1)
		require.Equal(post.ID, page.Items[0].ID)
	})
}
