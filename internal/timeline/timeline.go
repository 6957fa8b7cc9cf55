// Package timeline composes the ordered, paginated feeds a viewer can
// see: their home feed, the firehose, a single author's posts, and
// feeds materialised from an externally ranked id set.
package timeline

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/laurfratila/microblog/internal/models"
	"github.com/laurfratila/microblog/internal/snowflake"
)

// A Page is one window of a feed. Pages are 1-based.
type Page struct {
	Items   []models.Post
	HasNext bool
	HasPrev bool
}

type Composer struct {
	db *gorm.DB
}

func NewComposer(db *gorm.DB) *Composer {
	return &Composer{db: db}
}

// Home returns the feed visible to the viewer: their own posts and the
// posts of everyone they follow, newest first.
func (c *Composer) Home(viewer *models.User, page, perPage int) (*Page, error) {
	if err := checkPage(page, perPage); err != nil {
		return nil, err
	}
	followed := c.db.Model(&models.Relationship{}).Select("followed_id").Where("follower_id = ?", viewer.ID)
	scope := c.db.Joins("Author").Where("posts.author_id = ? OR posts.author_id IN (?)", viewer.ID, followed)
	return c.compose(scope, page, perPage)
}

// Explore returns the feed of all posts by every user, newest first.
func (c *Composer) Explore(page, perPage int) (*Page, error) {
	if err := checkPage(page, perPage); err != nil {
		return nil, err
	}
	return c.compose(c.db.Joins("Author"), page, perPage)
}

// Authored returns the feed of a single author's posts, newest first.
func (c *Composer) Authored(author *models.User, page, perPage int) (*Page, error) {
	if err := checkPage(page, perPage); err != nil {
		return nil, err
	}
	scope := c.db.Joins("Author").Where("posts.author_id = ?", author.ID)
	return c.compose(scope, page, perPage)
}

// compose runs the shared query. It fetches one row beyond the window
// to learn whether a further page exists.
func (c *Composer) compose(scope *gorm.DB, page, perPage int) (*Page, error) {
	var posts []models.Post
	err := scope.Order("posts.id desc").
		Offset((page - 1) * perPage).
		Limit(perPage + 1).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	hasNext := len(posts) > perPage
	if hasNext {
		posts = posts[:perPage]
	}
	return &Page{
		Items:   posts,
		HasNext: hasNext,
		HasPrev: page > 1,
	}, nil
}

// FromIDSet materialises posts for an externally ranked list of ids,
// preserving the caller's order exactly. The ranking was produced by a
// relevance-scoring collaborator; re-sorting by time here would throw
// that work away. Ids that no longer resolve to a post are skipped.
func (c *Composer) FromIDSet(ids []snowflake.ID, page, perPage int) (*Page, error) {
	if err := checkPage(page, perPage); err != nil {
		return nil, err
	}
	start := (page - 1) * perPage
	if start > len(ids) {
		start = len(ids)
	}
	end := start + perPage
	if end > len(ids) {
		end = len(ids)
	}
	window := ids[start:end]

	var posts []models.Post
	if len(window) > 0 {
		if err := c.db.Joins("Author").Where("posts.id IN (?)", window).Find(&posts).Error; err != nil {
			return nil, err
		}
	}
	byID := make(map[snowflake.ID]models.Post, len(posts))
	for _, post := range posts {
		byID[post.ID] = post
	}
	items := make([]models.Post, 0, len(window))
	for _, id := range window {
		if post, ok := byID[id]; ok {
			items = append(items, post)
		}
	}
	return &Page{
		Items:   items,
		HasNext: len(ids) > end,
		HasPrev: page > 1,
	}, nil
}

func checkPage(page, perPage int) error {
	if page < 1 {
		return fmt.Errorf("%w: page must be positive", models.ErrInvalidOperation)
	}
	if perPage < 1 {
		return fmt.Errorf("%w: page size must be positive", models.ErrInvalidOperation)
	}
	return nil
}
