package models

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/laurfratila/microblog/internal/snowflake"
)

// MaxPostLen is the maximum length of a post body, in runes.
const MaxPostLen = 280

// A Post is a single message written by a user. Posts are immutable
// once created; only the re-derivable language tag may change.
type Post struct {
	snowflake.ID `gorm:"primarykey;autoIncrement:false"`
	UpdatedAt    time.Time
	AuthorID     snowflake.ID `gorm:"index;not null"`
	Author       *User        `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
	Body         string       `gorm:"size:280;not null"`
	Language     string       `gorm:"size:8"`
}

// CreatedAt returns the creation time of the post, which is encoded in
// its id.
func (p *Post) CreatedAt() time.Time {
	return p.ID.ToTime()
}

// AfterCreate updates the post count and last post time on the author.
func (p *Post) AfterCreate(tx *gorm.DB) error {
	return forEach(tx, p.updatePostsCount)
}

// AfterDelete updates the post count on the author.
func (p *Post) AfterDelete(tx *gorm.DB) error {
	return forEach(tx, p.updatePostsCount)
}

func (p *Post) updatePostsCount(tx *gorm.DB) error {
	postsCount := tx.Session(&gorm.Session{NewDB: true}).Select("COUNT(id)").Where("author_id = ?", p.AuthorID).Table("posts")
	return tx.Model(&User{ID: p.AuthorID}).Updates(map[string]interface{}{
		"posts_count":  postsCount,
		"last_post_at": p.ID.ToTime(),
	}).Error
}

type Posts struct {
	db *gorm.DB
}

func NewPosts(db *gorm.DB) *Posts {
	return &Posts{db: db}
}

// Create stores a new post by the author. The body must be between 1
// and MaxPostLen runes.
func (p *Posts) Create(author *User, body, language string) (*Post, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: post body is empty", ErrInvalidOperation)
	}
	if utf8.RuneCountInString(body) > MaxPostLen {
		return nil, fmt.Errorf("%w: post body exceeds %d characters", ErrInvalidOperation, MaxPostLen)
	}
	post := &Post{
		ID:       snowflake.Now(),
		AuthorID: author.ID,
		Body:     body,
		Language: language,
	}
	if err := p.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// FindByID returns the post with the given id, with its author preloaded.
func (p *Posts) FindByID(id snowflake.ID) (*Post, error) {
	var post Post
	if err := p.db.Joins("Author").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a post. Only the author may delete their own posts.
func (p *Posts) Delete(owner *User, id snowflake.ID) error {
	post, err := p.FindByID(id)
	if err != nil {
		return err
	}
	if post.AuthorID != owner.ID {
		return fmt.Errorf("%w: not the author of this post", ErrInvalidOperation)
	}
	return p.db.Delete(post).Error
}

// SetLanguage updates the detected language tag on a post. The body and
// timestamp are never touched.
func (p *Posts) SetLanguage(post *Post, language string) error {
	return p.db.Model(post).Update("language", language).Error
}

// IsNotFound reports whether err means the referenced record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
