package models

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/laurfratila/microblog/internal/snowflake"
)

// A Relationship is a directed follow edge. The pair of keys is the
// relationship; there is no edge id and no payload.
type Relationship struct {
	FollowerID snowflake.ID `gorm:"primarykey;autoIncrement:false"`
	Follower   *User        `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
	FollowedID snowflake.ID `gorm:"primarykey;autoIncrement:false"`
	Followed   *User        `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
}

// AfterCreate updates the cached follower and following counts on both
// ends of the edge.
func (r *Relationship) AfterCreate(tx *gorm.DB) error {
	return forEach(tx, r.updateFollowersCount, r.updateFollowingCount)
}

// AfterDelete updates the cached follower and following counts on both
// ends of the edge.
func (r *Relationship) AfterDelete(tx *gorm.DB) error {
	return forEach(tx, r.updateFollowersCount, r.updateFollowingCount)
}

// updateFollowersCount recomputes the followers count of the followed user.
func (r *Relationship) updateFollowersCount(tx *gorm.DB) error {
	followers := tx.Session(&gorm.Session{NewDB: true}).Select("COUNT(*)").Where("followed_id = ?", r.FollowedID).Table("relationships")
	return tx.Model(&User{ID: r.FollowedID}).Update("followers_count", followers).Error
}

// updateFollowingCount recomputes the following count of the follower.
func (r *Relationship) updateFollowingCount(tx *gorm.DB) error {
	following := tx.Session(&gorm.Session{NewDB: true}).Select("COUNT(*)").Where("follower_id = ?", r.FollowerID).Table("relationships")
	return tx.Model(&User{ID: r.FollowerID}).Update("following_count", following).Error
}

type Relationships struct {
	db *gorm.DB
}

func NewRelationships(db *gorm.DB) *Relationships {
	return &Relationships{db: db}
}

// Follow creates a follow edge from follower to followed. Following a
// user twice is a no-op; following yourself is rejected.
func (r *Relationships) Follow(follower, followed *User) error {
	if follower.ID == followed.ID {
		return fmt.Errorf("%w: cannot follow yourself", ErrInvalidOperation)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Relationship{}).Where("follower_id = ? AND followed_id = ?", follower.ID, followed.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Create(&Relationship{
			FollowerID: follower.ID,
			FollowedID: followed.ID,
		}).Error
	})
}

// Unfollow removes the follow edge from follower to followed, if present.
func (r *Relationships) Unfollow(follower, followed *User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&Relationship{
			FollowerID: follower.ID,
			FollowedID: followed.ID,
		}).Error
	})
}

// IsFollowing reports whether a follow edge exists from follower to followed.
func (r *Relationships) IsFollowing(follower, followed *User) (bool, error) {
	var count int64
	err := r.db.Model(&Relationship{}).Where("follower_id = ? AND followed_id = ?", follower.ID, followed.ID).Count(&count).Error
	return count > 0, err
}

// FollowerCount returns the number of users following the given user.
func (r *Relationships) FollowerCount(user *User) (int64, error) {
	var count int64
	err := r.db.Model(&Relationship{}).Where("followed_id = ?", user.ID).Count(&count).Error
	return count, err
}

// FollowingCount returns the number of users the given user follows.
func (r *Relationships) FollowingCount(user *User) (int64, error) {
	var count int64
	err := r.db.Model(&Relationship{}).Where("follower_id = ?", user.ID).Count(&count).Error
	return count, err
}

// Followers returns the users following the given user, newest edge first.
func (r *Relationships) Followers(user *User, page, perPage int) ([]User, error) {
	if err := checkPage(page, perPage); err != nil {
		return nil, err
	}
	var users []User
	sub := r.db.Model(&Relationship{}).Select("follower_id").Where("followed_id = ?", user.ID)
	err := r.db.Where("id IN (?)", sub).Order("id desc").
		Offset((page - 1) * perPage).Limit(perPage).Find(&users).Error
	return users, err
}

// Following returns the users the given user follows, newest edge first.
func (r *Relationships) Following(user *User, page, perPage int) ([]User, error) {
	if err := checkPage(page, perPage); err != nil {
		return nil, err
	}
	var users []User
	sub := r.db.Model(&Relationship{}).Select("followed_id").Where("follower_id = ?", user.ID)
	err := r.db.Where("id IN (?)", sub).Order("id desc").
		Offset((page - 1) * perPage).Limit(perPage).Find(&users).Error
	return users, err
}

// checkPage rejects malformed pagination parameters. Pages beyond the
// end of the result set are not an error; they return empty results.
func checkPage(page, perPage int) error {
	if page < 1 {
		return fmt.Errorf("%w: page must be positive", ErrInvalidOperation)
	}
	if perPage < 1 {
		return fmt.Errorf("%w: page size must be positive", ErrInvalidOperation)
	}
	return nil
}
