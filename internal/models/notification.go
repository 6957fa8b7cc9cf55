package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/laurfratila/microblog/internal/snowflake"
)

// A Notification is the latest state of a named event stream for a
// user. At most one row exists per (user, name); writing a new one
// supersedes the old. The timestamp is a per-user monotonic cursor,
// not a wall clock reading.
type Notification struct {
	ID        uint32         `gorm:"primarykey"`
	UserID    snowflake.ID   `gorm:"not null;uniqueIndex:idx_notifications_user_name"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
	Name      string         `gorm:"size:64;not null;uniqueIndex:idx_notifications_user_name"`
	Payload   map[string]any `gorm:"serializer:json"`
	Timestamp int64          `gorm:"not null;index"`
}

type Notifications struct {
	db *gorm.DB
}

func NewNotifications(db *gorm.DB) *Notifications {
	return &Notifications{db: db}
}

// Notify records the latest state of the named stream for the user,
// superseding any previous notification with the same name. The
// delete and insert happen in one transaction; concurrent writers to
// the same key serialise on the row lock, writers to different keys do
// not block each other.
func (n *Notifications) Notify(user *User, name string, payload map[string]any) (*Notification, error) {
	notification := &Notification{
		UserID:  user.ID,
		Name:    name,
		Payload: payload,
	}
	err := n.db.Transaction(func(tx *gorm.DB) error {
		var latest int64
		err := tx.Model(&Notification{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", user.ID).
			Select("COALESCE(MAX(timestamp), 0)").
			Scan(&latest).Error
		if err != nil {
			return err
		}

		// the cursor must advance even when two writes land in the
		// same microsecond.
		ts := time.Now().UnixMicro()
		if ts <= latest {
			ts = latest + 1
		}
		notification.Timestamp = ts

		if err := tx.Where("user_id = ? AND name = ?", user.ID, name).Delete(&Notification{}).Error; err != nil {
			return err
		}
		return tx.Create(notification).Error
	})
	if err != nil {
		return nil, err
	}
	return notification, nil
}

// PollSince returns the user's notifications with a timestamp strictly
// greater than cursor, oldest first, and the cursor to pass on the
// next poll. If nothing is new the input cursor is returned unchanged.
func (n *Notifications) PollSince(user *User, cursor int64) ([]Notification, int64, error) {
	var notifications []Notification
	err := n.db.Where("user_id = ? AND timestamp > ?", user.ID, cursor).
		Order("timestamp asc").Find(&notifications).Error
	if err != nil {
		return nil, cursor, err
	}
	if len(notifications) > 0 {
		cursor = notifications[len(notifications)-1].Timestamp
	}
	return notifications, cursor, nil
}
