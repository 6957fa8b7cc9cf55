package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"gorm.io/gorm"

	"github.com/laurfratila/microblog/internal/snowflake"
)

// A Token is a bearer credential issued at login. It carries no scopes;
// possession is proof of the owning identity.
type Token struct {
	AccessToken string `gorm:"primarykey;size:64"`
	CreatedAt   time.Time
	UserID      snowflake.ID `gorm:"not null;index"`
	User        *User        `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
}

type Tokens struct {
	db *gorm.DB
}

func NewTokens(db *gorm.DB) *Tokens {
	return &Tokens{db: db}
}

// Create issues a new bearer token for the user.
func (t *Tokens) Create(user *User) (*Token, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	token := &Token{
		AccessToken: hex.EncodeToString(buf),
		UserID:      user.ID,
	}
	if err := t.db.Create(token).Error; err != nil {
		return nil, err
	}
	return token, nil
}

// Find returns the token with the given access token, with its owner
// preloaded.
func (t *Tokens) Find(accessToken string) (*Token, error) {
	var token Token
	if err := t.db.Joins("User").First(&token, "access_token = ?", accessToken).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// Revoke deletes the token.
func (t *Tokens) Revoke(token *Token) error {
	return t.db.Delete(token).Error
}
