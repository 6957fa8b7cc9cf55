package api

import (
	"time"

	"github.com/laurfratila/microblog/internal/models"
	"github.com/laurfratila/microblog/internal/timeline"
)

// serialisation of model types into their API shapes.

type Account struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	About          string    `json:"about"`
	Avatar         string    `json:"avatar"`
	CreatedAt      time.Time `json:"created_at"`
	LastSeenAt     time.Time `json:"last_seen_at"`
	PostsCount     int32     `json:"posts_count"`
	FollowersCount int32     `json:"followers_count"`
	FollowingCount int32     `json:"following_count"`
}

func serialiseAccount(u *models.User) *Account {
	return &Account{
		ID:             u.ID.String(),
		Username:       u.Name,
		About:          u.About,
		Avatar:         u.Avatar(128),
		CreatedAt:      u.ID.ToTime(),
		LastSeenAt:     u.LastSeenAt,
		PostsCount:     u.PostsCount,
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
	}
}

// CredentialAccount is an Account plus the fields only the owner sees.
type CredentialAccount struct {
	Account
	Email string `json:"email"`
}

func serialiseCredentialAccount(u *models.User) *CredentialAccount {
	return &CredentialAccount{
		Account: *serialiseAccount(u),
		Email:   u.Email,
	}
}

type Post struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	Language  string    `json:"language,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Account   *Account  `json:"account,omitempty"`
}

func serialisePost(p *models.Post) *Post {
	post := &Post{
		ID:        p.ID.String(),
		Body:      p.Body,
		Language:  p.Language,
		CreatedAt: p.CreatedAt(),
	}
	if p.Author != nil {
		post.Account = serialiseAccount(p.Author)
	}
	return post
}

type PostsPage struct {
	Items   []*Post `json:"items"`
	Page    int     `json:"page"`
	HasNext bool    `json:"has_next"`
	HasPrev bool    `json:"has_prev"`
}

func serialisePage(page *timeline.Page, number int) *PostsPage {
	items := make([]*Post, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, serialisePost(&page.Items[i]))
	}
	return &PostsPage{
		Items:   items,
		Page:    number,
		HasNext: page.HasNext,
		HasPrev: page.HasPrev,
	}
}

type Notification struct {
	Name      string         `json:"name"`
	Payload   map[string]any `json:"payload"`
	Timestamp int64          `json:"timestamp"`
}

func serialiseNotification(n *models.Notification) *Notification {
	return &Notification{
		Name:      n.Name,
		Payload:   n.Payload,
		Timestamp: n.Timestamp,
	}
}
