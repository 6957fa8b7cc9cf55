package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/laurfratila/microblog/internal/models"
	"github.com/laurfratila/microblog/internal/to"
)

// Relationship is the API shape of one edge, as seen from the
// authenticated user.
type Relationship struct {
	Username  string `json:"username"`
	Following bool   `json:"following"`
}

func RelationshipsCreate(env *Env, w http.ResponseWriter, r *http.Request) error {
	user, err := env.authenticate(r)
	if err != nil {
		return err
	}
	target, err := models.NewUsers(env.DB).FindByName(chi.URLParam(r, "username"))
	if err != nil {
		return mapError(err)
	}
	rels := models.NewRelationships(env.DB)
	if err := rels.Follow(user, target); err != nil {
		return mapError(err)
	}
	return to.JSON(w, &Relationship{Username: target.Name, Following: true})
}

func RelationshipsDestroy(env *Env, w http.ResponseWriter, r *http.Request) error {
	user, err := env.authenticate(r)
	if err != nil {
		return err
	}
	target, err := models.NewUsers(env.DB).FindByName(chi.URLParam(r, "username"))
	if err != nil {
		return mapError(err)
	}
	rels := models.NewRelationships(env.DB)
	if err := rels.Unfollow(user, target); err != nil {
		return mapError(err)
	}
	return to.JSON(w, &Relationship{Username: target.Name, Following: false})
}

func FollowersIndex(env *Env, w http.ResponseWriter, r *http.Request) error {
	if _, err := env.authenticate(r); err != nil {
		return err
	}
	user, err := models.NewUsers(env.DB).FindByName(chi.URLParam(r, "username"))
	if err != nil {
		return mapError(err)
	}
	page, perPage, err := pageParams(r)
	if err != nil {
		return err
	}
	followers, err := models.NewRelationships(env.DB).Followers(user, page, perPage)
	if err != nil {
		return mapError(err)
	}
	return to.JSON(w, serialiseAccounts(followers))
}

func FollowingIndex(env *Env, w http.ResponseWriter, r *http.Request) error {
	if _, err := env.authenticate(r); err != nil {
		return err
	}
	user, err := models.NewUsers(env.DB).FindByName(chi.URLParam(r, "username"))
	if err != nil {
		return mapError(err)
	}
	page, perPage, err := pageParams(r)
	if err != nil {
		return err
	}
	following, err := models.NewRelationships(env.DB).Following(user, page, perPage)
	if err != nil {
		return mapError(err)
	}
	return to.JSON(w, serialiseAccounts(following))
}

func serialiseAccounts(users []models.User) []*Account {
	accounts := make([]*Account, 0, len(users))
	for i := range users {
		accounts = append(accounts, serialiseAccount(&users[i]))
	}
	return accounts
}
