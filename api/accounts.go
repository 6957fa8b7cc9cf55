package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/laurfratila/microblog/internal/httpx"
	"github.com/laurfratila/microblog/internal/models"
	"github.com/laurfratila/microblog/internal/timeline"
	"github.com/laurfratila/microblog/internal/to"
)

func AccountsCreate(env *Env, w http.ResponseWriter, r *http.Request) error {
	var params struct {
		Username string `json:"username" schema:"username"`
		Email    string `json:"email" schema:"email"`
		Password string `json:"password" schema:"password"`
	}
	if err := httpx.Params(r, &params); err != nil {
		return err
	}
	user, err := models.NewUsers(env.DB).Create(params.Username, params.Email, params.Password)
	if err != nil {
		return mapError(err)
	}
	w.WriteHeader(http.StatusCreated)
	return to.JSON(w, serialiseCredentialAccount(user))
}

func AccountsShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	if _, err := env.authenticate(r); err != nil {
		return err
	}
	user, err := models.NewUsers(env.DB).FindByName(chi.URLParam(r, "username"))
	if err != nil {
		return mapError(err)
	}
	return to.JSON(w, serialiseAccount(user))
}

func AccountsVerifyCredentials(env *Env, w http.ResponseWriter, r *http.Request) error {
	user, err := env.authenticate(r)
	if err != nil {
		return err
	}
	return to.JSON(w, serialiseCredentialAccount(user))
}

func AccountsDestroy(env *Env, w http.ResponseWriter, r *http.Request) error {
	user, err := env.authenticate(r)
	if err != nil {
		return err
	}
	if err := models.NewUsers(env.DB).Delete(user); err != nil {
		return mapError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// AccountsPostsIndex is the profile view: the posts authored by one user.
func AccountsPostsIndex(env *Env, w http.ResponseWriter, r *http.Request) error {
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
	feed, err := timeline.NewComposer(env.DB).Authored(user, page, perPage)
	if err != nil {
		return mapError(err)
	}
	return to.JSON(w, serialisePage(feed, page))
}
