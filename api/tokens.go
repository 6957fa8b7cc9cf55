package api

import (
	"net/http"
	"strings"

	"github.com/laurfratila/microblog/internal/httpx"
	"github.com/laurfratila/microblog/internal/models"
	"github.com/laurfratila/microblog/internal/to"
)

// Token is the API shape of an issued bearer credential.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokensCreate is login: exchange a username and password for a bearer
// token.
func TokensCreate(env *Env, w http.ResponseWriter, r *http.Request) error {
	var params struct {
		Username string `json:"username" schema:"username"`
		Password string `json:"password" schema:"password"`
	}
	if err := httpx.Params(r, &params); err != nil {
		return err
	}
	user, err := models.NewUsers(env.DB).Authenticate(params.Username, params.Password)
	if err != nil {
		return mapError(err)
	}
	token, err := models.NewTokens(env.DB).Create(user)
	if err != nil {
		return mapError(err)
	}
	return to.JSON(w, &Token{
		AccessToken: token.AccessToken,
		TokenType:   "Bearer",
	})
}

// TokensDestroy is logout: revoke the presented bearer token.
func TokensDestroy(env *Env, w http.ResponseWriter, r *http.Request) error {
	bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	token, err := models.NewTokens(env.DB).Find(bearer)
	if err != nil {
		return httpx.Error(http.StatusUnauthorized, err)
	}
	if err := models.NewTokens(env.DB).Revoke(token); err != nil {
		return mapError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
