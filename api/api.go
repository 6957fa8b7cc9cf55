// Package api implements the microblog's JSON REST surface.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/laurfratila/microblog/internal/httpx"
	"github.com/laurfratila/microblog/internal/metrics"
	"github.com/laurfratila/microblog/internal/models"
	"github.com/laurfratila/microblog/internal/queue"
	"github.com/laurfratila/microblog/internal/search"
	"github.com/laurfratila/microblog/internal/translate"
)

// Env carries the collaborators handlers need. It is constructed once
// at startup and passed into every handler; there is no ambient state.
type Env struct {
	// DB is the database connection.
	DB *gorm.DB

	// Queue dispatches background jobs. May be nil in deployments
	// without a worker pool, in which case enqueueing endpoints fail
	// with 503.
	Queue *queue.Queue

	// Searcher answers free text post queries.
	Searcher search.Searcher

	// Translator is the machine translation collaborator.
	Translator *translate.Client

	// Secret signs password reset tokens.
	Secret []byte

	// Metrics observes the handlers. May be nil.
	Metrics *metrics.Collector

	polls *pollLimiters
}

// NewEnv returns a ready to use Env.
func NewEnv(db *gorm.DB, q *queue.Queue, searcher search.Searcher, translator *translate.Client, secret []byte, collector *metrics.Collector) *Env {
	return &Env{
		DB:         db,
		Queue:      q,
		Searcher:   searcher,
		Translator: translator,
		Secret:     secret,
		Metrics:    collector,
		polls:      newPollLimiters(),
	}
}

// authenticate resolves the bearer token attached to the request and,
// if successful, returns the user associated with the token. Activity
// on the account is recorded as a side effect.
func (e *Env) authenticate(r *http.Request) (*models.User, error) {
	bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	token, err := models.NewTokens(e.DB).Find(bearer)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httpx.Error(http.StatusUnauthorized, err)
		}
		return nil, err
	}
	if err := models.NewUsers(e.DB).Touch(token.User); err != nil {
		return nil, err
	}
	return token.User, nil
}

// mapError converts the error kinds the core surfaces into HTTP status
// errors. Anything unrecognised is a storage failure and becomes a 500
// in httpx.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var dispatch *queue.DispatchError
	switch {
	case errors.Is(err, models.ErrInvalidOperation):
		return httpx.Error(http.StatusBadRequest, err)
	case errors.Is(err, models.ErrInvalidCredentials):
		return httpx.Error(http.StatusUnauthorized, err)
	case models.IsNotFound(err):
		return httpx.Error(http.StatusNotFound, err)
	case errors.As(err, &dispatch):
		return httpx.Error(http.StatusServiceUnavailable, err)
	default:
		return err
	}
}

// pageParams reads the page and per_page query parameters, applying
// the defaults when absent. Values that are present but malformed are
// rejected here; non positive values are rejected by the store layer.
func pageParams(r *http.Request) (page, perPage int, err error) {
	page, perPage = 1, 25
	q := r.URL.Query()
	if s := q.Get("page"); s != "" {
		page, err = strconv.Atoi(s)
		if err != nil {
			return 0, 0, httpx.Error(http.StatusBadRequest, err)
		}
	}
	if s := q.Get("per_page"); s != "" {
		perPage, err = strconv.Atoi(s)
		if err != nil {
			return 0, 0, httpx.Error(http.StatusBadRequest, err)
		}
	}
	return page, perPage, nil
}
