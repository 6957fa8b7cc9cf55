package api

import (
	"errors"
	"net/http"

	"github.com/laurfratila/microblog/internal/httpx"
	"github.com/laurfratila/microblog/internal/timeline"
	"github.com/laurfratila/microblog/internal/to"
)

var errEmptyQuery = errors.New("empty search query")

// SearchIndex runs a free text query through the search collaborator
// and materialises the matching posts in the collaborator's ranking
// order.
func SearchIndex(env *Env, w http.ResponseWriter, r *http.Request) error {
	if _, err := env.authenticate(r); err != nil {
		return err
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		return httpx.Error(http.StatusBadRequest, errEmptyQuery)
	}
	page, perPage, err := pageParams(r)
	if err != nil {
		return err
	}
	result, err := env.Searcher.Search(r.Context(), query, page, perPage)
	if err != nil {
		return mapError(err)
	}
	// one ranked page of ids at a time, so the id set is the window
	feed, err := timeline.NewComposer(env.DB).FromIDSet(result.IDs, 1, perPage)
	if err != nil {
		return mapError(err)
	}
	feed.HasNext = int64(page*perPage) < result.Total
	feed.HasPrev = page > 1
	return to.JSON(w, map[string]any{
		"posts": serialisePage(feed, page),
		"total": result.Total,
	})
}
