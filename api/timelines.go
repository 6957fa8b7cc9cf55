package api

import (
	"net/http"

	"github.com/laurfratila/microblog/internal/timeline"
	"github.com/laurfratila/microblog/internal/to"
)

// TimelinesHome is the feed of the authenticated user's own posts and
// the posts of everyone they follow.
func TimelinesHome(env *Env, w http.ResponseWriter, r *http.Request) error {
	user, err := env.authenticate(r)
	if err != nil {
		return err
	}
	page, perPage, err := pageParams(r)
	if err != nil {
		return err
	}
	feed, err := timeline.NewComposer(env.DB).Home(user, page, perPage)
	if err != nil {
		return mapError(err)
	}
	return to.JSON(w, serialisePage(feed, page))
}

// TimelinesExplore is the feed of all posts by every user, supporting
// discovery independent of the follow graph.
func TimelinesExplore(env *Env, w http.ResponseWriter, r *http.Request) error {
	if _, err := env.authenticate(r); err != nil {
		return err
	}
	page, perPage, err := pageParams(r)
	if err != nil {
		return err
	}
	feed, err := timeline.NewComposer(env.DB).Explore(page, perPage)
	if err != nil {
		return mapError(err)
	}
	return to.JSON(w, serialisePage(feed, page))
}
