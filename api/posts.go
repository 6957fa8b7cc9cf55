package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/laurfratila/microblog/internal/httpx"
	"github.com/laurfratila/microblog/internal/models"
	"github.com/laurfratila/microblog/internal/snowflake"
	"github.com/laurfratila/microblog/internal/tasks"
	"github.com/laurfratila/microblog/internal/to"
)

func PostsCreate(env *Env, w http.ResponseWriter, r *http.Request) error {
	user, err := env.authenticate(r)
	if err != nil {
		return err
	}
	var params struct {
		Body     string `json:"body" schema:"body"`
		Language string `json:"language" schema:"language"`
	}
	if err := httpx.Params(r, &params); err != nil {
		return err
	}
	post, err := models.NewPosts(env.DB).Create(user, params.Body, params.Language)
	if err != nil {
		return mapError(err)
	}
	post.Author = user
	w.WriteHeader(http.StatusCreated)
	return to.JSON(w, serialisePost(post))
}

func PostsShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	if _, err := env.authenticate(r); err != nil {
		return err
	}
	id, err := snowflake.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return httpx.Error(http.StatusBadRequest, err)
	}
	post, err := models.NewPosts(env.DB).FindByID(id)
	if err != nil {
		return mapError(err)
	}
	return to.JSON(w, serialisePost(post))
}

func PostsDestroy(env *Env, w http.ResponseWriter, r *http.Request) error {
	user, err := env.authenticate(r)
	if err != nil {
		return err
	}
	id, err := snowflake.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return httpx.Error(http.StatusBadRequest, err)
	}
	if err := models.NewPosts(env.DB).Delete(user, id); err != nil {
		return mapError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// PostsExportCreate schedules a background export of the caller's
// posts. The job id is returned immediately; progress arrives through
// the notification poll.
func PostsExportCreate(env *Env, w http.ResponseWriter, r *http.Request) error {
	user, err := env.authenticate(r)
	if err != nil {
		return err
	}
	if env.Queue == nil {
		return httpx.Error(http.StatusServiceUnavailable, errNoQueue)
	}
	jobID, err := env.Queue.Enqueue(r.Context(), "export_posts", tasks.Args{UserID: user.ID})
	if err != nil {
		return mapError(err)
	}
	env.Metrics.RecordJobEnqueued()
	w.WriteHeader(http.StatusAccepted)
	return to.JSON(w, map[string]any{"job_id": jobID})
}
