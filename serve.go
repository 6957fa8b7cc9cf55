package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/laurfratila/microblog/api"
	"github.com/laurfratila/microblog/internal/httpx"
	"github.com/laurfratila/microblog/internal/metrics"
	"github.com/laurfratila/microblog/internal/queue"
	"github.com/laurfratila/microblog/internal/search"
	"github.com/laurfratila/microblog/internal/translate"
)

type ServeCmd struct {
	Addr     string `help:"address to listen" default:":8080"`
	RedisURL string `help:"redis url for the job queue" env:"REDIS_URL"`
	Secret   string `help:"key for signing password reset tokens" env:"SECRET_KEY" required:""`

	TranslateKey    string `help:"translation service api key" env:"TRANSLATE_KEY"`
	TranslateRegion string `help:"translation service region" env:"TRANSLATE_REGION"`
}

func (s *ServeCmd) Run(ctx *Context) error {
	db, err := gorm.Open(ctx.Dialector, &ctx.Config)
	if err != nil {
		return err
	}

	if err := configureDB(db); err != nil {
		return err
	}

	// The queue client is created without a ping so that a redis outage
	// degrades the enqueueing endpoints to 503 instead of preventing
	// startup.
	var q *queue.Queue
	if s.RedisURL != "" {
		opt, err := redis.ParseURL(s.RedisURL)
		if err != nil {
			return err
		}
		q = queue.New(redis.NewClient(opt), queue.DefaultKey)
	}

	collector := metrics.NewCollector()

	env := api.NewEnv(
		db,
		q,
		search.NewDB(db),
		translate.New("", s.TranslateKey, s.TranslateRegion),
		[]byte(s.Secret),
		collector,
	)
	h := func(fn func(*api.Env, http.ResponseWriter, *http.Request) error) http.HandlerFunc {
		return httpx.HandlerFunc(func(r *http.Request) *api.Env { return env }, fn)
	}

	c := chi.NewRouter()
	c.Use(middleware.RequestID)
	c.Use(middleware.RealIP)
	c.Use(middleware.Logger)
	c.Use(middleware.Recoverer)
	c.Use(collector.Middleware)

	c.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", h(api.AccountsCreate))
			r.Get("/verify_credentials", h(api.AccountsVerifyCredentials))
			r.Delete("/", h(api.AccountsDestroy))
			r.Get("/{username}", h(api.AccountsShow))
			r.Get("/{username}/posts", h(api.AccountsPostsIndex))
			r.Get("/{username}/followers", h(api.FollowersIndex))
			r.Get("/{username}/following", h(api.FollowingIndex))
			r.Post("/{username}/follow", h(api.RelationshipsCreate))
			r.Post("/{username}/unfollow", h(api.RelationshipsDestroy))
		})
		r.Post("/tokens", h(api.TokensCreate))
		r.Delete("/tokens", h(api.TokensDestroy))
		r.Route("/posts", func(r chi.Router) {
			r.Post("/", h(api.PostsCreate))
			r.Post("/export", h(api.PostsExportCreate))
			r.Get("/{id:[0-9]+}", h(api.PostsShow))
			r.Delete("/{id:[0-9]+}", h(api.PostsDestroy))
		})
		r.Route("/timelines", func(r chi.Router) {
			r.Get("/home", h(api.TimelinesHome))
			r.Get("/explore", h(api.TimelinesExplore))
		})
		r.Get("/notifications", h(api.NotificationsIndex))
		r.Get("/search", h(api.SearchIndex))
		r.Post("/translate", h(api.TranslateCreate))
		r.Route("/passwords", func(r chi.Router) {
			r.Post("/reset", h(api.PasswordsResetRequest))
			r.Post("/update", h(api.PasswordsUpdate))
		})
	})

	c.Method("GET", "/metrics", collector.Handler())

	svr := &http.Server{
		Addr:         s.Addr,
		Handler:      c,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	return svr.ListenAndServe()
}
