package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/laurfratila/microblog/internal/mailer"
	"github.com/laurfratila/microblog/internal/metrics"
	"github.com/laurfratila/microblog/internal/queue"
	"github.com/laurfratila/microblog/internal/tasks"
)

type WorkerCmd struct {
	RedisURL    string `help:"redis url for the job queue" env:"REDIS_URL" required:""`
	Concurrency int    `help:"number of jobs to run at once" default:"4"`
	MetricsAddr string `help:"address to serve metrics on, empty to disable" default:""`
	Secret      string `help:"key for signing password reset tokens" env:"SECRET_KEY" required:""`
	BaseURL     string `help:"public address reset links point at" env:"BASE_URL" default:"http://localhost:8080"`

	ResendKey string `help:"resend api key, empty to log and drop mail" env:"RESEND_API_KEY"`
	MailFrom  string `help:"from address for outbound mail" default:"microblog <noreply@localhost>"`
}

func (c *WorkerCmd) Run(ctx *Context) error {
	db, err := gorm.Open(ctx.Dialector, &ctx.Config)
	if err != nil {
		return err
	}

	if err := configureDB(db); err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := queue.Open(runCtx, c.RedisURL)
	if err != nil {
		return err
	}
	q := queue.New(rdb, queue.DefaultKey)

	var outbound mailer.Mailer = mailer.Discard{}
	if c.ResendKey != "" {
		outbound = mailer.NewResend(c.ResendKey, c.MailFrom)
	}

	collector := metrics.NewCollector()

	tasksEnv := &tasks.Env{
		DB:      db,
		Mailer:  outbound,
		Secret:  []byte(c.Secret),
		BaseURL: c.BaseURL,
		Metrics: collector,
	}

	worker := queue.NewWorker(q)
	worker.OnSuccess = func(job *queue.Job) {
		collector.RecordJobProcessed()
	}
	worker.OnFailure = func(job *queue.Job, err error) {
		collector.RecordJobFailed()
		tasksEnv.NotifyFailure(job, err)
	}
	tasks.Register(worker, tasksEnv)

	g, gctx := errgroup.WithContext(runCtx)
	for i := 0; i < c.Concurrency; i++ {
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}
	if c.MetricsAddr != "" {
		svr := &http.Server{Addr: c.MetricsAddr, Handler: collector.Handler()}
		g.Go(func() error {
			return svr.ListenAndServe()
		})
		g.Go(func() error {
			<-gctx.Done()
			return svr.Close()
		})
	}
	err = g.Wait()
	if runCtx.Err() != nil {
		// orderly shutdown on signal
		return nil
	}
	return err
}
