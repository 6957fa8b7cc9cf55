package main

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/laurfratila/microblog/internal/models"
	"github.com/laurfratila/microblog/internal/queue"
	"github.com/laurfratila/microblog/internal/tasks"
)

type ExportPostsCmd struct {
	Username string `required:"" help:"name of the account to export"`
	RedisURL string `help:"redis url for the job queue" env:"REDIS_URL" required:""`
}

func (e *ExportPostsCmd) Run(ctx *Context) error {
	db, err := gorm.Open(ctx.Dialector, &ctx.Config)
	if err != nil {
		return err
	}

	user, err := models.NewUsers(db).FindByName(e.Username)
	if err != nil {
		return err
	}

	bg := context.Background()
	rdb, err := queue.Open(bg, e.RedisURL)
	if err != nil {
		return err
	}
	jobID, err := queue.New(rdb, queue.DefaultKey).Enqueue(bg, "export_posts", tasks.Args{UserID: user.ID})
	if err != nil {
		return err
	}
	fmt.Printf("queued export for %s as job %s\n", user.Name, jobID)
	return nil
}
