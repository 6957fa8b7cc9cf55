package main

import (
	"gorm.io/gorm"

	"github.com/laurfratila/microblog/internal/models"
)

type FollowCmd struct {
	Follower string `required:"" help:"name of the account that follows"`
	Followed string `required:"" help:"name of the account to follow"`
}

func (f *FollowCmd) Run(ctx *Context) error {
	db, err := gorm.Open(ctx.Dialector, &ctx.Config)
	if err != nil {
		return err
	}

	if err := configureDB(db); err != nil {
		return err
	}

	users := models.NewUsers(db)
	follower, err := users.FindByName(f.Follower)
	if err != nil {
		return err
	}
	followed, err := users.FindByName(f.Followed)
	if err != nil {
		return err
	}
	return models.NewRelationships(db).Follow(follower, followed)
}
