package main

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/laurfratila/microblog/internal/models"
)

type CreateAccountCmd struct {
	Username string `required:"" help:"name of the account to create"`
	Email    string `required:"" help:"email address of the account to create"`
	Password string `required:"" help:"password of the account to create"`
}

func (c *CreateAccountCmd) Run(ctx *Context) error {
	db, err := gorm.Open(ctx.Dialector, &ctx.Config)
	if err != nil {
		return err
	}

	if err := configureDB(db); err != nil {
		return err
	}

	user, err := models.NewUsers(db).Create(c.Username, c.Email, c.Password)
	if err != nil {
		return err
	}
	fmt.Printf("created account %s (%s)\n", user.Name, user.ID)
	return nil
}
