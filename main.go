package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

type Context struct {
	Debug bool

	Dialector gorm.Dialector
	gorm.Config
}

var cli struct {
	Debug bool   `help:"Enable debug mode."`
	DSN   string `help:"Data source name." env:"DSN" default:"microblog.db"`

	Serve         ServeCmd         `cmd:"" help:"Serve the REST API."`
	Worker        WorkerCmd        `cmd:"" help:"Run a background worker."`
	AutoMigrate   AutoMigrateCmd   `cmd:"" help:"Create or update the database schema."`
	CreateAccount CreateAccountCmd `cmd:"" help:"Create an account."`
	Follow        FollowCmd        `cmd:"" help:"Make one account follow another."`
	ExportPosts   ExportPostsCmd   `cmd:"" help:"Queue a post export for an account."`
}

func main() {
	godotenv.Load()
	ctx := kong.Parse(&cli)
	err := ctx.Run(&Context{
		Debug:     cli.Debug,
		Dialector: newDialector(cli.DSN),
	})
	ctx.FatalIfErrorf(err)
}
