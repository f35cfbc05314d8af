package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/Dias221467/Questline/internal/admin"
	"github.com/Dias221467/Questline/internal/config"
	"github.com/Dias221467/Questline/internal/server"
	"github.com/Dias221467/Questline/pkg/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	LogLevel string `help:"Log level." default:"warn"`

	Indexes admin.IndexesCmd `cmd:"" help:"Create the MongoDB indexes."`
	Seed    admin.SeedCmd    `cmd:"" help:"Insert the default achievements."`
	Sweep   admin.SweepCmd   `cmd:"" help:"Award achievements every user qualifies for."`
	Remind  admin.RemindCmd  `cmd:"" help:"Send due check-in reminders once."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("questctl"),
		kong.Description("Questline maintenance commands"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	cfg := config.LoadConfig()
	logger.InitLogger(logger.Options{Level: CLI.LogLevel})

	ctx := context.Background()
	app, db, closeStores, err := server.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = kctx.Run(&admin.Context{Ctx: ctx, App: app, DB: db, Out: os.Stdout})
	closeStores()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
