// Package admin holds the questctl subcommands.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Dias221467/Questline/internal/database"
	"github.com/Dias221467/Questline/internal/jobs"
	"github.com/Dias221467/Questline/internal/server"
	"go.mongodb.org/mongo-driver/mongo"
)

// Context is handed to every command's Run.
type Context struct {
	Ctx context.Context
	App *server.App
	DB  *mongo.Database
	Out io.Writer
}

var ErrNoDatabase = errors.New("this command needs STORE_DRIVER=mongo")

type IndexesCmd struct{}

func (c *IndexesCmd) Run(ctx *Context) error {
	if ctx.DB == nil {
		return ErrNoDatabase
	}
	if err := database.EnsureIndexes(ctx.Ctx, ctx.DB); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, "indexes ensured")
	return nil
}

type SeedCmd struct{}

func (c *SeedCmd) Run(ctx *Context) error {
	n, err := ctx.App.Achievements.SeedDefaults(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	fmt.Fprintf(ctx.Out, "seeded %d achievements\n", n)
	return nil
}

type SweepCmd struct{}

func (c *SweepCmd) Run(ctx *Context) error {
	awarded, err := jobs.NewAchievementSweep(ctx.App.Users, ctx.App.Achievements).Run(ctx.Ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "awarded %d achievements\n", awarded)
	return nil
}

type RemindCmd struct {
	Limit int64 `help:"Maximum active journeys to scan." default:"1000"`
}

func (c *RemindCmd) Run(ctx *Context) error {
	sent, err := ctx.App.Notifications.CheckInsDue(ctx.Ctx, c.Limit)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "sent %d reminders\n", sent)
	return nil
}
