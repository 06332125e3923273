package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rubiojr/mediasearch/pkg/history"
	"github.com/urfave/cli/v3"
)

// RecentCommand creates the recent command
func RecentCommand() *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "Manage the recent searches history",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent searches",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withApp(c, func(a *app) error {
						entries, err := a.recent.List(ctx)
						if err != nil {
							return fmt.Errorf("listing recent searches: %w", err)
						}
						fmt.Print(renderRecent(entries, time.Now()))
						return nil
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a recent search",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := parseID(c.Args().Get(0))
					if err != nil {
						return err
					}
					return withApp(c, func(a *app) error {
						if err := a.recent.Delete(ctx, id); err != nil {
							return err
						}
						fmt.Printf("Deleted recent search %d\n", id)
						return nil
					})
				},
			},
			{
				Name:      "open",
				Usage:     "Run a recent search again",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := parseID(c.Args().Get(0))
					if err != nil {
						return err
					}
					return withApp(c, func(a *app) error {
						entry, err := a.recent.Find(ctx, id)
						if err != nil {
							return err
						}
						mediaType, values := history.Replay(entry)
						desc, err := resolveDescriptor(string(mediaType))
						if err != nil {
							return err
						}
						return runSearch(ctx, a, desc, values)
					})
				},
			},
		},
	}
}

// withApp opens the app from the --config flag and closes it after f.
func withApp(c *cli.Command, f func(a *app) error) error {
	a, err := openApp(c.String("config"))
	if err != nil {
		return err
	}
	defer a.Close()
	return f(a)
}

func parseID(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("missing id")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}
