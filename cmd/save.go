package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rubiojr/mediasearch/pkg/session"
	"github.com/urfave/cli/v3"
)

// SaveCommand creates the save command
func SaveCommand() *cli.Command {
	flags := append(searchFlags(),
		&cli.StringFlag{
			Name:     "name",
			Usage:    "Name of the saved search",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "remember",
			Usage: "Also record the search in the recent searches history",
		},
	)

	return &cli.Command{
		Name:  "save",
		Usage: "Run a search and save it under a name",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := openApp(c.String("config"))
			if err != nil {
				return err
			}
			defer a.Close()

			desc, values, err := searchArgs(c)
			if err != nil {
				return err
			}

			ctl, snap, err := searchOnce(ctx, a, desc, values)
			if err != nil {
				return err
			}
			defer ctl.Close()
			if snap.Err != nil {
				return snap.Err
			}
			fmt.Print(renderSnapshot(desc, snap))

			if c.Bool("remember") {
				if err := a.saves.Remember(ctx, snap.State); err != nil {
					return fmt.Errorf("recording recent search: %w", err)
				}
			}
			return saveSearch(ctx, a, ctl, c.String("name"), os.Stdout)
		},
	}
}

// saveSearch saves the current results of ctl through a save dialog and
// prints its outcome to w.
func saveSearch(ctx context.Context, a *app, ctl *session.Controller, name string, w io.Writer) error {
	dialog := a.dialog(ctl)
	defer dialog.Teardown()

	err := <-dialog.Submit(ctx, name)
	fmt.Fprint(w, renderDialog(dialog.View()))
	return err
}
