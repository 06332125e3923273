package cmd

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rubiojr/mediasearch/pkg/media"
	"github.com/rubiojr/mediasearch/pkg/session"
	"github.com/urfave/cli/v3"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search a media collection",
		Flags: searchFlags(),
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
			return runSearch(ctx, a, desc, values)
		},
	}
}

func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "media",
			Usage: "Media type to search (image or audio)",
			Value: string(media.Image),
		},
		&cli.StringFlag{
			Name:     "query",
			Aliases:  []string{"q"},
			Usage:    "Search query",
			Required: true,
		},
		&cli.StringSliceFlag{
			Name:  "filter",
			Usage: "Filter as name=value. Can be used multiple times",
		},
		&cli.IntFlag{
			Name:  "page",
			Usage: "Page number",
		},
		&cli.IntFlag{
			Name:  "page-size",
			Usage: "Results per page (10, 20 or 30)",
		},
	}
}

func searchArgs(c *cli.Command) (media.Descriptor, url.Values, error) {
	desc, err := resolveDescriptor(c.String("media"))
	if err != nil {
		return media.Descriptor{}, nil, err
	}
	values, err := searchValues(desc, c.String("query"), c.StringSlice("filter"), c.Int("page"), c.Int("page-size"))
	if err != nil {
		return media.Descriptor{}, nil, err
	}
	return desc, values, nil
}

// searchOnce replays values on a fresh surface and waits for the outcome.
// One-shot commands do not retry on their own.
func searchOnce(ctx context.Context, a *app, desc media.Descriptor, values url.Values) (*session.Controller, session.Snapshot, error) {
	ctl := a.controller(desc, session.WithAutoRetry(false))
	if err := ctl.Mount(ctx, a.withDefaultPageSize(values)); err != nil {
		ctl.Close()
		return nil, session.Snapshot{}, err
	}
	ctl.Wait()
	return ctl, ctl.Snapshot(), nil
}

func runSearch(ctx context.Context, a *app, desc media.Descriptor, values url.Values) error {
	ctl, snap, err := searchOnce(ctx, a, desc, values)
	if err != nil {
		return err
	}
	defer ctl.Close()

	if snap.Err != nil {
		return snap.Err
	}
	a.rememberLastQuery(ctx, ctl)
	fmt.Print(renderSnapshot(desc, snap))
	return nil
}
