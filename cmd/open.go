package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/rubiojr/mediasearch/pkg/search"
	"github.com/urfave/cli/v3"
)

// OpenCommand creates the open command
func OpenCommand() *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "Replay a search from its URL query",
		ArgsUsage: "<media> \"<query string>\"",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() < 2 {
				return fmt.Errorf("usage: open <media> \"q=cats&page=2\"")
			}
			desc, err := resolveDescriptor(c.Args().Get(0))
			if err != nil {
				return err
			}
			values := search.ParseRawQuery(c.Args().Get(1))
			if strings.TrimSpace(values.Get("q")) == "" {
				return search.ErrEmptyQuery
			}

			a, err := openApp(c.String("config"))
			if err != nil {
				return err
			}
			defer a.Close()

			return runSearch(ctx, a, desc, values)
		},
	}
}
