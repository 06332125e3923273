package cmd

import (
	"context"
	"fmt"

	"github.com/rubiojr/mediasearch/pkg/api"
	"github.com/urfave/cli/v3"
)

// RateLimitCommand creates the ratelimit command
func RateLimitCommand() *cli.Command {
	return &cli.Command{
		Name:  "ratelimit",
		Usage: "Show the remaining search budget",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withApp(c, func(a *app) error {
				st, err := api.NewStatusSource(a.client, a.tokens).RateLimit(ctx)
				if err != nil {
					return fmt.Errorf("checking rate limit: %w", err)
				}
				a.gate.Update(st)
				fmt.Print(renderRateLimit(st))
				return nil
			})
		},
	}
}
