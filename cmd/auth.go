package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rubiojr/mediasearch/pkg/auth"
	"github.com/rubiojr/mediasearch/pkg/storage"
	"github.com/urfave/cli/v3"
)

// AuthCommand creates the auth command
func AuthCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the backend auth token",
		Commands: []*cli.Command{
			{
				Name:      "set-token",
				Usage:     "Store the auth token",
				ArgsUsage: "<token>",
				Action: func(ctx context.Context, c *cli.Command) error {
					token := strings.TrimSpace(c.Args().Get(0))
					if token == "" {
						return fmt.Errorf("missing token")
					}
					return withApp(c, func(a *app) error {
						if err := a.store.Set(ctx, storage.TokenKey, token); err != nil {
							return fmt.Errorf("storing token: %w", err)
						}
						fmt.Printf("Token %s stored\n", auth.Mask(token))
						return nil
					})
				},
			},
			{
				Name:  "clear",
				Usage: "Remove the stored auth token",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withApp(c, func(a *app) error {
						if err := a.store.Delete(ctx, storage.TokenKey); err != nil {
							return fmt.Errorf("clearing token: %w", err)
						}
						fmt.Println("Token cleared")
						return nil
					})
				},
			},
			{
				Name:  "status",
				Usage: "Show whether a token is stored",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withApp(c, func(a *app) error {
						tok, err := a.tokens.Token()
						if errors.Is(err, auth.ErrNoToken) {
							fmt.Println("Not logged in")
							return nil
						}
						if err != nil {
							return fmt.Errorf("reading token: %w", err)
						}
						fmt.Printf("Logged in with token %s\n", auth.Mask(tok.AccessToken))
						return nil
					})
				},
			},
		},
	}
}
