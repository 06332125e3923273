package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/rubiojr/mediasearch/pkg/media"
	"github.com/rubiojr/mediasearch/pkg/search"
	"github.com/rubiojr/mediasearch/pkg/session"
	"github.com/rubiojr/mediasearch/pkg/storage"
)

// parseFilterArg splits a name=value filter argument.
func parseFilterArg(s string) (name, value string, err error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid filter %q: expected name=value", s)
	}
	return name, strings.TrimSpace(value), nil
}

// lastQuery returns the stored URL state of a surface, or nil when there is
// none.
func (a *app) lastQuery(ctx context.Context, t media.Type) url.Values {
	raw, err := a.store.Get(ctx, storage.LastQueryKey(string(t)))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warnf("reading last %s query: %v", t, err)
		}
		return nil
	}
	return search.ParseRawQuery(raw)
}

// rememberLastQuery stores the URL state of ctl so the next shell resumes it.
func (a *app) rememberLastQuery(ctx context.Context, ctl *session.Controller) {
	raw := ctl.RawQuery()
	key := storage.LastQueryKey(string(ctl.Descriptor().Type))
	if raw == "" {
		if err := a.store.Delete(ctx, key); err != nil {
			logger.Warnf("clearing last query: %v", err)
		}
		return
	}
	if err := a.store.Set(ctx, key, raw); err != nil {
		logger.Warnf("storing last query: %v", err)
	}
}

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
