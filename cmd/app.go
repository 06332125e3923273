package cmd

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rubiojr/mediasearch/pkg/api"
	"github.com/rubiojr/mediasearch/pkg/auth"
	"github.com/rubiojr/mediasearch/pkg/config"
	"github.com/rubiojr/mediasearch/pkg/fetch"
	"github.com/rubiojr/mediasearch/pkg/history"
	"github.com/rubiojr/mediasearch/pkg/log"
	"github.com/rubiojr/mediasearch/pkg/media"
	"github.com/rubiojr/mediasearch/pkg/ratelimit"
	"github.com/rubiojr/mediasearch/pkg/saved"
	"github.com/rubiojr/mediasearch/pkg/search"
	"github.com/rubiojr/mediasearch/pkg/session"
	"github.com/rubiojr/mediasearch/pkg/storage"
	"github.com/rubiojr/mediasearch/pkg/version"
)

var logger = log.ForService("cmd")

// app bundles everything a command needs, built from the config file.
type app struct {
	cfg     *config.Config
	store   *storage.Store
	tokens  *auth.TokenSource
	client  *api.Client
	gate    *ratelimit.Gate
	fetcher *fetch.Fetcher
	saves   *saved.Service
	recent  *history.Service
}

func openApp(configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return newApp(cfg)
}

func newApp(cfg *config.Config) (*app, error) {
	applyLogLevel(cfg)

	store, err := storage.OpenDir(cfg.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	userAgent := cfg.HTTP.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent()
	}
	client, err := api.NewClient(cfg.APIURL,
		api.WithUserAgent(userAgent),
		api.WithCompression(cfg.HTTP.CompressionEnabled()),
		api.WithTimeout(cfg.HTTP.Timeout.Duration),
	)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating api client: %w", err)
	}

	tokens := auth.NewTokenSource(store)

	var source ratelimit.StatusSource
	if cfg.Search.RateLimitCheckEnabled() {
		source = api.NewStatusSource(client, tokens)
	}
	gate := ratelimit.NewGate(source, ratelimit.WithTTL(cfg.Search.RateLimitTTL.Duration))

	return &app{
		cfg:     cfg,
		store:   store,
		tokens:  tokens,
		client:  client,
		gate:    gate,
		fetcher: fetch.New(client, fetch.WithGate(gate)),
		saves:   saved.NewService(client, tokens),
		recent:  history.NewService(client, tokens),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// controller returns a session for the given surface wired to the backend.
func (a *app) controller(desc media.Descriptor, opts ...session.Option) *session.Controller {
	base := []session.Option{
		session.WithGate(a.gate),
		session.WithTokenSource(a.tokens),
		session.WithAutoRetry(a.cfg.Search.AutoRetryEnabled()),
	}
	return session.New(desc, a.fetcher, append(base, opts...)...)
}

// dialog returns a save dialog bound to the current state of ctl.
func (a *app) dialog(ctl *session.Controller, opts ...saved.DialogOption) *saved.Dialog {
	base := []saved.DialogOption{saved.WithDismissDelay(a.cfg.Save.DismissDelay.Duration)}
	return saved.NewDialog(func(ctx context.Context, name string) error {
		snap := ctl.Snapshot()
		return a.saves.Save(ctx, name, snap.State, snap.Results)
	}, append(base, opts...)...)
}

// withDefaultPageSize fills page_size from the config when values lack one.
func (a *app) withDefaultPageSize(values url.Values) url.Values {
	if values == nil {
		values = url.Values{}
	}
	if values.Get("page_size") == "" && a.cfg.Search.PageSize != media.DefaultPageSize {
		values.Set("page_size", fmt.Sprint(a.cfg.Search.PageSize))
	}
	return values
}

// debugRequested is set by --debug and wins over log_level.
var debugRequested bool

// EnableDebug turns on debug logging for the whole process.
func EnableDebug() {
	debugRequested = true
	log.SetGlobalDebug(true)
}

func applyLogLevel(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("%v, using info", err)
	}
	if debugRequested {
		level = log.LevelDebug
	}
	log.SetLevel(level)
}

// resolveDescriptor parses a media type name into its descriptor.
func resolveDescriptor(name string) (media.Descriptor, error) {
	t, err := media.ParseType(name)
	if err != nil {
		return media.Descriptor{}, err
	}
	d, ok := media.Lookup(t)
	if !ok {
		return media.Descriptor{}, fmt.Errorf("unknown media type %q", name)
	}
	return d, nil
}

// searchValues builds URL parameters from command line pieces. Filters are
// given as name=value.
func searchValues(desc media.Descriptor, query string, filters []string, page, pageSize int) (url.Values, error) {
	values := url.Values{}
	values.Set("q", query)
	if page > 0 {
		values.Set("page", fmt.Sprint(page))
	}
	if pageSize > 0 {
		if !media.ValidPageSize(pageSize) {
			return nil, fmt.Errorf("invalid page size %d: expected one of %v", pageSize, media.PageSizes)
		}
		values.Set("page_size", fmt.Sprint(pageSize))
	}
	for _, f := range filters {
		name, value, err := parseFilterArg(f)
		if err != nil {
			return nil, err
		}
		fd, ok := desc.Filter(name)
		if !ok {
			return nil, fmt.Errorf("unknown %s filter %q (available: %v)", desc.Type, name, desc.FilterNames())
		}
		if value != search.AnyValue && !fd.Accepts(value) {
			return nil, fmt.Errorf("invalid %s %q: expected one of %v", name, value, fd.Options)
		}
		values.Set(name, value)
	}
	return values, nil
}
