package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/rubiojr/mediasearch/pkg/media"
	"github.com/rubiojr/mediasearch/pkg/search"
	"github.com/rubiojr/mediasearch/pkg/session"
	"github.com/urfave/cli/v3"
)

const shellHelp = `Commands:
  q <text>              set the query without searching
  search [text]         search the query from page one
  filter <name> <value> set a filter ("Any" clears it)
  filter clear          clear every filter
  filters               show the filters of this collection
  page <n>              go to page n
  next, prev            move one page
  size <n>              results per page (10, 20 or 30)
  open <query string>   go to a URL state, e.g. q=cats&page=2
  save <name>           save the current results
  remember              add the search to the recent searches
  url                   print the URL query of the current state
  help                  show this help
  quit                  leave the shell
`

// ShellCommand creates the shell command
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:      "shell",
		Usage:     "Interactive search session",
		ArgsUsage: "[media] [query string]",
		Action: func(ctx context.Context, c *cli.Command) error {
			mediaName := c.Args().Get(0)
			if mediaName == "" {
				mediaName = string(media.Image)
			}
			desc, err := resolveDescriptor(mediaName)
			if err != nil {
				return err
			}

			configPath := c.String("config")
			a, err := openApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			values := a.lastQuery(ctx, desc.Type)
			if raw := c.Args().Get(1); raw != "" {
				values = search.ParseRawQuery(raw)
			}

			sh := newShell(a, desc, configPath, os.Stdout)
			defer sh.Close()

			var changes <-chan struct{}
			if cw, err := watchConfig(configPath); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					logger.Debugf("%v", err)
				} else {
					logger.Warnf("%v", err)
				}
			} else {
				logger.Debugf("Watching config file for changes: %s", configPath)
				defer cw.Close()
				changes = cw.Changes()
			}

			if err := sh.start(ctx, values); err != nil {
				return err
			}
			return sh.run(ctx, os.Stdin, changes)
		},
	}
}

// shell is an interactive session over one search surface. Output is only
// written from the goroutine running run.
type shell struct {
	app        *app
	configPath string
	desc       media.Descriptor
	ctl        *session.Controller
	out        io.Writer

	// changed is signalled by the controller; rendered is the version of
	// the last snapshot shown.
	changed  chan struct{}
	rendered uint64
}

func newShell(a *app, desc media.Descriptor, configPath string, out io.Writer) *shell {
	sh := &shell{
		app:        a,
		configPath: configPath,
		desc:       desc,
		out:        out,
		changed:    make(chan struct{}, 1),
	}
	sh.ctl = a.controller(desc, session.OnChange(func(session.Snapshot) {
		select {
		case sh.changed <- struct{}{}:
		default:
		}
	}))
	return sh
}

// start mounts the surface on values and shows the outcome.
func (sh *shell) start(ctx context.Context, values url.Values) error {
	if err := sh.ctl.Mount(ctx, sh.app.withDefaultPageSize(values)); err != nil {
		return err
	}
	sh.show()
	return nil
}

// run reads commands from in until it is exhausted, the user quits or ctx
// ends. Changes that happen between commands, such as an automatic retry,
// are shown as they settle.
func (sh *shell) run(ctx context.Context, in io.Reader, configChanges <-chan struct{}) error {
	done := make(chan struct{})
	defer close(done)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	sh.prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if sh.exec(ctx, line) {
				return nil
			}
			sh.prompt()
		case <-sh.changed:
			snap := sh.ctl.Snapshot()
			if snap.Version <= sh.rendered || snap.Status == session.Searching {
				continue
			}
			fmt.Fprint(sh.out, "\n")
			sh.render(snap)
			sh.prompt()
		case _, ok := <-configChanges:
			if !ok {
				configChanges = nil
				continue
			}
			sh.reloadConfig()
		}
	}
}

// exec runs one command line and reports whether the shell should quit.
func (sh *shell) exec(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch name {
	case "":
		return false
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprint(sh.out, shellHelp)
	case "q":
		sh.ctl.SetQuery(arg)
	case "search":
		if arg != "" {
			sh.ctl.SetQuery(arg)
		}
		err = sh.ctl.Submit(ctx)
		sh.showIf(err)
	case "filter":
		err = sh.filter(ctx, arg)
		sh.showIf(err)
	case "filters":
		fmt.Fprint(sh.out, renderFilters(sh.desc, sh.ctl.Snapshot().State.Filters))
	case "page":
		var p int
		if p, err = strconv.Atoi(arg); err != nil {
			err = usageError(fmt.Sprintf("invalid page %q", arg))
		} else if !sh.ctl.SetPage(ctx, p) {
			err = usageError(fmt.Sprintf("page %d is out of range", p))
		}
		sh.showIf(err)
	case "next":
		if !sh.ctl.NextPage(ctx) {
			err = usageError("already on the last page")
		}
		sh.showIf(err)
	case "prev":
		if !sh.ctl.PrevPage(ctx) {
			err = usageError("already on the first page")
		}
		sh.showIf(err)
	case "size":
		var n int
		if n, err = strconv.Atoi(arg); err != nil {
			err = usageError(fmt.Sprintf("invalid page size %q", arg))
		} else {
			err = sh.ctl.SetPageSize(ctx, n)
		}
		sh.showIf(err)
	case "open":
		err = sh.ctl.Navigate(ctx, search.ParseRawQuery(arg))
		sh.showIf(err)
	case "save":
		// the dialog prints its own outcome
		if serr := saveSearch(ctx, sh.app, sh.ctl, arg, sh.out); serr != nil {
			logger.Debugf("save %q: %v", arg, serr)
		}
	case "remember":
		if err = sh.app.saves.Remember(ctx, sh.ctl.Snapshot().State); err == nil {
			fmt.Fprintln(sh.out, summaryStyle.Render("Added to recent searches"))
		}
	case "url":
		fmt.Fprintln(sh.out, "?"+sh.ctl.RawQuery())
	default:
		err = usageError(fmt.Sprintf("unknown command %q, type help for a list", name))
	}

	if err != nil {
		fmt.Fprintln(sh.out, errorStyle.Render(shellMessage(err)))
	}
	sh.app.rememberLastQuery(ctx, sh.ctl)
	sh.rendered = sh.ctl.Snapshot().Version
	return false
}

func (sh *shell) filter(ctx context.Context, arg string) error {
	if arg == "clear" {
		return sh.ctl.SetFilters(ctx, search.NewFilters(sh.desc.FilterNames()))
	}

	name, value, ok := strings.Cut(arg, "=")
	if !ok {
		name, value, _ = strings.Cut(arg, " ")
	}
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)
	if name == "" {
		return usageError("usage: filter <name> <value>")
	}
	if strings.EqualFold(value, search.AnyValue) {
		value = search.AnyValue
	}
	return sh.ctl.SetFilter(ctx, name, value)
}

// usageError is a mistake in a shell command line.
type usageError string

func (e usageError) Error() string {
	return string(e)
}

func shellMessage(err error) string {
	var usage usageError
	if errors.As(err, &usage) {
		return usage.Error()
	}
	return search.UserMessage(err)
}

// showIf waits for the search a command started and shows it, unless the
// command failed.
func (sh *shell) showIf(err error) {
	if err == nil {
		sh.show()
	}
}

func (sh *shell) show() {
	sh.ctl.Wait()
	snap := sh.ctl.Snapshot()
	sh.render(snap)
}

func (sh *shell) render(snap session.Snapshot) {
	fmt.Fprint(sh.out, renderSnapshot(sh.desc, snap))
	sh.rendered = snap.Version
}

func (sh *shell) prompt() {
	fmt.Fprintf(sh.out, "%s> ", sh.desc.Type)
}

// Close stops the surface and keeps its URL state for the next shell.
func (sh *shell) Close() {
	sh.ctl.Close()
	sh.app.rememberLastQuery(context.Background(), sh.ctl)
}
