package saved

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rubiojr/mediasearch/pkg/clock"
	"github.com/rubiojr/mediasearch/pkg/search"
)

// DefaultDismissDelay is how long a successful save stays on screen.
const DefaultDismissDelay = 800 * time.Millisecond

// SuccessMessage is shown after a successful save.
const SuccessMessage = "Search saved successfully!"

var (
	// ErrBusy is returned while a save is outstanding or its success is
	// still shown.
	ErrBusy = errors.New("a save is already in progress")
	// ErrDismissed is returned once the dialog is closed or torn down.
	ErrDismissed = errors.New("save dialog closed")
)

// Phase is where the dialog stands.
type Phase int

const (
	Editing Phase = iota
	Saving
	Succeeded
	Failed
	Dismissed
)

func (p Phase) String() string {
	switch p {
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Dismissed:
		return "dismissed"
	}
	return "unknown"
}

// View is what a dialog renders.
type View struct {
	Phase   Phase
	Message string
}

// Saving reports whether the save indicator is shown. Actions are disabled
// meanwhile.
func (v View) Saving() bool {
	return v.Phase == Saving
}

// Label returns the caption of the save action.
func (v View) Label() string {
	if v.Saving() {
		return "Saving..."
	}
	return "Save"
}

// SaveFunc saves the current search under name.
type SaveFunc func(ctx context.Context, name string) error

// Dialog runs the save flow of one popover: enter a name, save, then close
// on success or stay open on failure.
type Dialog struct {
	save      SaveFunc
	clock     clock.Clock
	delay     time.Duration
	onDismiss func()

	mu      sync.Mutex
	phase   Phase
	message string
	timer   clock.Timer
	torn    bool
}

// DialogOption configures a Dialog.
type DialogOption func(*Dialog)

// WithDismissDelay sets how long a success stays visible.
func WithDismissDelay(d time.Duration) DialogOption {
	return func(dl *Dialog) {
		if d >= 0 {
			dl.delay = d
		}
	}
}

// WithDialogClock sets the clock used for the dismiss timer.
func WithDialogClock(c clock.Clock) DialogOption {
	return func(dl *Dialog) { dl.clock = c }
}

// OnDismiss is called once when the dialog closes, unless it was torn down.
func OnDismiss(f func()) DialogOption {
	return func(dl *Dialog) { dl.onDismiss = f }
}

// NewDialog returns a dialog in the Editing phase that saves through save.
func NewDialog(save SaveFunc, opts ...DialogOption) *Dialog {
	d := &Dialog{
		save:  save,
		clock: clock.Real(),
		delay: DefaultDismissDelay,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit starts saving under name. The returned channel receives the outcome
// exactly once and is buffered, so nobody has to read it.
func (d *Dialog) Submit(ctx context.Context, name string) <-chan error {
	done := make(chan error, 1)

	d.mu.Lock()
	switch {
	case d.torn || d.phase == Dismissed:
		d.mu.Unlock()
		done <- ErrDismissed
		return done
	case d.phase == Saving || d.phase == Succeeded:
		// a success stays on screen until its dismiss timer fires
		d.mu.Unlock()
		done <- ErrBusy
		return done
	}

	if strings.TrimSpace(name) == "" {
		d.phase = Editing
		d.message = search.ErrEmptyName.Message
		d.mu.Unlock()
		done <- search.ErrEmptyName
		return done
	}

	d.phase = Saving
	d.message = ""
	d.mu.Unlock()

	go func() {
		err := d.save(ctx, name)
		d.settle(err)
		done <- err
	}()

	return done
}

func (d *Dialog) settle(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.torn {
		return
	}
	if err != nil {
		d.phase = Failed
		d.message = search.UserMessage(err)
		return
	}
	d.phase = Succeeded
	d.message = SuccessMessage
	d.timer = d.clock.AfterFunc(d.delay, d.dismiss)
}

// Cancel closes the dialog. It is refused while saving.
func (d *Dialog) Cancel() error {
	d.mu.Lock()
	if d.phase == Saving {
		d.mu.Unlock()
		return ErrBusy
	}
	d.mu.Unlock()

	d.dismiss()
	return nil
}

func (d *Dialog) dismiss() {
	d.mu.Lock()
	if d.torn || d.phase == Dismissed {
		d.mu.Unlock()
		return
	}
	d.phase = Dismissed
	d.message = ""
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	cb := d.onDismiss
	d.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Teardown abandons the dialog. An outstanding save still completes and its
// outcome is still delivered on the Submit channel, but the dialog no longer
// changes and OnDismiss is not called.
func (d *Dialog) Teardown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.torn = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// View returns what the dialog currently shows.
func (d *Dialog) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return View{Phase: d.phase, Message: d.message}
}
