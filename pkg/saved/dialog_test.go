package saved

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rubiojr/mediasearch/pkg/clock"
	"github.com/rubiojr/mediasearch/pkg/search"
)

func receive(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the save outcome")
		return nil
	}
}

func TestDialogSuccessDismissesAfterDelay(t *testing.T) {
	fc := clock.NewFake(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	var dismissed atomic.Int32
	d := NewDialog(func(ctx context.Context, name string) error { return nil },
		WithDialogClock(fc), OnDismiss(func() { dismissed.Add(1) }))

	if err := receive(t, d.Submit(context.Background(), "cats")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	v := d.View()
	if v.Phase != Succeeded || v.Message != "Search saved successfully!" {
		t.Fatalf("unexpected view %+v", v)
	}

	fc.Advance(799 * time.Millisecond)
	if dismissed.Load() != 0 {
		t.Fatal("dismissed too early")
	}
	fc.Advance(time.Millisecond)
	if dismissed.Load() != 1 {
		t.Fatal("expected dismissal after 800ms")
	}
	if d.View().Phase != Dismissed {
		t.Errorf("expected Dismissed, got %s", d.View().Phase)
	}
}

func TestDialogFailureStaysOpen(t *testing.T) {
	fc := clock.NewFake(time.Now())
	var dismissed atomic.Int32
	calls := 0
	d := NewDialog(func(ctx context.Context, name string) error {
		calls++
		if calls == 1 {
			return &search.DuplicateSaveError{Message: "Name already exists"}
		}
		return nil
	}, WithDialogClock(fc), OnDismiss(func() { dismissed.Add(1) }))

	err := receive(t, d.Submit(context.Background(), "cats"))
	var dup *search.DuplicateSaveError
	if !errors.As(err, &dup) {
		t.Fatalf("expected a duplicate error, got %v", err)
	}
	if v := d.View(); v.Phase != Failed || v.Message != "Name already exists" {
		t.Errorf("unexpected view %+v", v)
	}

	fc.Advance(time.Minute)
	if dismissed.Load() != 0 || fc.Pending() != 0 {
		t.Fatal("a failure must not auto-dismiss")
	}

	if err := receive(t, d.Submit(context.Background(), "other cats")); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if d.View().Phase != Succeeded {
		t.Errorf("expected the retry to succeed, got %s", d.View().Phase)
	}
}

func TestDialogEmptyName(t *testing.T) {
	var calls atomic.Int32
	d := NewDialog(func(ctx context.Context, name string) error {
		calls.Add(1)
		return nil
	})

	err := receive(t, d.Submit(context.Background(), "  "))
	if !errors.Is(err, search.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if v := d.View(); v.Message != "Please enter a name for your search" || v.Saving() {
		t.Errorf("unexpected view %+v", v)
	}
	if calls.Load() != 0 {
		t.Errorf("save must not be called")
	}
}

func TestDialogBusyWhileSaving(t *testing.T) {
	release := make(chan struct{})
	d := NewDialog(func(ctx context.Context, name string) error {
		<-release
		return nil
	})

	first := d.Submit(context.Background(), "cats")

	v := d.View()
	if !v.Saving() || v.Label() != "Saving..." {
		t.Errorf("expected the saving indicator, got %+v", v)
	}
	if err := receive(t, d.Submit(context.Background(), "cats")); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if err := d.Cancel(); !errors.Is(err, ErrBusy) {
		t.Errorf("cancel while saving: expected ErrBusy, got %v", err)
	}

	close(release)
	if err := receive(t, first); err != nil {
		t.Fatalf("first save: %v", err)
	}
	d.Teardown()
}

func TestDialogCancel(t *testing.T) {
	var dismissed atomic.Int32
	d := NewDialog(func(ctx context.Context, name string) error { return nil },
		OnDismiss(func() { dismissed.Add(1) }))

	if err := d.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if dismissed.Load() != 1 {
		t.Errorf("expected one dismissal")
	}
	if err := receive(t, d.Submit(context.Background(), "cats")); !errors.Is(err, ErrDismissed) {
		t.Errorf("expected ErrDismissed after cancel, got %v", err)
	}
}

func TestDialogTeardownDuringSave(t *testing.T) {
	fc := clock.NewFake(time.Now())
	release := make(chan struct{})
	var dismissed atomic.Int32
	d := NewDialog(func(ctx context.Context, name string) error {
		<-release
		return nil
	}, WithDialogClock(fc), OnDismiss(func() { dismissed.Add(1) }))

	outcome := d.Submit(context.Background(), "cats")
	d.Teardown()
	close(release)

	if err := receive(t, outcome); err != nil {
		t.Fatalf("outcome should still be delivered, got %v", err)
	}
	if fc.Pending() != 0 {
		t.Errorf("no dismiss timer should be armed after teardown")
	}
	fc.Advance(time.Second)
	if dismissed.Load() != 0 {
		t.Errorf("no callback may fire after teardown")
	}
	if d.View().Phase != Saving {
		t.Errorf("a torn down dialog keeps its last view, got %s", d.View().Phase)
	}
}

func TestDialogResubmitWhileSuccessShown(t *testing.T) {
	fc := clock.NewFake(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	var dismissed, saves atomic.Int32
	d := NewDialog(func(ctx context.Context, name string) error {
		saves.Add(1)
		return nil
	}, WithDialogClock(fc), OnDismiss(func() { dismissed.Add(1) }))

	if err := receive(t, d.Submit(context.Background(), "a")); err != nil {
		t.Fatalf("submit: %v", err)
	}

	fc.Advance(400 * time.Millisecond)
	if err := receive(t, d.Submit(context.Background(), "b")); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy before the dismissal, got %v", err)
	}
	if saves.Load() != 1 {
		t.Errorf("the second save must not run, got %d saves", saves.Load())
	}
	if v := d.View(); v.Phase != Succeeded || v.Message != SuccessMessage {
		t.Errorf("the success should stay on screen, got %+v", v)
	}

	fc.Advance(400 * time.Millisecond)
	if dismissed.Load() != 1 || d.View().Phase != Dismissed {
		t.Fatalf("expected one dismissal at 800ms, got %d (%s)", dismissed.Load(), d.View().Phase)
	}
	if fc.Pending() != 0 {
		t.Errorf("expected no pending timers, got %d", fc.Pending())
	}
}
