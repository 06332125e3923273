package clock

import (
	"testing"
	"time"
)

func TestFakeAdvanceFiresInOrder(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFake(start)

	var fired []string
	c.AfterFunc(3*time.Second, func() { fired = append(fired, "three") })
	c.AfterFunc(1*time.Second, func() { fired = append(fired, "one") })
	stopped := c.AfterFunc(2*time.Second, func() { fired = append(fired, "two") })

	if !stopped.Stop() {
		t.Fatal("Stop should report true for a pending timer")
	}

	c.Advance(2 * time.Second)
	if len(fired) != 1 || fired[0] != "one" {
		t.Fatalf("expected [one], got %v", fired)
	}
	if got := c.Now(); !got.Equal(start.Add(2 * time.Second)) {
		t.Errorf("expected clock at +2s, got %v", got.Sub(start))
	}

	c.Advance(time.Second)
	if len(fired) != 2 || fired[1] != "three" {
		t.Fatalf("expected [one three], got %v", fired)
	}
	if c.Pending() != 0 {
		t.Errorf("expected no pending timers, got %d", c.Pending())
	}
}

func TestFakeTimerScheduledFromCallback(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	count := 0
	c.AfterFunc(time.Second, func() {
		count++
		c.AfterFunc(time.Second, func() { count++ })
	})

	c.Advance(5 * time.Second)
	if count != 2 {
		t.Errorf("expected nested timer to fire within the same Advance, count=%d", count)
	}
}
