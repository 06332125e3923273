package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/rubiojr/mediasearch/pkg/history"
	"github.com/rubiojr/mediasearch/pkg/media"
	"github.com/rubiojr/mediasearch/pkg/ratelimit"
	"github.com/rubiojr/mediasearch/pkg/saved"
	"github.com/rubiojr/mediasearch/pkg/search"
	"github.com/rubiojr/mediasearch/pkg/session"
)

func audioDescriptor(t *testing.T) media.Descriptor {
	t.Helper()
	d, ok := media.Lookup(media.Audio)
	if !ok {
		t.Fatal("audio descriptor missing")
	}
	return d
}

func TestRenderSnapshot(t *testing.T) {
	desc := audioDescriptor(t)
	st := search.NewState(desc)
	st.Query = "rain"

	withResults := st
	withResults.Page = 2
	withResults.PageSize = 10

	tests := []struct {
		name    string
		snap    session.Snapshot
		want    []string
		notWant []string
	}{
		{
			name: "no query",
			snap: session.Snapshot{State: search.NewState(desc)},
			want: []string{desc.Title, desc.Placeholder},
		},
		{
			name: "searching",
			snap: session.Snapshot{State: st, Status: session.Searching},
			want: []string{"query: rain", "Searching..."},
		},
		{
			name: "errored",
			snap: session.Snapshot{State: st, Status: session.Errored, Message: search.FetchFailedMessage},
			want: []string{search.FetchFailedMessage},
		},
		{
			name: "rate limited with retry",
			snap: session.Snapshot{
				State:   st,
				Status:  session.RateLimited,
				Message: "Rate limit exceeded. Please wait 4 seconds.",
				RetryIn: 3500 * time.Millisecond,
			},
			want: []string{"Rate limit exceeded", "retrying in 4 seconds"},
		},
		{
			name: "no results",
			snap: session.Snapshot{State: st, Results: search.ResultSet{TotalPages: 1}},
			want: []string{desc.NoResults},
		},
		{
			name: "results",
			snap: session.Snapshot{
				State: withResults,
				Results: search.ResultSet{
					Items: []search.Item{
						{URL: "https://a.example.com/1.mp3", Title: "Rain"},
						{URL: "https://a.example.com/2.mp3", Title: search.PlaceholderTitle},
					},
					TotalResults: 1200,
					TotalPages:   120,
				},
			},
			want:    []string{"1.2K results, page 2 of 120", "11. Rain", "12. Untitled", "https://a.example.com/2.mp3", "prev | page 2/120 | next"},
			notWant: []string{desc.NoResults},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSnapshot(desc, tt.snap)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("missing %q in:\n%s", w, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("unexpected %q in:\n%s", w, got)
				}
			}
		})
	}
}

func TestRenderSnapshotShowsActiveFilters(t *testing.T) {
	desc := audioDescriptor(t)
	st := search.NewState(desc)
	st.Query = "rain"
	st.Filters = st.Filters.With("category", "music").With("license", search.AnyValue)

	got := renderSnapshot(desc, session.Snapshot{State: st, Status: session.Searching})
	if !strings.Contains(got, "filters: category=music") || strings.Contains(got, "license=") {
		t.Errorf("unexpected filters line:\n%s", got)
	}
}

func TestRenderFilters(t *testing.T) {
	desc := audioDescriptor(t)
	current := search.NewFilters(desc.FilterNames()).With("category", "sound_effect")

	got := renderFilters(desc, current)
	for _, want := range []string{
		"Category: Sound Effect",
		"License: Any",
		"sound_effect (Sound Effect)",
		"free text, e.g. wikimedia_audio",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestOptionLabel(t *testing.T) {
	tests := map[string]string{
		"sound_effect":  "Sound Effect",
		"music":         "Music",
		search.AnyValue: search.AnyValue,
	}
	for in, want := range tests {
		if got := optionLabel(in); got != want {
			t.Errorf("optionLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderRecent(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	if got := renderRecent(nil, now); !strings.Contains(got, "No recent searches.") {
		t.Errorf("unexpected empty output:\n%s", got)
	}

	entries := []history.Entry{
		{
			ID:           7,
			Query:        "cats",
			MediaType:    media.Image,
			TotalResults: 45,
			Timestamp:    now.Add(-2 * time.Hour),
			Filters:      map[string]string{"license": "by"},
		},
		{ID: 8, Query: "rain", MediaType: media.Audio, RawTimestamp: "yesterday"},
	}
	got := renderRecent(entries, now)
	for _, want := range []string{`#7 image "cats"`, "45 results | 2 hours ago | q=cats&license=by", `#8 audio "rain"`, "0 results | yesterday"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestRenderRateLimit(t *testing.T) {
	got := renderRateLimit(ratelimit.Status{Remaining: 0, ResetIn: 12 * time.Second})
	if !strings.Contains(got, "Remaining searches: 0") || !strings.Contains(got, "Resets in: 12 seconds") || !strings.Contains(got, "paused") {
		t.Errorf("unexpected output:\n%s", got)
	}

	got = renderRateLimit(ratelimit.Status{Remaining: 5})
	if strings.Contains(got, "paused") || strings.Contains(got, "Resets in") {
		t.Errorf("unexpected output:\n%s", got)
	}
}

func TestRenderDialog(t *testing.T) {
	tests := []struct {
		view saved.View
		want string
	}{
		{saved.View{Phase: saved.Succeeded, Message: saved.SuccessMessage}, saved.SuccessMessage},
		{saved.View{Phase: saved.Failed, Message: search.SaveFailedMessage}, search.SaveFailedMessage},
		{saved.View{Phase: saved.Saving}, "Saving..."},
		{saved.View{Phase: saved.Dismissed}, ""},
	}
	for _, tt := range tests {
		if got := strings.TrimSpace(renderDialog(tt.view)); got != tt.want {
			t.Errorf("phase %s: got %q, want %q", tt.view.Phase, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5 minutes ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-50 * time.Hour), "2 days ago"},
		{time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC), "Jan 2, 09:30"},
		{time.Date(2023, 1, 2, 9, 30, 0, 0, time.UTC), "Jan 2, 2023"},
		{now.Add(time.Minute), "just now"},
	}
	for _, tt := range tests {
		if got := formatTime(tt.t, now); got != tt.want {
			t.Errorf("formatTime(%s) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int]string{0: "0", 999: "999", 1200: "1.2K", 2500000: "2.5M"}
	for n, want := range tests {
		if got := formatNumber(n); got != want {
			t.Errorf("formatNumber(%d) = %q, want %q", n, got, want)
		}
	}
}
