package search

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/rubiojr/mediasearch/pkg/media"
)

var imageFilters = []string{"license", "source", "filetype"}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected State
	}{
		{
			name:  "basic query",
			query: "q=cats&page=2&page_size=30",
			expected: State{
				Query:    "cats",
				Filters:  NewFilters(imageFilters),
				Page:     2,
				PageSize: 30,
			},
		},
		{
			name:  "with filters",
			query: "q=dogs&license=cc0&filetype=png",
			expected: State{
				Query:    "dogs",
				Filters:  Filters{{"license", "cc0"}, {"source", ""}, {"filetype", "png"}},
				Page:     1,
				PageSize: 20,
			},
		},
		{
			name:  "defaults when no params",
			query: "",
			expected: State{
				Filters:  NewFilters(imageFilters),
				Page:     1,
				PageSize: 20,
			},
		},
		{
			name:  "invalid page defaults to 1",
			query: "q=test&page=-3",
			expected: State{
				Query:    "test",
				Filters:  NewFilters(imageFilters),
				Page:     1,
				PageSize: 20,
			},
		},
		{
			name:  "unsupported page size defaults to 20",
			query: "q=test&page_size=50",
			expected: State{
				Query:    "test",
				Filters:  NewFilters(imageFilters),
				Page:     1,
				PageSize: 20,
			},
		},
		{
			name:  "unknown params ignored",
			query: "q=test&category=music&utm_source=x",
			expected: State{
				Query:    "test",
				Filters:  NewFilters(imageFilters),
				Page:     1,
				PageSize: 20,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("Failed to parse query string: %v", err)
			}

			got := Decode(values, imageFilters)
			if !got.Equal(tt.expected) {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestEncodeOmitsEmptyAndAny(t *testing.T) {
	s := State{
		Query:    "cats",
		Filters:  Filters{{"license", "Any"}, {"source", ""}, {"filetype", "svg"}},
		Page:     3,
		PageSize: 10,
	}

	got := RawQuery(Encode(s))
	want := "q=cats&page=3&page_size=10&filetype=svg"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEncodeKeepsDeclarationOrder(t *testing.T) {
	s := State{
		Query:    "rain",
		Filters:  Filters{{"category", "sound_effect"}, {"license", "by"}, {"source", "freesound"}},
		Page:     1,
		PageSize: 20,
	}

	params := Encode(s)
	var keys []string
	for _, p := range params {
		keys = append(keys, p.Key)
	}
	want := []string{"q", "page", "page_size", "category", "license", "source"}
	if fmt.Sprint(keys) != fmt.Sprint(want) {
		t.Errorf("expected keys %v, got %v", want, keys)
	}
}

func TestRoundTrip(t *testing.T) {
	queries := []string{"", "cats", "red panda", "a&b=c", "ünïcode"}
	licenses := []string{"", "cc0", "by-sa"}
	sources := []string{"", "stocksnap", "flickr commons"}

	for _, q := range queries {
		for _, lic := range licenses {
			for _, src := range sources {
				for _, size := range media.PageSizes {
					for _, page := range []int{1, 2, 17} {
						s := State{
							Query:     q,
							Filters:   Filters{{"license", lic}, {"source", src}, {"filetype", ""}},
							Page:      page,
							PageSize:  size,
							MediaType: media.Image,
						}

						values, err := url.ParseQuery(RawQuery(Encode(s)))
						if err != nil {
							t.Fatalf("encoded query does not parse: %v", err)
						}
						got := Decode(values, s.Filters.Names())
						got.MediaType = s.MediaType
						if !got.Equal(s) {
							t.Fatalf("round trip mismatch:\n  in:  %+v\n  out: %+v", s, got)
						}
					}
				}
			}
		}
	}
}

func TestTotalPages(t *testing.T) {
	for _, size := range media.PageSizes {
		for total := 0; total <= 100; total++ {
			want := (total + size - 1) / size
			if want < 1 {
				want = 1
			}
			if got := TotalPages(total, size); got != want {
				t.Fatalf("TotalPages(%d, %d): expected %d, got %d", total, size, want, got)
			}
		}
	}
	if got := TotalPages(45, 20); got != 3 {
		t.Errorf("TotalPages(45, 20): expected 3, got %d", got)
	}
}

func TestParseRawQuery(t *testing.T) {
	values := ParseRawQuery("/home/imagesearch?q=cats&license=cc0")
	if values.Get("q") != "cats" || values.Get("license") != "cc0" {
		t.Errorf("unexpected values %v", values)
	}
	if got := ParseRawQuery("%zz"); got == nil {
		t.Error("ParseRawQuery should never return nil")
	}
}

func TestFiltersWith(t *testing.T) {
	f := NewFilters(imageFilters)
	g := f.With("license", "cc0")
	if f.Get("license") != "" {
		t.Error("With must not mutate the receiver")
	}
	if g.Get("license") != "cc0" {
		t.Errorf("expected cc0, got %q", g.Get("license"))
	}
	h := g.With("extra", "x")
	if len(h) != 4 || !h.Has("extra") {
		t.Errorf("unknown filter should be appended, got %v", h)
	}
}

func ExampleEncode() {
	s := State{
		Query:    "cats",
		Filters:  Filters{{"license", "cc0"}, {"source", ""}, {"filetype", "Any"}},
		Page:     2,
		PageSize: 20,
	}
	fmt.Println(RawQuery(Encode(s)))
	// Output:
	// q=cats&page=2&page_size=20&license=cc0
}
