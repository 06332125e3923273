package media

import (
	"reflect"
	"testing"
)

func TestBuiltinDescriptors(t *testing.T) {
	tests := []struct {
		mediaType Type
		endpoint  string
		filters   []string
	}{
		{Image, "/search_images", []string{"license", "source", "filetype"}},
		{Audio, "/search_audio", []string{"category", "license", "source"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mediaType), func(t *testing.T) {
			d, ok := Lookup(tt.mediaType)
			if !ok {
				t.Fatalf("descriptor for %s not registered", tt.mediaType)
			}
			if d.Endpoint != tt.endpoint {
				t.Errorf("Endpoint: expected %q, got %q", tt.endpoint, d.Endpoint)
			}
			if got := d.FilterNames(); !reflect.DeepEqual(got, tt.filters) {
				t.Errorf("FilterNames: expected %v, got %v", tt.filters, got)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	if err := Register(Descriptor{Type: Image}); err == nil {
		t.Fatal("expected error registering image twice")
	}
	if err := Register(Descriptor{}); err == nil {
		t.Fatal("expected error registering a descriptor without type")
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"image", Image, false},
		{" Images ", Image, false},
		{"audio", Audio, false},
		{"video", "", true},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q): unexpected error state %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseType(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestFilterAccepts(t *testing.T) {
	d, _ := Lookup(Image)
	license, ok := d.Filter("license")
	if !ok {
		t.Fatal("license filter missing")
	}
	if !license.Accepts("cc0") || !license.Accepts("") {
		t.Error("license should accept cc0 and empty")
	}
	if license.Accepts("gpl") {
		t.Error("license should reject gpl")
	}
	source, _ := d.Filter("source")
	if !source.Accepts("anything goes") {
		t.Error("text filters accept free text")
	}
}

func TestValidPageSize(t *testing.T) {
	for _, n := range []int{10, 20, 30} {
		if !ValidPageSize(n) {
			t.Errorf("%d should be valid", n)
		}
	}
	for _, n := range []int{0, 15, 50} {
		if ValidPageSize(n) {
			t.Errorf("%d should be invalid", n)
		}
	}
}
