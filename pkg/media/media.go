// Package media describes the searchable media collections and their facet
// filters as data, so a single routine can render and encode any of them.
package media

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Type identifies a media collection.
type Type string

const (
	Image Type = "image"
	Audio Type = "audio"
)

// DefaultPageSize is the page size used when none is specified.
const DefaultPageSize = 20

// PageSizes lists the page sizes a search surface accepts.
var PageSizes = []int{10, 20, 30}

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// FilterKind tells the presentation layer how a filter is edited.
type FilterKind string

const (
	// Select filters accept one of Options (or empty for "Any").
	Select FilterKind = "select"
	// Text filters accept free text.
	Text FilterKind = "text"
)

// FilterDescriptor declares one facet filter.
type FilterDescriptor struct {
	Name        string
	Label       string
	Kind        FilterKind
	Options     []string
	Placeholder string
}

// Accepts reports whether value is acceptable for the filter. Empty always is.
func (f FilterDescriptor) Accepts(value string) bool {
	if value == "" || f.Kind != Select {
		return true
	}
	for _, o := range f.Options {
		if o == value {
			return true
		}
	}
	return false
}

// Descriptor declares a search surface: its endpoint and its filters in
// declaration order.
type Descriptor struct {
	Type        Type
	Title       string
	Endpoint    string
	Placeholder string
	NoResults   string
	Filters     []FilterDescriptor
}

// FilterNames returns the filter names in declaration order.
func (d Descriptor) FilterNames() []string {
	names := make([]string, len(d.Filters))
	for i, f := range d.Filters {
		names[i] = f.Name
	}
	return names
}

// Filter returns the descriptor of the named filter.
func (d Descriptor) Filter(name string) (FilterDescriptor, bool) {
	for _, f := range d.Filters {
		if f.Name == name {
			return f, true
		}
	}
	return FilterDescriptor{}, false
}

var (
	mu          sync.RWMutex
	descriptors = make(map[Type]Descriptor)
)

// Register makes a descriptor available through Lookup. Registering the same
// type twice is an error.
func Register(d Descriptor) error {
	mu.Lock()
	defer mu.Unlock()

	if d.Type == "" {
		return fmt.Errorf("media descriptor without type")
	}
	if _, exists := descriptors[d.Type]; exists {
		return fmt.Errorf("media type %s already registered", d.Type)
	}
	descriptors[d.Type] = d
	return nil
}

// Lookup returns the descriptor registered for t.
func Lookup(t Type) (Descriptor, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := descriptors[t]
	return d, ok
}

// Types returns the registered media types sorted by name.
func Types() []Type {
	mu.RLock()
	defer mu.RUnlock()

	types := make([]Type, 0, len(descriptors))
	for t := range descriptors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// ParseType parses a media type name, accepting a few common aliases.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image", "images", "img":
		return Image, nil
	case "audio", "audios", "sound":
		return Audio, nil
	}
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := Lookup(t); ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown media type %q", s)
}
