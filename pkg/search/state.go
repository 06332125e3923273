package search

import (
	"github.com/rubiojr/mediasearch/pkg/media"
)

// AnyValue is the sentinel a select filter uses for "no constraint".
const AnyValue = "Any"

// Filter is one facet filter value.
type Filter struct {
	Name  string
	Value string
}

// Filters is an ordered list of facet filters, kept in declaration order.
type Filters []Filter

// NewFilters returns empty filters for the given names.
func NewFilters(names []string) Filters {
	f := make(Filters, len(names))
	for i, n := range names {
		f[i] = Filter{Name: n}
	}
	return f
}

// Get returns the value of the named filter, or "" when absent.
func (f Filters) Get(name string) string {
	for _, filter := range f {
		if filter.Name == name {
			return filter.Value
		}
	}
	return ""
}

// Has reports whether the named filter is declared.
func (f Filters) Has(name string) bool {
	for _, filter := range f {
		if filter.Name == name {
			return true
		}
	}
	return false
}

// With returns a copy with the named filter set to value. Unknown names are
// appended.
func (f Filters) With(name, value string) Filters {
	out := f.Clone()
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			return out
		}
	}
	return append(out, Filter{Name: name, Value: value})
}

// Names returns the filter names in order.
func (f Filters) Names() []string {
	names := make([]string, len(f))
	for i, filter := range f {
		names[i] = filter.Name
	}
	return names
}

// Active returns the filters that constrain a search: non-empty and not "Any".
func (f Filters) Active() Filters {
	var out Filters
	for _, filter := range f {
		if filter.Value != "" && filter.Value != AnyValue {
			out = append(out, filter)
		}
	}
	return out
}

// Map returns the filters as a map, including empty values.
func (f Filters) Map() map[string]string {
	m := make(map[string]string, len(f))
	for _, filter := range f {
		m[filter.Name] = filter.Value
	}
	return m
}

// Clone returns an independent copy.
func (f Filters) Clone() Filters {
	if f == nil {
		return nil
	}
	out := make(Filters, len(f))
	copy(out, f)
	return out
}

// Equal reports whether both lists hold the same filters in the same order.
func (f Filters) Equal(other Filters) bool {
	if len(f) != len(other) {
		return false
	}
	for i := range f {
		if f[i] != other[i] {
			return false
		}
	}
	return true
}

// State is the authoritative state of one search surface.
type State struct {
	Query     string
	Filters   Filters
	Page      int
	PageSize  int
	MediaType media.Type
}

// NewState returns the initial state of a surface.
func NewState(d media.Descriptor) State {
	return State{
		Filters:   NewFilters(d.FilterNames()),
		Page:      1,
		PageSize:  media.DefaultPageSize,
		MediaType: d.Type,
	}
}

// Clone returns a copy that shares nothing with s.
func (s State) Clone() State {
	s.Filters = s.Filters.Clone()
	return s
}

// Equal compares two states field by field.
func (s State) Equal(other State) bool {
	return s.Query == other.Query &&
		s.Page == other.Page &&
		s.PageSize == other.PageSize &&
		s.MediaType == other.MediaType &&
		s.Filters.Equal(other.Filters)
}

// Item is one search hit.
type Item struct {
	URL       string
	Title     string
	MediaType media.Type
}

// PlaceholderTitle replaces missing item titles.
const PlaceholderTitle = "Untitled"

// ResultSet is the outcome of one successful fetch. It is replaced wholesale,
// never patched.
type ResultSet struct {
	Items        []Item
	TotalResults int
	TotalPages   int
}

// URLs returns the item URLs in order.
func (r ResultSet) URLs() []string {
	urls := make([]string, len(r.Items))
	for i, item := range r.Items {
		urls[i] = item.URL
	}
	return urls
}

// TotalPages returns max(1, ceil(total/pageSize)).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}
