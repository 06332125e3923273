package search

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/rubiojr/mediasearch/pkg/media"
)

// Param is one URL query parameter. Params are kept as an ordered slice
// because url.Values sorts keys on Encode.
type Param struct {
	Key   string
	Value string
}

// Encode maps a State to its ordered URL query parameters.
//
// The query is always present, followed by page and page_size and then every
// active filter in declaration order.
func Encode(s State) []Param {
	params := []Param{{Key: "q", Value: s.Query}}

	if s.Page > 0 {
		params = append(params, Param{Key: "page", Value: strconv.Itoa(s.Page)})
	}
	if s.PageSize > 0 {
		params = append(params, Param{Key: "page_size", Value: strconv.Itoa(s.PageSize)})
	}

	for _, f := range s.Filters.Active() {
		params = append(params, Param{Key: f.Name, Value: f.Value})
	}

	return params
}

// Decode builds a State from URL query parameters.
//
// Supported parameters:
//   - q: search query, "" when absent
//   - page: positive integer, defaults to 1
//   - page_size: one of media.PageSizes, defaults to media.DefaultPageSize
//   - one parameter per name in filterNames, "" when absent
//
// Anything else is ignored. The returned state has no media type.
func Decode(values url.Values, filterNames []string) State {
	s := State{
		Filters:  NewFilters(filterNames),
		Page:     1,
		PageSize: media.DefaultPageSize,
	}

	s.Query = values.Get("q")

	if pageStr := values.Get("page"); pageStr != "" {
		if parsed, err := strconv.Atoi(pageStr); err == nil && parsed > 0 {
			s.Page = parsed
		}
	}

	if sizeStr := values.Get("page_size"); sizeStr != "" {
		if parsed, err := strconv.Atoi(sizeStr); err == nil && media.ValidPageSize(parsed) {
			s.PageSize = parsed
		}
	}

	for i, name := range filterNames {
		s.Filters[i].Value = values.Get(name)
	}

	return s
}

// Values converts ordered params into url.Values.
func Values(params []Param) url.Values {
	values := make(url.Values, len(params))
	for _, p := range params {
		values.Add(p.Key, p.Value)
	}
	return values
}

// RawQuery renders params as a query string, preserving their order.
func RawQuery(params []Param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// ParseRawQuery parses a query string as typed by a user. A leading '?' and a
// path before it are tolerated; invalid escapes yield whatever could be parsed.
func ParseRawQuery(raw string) url.Values {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	}
	values, _ := url.ParseQuery(raw)
	if values == nil {
		values = url.Values{}
	}
	return values
}
