// Package search holds the state of a media search and its URL representation.
//
// # Overview
//
// A search surface (image search, audio search) owns one State: the query,
// the facet filters, the page and the page size. The State is kept in sync
// with the URL query string of the surface so that a search can be shared,
// bookmarked and replayed. This package provides the pure mapping between the
// two and the result types produced by a fetch.
//
// # Encoding
//
// Encode produces the ordered query parameters of a State:
//
//	q=cats&page=2&page_size=20&license=cc0
//
// The query is always present. Filters whose value is empty or the "Any"
// sentinel are omitted, the rest follow in declaration order.
//
// # Decoding
//
// Decode is the inverse and never fails: unknown parameters are ignored,
// missing filters decode to the empty string and malformed page values fall
// back to their defaults.
//
//	values, _ := url.ParseQuery("q=cats&license=cc0")
//	state := search.Decode(values, []string{"license", "source", "filetype"})
//
// For any valid State without "Any"-valued filters, decoding its encoding
// yields the same State (the media type is not part of the URL and belongs to
// the surface).
//
// # Errors
//
// errors.go declares the error taxonomy shared by the fetcher, the session
// controller and the saved search service, and UserMessage maps any of them to
// the text shown to the user.
package search
