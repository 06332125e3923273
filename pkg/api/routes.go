package api

import (
	"fmt"
)

// Backend paths.
const (
	PathRateLimit      = "/rate_limit"
	PathSaveSearch     = "/save_search"
	PathRecentSearch   = "/recent_search"
	PathRecentSearches = "/recent_searches"
)

func recentSearchPath(id int64) string {
	return fmt.Sprintf("%s/%d", PathRecentSearches, id)
}
