// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// MaxLimit caps any client-supplied result count.
const MaxLimit = 50

// ParseLimit reads a positive count from the named query parameter.
// Missing, malformed or non-positive values yield def; values above
// MaxLimit are clamped.
func ParseLimit(r *http.Request, name string, def int) int {
	s := query.Get(r, name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return min(n, MaxLimit)
}
