// Package pagination bridges upstream-issued cursors and synthetic
// local-page markers into one opaque continuation token.
package pagination

import (
	"strconv"
	"strings"
)

// localPrefix marks tokens minted locally when a page was served from the
// database rather than from a fresh upstream fetch.
const localPrefix = "db_page_"

// IsLocalToken reports whether the token is a synthetic local-page marker.
// Any other non-empty token is an upstream cursor and must be forwarded
// upstream unmodified.
func IsLocalToken(token string) bool {
	return strings.HasPrefix(token, localPrefix)
}

// LocalPage extracts the page number from a local-page marker. Non-local or
// malformed tokens resolve to page 1.
func LocalPage(token string) int {
	if !IsLocalToken(token) {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimPrefix(token, localPrefix))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// NextToken returns the continuation token for the page after the given one,
// or "" when page*pageSize already covers totalRecords.
func NextToken(page, pageSize, totalRecords int) string {
	if page*pageSize >= totalRecords {
		return ""
	}
	return localPrefix + strconv.Itoa(page+1)
}
