// Package gorm provides GORM-based database operations for flowcheck.
package gorm

import (
	"context"
	"net/http"
	"strconv"
)

// notify runs hook when it is set.
func notify(ctx context.Context, hook WriteHook, table string) {
	if hook != nil {
		hook(ctx, table)
	}
}

// ParseLimitParam parses the "limit" query parameter from an HTTP request.
// Returns defaultLimit if the parameter is missing or invalid.
func ParseLimitParam(r *http.Request, defaultLimit int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultLimit
}
