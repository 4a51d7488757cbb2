// Package tokenstore persists the console's bearer credential and payment
// ledger, scoped to one backend origin.
package tokenstore

import (
	"fmt"
	"net/url"
	"strings"
)

// Origin reduces a base URL to scheme://host[:port], the scope a credential
// belongs to.
func Origin(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url %q must be absolute", baseURL)
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), nil
}

// Slug turns an origin into a filesystem-safe directory name.
func Slug(origin string) string {
	var b strings.Builder
	for _, r := range origin {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// pushCapped puts id at the front of ids, removing any older copy and
// trimming to limit entries.
func pushCapped(ids []string, id string, limit int) []string {
	out := make([]string, 0, limit)
	out = append(out, id)
	for _, existing := range ids {
		if len(out) == limit {
			break
		}
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
