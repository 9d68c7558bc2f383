// Package ids normalizes object identifiers given on the command line.
//
// Objects are addressed by UUID. Users paste them in three shapes:
//  1. Dashed: "550e8400-e29b-41d4-a716-446655440000"
//  2. Compact, as shown in share links: "550e8400e29b41d4a716446655440000"
//  3. A page URL whose last path segment ends in the compact form:
//     "https://www.notion.so/team/Roadmap-550e8400e29b41d4a716446655440000?pvs=4"
package ids

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

const compactLen = 32

// Normalize returns the canonical lowercase, dashed form of an identifier in
// any of the accepted shapes.
func Normalize(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}

	if strings.Contains(s, "://") {
		candidate, err := fromURL(s)
		if err != nil {
			return "", err
		}
		s = candidate
	}

	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid ID %q: %w", s, err)
	}
	return u.String(), nil
}

// MustNormalize is like Normalize but panics on error. It is intended for
// test fixtures.
func MustNormalize(s string) string {
	id, err := Normalize(s)
	if err != nil {
		panic(err)
	}
	return id
}

// fromURL extracts the trailing compact ID from a page URL.
func fromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	segment := path.Base(strings.TrimRight(u.Path, "/"))
	if len(segment) < compactLen {
		return "", fmt.Errorf("no ID found in URL %q", raw)
	}

	candidate := segment[len(segment)-compactLen:]
	if !isHex(candidate) {
		return "", fmt.Errorf("no ID found in URL %q", raw)
	}
	return candidate, nil
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
