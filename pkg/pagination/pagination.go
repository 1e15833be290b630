package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many documents any cursor query can request.
	MaxLimit = 100
)

// Params holds cursor pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the resume point of an ordered listing: the sort key of the last
// returned document plus its id as a tiebreaker.
type Cursor struct {
	Key string
	ID  string
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer returns the normalization result plus one to detect the next page.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// Trim cuts a buffered result set back to the requested limit and reports
// whether more rows exist.
func Trim[T any](items []T, limit int) ([]T, bool) {
	limit = NormalizeLimit(limit)
	if len(items) > limit {
		return items[:limit], true
	}
	return items, false
}

// EncodeCursor builds a base64 cursor string from the provided values.
func EncodeCursor(cursor Cursor) string {
	payload := cursor.Key + "|" + cursor.ID
	return base64.URLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes the cursor string back into its components.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	idx := strings.LastIndex(string(decoded), "|")
	if idx < 0 {
		return nil, fmt.Errorf("invalid cursor format")
	}
	key, id := string(decoded[:idx]), string(decoded[idx+1:])
	if id == "" {
		return nil, fmt.Errorf("invalid cursor id")
	}
	return &Cursor{Key: key, ID: id}, nil
}
