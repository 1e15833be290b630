package docstore

import (
	"fmt"
	"strings"
)

// Join builds a document or collection path, rejecting ids that would
// break the hierarchy.
func Join(segments ...string) (string, error) {
	for _, s := range segments {
		if err := ValidateID(s); err != nil {
			return "", err
		}
	}
	return strings.Join(segments, "/"), nil
}

// MustJoin is Join for segments that are compile-time constants or already validated.
func MustJoin(segments ...string) string {
	p, err := Join(segments...)
	if err != nil {
		panic(err)
	}
	return p
}

// ValidateID reports whether s can be used as a single path segment.
func ValidateID(s string) error {
	switch {
	case strings.TrimSpace(s) == "":
		return fmt.Errorf("docstore: empty path segment")
	case strings.Contains(s, "/"):
		return fmt.Errorf("docstore: path segment %q contains '/'", s)
	case s == "." || s == "..":
		return fmt.Errorf("docstore: path segment %q is reserved", s)
	case strings.HasPrefix(s, "__") && strings.HasSuffix(s, "__"):
		return fmt.Errorf("docstore: path segment %q is reserved", s)
	}
	return nil
}

// Split separates a document path into its parent collection path and id.
func Split(docPath string) (collection, id string, err error) {
	segs := strings.Split(docPath, "/")
	if len(segs) < 2 || len(segs)%2 != 0 {
		return "", "", fmt.Errorf("docstore: %q is not a document path", docPath)
	}
	for _, s := range segs {
		if s == "" {
			return "", "", fmt.Errorf("docstore: %q has an empty segment", docPath)
		}
	}
	return strings.Join(segs[:len(segs)-1], "/"), segs[len(segs)-1], nil
}

// ValidateCollection reports whether p names a collection (odd segment count).
func ValidateCollection(p string) error {
	segs := strings.Split(p, "/")
	if len(segs)%2 != 1 {
		return fmt.Errorf("docstore: %q is not a collection path", p)
	}
	for _, s := range segs {
		if s == "" {
			return fmt.Errorf("docstore: %q has an empty segment", p)
		}
	}
	return nil
}
