// Package kvstore is a hierarchical JSON key-value store addressed by slash-separated paths.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when nothing is stored at a path.
var ErrNotFound = errors.New("kvstore: not found")

// Store holds JSON values at paths such as "teams/7". A value at a path is independent
// of values below it; Remove deletes both.
type Store interface {
	// Get returns the raw JSON stored at path.
	Get(ctx context.Context, path string) (json.RawMessage, error)
	// Set replaces the value at path.
	Set(ctx context.Context, path string, value any) error
	// Update merges fields into the object at path, creating it when absent.
	Update(ctx context.Context, path string, fields map[string]any) error
	// Remove deletes the value at path and everything below it.
	Remove(ctx context.Context, path string) error
	// Children returns the values one level below parent, keyed by their last path segment.
	Children(ctx context.Context, parent string) (map[string]json.RawMessage, error)
	Close() error
}

// CleanPath trims surrounding slashes and drops empty segments.
func CleanPath(path string) string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "/")
}

// Join builds a clean path from segments.
func Join(segments ...string) string {
	return CleanPath(strings.Join(segments, "/"))
}

func validPath(path string) (string, error) {
	clean := CleanPath(path)
	if clean == "" {
		return "", fmt.Errorf("kvstore: empty path %q", path)
	}
	return clean, nil
}

// childKey returns the last segment of path when it sits directly below parent.
func childKey(parent, path string) (string, bool) {
	prefix := parent + "/"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	key := path[len(prefix):]
	if key == "" || strings.Contains(key, "/") {
		return "", false
	}
	return key, true
}

func isBelow(parent, path string) bool {
	return path == parent || strings.HasPrefix(path, parent+"/")
}

// mergeObject merges fields into an existing JSON object. A missing or non-object
// current value is replaced.
func mergeObject(current json.RawMessage, fields map[string]any) (json.RawMessage, error) {
	merged := make(map[string]json.RawMessage)
	if len(current) > 0 {
		if err := json.Unmarshal(current, &merged); err != nil {
			merged = make(map[string]json.RawMessage)
		}
	}
	for k, v := range fields {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %s: %w", k, err)
		}
		merged[k] = data
	}
	return json.Marshal(merged)
}
