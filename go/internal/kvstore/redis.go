package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "matchcontrol"
	scanBatch        = 200
	maxUpdateRetries = 5
)

// Redis is a Store keeping each path as a JSON string under "<prefix>:<path>".
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps client. An empty prefix uses the default.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(path string) string {
	return r.prefix + ":" + path
}

func (r *Redis) Get(ctx context.Context, path string) (json.RawMessage, error) {
	path, err := validPath(path)
	if err != nil {
		return nil, err
	}

	data, err := r.client.Get(ctx, r.key(path)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s: %w", path, err)
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, path string, value any) error {
	path, err := validPath(path)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", path, err)
	}

	if err := r.client.Set(ctx, r.key(path), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

// Update merges fields under an optimistic WATCH transaction, retrying on conflicts.
func (r *Redis) Update(ctx context.Context, path string, fields map[string]any) error {
	path, err := validPath(path)
	if err != nil {
		return err
	}
	key := r.key(path)

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		merged, err := mergeObject(current, fields)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, []byte(merged), 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err = r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", path, err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, path string) error {
	path, err := validPath(path)
	if err != nil {
		return err
	}

	keys := []string{r.key(path)}
	below, err := r.scan(ctx, path)
	if err != nil {
		return err
	}
	keys = append(keys, below...)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

func (r *Redis) Children(ctx context.Context, parent string) (map[string]json.RawMessage, error) {
	parent, err := validPath(parent)
	if err != nil {
		return nil, err
	}

	below, err := r.scan(ctx, parent)
	if err != nil {
		return nil, err
	}

	var (
		keys  []string
		names []string
	)
	for _, k := range below {
		if name, ok := childKey(parent, strings.TrimPrefix(k, r.prefix+":")); ok {
			keys = append(keys, k)
			names = append(names, name)
		}
	}

	out := make(map[string]json.RawMessage, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read children of %s: %w", parent, err)
	}
	for i, v := range values {
		if s, ok := v.(string); ok {
			out[names[i]] = json.RawMessage(s)
		}
	}
	return out, nil
}

// scan returns every key strictly below path.
func (r *Redis) scan(ctx context.Context, path string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	pattern := escapeGlob(r.key(path)) + "/*"
	for {
		batch, next, err := r.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", path, err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}
