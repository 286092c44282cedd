package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// ReadError explains why a blob could not be turned into a value.
type ReadError struct {
	Key string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Key, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Result is the outcome of reading and decoding one blob.
type Result[T any] struct {
	Value T
	Err   error
}

func (r Result[T]) OK() bool { return r.Err == nil }

// Read fetches key and decodes it as JSON into a T.
func Read[T any](ctx context.Context, b Blobs, key string) Result[T] {
	var res Result[T]
	raw, err := b.Get(ctx, key)
	if err != nil {
		res.Err = &ReadError{Key: key, Err: err}
		return res
	}
	if len(raw) == 0 {
		res.Err = &ReadError{Key: key, Err: ErrNotFound}
		return res
	}
	if err := json.Unmarshal(raw, &res.Value); err != nil {
		var zero T
		res.Value = zero
		res.Err = &ReadError{Key: key, Err: fmt.Errorf("decode: %w", err)}
	}
	return res
}

// Load returns the decoded blob, or fallback when the key is missing or the
// stored bytes cannot be decoded. Read failures never reach the caller.
func Load[T any](ctx context.Context, b Blobs, key string, fallback T, logger *slog.Logger) T {
	res := Read[T](ctx, b, key)
	if res.OK() {
		return res.Value
	}
	if logger == nil {
		logger = slog.Default()
	}
	if errors.Is(res.Err, ErrNotFound) {
		logger.Debug("blob missing, using fallback", "key", key)
	} else {
		logger.Warn("blob unreadable, using fallback", "key", key, "error", res.Err)
	}
	return fallback
}

// Save encodes v and writes it. Write failures are logged and dropped; the
// caller's in-memory copy stays authoritative.
func Save(ctx context.Context, b Blobs, key string, v any, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Warn("blob encode failed", "key", key, "error", err)
		return
	}
	if err := b.Put(ctx, key, raw); err != nil {
		logger.Warn("blob write failed", "key", key, "error", err)
	}
}
