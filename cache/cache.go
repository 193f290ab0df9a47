// Package cache stores rendered documents keyed by their input.
//
// Rendering is deterministic once the creation date is fixed, so the bytes
// of a PDF depend only on the document kind, the record body and the
// renderer settings. Key combines these into a single content key.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a byte store with expiry. A miss is reported with ok=false and
// a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key returns the cache key of a rendered document. settings identifies
// the renderer configuration so a changed layout never serves stale bytes.
func Key(kind string, body []byte, settings ...any) string {
	return hashKey("pdf:"+kind, Hash(body), settings)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data as a 64-character hex
// string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
