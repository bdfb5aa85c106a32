// Package kv defines the key-value substrate that backs the domain store:
// one key per collection, each holding a JSON-encoded array snapshot.
package kv

import "context"

// Store is a process-local key-value substrate. Get reports found=false for
// an absent key rather than an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}
