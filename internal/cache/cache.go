// Package cache stores derived read models outside the ledger engine.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// Store is a byte-oriented key/value cache with per-entry expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Key joins slugged parts with ':' so tenant and date components stay
// readable in redis and free of separators.
func Key(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = slug.Make(strings.TrimSpace(p)); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return "storeledger:" + strings.Join(cleaned, ":")
}

// SummaryKey addresses the cached finance summary of a tenant for one as-of date.
func SummaryKey(orgID, asOf string) string {
	return Key("summary", orgID, asOf)
}

// ForgetSummary drops a tenant's cached summary for asOf. A nil store is a no-op.
func ForgetSummary(ctx context.Context, store Store, orgID, asOf string) error {
	if store == nil {
		return nil
	}
	return store.Delete(ctx, SummaryKey(orgID, asOf))
}
