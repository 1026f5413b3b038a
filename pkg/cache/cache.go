package cache

import (
	"context"
	"fmt"
)

var (
	ErrKeyNotExist = fmt.Errorf("cache key not exists")
)

// Cache stores JSON encoded values by key. Entries live until the cache is reset.
type Cache interface {
	GetAs(ctx context.Context, key string, out interface{}) error
	Set(ctx context.Context, key string, inValue interface{}) error
	Has(ctx context.Context, key string) bool
}
