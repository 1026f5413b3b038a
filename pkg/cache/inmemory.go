package cache

import (
	"context"
	"fmt"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/segmentio/encoding/json"
)

// DefaultMaxBytes is the capacity used when NewInMemory gets a non-positive size.
const DefaultMaxBytes = 32 * 1048576 // 32MB

type InMemory struct {
	DB *fastcache.Cache
}

var _ Cache = (*InMemory)(nil)

func NewInMemory(maxBytes int) (*InMemory, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	db := fastcache.New(maxBytes)
	return &InMemory{
		DB: db,
	}, nil
}

func (i *InMemory) GetAs(_ context.Context, key string, out interface{}) error {
	// a nil dst makes GetBig return nil on a miss
	result := i.DB.GetBig(nil, []byte(key))
	if result == nil {
		return ErrKeyNotExist
	}

	return json.Unmarshal(result, out)
}

// Set goes through SetBig, plain fastcache Set drops values over 64KB.
func (i *InMemory) Set(_ context.Context, key string, inValue interface{}) error {
	val, err := json.Marshal(inValue)
	if err != nil {
		err = fmt.Errorf("cannot marshal json value: %w", err)
		return err
	}

	i.DB.SetBig([]byte(key), val)
	return nil
}

func (i *InMemory) Has(_ context.Context, key string) bool {
	return i.DB.GetBig(nil, []byte(key)) != nil
}

// Close releases the memory held by the cache.
func (i *InMemory) Close() error {
	i.DB.Reset()
	return nil
}
