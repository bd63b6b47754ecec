package deduper

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
)

var _ Deduper = (*hashmap)(nil)

type hashmap struct {
	mux  *sync.RWMutex
	seen map[uint64]struct{}
}

// Keys are compared case-insensitively; data ids are hex and Maps
// emits them in either case.
func (d *hashmap) AddIfNotExists(_ context.Context, key string) bool {
	h := d.hash(key)

	d.mux.Lock()
	defer d.mux.Unlock()

	if _, ok := d.seen[h]; ok {
		return false
	}

	d.seen[h] = struct{}{}

	return true
}

func (d *hashmap) Len() int {
	d.mux.RLock()
	defer d.mux.RUnlock()

	return len(d.seen)
}

func (d *hashmap) hash(key string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(key))))

	return h.Sum64()
}
