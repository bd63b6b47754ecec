// Package deduper remembers which places a run has already handled.
package deduper

import (
	"context"
	"sync"
)

type Deduper interface {
	// AddIfNotExists reports whether key was new, recording it if so.
	AddIfNotExists(context.Context, string) bool
	Len() int
}

func New() Deduper {
	return &hashmap{
		seen: make(map[uint64]struct{}),
		mux:  &sync.RWMutex{},
	}
}
