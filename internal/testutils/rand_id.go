package testutils

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"testing"
	"time"
)

// RandomDataID returns an identifier shaped like a Google Maps data id,
// e.g. 0x14e732fd76f0d90d:0xe5415928d6702b47.
func RandomDataID(t testing.TB) string {
	t.Helper()

	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		t.Fatalf("failed to generate data id: %v", err)
	}

	return fmt.Sprintf("0x%x:0x%x",
		binary.BigEndian.Uint64(b[:8]),
		binary.BigEndian.Uint64(b[8:]),
	)
}

// IntPtr returns a pointer to the given int
func IntPtr(i int) *int {
	return &i
}

// GetTimeoutContext returns a context that's already timed out
func GetTimeoutContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	t.Cleanup(cancel)
	time.Sleep(time.Millisecond)

	return ctx
}
