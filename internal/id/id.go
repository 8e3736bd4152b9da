// Package id issues time-sortable ticket identifiers.
package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu sync.Mutex

	// Monotonic entropy keeps tickets issued within the same
	// millisecond in issue order.
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a fresh ULID string. Tickets sort by creation time, so
// position listings and journal rows come back in the order they were
// issued.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}
