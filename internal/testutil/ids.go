package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates predictable ids: "<prefix>0001", "<prefix>0002", ...
//
// This enables deterministic test execution and golden snapshot comparison.
//
// Thread-safety: SequentialIDs is safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator. If prefix is empty, "test-" is used.
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "test-"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next id. Implements store.IDGenerator.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s%04d", g.prefix, g.n)
}
