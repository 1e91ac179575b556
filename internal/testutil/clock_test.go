package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_StartsAtEpoch(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, DefaultEpoch, clock.Peek())
	assert.Equal(t, DefaultEpoch, clock.Now())
}

func TestDeterministicClock_StepsAfterEachReading(t *testing.T) {
	clock := NewDeterministicClockAt(DefaultEpoch, time.Minute)

	assert.Equal(t, DefaultEpoch, clock.Now())
	assert.Equal(t, DefaultEpoch.Add(time.Minute), clock.Now())
	assert.Equal(t, DefaultEpoch.Add(2*time.Minute), clock.Now())
	assert.Equal(t, DefaultEpoch.Add(3*time.Minute), clock.Peek())
}

func TestDeterministicClock_ZeroStepFreezes(t *testing.T) {
	clock := NewDeterministicClockAt(DefaultEpoch, 0)
	assert.Equal(t, clock.Now(), clock.Now())
}

func TestDeterministicClock_SetAndReset(t *testing.T) {
	clock := NewDeterministicClock()
	clock.Now()
	clock.Now()

	later := DefaultEpoch.Add(48 * time.Hour)
	clock.Set(later)
	assert.Equal(t, later, clock.Now())

	clock.Reset()
	assert.Equal(t, DefaultEpoch, clock.Now())
}

func TestDeterministicClock_ConcurrentReadingsAreUnique(t *testing.T) {
	clock := NewDeterministicClock()

	const goroutines = 10
	const perGoroutine = 100

	var mu sync.Mutex
	seen := make(map[time.Time]bool)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				ts := clock.Now()
				mu.Lock()
				seen[ts] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, goroutines*perGoroutine)
	assert.Equal(t, DefaultEpoch.Add(goroutines*perGoroutine*time.Second), clock.Peek())
}
