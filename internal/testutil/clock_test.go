package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepClock_StartsAtEpoch(t *testing.T) {
	clock := NewStepClock()
	assert.True(t, Epoch.Equal(clock.Now()))
}

func TestStepClock_AdvancesByStep(t *testing.T) {
	clock := NewStepClock()

	first := clock.Now()
	second := clock.Now()
	third := clock.Now()

	assert.Equal(t, time.Second, second.Sub(first))
	assert.Equal(t, time.Second, third.Sub(second))
}

func TestStepClock_Reset(t *testing.T) {
	clock := NewStepClock()
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.True(t, Epoch.Equal(clock.Now()))
}

func TestStepClock_ConcurrentCallsAreDistinct(t *testing.T) {
	clock := NewStepClock()

	var mu sync.Mutex
	seen := make(map[time.Time]bool)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			now := clock.Now()
			mu.Lock()
			seen[now] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
}

func TestFixedRunToken(t *testing.T) {
	assert.Equal(t, "run-1", FixedRunToken("run-1").Generate())
	assert.Equal(t, "run-1", FixedRunToken("run-1").Generate())
	assert.Equal(t, "test-run-default", FixedRunToken("").Generate())
}
