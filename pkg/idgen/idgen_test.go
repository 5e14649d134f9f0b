package idgen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSonyflakeMonotonic(t *testing.T) {
	g, err := NewSonyflake(7)
	require.NoError(t, err)

	var prev uint64
	for range 100 {
		id, err := g.NextID()
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestSonyflakeConcurrentUnique(t *testing.T) {
	g, err := NewSonyflake(1)
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		seen = make(map[uint64]bool)
		wg   sync.WaitGroup
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 250 {
				id, err := g.NextID()
				assert.NoError(t, err)
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 1000)
}
