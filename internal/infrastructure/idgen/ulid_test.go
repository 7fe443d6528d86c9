package idgen

import (
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestULIDGenerator_SortsWithinOneMillisecond(t *testing.T) {
	g := NewULIDGenerator()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	prev := g.Generate()
	for i := 0; i < 1000; i++ {
		next := g.Generate()
		require.Less(t, prev, next)
		prev = next
	}

	id, err := ulid.Parse(prev)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(fixed), id.Time())
}

func TestULIDGenerator_ConcurrentUnique(t *testing.T) {
	g := NewULIDGenerator()

	const workers, perWorker = 8, 200
	ids := make(chan string, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids <- g.Generate()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, workers*perWorker)
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
}
