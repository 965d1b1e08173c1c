package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateReturnsSameSession(t *testing.T) {
	repo := NewSessionRepository(time.Minute)

	first := repo.GetOrCreate("tg:42")
	first.Criteria["material"] = "metal"

	second := repo.GetOrCreate("tg:42")

	assert.Same(t, first, second)
	assert.Equal(t, "metal", second.Criteria["material"])
}

func TestGetOrCreateConcurrent(t *testing.T) {
	repo := NewSessionRepository(time.Minute)

	const goroutines = 32
	var wg sync.WaitGroup
	results := make([]any, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = repo.GetOrCreate("shared")
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, results[0], results[i], "every caller must observe one session")
	}
}

func TestGetMissing(t *testing.T) {
	repo := NewSessionRepository(time.Minute)

	s, found := repo.Get("nope")
	assert.False(t, found)
	assert.Nil(t, s)
}

func TestDelete(t *testing.T) {
	repo := NewSessionRepository(time.Minute)

	created := repo.GetOrCreate("gone")
	require.NotNil(t, created)
	repo.Delete("gone")

	_, found := repo.Get("gone")
	assert.False(t, found)
}
