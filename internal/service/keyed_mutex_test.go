package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := newKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("s1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 64, counter)
}

func TestKeyedMutexEvictsReleasedKeys(t *testing.T) {
	km := newKeyedMutex()

	unlock := km.Lock("s1")
	assert.Equal(t, 1, km.Len())
	unlock()
	assert.Equal(t, 0, km.Len())

	// Heavy churn across many keys leaves nothing behind either.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				release := km.Lock(string(rune('a' + n%8)))
				release()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, km.Len())
}
