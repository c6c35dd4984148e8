package fairos

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemorySessionStore(t *testing.T) {
	s := NewMemorySessionStore()

	_, ok := s.Get("alice")
	assert.False(t, ok)

	s.Set("alice", "tok-1")
	token, ok := s.Get("alice")
	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)

	s.Set("alice", "tok-2")
	token, _ = s.Get("alice")
	assert.Equal(t, "tok-2", token)

	s.Remove("alice")
	_, ok = s.Get("alice")
	assert.False(t, ok)

	// removing an absent user is a no-op
	s.Remove("bob")
}

func TestMemorySessionStoreConcurrent(t *testing.T) {
	s := NewMemorySessionStore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Set("user", "token")
				s.Get("user")
				s.Remove("user")
			}
		}()
	}
	wg.Wait()
}
