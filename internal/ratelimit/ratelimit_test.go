package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	l := New(3, time.Minute)

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))

	// other keys are counted independently
	assert.True(t, l.Allow("5.6.7.8"))
}

func TestLimiter_WindowResets(t *testing.T) {
	l := New(1, time.Minute)

	current := time.Now()
	l.now = func() time.Time { return current }

	assert.True(t, l.Allow("ip"))
	assert.False(t, l.Allow("ip"))

	current = current.Add(61 * time.Second)
	assert.True(t, l.Allow("ip"))
}

func TestLimiter_ConcurrentAccess(t *testing.T) {
	l := New(100, time.Minute)

	var wg sync.WaitGroup
	allowed := make(chan bool, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- l.Allow("shared")
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}
	assert.Equal(t, 100, count)
}
