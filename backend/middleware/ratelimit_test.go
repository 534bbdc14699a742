package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"), "burst exhausted")
	assert.True(t, rl.Allow("b"), "keys are independent")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.idleTTL = time.Millisecond

	rl.Allow("a")
	time.Sleep(5 * time.Millisecond)
	rl.cleanup()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	assert.Empty(t, rl.limiters)
}
