package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// TestWithLockSerializesProperty: for any set of concurrent
// read-modify-write operations on the same chat, the final value equals
// the sequential result, meaning no increment is lost.
func TestWithLockSerializesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chatID := rapid.Int64Range(1, 1000000).Draw(t, "chatID")
		numOps := rapid.IntRange(2, 30).Draw(t, "numOps")

		deltas := make([]int64, numOps)
		var expected int64
		for i := range deltas {
			deltas[i] = rapid.Int64Range(-500, 500).Draw(t, "delta")
			expected += deltas[i]
		}

		cl := NewChatLock()
		var value int64

		var wg sync.WaitGroup
		wg.Add(numOps)
		for _, d := range deltas {
			go func(delta int64) {
				defer wg.Done()
				_ = cl.WithLock(chatID, func() error {
					value += delta
					return nil
				})
			}(d)
		}
		wg.Wait()

		if value != expected {
			t.Fatalf("lost update: expected %d, got %d", expected, value)
		}
	})
}

func TestTryLock(t *testing.T) {
	cl := NewChatLock()

	cl.Lock(7)
	assert.False(t, cl.TryLock(7), "held lock must not be re-acquirable")
	assert.True(t, cl.TryLock(8), "other chats lock independently")
	cl.Unlock(8)
	cl.Unlock(7)

	assert.True(t, cl.TryLock(7))
	cl.Unlock(7)
}

func TestIndependentChats(t *testing.T) {
	cl := NewChatLock()
	cl.Lock(1)
	done := make(chan struct{})
	go func() {
		cl.Lock(2)
		cl.Unlock(2)
		close(done)
	}()
	<-done // would deadlock if chats shared a lock
	cl.Unlock(1)
}
