// Package lock provides per-chat locking. Every operation that touches
// a chat's game session (read, mutate, delete, timer callback) runs
// under that chat's mutex, so an answer and a timeout firing in the
// same instant cannot both resolve the round. Chats lock independently:
// there is no global lock and no head-of-line blocking between them.
package lock

import (
	"sync"
)

// ChatLock is a registry of per-chat mutexes keyed by chat id.
type ChatLock struct {
	locks sync.Map // map[int64]*sync.Mutex
}

// NewChatLock creates a new ChatLock instance.
func NewChatLock() *ChatLock {
	return &ChatLock{}
}

func (cl *ChatLock) get(chatID int64) *sync.Mutex {
	if v, ok := cl.locks.Load(chatID); ok {
		return v.(*sync.Mutex)
	}
	v, _ := cl.locks.LoadOrStore(chatID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Lock acquires the lock for a chat.
func (cl *ChatLock) Lock(chatID int64) {
	cl.get(chatID).Lock()
}

// Unlock releases the lock for a chat.
func (cl *ChatLock) Unlock(chatID int64) {
	cl.get(chatID).Unlock()
}

// TryLock attempts to acquire the lock without blocking.
func (cl *ChatLock) TryLock(chatID int64) bool {
	return cl.get(chatID).TryLock()
}

// WithLock runs fn while holding the chat's lock. The lock is held
// across any IO fn performs, so no other operation for the same chat
// can start while fn is suspended.
func (cl *ChatLock) WithLock(chatID int64, fn func() error) error {
	m := cl.get(chatID)
	m.Lock()
	defer m.Unlock()
	return fn()
}
