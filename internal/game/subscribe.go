package game

import (
	"github.com/mausarm/crypto-god/internal/store"

	"github.com/google/uuid"
)

// Subscribe registers a listener for state changes. The channel holds only the
// latest state; a slow reader skips intermediate ones. It is closed by
// Unsubscribe or Close.
func (e *Engine) Subscribe() (uuid.UUID, <-chan store.AppState) {
	id := uuid.New()
	ch := make(chan store.AppState, 1)

	e.subMu.Lock()
	e.subs[id] = ch
	e.subMu.Unlock()
	return id, ch
}

func (e *Engine) Unsubscribe(id uuid.UUID) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	if ch, ok := e.subs[id]; ok {
		close(ch)
		delete(e.subs, id)
	}
}

// publish never blocks: a pending unread state is replaced by the new one.
func (e *Engine) publish(state store.AppState) {
	e.subMu.RLock()
	defer e.subMu.RUnlock()
	for _, ch := range e.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- state:
		default:
		}
	}
}
