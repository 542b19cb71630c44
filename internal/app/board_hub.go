package app

import (
	"sync"

	"scoreboard-service/internal/domain"
)

// BoardKey names the broadcast channel for one board scope.
func BoardKey(item domain.ItemRef, classID string) string {
	return item.String() + "|" + classID
}

// BoardHub fans out change signals for leaderboard scopes. Subscribers get a
// coalescing signal channel: a slow reader sees at most one pending signal
// and re-queries the board when it drains it, so broadcasts never block.
type BoardHub struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func NewBoardHub() *BoardHub {
	return &BoardHub{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers interest in a board scope. The caller must invoke the
// returned cancel function to avoid leaks.
func (h *BoardHub) Subscribe(key string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	set, ok := h.subs[key]
	if !ok {
		set = make(map[chan struct{}]struct{})
		h.subs[key] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[key]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, key)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Notify signals every subscriber of the scope. A signal already pending on
// a channel stands in for this one.
func (h *BoardHub) Notify(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[key] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
