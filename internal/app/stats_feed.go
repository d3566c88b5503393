package app

import (
	"sync"

	"culturequiz-service/internal/domain"
)

// StatsFeed fans refreshed statistics snapshots out to a user's subscribed
// clients (e.g. a dashboard watching its numbers move after each attempt).
type StatsFeed struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.UserStatistics]struct{}
}

func NewStatsFeed() *StatsFeed {
	return &StatsFeed{
		subscribers: make(map[string]map[chan domain.UserStatistics]struct{}),
	}
}

// Subscribe registers a channel for one user's statistics updates. The caller
// must invoke the returned cancel function to avoid leaks.
func (f *StatsFeed) Subscribe(userID string) (<-chan domain.UserStatistics, func()) {
	ch := make(chan domain.UserStatistics, 8)

	f.mu.Lock()
	subs, ok := f.subscribers[userID]
	if !ok {
		subs = make(map[chan domain.UserStatistics]struct{})
		f.subscribers[userID] = subs
	}
	subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if subs, ok := f.subscribers[userID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(f.subscribers, userID)
			}
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers a snapshot to every subscriber of the user. Slow clients
// lose their stale pending snapshot rather than blocking the publisher.
func (f *StatsFeed) Publish(userID string, stats domain.UserStatistics) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[userID] {
		select {
		case ch <- stats:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- stats
		}
	}
}
