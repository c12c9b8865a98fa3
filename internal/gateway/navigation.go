package gateway

import "sync"

// pendingNavigation is one unconsumed directions request: the destination
// has been geocoded and the bot is waiting for the user to share a live
// location.
type pendingNavigation struct {
	Destination string
	Lat         float64
	Lng         float64
	Address     string
}

// navigationStore is single-slot per chat: a new request overwrites any
// unconsumed prior one, and a location share consumes the slot.
type navigationStore struct {
	mu    sync.Mutex
	chats map[int64]pendingNavigation
}

func newNavigationStore() *navigationStore {
	return &navigationStore{chats: make(map[int64]pendingNavigation)}
}

func (s *navigationStore) Set(chatID int64, nav pendingNavigation) {
	s.mu.Lock()
	s.chats[chatID] = nav
	s.mu.Unlock()
}

// Take removes and returns the chat's pending request, if any.
func (s *navigationStore) Take(chatID int64) (pendingNavigation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nav, ok := s.chats[chatID]
	if ok {
		delete(s.chats, chatID)
	}
	return nav, ok
}
