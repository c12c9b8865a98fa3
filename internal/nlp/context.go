package nlp

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jinbless/tgcalendar/internal/calendar"
)

// EventSummary is a lightweight snapshot of one event from the last
// listing shown to a chat, used so follow-up references ("그거", "2번
// 일정") resolve without re-querying the calendar.
type EventSummary struct {
	Index       int
	Title       string
	Date        string
	Time        string
	Location    string
	Description string
}

// ContextStore keeps the most recent listing per chat. Every new listing
// overwrites the previous snapshot; nothing survives a restart.
type ContextStore struct {
	mu    sync.Mutex
	chats map[int64][]EventSummary
}

func NewContextStore() *ContextStore {
	return &ContextStore{chats: make(map[int64][]EventSummary)}
}

// Set replaces the chat's snapshot with the given listing.
func (s *ContextStore) Set(chatID int64, events []calendar.Event) {
	summaries := make([]EventSummary, 0, len(events))
	for i, e := range events {
		summaries = append(summaries, EventSummary{
			Index:       i + 1,
			Title:       e.Title,
			Date:        e.Date(),
			Time:        calendar.TimeLabel(e),
			Location:    e.Location,
			Description: e.Description,
		})
	}

	s.mu.Lock()
	s.chats[chatID] = summaries
	s.mu.Unlock()
}

// Events returns a copy of the chat's snapshot.
func (s *ContextStore) Events(chatID int64) []EventSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.chats[chatID]
	out := make([]EventSummary, len(snapshot))
	copy(out, snapshot)
	return out
}

// Find locates a snapshot entry by title substring and optional date.
// Matching is case-insensitive and bidirectional, same as the calendar's
// delete/edit matching.
func (s *ContextStore) Find(chatID int64, title, date string) (EventSummary, bool) {
	for _, e := range s.Events(chatID) {
		if date != "" && e.Date != date {
			continue
		}
		if title != "" {
			have := strings.ToLower(e.Title)
			want := strings.ToLower(title)
			if have == "" || (!strings.Contains(have, want) && !strings.Contains(want, have)) {
				continue
			}
		}
		return e, true
	}
	return EventSummary{}, false
}

// Format renders the snapshot as the numbered list injected into the
// system prompt. Empty string when there is no snapshot.
func (s *ContextStore) Format(chatID int64) string {
	events := s.Events(chatID)
	if len(events) == 0 {
		return ""
	}

	var b strings.Builder
	for _, e := range events {
		fmt.Fprintf(&b, "%d. %s (%s %s)", e.Index, e.Title, e.Date, e.Time)
		if e.Location != "" {
			fmt.Fprintf(&b, " 📍 %s", e.Location)
		}
		if e.Description != "" {
			fmt.Fprintf(&b, " 💬 %s", e.Description)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
