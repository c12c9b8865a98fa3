package nlp

import (
	"strings"
	"testing"
	"time"

	"github.com/jinbless/tgcalendar/internal/calendar"
)

func snapshotEvents(t *testing.T) []calendar.Event {
	t.Helper()
	start := func(value string) time.Time {
		parsed, err := time.Parse("2006-01-02 15:04", value)
		if err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
		return parsed
	}
	return []calendar.Event{
		{
			Title:    "치과 예약",
			Location: "서울 강남구",
			Start:    start("2024-03-08 09:00"),
			End:      start("2024-03-08 10:00"),
		},
		{
			Title:       "팀 회식",
			Description: "장소 미정",
			Start:       start("2024-03-09 19:00"),
			End:         start("2024-03-09 21:00"),
		},
	}
}

func TestContextStoreSetAndEvents(t *testing.T) {
	store := NewContextStore()
	store.Set(1, snapshotEvents(t))

	events := store.Events(1)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Index != 1 || events[1].Index != 2 {
		t.Errorf("indexes = %d, %d, want 1, 2", events[0].Index, events[1].Index)
	}
	if events[0].Date != "2024-03-08" || events[0].Time != "09:00" {
		t.Errorf("first entry = %+v", events[0])
	}
	if events[0].Location != "서울 강남구" {
		t.Errorf("location not carried: %+v", events[0])
	}
}

func TestContextStoreSetOverwrites(t *testing.T) {
	store := NewContextStore()
	store.Set(1, snapshotEvents(t))
	store.Set(1, nil)

	if got := store.Events(1); len(got) != 0 {
		t.Errorf("expected snapshot replaced, got %v", got)
	}
}

func TestContextStoreFind(t *testing.T) {
	store := NewContextStore()
	store.Set(1, snapshotEvents(t))

	tests := []struct {
		name    string
		title   string
		date    string
		wantHit bool
		wantIdx int
	}{
		{"substring", "치과", "", true, 1},
		{"query longer than title", "다음주 치과 예약 일정", "", true, 1},
		{"date narrows", "", "2024-03-09", true, 2},
		{"title plus wrong date", "치과", "2024-03-09", false, 0},
		{"absent", "병원", "", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := store.Find(1, tt.title, tt.date)
			if ok != tt.wantHit {
				t.Fatalf("Find = %v, want %v", ok, tt.wantHit)
			}
			if ok && got.Index != tt.wantIdx {
				t.Errorf("Index = %d, want %d", got.Index, tt.wantIdx)
			}
		})
	}
}

func TestContextStoreFindCaseInsensitive(t *testing.T) {
	store := NewContextStore()
	store.Set(1, []calendar.Event{{Title: "Standup Meeting"}})

	if _, ok := store.Find(1, "standup", ""); !ok {
		t.Error("expected case-insensitive match")
	}
}

func TestContextStoreFormat(t *testing.T) {
	store := NewContextStore()
	if got := store.Format(1); got != "" {
		t.Fatalf("empty snapshot format = %q, want empty", got)
	}

	store.Set(1, snapshotEvents(t))
	got := store.Format(1)

	if !strings.Contains(got, "1. 치과 예약 (2024-03-08 09:00) 📍 서울 강남구") {
		t.Errorf("missing first line: %q", got)
	}
	if !strings.Contains(got, "2. 팀 회식 (2024-03-09 19:00) 💬 장소 미정") {
		t.Errorf("missing second line: %q", got)
	}
	if strings.HasSuffix(got, "\n") {
		t.Errorf("trailing newline not trimmed: %q", got)
	}
}
