package calendar

import (
	"testing"
	"time"

	gcal "google.golang.org/api/calendar/v3"
)

func timedEvent(id, summary, dateTime string) *gcal.Event {
	return &gcal.Event{
		Id:      id,
		Summary: summary,
		Start:   &gcal.EventDateTime{DateTime: dateTime},
	}
}

func TestMatchEventTitleSubstring(t *testing.T) {
	items := []*gcal.Event{
		timedEvent("1", "팀 회의", "2024-03-05T10:00:00+09:00"),
		timedEvent("2", "점심 약속", "2024-03-05T12:00:00+09:00"),
	}

	tests := []struct {
		name   string
		title  string
		wantID string
	}{
		{"exact", "팀 회의", "1"},
		{"partial query", "회의", "1"},
		{"query longer than title", "우리 팀 회의 일정", "1"},
		{"case insensitive", "LUNCH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchEvent(items, tt.title, "")
			if tt.wantID == "" {
				if got != nil {
					t.Fatalf("expected no match, got %s", got.Id)
				}
				return
			}
			if got == nil || got.Id != tt.wantID {
				t.Fatalf("matchEvent(%q) = %v, want id %s", tt.title, got, tt.wantID)
			}
		})
	}
}

func TestMatchEventCaseInsensitive(t *testing.T) {
	items := []*gcal.Event{
		timedEvent("1", "Standup Meeting", "2024-03-05T10:00:00+09:00"),
	}
	got := matchEvent(items, "standup", "")
	if got == nil || got.Id != "1" {
		t.Fatalf("expected case-insensitive title match, got %v", got)
	}
}

func TestMatchEventTimeFallback(t *testing.T) {
	items := []*gcal.Event{
		timedEvent("1", "아침 운동", "2024-03-05T07:00:00+09:00"),
		timedEvent("2", "저녁 식사", "2024-03-05T19:00:00+09:00"),
	}

	got := matchEvent(items, "없는 일정", "19:00")
	if got == nil || got.Id != "2" {
		t.Fatalf("expected time match on 19:00, got %v", got)
	}
}

func TestMatchEventTitleBeatsTime(t *testing.T) {
	// Title match must win even when the supplied time points elsewhere.
	items := []*gcal.Event{
		timedEvent("1", "팀 회의", "2024-03-05T10:00:00+09:00"),
		timedEvent("2", "병원", "2024-03-05T15:00:00+09:00"),
	}

	got := matchEvent(items, "회의", "15:00")
	if got == nil || got.Id != "1" {
		t.Fatalf("expected title match to take precedence, got %v", got)
	}
}

func TestMatchEventSoleEventFallback(t *testing.T) {
	items := []*gcal.Event{
		timedEvent("1", "유일한 일정", "2024-03-05T10:00:00+09:00"),
	}

	if got := matchEvent(items, "전혀 다른 제목", ""); got == nil || got.Id != "1" {
		t.Fatalf("expected sole-event fallback, got %v", got)
	}

	items = append(items, timedEvent("2", "또 다른 일정", "2024-03-05T11:00:00+09:00"))
	if got := matchEvent(items, "전혀 다른 제목", ""); got != nil {
		t.Fatalf("expected no match with two candidates, got %s", got.Id)
	}
}

func TestMatchEventEmptyTitle(t *testing.T) {
	// With several candidates and no title, a supplied time must decide;
	// without one there is no match rather than an arbitrary pick.
	items := []*gcal.Event{
		timedEvent("1", "아침 운동", "2024-03-05T07:00:00+09:00"),
		timedEvent("2", "저녁 식사", "2024-03-05T19:00:00+09:00"),
	}

	if got := matchEvent(items, "", ""); got != nil {
		t.Fatalf("expected no match for empty title without time, got %s", got.Id)
	}
	if got := matchEvent(items, "", "19:00"); got == nil || got.Id != "2" {
		t.Fatalf("expected time match for empty title, got %v", got)
	}
}

func TestMatchEventEmpty(t *testing.T) {
	if got := matchEvent(nil, "회의", "10:00"); got != nil {
		t.Fatalf("expected nil for empty list, got %v", got)
	}
}

func TestEventClock(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-05T07:30:00+09:00", "07:30"},
		{"2024-03-05T23:05:00Z", "23:05"},
		{"short", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := eventClock(tt.in); got != tt.want {
			t.Errorf("eventClock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClampDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2023-02-30", "2023-02-28"},
		{"2024-02-30", "2024-02-29"}, // leap year
		{"2024-04-31", "2024-04-30"},
		{"2024-12-31", "2024-12-31"},
		{"2024-01-01", "2024-01-01"},
	}
	for _, tt := range tests {
		got, err := clampDate(tt.in, time.UTC)
		if err != nil {
			t.Errorf("clampDate(%q) error: %v", tt.in, err)
			continue
		}
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("clampDate(%q) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestClampDateInvalid(t *testing.T) {
	for _, in := range []string{"", "2024-13-01", "2024-00-10", "not-a-date", "2024-02", "2024-02-00"} {
		if _, err := clampDate(in, time.UTC); err == nil {
			t.Errorf("clampDate(%q) expected error", in)
		}
	}
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		in        string
		wantFirst string
		wantLast  string
		wantOK    bool
	}{
		{"2024-02-15", "2024-02-01", "2024-02-29", true},
		{"2023-02-01", "2023-02-01", "2023-02-28", true},
		{"2024-12-31", "2024-12-01", "2024-12-31", true},
		{"2024-1", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		first, last, ok := MonthBounds(tt.in)
		if ok != tt.wantOK || first != tt.wantFirst || last != tt.wantLast {
			t.Errorf("MonthBounds(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.in, first, last, ok, tt.wantFirst, tt.wantLast, tt.wantOK)
		}
	}
}
