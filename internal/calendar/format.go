package calendar

import (
	"fmt"
	"strings"
	"time"
)

// weekdayNames indexes by Monday=0, matching how Korean calendars read.
var weekdayNames = []string{"월", "화", "수", "목", "금", "토", "일"}

func weekdayName(t time.Time) string {
	return weekdayNames[(int(t.Weekday())+6)%7]
}

// TimeLabel renders an event's time for display: HH:MM for timed events,
// "종일" for single all-day events, and "MM-DD~MM-DD 종일" for multi-day
// spans. The stored all-day end date is exclusive, so the label backs it
// up one day.
func TimeLabel(e Event) string {
	if !e.AllDay {
		return e.StartClock()
	}
	if !e.End.IsZero() && e.End.Sub(e.Start) > 24*time.Hour {
		actualEnd := e.End.AddDate(0, 0, -1)
		return fmt.Sprintf("%s~%s 종일", e.Start.Format("01-02"), actualEnd.Format("01-02"))
	}
	return "종일"
}

// FormatToday renders today's events as a numbered list.
func FormatToday(events []Event) string {
	if len(events) == 0 {
		return "📭 오늘은 예정된 일정이 없습니다."
	}

	lines := []string{"📅 오늘의 일정:\n"}
	for i, e := range events {
		lines = append(lines, fmt.Sprintf("%d. 🕐 %s - %s", i+1, TimeLabel(e), titleOf(e)))
	}
	return strings.Join(lines, "\n")
}

// FormatWeek renders the week's events grouped under date headers.
func FormatWeek(events []Event) string {
	if len(events) == 0 {
		return "📭 이번 주는 예정된 일정이 없습니다."
	}

	lines := []string{"📅 이번 주 일정:\n"}
	currentDate := ""
	for _, e := range events {
		if date := e.Date(); date != currentDate {
			currentDate = date
			lines = append(lines, fmt.Sprintf("\n📆 %s (%s)", date, weekdayName(e.Start)))
		}
		lines = append(lines, fmt.Sprintf("  🕐 %s - %s", TimeLabel(e), titleOf(e)))
	}
	return strings.Join(lines, "\n")
}

// FormatSearch renders search results as a numbered list with dates.
func FormatSearch(events []Event, keyword string) string {
	if len(events) == 0 {
		msg := "🔍 검색 결과가 없습니다."
		if keyword != "" {
			msg += fmt.Sprintf(" (%q)", keyword)
		}
		return msg
	}

	header := "🔍 검색 결과"
	if keyword != "" {
		header += fmt.Sprintf(" %q", keyword)
	}
	header += fmt.Sprintf(" (%d건):\n", len(events))

	lines := []string{header}
	for i, e := range events {
		lines = append(lines, fmt.Sprintf("%d. 📅 %s 🕐 %s - %s", i+1, e.Date(), TimeLabel(e), titleOf(e)))
	}
	return strings.Join(lines, "\n")
}

// FormatMonthSummary renders the full month's events appended after a
// mutation reply, grouped by date. dateFrom is the first day of the month
// as YYYY-MM-DD.
func FormatMonthSummary(dateFrom string, events []Event) string {
	label := monthLabel(dateFrom)
	if len(events) == 0 {
		return fmt.Sprintf("\n📋 %s 전체 일정: 없음", label)
	}

	lines := []string{fmt.Sprintf("\n📋 %s 전체 일정 (%d건):", label, len(events))}
	currentDate := ""
	for _, e := range events {
		if date := e.Date(); date != currentDate {
			currentDate = date
			lines = append(lines, fmt.Sprintf("\n  📆 %s (%s)", date, weekdayName(e.Start)))
		}
		lines = append(lines, fmt.Sprintf("    🕐 %s - %s", TimeLabel(e), titleOf(e)))
	}
	return strings.Join(lines, "\n")
}

func monthLabel(dateFrom string) string {
	if len(dateFrom) < 7 {
		return dateFrom
	}
	year := dateFrom[:4]
	month := strings.TrimPrefix(dateFrom[5:7], "0")
	return fmt.Sprintf("%s년 %s월", year, month)
}

func titleOf(e Event) string {
	if e.Title == "" {
		return "(제목 없음)"
	}
	return e.Title
}
