package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	gcal "google.golang.org/api/calendar/v3"
)

// matchEvent picks the event a delete/edit request refers to. The caller
// supplies whatever the user said: a (possibly partial) title and maybe the
// HH:MM start time. Precedence:
//  1. case-insensitive substring match on the title, in either direction
//  2. exact HH:MM start-time match, when a time was supplied
//  3. if the day has exactly one event, that one
func matchEvent(items []*gcal.Event, title, startTime string) *gcal.Event {
	if len(items) == 0 {
		return nil
	}

	if title != "" {
		wanted := strings.ToLower(title)
		for _, item := range items {
			summary := strings.ToLower(item.Summary)
			if summary == "" {
				continue
			}
			if strings.Contains(summary, wanted) || strings.Contains(wanted, summary) {
				return item
			}
		}
	}

	if startTime != "" {
		for _, item := range items {
			if item.Start == nil || item.Start.DateTime == "" {
				continue
			}
			if eventClock(item.Start.DateTime) == startTime {
				return item
			}
		}
	}

	if len(items) == 1 {
		return items[0]
	}
	return nil
}

// eventClock extracts HH:MM from an RFC3339 date-time string.
func eventClock(dateTime string) string {
	if len(dateTime) < 16 {
		return ""
	}
	return dateTime[11:16]
}

// clampDate parses YYYY-MM-DD, clamping an out-of-range day down to the
// last day of that month (2023-02-30 becomes 2023-02-28).
func clampDate(dateStr string, loc *time.Location) (time.Time, error) {
	parts := strings.SplitN(dateStr, "-", 3)
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid date %q", dateStr)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", dateStr)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid date %q", dateStr)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 {
		return time.Time{}, fmt.Errorf("invalid date %q", dateStr)
	}

	if last := daysInMonth(year, time.Month(month)); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), nil
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthBounds returns the first and last day of the month containing the
// given YYYY-MM-DD date, both as YYYY-MM-DD.
func MonthBounds(dateStr string) (first, last string, ok bool) {
	if len(dateStr) < 7 {
		return "", "", false
	}
	year, err := strconv.Atoi(dateStr[:4])
	if err != nil {
		return "", "", false
	}
	month, err := strconv.Atoi(dateStr[5:7])
	if err != nil || month < 1 || month > 12 {
		return "", "", false
	}
	lastDay := daysInMonth(year, time.Month(month))
	return fmt.Sprintf("%04d-%02d-01", year, month),
		fmt.Sprintf("%04d-%02d-%02d", year, month, lastDay),
		true
}
