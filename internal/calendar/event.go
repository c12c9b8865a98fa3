package calendar

import (
	"time"

	gcal "google.golang.org/api/calendar/v3"
)

// Event is the transient copy of a remote calendar event that the rest of
// the system works with. The remote API owns the resource; we only hold
// snapshots returned by list and query calls.
type Event struct {
	ID          string
	Title       string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
}

// Date returns the event's start date as YYYY-MM-DD.
func (e Event) Date() string {
	return e.Start.Format("2006-01-02")
}

// StartClock returns the HH:MM start time, or empty for all-day events.
func (e Event) StartClock() string {
	if e.AllDay {
		return ""
	}
	return e.Start.Format("15:04")
}

// EndClock returns the HH:MM end time, or empty for all-day events.
func (e Event) EndClock() string {
	if e.AllDay {
		return ""
	}
	return e.End.Format("15:04")
}

func fromGoogle(item *gcal.Event, loc *time.Location) Event {
	ev := Event{
		ID:          item.Id,
		Title:       item.Summary,
		Location:    item.Location,
		Description: item.Description,
	}
	if item.Start != nil {
		if item.Start.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
				ev.Start = t.In(loc)
			}
		} else if item.Start.Date != "" {
			ev.AllDay = true
			if t, err := time.ParseInLocation("2006-01-02", item.Start.Date, loc); err == nil {
				ev.Start = t
			}
		}
	}
	if item.End != nil {
		if item.End.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
				ev.End = t.In(loc)
			}
		} else if item.End.Date != "" {
			if t, err := time.ParseInLocation("2006-01-02", item.End.Date, loc); err == nil {
				ev.End = t
			}
		}
	}
	return ev
}

func fromGoogleList(items []*gcal.Event, loc *time.Location) []Event {
	events := make([]Event, 0, len(items))
	for _, item := range items {
		events = append(events, fromGoogle(item, loc))
	}
	return events
}
