package nlp

import (
	"encoding/json"
	"fmt"

	"github.com/jinbless/tgcalendar/internal/calendar"
)

// Args is the tagged union of parsed operation arguments. Exactly one
// concrete type corresponds to each catalogue entry.
type Args interface {
	isArgs()
}

type AddEventArgs struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description"`
}

type AddEventsByRangeArgs struct {
	Title       string `json:"title"`
	DateFrom    string `json:"date_from"`
	DateTo      string `json:"date_to"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description"`
}

type AddMultidayEventArgs struct {
	Title       string `json:"title"`
	DateFrom    string `json:"date_from"`
	DateTo      string `json:"date_to"`
	Description string `json:"description"`
}

type DeleteEventArgs struct {
	Title        string `json:"title"`
	Date         string `json:"date"`
	OriginalTime string `json:"original_time"`
}

type DeleteEventsByRangeArgs struct {
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
	Keyword  string `json:"keyword"`
}

type EditEventArgs struct {
	Title        string                `json:"title"`
	Date         string                `json:"date"`
	OriginalTime string                `json:"original_time"`
	Changes      calendar.EventChanges `json:"changes"`
}

type TodayEventsArgs struct{}

type WeekEventsArgs struct{}

type SearchEventsArgs struct {
	Keyword  string `json:"keyword"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

type NavigateArgs struct {
	Destination string `json:"destination"`
	Title       string `json:"title"`
	Date        string `json:"date"`
}

func (AddEventArgs) isArgs()            {}
func (AddEventsByRangeArgs) isArgs()    {}
func (AddMultidayEventArgs) isArgs()    {}
func (DeleteEventArgs) isArgs()         {}
func (DeleteEventsByRangeArgs) isArgs() {}
func (EditEventArgs) isArgs()           {}
func (TodayEventsArgs) isArgs()         {}
func (WeekEventsArgs) isArgs()          {}
func (SearchEventsArgs) isArgs()        {}
func (NavigateArgs) isArgs()            {}

// parseArgs decodes a tool call's raw JSON arguments into the typed
// variant for its operation, enforcing the catalogue's required fields.
// Unknown operation names and malformed arguments come back as errors;
// the model is not trusted to stay inside the catalogue.
func parseArgs(name, raw string) (Args, error) {
	decode := func(dst any) error {
		if raw == "" {
			raw = "{}"
		}
		if err := json.Unmarshal([]byte(raw), dst); err != nil {
			return fmt.Errorf("decode %s arguments: %w", name, err)
		}
		return nil
	}
	missing := func(field string) error {
		return fmt.Errorf("%s: missing required field %s", name, field)
	}

	switch name {
	case "add_event":
		var a AddEventArgs
		if err := decode(&a); err != nil {
			return nil, err
		}
		switch {
		case a.Title == "":
			return nil, missing("title")
		case a.Date == "":
			return nil, missing("date")
		case a.StartTime == "":
			return nil, missing("start_time")
		}
		return a, nil

	case "add_events_by_range":
		var a AddEventsByRangeArgs
		if err := decode(&a); err != nil {
			return nil, err
		}
		switch {
		case a.Title == "":
			return nil, missing("title")
		case a.DateFrom == "":
			return nil, missing("date_from")
		case a.DateTo == "":
			return nil, missing("date_to")
		case a.StartTime == "":
			return nil, missing("start_time")
		}
		return a, nil

	case "add_multiday_event":
		var a AddMultidayEventArgs
		if err := decode(&a); err != nil {
			return nil, err
		}
		switch {
		case a.Title == "":
			return nil, missing("title")
		case a.DateFrom == "":
			return nil, missing("date_from")
		case a.DateTo == "":
			return nil, missing("date_to")
		}
		return a, nil

	case "delete_event":
		var a DeleteEventArgs
		if err := decode(&a); err != nil {
			return nil, err
		}
		if a.Date == "" {
			return nil, missing("date")
		}
		return a, nil

	case "delete_events_by_range":
		var a DeleteEventsByRangeArgs
		if err := decode(&a); err != nil {
			return nil, err
		}
		switch {
		case a.DateFrom == "":
			return nil, missing("date_from")
		case a.DateTo == "":
			return nil, missing("date_to")
		}
		return a, nil

	case "edit_event":
		var a EditEventArgs
		if err := decode(&a); err != nil {
			return nil, err
		}
		if a.Date == "" {
			return nil, missing("date")
		}
		if a.Changes.IsEmpty() {
			return nil, missing("changes")
		}
		return a, nil

	case "get_today_events":
		var a TodayEventsArgs
		if err := decode(&a); err != nil {
			return nil, err
		}
		return a, nil

	case "get_week_events":
		var a WeekEventsArgs
		if err := decode(&a); err != nil {
			return nil, err
		}
		return a, nil

	case "search_events":
		var a SearchEventsArgs
		if err := decode(&a); err != nil {
			return nil, err
		}
		return a, nil

	case "navigate":
		var a NavigateArgs
		if err := decode(&a); err != nil {
			return nil, err
		}
		return a, nil
	}
	return nil, fmt.Errorf("unknown operation %q", name)
}
