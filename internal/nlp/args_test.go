package nlp

import (
	"strings"
	"testing"
)

func TestParseArgsAddEvent(t *testing.T) {
	raw := `{"title":"팀 회의","date":"2024-03-05","start_time":"15:00","end_time":"16:00","description":"분기 리뷰"}`
	got, err := parseArgs("add_event", raw)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	a, ok := got.(AddEventArgs)
	if !ok {
		t.Fatalf("type = %T, want AddEventArgs", got)
	}
	if a.Title != "팀 회의" || a.Date != "2024-03-05" || a.StartTime != "15:00" {
		t.Errorf("parsed = %+v", a)
	}
}

func TestParseArgsMissingRequired(t *testing.T) {
	tests := []struct {
		name      string
		op        string
		raw       string
		wantField string
	}{
		{"add_event no title", "add_event", `{"date":"2024-03-05","start_time":"15:00"}`, "title"},
		{"add_event no date", "add_event", `{"title":"회의","start_time":"15:00"}`, "date"},
		{"add_event no start", "add_event", `{"title":"회의","date":"2024-03-05"}`, "start_time"},
		{"range no date_to", "add_events_by_range", `{"title":"운동","date_from":"2024-03-01","start_time":"07:00"}`, "date_to"},
		{"multiday no date_from", "add_multiday_event", `{"title":"여행","date_to":"2024-03-10"}`, "date_from"},
		{"delete no date", "delete_event", `{"title":"회의"}`, "date"},
		{"delete range no date_from", "delete_events_by_range", `{"date_to":"2024-03-31"}`, "date_from"},
		{"edit no date", "edit_event", `{"title":"회의","changes":{"start_time":"16:00"}}`, "date"},
		{"edit empty changes", "edit_event", `{"title":"회의","date":"2024-03-05","changes":{}}`, "changes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.op, tt.raw)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error %q does not name field %s", err, tt.wantField)
			}
		})
	}
}

func TestParseArgsEditEventChanges(t *testing.T) {
	raw := `{"title":"회의","date":"2024-03-05","original_time":"10:00","changes":{"date":"2024-03-07","start_time":"14:00"}}`
	got, err := parseArgs("edit_event", raw)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	a := got.(EditEventArgs)
	if a.Changes.Date != "2024-03-07" || a.Changes.StartTime != "14:00" {
		t.Errorf("changes = %+v", a.Changes)
	}
	if a.OriginalTime != "10:00" {
		t.Errorf("original_time = %q", a.OriginalTime)
	}
}

func TestParseArgsNoArguments(t *testing.T) {
	// Parameterless operations tolerate both "" and "{}".
	for _, raw := range []string{"", "{}"} {
		if _, err := parseArgs("get_today_events", raw); err != nil {
			t.Errorf("get_today_events(%q): %v", raw, err)
		}
		if _, err := parseArgs("get_week_events", raw); err != nil {
			t.Errorf("get_week_events(%q): %v", raw, err)
		}
	}
}

func TestParseArgsSearchDefaults(t *testing.T) {
	got, err := parseArgs("search_events", `{"keyword":"치과"}`)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	a := got.(SearchEventsArgs)
	if a.Keyword != "치과" || a.DateFrom != "" || a.DateTo != "" {
		t.Errorf("parsed = %+v", a)
	}
}

func TestParseArgsNavigate(t *testing.T) {
	got, err := parseArgs("navigate", `{"destination":"강남역"}`)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	a := got.(NavigateArgs)
	if a.Destination != "강남역" {
		t.Errorf("parsed = %+v", a)
	}

	got, err = parseArgs("navigate", `{"title":"치과","date":"2024-03-08"}`)
	if err != nil {
		t.Fatalf("parseArgs referenced-event form: %v", err)
	}
	a = got.(NavigateArgs)
	if a.Title != "치과" || a.Date != "2024-03-08" {
		t.Errorf("parsed = %+v", a)
	}
}

func TestParseArgsUnknownOperation(t *testing.T) {
	if _, err := parseArgs("drop_all_events", "{}"); err == nil {
		t.Fatal("expected error for unknown operation")
	}
}

func TestParseArgsMalformedJSON(t *testing.T) {
	if _, err := parseArgs("add_event", `{"title":`); err == nil {
		t.Fatal("expected decode error")
	}
}
