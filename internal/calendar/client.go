package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jinbless/tgcalendar/internal/auth"
)

// User-facing failure messages. The bot speaks Korean; remote failures are
// translated at this boundary and never propagate as raw errors.
const (
	MsgAuthExpired = "인증이 만료되었습니다. /start로 다시 인증해주세요."
	MsgNoAccess    = "캘린더 접근 권한이 없습니다."
	MsgNotFound    = "해당 날짜에 일치하는 일정을 찾을 수 없습니다."
	MsgEmptyRange  = "해당 기간에 일정이 없습니다."
	MsgUnknown     = "알 수 없는 오류가 발생했습니다."

	msgNoAccessRemediation = "공유 캘린더에 접근할 수 없습니다.\n\n" +
		"캘린더 관리자에게 다음을 요청하세요:\n" +
		"1. 공유 캘린더 설정 열기\n" +
		"2. \"특정 사용자와 공유\" 섹션\n" +
		"3. 귀하의 이메일 추가\n" +
		"4. 권한: \"일정 변경\" 이상 부여"
)

// EventChanges carries the fields an edit request wants changed. Empty
// fields are left untouched.
type EventChanges struct {
	Title       string `json:"title,omitempty"`
	Date        string `json:"date,omitempty"`       // YYYY-MM-DD
	StartTime   string `json:"start_time,omitempty"` // HH:MM
	EndTime     string `json:"end_time,omitempty"`   // HH:MM
	Description string `json:"description,omitempty"`
}

func (c EventChanges) IsEmpty() bool {
	return c == EventChanges{}
}

// Client wraps the Google Calendar API for the single shared calendar. All
// mutating and per-chat query operations authenticate with the requesting
// chat's credential; global reads (today/week) use any valid credential
// since every chat sees the same calendar.
type Client struct {
	store      *auth.Store
	calendarID string
	loc        *time.Location
	endpoint   string // test override for the API base URL
}

func NewClient(store *auth.Store, calendarID string, loc *time.Location) *Client {
	return &Client{store: store, calendarID: calendarID, loc: loc}
}

func (c *Client) service(ctx context.Context, tok *oauth2.Token) (*gcal.Service, error) {
	opts := []option.ClientOption{option.WithHTTPClient(c.store.Client(ctx, tok))}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	return gcal.NewService(ctx, opts...)
}

// VerifyAccess checks that the token can read the shared calendar and
// returns its display name. A 403/404 yields the remediation message for
// the user to forward to the calendar admin.
func (c *Client) VerifyAccess(ctx context.Context, tok *oauth2.Token) (string, bool, string) {
	svc, err := c.service(ctx, tok)
	if err != nil {
		log.Printf("[calendar] create service: %v", err)
		return "", false, MsgUnknown
	}

	cal, err := svc.Calendars.Get(c.calendarID).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && (gerr.Code == 403 || gerr.Code == 404) {
			return "", false, msgNoAccessRemediation
		}
		return "", false, apiErrorMessage(err)
	}

	name := cal.Summary
	if name == "" {
		name = c.calendarID
	}
	return name, true, ""
}

// AddEvent inserts a timed event. A missing end time defaults to one hour
// after the start. On success the returned message is the event's HTML link.
func (c *Client) AddEvent(ctx context.Context, chatID int64, title, date, startTime, endTime, description string) (bool, string) {
	tok, ok := c.store.Load(ctx, chatID)
	if !ok {
		return false, MsgAuthExpired
	}

	start, err := c.parseDateTime(date, startTime)
	if err != nil {
		return false, MsgUnknown
	}
	end := start.Add(time.Hour)
	if endTime != "" {
		if end, err = c.parseDateTime(date, endTime); err != nil {
			return false, MsgUnknown
		}
	}

	body := &gcal.Event{
		Summary:     title,
		Description: description,
		Start:       c.eventDateTime(start),
		End:         c.eventDateTime(end),
	}

	svc, err := c.service(ctx, tok)
	if err != nil {
		log.Printf("[calendar] create service: %v", err)
		return false, MsgUnknown
	}
	created, err := svc.Events.Insert(c.calendarID, body).Context(ctx).Do()
	if err != nil {
		log.Printf("[calendar] insert event: %v", err)
		return false, apiErrorMessage(err)
	}
	return true, created.HtmlLink
}

// AddEventsByRange inserts one timed event per day over an inclusive date
// range. Returns the number inserted and a failure message when zero.
func (c *Client) AddEventsByRange(ctx context.Context, chatID int64, title, dateFrom, dateTo, startTime, endTime, description string) (int, string) {
	tok, ok := c.store.Load(ctx, chatID)
	if !ok {
		return 0, MsgAuthExpired
	}

	from, err := clampDate(dateFrom, c.loc)
	if err != nil {
		return 0, MsgUnknown
	}
	to, err := clampDate(dateTo, c.loc)
	if err != nil {
		return 0, MsgUnknown
	}
	if to.Before(from) {
		from, to = to, from
	}

	svc, err := c.service(ctx, tok)
	if err != nil {
		log.Printf("[calendar] create service: %v", err)
		return 0, MsgUnknown
	}

	count := 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		date := day.Format("2006-01-02")
		start, err := c.parseDateTime(date, startTime)
		if err != nil {
			return count, MsgUnknown
		}
		end := start.Add(time.Hour)
		if endTime != "" {
			if end, err = c.parseDateTime(date, endTime); err != nil {
				return count, MsgUnknown
			}
		}

		body := &gcal.Event{
			Summary:     title,
			Description: description,
			Start:       c.eventDateTime(start),
			End:         c.eventDateTime(end),
		}
		if _, err := svc.Events.Insert(c.calendarID, body).Context(ctx).Do(); err != nil {
			log.Printf("[calendar] insert ranged event %s: %v", date, err)
			return count, apiErrorMessage(err)
		}
		count++
	}
	return count, ""
}

// AddMultidayEvent inserts a single all-day event spanning the inclusive
// date range. The remote API treats the end date as exclusive, so one day
// is added.
func (c *Client) AddMultidayEvent(ctx context.Context, chatID int64, title, dateFrom, dateTo, description string) (bool, string) {
	tok, ok := c.store.Load(ctx, chatID)
	if !ok {
		return false, MsgAuthExpired
	}

	from, err := clampDate(dateFrom, c.loc)
	if err != nil {
		return false, MsgUnknown
	}
	to, err := clampDate(dateTo, c.loc)
	if err != nil {
		return false, MsgUnknown
	}
	if to.Before(from) {
		from, to = to, from
	}

	body := &gcal.Event{
		Summary:     title,
		Description: description,
		Start:       &gcal.EventDateTime{Date: from.Format("2006-01-02")},
		End:         &gcal.EventDateTime{Date: to.AddDate(0, 0, 1).Format("2006-01-02")},
	}

	svc, err := c.service(ctx, tok)
	if err != nil {
		log.Printf("[calendar] create service: %v", err)
		return false, MsgUnknown
	}
	created, err := svc.Events.Insert(c.calendarID, body).Context(ctx).Do()
	if err != nil {
		log.Printf("[calendar] insert multiday event: %v", err)
		return false, apiErrorMessage(err)
	}
	return true, created.HtmlLink
}

// DeleteEvent removes the event matched by title/time on the given date.
// On success the returned message is the deleted event's title.
func (c *Client) DeleteEvent(ctx context.Context, chatID int64, title, date, originalTime string) (bool, string) {
	tok, ok := c.store.Load(ctx, chatID)
	if !ok {
		return false, MsgAuthExpired
	}

	svc, err := c.service(ctx, tok)
	if err != nil {
		log.Printf("[calendar] create service: %v", err)
		return false, MsgUnknown
	}

	items, err := c.listDay(ctx, svc, date)
	if err != nil {
		return false, apiErrorMessage(err)
	}
	matched := matchEvent(items, title, originalTime)
	if matched == nil {
		return false, MsgNotFound
	}

	if err := svc.Events.Delete(c.calendarID, matched.Id).Context(ctx).Do(); err != nil {
		log.Printf("[calendar] delete event: %v", err)
		return false, apiErrorMessage(err)
	}

	deleted := matched.Summary
	if deleted == "" {
		deleted = title
	}
	return true, deleted
}

// DeleteEventsByRange removes every event in the inclusive date range,
// optionally narrowed by a keyword. Returns the count deleted.
func (c *Client) DeleteEventsByRange(ctx context.Context, chatID int64, dateFrom, dateTo, keyword string) (int, string) {
	tok, ok := c.store.Load(ctx, chatID)
	if !ok {
		return 0, MsgAuthExpired
	}

	from, err := clampDate(dateFrom, c.loc)
	if err != nil {
		return 0, MsgUnknown
	}
	to, err := clampDate(dateTo, c.loc)
	if err != nil {
		return 0, MsgUnknown
	}
	timeMin := from
	timeMax := endOfDay(to)

	svc, err := c.service(ctx, tok)
	if err != nil {
		log.Printf("[calendar] create service: %v", err)
		return 0, MsgUnknown
	}

	items, err := c.listRange(ctx, svc, timeMin, timeMax, keyword)
	if err != nil {
		return 0, apiErrorMessage(err)
	}
	if len(items) == 0 {
		return 0, MsgEmptyRange
	}

	deleted := 0
	for _, item := range items {
		if err := svc.Events.Delete(c.calendarID, item.Id).Context(ctx).Do(); err != nil {
			log.Printf("[calendar] delete event %s: %v", item.Id, err)
			return deleted, apiErrorMessage(err)
		}
		deleted++
	}
	return deleted, ""
}

// EditEvent updates the matched event with the requested changes. On
// success the returned message is the updated event's title.
func (c *Client) EditEvent(ctx context.Context, chatID int64, title, date, originalTime string, changes EventChanges) (bool, string) {
	tok, ok := c.store.Load(ctx, chatID)
	if !ok {
		return false, MsgAuthExpired
	}

	svc, err := c.service(ctx, tok)
	if err != nil {
		log.Printf("[calendar] create service: %v", err)
		return false, MsgUnknown
	}

	items, err := c.listDay(ctx, svc, date)
	if err != nil {
		return false, apiErrorMessage(err)
	}
	matched := matchEvent(items, title, originalTime)
	if matched == nil {
		return false, MsgNotFound
	}

	if err := c.applyChanges(matched, date, changes); err != nil {
		log.Printf("[calendar] apply changes: %v", err)
		return false, MsgUnknown
	}

	updated, err := svc.Events.Update(c.calendarID, matched.Id, matched).Context(ctx).Do()
	if err != nil {
		log.Printf("[calendar] update event: %v", err)
		return false, apiErrorMessage(err)
	}

	name := updated.Summary
	if name == "" {
		name = title
	}
	return true, name
}

// applyChanges mutates the fetched event body per the edit semantics: a new
// start without a new end recomputes end = start + 1h; a date-only change
// shifts the existing time-of-day onto the new date; an explicit end time
// always wins.
func (c *Client) applyChanges(ev *gcal.Event, date string, changes EventChanges) error {
	if changes.Title != "" {
		ev.Summary = changes.Title
	}
	if changes.Description != "" {
		ev.Description = changes.Description
	}

	newDate := changes.Date
	if newDate == "" {
		newDate = date
	}

	switch {
	case changes.StartTime != "":
		start, err := c.parseDateTime(newDate, changes.StartTime)
		if err != nil {
			return err
		}
		ev.Start = c.eventDateTime(start)
		if changes.EndTime == "" {
			ev.End = c.eventDateTime(start.Add(time.Hour))
		}
	case changes.Date != "":
		if ev.Start != nil && ev.Start.DateTime != "" {
			start, err := c.parseDateTime(newDate, eventClock(ev.Start.DateTime))
			if err != nil {
				return err
			}
			ev.Start = c.eventDateTime(start)
		}
		if ev.End != nil && ev.End.DateTime != "" {
			end, err := c.parseDateTime(newDate, eventClock(ev.End.DateTime))
			if err != nil {
				return err
			}
			ev.End = c.eventDateTime(end)
		}
	}

	if changes.EndTime != "" {
		end, err := c.parseDateTime(newDate, changes.EndTime)
		if err != nil {
			return err
		}
		ev.End = c.eventDateTime(end)
	}
	return nil
}

// TodayEvents lists the shared calendar's events for today, using any valid
// credential. Failures collapse to an empty list.
func (c *Client) TodayEvents(ctx context.Context) []Event {
	tok, ok := c.store.AnyValidToken(ctx)
	if !ok {
		log.Printf("[calendar] no valid credentials for today listing")
		return nil
	}

	now := time.Now().In(c.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)
	return c.listAsEvents(ctx, tok, start, endOfDay(start), "")
}

// WeekEvents lists Monday through Sunday of the current week.
func (c *Client) WeekEvents(ctx context.Context) []Event {
	tok, ok := c.store.AnyValidToken(ctx)
	if !ok {
		log.Printf("[calendar] no valid credentials for week listing")
		return nil
	}

	now := time.Now().In(c.loc)
	daysFromMonday := (int(now.Weekday()) + 6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc).AddDate(0, 0, -daysFromMonday)
	sunday := monday.AddDate(0, 0, 6)
	return c.listAsEvents(ctx, tok, monday, endOfDay(sunday), "")
}

// SearchEvents runs the remote lexical search: keyword plus optional date
// bounds, defaulting to a 30-day look-ahead from today. Failures collapse
// to an empty list.
func (c *Client) SearchEvents(ctx context.Context, chatID int64, keyword, dateFrom, dateTo string) []Event {
	tok, ok := c.store.Load(ctx, chatID)
	if !ok {
		return nil
	}

	now := time.Now().In(c.loc)
	timeMin := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)
	if dateFrom != "" {
		parsed, err := clampDate(dateFrom, c.loc)
		if err != nil {
			return nil
		}
		timeMin = parsed
	}

	timeMax := timeMin.AddDate(0, 0, 30)
	if dateTo != "" {
		parsed, err := clampDate(dateTo, c.loc)
		if err != nil {
			return nil
		}
		timeMax = endOfDay(parsed)
	}

	return c.listAsEvents(ctx, tok, timeMin, timeMax, keyword)
}

func (c *Client) listAsEvents(ctx context.Context, tok *oauth2.Token, timeMin, timeMax time.Time, keyword string) []Event {
	svc, err := c.service(ctx, tok)
	if err != nil {
		log.Printf("[calendar] create service: %v", err)
		return nil
	}
	items, err := c.listRange(ctx, svc, timeMin, timeMax, keyword)
	if err != nil {
		log.Printf("[calendar] list events: %v", err)
		return nil
	}
	return fromGoogleList(items, c.loc)
}

func (c *Client) listDay(ctx context.Context, svc *gcal.Service, date string) ([]*gcal.Event, error) {
	day, err := time.ParseInLocation("2006-01-02", date, c.loc)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", date, err)
	}
	return c.listRange(ctx, svc, day, endOfDay(day), "")
}

func (c *Client) listRange(ctx context.Context, svc *gcal.Service, timeMin, timeMax time.Time, keyword string) ([]*gcal.Event, error) {
	call := svc.Events.List(c.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if keyword != "" {
		call = call.Q(keyword)
	}
	result, err := call.Do()
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (c *Client) parseDateTime(date, clock string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, c.loc)
}

func (c *Client) eventDateTime(t time.Time) *gcal.EventDateTime {
	return &gcal.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: c.loc.String(),
	}
}

func endOfDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, day.Location())
}

func apiErrorMessage(err error) string {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == 403 {
			return MsgNoAccess
		}
		return fmt.Sprintf("Google API 오류: %d", gerr.Code)
	}
	return MsgUnknown
}
