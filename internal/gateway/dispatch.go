package gateway

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jinbless/tgcalendar/internal/bus"
	"github.com/jinbless/tgcalendar/internal/calendar"
	"github.com/jinbless/tgcalendar/internal/geo"
	"github.com/jinbless/tgcalendar/internal/nlp"
)

const (
	msgInternalError = "처리 중 오류가 발생했습니다."
	msgAuthRequired  = "먼저 /start 로 인증을 완료해주세요."
	msgUnsupported   = "지원하지 않는 기능입니다."

	msgStartAuthenticated = "이미 인증되었습니다!\n" +
		"자연어로 일정을 관리하세요.\n\n" +
		"💡 사용 예시:\n" +
		"• \"내일 오후 3시에 팀 회의\"\n" +
		"• \"오늘 일정 뭐야?\"\n" +
		"• \"이번 주 일정 알려줘\"\n" +
		"• \"내일 팀 회의 삭제해줘\"\n" +
		"• \"팀 회의 시간 4시로 변경해줘\"\n" +
		"• \"2월 일정 다 지워줘\""

	msgAuthUsage = "사용법: /auth <인증코드>\n" +
		"인증코드는 Google 인증 후 주소창에서 code= 뒤의 값입니다."

	msgShareLocationPrompt = "아래 버튼을 눌러 현재 위치를 공유해주세요."
	msgNoPendingNavigation = "길찾기 요청이 없습니다. 먼저 목적지를 알려주세요."
)

func (g *Gateway) handleCommand(ctx context.Context, msg bus.InboundMessage) {
	switch msg.Command {
	case "start":
		g.handleStart(msg.ChatID)
	case "auth":
		g.handleAuth(ctx, msg.ChatID, msg.Args)
	case "today":
		g.handleToday(ctx, msg.ChatID)
	default:
		log.Printf("[gateway] unknown command /%s from chat %d", msg.Command, msg.ChatID)
	}
}

func (g *Gateway) handleStart(chatID int64) {
	if g.store.IsAuthenticated(chatID) {
		g.reply(chatID, msgStartAuthenticated)
		return
	}

	g.reply(chatID, fmt.Sprintf(
		"안녕하세요! 📅 캘린더 봇입니다.\n\n"+
			"Google 계정을 연동하려면 아래 링크를 열어주세요:\n\n%s\n\n"+
			"권한을 허용하면 자동으로 인증이 완료됩니다!",
		g.store.AuthURL(chatID)))
}

func (g *Gateway) handleAuth(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		g.reply(chatID, msgAuthUsage)
		return
	}

	g.reply(chatID, "🔄 인증 처리 중...")

	ok, msg := g.Authenticate(ctx, chatID, args[0])
	if !ok {
		g.reply(chatID, "❌ 인증 실패\n"+msg)
		return
	}
	g.reply(chatID, fmt.Sprintf(
		"✅ 인증 성공!\n%s\n\n이제 자연어로 일정을 관리할 수 있습니다.\n예: \"내일 오후 3시에 팀 회의\"", msg))
}

func (g *Gateway) handleToday(ctx context.Context, chatID int64) {
	if !g.store.IsAuthenticated(chatID) {
		g.reply(chatID, msgAuthRequired)
		return
	}

	events := g.cal.TodayEvents(ctx)
	g.events.Set(chatID, events)
	g.reply(chatID, calendar.FormatToday(events))
}

func (g *Gateway) handleText(ctx context.Context, chatID int64, text string) {
	if !g.store.IsAuthenticated(chatID) {
		g.reply(chatID, msgAuthRequired)
		return
	}

	result := g.extractor.Process(ctx, chatID, text)
	switch result.Kind {
	case nlp.KindText, nlp.KindError:
		g.reply(chatID, result.Text)
	case nlp.KindFunctionCall:
		g.dispatchCall(ctx, chatID, result.Call)
	}
}

func (g *Gateway) dispatchCall(ctx context.Context, chatID int64, call *nlp.FunctionCall) {
	if call.Args == nil {
		g.extractor.RecordToolResult(chatID, call.ToolCallID, msgUnsupported)
		g.reply(chatID, msgUnsupported)
		return
	}

	switch args := call.Args.(type) {
	case nlp.AddEventArgs:
		g.execAddEvent(ctx, chatID, call, args)
	case nlp.AddEventsByRangeArgs:
		g.execAddEventsByRange(ctx, chatID, call, args)
	case nlp.AddMultidayEventArgs:
		g.execAddMultidayEvent(ctx, chatID, call, args)
	case nlp.DeleteEventArgs:
		g.execDeleteEvent(ctx, chatID, call, args)
	case nlp.DeleteEventsByRangeArgs:
		g.execDeleteEventsByRange(ctx, chatID, call, args)
	case nlp.EditEventArgs:
		g.execEditEvent(ctx, chatID, call, args)
	case nlp.TodayEventsArgs:
		g.execQuery(ctx, chatID, call, func() ([]calendar.Event, string) {
			events := g.cal.TodayEvents(ctx)
			return events, calendar.FormatToday(events)
		})
	case nlp.WeekEventsArgs:
		g.execQuery(ctx, chatID, call, func() ([]calendar.Event, string) {
			events := g.cal.WeekEvents(ctx)
			return events, calendar.FormatWeek(events)
		})
	case nlp.SearchEventsArgs:
		g.execSearch(ctx, chatID, call, args)
	case nlp.NavigateArgs:
		g.execNavigate(ctx, chatID, call, args)
	default:
		g.extractor.RecordToolResult(chatID, call.ToolCallID, msgUnsupported)
		g.reply(chatID, msgUnsupported)
	}
}

// finishMutation records the result, replies, and runs the month-summary
// secondary read so the user sees the calendar state after the change.
func (g *Gateway) finishMutation(ctx context.Context, chatID int64, call *nlp.FunctionCall, reply, monthDate string) {
	g.extractor.RecordToolResult(chatID, call.ToolCallID, reply)
	g.reply(chatID, reply)

	first, last, ok := calendar.MonthBounds(monthDate)
	if !ok {
		return
	}
	events := g.cal.SearchEvents(ctx, chatID, "", first, last)
	g.events.Set(chatID, events)
	g.reply(chatID, calendar.FormatMonthSummary(first, events))
}

func (g *Gateway) failOperation(chatID int64, call *nlp.FunctionCall, reply string) {
	g.extractor.RecordToolResult(chatID, call.ToolCallID, reply)
	g.reply(chatID, reply)
}

func (g *Gateway) execAddEvent(ctx context.Context, chatID int64, call *nlp.FunctionCall, args nlp.AddEventArgs) {
	ok, result := g.cal.AddEvent(ctx, chatID, args.Title, args.Date, args.StartTime, args.EndTime, args.Description)
	if !ok {
		g.failOperation(chatID, call, "❌ 일정 추가 실패\n"+result)
		return
	}

	timeStr := args.StartTime
	if args.EndTime != "" {
		timeStr += " - " + args.EndTime
	}
	reply := fmt.Sprintf("✅ 일정이 추가되었습니다!\n\n📅 %s\n🕐 %s\n📝 %s", args.Date, timeStr, args.Title)
	if args.Description != "" {
		reply += "\n💬 " + args.Description
	}
	g.finishMutation(ctx, chatID, call, reply, args.Date)
}

func (g *Gateway) execAddEventsByRange(ctx context.Context, chatID int64, call *nlp.FunctionCall, args nlp.AddEventsByRangeArgs) {
	count, errMsg := g.cal.AddEventsByRange(ctx, chatID, args.Title, args.DateFrom, args.DateTo, args.StartTime, args.EndTime, args.Description)
	if count == 0 {
		g.failOperation(chatID, call, "❌ 일정 추가 실패\n"+errMsg)
		return
	}

	timeStr := args.StartTime
	if args.EndTime != "" {
		timeStr += " - " + args.EndTime
	}
	reply := fmt.Sprintf("✅ %d개 일정이 추가되었습니다!\n\n📅 %s ~ %s\n🕐 %s\n📝 %s",
		count, args.DateFrom, args.DateTo, timeStr, args.Title)
	if args.Description != "" {
		reply += "\n💬 " + args.Description
	}
	g.finishMutation(ctx, chatID, call, reply, args.DateFrom)
}

func (g *Gateway) execAddMultidayEvent(ctx context.Context, chatID int64, call *nlp.FunctionCall, args nlp.AddMultidayEventArgs) {
	ok, result := g.cal.AddMultidayEvent(ctx, chatID, args.Title, args.DateFrom, args.DateTo, args.Description)
	if !ok {
		g.failOperation(chatID, call, "❌ 일정 추가 실패\n"+result)
		return
	}

	reply := fmt.Sprintf("✅ 일정이 추가되었습니다!\n\n📅 %s ~ %s\n📝 %s", args.DateFrom, args.DateTo, args.Title)
	if args.Description != "" {
		reply += "\n💬 " + args.Description
	}
	g.finishMutation(ctx, chatID, call, reply, args.DateFrom)
}

func (g *Gateway) execDeleteEvent(ctx context.Context, chatID int64, call *nlp.FunctionCall, args nlp.DeleteEventArgs) {
	ok, result := g.cal.DeleteEvent(ctx, chatID, args.Title, args.Date, args.OriginalTime)
	if !ok {
		g.failOperation(chatID, call, "❌ 일정 삭제 실패\n"+result)
		return
	}

	reply := fmt.Sprintf("🗑️ 일정이 삭제되었습니다!\n\n📅 %s\n📝 %s", args.Date, result)
	g.finishMutation(ctx, chatID, call, reply, args.Date)
}

func (g *Gateway) execDeleteEventsByRange(ctx context.Context, chatID int64, call *nlp.FunctionCall, args nlp.DeleteEventsByRangeArgs) {
	count, errMsg := g.cal.DeleteEventsByRange(ctx, chatID, args.DateFrom, args.DateTo, args.Keyword)
	if count == 0 {
		g.failOperation(chatID, call, "❌ 일정 삭제 실패\n"+errMsg)
		return
	}

	reply := fmt.Sprintf("🗑️ %d개 일정이 삭제되었습니다!\n\n📅 %s ~ %s", count, args.DateFrom, args.DateTo)
	if args.Keyword != "" {
		reply += fmt.Sprintf("\n🔍 키워드: %q", args.Keyword)
	}
	g.finishMutation(ctx, chatID, call, reply, args.DateFrom)
}

func (g *Gateway) execEditEvent(ctx context.Context, chatID int64, call *nlp.FunctionCall, args nlp.EditEventArgs) {
	ok, result := g.cal.EditEvent(ctx, chatID, args.Title, args.Date, args.OriginalTime, args.Changes)
	if !ok {
		g.failOperation(chatID, call, "❌ 일정 수정 실패\n"+result)
		return
	}

	reply := fmt.Sprintf("✏️ 일정이 수정되었습니다!\n\n📝 %s", result)
	var details []string
	if args.Changes.Title != "" {
		details = append(details, "제목 → "+args.Changes.Title)
	}
	if args.Changes.Date != "" {
		details = append(details, "날짜 → "+args.Changes.Date)
	}
	if args.Changes.StartTime != "" {
		details = append(details, "시작 → "+args.Changes.StartTime)
	}
	if args.Changes.EndTime != "" {
		details = append(details, "종료 → "+args.Changes.EndTime)
	}
	if args.Changes.Description != "" {
		details = append(details, "설명 → "+args.Changes.Description)
	}
	if len(details) > 0 {
		reply += "\n\n변경사항:"
		for _, d := range details {
			reply += "\n• " + d
		}
	}

	// A moved event shows the month it landed in.
	monthDate := args.Changes.Date
	if monthDate == "" {
		monthDate = args.Date
	}
	g.finishMutation(ctx, chatID, call, reply, monthDate)
}

// execQuery runs a listing operation, refreshes the event context, and
// lets the model narrate the results. Narration failure falls back to the
// raw listing.
func (g *Gateway) execQuery(ctx context.Context, chatID int64, call *nlp.FunctionCall, list func() ([]calendar.Event, string)) {
	events, listing := list()
	g.events.Set(chatID, events)
	g.extractor.RecordToolResult(chatID, call.ToolCallID, listing)

	narration, err := g.extractor.Followup(ctx, chatID, "")
	if err != nil {
		log.Printf("[gateway] narration for chat %d failed, sending raw listing: %v", chatID, err)
		g.reply(chatID, listing)
		return
	}
	g.reply(chatID, narration)
}

// execSearch is the keyword search path: the remote search is lexical, so
// a second model pass narrows the candidates to semantically relevant ones
// before the reply is composed.
func (g *Gateway) execSearch(ctx context.Context, chatID int64, call *nlp.FunctionCall, args nlp.SearchEventsArgs) {
	events := g.cal.SearchEvents(ctx, chatID, args.Keyword, args.DateFrom, args.DateTo)

	if args.Keyword != "" && len(events) > 0 {
		candidates := calendar.FormatSearch(events, args.Keyword)
		indices := g.extractor.FilterIndices(ctx, chatID, args.Keyword, candidates, len(events))
		filtered := make([]calendar.Event, 0, len(indices))
		for _, idx := range indices {
			filtered = append(filtered, events[idx-1])
		}
		events = filtered
	}

	listing := calendar.FormatSearch(events, args.Keyword)
	g.events.Set(chatID, events)
	g.extractor.RecordToolResult(chatID, call.ToolCallID, listing)

	narration, err := g.extractor.Followup(ctx, chatID, "")
	if err != nil {
		log.Printf("[gateway] narration for chat %d failed, sending raw listing: %v", chatID, err)
		g.reply(chatID, listing)
		return
	}
	g.reply(chatID, narration)
}

func (g *Gateway) execNavigate(ctx context.Context, chatID int64, call *nlp.FunctionCall, args nlp.NavigateArgs) {
	reply, kb := g.resolveNavigation(ctx, chatID, args)
	g.extractor.RecordToolResult(chatID, call.ToolCallID, reply)
	g.replyWithKeyboard(chatID, reply, kb)
}

// resolveNavigation geocodes the destination (directly named, or taken
// from a referenced event's location) and stashes it as the chat's
// pending navigation.
func (g *Gateway) resolveNavigation(ctx context.Context, chatID int64, args nlp.NavigateArgs) (string, bus.KeyboardHint) {
	if args.Destination != "" {
		place, ok := g.locator.Geocode(ctx, args.Destination)
		if !ok {
			return fmt.Sprintf("'%s'의 위치를 찾을 수 없습니다. 더 구체적인 주소나 장소명을 알려주세요.", args.Destination), bus.KeyboardNone
		}

		g.nav.Set(chatID, pendingNavigation{
			Destination: args.Destination,
			Lat:         place.Lat,
			Lng:         place.Lng,
			Address:     place.Address,
		})
		return fmt.Sprintf("📍 '%s' 위치를 찾았습니다!\n(%s)\n\n%s",
			args.Destination, place.Address, msgShareLocationPrompt), bus.KeyboardShareLocation
	}

	summary, location, found := g.findEventLocation(ctx, chatID, args.Title, args.Date)
	if !found {
		if args.Title != "" {
			return fmt.Sprintf("'%s' 일정을 찾을 수 없거나 장소 정보가 없습니다.", args.Title), bus.KeyboardNone
		}
		return "장소 정보가 있는 다음 일정을 찾을 수 없습니다.", bus.KeyboardNone
	}

	place, ok := g.locator.Geocode(ctx, location)
	if !ok {
		return fmt.Sprintf("'%s'의 위치를 찾을 수 없습니다.", location), bus.KeyboardNone
	}

	g.nav.Set(chatID, pendingNavigation{
		Destination: location,
		Lat:         place.Lat,
		Lng:         place.Lng,
		Address:     place.Address,
	})
	return fmt.Sprintf("📅 %s\n📍 '%s' 위치를 찾았습니다!\n(%s)\n\n%s",
		summary, location, place.Address, msgShareLocationPrompt), bus.KeyboardShareLocation
}

// findEventLocation resolves a referenced event's place: first from the
// last listing shown to the chat, then from today's events. The place may
// live in the location field or on a "장소:"/"location:" description line.
func (g *Gateway) findEventLocation(ctx context.Context, chatID int64, title, date string) (summary, location string, found bool) {
	if e, ok := g.events.Find(chatID, title, date); ok {
		if loc := placeOf(e.Location, e.Description); loc != "" {
			return fmt.Sprintf("%s (%s %s)", e.Title, e.Date, e.Time), loc, true
		}
	}

	now := time.Now().In(g.cfg.Timezone)
	for _, e := range g.cal.TodayEvents(ctx) {
		loc := placeOf(e.Location, e.Description)
		if loc == "" {
			continue
		}
		if title != "" {
			if !strings.Contains(strings.ToLower(e.Title), strings.ToLower(title)) {
				continue
			}
		} else if !e.AllDay && e.Start.Before(now) {
			// Without a title, pick the nearest upcoming event.
			continue
		}
		return fmt.Sprintf("%s (%s)", e.Title, calendar.TimeLabel(e)), loc, true
	}
	return "", "", false
}

// placeOf prefers the explicit location field, then scans description
// lines for a labelled place.
func placeOf(location, description string) string {
	if location != "" {
		return location
	}
	for _, line := range strings.Split(description, "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		for _, prefix := range []string{"location:", "장소:"} {
			if strings.HasPrefix(lower, prefix) {
				return strings.TrimSpace(strings.TrimSpace(line)[len(prefix):])
			}
		}
	}
	return ""
}

func (g *Gateway) handleLocation(chatID int64, loc bus.Location) {
	nav, ok := g.nav.Take(chatID)
	if !ok {
		g.replyWithKeyboard(chatID, msgNoPendingNavigation, bus.KeyboardRemove)
		return
	}

	url := geo.DirectionsURL(loc.Lat, loc.Lng, nav.Lat, nav.Lng)
	g.replyWithKeyboard(chatID, fmt.Sprintf(
		"🗺️ %s 길찾기\n\n📍 출발: 현재 위치\n📍 도착: %s\n\n👉 %s",
		nav.Destination, nav.Address, url), bus.KeyboardRemove)
}
