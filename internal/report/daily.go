package report

import (
	"context"
	"fmt"
	"log"
	"time"

	rcron "github.com/robfig/cron/v3"

	"github.com/jinbless/tgcalendar/internal/bus"
	"github.com/jinbless/tgcalendar/internal/calendar"
	"github.com/jinbless/tgcalendar/internal/config"
)

// TodayLister is the one calendar read the digest needs.
type TodayLister interface {
	TodayEvents(ctx context.Context) []calendar.Event
}

// ChatLister enumerates the chats that receive the digest.
type ChatLister interface {
	AuthenticatedChats() []int64
}

// Service pushes a today-digest to every authenticated chat once a day at
// the configured local time. Per-chat delivery failures are logged and
// skipped, never retried.
type Service struct {
	spec  string
	loc   *time.Location
	cal   TodayLister
	chats ChatLister
	bus   *bus.MessageBus
	cron  *rcron.Cron
}

func NewService(reportTime string, loc *time.Location, cal TodayLister, chats ChatLister, b *bus.MessageBus) *Service {
	hour, minute, err := config.ParseClock(reportTime)
	if err != nil {
		// Load() validates the value; reaching here means a programming error.
		log.Printf("[report] invalid report time %q, using 09:00: %v", reportTime, err)
		hour, minute = 9, 0
	}

	return &Service{
		spec:  fmt.Sprintf("%d %d * * *", minute, hour),
		loc:   loc,
		cal:   cal,
		chats: chats,
		bus:   b,
	}
}

func (s *Service) Start() error {
	s.cron = rcron.New(rcron.WithLocation(s.loc))
	if _, err := s.cron.AddFunc(s.spec, s.Run); err != nil {
		return fmt.Errorf("schedule daily report: %w", err)
	}
	s.cron.Start()
	log.Printf("[report] daily digest scheduled (%s, %s)", s.spec, s.loc)
	return nil
}

func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Run executes one digest pass. Exposed so tests and operators can fire
// it outside the schedule.
func (s *Service) Run() {
	log.Printf("[report] running daily digest")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	chats := s.chats.AuthenticatedChats()
	if len(chats) == 0 {
		log.Printf("[report] no authenticated chats, skipping")
		return
	}

	text := calendar.FormatToday(s.cal.TodayEvents(ctx))
	for _, chatID := range chats {
		s.bus.Outbound <- bus.OutboundMessage{
			Channel: "telegram",
			ChatID:  chatID,
			Text:    text,
		}
	}
	log.Printf("[report] digest queued for %d chats", len(chats))
}
