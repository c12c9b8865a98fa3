package gateway

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"golang.org/x/oauth2"

	"github.com/jinbless/tgcalendar/internal/auth"
	"github.com/jinbless/tgcalendar/internal/bus"
	"github.com/jinbless/tgcalendar/internal/calendar"
	"github.com/jinbless/tgcalendar/internal/channel"
	"github.com/jinbless/tgcalendar/internal/config"
	"github.com/jinbless/tgcalendar/internal/geo"
	"github.com/jinbless/tgcalendar/internal/nlp"
	"github.com/jinbless/tgcalendar/internal/report"
	"github.com/jinbless/tgcalendar/internal/web"
)

// Calendar is the slice of the calendar client the dispatcher needs
// (allows mocking in tests).
type Calendar interface {
	VerifyAccess(ctx context.Context, tok *oauth2.Token) (string, bool, string)
	AddEvent(ctx context.Context, chatID int64, title, date, startTime, endTime, description string) (bool, string)
	AddEventsByRange(ctx context.Context, chatID int64, title, dateFrom, dateTo, startTime, endTime, description string) (int, string)
	AddMultidayEvent(ctx context.Context, chatID int64, title, dateFrom, dateTo, description string) (bool, string)
	DeleteEvent(ctx context.Context, chatID int64, title, date, originalTime string) (bool, string)
	DeleteEventsByRange(ctx context.Context, chatID int64, dateFrom, dateTo, keyword string) (int, string)
	EditEvent(ctx context.Context, chatID int64, title, date, originalTime string, changes calendar.EventChanges) (bool, string)
	TodayEvents(ctx context.Context) []calendar.Event
	WeekEvents(ctx context.Context) []calendar.Event
	SearchEvents(ctx context.Context, chatID int64, keyword, dateFrom, dateTo string) []calendar.Event
}

// Extractor is the intent-extraction surface the dispatcher needs.
type Extractor interface {
	Process(ctx context.Context, chatID int64, text string) nlp.Result
	RecordToolResult(chatID int64, toolCallID, content string)
	Followup(ctx context.Context, chatID int64, instruction string) (string, error)
	FilterIndices(ctx context.Context, chatID int64, keyword, listing string, n int) []int
}

// Locator resolves place names to coordinates.
type Locator interface {
	Geocode(ctx context.Context, query string) (*geo.Place, bool)
}

// Options for creating a Gateway (test injection points).
type Options struct {
	Calendar   Calendar
	Extractor  Extractor
	Locator    Locator
	BotFactory channel.BotFactory
	SignalChan chan os.Signal
}

type Gateway struct {
	cfg       *config.Config
	bus       *bus.MessageBus
	store     *auth.Store
	cal       Calendar
	extractor Extractor
	locator   Locator
	events    *nlp.ContextStore
	nav       *navigationStore
	tg        *channel.TelegramChannel
	web       *web.Server
	report    *report.Service

	sem        chan struct{}
	signalChan chan os.Signal
}

// New creates a Gateway with default options
func New(cfg *config.Config) (*Gateway, error) {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions creates a Gateway with custom options for testing
func NewWithOptions(cfg *config.Config, opts Options) (*Gateway, error) {
	store, err := auth.NewStore(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI, cfg.TokensDir())
	if err != nil {
		return nil, fmt.Errorf("create credential store: %w", err)
	}

	g := &Gateway{
		cfg:        cfg,
		bus:        bus.NewMessageBus(config.DefaultBufSize),
		store:      store,
		events:     nlp.NewContextStore(),
		nav:        newNavigationStore(),
		sem:        make(chan struct{}, cfg.MaxWorkers),
		signalChan: opts.SignalChan,
	}

	g.cal = opts.Calendar
	if g.cal == nil {
		g.cal = calendar.NewClient(store, cfg.SharedCalendarID, cfg.Timezone)
	}

	g.extractor = opts.Extractor
	if g.extractor == nil {
		g.extractor = nlp.NewExtractor(cfg.OpenAIKey, cfg.OpenAIModel, nlp.NewHistory(), g.events, cfg.Timezone)
	}

	g.locator = opts.Locator
	if g.locator == nil {
		g.locator = geo.NewGeocoder(cfg.MapsAPIKey)
	}

	factory := opts.BotFactory
	var tg *channel.TelegramChannel
	if factory == nil {
		tg, err = channel.NewTelegramChannel(cfg.TelegramToken, g.bus)
	} else {
		tg, err = channel.NewTelegramChannelWithFactory(cfg.TelegramToken, g.bus, factory)
	}
	if err != nil {
		return nil, fmt.Errorf("create telegram channel: %w", err)
	}
	g.tg = tg
	g.bus.SubscribeOutbound(tg.Name(), func(msg bus.OutboundMessage) {
		if err := tg.Send(msg); err != nil {
			log.Printf("[gateway] send to chat %d failed: %v", msg.ChatID, err)
		}
	})

	g.web = web.NewServer(cfg.OAuthServerPort, g, g.bus)
	g.report = report.NewService(cfg.DailyReportTime, cfg.Timezone, g.cal, store, g.bus)

	return g, nil
}

// Authenticate exchanges an authorization code for a chat's credential,
// verifies calendar access and persists the token. Shared by the /auth
// command and the OAuth callback.
func (g *Gateway) Authenticate(ctx context.Context, chatID int64, code string) (bool, string) {
	tok, err := g.store.Exchange(ctx, code)
	if err != nil {
		log.Printf("[gateway] auth code exchange for chat %d failed: %v", chatID, err)
		return false, "인증 코드가 유효하지 않습니다. 다시 시도해주세요."
	}

	name, ok, msg := g.cal.VerifyAccess(ctx, tok)
	if !ok {
		return false, msg
	}

	if err := g.store.Save(chatID, tok); err != nil {
		log.Printf("[gateway] persist token for chat %d failed: %v", chatID, err)
		return false, "인증 정보를 저장하지 못했습니다."
	}
	return true, fmt.Sprintf("공유 캘린더 '%s'에 연결되었습니다.", name)
}

func (g *Gateway) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go g.bus.DispatchOutbound(ctx)

	if err := g.tg.Start(ctx); err != nil {
		return fmt.Errorf("start telegram channel: %w", err)
	}
	if err := g.web.Start(ctx); err != nil {
		return fmt.Errorf("start oauth callback server: %w", err)
	}
	if err := g.report.Start(); err != nil {
		return fmt.Errorf("start daily report: %w", err)
	}

	go g.processLoop(ctx)

	log.Printf("[gateway] running (calendar %s, timezone %s)", g.cfg.SharedCalendarID, g.cfg.TimezoneName)

	sigCh := g.signalChan
	if sigCh == nil {
		sigCh = make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	}
	<-sigCh

	log.Printf("[gateway] shutting down...")
	return g.Shutdown()
}

func (g *Gateway) processLoop(ctx context.Context) {
	for {
		select {
		case msg := <-g.bus.Inbound:
			g.sem <- struct{}{}
			go func(msg bus.InboundMessage) {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("[gateway] panic handling chat %d: %v\n%s", msg.ChatID, r, debug.Stack())
						g.reply(msg.ChatID, msgInternalError)
					}
					<-g.sem
				}()
				g.handleInbound(ctx, msg)
			}(msg)
		case <-ctx.Done():
			return
		}
	}
}

func (g *Gateway) handleInbound(ctx context.Context, msg bus.InboundMessage) {
	switch {
	case msg.Location != nil:
		g.handleLocation(msg.ChatID, *msg.Location)
	case msg.Command != "":
		g.handleCommand(ctx, msg)
	case msg.Text != "":
		g.handleText(ctx, msg.ChatID, msg.Text)
	}
}

func (g *Gateway) reply(chatID int64, text string) {
	g.replyWithKeyboard(chatID, text, bus.KeyboardNone)
}

func (g *Gateway) replyWithKeyboard(chatID int64, text string, kb bus.KeyboardHint) {
	g.bus.Outbound <- bus.OutboundMessage{
		Channel:  g.tg.Name(),
		ChatID:   chatID,
		Text:     text,
		Keyboard: kb,
	}
}

func (g *Gateway) Shutdown() error {
	g.report.Stop()
	if err := g.web.Stop(); err != nil {
		log.Printf("[gateway] stop oauth callback server warning: %v", err)
	}
	_ = g.tg.Stop()
	log.Printf("[gateway] shutdown complete")
	return nil
}
