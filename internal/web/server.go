package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jinbless/tgcalendar/internal/bus"
)

// Authenticator exchanges an OAuth authorization code for a chat's
// credential and reports a user-facing result message.
type Authenticator interface {
	Authenticate(ctx context.Context, chatID int64, code string) (bool, string)
}

const successHTML = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>인증 완료</title>
<style>
body{display:flex;justify-content:center;align-items:center;height:100vh;margin:0;
font-family:-apple-system,sans-serif;background:#f0f2f5}
.card{text-align:center;background:#fff;padding:40px 60px;border-radius:16px;
box-shadow:0 2px 12px rgba(0,0,0,.1)}
h1{font-size:48px;margin:0}
p{color:#333;font-size:18px;margin-top:16px}
</style></head>
<body><div class="card"><h1>&#x2705;</h1>
<p>인증이 완료되었습니다!<br>텔레그램 앱으로 돌아가세요.</p></div></body></html>`

const errorHTMLFormat = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>인증 실패</title>
<style>
body{display:flex;justify-content:center;align-items:center;height:100vh;margin:0;
font-family:-apple-system,sans-serif;background:#f0f2f5}
.card{text-align:center;background:#fff;padding:40px 60px;border-radius:16px;
box-shadow:0 2px 12px rgba(0,0,0,.1)}
h1{font-size:48px;margin:0}
p{color:#c00;font-size:18px;margin-top:16px}
</style></head>
<body><div class="card"><h1>&#x274C;</h1>
<p>%s</p></div></body></html>`

// Server is the OAuth redirect endpoint. Google sends the user's browser
// to GET /oauth/callback with the authorization code and the chat ID in
// the state parameter; the exchange result goes back to the chat through
// the bus and the browser gets a static confirmation page.
type Server struct {
	auth Authenticator
	bus  *bus.MessageBus
	srv  *http.Server
}

func NewServer(port int, auth Authenticator, b *bus.MessageBus) *Server {
	s := &Server{auth: auth, bus: b}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/oauth/callback", s.handleCallback)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Start(ctx context.Context) error {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[web] callback server error: %v", err)
		}
	}()
	log.Printf("[web] oauth callback server listening on %s", s.srv.Addr)
	return nil
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if code == "" || state == "" {
		writeErrorPage(w, "인증 코드 또는 상태 정보가 없습니다.<br>다시 시도해주세요.")
		return
	}

	chatID, err := strconv.ParseInt(state, 10, 64)
	if err != nil {
		writeErrorPage(w, "잘못된 인증 요청입니다.")
		return
	}

	ok, msg := s.auth.Authenticate(r.Context(), chatID, code)

	s.bus.Outbound <- bus.OutboundMessage{
		Channel: "telegram",
		ChatID:  chatID,
		Text:    authResultText(ok, msg),
	}

	if ok {
		writeHTML(w, successHTML)
		return
	}
	writeErrorPage(w, "인증에 실패했습니다.<br>"+msg)
}

func authResultText(ok bool, msg string) string {
	if ok {
		return fmt.Sprintf(
			"✅ 인증 성공!\n%s\n\n이제 자연어로 일정을 관리할 수 있습니다.\n예: \"내일 오후 3시에 팀 회의\"", msg)
	}
	return "❌ 인증 실패\n" + msg
}

func writeErrorPage(w http.ResponseWriter, msg string) {
	writeHTML(w, fmt.Sprintf(errorHTMLFormat, msg))
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(body))
}
