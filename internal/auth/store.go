package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
)

// Store keeps one OAuth token file per chat under tokensDir. A token that
// cannot be refreshed is deleted so the chat silently downgrades to
// unauthenticated and gets re-prompted on next contact.
type Store struct {
	oauth     *oauth2.Config
	tokensDir string
}

func NewStore(clientID, clientSecret, redirectURI, tokensDir string) (*Store, error) {
	if err := os.MkdirAll(tokensDir, 0700); err != nil {
		return nil, fmt.Errorf("create tokens dir: %w", err)
	}
	return &Store{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{calendar.CalendarScope},
			Endpoint:     google.Endpoint,
		},
		tokensDir: tokensDir,
	}, nil
}

func (s *Store) tokenPath(chatID int64) string {
	return filepath.Join(s.tokensDir, strconv.FormatInt(chatID, 10)+".json")
}

// AuthURL returns the consent URL for a chat. The chat ID rides along as
// the OAuth state so the callback can route the code back to the right chat.
func (s *Store) AuthURL(chatID int64) string {
	return s.oauth.AuthCodeURL(
		strconv.FormatInt(chatID, 10),
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades an authorization code for a token.
func (s *Store) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange auth code: %w", err)
	}
	return tok, nil
}

// Load returns a valid token for the chat, refreshing it first if expired.
// A failed or impossible refresh deletes the stored token and reports
// absence; the failure is not escalated further.
func (s *Store) Load(ctx context.Context, chatID int64) (*oauth2.Token, bool) {
	data, err := os.ReadFile(s.tokenPath(chatID))
	if err != nil {
		return nil, false
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		log.Printf("[auth] corrupt token file for chat %d, deleting: %v", chatID, err)
		_ = os.Remove(s.tokenPath(chatID))
		return nil, false
	}

	if tok.Valid() {
		return &tok, true
	}

	if tok.RefreshToken == "" {
		log.Printf("[auth] no refresh token for chat %d, deleting", chatID)
		_ = os.Remove(s.tokenPath(chatID))
		return nil, false
	}

	refreshed, err := s.oauth.TokenSource(ctx, &tok).Token()
	if err != nil {
		log.Printf("[auth] token refresh failed for chat %d, deleting: %v", chatID, err)
		_ = os.Remove(s.tokenPath(chatID))
		return nil, false
	}

	if err := s.Save(chatID, refreshed); err != nil {
		log.Printf("[auth] persist refreshed token for chat %d: %v", chatID, err)
	}
	return refreshed, true
}

func (s *Store) Save(chatID int64, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(s.tokenPath(chatID), data, 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (s *Store) Delete(chatID int64) {
	_ = os.Remove(s.tokenPath(chatID))
}

// IsAuthenticated reports whether a token file exists for the chat. It does
// not validate the token; Load does that lazily.
func (s *Store) IsAuthenticated(chatID int64) bool {
	_, err := os.Stat(s.tokenPath(chatID))
	return err == nil
}

// AuthenticatedChats lists every chat with a stored token, in no particular
// order. Files whose names are not numeric are ignored.
func (s *Store) AuthenticatedChats() []int64 {
	entries, err := os.ReadDir(s.tokensDir)
	if err != nil {
		return nil
	}

	var chats []int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".json" {
			continue
		}
		id, err := strconv.ParseInt(name[:len(name)-len(".json")], 10, 64)
		if err != nil {
			continue
		}
		chats = append(chats, id)
	}
	return chats
}

// AnyValidToken returns the first chat token that loads successfully. The
// daily report and today-listing reads go through the shared calendar, so
// any authenticated user's credential serves.
func (s *Store) AnyValidToken(ctx context.Context) (*oauth2.Token, bool) {
	for _, chatID := range s.AuthenticatedChats() {
		if tok, ok := s.Load(ctx, chatID); ok {
			return tok, true
		}
	}
	return nil, false
}

// Client returns an HTTP client authorized with the given token.
func (s *Store) Client(ctx context.Context, tok *oauth2.Token) *http.Client {
	return s.oauth.Client(ctx, tok)
}
