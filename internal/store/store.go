// Package store – Store
//
// This file implements the Store, the only component allowed to read or
// write widget persistence. It owns the read-modify-write contract on chat
// history, the tenant namespacing of keys, and the silent-data error policy:
// corrupt or unreadable persisted values are treated as absent, logged, and
// never surfaced to the caller as failures.
//
// Operations:
//
//   - VisitorIdentity(ctx, tenantKey) -> *domain.VisitorIdentity (nil when absent)
//   - SetVisitorIdentity(ctx, tenantKey, id) -> error
//   - ChatHistory(ctx, tenantKey) -> []domain.ChatMessage (empty when absent)
//   - AppendMessage(ctx, tenantKey, text, isUser) -> domain.ChatMessage
//   - SessionID(ctx) -> string (get-or-create, NOT tenant-namespaced)
//
// The read-modify-write in AppendMessage is only safe because the widget
// runs single-threaded per instance; do not add concurrent writers to the
// same tenant's history without adding synchronization here.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-chat-widget/internal/domain"
)

const (
	// ScopeLocal tags durable rows (identity, history).
	ScopeLocal = "local"

	identityKeyPrefix = "widget_user_"
	historyKeyPrefix  = "widget_history_"
	sessionKey        = "widget_session_id"

	// DefaultHistoryLimit caps persisted history length; the oldest entries
	// are evicted first once the cap is exceeded.
	DefaultHistoryLimit = 100
)

// Store coordinates the three persistence scopes of a widget instance.
type Store struct {
	// Local is the durable scope holding identity and history.
	Local KV
	// Session is the per-process scope holding the chat session id.
	Session KV

	// HistoryLimit caps history length; values <= 0 fall back to
	// DefaultHistoryLimit.
	HistoryLimit int

	// Now is the clock used for message timestamps (UTC). Nil means
	// time.Now; tests inject a fixed clock.
	Now func() time.Time

	// Log receives diagnostics for contained failures.
	Log zerolog.Logger
}

// New constructs a Store over the given scopes with default limits.
func New(local, session KV, log zerolog.Logger) *Store {
	return &Store{
		Local:        local,
		Session:      session,
		HistoryLimit: DefaultHistoryLimit,
		Log:          log,
	}
}

// identityKey returns the tenant-namespaced identity key.
func identityKey(tenantKey string) string { return identityKeyPrefix + tenantKey }

// historyKey returns the tenant-namespaced history key.
func historyKey(tenantKey string) string { return historyKeyPrefix + tenantKey }

// VisitorIdentity loads the persisted identity for tenantKey. It returns nil
// when nothing is stored, when the stored JSON cannot be parsed, when the
// parsed value is incomplete, or when the backend fails. Corrupt data is
// absent data, never an error.
func (s *Store) VisitorIdentity(ctx context.Context, tenantKey string) *domain.VisitorIdentity {
	raw, ok, err := s.Local.Get(ctx, identityKey(tenantKey))
	if err != nil {
		s.Log.Warn().Err(err).Str("tenant", tenantKey).Msg("identity read failed")
		return nil
	}
	if !ok {
		return nil
	}
	var id domain.VisitorIdentity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		s.Log.Debug().Err(err).Str("tenant", tenantKey).Msg("discarding corrupt identity")
		return nil
	}
	if !id.Valid() {
		return nil
	}
	return &id
}

// SetVisitorIdentity serializes and overwrites the identity for tenantKey.
func (s *Store) SetVisitorIdentity(ctx context.Context, tenantKey string, id domain.VisitorIdentity) error {
	b, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := s.Local.Set(ctx, identityKey(tenantKey), string(b)); err != nil {
		return fmt.Errorf("persist identity: %w", err)
	}
	return nil
}

// ChatHistory loads the persisted conversation for tenantKey, oldest first.
// Any failure yields an empty history.
func (s *Store) ChatHistory(ctx context.Context, tenantKey string) []domain.ChatMessage {
	raw, ok, err := s.Local.Get(ctx, historyKey(tenantKey))
	if err != nil {
		s.Log.Warn().Err(err).Str("tenant", tenantKey).Msg("history read failed")
		return nil
	}
	if !ok {
		return nil
	}
	var msgs []domain.ChatMessage
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		s.Log.Debug().Err(err).Str("tenant", tenantKey).Msg("discarding corrupt history")
		return nil
	}
	return msgs
}

// AppendMessage appends a new message to the tenant's history and persists
// the result, evicting the oldest entries beyond the history limit. The
// message is returned even when persistence fails (the caller still renders
// it); the failure is logged and contained here.
func (s *Store) AppendMessage(ctx context.Context, tenantKey, text string, isUser bool) domain.ChatMessage {
	msg := domain.ChatMessage{
		Text:      text,
		IsUser:    isUser,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}

	limit := s.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	msgs := append(s.ChatHistory(ctx, tenantKey), msg)
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	b, err := json.Marshal(msgs)
	if err != nil {
		s.Log.Error().Err(err).Str("tenant", tenantKey).Msg("encode history failed")
		return msg
	}
	if err := s.Local.Set(ctx, historyKey(tenantKey), string(b)); err != nil {
		s.Log.Warn().Err(err).Str("tenant", tenantKey).Msg("persist history failed")
	}
	return msg
}

// SessionID returns the chat session id for this process, generating and
// storing one on first use. The session scope is deliberately NOT
// tenant-namespaced: one session id per "tab", however many widgets load.
func (s *Store) SessionID(ctx context.Context) string {
	if v, ok, err := s.Session.Get(ctx, sessionKey); err == nil && ok && v != "" {
		return v
	}
	id := newSessionID(s.now())
	if err := s.Session.Set(ctx, sessionKey, id); err != nil {
		s.Log.Warn().Err(err).Msg("persist session id failed")
	}
	return id
}

// now returns the configured clock, defaulting to time.Now.
func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// newSessionID builds a "sess_<unix-ms>_<suffix>" identifier. The suffix is
// the first uuid segment, which keeps ids short but collision-safe within a
// session's lifetime.
func newSessionID(now time.Time) string {
	suffix := uuid.NewString()
	if i := strings.IndexByte(suffix, '-'); i > 0 {
		suffix = suffix[:i]
	}
	return fmt.Sprintf("sess_%d_%s", now.UnixMilli(), suffix)
}
