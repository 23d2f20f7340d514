// Package services – PreviewService
//
// This file implements the PreviewService, which hosts live widget instances
// on the server so the sandbox API can drive them over HTTP. Every preview
// session owns one widget: a synthetic host page embeds the loader script with
// the requested publish key, the widget resolves the key and boots against
// this service's own public base URL, and subsequent API calls forward to the
// instance. Durable visitor state goes through the shared SQLite-backed store,
// so sessions for the same tenant see each other's identity and history
// exactly like two pages of the same site would.
//
// Service-level errors (e.g., ErrSessionNotFound) are returned for predictable
// cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-chat-widget/internal/backend"
	"github.com/tbourn/go-chat-widget/internal/dom"
	"github.com/tbourn/go-chat-widget/internal/domain"
	"github.com/tbourn/go-chat-widget/internal/store"
	"github.com/tbourn/go-chat-widget/internal/widget"
)

// PreviewState is a snapshot of a preview session's widget.
type PreviewState struct {
	ID         string `json:"id"`
	State      string `json:"state"`
	TenantKey  string `json:"tenant_key"`
	Identified bool   `json:"identified"`
	Open       bool   `json:"open"`
	SessionID  string `json:"session_id"`
	HTML       string `json:"html"`
}

// PreviewService creates and drives server-held widget instances.
// It is safe for concurrent use; each session serializes its own operations.
type PreviewService struct {
	// DB is the GORM handle backing durable widget storage.
	DB *gorm.DB
	// BaseURL is this service's public base URL; preview widgets call back
	// into it for customization and chat.
	BaseURL string
	// ScriptName is the loader script filename embedded in synthetic host pages.
	ScriptName string
	// HistoryLimit caps retained conversation entries per tenant.
	HistoryLimit int
	// Timeout bounds the preview widgets' HTTP calls.
	Timeout time.Duration
	// Log is the service logger.
	Log zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*previewSession
}

// previewSession pairs a widget with the store it was built over.
type previewSession struct {
	mu sync.Mutex
	w  *widget.Widget
	st *store.Store
}

// NewPreviewService constructs a PreviewService over the given database handle.
func NewPreviewService(db *gorm.DB, baseURL, scriptName string, historyLimit int, timeout time.Duration, log zerolog.Logger) *PreviewService {
	if scriptName == "" {
		scriptName = widget.DefaultScriptName
	}
	if historyLimit < 1 {
		historyLimit = store.DefaultHistoryLimit
	}
	return &PreviewService{
		DB:           db,
		BaseURL:      strings.TrimRight(baseURL, "/"),
		ScriptName:   scriptName,
		HistoryLimit: historyLimit,
		Timeout:      timeout,
		Log:          log,
		sessions:     make(map[string]*previewSession),
	}
}

// boot builds a widget over the shared durable store and initializes it
// against a synthetic host page embedding the loader script for publishKey.
// Initialization is fail-closed: any resolution or fetch error aborts the boot.
func (s *PreviewService) boot(ctx context.Context, publishKey string) (*widget.Widget, *store.Store, error) {
	publishKey = strings.TrimSpace(publishKey)
	if publishKey == "" {
		return nil, nil, widget.ErrPublishKeyNotFound
	}

	st := store.New(store.NewSQLiteKV(s.DB, store.ScopeLocal), store.NewMemoryKV(), s.Log)
	st.HistoryLimit = s.HistoryLimit

	w := widget.New(widget.Options{
		Backend:    backend.New(s.BaseURL, s.Timeout, s.Log),
		Store:      st,
		Document:   dom.NewDocument(),
		ScriptName: s.ScriptName,
		Log:        s.Log,
	})

	host := strings.NewReader(fmt.Sprintf(
		`<html><head><script src="https://cdn.example.com/%s?publish_key=%s"></script></head><body></body></html>`,
		s.ScriptName, publishKey))
	if err := w.Init(ctx, host); err != nil {
		return nil, nil, err
	}
	return w, st, nil
}

// Create boots a new widget for the publish key, registers it as a live
// session, and returns its initial state.
func (s *PreviewService) Create(ctx context.Context, publishKey string) (*PreviewState, error) {
	w, st, err := s.boot(ctx, publishKey)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	sess := &previewSession{w: w, st: st}
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.Log.Info().Str("preview_id", id).Str("tenant_key", w.TenantKey()).Msg("preview session created")
	return snapshot(id, sess), nil
}

// Get returns the current state of a preview session.
func (s *PreviewService) Get(_ context.Context, id string) (*PreviewState, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return snapshot(id, sess), nil
}

// SubmitIdentity forwards an identity submission to the session's widget.
func (s *PreviewService) SubmitIdentity(ctx context.Context, id, name, email string) (*PreviewState, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.w.SubmitIdentity(ctx, name, email); err != nil {
		return nil, err
	}
	return snapshot(id, sess), nil
}

// Send forwards a chat message to the session's widget.
func (s *PreviewService) Send(ctx context.Context, id, text string) (*PreviewState, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.w.Send(ctx, text); err != nil {
		return nil, err
	}
	return snapshot(id, sess), nil
}

// Toggle flips the session widget between panel and launcher button.
func (s *PreviewService) Toggle(_ context.Context, id string) (*PreviewState, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.w.Toggle()
	return snapshot(id, sess), nil
}

// Messages returns a page of the session tenant's conversation history and
// the total entry count. Page and pageSize are normalized to sane values.
func (s *PreviewService) Messages(ctx context.Context, id string, page, pageSize int) ([]domain.ChatMessage, int64, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	sess.mu.Lock()
	hist := sess.st.ChatHistory(ctx, sess.w.TenantKey())
	sess.mu.Unlock()

	total := int64(len(hist))
	start := (page - 1) * pageSize
	if start >= len(hist) {
		return []domain.ChatMessage{}, total, nil
	}
	end := start + pageSize
	if end > len(hist) {
		end = len(hist)
	}
	return hist[start:end], total, nil
}

// Dispose tears the session's widget down and forgets the session.
func (s *PreviewService) Dispose(_ context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	sess.w.Dispose()
	sess.mu.Unlock()
	s.Log.Info().Str("preview_id", id).Msg("preview session disposed")
	return nil
}

// RenderPage boots a throwaway widget for the publish key and returns a full
// HTML page showing what a visitor would see on page load. The widget shares
// the durable store, so an already identified visitor gets their conversation
// back instead of the identity form. Nothing is registered; the widget is
// disposed once serialized.
func (s *PreviewService) RenderPage(ctx context.Context, publishKey string) (string, error) {
	w, _, err := s.boot(ctx, publishKey)
	if err != nil {
		return "", err
	}
	page := pageHTML(w.TenantKey(), w.Document())
	w.Dispose()
	return page, nil
}

// Page returns a full HTML page of the live session's widget in its current
// state, conversation and all.
func (s *PreviewService) Page(_ context.Context, id string) (string, error) {
	sess, err := s.session(id)
	if err != nil {
		return "", err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return pageHTML(sess.w.TenantKey(), sess.w.Document()), nil
}

// session looks a live session up by id.
func (s *PreviewService) session(id string) (*previewSession, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// pageHTML wraps a widget document in a minimal standalone page.
func pageHTML(tenantKey string, doc *dom.Document) string {
	var b strings.Builder
	b.WriteString("<!doctype html>\n<html><head><meta charset=\"utf-8\"><title>Widget preview: ")
	b.WriteString(html.EscapeString(tenantKey))
	b.WriteString("</title></head>\n")
	b.WriteString(doc.HTML())
	b.WriteString("\n</html>\n")
	return b.String()
}

// snapshot captures the widget's externally visible state. Callers must hold
// the session lock.
func snapshot(id string, sess *previewSession) *PreviewState {
	return &PreviewState{
		ID:         id,
		State:      sess.w.State().String(),
		TenantKey:  sess.w.TenantKey(),
		Identified: sess.w.Identified(),
		Open:       sess.w.IsOpen(),
		SessionID:  sess.w.SessionID(),
		HTML:       sess.w.Document().HTML(),
	}
}
