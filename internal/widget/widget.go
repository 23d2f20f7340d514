// Package widget – Widget instance
//
// A Widget is one embedded chat instance: it owns the element subtrees it
// renders into a host document, the tenant branding fetched at load time,
// the visitor identity and conversation history read through the store, and
// the open/closed and sending flags of its two small state machines.
//
// All of that state lives on the instance, so several widgets can coexist
// and a host can tear one down cleanly. The lifecycle is init → ready →
// disposed; only Init moves forward from init, and nothing leaves disposed.
//
// A Widget is single-threaded by contract: callers must not drive one
// instance from multiple goroutines. The store's read-modify-write on
// history depends on this.
package widget

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-chat-widget/internal/backend"
	"github.com/tbourn/go-chat-widget/internal/dom"
	"github.com/tbourn/go-chat-widget/internal/domain"
	"github.com/tbourn/go-chat-widget/internal/store"
)

// State is the widget lifecycle state.
type State int

const (
	// StateInit is the state before Init succeeds.
	StateInit State = iota
	// StateReady means the widget is rendered and interactive.
	StateReady
	// StateDisposed means the widget has been torn down.
	StateDisposed
)

// String returns the lifecycle state name.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateReady:
		return "ready"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Options configures a Widget.
type Options struct {
	// Backend calls the customization and chat endpoints. Required.
	Backend *backend.Client
	// Store is the persistence layer. Required.
	Store *store.Store
	// Document is the host page's element tree the widget renders into.
	// Required.
	Document *dom.Document
	// ScriptName overrides the script filename the resolver matches;
	// empty means DefaultScriptName.
	ScriptName string
	// Log receives widget diagnostics.
	Log zerolog.Logger
}

// Widget is one embedded chat widget instance. Construct with New, bring up
// with Init, and drive through SubmitIdentity, Send, and Toggle.
type Widget struct {
	backend    *backend.Client
	store      *store.Store
	doc        *dom.Document
	scriptName string
	log        zerolog.Logger

	state         State
	tenantKey     string
	customization *domain.Customization
	identity      *domain.VisitorIdentity
	sessionID     string

	open    bool
	sending bool
}

// New constructs an uninitialized Widget.
func New(opts Options) *Widget {
	return &Widget{
		backend:    opts.Backend,
		store:      opts.Store,
		doc:        opts.Document,
		scriptName: opts.ScriptName,
		log:        opts.Log,
		state:      StateInit,
	}
}

// Init brings the widget up against the given host page: it resolves the
// publish key from the page's script tags, fetches the tenant customization
// (fail-closed), loads any persisted visitor identity, and renders the UI,
// with the identity capture overlay when the visitor is unknown.
//
// On any failure the document is left untouched, a diagnostic is logged,
// and the error is returned; there is no user-visible error surface because
// there may be no widget DOM to show one in.
func (w *Widget) Init(ctx context.Context, hostPage io.Reader) error {
	if w.state == StateDisposed {
		return ErrDisposed
	}
	if w.state != StateInit {
		return ErrAlreadyInitialized
	}

	tr := otel.Tracer("widget")
	ctx, span := tr.Start(ctx, "Init")
	defer span.End()

	key, err := ResolvePublishKey(hostPage, w.scriptName)
	if err != nil {
		w.log.Error().Err(err).Msg("widget not initialized: no publish key")
		return fmt.Errorf("resolve publish key: %w", err)
	}
	span.SetAttributes(attribute.String("tenant.key", key))

	cust, err := w.backend.FetchCustomization(ctx, key)
	if err != nil {
		// Fail closed: rendering with unknown branding risks a broken,
		// unbranded UI on a customer's site.
		w.log.Error().Err(err).Str("tenant", key).Msg("widget not initialized: customization fetch failed")
		return fmt.Errorf("load customization: %w", err)
	}

	w.tenantKey = key
	w.customization = cust
	w.identity = w.store.VisitorIdentity(ctx, key)
	w.sessionID = w.store.SessionID(ctx)

	w.render(ctx)
	w.state = StateReady

	w.log.Info().
		Str("tenant", key).
		Str("brand", cust.BrandName).
		Bool("identified", w.identity != nil).
		Msg("widget ready")
	return nil
}

// Dispose removes the widget's subtrees from the document and retires the
// instance. Persisted identity and history are untouched; only the rendered
// UI goes away. Dispose is idempotent.
func (w *Widget) Dispose() {
	if w.state == StateDisposed {
		return
	}
	w.doc.RemoveByID(ContainerID)
	w.state = StateDisposed
	w.log.Debug().Str("tenant", w.tenantKey).Msg("widget disposed")
}

// State returns the lifecycle state.
func (w *Widget) State() State { return w.state }

// TenantKey returns the resolved publish key, or "" before Init.
func (w *Widget) TenantKey() string { return w.tenantKey }

// Customization returns the fetched branding, or nil before Init.
func (w *Widget) Customization() *domain.Customization { return w.customization }

// Identified reports whether the visitor has a captured identity.
func (w *Widget) Identified() bool { return w.identity != nil }

// SessionID returns the chat session id assigned at Init.
func (w *Widget) SessionID() string { return w.sessionID }

// Document returns the host document the widget renders into.
func (w *Widget) Document() *dom.Document { return w.doc }

// span is a small helper so pipeline code can annotate its traces without
// repeating tracer plumbing.
func (w *Widget) span(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer("widget").Start(ctx, name,
		trace.WithAttributes(attribute.String("tenant.key", w.tenantKey)),
	)
}
