// Package widget – identity flow
//
// The identity flow is a two-state machine: unidentified visitors see a
// blocking modal form; a validated submission persists the identity and
// transitions to identified, one-way for the widget's lifetime. Because the
// identity is written before the overlay comes down, a reload short-circuits
// straight to identified.
package widget

import (
	"context"
	"strings"

	"github.com/tbourn/go-chat-widget/internal/domain"
)

// SubmitIdentity validates and captures the visitor's name and email from
// the identity form. Blank fields (after trimming) are rejected with
// ErrIdentityIncomplete. Submitting while already identified is a no-op:
// the transition only runs forward.
//
// A storage failure while persisting is contained: the widget proceeds with
// the in-memory identity (this visit works; the next load will re-prompt).
func (w *Widget) SubmitIdentity(ctx context.Context, name, email string) error {
	switch w.state {
	case StateDisposed:
		return ErrDisposed
	case StateInit:
		return ErrNotReady
	}
	if w.identity != nil {
		return nil
	}

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return ErrIdentityIncomplete
	}

	id := domain.VisitorIdentity{Name: name, Email: email}

	// Persist before the overlay comes down so a reload lands identified.
	if err := w.store.SetVisitorIdentity(ctx, w.tenantKey, id); err != nil {
		w.log.Warn().Err(err).Str("tenant", w.tenantKey).Msg("identity not persisted")
	}

	w.identity = &id
	w.doc.RemoveByID(OverlayID)
	w.doc.Focus(InputID)

	w.log.Info().Str("tenant", w.tenantKey).Msg("visitor identified")
	return nil
}
