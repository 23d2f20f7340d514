// Package widget – message pipeline
//
// One send action runs Idle → Sending → (Success | Failure) → Idle:
//
//  1. Preconditions: non-blank text, identified visitor, no send already in
//     flight. Failing any of these is a silent no-op.
//  2. Entering Sending: the user's message goes into the DOM and into
//     history immediately (an optimistic write, so the visitor's own words
//     are never lost to a network failure), the input is cleared and
//     disabled, and a transient typing indicator appears.
//  3. One POST to the chat endpoint, routed by the tenant's website URL.
//  4. Success: typing indicator out, reply bubble in (and into history).
//     Failure: typing indicator out, fixed error bubble in. UI only,
//     never persisted.
//  5. Exit, either way: input re-enabled and refocused, sending flag down.
//
// The disabled input during Sending is the sole concurrency control: at
// most one chat request is in flight per widget instance. There is no retry
// and no cancellation bookkeeping; an abandoned request needs no cleanup
// because the optimistic write already happened.
package widget

import (
	"context"
	"strings"

	"github.com/tbourn/go-chat-widget/internal/backend"
	"github.com/tbourn/go-chat-widget/internal/domain"
)

// Send runs the message pipeline for one user-authored message. Lifecycle
// misuse returns an error; precondition failures return nil having done
// nothing. Network and backend failures are contained and surface only as
// the error bubble.
func (w *Widget) Send(ctx context.Context, text string) error {
	switch w.state {
	case StateDisposed:
		return ErrDisposed
	case StateInit:
		return ErrNotReady
	}

	text = strings.TrimSpace(text)
	if text == "" || w.identity == nil || w.sending {
		return nil
	}

	ctx, span := w.span(ctx, "Send")
	defer span.End()

	w.sending = true
	w.setInputEnabled(false)
	w.clearInput()

	// Optimistic: the user's message is durable before the network call.
	userMsg := w.store.AppendMessage(ctx, w.tenantKey, text, true)
	w.appendBubble(userMsg)
	w.showTypingIndicator()

	// Universal cleanup: whatever the outcome, the input comes back.
	defer func() {
		w.setInputEnabled(true)
		w.doc.Focus(InputID)
		w.sending = false
	}()

	reply, err := w.backend.SendMessage(ctx, w.customization.WebsiteURL, backend.ChatRequest{
		AssistantName: w.customization.BrandName,
		Message:       text,
		SessionID:     w.sessionID,
		UserEmail:     w.identity.Email,
		UserName:      w.identity.Name,
	})

	w.hideTypingIndicator()

	if err != nil {
		// Transient UI feedback only: persisting this would read as a
		// duplicated bot reply after a reload.
		w.log.Warn().Err(err).Str("tenant", w.tenantKey).Msg("chat send failed")
		w.appendErrorBubble()
		return nil
	}

	replyText := reply.Text()
	if replyText == "" {
		replyText = fallbackReplyText
	}
	botMsg := w.store.AppendMessage(ctx, w.tenantKey, replyText, false)
	w.appendBubble(botMsg)
	return nil
}

// Sending reports whether a chat request is currently in flight.
func (w *Widget) Sending() bool { return w.sending }

// appendErrorBubble renders the fixed failure bubble without touching
// history. The message carries no timestamp because it is never persisted.
func (w *Widget) appendErrorBubble() {
	list := w.doc.ByID(MessageListID)
	if list == nil {
		return
	}
	list.Append(w.buildBubble(domain.ChatMessage{Text: errorBubbleText}))
	w.scrollToLatest(list)
}

// setInputEnabled flips the disabled attribute on the input row controls.
func (w *Widget) setInputEnabled(enabled bool) {
	for _, id := range []string{InputID, SendButtonID} {
		e := w.doc.ByID(id)
		if e == nil {
			continue
		}
		if enabled {
			e.RemoveAttr("disabled")
		} else {
			e.SetAttr("disabled", "")
		}
	}
}

// clearInput empties the input's value.
func (w *Widget) clearInput() {
	if in := w.doc.ByID(InputID); in != nil {
		in.SetAttr("value", "")
	}
}
