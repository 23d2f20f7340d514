// Package widget – renderer
//
// The renderer deterministically (re)builds the widget's three element
// subtrees: the floating toggle button, the chat panel (header, scrollable
// message list, input row), and, while the visitor is unidentified, the
// blocking identity capture overlay. There is no reconciliation: render
// removes any existing container by its well-known id and rebuilds the
// whole subtree, which makes rendering idempotent by construction.
//
// Everything is styled from the fetched Customization palette, including
// the pre-chat identity form, so even the capture step matches brand.
package widget

import (
	"context"

	"github.com/tbourn/go-chat-widget/internal/dom"
	"github.com/tbourn/go-chat-widget/internal/domain"
)

// Well-known element ids. The container id doubles as the embedding
// contract's replacement key: a second widget load for the same page
// replaces the first widget's subtree.
const (
	ContainerID        = "chat-widget-container"
	ToggleButtonID     = "chat-widget-toggle"
	PanelID            = "chat-widget-panel"
	MessageListID      = "chat-widget-messages"
	InputID            = "chat-widget-input"
	SendButtonID       = "chat-widget-send"
	OverlayID          = "chat-widget-identity-overlay"
	IdentityNameID     = "chat-widget-identity-name"
	IdentityEmailID    = "chat-widget-identity-email"
	IdentitySubmitID   = "chat-widget-identity-submit"
	TypingIndicatorID  = "chat-widget-typing"
	neutralBubbleColor = "#f1f1f1"
	neutralTextColor   = "#111111"
)

// errorBubbleText is the fixed message rendered when a send fails. It is
// deliberately never persisted to history: on reload a stored copy would
// look like a duplicated bot reply.
const errorBubbleText = "Sorry, something went wrong. Please try again."

// fallbackReplyText is rendered when the backend answers 2xx but with
// neither a message nor a response field.
const fallbackReplyText = "Sorry, I couldn't come up with a reply. Please try again."

// render rebuilds the widget subtree from current state: customization,
// identity, and the persisted history. Any previous subtree with the
// container id is removed first, so calling render repeatedly never
// duplicates UI.
func (w *Widget) render(ctx context.Context) {
	w.doc.RemoveByID(ContainerID)

	cust := w.customization
	container := dom.NewElement("div").SetID(ContainerID).
		SetStyle("font-family", cust.FontFamily).
		SetStyle("position", "fixed").
		SetStyle("bottom", "20px").
		SetStyle("right", "20px").
		SetStyle("z-index", "99999")

	container.Append(w.buildToggleButton(), w.buildPanel(ctx))
	if w.identity == nil {
		container.Append(w.buildIdentityOverlay())
	}
	w.doc.Body().Append(container)

	// The widget starts closed: only the toggle button is visible.
	w.open = false
	w.applyVisibility()
}

// buildToggleButton builds the floating round button that opens the panel.
func (w *Widget) buildToggleButton() *dom.Element {
	return dom.NewElement("button").SetID(ToggleButtonID).
		SetText("💬").
		SetAttr("aria-label", "Open chat").
		SetStyle("background", w.customization.PrimaryColor).
		SetStyle("color", w.customization.TextColor).
		SetStyle("border-radius", "50%").
		SetStyle("width", "56px").
		SetStyle("height", "56px").
		SetStyle("border", "none").
		SetStyle("cursor", "pointer")
}

// buildPanel builds the chat panel: header, message list with the replayed
// history (oldest first), and the input row.
func (w *Widget) buildPanel(ctx context.Context) *dom.Element {
	cust := w.customization

	panel := dom.NewElement("div").SetID(PanelID).
		SetStyle("background", cust.BackgroundColor).
		SetStyle("width", "340px").
		SetStyle("height", "480px").
		SetStyle("border-radius", "12px").
		SetStyle("box-shadow", "0 8px 24px rgba(0,0,0,.18)").
		SetStyle("flex-direction", "column")

	panel.Append(
		w.buildHeader(),
		w.buildMessageList(ctx),
		w.buildInputRow(),
	)
	return panel
}

// buildHeader builds the branded panel header.
func (w *Widget) buildHeader() *dom.Element {
	cust := w.customization

	header := dom.NewElement("div").
		SetStyle("background", cust.PrimaryColor).
		SetStyle("color", cust.TextColor).
		SetStyle("padding", "12px 16px").
		SetStyle("border-radius", "12px 12px 0 0")

	if cust.LogoURL != "" {
		header.Append(dom.NewElement("img").
			SetAttr("src", cust.LogoURL).
			SetAttr("alt", cust.BrandName).
			SetStyle("height", "24px").
			SetStyle("margin-right", "8px"))
	}
	header.Append(dom.NewElement("span").SetText(cust.BrandName))
	return header
}

// buildMessageList builds the scrollable list and replays the persisted
// history into it in stored order.
func (w *Widget) buildMessageList(ctx context.Context) *dom.Element {
	list := dom.NewElement("div").SetID(MessageListID).
		SetStyle("flex", "1").
		SetStyle("overflow-y", "auto").
		SetStyle("padding", "12px").
		SetStyle("display", "flex").
		SetStyle("flex-direction", "column").
		SetStyle("gap", "8px")

	for _, m := range w.store.ChatHistory(ctx, w.tenantKey) {
		list.Append(w.buildBubble(m))
	}
	w.scrollToLatest(list)
	return list
}

// buildInputRow builds the text input and send button.
func (w *Widget) buildInputRow() *dom.Element {
	row := dom.NewElement("div").
		SetStyle("padding", "10px").
		SetStyle("border-top", "1px solid #e5e5e5")

	input := dom.NewElement("input").SetID(InputID).
		SetAttr("type", "text").
		SetAttr("placeholder", "Type a message…")

	send := dom.NewElement("button").SetID(SendButtonID).
		SetText("Send").
		SetStyle("background", w.customization.PrimaryColor).
		SetStyle("color", w.customization.TextColor).
		SetStyle("border", "none").
		SetStyle("cursor", "pointer")

	return row.Append(input, send)
}

// buildBubble builds one message bubble. User messages sit right-aligned in
// the primary color; bot messages sit left-aligned in neutral grey.
func (w *Widget) buildBubble(m domain.ChatMessage) *dom.Element {
	b := dom.NewElement("div").
		SetText(m.Text).
		SetAttr("data-role", bubbleRole(m.IsUser)).
		SetStyle("padding", "8px 12px").
		SetStyle("border-radius", "14px").
		SetStyle("max-width", "80%")

	if m.IsUser {
		b.SetStyle("align-self", "flex-end").
			SetStyle("background", w.customization.PrimaryColor).
			SetStyle("color", w.customization.TextColor)
	} else {
		b.SetStyle("align-self", "flex-start").
			SetStyle("background", neutralBubbleColor).
			SetStyle("color", neutralTextColor)
	}
	return b
}

// bubbleRole names the author of a bubble for markup consumers.
func bubbleRole(isUser bool) string {
	if isUser {
		return "user"
	}
	return "bot"
}

// buildIdentityOverlay builds the modal form that blocks the widget until
// the visitor submits a name and email. It uses the fetched palette so the
// capture step already matches brand.
func (w *Widget) buildIdentityOverlay() *dom.Element {
	cust := w.customization

	overlay := dom.NewElement("div").SetID(OverlayID).
		SetStyle("position", "absolute").
		SetStyle("inset", "0").
		SetStyle("background", "rgba(0,0,0,.45)").
		SetStyle("display", "flex").
		SetStyle("align-items", "center").
		SetStyle("justify-content", "center")

	form := dom.NewElement("form").
		SetStyle("background", cust.BackgroundColor).
		SetStyle("font-family", cust.FontFamily).
		SetStyle("padding", "20px").
		SetStyle("border-radius", "12px")

	form.Append(
		dom.NewElement("p").SetText("Before we chat, tell us who you are:"),
		dom.NewElement("input").SetID(IdentityNameID).
			SetAttr("type", "text").
			SetAttr("placeholder", "Your name"),
		dom.NewElement("input").SetID(IdentityEmailID).
			SetAttr("type", "email").
			SetAttr("placeholder", "Your email"),
		dom.NewElement("button").SetID(IdentitySubmitID).
			SetText("Start chatting").
			SetAttr("type", "submit").
			SetStyle("background", cust.PrimaryColor).
			SetStyle("color", cust.TextColor),
	)
	return overlay.Append(form)
}

// appendBubble appends one rendered bubble to the live message list and
// scrolls to it. Missing list (disposed mid-flight) is tolerated.
func (w *Widget) appendBubble(m domain.ChatMessage) {
	list := w.doc.ByID(MessageListID)
	if list == nil {
		return
	}
	list.Append(w.buildBubble(m))
	w.scrollToLatest(list)
}

// showTypingIndicator appends the transient "typing" bubble. It is UI-only
// state and never enters history.
func (w *Widget) showTypingIndicator() {
	list := w.doc.ByID(MessageListID)
	if list == nil {
		return
	}
	list.Append(dom.NewElement("div").SetID(TypingIndicatorID).
		SetText("…").
		SetAttr("data-role", "bot").
		SetStyle("align-self", "flex-start").
		SetStyle("background", neutralBubbleColor).
		SetStyle("color", neutralTextColor))
	w.scrollToLatest(list)
}

// hideTypingIndicator removes the typing bubble if present.
func (w *Widget) hideTypingIndicator() {
	w.doc.RemoveByID(TypingIndicatorID)
}

// scrollToLatest records on the list element that the newest entry should
// be in view, the headless stand-in for scrollTop = scrollHeight.
func (w *Widget) scrollToLatest(list *dom.Element) {
	list.SetAttr("data-scroll", "latest")
}
