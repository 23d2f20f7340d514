// Package widget – visibility state machine
//
// Two states, open and closed, starting closed with only the floating
// toggle button visible. Toggling flips the panel and button display in
// lockstep so exactly one of the two is visible at any time. Closing the
// panel touches no persisted state; reopening re-renders nothing, the
// existing subtree is simply shown again.
package widget

// Toggle flips between open and closed. It is a no-op before Init and
// after Dispose.
func (w *Widget) Toggle() {
	if w.state != StateReady {
		return
	}
	w.open = !w.open
	w.applyVisibility()
}

// OpenPanel opens the chat panel (idempotent).
func (w *Widget) OpenPanel() {
	if w.state != StateReady || w.open {
		return
	}
	w.open = true
	w.applyVisibility()
}

// ClosePanel closes the chat panel (idempotent).
func (w *Widget) ClosePanel() {
	if w.state != StateReady || !w.open {
		return
	}
	w.open = false
	w.applyVisibility()
}

// IsOpen reports whether the chat panel is visible.
func (w *Widget) IsOpen() bool { return w.open }

// applyVisibility projects the open flag onto the two subtrees, keeping
// their display styles in lockstep.
func (w *Widget) applyVisibility() {
	panel := w.doc.ByID(PanelID)
	button := w.doc.ByID(ToggleButtonID)
	if panel == nil || button == nil {
		return
	}
	if w.open {
		panel.SetStyle("display", "flex")
		button.SetStyle("display", "none")
	} else {
		panel.SetStyle("display", "none")
		button.SetStyle("display", "block")
	}
}
