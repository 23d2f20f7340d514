// Package dom provides the imperative element tree the widget renders into.
//
// It deliberately mimics the small slice of the browser DOM an embedded
// widget needs: manual element creation, attribute and inline-style maps,
// append/remove of subtrees, and lookup by id. Nothing more. There is
// no diffing or reconciliation: the renderer removes a well-known container
// and rebuilds it from scratch, so simplicity here is a feature.
//
// HTML() serializes a subtree with escaping and deterministic attribute and
// style ordering, so rendered output is stable across runs and directly
// comparable in tests.
package dom

import (
	"html"
	"sort"
	"strings"
)

// Element is one node of the tree. Create with NewElement and mutate through
// the methods; Parent is maintained by Append/Detach.
type Element struct {
	// Tag is the element name, e.g. "div", "button", "input".
	Tag string
	// Text is the escaped text content, rendered before any children.
	Text string

	attrs    map[string]string
	styles   map[string]string
	children []*Element
	parent   *Element
}

// NewElement creates a detached element with the given tag.
func NewElement(tag string) *Element {
	return &Element{Tag: tag}
}

// SetID sets the id attribute and returns the element for chaining.
func (e *Element) SetID(id string) *Element { return e.SetAttr("id", id) }

// ID returns the id attribute, or "".
func (e *Element) ID() string { return e.Attr("id") }

// SetAttr sets an attribute and returns the element for chaining.
func (e *Element) SetAttr(name, value string) *Element {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[name] = value
	return e
}

// Attr returns the attribute value, or "" when unset.
func (e *Element) Attr(name string) string { return e.attrs[name] }

// HasAttr reports whether the attribute is set, regardless of value.
// Boolean HTML attributes like "disabled" are modeled as present/absent.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.attrs[name]
	return ok
}

// RemoveAttr deletes an attribute.
func (e *Element) RemoveAttr(name string) { delete(e.attrs, name) }

// SetText sets the text content and returns the element for chaining.
func (e *Element) SetText(text string) *Element {
	e.Text = text
	return e
}

// SetStyle sets one inline style property and returns the element.
func (e *Element) SetStyle(prop, value string) *Element {
	if e.styles == nil {
		e.styles = make(map[string]string)
	}
	e.styles[prop] = value
	return e
}

// Style returns an inline style property, or "" when unset.
func (e *Element) Style(prop string) string { return e.styles[prop] }

// Append attaches children to e, detaching each from any previous parent,
// and returns e for chaining.
func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.Detach()
		c.parent = e
		e.children = append(e.children, c)
	}
	return e
}

// Children returns the child list in insertion order. The slice is shared;
// callers must not mutate it.
func (e *Element) Children() []*Element { return e.children }

// Detach removes e from its parent, if any. Detaching a root is a no-op.
func (e *Element) Detach() {
	p := e.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == e {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	e.parent = nil
}

// ByID returns the first element in the subtree (including e itself) with
// the given id, depth first, or nil.
func (e *Element) ByID(id string) *Element {
	if e.Attr("id") == id {
		return e
	}
	for _, c := range e.children {
		if found := c.ByID(id); found != nil {
			return found
		}
	}
	return nil
}

// CountByID returns how many elements in the subtree carry the given id.
// A well-formed tree has at most one; the renderer's idempotence tests use
// this to prove it.
func (e *Element) CountByID(id string) int {
	n := 0
	if e.Attr("id") == id {
		n++
	}
	for _, c := range e.children {
		n += c.CountByID(id)
	}
	return n
}

// HTML serializes the subtree. Attribute names, then style properties, are
// emitted in sorted order; text and attribute values are escaped.
func (e *Element) HTML() string {
	var b strings.Builder
	e.writeHTML(&b)
	return b.String()
}

// voidTags are elements serialized without a closing tag.
var voidTags = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true, "link": true, "meta": true,
}

func (e *Element) writeHTML(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(e.Tag)

	names := make([]string, 0, len(e.attrs))
	for n := range e.attrs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		b.WriteByte(' ')
		b.WriteString(n)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(e.attrs[n]))
		b.WriteByte('"')
	}

	if len(e.styles) > 0 {
		props := make([]string, 0, len(e.styles))
		for p := range e.styles {
			props = append(props, p)
		}
		sort.Strings(props)
		b.WriteString(` style="`)
		for i, p := range props {
			if i > 0 {
				b.WriteByte(';')
			}
			b.WriteString(p)
			b.WriteByte(':')
			b.WriteString(html.EscapeString(e.styles[p]))
		}
		b.WriteByte('"')
	}
	b.WriteByte('>')

	if voidTags[e.Tag] {
		return
	}

	if e.Text != "" {
		b.WriteString(html.EscapeString(e.Text))
	}
	for _, c := range e.children {
		c.writeHTML(b)
	}
	b.WriteString("</")
	b.WriteString(e.Tag)
	b.WriteByte('>')
}

// Document owns a body root plus the piece of page-level state the widget
// touches: which element currently holds focus.
type Document struct {
	body      *Element
	focusedID string
}

// NewDocument returns a document with an empty body.
func NewDocument() *Document {
	return &Document{body: NewElement("body")}
}

// Body returns the document's root container.
func (d *Document) Body() *Element { return d.body }

// ByID searches the whole document.
func (d *Document) ByID(id string) *Element { return d.body.ByID(id) }

// RemoveByID detaches the element with the given id, if present, and
// reports whether anything was removed.
func (d *Document) RemoveByID(id string) bool {
	e := d.body.ByID(id)
	if e == nil || e == d.body {
		return false
	}
	e.Detach()
	if d.focusedID == id {
		d.focusedID = ""
	}
	return true
}

// Focus records the id of the element holding focus.
func (d *Document) Focus(id string) { d.focusedID = id }

// FocusedID returns the id recorded by Focus, or "".
func (d *Document) FocusedID() string { return d.focusedID }

// HTML serializes the whole body.
func (d *Document) HTML() string { return d.body.HTML() }
