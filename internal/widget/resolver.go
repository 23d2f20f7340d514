// Package widget – publish key resolver
//
// The embedding contract gives a tenant two ways to hand the widget its
// publish key:
//
//	<script src="https://cdn.example.com/widget.js?publish_key=KEY"></script>
//	<script src="https://cdn.example.com/widget.js" data-publish-key="KEY"></script>
//
// ResolvePublishKey scans the host page's script tags for the widget's own
// tag (matched by script filename), preferring the src query parameter and
// falling back to the data attribute. The first tag carrying a key wins.
package widget

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// DefaultScriptName is the filename the resolver looks for in script src
// attributes when the widget is not configured otherwise.
const DefaultScriptName = "widget.js"

const publishKeyParam = "publish_key"

// ResolvePublishKey extracts the tenant publish key from the host page.
// scriptName defaults to DefaultScriptName when empty. It returns
// ErrPublishKeyNotFound when no matching script tag carries a key; a parse
// failure of the page itself surfaces as an error from the tokenizer.
func ResolvePublishKey(hostPage io.Reader, scriptName string) (string, error) {
	if scriptName == "" {
		scriptName = DefaultScriptName
	}

	z := html.NewTokenizer(hostPage)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", err
			}
			return "", ErrPublishKeyNotFound
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "script" {
				continue
			}
			if key := keyFromScriptTag(tok.Attr, scriptName); key != "" {
				return key, nil
			}
		}
	}
}

// keyFromScriptTag returns the publish key carried by one script tag, or ""
// when the tag is not the widget's or carries no key.
func keyFromScriptTag(attrs []html.Attribute, scriptName string) string {
	var src, dataKey string
	for _, a := range attrs {
		switch a.Key {
		case "src":
			src = a.Val
		case "data-publish-key":
			dataKey = strings.TrimSpace(a.Val)
		}
	}
	if !matchesScript(src, scriptName) {
		return ""
	}
	if u, err := url.Parse(src); err == nil {
		if key := strings.TrimSpace(u.Query().Get(publishKeyParam)); key != "" {
			return key
		}
	}
	return dataKey
}

// matchesScript reports whether src points at the widget script. The match
// is on the path's final segment so "widget.js" does not accidentally match
// "other-widget.js2" or a query string mention.
func matchesScript(src, scriptName string) bool {
	if src == "" {
		return false
	}
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	path := u.Path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		path = path[i+1:]
	}
	return path == scriptName
}
