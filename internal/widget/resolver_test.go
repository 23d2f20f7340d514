package widget

import (
	"errors"
	"strings"
	"testing"
)

func TestResolvePublishKey_FromSrcQuery(t *testing.T) {
	page := `<html><head>
		<script src="/js/analytics.js"></script>
		<script src="https://cdn.example.com/widget.js?publish_key=abc123"></script>
	</head><body></body></html>`

	key, err := ResolvePublishKey(strings.NewReader(page), "")
	if err != nil {
		t.Fatalf("ResolvePublishKey: %v", err)
	}
	if key != "abc123" {
		t.Fatalf("key = %q, want abc123", key)
	}
}

func TestResolvePublishKey_DataAttributeFallback(t *testing.T) {
	page := `<script src="https://cdn.example.com/widget.js" data-publish-key="tenant-9"></script>`

	key, err := ResolvePublishKey(strings.NewReader(page), "")
	if err != nil {
		t.Fatalf("ResolvePublishKey: %v", err)
	}
	if key != "tenant-9" {
		t.Fatalf("key = %q, want tenant-9", key)
	}
}

func TestResolvePublishKey_QueryWinsOverAttribute(t *testing.T) {
	page := `<script src="/widget.js?publish_key=from-query" data-publish-key="from-attr"></script>`

	key, err := ResolvePublishKey(strings.NewReader(page), "")
	if err != nil {
		t.Fatalf("ResolvePublishKey: %v", err)
	}
	if key != "from-query" {
		t.Fatalf("key = %q, want from-query", key)
	}
}

func TestResolvePublishKey_IgnoresOtherScripts(t *testing.T) {
	cases := map[string]string{
		"different file":  `<script src="/bundle.js?publish_key=nope"></script>`,
		"suffix mismatch": `<script src="/widget.js.map?publish_key=nope"></script>`,
		"no scripts":      `<html><body><p>hello</p></body></html>`,
		"no key on tag":   `<script src="/widget.js"></script>`,
	}
	for name, page := range cases {
		_, err := ResolvePublishKey(strings.NewReader(page), "")
		if !errors.Is(err, ErrPublishKeyNotFound) {
			t.Errorf("%s: err = %v, want ErrPublishKeyNotFound", name, err)
		}
	}
}

func TestResolvePublishKey_CustomScriptName(t *testing.T) {
	page := `<script src="/embed/chat-loader.js?publish_key=abc123"></script>`

	if _, err := ResolvePublishKey(strings.NewReader(page), ""); !errors.Is(err, ErrPublishKeyNotFound) {
		t.Fatalf("default name matched unexpected script: %v", err)
	}
	key, err := ResolvePublishKey(strings.NewReader(page), "chat-loader.js")
	if err != nil || key != "abc123" {
		t.Fatalf("custom name = (%q, %v)", key, err)
	}
}

func TestResolvePublishKey_FirstMatchingTagWins(t *testing.T) {
	page := `
		<script src="/widget.js?publish_key=first"></script>
		<script src="/widget.js?publish_key=second"></script>`

	key, err := ResolvePublishKey(strings.NewReader(page), "")
	if err != nil || key != "first" {
		t.Fatalf("got (%q, %v), want first", key, err)
	}
}
