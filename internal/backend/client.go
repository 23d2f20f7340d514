// Package backend implements the widget's HTTP client for the two REST
// contracts it consumes: the tenant customization endpoint and the chat
// endpoint.
//
// Error policy (see the widget layer for how callers react):
//   - FetchCustomization is fail-closed: any transport error or non-2xx
//     status is returned as an error and the widget never initializes.
//     There is no retry and no degraded default branding.
//   - SendMessage errors are recoverable: the widget renders a generic
//     error bubble and restores its interactive state.
//
// Both calls honor the caller's context; an abandoned request (page
// navigation, widget disposal) is simply cancelled with no cleanup hook.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-chat-widget/internal/domain"
)

const (
	customizationPath = "/widget-chatbot"
	chatPath          = "/chat"

	// maxResponseBytes caps how much of a backend response we read; the
	// endpoints return small JSON documents.
	maxResponseBytes = 1 << 20
)

// ChatRequest is the JSON body of POST /chat.
type ChatRequest struct {
	AssistantName string `json:"assistant_name"`
	Message       string `json:"message"`
	SessionID     string `json:"session_id"`
	UserEmail     string `json:"user_email"`
	UserName      string `json:"user_name"`
}

// ChatReply is the JSON reply of POST /chat. Backends answer in either the
// message or the response field depending on version.
type ChatReply struct {
	Message  string `json:"message"`
	Response string `json:"response"`
}

// Text returns the reply text, preferring message over response. It returns
// "" when the backend sent neither; the caller substitutes its fallback.
func (r *ChatReply) Text() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Response
}

// Client calls the widget backend. The zero value is not usable; construct
// with New.
type Client struct {
	// BaseURL is the backend origin, e.g. "https://api.example.com".
	BaseURL string
	// HTTPClient performs the requests. New installs a timeout-bound
	// default client.
	HTTPClient *http.Client
	// Log receives request diagnostics.
	Log zerolog.Logger
}

// New constructs a Client for the given backend origin.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		Log:        log,
	}
}

// FetchCustomization retrieves the tenant branding for publishKey. Non-2xx
// statuses and transport failures are errors; the caller treats them as
// fatal to initialization.
func (c *Client) FetchCustomization(ctx context.Context, publishKey string) (*domain.Customization, error) {
	u := c.BaseURL + customizationPath + "?publish_key=" + url.QueryEscape(publishKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build customization request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch customization: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch customization: unexpected status %d", resp.StatusCode)
	}

	var cust domain.Customization
	if err := decodeJSON(resp.Body, &cust); err != nil {
		return nil, fmt.Errorf("decode customization: %w", err)
	}

	c.Log.Debug().Str("brand", cust.BrandName).Msg("customization loaded")
	return &cust, nil
}

// SendMessage posts one chat turn for the tenant identified by websiteURL
// and returns the backend's reply. Exactly one call is in flight per widget
// instance; the single-flight guarantee lives in the widget, not here.
func (c *Client) SendMessage(ctx context.Context, websiteURL string, reqBody ChatRequest) (*ChatReply, error) {
	u := c.BaseURL + chatPath + "?website_url=" + url.QueryEscape(websiteURL)

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send chat message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("send chat message: unexpected status %d", resp.StatusCode)
	}

	var reply ChatReply
	if err := decodeJSON(resp.Body, &reply); err != nil {
		return nil, fmt.Errorf("decode chat reply: %w", err)
	}
	return &reply, nil
}

// decodeJSON reads at most maxResponseBytes from r and unmarshals into v.
func decodeJSON(r io.Reader, v any) error {
	b, err := io.ReadAll(io.LimitReader(r, maxResponseBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
