// Package services – ReplyService
//
// This file implements the ReplyService backing the sandbox /chat endpoint.
// Replies are deterministic and rule-based: greetings and help requests get a
// tailored response, everything else gets an acknowledgement that echoes the
// visitor's message. The point of the endpoint is to exercise the widget's
// message pipeline end to end, not to generate useful answers.
package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/tbourn/go-chat-widget/internal/backend"
)

// ReplyService produces canned assistant replies for chat requests.
type ReplyService struct {
	// MaxMessageRunes caps accepted messages by rune length.
	MaxMessageRunes int
}

// NewReplyService constructs a ReplyService with a sane message length cap.
func NewReplyService() *ReplyService {
	return &ReplyService{MaxMessageRunes: 2000}
}

// Reply validates the request and returns the canned assistant response.
func (s *ReplyService) Reply(_ context.Context, req backend.ChatRequest) (string, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return "", ErrEmptyMessage
	}
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(msg) > s.MaxMessageRunes {
		return "", ErrTooLong
	}

	name := strings.TrimSpace(req.UserName)
	lower := strings.ToLower(msg)

	switch {
	case isGreeting(lower):
		if name != "" {
			return "Hi " + name + "! How can I help you today?", nil
		}
		return "Hi there! How can I help you today?", nil
	case strings.Contains(lower, "help") || strings.HasSuffix(lower, "?"):
		return "I'm a demo assistant, so my answers are canned. Ask me anything and I'll echo it back.", nil
	default:
		return "You said: " + msg, nil
	}
}

// isGreeting reports whether the message opens with a common salutation.
func isGreeting(lower string) bool {
	for _, g := range []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening"} {
		if lower == g || strings.HasPrefix(lower, g+" ") || strings.HasPrefix(lower, g+",") || strings.HasPrefix(lower, g+"!") {
			return true
		}
	}
	return false
}
