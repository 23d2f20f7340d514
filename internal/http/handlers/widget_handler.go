// Widget HTTP handlers.
//
// This file exposes the two endpoints embedded widgets call at runtime:
//   - GET  /widget-chatbot   (tenant customization by publish key)
//   - POST /chat             (canned assistant reply)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chat-widget/internal/backend"
	"github.com/tbourn/go-chat-widget/internal/domain"
	"github.com/tbourn/go-chat-widget/internal/services"
)

//
// Service contracts (context-aware)
//

// TenantService resolves publish keys to widget customizations.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type TenantService interface {
	// Customization returns the customization registered for the publish key.
	Customization(ctx context.Context, publishKey string) (*domain.Customization, error)
}

// ReplyService produces assistant replies for chat requests.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ReplyService interface {
	// Reply validates the request and returns the assistant response text.
	Reply(ctx context.Context, req backend.ChatRequest) (string, error)
}

// PreviewService creates and drives server-held widget instances.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PreviewService interface {
	// Create boots a new widget for the publish key.
	Create(ctx context.Context, publishKey string) (*services.PreviewState, error)
	// Get returns the current state of a preview session.
	Get(ctx context.Context, id string) (*services.PreviewState, error)
	// SubmitIdentity forwards an identity submission to the session's widget.
	SubmitIdentity(ctx context.Context, id, name, email string) (*services.PreviewState, error)
	// Send forwards a chat message to the session's widget.
	Send(ctx context.Context, id, text string) (*services.PreviewState, error)
	// Toggle flips the session widget between panel and launcher button.
	Toggle(ctx context.Context, id string) (*services.PreviewState, error)
	// Messages returns a page of the session's conversation history.
	Messages(ctx context.Context, id string, page, pageSize int) ([]domain.ChatMessage, int64, error)
	// Dispose tears the session down.
	Dispose(ctx context.Context, id string) error
	// RenderPage returns a standalone HTML page of a freshly booted widget.
	RenderPage(ctx context.Context, publishKey string) (string, error)
	// Page returns a standalone HTML page of a live session's widget.
	Page(ctx context.Context, id string) (string, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for widget configuration, chat, and previews.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	tenantSvc  TenantService
	replySvc   ReplyService
	previewSvc PreviewService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(tenantSvc TenantService, replySvc ReplyService, previewSvc PreviewService) *Handlers {
	return &Handlers{tenantSvc: tenantSvc, replySvc: replySvc, previewSvc: previewSvc}
}

//
// DTOs
//

// ChatReplyResponse is the JSON payload returned by the chat endpoint.
type ChatReplyResponse struct {
	// Message is the assistant reply text.
	Message string `json:"message" example:"Hi there! How can I help you today?"`
}

//
// Handlers
//

// GetWidgetConfig godoc
// @ID          getWidgetConfig
// @Summary     Resolve widget customization
// @Description Returns the branding and behavior configuration for the tenant identified by publish key.
// @Tags        Widget
// @Produce     json
//
// @Param       publish_key  query  string  true  "Tenant publish key"  example(demo)
//
// @Success     200  {object}  domain.Customization
// @Failure     400  {object}  handlers.ErrorResponse  "Missing publish key"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown publish key"
// @Router      /widget-chatbot [get]
func (h *Handlers) GetWidgetConfig(c *gin.Context) {
	key := strings.TrimSpace(c.Query("publish_key"))
	if key == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "publish_key query parameter required")
		return
	}
	c.Set("tenantKey", key)

	cust, err := h.tenantSvc.Customization(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, services.ErrTenantNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "tenant not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, cust)
}

// PostChat godoc
// @ID          postChat
// @Summary     Send a chat message
// @Description Accepts a visitor message and returns the assistant reply.
// @Tags        Widget
// @Accept      json
// @Produce     json
//
// @Param       website_url  query  string  true  "Tenant website URL used for routing"  example(https://example.com)
// @Param       body         body   backend.ChatRequest  true  "Chat payload"
//
// @Success     200  {object}  handlers.ChatReplyResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chat [post]
func (h *Handlers) PostChat(c *gin.Context) {
	// Widgets route chat by the tenant's website URL; a request without it
	// could not be attributed to any tenant.
	if strings.TrimSpace(c.Query("website_url")) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "website_url query parameter required")
		return
	}

	var req backend.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	reply, err := h.replySvc.Reply(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage), errors.Is(err, services.ErrTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeReplyFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, ChatReplyResponse{Message: reply})
}
