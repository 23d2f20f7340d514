// Preview HTTP handlers.
//
// This file exposes REST endpoints that drive server-held widget instances,
// so a browser (or curl) can exercise the full widget lifecycle without any
// client runtime:
//   - GET    /preview?publish_key=              (standalone HTML page)
//   - POST   /preview/sessions                  (boot a widget)
//   - GET    /preview/sessions/{id}             (inspect state + rendered HTML)
//   - POST   /preview/sessions/{id}/identity    (submit visitor identity)
//   - POST   /preview/sessions/{id}/messages    (send a chat message)
//   - GET    /preview/sessions/{id}/messages    (paginated history)
//   - POST   /preview/sessions/{id}/toggle      (open/close the panel)
//   - GET    /preview/sessions/{id}/html        (standalone HTML page of the session)
//   - DELETE /preview/sessions/{id}             (dispose)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chat-widget/internal/domain"
	"github.com/tbourn/go-chat-widget/internal/services"
	"github.com/tbourn/go-chat-widget/internal/utils"
	"github.com/tbourn/go-chat-widget/internal/widget"
)

//
// DTOs
//

// CreatePreviewRequest is the JSON payload for booting a preview widget.
type CreatePreviewRequest struct {
	// PublishKey identifies the tenant the widget should load.
	PublishKey string `json:"publish_key" binding:"required" example:"demo"`
}

// PreviewIdentityRequest is the JSON payload for submitting visitor identity.
type PreviewIdentityRequest struct {
	Name  string `json:"name" example:"Ada Lovelace"`
	Email string `json:"email" example:"ada@example.com"`
}

// PreviewMessageRequest is the JSON payload for sending a chat message.
type PreviewMessageRequest struct {
	Text string `json:"text" example:"Hello!"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListPreviewMessagesResponse wraps a page of history entries and pagination
// information.
type ListPreviewMessagesResponse struct {
	Messages   []domain.ChatMessage `json:"messages"`
	Pagination Pagination           `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// failPreview maps preview/widget errors to HTTP responses.
func failPreview(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "preview session not found")
	case errors.Is(err, widget.ErrDisposed):
		fail(c, http.StatusConflict, ErrCodeSessionDisposed, "preview session is disposed")
	case errors.Is(err, widget.ErrIdentityIncomplete):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name and email are required")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

//
// Handlers
//

// CreatePreview godoc
// @ID          createPreview
// @Summary     Boot a preview widget
// @Description Creates a server-held widget instance for the given publish key and returns its initial state.
// @Tags        Preview
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreatePreviewRequest  true  "Preview payload"
//
// @Success     201  {object}  services.PreviewState
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     502  {object}  handlers.ErrorResponse  "Widget failed to initialize"
// @Router      /preview/sessions [post]
func (h *Handlers) CreatePreview(c *gin.Context) {
	var req CreatePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "publish_key required")
		return
	}
	c.Set("tenantKey", req.PublishKey)

	state, err := h.previewSvc.Create(c.Request.Context(), req.PublishKey)
	if err != nil {
		if errors.Is(err, widget.ErrPublishKeyNotFound) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "publish_key required")
			return
		}
		fail(c, http.StatusBadGateway, ErrCodeSessionCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, state)
}

// GetPreviewPage godoc
// @ID          getPreviewPage
// @Summary     Render a widget preview page
// @Description Boots a throwaway widget for the publish key and returns a standalone HTML page of it.
// @Tags        Preview
// @Produce     html
//
// @Param       publish_key  query  string  true  "Tenant publish key"  example(demo)
//
// @Success     200  {string}  string  "HTML page"
// @Failure     400  {object}  handlers.ErrorResponse  "Missing publish key"
// @Failure     502  {object}  handlers.ErrorResponse  "Widget failed to initialize"
// @Router      /preview [get]
func (h *Handlers) GetPreviewPage(c *gin.Context) {
	key := c.Query("publish_key")
	c.Set("tenantKey", key)

	page, err := h.previewSvc.RenderPage(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, widget.ErrPublishKeyNotFound) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "publish_key query parameter required")
			return
		}
		fail(c, http.StatusBadGateway, ErrCodeSessionCreateFailed, err.Error())
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// GetPreviewSessionPage godoc
// @ID          getPreviewSessionPage
// @Summary     Render a live session page
// @Description Returns a standalone HTML page of the session's widget in its current state.
// @Tags        Preview
// @Produce     html
//
// @Param       id  path  string  true  "Preview session ID"  format(uuid)
//
// @Success     200  {string}  string  "HTML page"
// @Failure     404  {object}  handlers.ErrorResponse  "Session not found"
// @Router      /preview/sessions/{id}/html [get]
func (h *Handlers) GetPreviewSessionPage(c *gin.Context) {
	page, err := h.previewSvc.Page(c.Request.Context(), c.Param("id"))
	if err != nil {
		failPreview(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// GetPreview godoc
// @ID          getPreview
// @Summary     Inspect a preview widget
// @Description Returns the widget's lifecycle state, visibility, and rendered HTML.
// @Tags        Preview
// @Produce     json
//
// @Param       id  path  string  true  "Preview session ID"  format(uuid)
//
// @Success     200  {object}  services.PreviewState
// @Failure     404  {object}  handlers.ErrorResponse  "Session not found"
// @Router      /preview/sessions/{id} [get]
func (h *Handlers) GetPreview(c *gin.Context) {
	state, err := h.previewSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failPreview(c, err)
		return
	}
	ok(c, http.StatusOK, state)
}

// SubmitPreviewIdentity godoc
// @ID          submitPreviewIdentity
// @Summary     Submit visitor identity
// @Description Submits name and email to the preview widget's identity form.
// @Tags        Preview
// @Accept      json
// @Produce     json
//
// @Param       id    path  string  true  "Preview session ID"  format(uuid)
// @Param       body  body  handlers.PreviewIdentityRequest  true  "Identity payload"
//
// @Success     200  {object}  services.PreviewState
// @Failure     400  {object}  handlers.ErrorResponse  "Incomplete identity"
// @Failure     404  {object}  handlers.ErrorResponse  "Session not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Session disposed"
// @Router      /preview/sessions/{id}/identity [post]
func (h *Handlers) SubmitPreviewIdentity(c *gin.Context) {
	var req PreviewIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	state, err := h.previewSvc.SubmitIdentity(c.Request.Context(), c.Param("id"), req.Name, req.Email)
	if err != nil {
		failPreview(c, err)
		return
	}
	ok(c, http.StatusOK, state)
}

// SendPreviewMessage godoc
// @ID          sendPreviewMessage
// @Summary     Send a chat message
// @Description Sends a message through the preview widget's pipeline and returns the resulting state.
// @Tags        Preview
// @Accept      json
// @Produce     json
//
// @Param       id    path  string  true  "Preview session ID"  format(uuid)
// @Param       body  body  handlers.PreviewMessageRequest  true  "Message payload"
//
// @Success     200  {object}  services.PreviewState
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Session not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Session disposed"
// @Router      /preview/sessions/{id}/messages [post]
func (h *Handlers) SendPreviewMessage(c *gin.Context) {
	var req PreviewMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	state, err := h.previewSvc.Send(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		failPreview(c, err)
		return
	}
	ok(c, http.StatusOK, state)
}

// ListPreviewMessages godoc
// @ID          listPreviewMessages
// @Summary     List conversation history (paginated)
// @Description Returns a page of the preview tenant's durable conversation history.
// @Tags        Preview
// @Produce     json
//
// @Param       id         path   string  true  "Preview session ID"  format(uuid)
// @Param       page       query  int     false "Page number"         minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"      minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListPreviewMessagesResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Session not found"
// @Router      /preview/sessions/{id}/messages [get]
func (h *Handlers) ListPreviewMessages(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.previewSvc.Messages(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		failPreview(c, err)
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	resp := ListPreviewMessagesResponse{
		Messages: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	}
	ok(c, http.StatusOK, resp)
}

// TogglePreview godoc
// @ID          togglePreview
// @Summary     Toggle panel visibility
// @Description Flips the preview widget between chat panel and launcher button.
// @Tags        Preview
// @Produce     json
//
// @Param       id  path  string  true  "Preview session ID"  format(uuid)
//
// @Success     200  {object}  services.PreviewState
// @Failure     404  {object}  handlers.ErrorResponse  "Session not found"
// @Router      /preview/sessions/{id}/toggle [post]
func (h *Handlers) TogglePreview(c *gin.Context) {
	state, err := h.previewSvc.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		failPreview(c, err)
		return
	}
	ok(c, http.StatusOK, state)
}

// DeletePreview godoc
// @ID          deletePreview
// @Summary     Dispose a preview widget
// @Description Tears the widget down and forgets the session. Durable tenant state survives.
// @Tags        Preview
//
// @Param       id  path  string  true  "Preview session ID"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Session not found"
// @Router      /preview/sessions/{id} [delete]
func (h *Handlers) DeletePreview(c *gin.Context) {
	if err := h.previewSvc.Dispose(c.Request.Context(), c.Param("id")); err != nil {
		failPreview(c, err)
		return
	}
	noContent(c)
}
