package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clickagent/backend/internal/middleware"
	"github.com/clickagent/backend/internal/security"
	"github.com/clickagent/backend/internal/session"
	"github.com/clickagent/backend/internal/shared/types"
	"github.com/clickagent/backend/internal/storage"
	"github.com/clickagent/backend/internal/task"
	"github.com/clickagent/backend/internal/tools"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	tasks    *task.Manager
	sessions *session.Manager
	registry *tools.Registry
	policy   *security.Policy
	store    storage.Store
}

// NewHandlers creates a new handler set.
func NewHandlers(
	tasks *task.Manager,
	sessions *session.Manager,
	registry *tools.Registry,
	policy *security.Policy,
	store storage.Store,
) *Handlers {
	return &Handlers{
		tasks:    tasks,
		sessions: sessions,
		registry: registry,
		policy:   policy,
		store:    store,
	}
}

// Root handles the service banner.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Browser Agent Backend",
		"version": "0.2.0",
	})
}

// Health handles detailed health check.
func (h *Handlers) Health(c *gin.Context) {
	taskStats, err := h.tasks.Stats(c.Request.Context(), nil)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	totalSessions, activeSessions, err := h.sessions.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"tasks":  taskStats,
		"sessions": gin.H{
			"total":  totalSessions,
			"active": activeSessions,
		},
	})
}

type submitRequest struct {
	Task    string            `json:"task" binding:"required"`
	Context map[string]string `json:"context"`
}

// SubmitTask accepts a task, runs the security pipeline, and
// schedules execution. A blocked task is a valid response, not an
// HTTP error.
func (h *Handlers) SubmitTask(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.tasks.Submit(c.Request.Context(), middleware.UserID(c), req.Task, req.Context)
	switch {
	case errors.Is(err, task.ErrEmptyTask), errors.Is(err, task.ErrTaskTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTask returns the status of one task owned by the caller.
func (h *Handlers) GetTask(c *gin.Context) {
	view, err := h.tasks.GetTask(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	switch {
	case errors.Is(err, task.ErrInvalidTaskID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetHistory returns the caller's tasks newest first.
func (h *Handlers) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	views, total, err := h.tasks.History(c.Request.Context(), middleware.UserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":  views,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetAuditTrail returns the audit entries for a task owned by the
// caller, including blocked submissions, which leave a trail but no
// task record.
func (h *Handlers) GetAuditTrail(c *gin.Context) {
	taskID := c.Param("id")
	entries, err := h.tasks.Trail(c.Request.Context(), taskID, middleware.UserID(c))
	switch {
	case errors.Is(err, task.ErrInvalidTaskID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task_id": taskID,
		"entries": entries,
	})
}

// AgentStatus summarizes the agent's task and session load.
func (h *Handlers) AgentStatus(c *gin.Context) {
	taskStats, err := h.tasks.Stats(c.Request.Context(), nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	totalSessions, activeSessions, err := h.sessions.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": taskStats,
		"sessions": gin.H{
			"total":  totalSessions,
			"active": activeSessions,
		},
		"security": gin.H{
			"data_protection":   true,
			"no_account_access": true,
			"no_payment_access": true,
			"sandbox_active":    true,
		},
	})
}

// SecurityInfo exposes the capability policy and classifier surface so
// clients can explain rejections without submitting probe tasks.
func (h *Handlers) SecurityInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"policy":             h.policy,
		"blocked_categories": security.Categories(),
	})
}

// ListTools returns the agent's tool catalog.
func (h *Handlers) ListTools(c *gin.Context) {
	toolList := h.registry.List()
	c.JSON(http.StatusOK, gin.H{
		"tools": toolList,
		"count": len(toolList),
	})
}

type bookmarkRequest struct {
	Title string `json:"title" binding:"required"`
	URL   string `json:"url" binding:"required"`
}

// CreateBookmark saves a page reference for the caller.
func (h *Handlers) CreateBookmark(c *gin.Context) {
	var req bookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url must be http or https"})
		return
	}

	bookmark := &types.Bookmark{
		ID:        uuid.NewString(),
		UserID:    middleware.UserID(c),
		Title:     req.Title,
		URL:       req.URL,
		CreatedAt: time.Now(),
	}
	if err := h.store.CreateBookmark(c.Request.Context(), bookmark); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, bookmark)
}

// ListBookmarks returns the caller's bookmarks.
func (h *Handlers) ListBookmarks(c *gin.Context) {
	bookmarks, err := h.store.ListBookmarksByUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookmarks": bookmarks,
		"count":     len(bookmarks),
	})
}

// DeleteBookmark removes one of the caller's bookmarks.
func (h *Handlers) DeleteBookmark(c *gin.Context) {
	err := h.store.DeleteBookmark(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "bookmark not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
