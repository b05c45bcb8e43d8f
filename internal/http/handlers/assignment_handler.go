// Assignment HTTP handlers.
//
// This file exposes REST endpoints for assignment resources:
//   - POST   /assignments              (create)
//   - GET    /assignments              (list, paginated, ETag support)
//   - GET    /assignments/search       (substring filter)
//   - GET    /assignments/stream       (live snapshots over SSE)
//   - POST   /assignments/{id}/toggle  (flip completion status)
//   - DELETE /assignments/{id}         (confirmed delete)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-study-backend/internal/domain"
	"github.com/tbourn/go-study-backend/internal/http/middleware"
	"github.com/tbourn/go-study-backend/internal/repo"
	"github.com/tbourn/go-study-backend/internal/services"
	"github.com/tbourn/go-study-backend/internal/utils"
	"github.com/tbourn/go-study-backend/internal/watch"
)

//
// Service contracts (context-aware)
//

// AssignmentService defines the assignment operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use and honor the
// provided context.
type AssignmentService interface {
	Create(ctx context.Context, userID, title, description, subject string, dueDate *time.Time) (*domain.Assignment, error)
	List(ctx context.Context, userID string) ([]domain.Assignment, error)
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Assignment, int64, error)
	Toggle(ctx context.Context, userID, id string) (*domain.Assignment, error)
	Delete(ctx context.Context, userID, id string, confirm services.ConfirmFunc) error
	Search(ctx context.Context, userID, query string) ([]domain.Assignment, error)
	Subscribe(ctx context.Context, userID string) (*watch.Subscription, error)
}

//
// DTOs
//

// CreateAssignmentRequest is the JSON payload for creating an assignment.
type CreateAssignmentRequest struct {
	Title       string     `json:"title" binding:"required" example:"Read chapter 4"`
	Description string     `json:"description" example:"Sections 4.1 through 4.3"`
	Subject     string     `json:"subject" example:"History"`
	DueDate     *time.Time `json:"due_date,omitempty" example:"2026-09-12T00:00:00Z"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListAssignmentsResponse wraps a page of assignments plus pagination data.
type ListAssignmentsResponse struct {
	Assignments []domain.Assignment `json:"assignments"`
	Pagination  Pagination          `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page/page_size query params.
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
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

// userID returns the authenticated user from the Gin context, falling back
// to the X-User-ID header (used by tests) and finally a demo identity.
func userID(c *gin.Context) string {
	if uid := middleware.UserID(c); uid != "" {
		return uid
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// Handlers
//

// CreateAssignment godoc
// @ID          createAssignment
// @Summary     Create an assignment
// @Description Creates an assignment for the current user. New assignments always start pending.
// @Tags        Assignments
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.CreateAssignmentRequest  true  "Create payload"
// @Success     201  {object}  domain.Assignment
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /assignments [post]
func (h *Handlers) CreateAssignment(c *gin.Context) {
	var req CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	a, err := h.assignSvc.Create(c.Request.Context(), userID(c), req.Title, req.Description, req.Subject, req.DueDate)
	if errors.Is(err, services.ErrEmptyTitle) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "title is required")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, a)
}

// ListAssignments godoc
// @ID          listAssignments
// @Summary     List assignments (paginated)
// @Description Returns a page of the user's assignments, most recently updated first. Supports weak ETag via If-None-Match.
// @Tags        Assignments
// @Produce     json
// @Param       page       query  int  false  "Page number"    minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page" minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListAssignmentsResponse
// @Success     304  {string}  string "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /assignments [get]
func (h *Handlers) ListAssignments(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check, best effort.
	if db := h.serviceDB(); db != nil {
		count, maxTS, err := repo.AssignmentsStats(ctx, db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"assignments:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.assignSvc.ListPage(ctx, uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListAssignmentsResponse{
		Assignments: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// serviceDB exposes the assignment service's DB handle for the ETag
// pre-check when the concrete service is in use.
func (h *Handlers) serviceDB() *gorm.DB {
	if svc, okType := h.assignSvc.(*services.AssignmentService); okType {
		return svc.DB
	}
	return nil
}

// SearchAssignments godoc
// @ID          searchAssignments
// @Summary     Search assignments
// @Description Case-insensitive substring match over title, subject, and description. A blank query returns everything.
// @Tags        Assignments
// @Produce     json
// @Param       q  query  string  false  "Search query"
// @Success     200  {array}   domain.Assignment
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /assignments/search [get]
func (h *Handlers) SearchAssignments(c *gin.Context) {
	items, err := h.assignSvc.Search(c.Request.Context(), userID(c), c.Query("q"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// ToggleAssignment godoc
// @ID          toggleAssignment
// @Summary     Toggle assignment completion
// @Description Flips pending/completed and refreshes the update timestamp. Returns the stored record.
// @Tags        Assignments
// @Produce     json
// @Param       id  path  string  true  "Assignment ID (UUID)" format(uuid)
// @Success     200  {object}  domain.Assignment
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /assignments/{id}/toggle [post]
func (h *Handlers) ToggleAssignment(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "assignment id must be a UUID")
		return
	}

	a, err := h.assignSvc.Toggle(c.Request.Context(), userID(c), id)
	if errors.Is(err, services.ErrAssignmentNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "assignment not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, a)
}

// DeleteAssignment godoc
// @ID          deleteAssignment
// @Summary     Delete an assignment
// @Description Permanently removes an assignment. The caller must confirm with ?confirm=true.
// @Tags        Assignments
// @Param       id       path   string  true  "Assignment ID (UUID)" format(uuid)
// @Param       confirm  query  bool    true  "Must be true"
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request or unconfirmed"
// @Failure     404  {object}  handlers.ErrorResponse "Not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /assignments/{id} [delete]
func (h *Handlers) DeleteAssignment(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "assignment id must be a UUID")
		return
	}

	confirmed := strings.EqualFold(c.Query("confirm"), "true")
	err := h.assignSvc.Delete(c.Request.Context(), userID(c), id, func() bool { return confirmed })
	switch {
	case errors.Is(err, services.ErrDeleteNotConfirmed):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "deletion requires confirm=true")
	case errors.Is(err, services.ErrAssignmentNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "assignment not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		noContent(c)
	}
}

// StreamAssignments godoc
// @ID          streamAssignments
// @Summary     Live assignment snapshots (SSE)
// @Description Server-sent event stream. Emits a full snapshot immediately and another after every change, coalescing bursts to the latest state.
// @Tags        Assignments
// @Produce     text/event-stream
// @Success     200  {string}  string "event stream"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /assignments/stream [get]
func (h *Handlers) StreamAssignments(c *gin.Context) {
	ctx := c.Request.Context()
	sub, err := h.assignSvc.Subscribe(ctx, userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case snap, open := <-sub.C:
			if !open {
				return false
			}
			data, err := json.Marshal(snap)
			if err != nil {
				return false
			}
			c.SSEvent("snapshot", string(data))
			return true
		case <-ctx.Done():
			return false
		}
	})
}
