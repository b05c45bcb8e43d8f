package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-study-backend/internal/services"
)

// GetStats godoc
// @ID          getStats
// @Summary     Get assignment statistics
// @Description Returns aggregate counts and the most recent assignments. "Completed today" is evaluated against the server's local calendar day.
// @Tags        Stats
// @Produce     json
// @Success     200  {object}  services.StatsSummary
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /stats [get]
func (h *Handlers) GetStats(c *gin.Context) {
	items, err := h.assignSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, services.Summarize(items, time.Now()))
}
