package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
)

type CompletionHandler struct {
	svc   *services.CompletionService
	clock domain.Clock
}

func NewCompletionHandler(svc *services.CompletionService, clock domain.Clock) *CompletionHandler {
	return &CompletionHandler{svc: svc, clock: clock}
}

// An empty completion_date means today on the server calendar.
type completeRequest struct {
	CompletionDate string `json:"completion_date" binding:"omitempty,civildate"`
}

func (h *CompletionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/habits/:id/complete", h.Complete)
	router.DELETE("/habits/:id/complete/:date", h.Uncomplete)
}

// Complete godoc
// @Summary Mark a habit done for a day
// @Tags completions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Param body body completeRequest false "Completion date (YYYY-MM-DD), defaults to today"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /habits/{id}/complete [post]
func (h *CompletionHandler) Complete(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	// An empty body, chunked or not, completes today.
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		handleBindError(c, err)
		return
	}

	date := h.clock.Today()
	if req.CompletionDate != "" {
		parsed, err := domain.ParseDate(req.CompletionDate)
		if err != nil {
			handleError(c, err)
			return
		}
		date = parsed
	}

	if _, err := h.svc.Complete(c.Request.Context(), c.Param("id"), userID, date); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Habit completed successfully", "completion_date": date})
}

// Uncomplete godoc
// @Summary Remove the completion of a day
// @Tags completions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Param date path string true "Completion date (YYYY-MM-DD)"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /habits/{id}/complete/{date} [delete]
func (h *CompletionHandler) Uncomplete(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	date, err := domain.ParseDate(c.Param("date"))
	if err != nil {
		handleError(c, err)
		return
	}

	if err := h.svc.Uncomplete(c.Request.Context(), c.Param("id"), userID, date); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Completion removed successfully"})
}
