package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
)

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	stats := r.Group("/stats")
	{
		stats.GET("/overview", h.Overview)
		stats.GET("/calendar", h.Calendar)
	}
}

// Overview godoc
// @Summary Aggregate streak statistics and the last seven days
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.StatsOverview
// @Router /stats/overview [get]
func (h *StatsHandler) Overview(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	overview, err := h.svc.Overview(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

func optionalDate(c *gin.Context, name string) (domain.Date, bool) {
	raw := c.Query(name)
	if raw == "" {
		return domain.Date{}, true
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " format, expected YYYY-MM-DD"})
		return domain.Date{}, false
	}
	return d, true
}

// Calendar godoc
// @Summary Completions grouped by day
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param from query string false "First day (YYYY-MM-DD), defaults to one year before to"
// @Param to query string false "Last day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.CalendarData
// @Failure 400 {object} map[string]string
// @Router /stats/calendar [get]
func (h *StatsHandler) Calendar(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	from, ok := optionalDate(c, "from")
	if !ok {
		return
	}
	to, ok := optionalDate(c, "to")
	if !ok {
		return
	}

	data, err := h.svc.Calendar(c.Request.Context(), userID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}
