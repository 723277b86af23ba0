package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nightstay/backend-go/internal/database/service"
)

// DefaultRangeDays is the range the dashboard opens with
const DefaultRangeDays = 60

// StatsHandler handles night count and date range requests
type StatsHandler struct {
	service service.StatsService
	now     func() time.Time
	logger  *slog.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service service.StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		now:     time.Now,
		logger:  logger,
	}
}

// Summary returns nights per location for ?from=&to=
func (h *StatsHandler) Summary(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	summary, err := h.service.Summarize(c.Request.Context(), getUserIDFromContext(c), q.From, q.To)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// DateRanges returns the range for ?days=N, or the presets when days is absent
func (h *StatsHandler) DateRanges(c *gin.Context) {
	now := h.now()

	daysParam := c.Query("days")
	if daysParam == "" {
		r, _ := h.service.RangeBack(now, DefaultRangeDays)
		c.JSON(http.StatusOK, gin.H{
			"default": r,
			"presets": h.service.Presets(now),
		})
		return
	}

	days, err := strconv.Atoi(daysParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a whole number"})
		return
	}

	r, err := h.service.RangeBack(now, days)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, r)
}
