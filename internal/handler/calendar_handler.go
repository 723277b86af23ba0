package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nightstay/backend-go/internal/calendar"
	"github.com/nightstay/backend-go/internal/database/models"
	"github.com/nightstay/backend-go/internal/database/repository"
	"github.com/nightstay/backend-go/internal/database/service"
	"github.com/nightstay/backend-go/internal/datekey"
)

// CalendarHandler serves the month grid
type CalendarHandler struct {
	entries service.SleepEntryService
	store   calendar.Store
	loc     *time.Location
	now     func() time.Time
	logger  *slog.Logger
}

// NewCalendarHandler creates a new calendar handler. store remembers the shown month
// per user and may be nil.
func NewCalendarHandler(entries service.SleepEntryService, store calendar.Store, loc *time.Location, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{
		entries: entries,
		store:   store,
		loc:     loc,
		now:     time.Now,
		logger:  logger,
	}
}

type CalendarQuery struct {
	From     string `form:"from" binding:"omitempty,datekey"`
	To       string `form:"to" binding:"omitempty,datekey"`
	Month    string `form:"month"`
	Selected string `form:"selected" binding:"omitempty,datekey"`
	Nav      string `form:"nav" binding:"omitempty,oneof=prev next"`
}

type CalendarDeleteURI struct {
	Date string `uri:"date" binding:"required,datekey"`
}

func storeKey(userID uint) string {
	return fmt.Sprintf("calendar:month:%d", userID)
}

func (h *CalendarHandler) options(userID uint, q CalendarQuery) calendar.Options {
	opts := calendar.Options{
		Location: h.loc,
		Now:      h.now,
		Logger:   h.logger,
	}
	if h.store != nil {
		opts.Store = h.store
		opts.StoreKey = storeKey(userID)
	}
	if q.From != "" {
		start, _ := datekey.ParseIn(q.From, h.loc)
		opts.Start = &start
	}
	if q.To != "" {
		end, _ := datekey.ParseIn(q.To, h.loc)
		opts.End = &end
	}
	return opts
}

// Show renders one month. ?month=YYYY-MM jumps, then ?nav=prev|next pages.
func (h *CalendarHandler) Show(c *gin.Context) {
	var q CalendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	ctx := c.Request.Context()
	userID := getUserIDFromContext(c)

	selected := ""
	opts := h.options(userID, q)
	opts.OnSelect = func(key string) { selected = key }
	grid := calendar.New(ctx, opts)

	if q.Month != "" {
		month, err := datekey.ParseMonth(q.Month, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must use the YYYY-MM format"})
			return
		}
		h.remember(grid.Jump(ctx, month))
	}
	switch q.Nav {
	case "prev":
		h.remember(grid.Prev(ctx))
	case "next":
		h.remember(grid.Next(ctx))
	}

	if q.Selected != "" {
		grid.Select(q.Selected)
	}

	shown := grid.MonthRange()
	entries, err := h.entries.QueryRange(ctx, userID, shown.From, shown.To)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, grid.Render(markers(entries), selected))
}

// DeleteEntry removes the entry of the selected day from the grid.
// ?selected must name the same day and the day must lie within the bounds.
func (h *CalendarHandler) DeleteEntry(c *gin.Context) {
	var uri CalendarDeleteURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}
	var q CalendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	ctx := c.Request.Context()
	userID := getUserIDFromContext(c)

	existing, err := h.entries.QueryRange(ctx, userID, uri.Date, uri.Date)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	if len(existing) == 0 {
		handleServiceError(c, h.logger, repository.ErrEntryNotFound)
		return
	}

	var (
		deleted   string
		deleteErr error
	)
	opts := h.options(userID, q)
	// Deleting never moves the remembered month.
	opts.Store = nil
	opts.OnDelete = func(key string) {
		deleted, deleteErr = h.entries.DeleteEntry(ctx, userID, key)
	}
	grid := calendar.New(ctx, opts)

	if !grid.Delete(uri.Date, q.Selected, markers(existing)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be the selected day within the calendar range"})
		return
	}
	if deleteErr != nil {
		handleServiceError(c, h.logger, deleteErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "date": deleted})
}

func (h *CalendarHandler) remember(err error) {
	if err != nil {
		h.logger.Warn("⚠️ [CalendarHandler] Failed to remember month", "error", err)
	}
}

func markers(entries []models.SleepEntry) map[string]calendar.Marker {
	m := make(map[string]calendar.Marker, len(entries))
	for _, e := range entries {
		m[e.Date] = calendar.Marker{
			Label: e.Location.Name,
			Color: e.Location.Color,
		}
	}
	return m
}
