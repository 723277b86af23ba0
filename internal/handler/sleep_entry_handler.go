package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nightstay/backend-go/internal/database/service"
)

// SleepEntryHandler handles HTTP requests for sleep entries
type SleepEntryHandler struct {
	service service.SleepEntryService
	logger  *slog.Logger
}

// NewSleepEntryHandler creates a new sleep entry handler
func NewSleepEntryHandler(service service.SleepEntryService, logger *slog.Logger) *SleepEntryHandler {
	return &SleepEntryHandler{
		service: service,
		logger:  logger,
	}
}

// RangeQuery is the inclusive ?from=&to= filter. Checks happen in the service so the
// error names the bound that failed.
type RangeQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

type UpsertEntryRequest struct {
	Date       string `json:"date" binding:"required,datekey"`
	LocationID string `json:"location_id" binding:"required,uuid"`
}

type DeleteEntryQuery struct {
	Date string `form:"date" binding:"required,datekey"`
}

// List returns the caller's entries in the range, newest first
func (h *SleepEntryHandler) List(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	entries, err := h.service.QueryRange(c.Request.Context(), getUserIDFromContext(c), q.From, q.To)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// Upsert records where the caller slept on a day
func (h *SleepEntryHandler) Upsert(c *gin.Context) {
	var req UpsertEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	locationID, err := uuid.Parse(req.LocationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location_id must be a valid id"})
		return
	}

	entry, err := h.service.UpsertEntry(c.Request.Context(), getUserIDFromContext(c), req.Date, locationID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *SleepEntryHandler) Delete(c *gin.Context) {
	var q DeleteEntryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	date, err := h.service.DeleteEntry(c.Request.Context(), getUserIDFromContext(c), q.Date)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "date": date})
}
