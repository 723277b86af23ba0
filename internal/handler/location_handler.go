package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nightstay/backend-go/internal/database/service"
)

// LocationHandler handles HTTP requests for locations
type LocationHandler struct {
	service service.LocationService
	logger  *slog.Logger
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(service service.LocationService, logger *slog.Logger) *LocationHandler {
	return &LocationHandler{
		service: service,
		logger:  logger,
	}
}

type CreateLocationRequest struct {
	Name  string  `json:"name" binding:"required"`
	Color *string `json:"color"`
}

// UpdateLocationRequest carries only the fields to change
type UpdateLocationRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// List returns the caller's locations, oldest first
func (h *LocationHandler) List(c *gin.Context) {
	locations, err := h.service.List(c.Request.Context(), getUserIDFromContext(c))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, locations)
}

func (h *LocationHandler) Create(c *gin.Context) {
	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	location, err := h.service.Create(c.Request.Context(), getUserIDFromContext(c), req.Name, req.Color)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, location)
}

func (h *LocationHandler) Update(c *gin.Context) {
	id, err := h.parseLocationID(c)
	if err != nil {
		return
	}

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	location, err := h.service.Update(c.Request.Context(), getUserIDFromContext(c), id, req.Name, req.Color)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

func (h *LocationHandler) Delete(c *gin.Context) {
	id, err := h.parseLocationID(c)
	if err != nil {
		return
	}

	if err := h.service.Delete(c.Request.Context(), getUserIDFromContext(c), id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *LocationHandler) parseLocationID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("location_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid location ID"})
		return uuid.Nil, err
	}
	return id, nil
}
