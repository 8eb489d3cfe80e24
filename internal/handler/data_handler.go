package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"business-crm-go/pkg/model"
)

// ReferenceData serves the geography tree and the category list
type ReferenceData interface {
	Countries(ctx context.Context) ([]model.Country, error)
	Categories(ctx context.Context) ([]model.Category, error)
}

// Pinger reports database reachability; *sqlx.DB satisfies it
type Pinger interface {
	PingContext(ctx context.Context) error
}

// DataHandler serves the start-up payload, stats and health
type DataHandler struct {
	businesses BusinessStore
	reference  ReferenceData
	db         Pinger
	errors     *ErrorResponder
}

// NewDataHandler creates a new data handler
func NewDataHandler(businesses BusinessStore, reference ReferenceData, db Pinger, errors *ErrorResponder) *DataHandler {
	return &DataHandler{
		businesses: businesses,
		reference:  reference,
		db:         db,
		errors:     errors,
	}
}

// GetData handles GET /data
func (h *DataHandler) GetData(c *gin.Context) {
	ctx := c.Request.Context()

	businesses, err := h.businesses.List(ctx, model.BusinessFilter{})
	if err != nil {
		h.errors.Respond(c, err, "Failed to load data")
		return
	}
	countries, err := h.reference.Countries(ctx)
	if err != nil {
		h.errors.Respond(c, err, "Failed to load data")
		return
	}
	categories, err := h.reference.Categories(ctx)
	if err != nil {
		h.errors.Respond(c, err, "Failed to load data")
		return
	}

	c.JSON(http.StatusOK, model.DataResponse{
		Businesses: businesses,
		Countries:  countries,
		Categories: categories,
	})
}

// GetStats handles GET /stats
func (h *DataHandler) GetStats(c *gin.Context) {
	stats, err := h.businesses.Stats(c.Request.Context())
	if err != nil {
		h.errors.Respond(c, err, "Failed to fetch stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Healthz handles GET /healthz
func (h *DataHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
