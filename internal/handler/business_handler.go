package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"business-crm-go/pkg/model"
)

// BusinessStore is the business persistence used by the handlers
type BusinessStore interface {
	List(ctx context.Context, filter model.BusinessFilter) ([]model.Business, error)
	Get(ctx context.Context, id int) (*model.Business, error)
	Create(ctx context.Context, req model.BusinessRequest) (int, error)
	Update(ctx context.Context, req model.BusinessRequest) error
	ToggleSent(ctx context.Context, id int) (bool, error)
	Delete(ctx context.Context, id int) error
	Stats(ctx context.Context) (*model.BusinessStats, error)
}

// BusinessHandler handles business-related HTTP requests
type BusinessHandler struct {
	businesses BusinessStore
	errors     *ErrorResponder
}

// NewBusinessHandler creates a new business handler
func NewBusinessHandler(businesses BusinessStore, errors *ErrorResponder) *BusinessHandler {
	return &BusinessHandler{
		businesses: businesses,
		errors:     errors,
	}
}

// ListBusinesses handles GET /businesses
func (h *BusinessHandler) ListBusinesses(c *gin.Context) {
	var filter model.BusinessFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	businesses, err := h.businesses.List(c.Request.Context(), filter)
	if err != nil {
		h.errors.Respond(c, err, "Failed to fetch businesses")
		return
	}

	c.JSON(http.StatusOK, model.BusinessListResponse{Businesses: businesses})
}

// GetBusiness handles GET /businesses/:id
func (h *BusinessHandler) GetBusiness(c *gin.Context) {
	id, ok := businessID(c)
	if !ok {
		return
	}

	business, err := h.businesses.Get(c.Request.Context(), id)
	if err != nil {
		h.errors.Respond(c, err, "Failed to fetch business")
		return
	}

	c.JSON(http.StatusOK, business)
}

// CreateBusiness handles POST /businesses
func (h *BusinessHandler) CreateBusiness(c *gin.Context) {
	var req model.BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.businesses.Create(c.Request.Context(), req)
	if err != nil {
		h.errors.Respond(c, err, "Failed to create business")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Business created successfully",
		"id":      id,
	})
}

// UpdateBusiness handles PUT /businesses. The id travels in the body.
func (h *BusinessHandler) UpdateBusiness(c *gin.Context) {
	var req model.BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.businesses.Update(c.Request.Context(), req); err != nil {
		h.errors.Respond(c, err, "Failed to update business")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Business updated successfully",
		"id":      req.ID,
	})
}

// ToggleSent handles PATCH /businesses/:id/sent
func (h *BusinessHandler) ToggleSent(c *gin.Context) {
	id, ok := businessID(c)
	if !ok {
		return
	}

	sent, err := h.businesses.ToggleSent(c.Request.Context(), id)
	if err != nil {
		h.errors.Respond(c, err, "Failed to update business")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "sent": sent})
}

// DeleteBusiness handles DELETE /businesses/:id
func (h *BusinessHandler) DeleteBusiness(c *gin.Context) {
	id, ok := businessID(c)
	if !ok {
		return
	}

	if err := h.businesses.Delete(c.Request.Context(), id); err != nil {
		h.errors.Respond(c, err, "Failed to delete business")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Business deleted successfully"})
}

// businessID parses the :id path parameter, answering 400 when it is not a
// positive integer.
func businessID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid business ID"})
		return 0, false
	}
	return id, true
}
