package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"business-crm-go/pkg/model"
)

// ContactRegistrar records contact events and reads the history back
type ContactRegistrar interface {
	RegisterContact(ctx context.Context, req model.ContactRequest) (*model.ContactHistoryEntry, error)
	History(ctx context.Context, businessID int) ([]model.ContactHistoryEntry, error)
}

// ContactHandler handles the contact workflow endpoints
type ContactHandler struct {
	contacts ContactRegistrar
	errors   *ErrorResponder
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contacts ContactRegistrar, errors *ErrorResponder) *ContactHandler {
	return &ContactHandler{
		contacts: contacts,
		errors:   errors,
	}
}

// RegisterContact handles POST /businesses/contact
func (h *ContactHandler) RegisterContact(c *gin.Context) {
	var req model.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.contacts.RegisterContact(c.Request.Context(), req)
	if err != nil {
		h.errors.Respond(c, err, "Failed to register contact")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Contact registered successfully",
		"entry":   entry,
	})
}

// GetHistory handles GET /businesses/:id/history
func (h *ContactHandler) GetHistory(c *gin.Context) {
	id, ok := businessID(c)
	if !ok {
		return
	}

	history, err := h.contacts.History(c.Request.Context(), id)
	if err != nil {
		h.errors.Respond(c, err, "Failed to fetch contact history")
		return
	}

	c.JSON(http.StatusOK, model.ContactHistoryResponse{History: history})
}
