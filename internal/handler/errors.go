package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"business-crm-go/pkg/model"
)

// ErrorResponder turns service errors into JSON error responses
type ErrorResponder struct {
	logger        *slog.Logger
	exposeDetails bool
}

// NewErrorResponder creates a new error responder. When exposeDetails is set,
// storage failures carry their underlying cause in a "details" field.
func NewErrorResponder(logger *slog.Logger, exposeDetails bool) *ErrorResponder {
	return &ErrorResponder{
		logger:        logger,
		exposeDetails: exposeDetails,
	}
}

// Respond writes the status matching err: 400 for validation, 404 for a
// missing entity and 500 for everything else.
func (r *ErrorResponder) Respond(c *gin.Context, err error, message string) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
		return
	}

	var nf *model.NotFoundError
	if errors.As(err, &nf) {
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
		return
	}

	r.logger.Error(message,
		"error", err,
		"path", c.Request.URL.Path,
		"request_id", c.GetString(requestIDKey),
	)
	body := gin.H{"error": message}
	if r.exposeDetails {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}
