package model

import (
	"strings"
	"time"
)

// ContactHistoryEntry is one logged recontacto against a business
type ContactHistoryEntry struct {
	ID          int       `json:"id" db:"id"`
	BusinessID  int       `json:"business_id" db:"business_id"`
	ContactedAt time.Time `json:"contacted_at" db:"contacted_at"`
	Medium      string    `json:"medium" db:"medium"`
	Notes       string    `json:"notes" db:"notes"`
}

// ContactRequest represents the request to register a contact
type ContactRequest struct {
	BusinessID int    `json:"business_id"`
	Medium     string `json:"medium"`
	Notes      string `json:"notes"`
}

// Validate checks that every field is present and non-blank
func (r ContactRequest) Validate() error {
	if r.BusinessID <= 0 {
		return &ValidationError{Field: "business_id", Message: "business_id is required"}
	}
	if strings.TrimSpace(r.Medium) == "" {
		return &ValidationError{Field: "medium", Message: "medium is required"}
	}
	if strings.TrimSpace(r.Notes) == "" {
		return &ValidationError{Field: "notes", Message: "notes is required"}
	}
	return nil
}

// ContactHistoryResponse wraps the history of a business
type ContactHistoryResponse struct {
	History []ContactHistoryEntry `json:"history"`
}
