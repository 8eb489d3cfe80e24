package model

import (
	"strings"
	"time"
)

// Business represents a negocio tracked by the CRM
type Business struct {
	ID              int        `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Phone           string     `json:"phone" db:"phone"`
	CategoryID      *string    `json:"category_id" db:"category_id"`
	Sent            bool       `json:"sent" db:"sent"`
	CountryID       *string    `json:"country_id" db:"country_id"`
	ProvinceID      *string    `json:"province_id" db:"province_id"`
	CityID          *string    `json:"city_id" db:"city_id"`
	ContactCount    int        `json:"contact_count" db:"contact_count"`
	LastContactedAt *time.Time `json:"last_contacted_at" db:"last_contacted_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// BusinessRequest carries the descriptive fields of a business for create and update.
// ID is ignored on create and required on update.
type BusinessRequest struct {
	ID         int    `json:"id"`
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone"`
	CategoryID string `json:"category_id"`
	Sent       bool   `json:"sent"`
	CountryID  string `json:"country_id"`
	ProvinceID string `json:"province_id"`
	CityID     string `json:"city_id"`
}

// Validate performs the presence checks shared by create and update
func (r BusinessRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	return nil
}

// BusinessFilter narrows and orders a business listing
type BusinessFilter struct {
	CountryID  string `form:"country"`
	ProvinceID string `form:"province"`
	CityID     string `form:"city"`
	CategoryID string `form:"category"`
	Search     string `form:"search"`
	SortBy     string `form:"sort"`
	SortOrder  string `form:"order"`
}

// BusinessListResponse represents the response for business listing
type BusinessListResponse struct {
	Businesses []Business `json:"businesses"`
}

// BusinessStats summarises the geographic spread of the stored businesses
type BusinessStats struct {
	Countries  int `json:"countries" db:"countries"`
	Provinces  int `json:"provinces" db:"provinces"`
	Cities     int `json:"cities" db:"cities"`
	Businesses int `json:"businesses" db:"businesses"`
}

// NormalizeRef lower-cases and trims a reference id; blank values become nil
// so they are stored as NULL instead of dangling references.
func NormalizeRef(id string) *string {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return nil
	}
	return &id
}
