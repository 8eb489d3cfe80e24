package business

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"business-crm-go/internal/database"
	"business-crm-go/internal/metrics"
	"business-crm-go/pkg/model"
)

const businessColumns = `b.id, b.name, b.phone, b.category_id, b.sent, b.country_id,
       b.province_id, b.city_id, b.contact_count, b.last_contacted_at,
       b.created_at, b.updated_at`

// sortColumns whitelists the sortable listing columns
var sortColumns = map[string]string{
	"id":                "b.id",
	"name":              "b.name",
	"phone":             "b.phone",
	"category":          "cat.name",
	"city":              "ci.name",
	"province":          "pr.name",
	"contact_count":     "b.contact_count",
	"last_contacted_at": "b.last_contacted_at",
}

// BusinessService handles business operations
type BusinessService struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewBusinessService creates a new business service
func NewBusinessService(db *sqlx.DB, logger *slog.Logger) *BusinessService {
	return &BusinessService{
		db:     db,
		logger: logger,
	}
}

// List returns the businesses matching filter
func (s *BusinessService) List(ctx context.Context, filter model.BusinessFilter) ([]model.Business, error) {
	query, args := buildListQuery(filter)

	businesses := []model.Business{}
	if err := s.db.SelectContext(ctx, &businesses, query, args...); err != nil {
		return nil, model.NewStorageError("select businesses", err)
	}
	return businesses, nil
}

func buildListQuery(filter model.BusinessFilter) (string, []interface{}) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	refs := []struct {
		column string
		value  string
	}{
		{"b.country_id", filter.CountryID},
		{"b.province_id", filter.ProvinceID},
		{"b.city_id", filter.CityID},
		{"b.category_id", filter.CategoryID},
	}
	for _, ref := range refs {
		if id := model.NormalizeRef(ref.value); id != nil {
			whereClause += fmt.Sprintf(" AND %s = $%d", ref.column, argIndex)
			args = append(args, *id)
			argIndex++
		}
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		whereClause += fmt.Sprintf(" AND b.name ILIKE $%d", argIndex)
		args = append(args, "%"+search+"%")
		argIndex++
	}

	sortBy, ok := sortColumns[filter.SortBy]
	if !ok {
		sortBy = "b.id"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "ASC"
	}

	query := fmt.Sprintf(`
        SELECT %s
        FROM businesses b
        LEFT JOIN categories cat ON cat.id = b.category_id
        LEFT JOIN cities ci ON ci.id = b.city_id
        LEFT JOIN provinces pr ON pr.id = b.province_id
        %s
        ORDER BY %s %s NULLS LAST, b.id
    `, businessColumns, whereClause, sortBy, sortOrder)

	return query, args
}

// Get gets a single business by ID
func (s *BusinessService) Get(ctx context.Context, id int) (*model.Business, error) {
	var business model.Business
	err := s.db.GetContext(ctx, &business, fmt.Sprintf(`
        SELECT %s
        FROM businesses b
        WHERE b.id = $1
    `, businessColumns), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &model.NotFoundError{Entity: "business", ID: id}
		}
		return nil, model.NewStorageError("select business", err)
	}
	return &business, nil
}

// Create inserts a business and returns its generated id
func (s *BusinessService) Create(ctx context.Context, req model.BusinessRequest) (int, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	var id int
	err := s.db.QueryRowxContext(ctx, `
        INSERT INTO businesses (name, phone, category_id, sent, country_id, province_id, city_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `, strings.TrimSpace(req.Name), strings.TrimSpace(req.Phone), model.NormalizeRef(req.CategoryID), req.Sent,
		model.NormalizeRef(req.CountryID), model.NormalizeRef(req.ProvinceID), model.NormalizeRef(req.CityID)).Scan(&id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return 0, &model.ValidationError{Field: "reference", Message: "unknown category or location"}
		}
		return 0, model.NewStorageError("insert business", err)
	}

	metrics.BusinessesCreatedTotal.Inc()
	return id, nil
}

// Update replaces the descriptive fields of a business. The contact counter
// and last contact timestamp belong to the contact workflow and are not touched.
func (s *BusinessService) Update(ctx context.Context, req model.BusinessRequest) error {
	if req.ID <= 0 {
		return &model.ValidationError{Field: "id", Message: "id is required"}
	}
	if err := req.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
        UPDATE businesses
        SET name = $1, phone = $2, category_id = $3, sent = $4,
            country_id = $5, province_id = $6, city_id = $7, updated_at = NOW()
        WHERE id = $8
    `, strings.TrimSpace(req.Name), strings.TrimSpace(req.Phone), model.NormalizeRef(req.CategoryID), req.Sent,
		model.NormalizeRef(req.CountryID), model.NormalizeRef(req.ProvinceID), model.NormalizeRef(req.CityID), req.ID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return &model.ValidationError{Field: "reference", Message: "unknown category or location"}
		}
		return model.NewStorageError("update business", err)
	}

	return s.requireRow(result, "update business", req.ID)
}

// ToggleSent flips the sent flag and returns the new value
func (s *BusinessService) ToggleSent(ctx context.Context, id int) (bool, error) {
	var sent bool
	err := s.db.QueryRowxContext(ctx, `
        UPDATE businesses
        SET sent = NOT sent, updated_at = NOW()
        WHERE id = $1
        RETURNING sent
    `, id).Scan(&sent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, &model.NotFoundError{Entity: "business", ID: id}
		}
		return false, model.NewStorageError("toggle sent", err)
	}
	return sent, nil
}

// Delete removes a business; its contact history goes with it through the
// ON DELETE CASCADE foreign key.
func (s *BusinessService) Delete(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM businesses WHERE id = $1", id)
	if err != nil {
		return model.NewStorageError("delete business", err)
	}
	if err := s.requireRow(result, "delete business", id); err != nil {
		return err
	}

	metrics.BusinessesDeletedTotal.Inc()
	return nil
}

// Stats counts the distinct locations in use and the total number of businesses
func (s *BusinessService) Stats(ctx context.Context) (*model.BusinessStats, error) {
	var stats model.BusinessStats
	err := s.db.GetContext(ctx, &stats, `
        SELECT COUNT(DISTINCT country_id)  AS countries,
               COUNT(DISTINCT province_id) AS provinces,
               COUNT(DISTINCT city_id)     AS cities,
               COUNT(*)                    AS businesses
        FROM businesses
    `)
	if err != nil {
		return nil, model.NewStorageError("business stats", err)
	}
	return &stats, nil
}

func (s *BusinessService) requireRow(result sql.Result, op string, id int) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return model.NewStorageError(op, err)
	}
	if rows == 0 {
		s.logger.Debug("business not found", "op", op, "business_id", id)
		return &model.NotFoundError{Entity: "business", ID: id}
	}
	return nil
}
