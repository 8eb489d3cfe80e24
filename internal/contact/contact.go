package contact

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"business-crm-go/internal/database"
	"business-crm-go/internal/metrics"
	"business-crm-go/pkg/model"
)

// ContactService records recontactos and reads them back
type ContactService struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewContactService creates a new contact service
func NewContactService(db *sqlx.DB, logger *slog.Logger) *ContactService {
	return &ContactService{
		db:     db,
		logger: logger,
	}
}

// RegisterContact appends a history entry and bumps the business counter and
// last contact timestamp in one transaction. Either both writes commit or
// neither does; an unknown business rolls back with a NotFoundError.
func (s *ContactService) RegisterContact(ctx context.Context, req model.ContactRequest) (*model.ContactHistoryEntry, error) {
	if err := req.Validate(); err != nil {
		metrics.ContactRegistrationFailuresTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	entry, err := s.registerTx(ctx, req)
	if err != nil {
		var nf *model.NotFoundError
		if errors.As(err, &nf) {
			metrics.ContactRegistrationFailuresTotal.WithLabelValues("not_found").Inc()
		} else {
			metrics.ContactRegistrationFailuresTotal.WithLabelValues("storage").Inc()
			s.logger.Error("contact registration rolled back", "business_id", req.BusinessID, "error", err)
		}
		return nil, err
	}

	metrics.ContactsRegisteredTotal.Inc()
	s.logger.Info("contact registered",
		"business_id", entry.BusinessID,
		"history_id", entry.ID,
		"medium", entry.Medium,
	)
	return entry, nil
}

func (s *ContactService) registerTx(ctx context.Context, req model.ContactRequest) (*model.ContactHistoryEntry, error) {
	notFound := &model.NotFoundError{Entity: "business", ID: req.BusinessID}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, model.NewStorageError("begin contact transaction", err)
	}
	// no-op once committed; releases the connection on every other path
	defer tx.Rollback()

	var entry model.ContactHistoryEntry
	err = tx.QueryRowxContext(ctx, `
        INSERT INTO contact_history (business_id, contacted_at, medium, notes)
        VALUES ($1, NOW(), $2, $3)
        RETURNING id, business_id, contacted_at, medium, notes
    `, req.BusinessID, strings.TrimSpace(req.Medium), strings.TrimSpace(req.Notes)).StructScan(&entry)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, notFound
		}
		return nil, model.NewStorageError("insert contact history", err)
	}

	// Relative update so concurrent registrations never lose an increment.
	// GREATEST keeps the newest timestamp when transactions commit out of order.
	result, err := tx.ExecContext(ctx, `
        UPDATE businesses
        SET contact_count = COALESCE(contact_count, 0) + 1,
            last_contacted_at = GREATEST(last_contacted_at, $1)
        WHERE id = $2
    `, entry.ContactedAt, req.BusinessID)
	if err != nil {
		return nil, model.NewStorageError("update contact counter", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, model.NewStorageError("update contact counter", err)
	}
	if rows == 0 {
		return nil, notFound
	}

	if err := tx.Commit(); err != nil {
		return nil, model.NewStorageError("commit contact transaction", err)
	}
	return &entry, nil
}

// History returns the contact log of a business, most recent first. An
// unknown business yields an empty list.
func (s *ContactService) History(ctx context.Context, businessID int) ([]model.ContactHistoryEntry, error) {
	history := []model.ContactHistoryEntry{}
	err := s.db.SelectContext(ctx, &history, `
        SELECT id, business_id, contacted_at, medium, notes
        FROM contact_history
        WHERE business_id = $1
        ORDER BY contacted_at DESC, id DESC
    `, businessID)
	if err != nil {
		return nil, model.NewStorageError("select contact history", err)
	}
	return history, nil
}
