package contact

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-crm-go/pkg/model"
)

var historyColumns = []string{"id", "business_id", "contacted_at", "medium", "notes"}

func newService(t *testing.T) (*ContactService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewContactService(sqlx.NewDb(db, "sqlmock"), logger), mock
}

func TestRegisterContact_Success(t *testing.T) {
	svc, mock := newService(t)
	now := time.Date(2026, 10, 18, 15, 4, 5, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO contact_history").
		WithArgs(42, "WhatsApp", "Follow-up call").
		WillReturnRows(sqlmock.NewRows(historyColumns).AddRow(7, 42, now, "WhatsApp", "Follow-up call"))
	mock.ExpectExec("SET contact_count = COALESCE\\(contact_count, 0\\) \\+ 1").
		WithArgs(now, 42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entry, err := svc.RegisterContact(context.Background(), model.ContactRequest{
		BusinessID: 42,
		Medium:     " WhatsApp ",
		Notes:      "Follow-up call",
	})

	require.NoError(t, err)
	assert.Equal(t, 7, entry.ID)
	assert.Equal(t, 42, entry.BusinessID)
	assert.Equal(t, now, entry.ContactedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterContact_ValidationFailsBeforeTransaction(t *testing.T) {
	svc, mock := newService(t)

	_, err := svc.RegisterContact(context.Background(), model.ContactRequest{BusinessID: 42, Medium: "Email"})

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "notes", verr.Field)
	// no Begin expected: nothing touched the database
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterContact_UnknownBusinessViaForeignKey(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO contact_history").
		WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})
	mock.ExpectRollback()

	_, err := svc.RegisterContact(context.Background(), model.ContactRequest{BusinessID: 404, Medium: "Email", Notes: "x"})

	var nf *model.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 404, nf.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterContact_ZeroRowsRollsBackInsert(t *testing.T) {
	svc, mock := newService(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO contact_history").
		WillReturnRows(sqlmock.NewRows(historyColumns).AddRow(8, 404, now, "Email", "x"))
	mock.ExpectExec("UPDATE businesses").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.RegisterContact(context.Background(), model.ContactRequest{BusinessID: 404, Medium: "Email", Notes: "x"})

	var nf *model.NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterContact_UpdateFailureRollsBack(t *testing.T) {
	svc, mock := newService(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO contact_history").
		WillReturnRows(sqlmock.NewRows(historyColumns).AddRow(9, 42, now, "Llamada", "x"))
	mock.ExpectExec("UPDATE businesses").WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	_, err := svc.RegisterContact(context.Background(), model.ContactRequest{BusinessID: 42, Medium: "Llamada", Notes: "x"})

	var serr *model.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "update contact counter", serr.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterContact_CommitFailure(t *testing.T) {
	svc, mock := newService(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO contact_history").
		WillReturnRows(sqlmock.NewRows(historyColumns).AddRow(10, 42, now, "Email", "x"))
	mock.ExpectExec("UPDATE businesses").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	_, err := svc.RegisterContact(context.Background(), model.ContactRequest{BusinessID: 42, Medium: "Email", Notes: "x"})

	var serr *model.StorageError
	assert.ErrorAs(t, err, &serr)
}

func TestRegisterContact_BeginFailure(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	_, err := svc.RegisterContact(context.Background(), model.ContactRequest{BusinessID: 42, Medium: "Email", Notes: "x"})

	var serr *model.StorageError
	assert.ErrorAs(t, err, &serr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistory(t *testing.T) {
	svc, mock := newService(t)
	newer := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	older := newer.Add(-48 * time.Hour)

	mock.ExpectQuery("ORDER BY contacted_at DESC, id DESC").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(historyColumns).
			AddRow(2, 42, newer, "WhatsApp", "Follow-up call").
			AddRow(1, 42, older, "Email", "Intro"))

	history, err := svc.History(context.Background(), 42)

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].ID)
	assert.True(t, history[0].ContactedAt.After(history[1].ContactedAt))
}

func TestHistory_EmptyIsNotAnError(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("FROM contact_history").WithArgs(99).WillReturnRows(sqlmock.NewRows(historyColumns))

	history, err := svc.History(context.Background(), 99)

	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}
