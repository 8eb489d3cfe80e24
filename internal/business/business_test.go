package business

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-crm-go/pkg/model"
)

var businessRowColumns = []string{
	"id", "name", "phone", "category_id", "sent", "country_id", "province_id", "city_id",
	"contact_count", "last_contacted_at", "created_at", "updated_at",
}

func newService(t *testing.T) (*BusinessService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBusinessService(sqlx.NewDb(db, "sqlmock"), logger), mock
}

func TestBuildListQuery_Defaults(t *testing.T) {
	query, args := buildListQuery(model.BusinessFilter{})

	assert.Empty(t, args)
	assert.Contains(t, query, "WHERE 1=1")
	assert.Contains(t, query, "ORDER BY b.id ASC NULLS LAST")
}

func TestBuildListQuery_FiltersAndSort(t *testing.T) {
	query, args := buildListQuery(model.BusinessFilter{
		CountryID:  "Argentina",
		CityID:     " La-Plata ",
		CategoryID: "",
		Search:     "kiosco",
		SortBy:     "province",
		SortOrder:  "desc",
	})

	assert.Equal(t, []interface{}{"argentina", "la-plata", "%kiosco%"}, args)
	assert.Contains(t, query, "b.country_id = $1")
	assert.Contains(t, query, "b.city_id = $2")
	assert.Contains(t, query, "b.name ILIKE $3")
	assert.NotContains(t, query, "b.category_id =")
	assert.Contains(t, query, "ORDER BY pr.name DESC")
}

func TestBuildListQuery_RejectsUnknownSort(t *testing.T) {
	query, _ := buildListQuery(model.BusinessFilter{SortBy: "name; DROP TABLE businesses", SortOrder: "sideways"})

	assert.Contains(t, query, "ORDER BY b.id ASC")
	assert.NotContains(t, query, "DROP")
}

func TestList(t *testing.T) {
	svc, mock := newService(t)
	now := time.Now()

	mock.ExpectQuery("FROM businesses b").
		WithArgs("argentina").
		WillReturnRows(sqlmock.NewRows(businessRowColumns).
			AddRow(42, "Kiosco Sur", "+54 11 5555", "kioscos", false, "argentina", "buenos-aires", "la-plata", 3, now, now, now).
			AddRow(43, "Sin Datos", "", nil, true, "argentina", nil, nil, 0, nil, now, now))

	businesses, err := svc.List(context.Background(), model.BusinessFilter{CountryID: "argentina"})

	require.NoError(t, err)
	require.Len(t, businesses, 2)
	assert.Equal(t, 3, businesses[0].ContactCount)
	assert.Equal(t, "la-plata", *businesses[0].CityID)
	assert.Nil(t, businesses[1].CategoryID)
	assert.Nil(t, businesses[1].LastContactedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("WHERE b.id = \\$1").WithArgs(99).WillReturnError(sql.ErrNoRows)

	_, err := svc.Get(context.Background(), 99)

	var nf *model.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestCreate_NormalizesReferences(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectQuery("INSERT INTO businesses").
		WithArgs("Kiosco Sur", "+54 11 5555", "kioscos", false, "argentina", "buenos-aires", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id, err := svc.Create(context.Background(), model.BusinessRequest{
		Name:       " Kiosco Sur ",
		Phone:      "+54 11 5555",
		CategoryID: "Kioscos",
		CountryID:  "ARGENTINA",
		ProvinceID: "Buenos-Aires",
	})

	require.NoError(t, err)
	assert.Equal(t, 42, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_MissingName(t *testing.T) {
	svc, mock := newService(t)

	_, err := svc.Create(context.Background(), model.BusinessRequest{Phone: "123"})

	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UnknownReference(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("INSERT INTO businesses").
		WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})

	_, err := svc.Create(context.Background(), model.BusinessRequest{Name: "X", CategoryID: "nope"})

	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdate_LeavesContactFieldsAlone(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE businesses")).
		WithArgs("Kiosco Norte", "", nil, true, nil, nil, nil, 42).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Update(context.Background(), model.BusinessRequest{ID: 42, Name: "Kiosco Norte", Sent: true})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NoSuchBusiness(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectExec("UPDATE businesses").WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Update(context.Background(), model.BusinessRequest{ID: 7, Name: "Ghost"})

	var nf *model.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestUpdate_MissingID(t *testing.T) {
	svc, _ := newService(t)

	err := svc.Update(context.Background(), model.BusinessRequest{Name: "No id"})

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "id", verr.Field)
}

func TestToggleSent(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("SET sent = NOT sent").WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"sent"}).AddRow(true))
	mock.ExpectQuery("SET sent = NOT sent").WithArgs(43).WillReturnError(sql.ErrNoRows)

	sent, err := svc.ToggleSent(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, sent)

	_, err = svc.ToggleSent(context.Background(), 43)
	var nf *model.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestDelete(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectExec("DELETE FROM businesses").WithArgs(42).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM businesses").WithArgs(42).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM businesses").WithArgs(50).WillReturnError(errors.New("connection refused"))

	require.NoError(t, svc.Delete(context.Background(), 42))

	var nf *model.NotFoundError
	assert.ErrorAs(t, svc.Delete(context.Background(), 42), &nf)

	var serr *model.StorageError
	assert.ErrorAs(t, svc.Delete(context.Background(), 50), &serr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStats(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery("COUNT\\(DISTINCT country_id\\)").
		WillReturnRows(sqlmock.NewRows([]string{"countries", "provinces", "cities", "businesses"}).AddRow(1, 3, 5, 12))

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.BusinessStats{Countries: 1, Provinces: 3, Cities: 5, Businesses: 12}, *stats)
}
