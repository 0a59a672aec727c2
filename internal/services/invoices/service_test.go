// internal/services/invoices/service_test.go
package invoices

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bazaar-workers/internal/common/errors"
	"bazaar-workers/internal/models"
)

type recordingRenderer struct {
	paths []string
	err   error
}

func (r *recordingRenderer) Render(_ context.Context, _ *models.Order, path string) error {
	if r.err != nil {
		return r.err
	}
	r.paths = append(r.paths, path)
	return nil
}

func newService(t *testing.T, renderer Renderer) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	svc := New(db, renderer, "invoices", nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC) }
	return svc, mock
}

func invoiceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "order_id", "file_path", "created_at"})
}

func TestGenerate(t *testing.T) {
	renderer := &recordingRenderer{}
	svc, mock := newService(t, renderer)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, order_id, file_path, created_at`).
		WithArgs(12).
		WillReturnRows(invoiceRows())
	mock.ExpectQuery(`SELECT id, customer_id, order_total, status, created_at`).
		WithArgs(12).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "order_total", "status", "created_at"}).
			AddRow(12, 7, 1000.0, "pending", now))
	mock.ExpectQuery(`INSERT INTO invoices`).
		WithArgs(12, "invoices/invoice_12_20260314_150926.pdf").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(112, now))

	inv, err := svc.Generate(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, 112, inv.ID)
	assert.Equal(t, "invoices/invoice_12_20260314_150926.pdf", inv.FilePath)
	assert.Equal(t, []string{"invoices/invoice_12_20260314_150926.pdf"}, renderer.paths)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateReturnsExisting(t *testing.T) {
	renderer := &recordingRenderer{}
	svc, mock := newService(t, renderer)

	mock.ExpectQuery(`SELECT id, order_id, file_path, created_at`).
		WithArgs(12).
		WillReturnRows(invoiceRows().AddRow(112, 12, "invoices/invoice_12.pdf", time.Now()))

	inv, err := svc.Generate(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, 112, inv.ID)
	// Nothing was re-rendered.
	assert.Empty(t, renderer.paths)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateOrderNotFound(t *testing.T) {
	svc, mock := newService(t, &recordingRenderer{})

	mock.ExpectQuery(`SELECT id, order_id, file_path, created_at`).
		WithArgs(99).
		WillReturnRows(invoiceRows())
	mock.ExpectQuery(`SELECT id, customer_id, order_total, status, created_at`).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "order_total", "status", "created_at"}))

	_, err := svc.Generate(context.Background(), 99)
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeOrderNotFound, stdErr.Code)
}

func TestGenerateRendererFailure(t *testing.T) {
	svc, mock := newService(t, &recordingRenderer{err: errors.New("disk full")})
	now := time.Now()

	mock.ExpectQuery(`SELECT id, order_id, file_path, created_at`).
		WithArgs(12).
		WillReturnRows(invoiceRows())
	mock.ExpectQuery(`SELECT id, customer_id, order_total, status, created_at`).
		WithArgs(12).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "order_total", "status", "created_at"}).
			AddRow(12, 7, 1000.0, "pending", now))

	_, err := svc.Generate(context.Background(), 12)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
