// internal/services/invoices/service.go

// Package invoices keeps one invoice record per order and renders the
// document through a pluggable Renderer.
package invoices

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	apperrors "bazaar-workers/internal/common/errors"
	"bazaar-workers/internal/common/logger"
	"bazaar-workers/internal/models"
)

// Renderer writes the invoice document for an order to path. The service
// only stores the resulting record; what the file looks like is the
// renderer's business.
type Renderer interface {
	Render(ctx context.Context, order *models.Order, path string) error
}

// NoOpRenderer records invoices without producing files. Useful when the
// document pipeline runs elsewhere.
type NoOpRenderer struct{}

func (NoOpRenderer) Render(context.Context, *models.Order, string) error { return nil }

type Service struct {
	db       *sql.DB
	renderer Renderer
	dir      string
	log      logger.Logger
	now      func() time.Time
}

func New(db *sql.DB, renderer Renderer, dir string, log logger.Logger) *Service {
	if renderer == nil {
		renderer = NoOpRenderer{}
	}
	if dir == "" {
		dir = "invoices"
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{db: db, renderer: renderer, dir: dir, log: log, now: time.Now}
}

// Get returns an invoice by id, or (nil, nil) when none exists.
func (s *Service) Get(ctx context.Context, id int) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.QueryRowContext(ctx, `
		SELECT id, order_id, file_path, created_at
		FROM invoices
		WHERE id = $1`, id).Scan(&inv.ID, &inv.OrderID, &inv.FilePath, &inv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get invoice", err)
	}
	return &inv, nil
}

// Generate returns the invoice for an order, creating it if none exists
// yet. Regenerating is free: asking twice for the same order returns the
// same record.
func (s *Service) Generate(ctx context.Context, orderID int) (*models.Invoice, error) {
	var existing models.Invoice
	err := s.db.QueryRowContext(ctx, `
		SELECT id, order_id, file_path, created_at
		FROM invoices
		WHERE order_id = $1`, orderID).
		Scan(&existing.ID, &existing.OrderID, &existing.FilePath, &existing.CreatedAt)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewQueryExecutionFailedError("find existing invoice", err)
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.NewOrderNotFoundError(orderID)
	}

	filename := fmt.Sprintf("invoice_%d_%s.pdf", orderID, s.now().Format("20060102_150405"))
	path := filepath.Join(s.dir, filename)

	if err := s.renderer.Render(ctx, order, path); err != nil {
		return nil, fmt.Errorf("render invoice for order %d: %w", orderID, err)
	}

	inv := models.Invoice{OrderID: orderID, FilePath: path}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO invoices (order_id, file_path)
		VALUES ($1, $2)
		RETURNING id, created_at`, orderID, path).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("insert invoice", err)
	}

	s.log.Info("invoice generated", map[string]interface{}{
		"invoice_id": inv.ID,
		"order_id":   orderID,
		"file_path":  path,
	})
	return &inv, nil
}

func (s *Service) loadOrder(ctx context.Context, orderID int) (*models.Order, error) {
	var o models.Order
	err := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, order_total, status, created_at
		FROM orders
		WHERE id = $1`, orderID).Scan(&o.ID, &o.CustomerID, &o.OrderTotal, &o.Status, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("load order for invoice", err)
	}
	return &o, nil
}
