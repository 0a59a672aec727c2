// internal/services/products/service.go

// Package products manages the catalog and its stock levels.
package products

import (
	"context"
	"database/sql"
	"errors"

	apperrors "bazaar-workers/internal/common/errors"
	"bazaar-workers/internal/common/logger"
	"bazaar-workers/internal/models"
)

const listLimit = 100

type Service struct {
	db  *sql.DB
	log logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{db: db, log: log}
}

// ListAll returns the catalog ordered by id, capped at 100 rows.
func (s *Service) ListAll(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price, stock_quantity, reorder_threshold
		FROM products
		ORDER BY id
		LIMIT $1`, listLimit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list products", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// ListLowStock returns products at or below their reorder threshold.
func (s *Service) ListLowStock(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price, stock_quantity, reorder_threshold
		FROM products
		WHERE stock_quantity <= reorder_threshold
		ORDER BY id`)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list low stock products", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// Get returns a product by id, or (nil, nil) when none exists.
func (s *Service) Get(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, price, stock_quantity, reorder_threshold
		FROM products
		WHERE id = $1`, id).Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity, &p.ReorderThreshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get product", err)
	}
	return &p, nil
}

// Create adds a new catalog entry.
func (s *Service) Create(ctx context.Context, name string, price float64, stockQuantity, reorderThreshold int) (*models.Product, error) {
	p := models.Product{Name: name, Price: price, StockQuantity: stockQuantity, ReorderThreshold: reorderThreshold}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (name, price, stock_quantity, reorder_threshold)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, name, price, stockQuantity, reorderThreshold).Scan(&p.ID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("create product", err)
	}

	s.log.Info("product created", map[string]interface{}{"product_id": p.ID, "name": name})
	return &p, nil
}

// Restock adds quantity to an existing product and updates its price to
// the latest quote. A non-nil reorderThreshold also replaces the
// threshold. Returns the product as stored afterwards.
func (s *Service) Restock(ctx context.Context, id, quantity int, price float64, reorderThreshold *int) (*models.Product, error) {
	var (
		p   models.Product
		err error
	)
	if reorderThreshold != nil {
		err = s.db.QueryRowContext(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity + $2, price = $3, reorder_threshold = $4
			WHERE id = $1
			RETURNING id, name, price, stock_quantity, reorder_threshold`,
			id, quantity, price, *reorderThreshold).
			Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity, &p.ReorderThreshold)
	} else {
		err = s.db.QueryRowContext(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity + $2, price = $3
			WHERE id = $1
			RETURNING id, name, price, stock_quantity, reorder_threshold`,
			id, quantity, price).
			Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity, &p.ReorderThreshold)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewProductNotFoundError(p.Name)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("restock product", err)
	}

	s.log.Info("product restocked", map[string]interface{}{
		"product_id": p.ID,
		"added":      quantity,
		"stock":      p.StockQuantity,
	})
	return &p, nil
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity, &p.ReorderThreshold); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("iterate products", err)
	}
	return products, nil
}
