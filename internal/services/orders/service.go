// internal/services/orders/service.go

// Package orders creates and reads orders. Order creation is
// transactional: totals are computed from current prices, line items are
// snapshotted and stock is decremented, all or nothing.
package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "bazaar-workers/internal/common/errors"
	"bazaar-workers/internal/common/logger"
	"bazaar-workers/internal/models"
)

const defaultStatus = "pending"

// AuditRecorder receives the order-created trail entry. Optional.
type AuditRecorder interface {
	Record(ctx context.Context, actionType, inputText, outputAction string) error
}

type Service struct {
	db    *sql.DB
	audit AuditRecorder
	log   logger.Logger
}

func New(db *sql.DB, audit AuditRecorder, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{db: db, audit: audit, log: log}
}

// Get returns an order with its items, or (nil, nil) when it does not
// exist.
func (s *Service) Get(ctx context.Context, id int) (*models.Order, error) {
	var o models.Order
	err := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, order_total, status, created_at
		FROM orders
		WHERE id = $1`, id).Scan(&o.ID, &o.CustomerID, &o.OrderTotal, &o.Status, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get order", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`, id)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get order items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scan order item", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("iterate order items", err)
	}
	return &o, nil
}

// ListByCustomer returns a customer's orders, newest first.
func (s *Service) ListByCustomer(ctx context.Context, customerID int) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, order_total, status, created_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list customer orders", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.OrderTotal, &o.Status, &o.CreatedAt); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scan order", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("iterate orders", err)
	}
	return orders, nil
}

// Create places an order for the given line items. Every referenced
// product must exist with enough stock; prices are read inside the
// transaction so the snapshot and the total agree.
func (s *Service) Create(ctx context.Context, customerID int, items []models.OrderItemInput) (*models.Order, error) {
	if len(items) == 0 {
		return nil, apperrors.NewInvalidTaskInputError("order needs at least one item")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("begin order transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	type pricedItem struct {
		models.OrderItemInput
		price float64
	}

	total := 0.0
	priced := make([]pricedItem, 0, len(items))
	for _, item := range items {
		var (
			name  string
			price float64
			stock int
		)
		err := tx.QueryRowContext(ctx, `
			SELECT name, price, stock_quantity
			FROM products
			WHERE id = $1
			FOR UPDATE`, item.ProductID).Scan(&name, &price, &stock)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewProductNotFoundError(fmt.Sprintf("id %d", item.ProductID))
		}
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("lock product", err)
		}
		if stock < item.Quantity {
			return nil, apperrors.NewInsufficientStockError(name, stock, item.Quantity)
		}
		total += price * float64(item.Quantity)
		priced = append(priced, pricedItem{OrderItemInput: item, price: price})
	}

	o := models.Order{CustomerID: customerID, OrderTotal: total, Status: defaultStatus}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_id, order_total, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`, customerID, total, defaultStatus).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("insert order", err)
	}

	for _, item := range priced {
		var itemID int
		err := tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
			RETURNING id`, o.ID, item.ProductID, item.Quantity, item.price).Scan(&itemID)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("insert order item", err)
		}
		o.Items = append(o.Items, models.OrderItem{
			ID:        itemID,
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.price,
		})

		if _, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity - $2
			WHERE id = $1`, item.ProductID, item.Quantity); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("decrease stock", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("commit order", err)
	}

	s.log.Info("order created", map[string]interface{}{
		"order_id":    o.ID,
		"customer_id": customerID,
		"total":       total,
	})
	if s.audit != nil {
		if err := s.audit.Record(ctx, "ORDER_CREATED",
			fmt.Sprintf("Customer %d placed order", customerID),
			fmt.Sprintf("Order %d created with total ₹%.2f", o.ID, total)); err != nil {
			s.log.WithError(err).Warn("order audit record failed", nil)
		}
	}

	return &o, nil
}
