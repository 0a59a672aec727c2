// internal/services/customers/service.go

// Package customers stores and looks up registered buyers.
package customers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	apperrors "bazaar-workers/internal/common/errors"
	"bazaar-workers/internal/common/logger"
	"bazaar-workers/internal/models"
)

const uniqueViolation = "23505"

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

// GetByPhone returns the customer with the given phone, or (nil, nil) when
// none exists.
func (s *Service) GetByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var c models.Customer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, language_preference
		FROM customers
		WHERE phone = $1`, phone).Scan(&c.ID, &c.Name, &c.Phone, &c.LanguagePreference)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get customer by phone", err)
	}
	return &c, nil
}

// Get returns a customer by id, or (nil, nil) when none exists.
func (s *Service) Get(ctx context.Context, id int) (*models.Customer, error) {
	var c models.Customer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, language_preference
		FROM customers
		WHERE id = $1`, id).Scan(&c.ID, &c.Name, &c.Phone, &c.LanguagePreference)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get customer", err)
	}
	return &c, nil
}

// ListAll returns every customer ordered by id, so name matching sees a
// stable candidate order.
func (s *Service) ListAll(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, language_preference
		FROM customers
		ORDER BY id`)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list customers", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.LanguagePreference); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scan customer", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("iterate customers", err)
	}
	return customers, nil
}

// Create registers a new customer. A phone collision surfaces as a
// DUPLICATE_PHONE error.
func (s *Service) Create(ctx context.Context, name, phone, languagePreference string) (*models.Customer, error) {
	c := models.Customer{Name: name, Phone: phone, LanguagePreference: languagePreference}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO customers (name, phone, language_preference)
		VALUES ($1, $2, $3)
		RETURNING id`, name, phone, languagePreference).Scan(&c.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, apperrors.NewDuplicatePhoneError(phone)
		}
		return nil, apperrors.NewQueryExecutionFailedError("create customer", err)
	}

	s.log.Info("customer created", map[string]interface{}{
		"customer_id": c.ID,
		"phone":       fmt.Sprintf("%.6s...", phone),
	})
	return &c, nil
}
