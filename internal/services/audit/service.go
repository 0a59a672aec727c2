// internal/services/audit/service.go

// Package audit persists the assistant's action trail. Postgres is the
// source of truth; entries are additionally shipped to Elasticsearch in the
// background so the trail is searchable without loading the primary.
package audit

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"time"

	apperrors "bazaar-workers/internal/common/errors"
	"bazaar-workers/internal/common/logger"
	"bazaar-workers/internal/models"
)

const defaultIndex = "assistant-actions"

// Indexer ships one document to a search index.
type Indexer interface {
	Index(ctx context.Context, index string, body io.Reader) error
}

type Service struct {
	db      *sql.DB
	indexer Indexer
	index   string
	log     logger.Logger

	// indexTimeout bounds the background shipment so a slow cluster
	// cannot pile up goroutines forever.
	indexTimeout time.Duration
}

func New(db *sql.DB, indexer Indexer, index string, log logger.Logger) *Service {
	if index == "" {
		index = defaultIndex
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		db:           db,
		indexer:      indexer,
		index:        index,
		log:          log,
		indexTimeout: 10 * time.Second,
	}
}

// Record writes one trail entry. The Postgres insert is synchronous; the
// search-index shipment happens in the background and its failure only
// logs a warning.
func (s *Service) Record(ctx context.Context, actionType, inputText, outputAction string) error {
	entry := models.AuditLogEntry{
		ActionType:   actionType,
		InputText:    inputText,
		OutputAction: outputAction,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ai_action_logs (action_type, input_text, output_action)
		VALUES ($1, $2, $3)
		RETURNING id, timestamp`, actionType, inputText, outputAction).
		Scan(&entry.ID, &entry.Timestamp)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("insert audit entry", err)
	}

	if s.indexer != nil {
		go s.shipToIndex(entry)
	}
	return nil
}

func (s *Service) shipToIndex(entry models.AuditLogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), s.indexTimeout)
	defer cancel()

	doc, err := json.Marshal(entry)
	if err != nil {
		s.log.WithError(err).Warn("marshal audit entry for indexing", nil)
		return
	}
	if err := s.indexer.Index(ctx, s.index, bytes.NewReader(doc)); err != nil {
		s.log.WithError(err).Warn("audit index shipment failed", map[string]interface{}{
			"action_type": entry.ActionType,
		})
	}
}

// ListRecent returns the newest entries, newest first.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action_type, input_text, output_action, timestamp
		FROM ai_action_logs
		ORDER BY timestamp DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list audit entries", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListByType returns entries of one action type, newest first.
func (s *Service) ListByType(ctx context.Context, actionType string) ([]models.AuditLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action_type, input_text, output_action, timestamp
		FROM ai_action_logs
		WHERE action_type = $1
		ORDER BY timestamp DESC`, actionType)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list audit entries by type", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	for rows.Next() {
		var e models.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.ActionType, &e.InputText, &e.OutputAction, &e.Timestamp); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scan audit entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("iterate audit entries", err)
	}
	return entries, nil
}
