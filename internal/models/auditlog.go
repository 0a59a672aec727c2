// internal/models/auditlog.go
package models

import "time"

// AuditLogEntry records one assistant action attempt: the raw input, what
// the assistant decided, and when.
type AuditLogEntry struct {
	ID           int       `json:"id"`
	ActionType   string    `json:"actionType"`
	InputText    string    `json:"inputText"`
	OutputAction string    `json:"outputAction"`
	Timestamp    time.Time `json:"timestamp"`
}
