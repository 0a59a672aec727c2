// internal/agent/session/store.go

// Package session keeps per-conversation pending context: when a command is
// missing one piece of information, the intent and what it lacks are parked
// here until the next message from the same session fills the gap.
package session

import "context"

// PendingContext is the parked state of a half-complete command. One slot
// per session: a new incomplete command replaces the old one.
type PendingContext struct {
	Intent       string                 `json:"intent"`
	Entities     map[string]interface{} `json:"entities"`
	MissingField string                 `json:"missing_field"`
}

// Store holds pending context per session. Get returns (nil, nil) when the
// session has no pending context; expiry counts as absence.
type Store interface {
	Get(ctx context.Context, sessionID string) (*PendingContext, error)
	Put(ctx context.Context, sessionID string, pc PendingContext) error
	Clear(ctx context.Context, sessionID string) error
}
