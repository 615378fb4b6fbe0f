package service

import (
	"context"
	"time"
)

// AccountEventType names what happened to an account.
type AccountEventType string

const (
	AccountEventRegistered AccountEventType = "account.registered"
	AccountEventLoggedIn   AccountEventType = "account.logged_in"
)

// AccountEvent is published after a successful signup or login.
type AccountEvent struct {
	RequestID  string           `json:"request_id,omitempty"` // For distributed tracing
	EventID    string           `json:"event_id"`
	Type       AccountEventType `json:"type"`
	AccountID  string           `json:"account_id"`
	Username   string           `json:"username"`
	Email      string           `json:"email"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishAccountEvent publishes an account event for downstream consumers
	PublishAccountEvent(ctx context.Context, event *AccountEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
