package domain

import "time"

// Event types
const (
	EventTypeOperationCommitted = "operation.committed"
	EventTypeOperationRejected  = "operation.rejected"
	EventTypeApprovalRequested  = "approval.requested"
	EventTypeApprovalDecided    = "approval.decided"
	EventTypeAccountOpened      = "account.opened"
	EventTypeAccountDeactivated = "account.deactivated"
)

// Aggregate types
const (
	AggregateTypeOperation = "operation"
	AggregateTypeApproval  = "approval"
	AggregateTypeAccount   = "account"
)

// OutboxEvent is a notification written in the same transaction as the state
// change it describes and delivered after commit by the publisher worker.
// The transfer path never performs external I/O while holding account locks.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}
