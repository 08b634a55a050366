// Package subscriptions tracks each agency's billing snapshot and derives
// the payment-gating flags the web client renders.
package subscriptions

import (
	"time"

	"github.com/google/uuid"
)

// Status is the billing state reported by the payment provider.
type Status string

const (
	StatusTrial    Status = "TRIAL"
	StatusActive   Status = "ACTIVE"
	StatusOverdue  Status = "OVERDUE"
	StatusCanceled Status = "CANCELED"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusTrial, StatusActive, StatusOverdue, StatusCanceled:
		return true
	}
	return false
}

// Snapshot is an agency's current subscription state. This service only
// consumes the flags; the billing provider owns the transitions.
type Snapshot struct {
	AgencyID       uuid.UUID  `json:"agencyId"`
	Status         Status     `json:"status"`
	TrialEndsAt    *time.Time `json:"trialEndsAt,omitempty"`
	LifetimeAccess bool       `json:"lifetimeAccess"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// AlertLevel classifies the subscription alert the UI should render.
type AlertLevel string

const (
	AlertNone     AlertLevel = "NONE"
	AlertWarning  AlertLevel = "WARNING"
	AlertBlocking AlertLevel = "BLOCKING"
)

// Gate carries the derived gating flags. Advisory for rendering; write
// paths that depend on payment state re-evaluate on the server.
type Gate struct {
	NeedsPayment  bool       `json:"needsPayment"`
	TrialDaysLeft int        `json:"trialDaysLeft"`
	Alert         AlertLevel `json:"alert"`
}
