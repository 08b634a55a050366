// Package agencies manages the tenant records of the platform. Every
// other entity hangs off an agency.
package agencies

import (
	"time"

	"github.com/google/uuid"
)

// Agency is a tenant: a real-estate office or an autonomous broker
// operating as a one-person agency.
type Agency struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TradeName string    `json:"tradeName,omitempty"`
	CNPJ      string    `json:"cnpj,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
