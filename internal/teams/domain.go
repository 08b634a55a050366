// Package teams manages the sales teams of an agency and their gestor
// binding.
package teams

import (
	"time"

	"github.com/google/uuid"
)

// Team groups corretores under a gestor within an agency.
type Team struct {
	ID        uuid.UUID  `json:"id"`
	AgencyID  uuid.UUID  `json:"agencyId"`
	Name      string     `json:"name"`
	GestorID  *uuid.UUID `json:"gestorId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
