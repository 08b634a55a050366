// Package documents generates and stores transactional documents, such
// as visit receipts and purchase proposals, rendered from HTML
// templates with pt-BR formatting.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies a document template.
type Kind string

const (
	KindProposal     Kind = "PROPOSTA"
	KindVisitReceipt Kind = "RECIBO_VISITA"
)

// Valid reports whether k is a known document kind.
func (k Kind) Valid() bool {
	return k == KindProposal || k == KindVisitReceipt
}

// Document is a rendered document bound to a lead and a property. The
// rendered HTML is stored so the document stays stable even if the
// listing later changes.
type Document struct {
	ID         uuid.UUID  `json:"id"`
	AgencyID   uuid.UUID  `json:"agencyId"`
	OwnerID    uuid.UUID  `json:"ownerId"`
	TeamID     *uuid.UUID `json:"teamId,omitempty"`
	LeadID     uuid.UUID  `json:"leadId"`
	PropertyID uuid.UUID  `json:"propertyId"`
	Kind       Kind       `json:"kind"`
	Title      string     `json:"title"`
	HTML       string     `json:"html"`
	CreatedAt  time.Time  `json:"createdAt"`
}
