// Package properties manages the listings of an agency. Listings are
// visible to every user of the agency; scoping narrows by tenant only.
package properties

import (
	"time"

	"github.com/google/uuid"
)

// PropertyType classifies a listing.
type PropertyType string

const (
	TypeApartment  PropertyType = "APARTAMENTO"
	TypeHouse      PropertyType = "CASA"
	TypeLand       PropertyType = "TERRENO"
	TypeCommercial PropertyType = "COMERCIAL"
)

// Valid reports whether t is a known property type.
func (t PropertyType) Valid() bool {
	switch t {
	case TypeApartment, TypeHouse, TypeLand, TypeCommercial:
		return true
	}
	return false
}

// TransactionKind is how the property is offered.
type TransactionKind string

const (
	KindSale TransactionKind = "VENDA"
	KindRent TransactionKind = "ALUGUEL"
)

// Valid reports whether k is a known transaction kind.
func (k TransactionKind) Valid() bool {
	return k == KindSale || k == KindRent
}

// Property is a listing. PriceCentavos stores the asking price in
// centavos to keep arithmetic exact.
type Property struct {
	ID            uuid.UUID       `json:"id"`
	AgencyID      uuid.UUID       `json:"agencyId"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Type          PropertyType    `json:"type"`
	Kind          TransactionKind `json:"kind"`
	PriceCentavos int64           `json:"priceCentavos"`
	Bedrooms      int             `json:"bedrooms"`
	AreaM2        float64         `json:"areaM2"`
	Address       string          `json:"address,omitempty"`
	City          string          `json:"city,omitempty"`
	State         string          `json:"state,omitempty"`
	IsPublished   bool            `json:"isPublished"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ListFilter narrows property listings.
type ListFilter struct {
	Type          PropertyType
	Kind          TransactionKind
	City          string
	MinPrice      int64
	MaxPrice      int64
	PublishedOnly bool
}
