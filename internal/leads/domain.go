// Package leads implements the sales pipeline: capture, stage moves,
// scope-filtered listing and distribution to corretores.
package leads

import (
	"time"

	"github.com/google/uuid"
)

// Stage is a lead's position in the pipeline.
type Stage string

const (
	StageNovo     Stage = "NOVO"
	StageContato  Stage = "CONTATO"
	StageVisita   Stage = "VISITA"
	StageProposta Stage = "PROPOSTA"
	StageFechado  Stage = "FECHADO"
	StagePerdido  Stage = "PERDIDO"
)

// Stages returns the pipeline stages in board order.
func Stages() []Stage {
	return []Stage{StageNovo, StageContato, StageVisita, StageProposta, StageFechado, StagePerdido}
}

// Valid reports whether the stage is a known value.
func (s Stage) Valid() bool {
	for _, stage := range Stages() {
		if s == stage {
			return true
		}
	}
	return false
}

// Terminal reports whether the stage ends the pipeline.
func (s Stage) Terminal() bool {
	return s == StageFechado || s == StagePerdido
}

// Lead represents a prospective client in the pipeline.
type Lead struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   uuid.UUID  `json:"tenantId"`
	TeamID     *uuid.UUID `json:"teamId,omitempty"`
	OwnerID    *uuid.UUID `json:"ownerId,omitempty"`
	PropertyID *uuid.UUID `json:"propertyId,omitempty"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Source     string     `json:"source,omitempty"`
	Stage      Stage      `json:"stage"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// ListFilter narrows lead listings beyond the access scope.
type ListFilter struct {
	Stage   Stage
	Search  string
	Page    int
	PerPage int
}
