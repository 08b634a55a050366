package documents

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBRL(t *testing.T) {
	cases := []struct {
		centavos int64
		want     string
	}{
		{0, "R$ 0,00"},
		{150, "R$ 1,50"},
		{45000000, "R$ 450.000,00"},
		{123456789, "R$ 1.234.567,89"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, BRL(tc.centavos))
	}
}

func TestRenderProposal(t *testing.T) {
	html, err := Render(KindProposal, RenderInput{
		AgencyName:    "Imobiliária Horizonte",
		LeadName:      "Maria Silva",
		BrokerName:    "João Santos",
		PropertyTitle: "Apartamento 2 quartos",
		PropertyAddr:  "Rua das Flores, 100",
		PriceCentavos: 45000000,
		Date:          time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Proposta de Compra")
	assert.Contains(t, html, "Maria Silva")
	assert.Contains(t, html, "R$ 450.000,00")
	assert.Contains(t, html, "15/03/2026")
}

func TestRenderVisitReceipt(t *testing.T) {
	html, err := Render(KindVisitReceipt, RenderInput{
		AgencyName:    "Imobiliária Horizonte",
		LeadName:      "Maria Silva",
		BrokerName:    "João Santos",
		PropertyTitle: "Casa em Pinheiros",
		Date:          time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Recibo de Visita")
	assert.Contains(t, html, "João Santos")
	assert.NotContains(t, html, "Valor ofertado")
}

func TestRenderEscapesLeadInput(t *testing.T) {
	html, err := Render(KindProposal, RenderInput{
		AgencyName: "X",
		LeadName:   `<script>alert("x")</script>`,
		Date:       time.Now(),
	})
	require.NoError(t, err)
	assert.False(t, strings.Contains(html, "<script>"), "lead input must be escaped")
}

func TestRenderUnknownKind(t *testing.T) {
	_, err := Render(Kind("CONTRATO_FAKE"), RenderInput{})
	assert.Error(t, err)
}
