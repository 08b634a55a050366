package documents

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RenderInput carries the data merged into a document template.
type RenderInput struct {
	AgencyName    string
	LeadName      string
	BrokerName    string
	PropertyTitle string
	PropertyAddr  string
	PriceCentavos int64
	Date          time.Time
}

// BRL formats centavos as Brazilian currency, e.g. 45000000 centavos
// renders as "R$ 450.000,00".
func BRL(centavos int64) string {
	p := message.NewPrinter(language.BrazilianPortuguese)
	reais := centavos / 100
	cents := centavos % 100
	if cents < 0 {
		cents = -cents
	}
	return p.Sprintf("R$ %d,%02d", reais, cents)
}

// DateBR formats a date the way Brazilian documents expect.
func DateBR(t time.Time) string {
	return t.Format("02/01/2006")
}

var funcMap = template.FuncMap{
	"brl":  BRL,
	"date": DateBR,
}

var proposalTmpl = template.Must(template.New("proposal").Funcs(funcMap).Parse(`<article>
<h1>Proposta de Compra</h1>
<p>{{.AgencyName}}</p>
<p>Proponente: <strong>{{.LeadName}}</strong></p>
<p>Imóvel: {{.PropertyTitle}}{{if .PropertyAddr}}, {{.PropertyAddr}}{{end}}</p>
<p>Valor ofertado: <strong>{{brl .PriceCentavos}}</strong></p>
<p>Corretor responsável: {{.BrokerName}}</p>
<p>Data: {{date .Date}}</p>
</article>`))

var visitReceiptTmpl = template.Must(template.New("visit").Funcs(funcMap).Parse(`<article>
<h1>Recibo de Visita</h1>
<p>{{.AgencyName}}</p>
<p>Declaro que visitei o imóvel {{.PropertyTitle}}{{if .PropertyAddr}}, {{.PropertyAddr}}{{end}}, acompanhado(a) pelo corretor {{.BrokerName}}.</p>
<p>Visitante: <strong>{{.LeadName}}</strong></p>
<p>Data: {{date .Date}}</p>
</article>`))

// Render produces the HTML for a document kind. Template data is
// escaped by html/template, so lead-provided names cannot inject
// markup.
func Render(kind Kind, input RenderInput) (string, error) {
	var tmpl *template.Template
	switch kind {
	case KindProposal:
		tmpl = proposalTmpl
	case KindVisitReceipt:
		tmpl = visitReceiptTmpl
	default:
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}
