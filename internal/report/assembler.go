// Package report renders per-recipient water temperature reports.
//
// Temperatures are converted and rounded to one decimal place here, at
// render time only. Readings passed in are never modified.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/couchcryptid/openwater-etl/internal/domain"
)

const htmlReport = `<h1>OpenWater</h1><p style="font-size:120%;">Here are your water temperatures!</p>
{{range .Readings}}<p><u>{{.Location}}</u><br />Water temp {{.Temp}}{{$.Entity}}<br />{{.Published}}<br /><br /></p>
{{else}}<p>No readings matched your states.</p>
{{end}}`

var htmlTmpl = template.Must(template.New("report").Parse(htmlReport))

// Unit entities as they appear in the HTML body.
var unitEntity = map[domain.Unit]template.HTML{
	domain.Fahrenheit: "&#8457;",
	domain.Celsius:    "&#8451;",
}

type htmlLine struct {
	Location  string
	Temp      string
	Published string
}

type htmlData struct {
	Readings []htmlLine
	Entity   template.HTML
}

// Assembler renders notifications with a fixed sender and subject.
type Assembler struct {
	from    string
	subject string
}

// NewAssembler creates an Assembler.
func NewAssembler(from, subject string) *Assembler {
	return &Assembler{from: from, subject: subject}
}

// Render builds the notification for one recipient from their reading list.
// An empty list still renders a report that says nothing matched.
func (a *Assembler) Render(r domain.Recipient, readings []domain.Reading) (domain.Notification, error) {
	unit, err := domain.ParseUnit(string(r.Unit))
	if err != nil {
		return domain.Notification{}, fmt.Errorf("render report for %s: %w", r.Email, err)
	}

	data := htmlData{Entity: unitEntity[unit]}
	for _, rd := range readings {
		data.Readings = append(data.Readings, htmlLine{
			Location:  rd.Location,
			Temp:      FormatTemp(rd.In(unit)),
			Published: rd.Published,
		})
	}

	var body bytes.Buffer
	if err := htmlTmpl.Execute(&body, data); err != nil {
		return domain.Notification{}, fmt.Errorf("render report for %s: %w", r.Email, err)
	}

	return domain.Notification{
		Recipient:   r.Email,
		Name:        r.Name,
		From:        a.from,
		Subject:     a.subject,
		HTMLBody:    body.String(),
		TextBody:    renderText(readings, unit),
		Unit:        unit,
		Readings:    len(readings),
		GeneratedAt: domain.Now().UTC(),
	}, nil
}

func renderText(readings []domain.Reading, unit domain.Unit) string {
	var b strings.Builder
	b.WriteString("OpenWater\nHere are your water temperatures!\n")
	if len(readings) == 0 {
		b.WriteString("\nNo readings matched your states.\n")
		return b.String()
	}
	for _, rd := range readings {
		fmt.Fprintf(&b, "\n%s\nWater temp %s %s\n%s\n", rd.Location, FormatTemp(rd.In(unit)), unit.Symbol(), rd.Published)
	}
	return b.String()
}

// FormatTemp formats a temperature with one decimal place, e.g. 12.89 -> "12.9".
func FormatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
