package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"eventhub/internal/models"
)

// Generator is an interface so handlers can be tested with a fake.
type Generator interface {
	EventFlyer(event *models.Event) ([]byte, error)
}

// FlyerGenerator renders a printable one-page flyer for an event.
type FlyerGenerator struct {
	fontName string
}

func NewFlyerGenerator() *FlyerGenerator {
	return &FlyerGenerator{fontName: "Helvetica"}
}

func (g *FlyerGenerator) EventFlyer(event *models.Event) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(event.Title, false)
	pdf.SetAuthor("EventHub", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Header
	pdf.SetFont(g.fontName, "B", 20)
	pdf.MultiCell(0, 10, event.Title, "", "C", false)

	pdf.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("%s  ·  %s", capitalize(event.Category), event.StartsAt.Format("Monday, 2 January 2006"))
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	// When & where
	g.sectionTitle(pdf, "When & where")
	g.kvLine(pdf, "Starts", event.StartsAt.Format("2 Jan 2006 15:04"))
	g.kvLine(pdf, "Ends", event.EndsAt.Format("2 Jan 2006 15:04"))
	if event.Location != "" {
		g.kvLine(pdf, "Venue", event.Location)
	}
	if event.City != "" {
		g.kvLine(pdf, "City", event.City)
	}
	if event.Website != "" {
		g.kvLine(pdf, "Website", event.Website)
	}
	pdf.Ln(2)
	g.hr(pdf)

	// About
	if event.Description != "" {
		g.sectionTitle(pdf, "About this event")
		pdf.SetFont(g.fontName, "", 11)
		pdf.MultiCell(0, 6, event.Description, "", "L", false)
		pdf.Ln(2)
		g.hr(pdf)
	}

	// Footer
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 10,
			fmt.Sprintf("Listed on EventHub · generated %s", time.Now().Format("02.01.2006")),
			"", 0, "C", false, 0, "",
		)
	})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (g *FlyerGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *FlyerGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *FlyerGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}
