// Package export renders the memory book: completed plans with their
// memories, then the milestones, as a PDF.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"lovenest/models"
	"lovenest/viewmodel"
)

type Book struct {
	Title      string
	Generated  time.Time
	Plans      []models.Plan
	Milestones []models.Milestone
}

const (
	pageBottom = 260.0
	qrSize     = 28.0
)

// Render writes book to w as a PDF.
func Render(w io.Writer, book Book) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(latin(s)) }

	title := book.Title
	if title == "" {
		title = "Our Memory Book"
	}
	pdf.SetTitle(text(title), false)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 22)
	pdf.CellFormat(0, 14, text(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, book.Generated.Format("January 2, 2006"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	section(pdf, text("Plans we made happen"))
	if len(book.Plans) == 0 {
		empty(pdf, "No completed plans yet.")
	}
	for i, p := range book.Plans {
		if err := planEntry(pdf, text, p, i); err != nil {
			return err
		}
	}

	pdf.Ln(4)
	section(pdf, text("Milestones"))
	if len(book.Milestones) == 0 {
		empty(pdf, "No milestones yet.")
	}
	for _, m := range book.Milestones {
		milestoneEntry(pdf, text, m)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 15)
	pdf.SetTextColor(200, 60, 120)
	pdf.CellFormat(0, 10, title, "B", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)
}

func empty(pdf *gofpdf.Fpdf, msg string) {
	pdf.SetFont("Arial", "I", 11)
	pdf.CellFormat(0, 8, msg, "", 1, "L", false, 0, "")
}

func ensureSpace(pdf *gofpdf.Fpdf, h float64) {
	if pdf.GetY()+h > pageBottom {
		pdf.AddPage()
	}
}

func planEntry(pdf *gofpdf.Fpdf, text func(string) string, p models.Plan, n int) error {
	ensureSpace(pdf, qrSize+8)
	top := pdf.GetY()

	style := viewmodel.CategoryStyle("plans", string(p.Type))
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(150, 7, text(p.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(150, 6, text(style.Label+" - "+viewmodel.DisplayDate(p.Date, viewmodel.PlanNoDate)), "", 1, "L", false, 0, "")

	if m := p.Memory; m != nil {
		pdf.CellFormat(150, 6, strings.Repeat("*", m.Rating)+strings.Repeat("-", max(0, 5-m.Rating)), "", 1, "L", false, 0, "")
		for _, note := range m.Notes {
			pdf.MultiCell(150, 5, text("\""+note+"\""), "", "L", false)
		}
		if len(m.Photos) > 0 {
			pdf.SetFont("Arial", "I", 9)
			pdf.CellFormat(150, 5, fmt.Sprintf("%d photo(s)", len(m.Photos)), "", 1, "L", false, 0, "")
		}
	}

	if link := planLink(p); link != "" {
		png, err := qrcode.Encode(link, qrcode.Medium, 256)
		if err != nil {
			return fmt.Errorf("qr for %s: %w", p.ID, err)
		}
		name := fmt.Sprintf("qr-%d", n)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
		pdf.ImageOptions(name, 170, top, qrSize, qrSize, false, opts, 0, link)
		if pdf.GetY() < top+qrSize {
			pdf.SetY(top + qrSize)
		}
	}
	pdf.Ln(4)
	return nil
}

// planLink picks what the QR code points at.
func planLink(p models.Plan) string {
	switch {
	case p.Website != "":
		return p.Website
	case p.MapsLink != "":
		return p.MapsLink
	case p.Memory != nil && len(p.Memory.Photos) > 0:
		return p.Memory.Photos[0]
	}
	return ""
}

func milestoneEntry(pdf *gofpdf.Fpdf, text func(string) string, m models.Milestone) {
	ensureSpace(pdf, 20)
	style := viewmodel.CategoryStyle("milestones", string(m.Category))
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 7, text(viewmodel.DisplayDate(m.Date, "")+"  "+m.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 5, text(style.Label), "", 1, "L", false, 0, "")
	if m.Description != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, text(m.Description), "", "L", false)
	}
	pdf.Ln(3)
}

// latin drops characters the core PDF fonts cannot show, such as emoji.
func latin(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x250 || strings.ContainsRune("…–—‘’“”•€™", r) {
			return r
		}
		return -1
	}, s)
}
