package report

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-pdf/fpdf"
)

type rgb struct{ r, g, b int }

var (
	titleColor  = rgb{77, 102, 242}
	bandColor   = rgb{102, 107, 242}
	shadeColor  = rgb{242, 242, 242}
	mutedColor  = rgb{77, 77, 77}
	black       = rgb{0, 0, 0}
	white       = rgb{255, 255, 255}
	incomeColor = rgb{0, 153, 0}
	rowIncome   = rgb{0, 140, 0}
	rowExpense  = rgb{230, 0, 0}
)

var toneColors = map[Tone]rgb{
	ToneIncome:  incomeColor,
	ToneExpense: {204, 0, 0},
	ToneBalance: black,
	ToneCard:    {230, 128, 0},
}

// Render paints doc as a PDF byte stream.
func Render(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write paints doc as PDF into w.
func Write(w io.Writer, doc *Document) error {
	pdf := paint(doc)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render report %s: %w", doc.Period, err)
	}
	return nil
}

// painter converts bottom-up document coordinates into fpdf's top-down ones
// and translates UTF-8 text to the core fonts' code page.
type painter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (p painter) top(y float64) float64 { return PageHeight - y }

func (p painter) fill(c rgb)  { p.pdf.SetFillColor(c.r, c.g, c.b) }
func (p painter) color(c rgb) { p.pdf.SetTextColor(c.r, c.g, c.b) }

func (p painter) text(x, y float64, s string) {
	p.pdf.Text(x, p.top(y), p.tr(s))
}

func (p painter) centered(y float64, s string) {
	s = p.tr(s)
	p.pdf.Text((PageWidth-p.pdf.GetStringWidth(s))/2, p.top(y), s)
}

func (p painter) right(x, y float64, s string) {
	s = p.tr(s)
	p.pdf.Text(x-p.pdf.GetStringWidth(s), p.top(y), s)
}

// rect draws a filled rectangle whose bottom-left corner is (x, y).
func (p painter) rect(x, y, w, h float64) {
	p.pdf.Rect(x, p.top(y+h), w, h, "F")
}

func paint(doc *Document) *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(doc.Title+" "+doc.Period.String(), true)
	pdf.SetCreator("financeiro", false)
	pdf.SetCreationDate(doc.GeneratedAt)
	p := painter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	for i, page := range doc.Pages {
		pdf.AddPage()
		if i == 0 {
			p.header(doc)
			p.summary(doc)
		}
		p.band(page.HeaderY)
		for _, row := range page.Rows {
			p.row(row)
		}
	}
	return pdf
}

func (p painter) header(doc *Document) {
	if doc.Logo != nil {
		x := (PageWidth - logoWidth) / 2
		p.pdf.ImageOptions(doc.Logo.Path, x, logoTop, logoWidth, doc.LogoHeight, false,
			fpdf.ImageOptions{ReadDpi: false}, 0, "")
		if err := p.pdf.Error(); err != nil {
			slog.Warn("Failed to draw report logo", "path", doc.Logo.Path, "error", err)
			p.pdf.ClearError()
		}
	}

	p.pdf.SetFont("Helvetica", "B", 20)
	p.color(titleColor)
	p.centered(doc.TitleY, doc.Title)

	p.pdf.SetFont("Helvetica", "", 12)
	p.color(black)
	p.centered(doc.TitleY-20, "Período: "+doc.Period.String())

	p.pdf.SetFont("Helvetica", "", 9)
	p.color(mutedColor)
	p.centered(doc.TitleY-35, "Gerado em: "+doc.GeneratedAt.Format("02/01/2006 15:04:05"))
}

func (p painter) summary(doc *Document) {
	y := doc.SummaryY
	p.fill(shadeColor)
	p.pdf.SetDrawColor(0, 0, 0)
	p.pdf.RoundedRect(70, p.top(y+10), PageWidth-140, 105, 8, "1234", "FD")

	p.pdf.SetFont("Helvetica", "B", 14)
	p.color(black)
	p.centered(y-15, "Resumo Financeiro:")

	for i, line := range doc.Summary {
		style, size := "", 12.0
		switch line.Tone {
		case ToneBalance:
			style = "B"
		case ToneCard:
			size = 11
		}
		p.pdf.SetFont("Helvetica", style, size)
		p.color(toneColors[line.Tone])
		p.text(90, y-35-float64(i)*17, line.Text())
	}
}

func (p painter) band(y float64) {
	p.fill(bandColor)
	p.rect(40, y, PageWidth-80, bandHeight)
	p.pdf.SetFont("Helvetica", "B", 10)
	p.color(white)
	for _, c := range Columns {
		p.text(c.X, y+6, c.Label)
	}
}

func (p painter) row(r Row) {
	if r.Shaded {
		p.fill(shadeColor)
		p.rect(40, r.Y-2, PageWidth-80, rowHeight)
	}
	p.pdf.SetFont("Helvetica", "", 9)
	p.color(black)
	p.text(50, r.Y, r.Date)
	p.text(110, r.Y, r.Kind)
	p.text(165, r.Y, r.Description)
	p.text(320, r.Y, r.Category)
	p.text(420, r.Y, r.PaymentMethod)

	if r.Tone == ToneIncome {
		p.color(rowIncome)
	} else {
		p.color(rowExpense)
	}
	p.right(530, r.Y, r.Amount)
}
