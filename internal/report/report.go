// Package report compiles a month of transactions into a paginated document
// and renders it as PDF.
//
// Compile is pure: it computes every position on every page, using PDF user
// space (points, origin at the bottom-left corner of an A4 page). Render only
// paints what Compile decided.
package report

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"
	"unicode/utf8"

	"financeiro/internal/core"
	"financeiro/internal/ledger"
)

// ContentType is the MIME type of a rendered report.
const ContentType = "application/pdf"

const DefaultTitle = "Relatório Financeiro"

// A4 in points.
const (
	PageWidth  = 595.28
	PageHeight = 841.89
)

const (
	logoWidth     = 90.0
	logoTop       = 20.0
	bandHeight    = 22.0
	bandGap       = 26.0
	rowHeight     = 20.0
	bottomLimit   = 60.0
	continuationY = PageHeight - 100
)

// Max runes shown per column. The transaction itself is not changed.
const (
	kindWidth        = 8
	descriptionWidth = 25
	categoryWidth    = 15
	paymentWidth     = 12
)

// Tone tags a value with its meaning so the renderer can color it.
type Tone int

const (
	ToneIncome Tone = iota
	ToneExpense
	ToneBalance
	ToneCard
)

// Column is one heading of the table header band.
type Column struct {
	Label string
	X     float64
}

// Columns are the table headings, left to right.
var Columns = []Column{
	{Label: "Data", X: 50},
	{Label: "Tipo", X: 110},
	{Label: "Descrição", X: 165},
	{Label: "Categoria", X: 320},
	{Label: "Forma", X: 420},
	{Label: "Valor", X: 500},
}

// SummaryLine is one of the four totals of the summary box.
type SummaryLine struct {
	Label  string
	Amount core.Money
	Tone   Tone
}

// Text renders the line as shown in the document.
func (l SummaryLine) Text() string {
	return l.Label + ": " + core.FormatBRL(l.Amount)
}

// Row is one table line. Y is the text baseline.
type Row struct {
	Y             float64
	Shaded        bool
	Date          string
	Kind          string
	Description   string
	Category      string
	PaymentMethod string
	Amount        string
	Tone          Tone
}

// Page holds the header band position and the rows below it.
type Page struct {
	HeaderY float64
	Rows    []Row
}

// Logo is an image drawn centered above the title.
type Logo struct {
	Path   string
	Width  int
	Height int
}

// LoadLogo reads the dimensions of a PNG or JPEG file.
func LoadLogo(path string) (*Logo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open logo: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("decode logo %s: %w", path, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("logo %s has no size", path)
	}
	return &Logo{Path: path, Width: cfg.Width, Height: cfg.Height}, nil
}

// Options customize a report. Zero values use the defaults.
type Options struct {
	Title       string
	Logo        *Logo
	GeneratedAt time.Time
}

// Document is a compiled report, ready to render.
type Document struct {
	Title       string
	Period      core.Period
	GeneratedAt time.Time

	Logo       *Logo
	LogoY      float64 // bottom edge
	LogoHeight float64

	TitleY   float64
	SummaryY float64
	Summary  []SummaryLine
	Pages    []Page
}

// FileName returns the download name of the report of year/month.
func FileName(year, month int) string {
	return fmt.Sprintf("relatorio_financeiro_%d_%d.pdf", year, month)
}

// Compile lays out the report of txs for year/month. txs are expected to be
// already filtered to the period; rows keep their order.
func Compile(txs []core.Transaction, year, month int, opts Options) *Document {
	doc := &Document{
		Title:       opts.Title,
		Period:      core.Period{Year: year, Month: month},
		GeneratedAt: opts.GeneratedAt,
		Logo:        opts.Logo,
	}
	if doc.Title == "" {
		doc.Title = DefaultTitle
	}
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now()
	}

	doc.TitleY = PageHeight - 70
	if doc.Logo != nil {
		doc.LogoHeight = float64(doc.Logo.Height) / float64(doc.Logo.Width) * logoWidth
		doc.LogoY = PageHeight - (doc.LogoHeight + logoTop)
		doc.TitleY = doc.LogoY - 25
	}
	doc.SummaryY = doc.TitleY - 65

	s := ledger.Summarize(txs)
	doc.Summary = []SummaryLine{
		{Label: "Total de Receitas", Amount: s.TotalIncome, Tone: ToneIncome},
		{Label: "Total de Despesas (sem cartão)", Amount: s.TotalExpenseExcludingCard, Tone: ToneExpense},
		{Label: "Saldo", Amount: s.Balance, Tone: ToneBalance},
		{Label: "Gastos no Cartão (não descontados)", Amount: s.TotalExpenseCard, Tone: ToneCard},
	}

	page := Page{HeaderY: doc.SummaryY - 130}
	y := page.HeaderY - bandGap
	for i, t := range txs {
		if y < bottomLimit {
			doc.Pages = append(doc.Pages, page)
			page = Page{HeaderY: continuationY}
			y = page.HeaderY - bandGap
		}
		page.Rows = append(page.Rows, newRow(t, y, i%2 == 0))
		y -= rowHeight
	}
	doc.Pages = append(doc.Pages, page)
	return doc
}

func newRow(t core.Transaction, y float64, shaded bool) Row {
	tone := ToneExpense
	if t.Kind == core.Income {
		tone = ToneIncome
	}
	return Row{
		Y:             y,
		Shaded:        shaded,
		Date:          t.Date.Display(),
		Kind:          truncate(string(t.Kind), kindWidth),
		Description:   truncate(t.Description, descriptionWidth),
		Category:      truncate(t.Category, categoryWidth),
		PaymentMethod: truncate(string(t.PaymentMethod), paymentWidth),
		Amount:        core.FormatBRL(t.Amount),
		Tone:          tone,
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// RowCount returns the number of table rows across all pages.
func (d *Document) RowCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Rows)
	}
	return n
}
