// Command relatorio prints the monthly summary of a ledger and writes its PDF
// report, using the same storage configuration as the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"

	"financeiro/internal/backend"
	"financeiro/internal/cli"
	"financeiro/internal/core"
	"financeiro/internal/log"
	"financeiro/internal/report"
	"financeiro/internal/services"
)

var (
	emailFlag  = flag.String("email", "", "E-mail of the ledger owner (required)")
	yearFlag   = flag.Int("year", 0, "Year of the report (default: newest period with data)")
	monthFlag  = flag.Int("month", 0, "Month of the report, 1-12 (default: newest period with data)")
	outFlag    = flag.String("out", "", "Output directory of the PDF (default: current directory)")
	noPDFFlag  = flag.Bool("no-pdf", false, "Only print the summary")
	noColorArg = flag.Bool("no-color", false, "Disable colored output")
)

var (
	header  = color.New(color.FgCyan, color.Bold)
	income  = color.New(color.FgGreen)
	expense = color.New(color.FgRed)
	balance = color.New(color.FgBlue, color.Bold)
	card    = color.New(color.FgYellow)
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: relatorio -email you@example.com [-year 2024 -month 5] [-out dir]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if *noColorArg {
		color.NoColor = true
	}
	if *emailFlag == "" {
		flag.Usage()
		os.Exit(2)
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	email, err := core.NormalizeEmail(*emailFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Por favor, digite um e-mail válido.")
		os.Exit(2)
	}

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Failed to create backend config", log.FieldError, err)
		os.Exit(1)
	}
	backendConfig.AMQPURL = ""

	ctx := context.Background()
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err)
		os.Exit(1)
	}
	defer result.Cleanup()

	sess := services.OpenSession(ctx, core.UserKey(email), services.Deps{
		Store:    result.Store,
		Taxonomy: cli.LoadTaxonomy(logger, cfg.TaxonomyFile),
		Logger:   logger,
	})

	p := sess.AvailablePeriods()[0]
	if *yearFlag != 0 || *monthFlag != 0 {
		p = core.Period{Year: *yearFlag, Month: *monthFlag}
	}
	v, err := sess.Period(p.Year, p.Month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Período inválido: %d/%d\n", p.Month, p.Year)
		os.Exit(2)
	}

	printSummary(os.Stdout, v)
	if *noPDFFlag {
		return
	}

	opts := report.Options{Title: cfg.ReportTitle, GeneratedAt: time.Now()}
	if cfg.ReportLogoPath != "" {
		if logo, err := report.LoadLogo(cfg.ReportLogoPath); err == nil {
			opts.Logo = logo
		} else {
			logger.Warn("Failed to load report logo", log.FieldError, err)
		}
	}
	path := filepath.Join(*outFlag, report.FileName(p.Year, p.Month))
	if err := writeReport(path, v, opts); err != nil {
		logger.Error("Failed to write report", log.FieldError, err, "path", path)
		os.Exit(1)
	}
	income.Printf("📄 Relatório salvo em %s\n", path)
}

// printSummary writes the four totals and the category sums of v.
func printSummary(w io.Writer, v services.MonthView) {
	header.Fprintf(w, "Resumo de %s\n", v.Period)
	if len(v.Transactions) == 0 {
		fmt.Fprintln(w, "Sem dados para o período selecionado")
		return
	}
	income.Fprintf(w, "  Total de Receitas:                  %s\n", core.FormatBRL(v.Summary.TotalIncome))
	expense.Fprintf(w, "  Total de Despesas (sem cartão):     %s\n", core.FormatBRL(v.Summary.TotalExpenseExcludingCard))
	balance.Fprintf(w, "  Saldo:                              %s\n", core.FormatBRL(v.Summary.Balance))
	card.Fprintf(w, "  Gastos no Cartão (não descontados): %s\n", core.FormatBRL(v.Summary.TotalExpenseCard))

	printCategories(w, "Receitas por categoria", v.IncomeByCategory, income)
	printCategories(w, "Despesas por categoria", v.ExpenseByCategory, expense)
}

func printCategories(w io.Writer, title string, sums []core.CategoryAmount, c *color.Color) {
	if len(sums) == 0 {
		return
	}
	header.Fprintf(w, "%s\n", title)
	for _, s := range sums {
		c.Fprintf(w, "  %-20s %s\n", s.Name, core.FormatBRL(s.Amount))
	}
}

func writeReport(path string, v services.MonthView, opts report.Options) error {
	doc := report.Compile(v.Transactions, v.Period.Year, v.Period.Month, opts)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.Write(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
