package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"financeiro/internal/core"
	"financeiro/internal/ledger"
	"financeiro/internal/log"
	"financeiro/internal/metrics"
	"financeiro/internal/storage"
	"financeiro/internal/taxonomy"
)

// ErrSaveFailed wraps a store write failure. The in-memory ledger keeps the
// mutation that triggered it.
var ErrSaveFailed = errors.New("ledger could not be saved")

// Command names, used for metrics and ledger-saved events.
const (
	CommandAdd                  = "add"
	CommandDelete               = "delete"
	CommandSetOpeningBalance    = "set_opening_balance"
	CommandRemoveOpeningBalance = "remove_opening_balance"
)

// Publisher announces saved ledgers. *amqp.Client implements it.
type Publisher interface {
	PublishLedgerSaved(ctx context.Context, userKey string, count int, reason string) error
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Store     storage.Store
	Publisher Publisher // optional
	Taxonomy  *taxonomy.Taxonomy
	Metrics   *metrics.Metrics // optional
	Logger    *log.Logger
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Taxonomy == nil {
		d.Taxonomy = taxonomy.Default()
	}
	if d.Logger == nil {
		d.Logger = log.New(log.DefaultConfig())
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// TransactionInput is a transaction as typed in a form.
type TransactionInput struct {
	Date          string
	Kind          string
	Description   string
	Amount        string
	PaymentMethod string
	Category      string
}

// MonthView is everything the UI shows for one period.
type MonthView struct {
	Period            core.Period
	Transactions      []core.Transaction
	Summary           core.MonthlySummary
	IncomeByCategory  []core.CategoryAmount
	ExpenseByCategory []core.CategoryAmount
	OpeningBalance    *core.Transaction
}

// Outcome is returned by every command: the affected transaction, if any, and
// the refreshed view of its period.
type Outcome struct {
	Transaction core.Transaction
	View        MonthView
}

// Session holds one user's ledger in memory. The store is read once when the
// session opens and rewritten after every command.
type Session struct {
	mu   sync.Mutex
	key  string
	txs  []core.Transaction
	deps Deps
	log  *log.Logger
}

// OpenSession loads the ledger of key. A load failure is logged and yields an
// empty ledger.
func OpenSession(ctx context.Context, key string, deps Deps) *Session {
	deps = deps.withDefaults()
	s := &Session{
		key:  key,
		deps: deps,
		log:  deps.Logger.WithComponent(log.ComponentLedger).With(log.FieldUserKey, key),
	}

	txs, err := deps.Store.Load(ctx, key)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to load ledger, starting empty",
			log.FieldOperation, log.OpLoad,
			log.FieldError, err)
		txs = nil
	}
	s.txs = txs
	s.log.DebugContext(ctx, "Session opened", log.FieldCount, len(txs))
	return s
}

// Key returns the storage key of the session owner.
func (s *Session) Key() string {
	return s.key
}

// Transactions returns a copy of the whole ledger, undated rows included.
func (s *Session) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...)
}

// View returns the transactions that take part in date-based views.
func (s *Session) View() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Dated(s.txs)
}

// AvailablePeriods lists the periods with data, newest first.
func (s *Session) AvailablePeriods() []core.Period {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.AvailablePeriods(s.txs, s.deps.Now())
}

// Period builds the view of year/month.
func (s *Session) Period(year, month int) (MonthView, error) {
	p, err := core.NewPeriod(year, month)
	if err != nil {
		return MonthView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(p), nil
}

func (s *Session) viewLocked(p core.Period) MonthView {
	txs := ledger.FilterByPeriod(s.txs, p.Year, p.Month)
	v := MonthView{
		Period:            p,
		Transactions:      txs,
		Summary:           ledger.Summarize(txs),
		IncomeByCategory:  ledger.GroupByCategory(txs, core.Income),
		ExpenseByCategory: ledger.GroupByCategory(txs, core.Expense),
	}
	if ob, ok := ledger.FindOpeningBalance(txs, p.Year, p.Month); ok {
		v.OpeningBalance = &ob
	}
	return v
}

// BuildTransaction turns form input into a validated transaction with a fresh id.
// An amount that cannot be read becomes zero.
func (s *Session) BuildTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	date, err := core.ParseInputDate(in.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date %q: %w", in.Date, err)
	}
	kind := core.Kind(strings.TrimSpace(in.Kind))
	if !kind.IsValid() {
		return core.Transaction{}, fmt.Errorf("kind %q: %w", in.Kind, core.ErrInvalidKind)
	}
	method := core.PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if method == core.Balance {
		return core.Transaction{}, fmt.Errorf("payment method %q is reserved: %w", in.PaymentMethod, core.ErrInvalidPaymentMethod)
	}
	amount, err := core.EvaluateAmount(in.Amount)
	if err != nil {
		s.log.WarnContext(ctx, "Amount not understood, using zero",
			log.FieldOperation, log.OpParse,
			log.FieldError, err)
		amount = core.Money{}
	}

	category := strings.TrimSpace(in.Category)
	if category == "" && kind == core.Expense {
		category = s.deps.Taxonomy.Suggest(in.Description)
	} else {
		category = s.deps.Taxonomy.Canonical(kind, category)
	}

	t := core.Transaction{
		ID:            core.NewID(),
		Date:          date,
		Kind:          kind,
		Description:   strings.TrimSpace(in.Description),
		Amount:        amount,
		PaymentMethod: method,
		Category:      category,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// AddTransaction appends a transaction built from in and saves the ledger.
func (s *Session) AddTransaction(ctx context.Context, in TransactionInput) (Outcome, error) {
	t, err := s.BuildTransaction(ctx, in)
	if err != nil {
		s.deps.Metrics.Command(CommandAdd, metrics.ResultInvalid)
		return Outcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs = ledger.Add(s.txs, t)
	err = s.persistLocked(ctx, CommandAdd)
	log.NewStructuredLogger(s.deps.Logger).LogTransactionRecorded(ctx, s.key,
		t.ID, string(t.Kind), t.Amount.Cents, t.Category, string(t.PaymentMethod))

	p := core.Period{Year: t.Date.Year(), Month: t.Date.Month()}
	return Outcome{Transaction: t, View: s.viewLocked(p)}, err
}

// DeleteTransaction removes the transaction with id and saves the ledger.
func (s *Session) DeleteTransaction(ctx context.Context, id string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed core.Transaction
	for _, t := range s.txs {
		if t.ID == id {
			removed = t
			break
		}
	}
	txs, err := ledger.Remove(s.txs, id)
	if err != nil {
		s.deps.Metrics.Command(CommandDelete, metrics.ResultNotFound)
		return Outcome{}, err
	}

	s.txs = txs
	err = s.persistLocked(ctx, CommandDelete)
	s.log.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id)

	p := core.Period{Year: removed.Date.Year(), Month: removed.Date.Month()}
	if !removed.HasValidDate() {
		now := s.deps.Now()
		p = core.Period{Year: now.Year(), Month: int(now.Month())}
	}
	return Outcome{Transaction: removed, View: s.viewLocked(p)}, err
}

// SetOpeningBalance parses a pt-BR amount such as "1.234,56" and installs it
// as the opening balance of year/month, replacing any previous one. Invalid
// input leaves the ledger untouched.
func (s *Session) SetOpeningBalance(ctx context.Context, year, month int, amountText string) (Outcome, error) {
	amount, err := core.ParseBRL(amountText)
	if err != nil {
		s.deps.Metrics.Command(CommandSetOpeningBalance, metrics.ResultInvalid)
		return Outcome{}, fmt.Errorf("opening balance %q: %w", amountText, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := ledger.SetOpeningBalance(s.txs, year, month, amount)
	if err != nil {
		s.deps.Metrics.Command(CommandSetOpeningBalance, metrics.ResultInvalid)
		return Outcome{}, err
	}

	s.txs = txs
	err = s.persistLocked(ctx, CommandSetOpeningBalance)
	s.log.InfoContext(ctx, "Opening balance set",
		log.FieldYear, year,
		log.FieldMonth, month,
		log.FieldAmountCents, amount.Cents)

	ob := txs[len(txs)-1]
	return Outcome{Transaction: ob, View: s.viewLocked(core.Period{Year: year, Month: month})}, err
}

// RemoveOpeningBalance drops the opening balance of year/month and saves.
func (s *Session) RemoveOpeningBalance(ctx context.Context, year, month int) (Outcome, error) {
	p, err := core.NewPeriod(year, month)
	if err != nil {
		s.deps.Metrics.Command(CommandRemoveOpeningBalance, metrics.ResultInvalid)
		return Outcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed, _ := ledger.FindOpeningBalance(s.txs, year, month)
	s.txs = ledger.RemoveOpeningBalance(s.txs, year, month)
	err = s.persistLocked(ctx, CommandRemoveOpeningBalance)
	s.log.InfoContext(ctx, "Opening balance removed",
		log.FieldYear, year,
		log.FieldMonth, month)

	return Outcome{Transaction: removed, View: s.viewLocked(p)}, err
}

// persistLocked saves the whole ledger and, on success, announces it.
// A publish failure is logged and never fails the command.
func (s *Session) persistLocked(ctx context.Context, command string) error {
	if err := s.deps.Store.Save(ctx, s.key, s.txs); err != nil {
		s.deps.Metrics.Command(command, metrics.ResultSaveFailed)
		s.log.ErrorContext(ctx, "Failed to save ledger, keeping changes in memory",
			log.FieldOperation, log.OpSave,
			log.FieldError, err)
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	s.deps.Metrics.Command(command, metrics.ResultOK)

	if s.deps.Publisher == nil {
		s.log.DebugContext(ctx, "AMQP publisher not configured, skipping ledger saved message")
		return nil
	}
	if err := s.deps.Publisher.PublishLedgerSaved(ctx, s.key, len(s.txs), command); err != nil {
		s.log.ErrorContext(ctx, "Failed to publish ledger saved message",
			log.FieldError, err)
	}
	return nil
}
