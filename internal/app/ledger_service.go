package app

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/perchdesk/perchdesk/internal/clock"
	"github.com/perchdesk/perchdesk/internal/domain"
)

type LedgerRepository interface {
	AppendTransaction(ctx context.Context, tx domain.Transaction) error
	ListPeriod(ctx context.Context, q PeriodQuery) ([]domain.Transaction, int, error)
	ListAllInPeriod(ctx context.Context, from, to time.Time) ([]domain.Transaction, error)
}

// PeriodQuery selects ledger entries inside [From, To), newest first.
type PeriodQuery struct {
	From   time.Time
	To     time.Time
	Type   domain.TransactionType
	Source string
	Limit  int
	Offset int
}

type LedgerService struct {
	repo  LedgerRepository
	clock clock.Clock
}

func NewLedgerService(repo LedgerRepository, clk clock.Clock) *LedgerService {
	return &LedgerService{
		repo:  repo,
		clock: clk,
	}
}

type RecordInput struct {
	Type        domain.TransactionType
	Amount      float64
	Source      string
	Description string
	Date        time.Time
	BookingID   string
	OrderID     string
	CreatedBy   string
}

// Record appends one ledger entry. Amounts are positive magnitudes; an
// expense is tagged, not negated. The ledger has no update or delete path.
func (s *LedgerService) Record(ctx context.Context, in RecordInput) (domain.Transaction, error) {
	if in.Type != domain.TransactionIncome && in.Type != domain.TransactionExpense {
		return domain.Transaction{}, domain.Invalid("type", "must be income or expense")
	}
	if in.Amount <= 0 {
		return domain.Transaction{}, domain.Invalid("amount", "must be greater than zero")
	}
	if in.Source == "" {
		return domain.Transaction{}, domain.Invalid("source", "required")
	}

	date := in.Date
	if date.IsZero() {
		date = s.clock.Now()
	}

	tx := domain.Transaction{
		ID:          uuid.NewString(),
		Type:        in.Type,
		Amount:      in.Amount,
		Source:      in.Source,
		Description: in.Description,
		Date:        date,
		BookingID:   in.BookingID,
		OrderID:     in.OrderID,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.AppendTransaction(ctx, tx); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

const defaultPageSize = 20

type ListPeriodInput struct {
	// Month is a YYYY-MM key; empty means the current calendar month.
	Month  string
	Type   string
	Source string
	Page   int
	Limit  int
}

type TransactionPage struct {
	Transactions []domain.Transaction
	Total        int
	Page         int
	Limit        int
}

// ListPeriod returns one page of ledger entries for the month, date
// descending then creation order descending.
func (s *LedgerService) ListPeriod(ctx context.Context, in ListPeriodInput) (TransactionPage, error) {
	from, to, err := s.monthBounds(in.Month)
	if err != nil {
		return TransactionPage{}, err
	}

	var typ domain.TransactionType
	if in.Type != "" {
		typ = domain.TransactionType(in.Type)
		if typ != domain.TransactionIncome && typ != domain.TransactionExpense {
			return TransactionPage{}, domain.Invalid("type", "must be income or expense")
		}
	}

	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 {
		limit = defaultPageSize
	}

	txs, total, err := s.repo.ListPeriod(ctx, PeriodQuery{
		From:   from,
		To:     to,
		Type:   typ,
		Source: in.Source,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return TransactionPage{}, err
	}
	return TransactionPage{
		Transactions: txs,
		Total:        total,
		Page:         page,
		Limit:        limit,
	}, nil
}

// DailySubtotal is one (source, day) bucket inside a source breakdown.
type DailySubtotal struct {
	Day    string
	Amount float64
	Count  int
}

// SourceBreakdown totals one source within a transaction type, with its
// per-day subtotals.
type SourceBreakdown struct {
	Source string
	Amount float64
	Count  int
	Daily  []DailySubtotal
}

// TypeAggregate totals one transaction type over the period.
type TypeAggregate struct {
	Total   float64
	Count   int
	Sources []SourceBreakdown
}

// PeriodSummary is the folded month report. A type with no entries
// contributes zeros, never an absent field.
type PeriodSummary struct {
	TotalIncome      float64
	TotalExpenses    float64
	NetIncome        float64
	TransactionCount int
	Income           TypeAggregate
	Expenses         TypeAggregate
}

// Aggregate builds the month summary in two passes: first group entries by
// (type, source, calendar day), then regroup the buckets by type and fold
// the two type totals into the summary.
func (s *LedgerService) Aggregate(ctx context.Context, month string) (PeriodSummary, error) {
	from, to, err := s.monthBounds(month)
	if err != nil {
		return PeriodSummary{}, err
	}

	txs, err := s.repo.ListAllInPeriod(ctx, from, to)
	if err != nil {
		return PeriodSummary{}, err
	}

	// Pass one: (type, source, day) buckets.
	type bucketKey struct {
		typ    domain.TransactionType
		source string
		day    string
	}
	buckets := make(map[bucketKey]*DailySubtotal)
	var keys []bucketKey
	for _, tx := range txs {
		key := bucketKey{typ: tx.Type, source: tx.Source, day: tx.Date.UTC().Format("2006-01-02")}
		b, ok := buckets[key]
		if !ok {
			b = &DailySubtotal{Day: key.day}
			buckets[key] = b
			keys = append(keys, key)
		}
		b.Amount += tx.Amount
		b.Count++
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].source != keys[j].source {
			return keys[i].source < keys[j].source
		}
		return keys[i].day < keys[j].day
	})

	// Pass two: regroup by type, folding buckets into per-source breakdowns.
	aggregateType := func(typ domain.TransactionType) TypeAggregate {
		agg := TypeAggregate{Sources: []SourceBreakdown{}}
		bySource := make(map[string]int)
		for _, key := range keys {
			if key.typ != typ {
				continue
			}
			b := buckets[key]
			idx, ok := bySource[key.source]
			if !ok {
				agg.Sources = append(agg.Sources, SourceBreakdown{Source: key.source})
				idx = len(agg.Sources) - 1
				bySource[key.source] = idx
			}
			src := &agg.Sources[idx]
			src.Amount += b.Amount
			src.Count += b.Count
			src.Daily = append(src.Daily, *b)
			agg.Total += b.Amount
			agg.Count += b.Count
		}
		return agg
	}

	income := aggregateType(domain.TransactionIncome)
	expenses := aggregateType(domain.TransactionExpense)

	return PeriodSummary{
		TotalIncome:      income.Total,
		TotalExpenses:    expenses.Total,
		NetIncome:        income.Total - expenses.Total,
		TransactionCount: income.Count + expenses.Count,
		Income:           income,
		Expenses:         expenses,
	}, nil
}

// monthBounds resolves a YYYY-MM key to the half-open interval covering that
// calendar month. An empty key means the month containing now.
func (s *LedgerService) monthBounds(month string) (time.Time, time.Time, error) {
	if month == "" {
		now := s.clock.Now()
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, 0), nil
	}
	from, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, domain.Invalid("month", "must be formatted YYYY-MM")
	}
	return from, from.AddDate(0, 1, 0), nil
}
