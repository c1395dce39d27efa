package app

import (
	"context"
	"testing"
	"time"

	"github.com/perchdesk/perchdesk/internal/clock"
	"github.com/perchdesk/perchdesk/internal/domain"
)

func TestLedgerService_Record(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	makeSvc := func() (*LedgerService, *fakeLedgerRepo) {
		repo := &fakeLedgerRepo{}
		svc := NewLedgerService(repo, clock.NewFixed(now))
		return svc, repo
	}

	t.Run("records income", func(t *testing.T) {
		svc, repo := makeSvc()
		tx, err := svc.Record(context.Background(), RecordInput{
			Type:   domain.TransactionIncome,
			Amount: 25,
			Source: "desk-booking",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tx.ID == "" {
			t.Fatal("expected generated id")
		}
		if !tx.Date.Equal(now) {
			t.Fatalf("expected date defaulted to now, got %v", tx.Date)
		}
		if len(repo.txs) != 1 {
			t.Fatalf("expected 1 stored transaction, got %d", len(repo.txs))
		}
	})

	t.Run("keeps explicit date", func(t *testing.T) {
		svc, _ := makeSvc()
		date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
		tx, err := svc.Record(context.Background(), RecordInput{
			Type:   domain.TransactionExpense,
			Amount: 10,
			Source: "supplies",
			Date:   date,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !tx.Date.Equal(date) {
			t.Fatalf("expected date %v, got %v", date, tx.Date)
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		svc, _ := makeSvc()
		cases := []RecordInput{
			{Type: "refund", Amount: 5, Source: "x"},
			{Type: domain.TransactionIncome, Amount: 0, Source: "x"},
			{Type: domain.TransactionIncome, Amount: -5, Source: "x"},
			{Type: domain.TransactionIncome, Amount: 5},
		}
		for i, in := range cases {
			if _, err := svc.Record(context.Background(), in); !domain.IsValidation(err) {
				t.Fatalf("case %d: expected validation error, got %v", i, err)
			}
		}
	})
}

func TestLedgerService_ListPeriod(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	repo := &fakeLedgerRepo{}
	svc := NewLedgerService(repo, clock.NewFixed(now))

	t.Run("defaults to current month and first page", func(t *testing.T) {
		page, err := svc.ListPeriod(context.Background(), ListPeriodInput{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if page.Page != 1 || page.Limit != defaultPageSize {
			t.Fatalf("unexpected paging: %+v", page)
		}
		wantFrom := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		if !repo.lastQuery.From.Equal(wantFrom) || !repo.lastQuery.To.Equal(wantFrom.AddDate(0, 1, 0)) {
			t.Fatalf("unexpected bounds: %+v", repo.lastQuery)
		}
	})

	t.Run("explicit month", func(t *testing.T) {
		_, err := svc.ListPeriod(context.Background(), ListPeriodInput{Month: "2025-02"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		wantFrom := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		if !repo.lastQuery.From.Equal(wantFrom) {
			t.Fatalf("unexpected from: %v", repo.lastQuery.From)
		}
	})

	t.Run("bad month key", func(t *testing.T) {
		_, err := svc.ListPeriod(context.Background(), ListPeriodInput{Month: "June 2025"})
		if !domain.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("bad type filter", func(t *testing.T) {
		_, err := svc.ListPeriod(context.Background(), ListPeriodInput{Type: "refund"})
		if !domain.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("page offset", func(t *testing.T) {
		_, err := svc.ListPeriod(context.Background(), ListPeriodInput{Page: 3, Limit: 10})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if repo.lastQuery.Offset != 20 || repo.lastQuery.Limit != 10 {
			t.Fatalf("unexpected paging query: %+v", repo.lastQuery)
		}
	})
}

func TestLedgerService_Aggregate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	day := func(d int) time.Time {
		return time.Date(2025, 6, d, 9, 0, 0, 0, time.UTC)
	}

	makeSvc := func(txs ...domain.Transaction) *LedgerService {
		repo := &fakeLedgerRepo{txs: txs}
		return NewLedgerService(repo, clock.NewFixed(now))
	}

	t.Run("folds income and expenses", func(t *testing.T) {
		svc := makeSvc(
			domain.Transaction{Type: domain.TransactionIncome, Amount: 100, Source: "desk-booking", Date: day(1)},
			domain.Transaction{Type: domain.TransactionExpense, Amount: 40, Source: "supplies", Date: day(2)},
		)

		summary, err := svc.Aggregate(context.Background(), "2025-06")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if summary.TotalIncome != 100 || summary.TotalExpenses != 40 {
			t.Fatalf("unexpected totals: %+v", summary)
		}
		if summary.NetIncome != 60 {
			t.Fatalf("expected net 60, got %v", summary.NetIncome)
		}
		if summary.TransactionCount != 2 {
			t.Fatalf("expected 2 transactions, got %d", summary.TransactionCount)
		}
	})

	t.Run("groups by source and day", func(t *testing.T) {
		svc := makeSvc(
			domain.Transaction{Type: domain.TransactionIncome, Amount: 10, Source: "order", Date: day(1)},
			domain.Transaction{Type: domain.TransactionIncome, Amount: 15, Source: "order", Date: day(1)},
			domain.Transaction{Type: domain.TransactionIncome, Amount: 5, Source: "order", Date: day(2)},
			domain.Transaction{Type: domain.TransactionIncome, Amount: 50, Source: "desk-booking", Date: day(1)},
		)

		summary, err := svc.Aggregate(context.Background(), "2025-06")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(summary.Income.Sources) != 2 {
			t.Fatalf("expected 2 sources, got %d", len(summary.Income.Sources))
		}
		// Sources sort lexicographically, days ascending within each source.
		first := summary.Income.Sources[0]
		if first.Source != "desk-booking" || first.Amount != 50 || first.Count != 1 {
			t.Fatalf("unexpected first source: %+v", first)
		}
		second := summary.Income.Sources[1]
		if second.Source != "order" || second.Amount != 30 || second.Count != 3 {
			t.Fatalf("unexpected second source: %+v", second)
		}
		if len(second.Daily) != 2 {
			t.Fatalf("expected 2 daily buckets, got %d", len(second.Daily))
		}
		if second.Daily[0].Day != "2025-06-01" || second.Daily[0].Amount != 25 || second.Daily[0].Count != 2 {
			t.Fatalf("unexpected daily bucket: %+v", second.Daily[0])
		}
	})

	t.Run("empty type contributes zeros", func(t *testing.T) {
		svc := makeSvc(
			domain.Transaction{Type: domain.TransactionIncome, Amount: 100, Source: "desk-booking", Date: day(1)},
		)

		summary, err := svc.Aggregate(context.Background(), "2025-06")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if summary.Expenses.Total != 0 || summary.Expenses.Count != 0 {
			t.Fatalf("expected zeroed expenses, got %+v", summary.Expenses)
		}
		if summary.Expenses.Sources == nil {
			t.Fatal("expected empty slice, not nil")
		}
		if summary.NetIncome != 100 {
			t.Fatalf("expected net 100, got %v", summary.NetIncome)
		}
	})

	t.Run("bad month key", func(t *testing.T) {
		svc := makeSvc()
		if _, err := svc.Aggregate(context.Background(), "2025/06"); !domain.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

type fakeLedgerRepo struct {
	txs       []domain.Transaction
	lastQuery PeriodQuery
}

func (f *fakeLedgerRepo) AppendTransaction(_ context.Context, tx domain.Transaction) error {
	f.txs = append(f.txs, tx)
	return nil
}

func (f *fakeLedgerRepo) ListPeriod(_ context.Context, q PeriodQuery) ([]domain.Transaction, int, error) {
	f.lastQuery = q
	out := []domain.Transaction{}
	for _, tx := range f.txs {
		if tx.Date.Before(q.From) || !tx.Date.Before(q.To) {
			continue
		}
		if q.Type != "" && tx.Type != q.Type {
			continue
		}
		if q.Source != "" && tx.Source != q.Source {
			continue
		}
		out = append(out, tx)
	}
	return out, len(out), nil
}

func (f *fakeLedgerRepo) ListAllInPeriod(_ context.Context, from, to time.Time) ([]domain.Transaction, error) {
	out := []domain.Transaction{}
	for _, tx := range f.txs {
		if tx.Date.Before(from) || !tx.Date.Before(to) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}
