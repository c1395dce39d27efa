package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/perchdesk/perchdesk/internal/app"
	"github.com/perchdesk/perchdesk/internal/domain"
)

const transactionColumns = `id, type, amount, source, description, date,
COALESCE(booking_id::text, ''), COALESCE(order_id::text, ''), created_by, created_at`

type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// AppendTransaction inserts one ledger row. There is deliberately no update
// or delete statement in this repository.
func (r *LedgerRepository) AppendTransaction(ctx context.Context, t domain.Transaction) error {
	const stmt = `
INSERT INTO transactions (id, type, amount, source, description, date, booking_id, order_id, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, NULLIF($8, '')::uuid, $9, $10)`

	_, err := r.exec(ctx, stmt,
		t.ID,
		t.Type,
		t.Amount,
		t.Source,
		t.Description,
		t.Date,
		t.BookingID,
		t.OrderID,
		t.CreatedBy,
		t.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return storeErr("append transaction", err)
	}
	return nil
}

func (r *LedgerRepository) ListPeriod(ctx context.Context, q app.PeriodQuery) ([]domain.Transaction, int, error) {
	where := ` WHERE date >= $1 AND date < $2`
	args := []any{q.From, q.To}

	if q.Type != "" {
		args = append(args, q.Type)
		where += ` AND type = $` + itoa(len(args))
	}
	if q.Source != "" {
		args = append(args, q.Source)
		where += ` AND source = $` + itoa(len(args))
	}

	var total int
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, storeErr("count transactions", err)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions` + where +
		` ORDER BY date DESC, seq DESC`
	args = append(args, q.Limit)
	query += ` LIMIT $` + itoa(len(args))
	args = append(args, q.Offset)
	query += ` OFFSET $` + itoa(len(args))

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, storeErr("list transactions", err)
	}
	defer rows.Close()

	txs, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

func (r *LedgerRepository) ListAllInPeriod(ctx context.Context, from, to time.Time) ([]domain.Transaction, error) {
	const query = `
SELECT ` + transactionColumns + `
FROM transactions WHERE date >= $1 AND date < $2 ORDER BY date, seq`

	rows, err := r.query(ctx, query, from, to)
	if err != nil {
		return nil, storeErr("list period transactions", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	txs := []domain.Transaction{}
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID, &t.Type, &t.Amount, &t.Source, &t.Description, &t.Date,
			&t.BookingID, &t.OrderID, &t.CreatedBy, &t.CreatedAt,
		); err != nil {
			return nil, storeErr("scan transaction", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("collect transactions", err)
	}
	return txs, nil
}

func (r *LedgerRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *LedgerRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *LedgerRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
