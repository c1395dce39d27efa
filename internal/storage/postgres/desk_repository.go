package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/perchdesk/perchdesk/internal/domain"
)

type DeskRepository struct {
	pool *pgxpool.Pool
}

func NewDeskRepository(pool *pgxpool.Pool) *DeskRepository {
	return &DeskRepository{pool: pool}
}

func (r *DeskRepository) CreateDesk(ctx context.Context, desk domain.Desk) error {
	const stmt = `
INSERT INTO desks (id, label, status, hourly_rate, location, description, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, stmt,
		desk.ID,
		desk.Label,
		desk.Status,
		desk.HourlyRate,
		desk.Location,
		desk.Description,
		desk.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateLabel
		}
		return storeErr("create desk", err)
	}
	return nil
}

func (r *DeskRepository) GetDesk(ctx context.Context, id string) (domain.Desk, error) {
	const query = `
SELECT id, label, status, hourly_rate, location, description, created_at
FROM desks WHERE id = $1`

	var d domain.Desk
	err := r.queryRow(ctx, query, id).
		Scan(&d.ID, &d.Label, &d.Status, &d.HourlyRate, &d.Location, &d.Description, &d.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Desk{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Desk{}, domain.ErrDeskNotFound
		}
		return domain.Desk{}, storeErr("get desk", err)
	}
	return d, nil
}

func (r *DeskRepository) ListDesks(ctx context.Context) ([]domain.Desk, error) {
	const query = `
SELECT id, label, status, hourly_rate, location, description, created_at
FROM desks ORDER BY label`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, storeErr("list desks", err)
	}
	defer rows.Close()

	desks := []domain.Desk{}
	for rows.Next() {
		var d domain.Desk
		if err := rows.Scan(&d.ID, &d.Label, &d.Status, &d.HourlyRate, &d.Location, &d.Description, &d.CreatedAt); err != nil {
			return nil, storeErr("scan desk", err)
		}
		desks = append(desks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list desks", err)
	}
	return desks, nil
}

func (r *DeskRepository) UpdateDesk(ctx context.Context, desk domain.Desk) error {
	const stmt = `
UPDATE desks
SET label = $2, status = $3, hourly_rate = $4, location = $5, description = $6
WHERE id = $1`

	tag, err := r.exec(ctx, stmt,
		desk.ID,
		desk.Label,
		desk.Status,
		desk.HourlyRate,
		desk.Location,
		desk.Description,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateLabel
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return storeErr("update desk", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDeskNotFound
	}
	return nil
}

func (r *DeskRepository) DeleteDesk(ctx context.Context, id string) error {
	tag, err := r.exec(ctx, `DELETE FROM desks WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return storeErr("delete desk", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDeskNotFound
	}
	return nil
}

func (r *DeskRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *DeskRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *DeskRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
