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

const bookingColumns = `id, desk_id, customer_name, customer_email, customer_phone,
start_time, end_time, status, desk_cost, created_at`

const nonTerminalStatuses = `('pending', 'confirmed', 'checked-in')`

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *BookingRepository) GetDeskForUpdate(ctx context.Context, deskID string) (domain.Desk, error) {
	const query = `
SELECT id, label, status, hourly_rate, location, description, created_at
FROM desks WHERE id = $1 FOR UPDATE`

	var d domain.Desk
	err := r.queryRow(ctx, query, deskID).
		Scan(&d.ID, &d.Label, &d.Status, &d.HourlyRate, &d.Location, &d.Description, &d.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Desk{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Desk{}, domain.ErrDeskNotFound
		}
		return domain.Desk{}, storeErr("get desk for update", err)
	}
	return d, nil
}

// AnyOverlapping reports whether a non-terminal booking on the desk
// intersects [start, end) under half-open semantics.
func (r *BookingRepository) AnyOverlapping(ctx context.Context, deskID string, start, end time.Time, excludeID string) (bool, error) {
	const query = `
SELECT EXISTS (
	SELECT 1 FROM bookings
	WHERE desk_id = $1
	  AND status IN ` + nonTerminalStatuses + `
	  AND start_time < $3
	  AND $2 < end_time
	  AND ($4 = '' OR id::text <> $4)
)`

	var exists bool
	if err := r.queryRow(ctx, query, deskID, start, end, excludeID).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, storeErr("check overlap", err)
	}
	return exists, nil
}

func (r *BookingRepository) AnyCovering(ctx context.Context, deskID string, at time.Time, statuses []domain.BookingStatus) (bool, error) {
	const query = `
SELECT EXISTS (
	SELECT 1 FROM bookings
	WHERE desk_id = $1
	  AND status = ANY($3)
	  AND start_time <= $2
	  AND end_time > $2
)`

	list := make([]string, len(statuses))
	for i, s := range statuses {
		list[i] = string(s)
	}

	var exists bool
	if err := r.queryRow(ctx, query, deskID, at, list).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, storeErr("check coverage", err)
	}
	return exists, nil
}

func (r *BookingRepository) AnyNonTerminal(ctx context.Context, deskID string) (bool, error) {
	const query = `
SELECT EXISTS (
	SELECT 1 FROM bookings
	WHERE desk_id = $1 AND status IN ` + nonTerminalStatuses + `
)`

	var exists bool
	if err := r.queryRow(ctx, query, deskID).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, storeErr("check open bookings", err)
	}
	return exists, nil
}

func (r *BookingRepository) CreateBooking(ctx context.Context, b domain.Booking) error {
	const stmt = `
INSERT INTO bookings (` + bookingColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.exec(ctx, stmt,
		b.ID,
		b.DeskID,
		b.Customer.Name,
		b.Customer.Email,
		b.Customer.Phone,
		b.StartTime,
		b.EndTime,
		b.Status,
		b.DeskCost,
		b.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return storeErr("create booking", err)
	}
	return nil
}

func (r *BookingRepository) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	return r.getBooking(ctx, id, false)
}

func (r *BookingRepository) GetBookingForUpdate(ctx context.Context, id string) (domain.Booking, error) {
	return r.getBooking(ctx, id, true)
}

func (r *BookingRepository) getBooking(ctx context.Context, id string, forUpdate bool) (domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var b domain.Booking
	err := r.queryRow(ctx, query, id).Scan(
		&b.ID, &b.DeskID, &b.Customer.Name, &b.Customer.Email, &b.Customer.Phone,
		&b.StartTime, &b.EndTime, &b.Status, &b.DeskCost, &b.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Booking{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Booking{}, domain.ErrBookingNotFound
		}
		return domain.Booking{}, storeErr("get booking", err)
	}
	return b, nil
}

func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	tag, err := r.exec(ctx, `UPDATE bookings SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return storeErr("update booking status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) ListBookings(ctx context.Context, filter app.BookingFilter) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []any{}

	if filter.DeskID != "" {
		args = append(args, filter.DeskID)
		query += ` AND desk_id = $` + itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + itoa(len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += ` AND end_time > $` + itoa(len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += ` AND start_time < $` + itoa(len(args))
	}
	query += ` ORDER BY start_time DESC`

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, storeErr("list bookings", err)
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID, &b.DeskID, &b.Customer.Name, &b.Customer.Email, &b.Customer.Phone,
			&b.StartTime, &b.EndTime, &b.Status, &b.DeskCost, &b.CreatedAt,
		); err != nil {
			return nil, storeErr("scan booking", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list bookings", err)
	}
	return bookings, nil
}

func (r *BookingRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *BookingRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *BookingRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
