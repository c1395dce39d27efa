package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/perchdesk/perchdesk/internal/domain"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error) {
	const query = `
SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	var b domain.Booking
	err := r.queryRow(ctx, query, bookingID).Scan(
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
		return domain.Booking{}, storeErr("get booking for update", err)
	}
	return b, nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (id, booking_id, total, status, created_at, delivered_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.exec(ctx, stmt,
		order.ID,
		order.BookingID,
		order.Total,
		order.Status,
		order.CreatedAt,
		order.DeliveredAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return storeErr("create order", err)
	}

	for pos, line := range order.Lines {
		const lineStmt = `
INSERT INTO order_lines (order_id, position, item_id, name, unit_price, quantity, subtotal)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
		_, err := r.exec(ctx, lineStmt,
			order.ID, pos, line.ItemID, line.Name, line.UnitPrice, line.Quantity, line.Subtotal,
		)
		if err != nil {
			return storeErr("create order line", err)
		}
	}
	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return r.getOrder(ctx, id, false)
}

func (r *OrderRepository) GetOrderForUpdate(ctx context.Context, id string) (domain.Order, error) {
	return r.getOrder(ctx, id, true)
}

func (r *OrderRepository) getOrder(ctx context.Context, id string, forUpdate bool) (domain.Order, error) {
	query := `
SELECT id, booking_id, total, status, created_at, delivered_at FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var o domain.Order
	err := r.queryRow(ctx, query, id).
		Scan(&o.ID, &o.BookingID, &o.Total, &o.Status, &o.CreatedAt, &o.DeliveredAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, storeErr("get order", err)
	}

	const lineQuery = `
SELECT item_id, name, unit_price, quantity, subtotal
FROM order_lines WHERE order_id = $1 ORDER BY position`

	rows, err := r.query(ctx, lineQuery, id)
	if err != nil {
		return domain.Order{}, storeErr("get order lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ItemID, &line.Name, &line.UnitPrice, &line.Quantity, &line.Subtotal); err != nil {
			return domain.Order{}, storeErr("scan order line", err)
		}
		o.Lines = append(o.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return domain.Order{}, storeErr("get order lines", err)
	}
	return o, nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, deliveredAt *time.Time) error {
	const stmt = `
UPDATE orders SET status = $2, delivered_at = COALESCE($3, delivered_at) WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, status, deliveredAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return storeErr("update order status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
