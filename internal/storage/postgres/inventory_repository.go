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

const itemColumns = `id, sku, name, category, price, quantity, low_stock_threshold,
unit, kind, fixed_duration_secs, created_at`

type InventoryRepository struct {
	pool *pgxpool.Pool
}

func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

func (r *InventoryRepository) CreateItem(ctx context.Context, item domain.InventoryItem) error {
	err := withTx(ctx, r.pool, func(txCtx context.Context) error {
		const stmt = `
INSERT INTO inventory_items (` + itemColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

		_, err := r.exec(txCtx, stmt,
			item.ID,
			item.SKU,
			item.Name,
			item.Category,
			item.Price,
			item.Quantity,
			item.LowStockThreshold,
			item.Unit,
			item.Kind,
			int64(item.FixedDuration/time.Second),
			item.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateSKU
			}
			return storeErr("create item", err)
		}

		for pos, c := range item.Components {
			const compStmt = `
INSERT INTO item_components (combo_id, position, item_id, quantity)
VALUES ($1, $2, $3, $4)`
			if _, err := r.exec(txCtx, compStmt, item.ID, pos, c.ItemID, c.Quantity); err != nil {
				return storeErr("create item component", err)
			}
		}
		return nil
	})
	return err
}

func (r *InventoryRepository) GetItem(ctx context.Context, id string) (domain.InventoryItem, error) {
	const query = `SELECT ` + itemColumns + ` FROM inventory_items WHERE id = $1`

	item, err := r.scanItem(r.queryRow(ctx, query, id))
	if err != nil {
		return domain.InventoryItem{}, err
	}
	if item.Kind == domain.ItemKindCombo {
		components, err := r.componentsFor(ctx, item.ID)
		if err != nil {
			return domain.InventoryItem{}, err
		}
		item.Components = components
	}
	return item, nil
}

func (r *InventoryRepository) GetItems(ctx context.Context, ids []string) ([]domain.InventoryItem, error) {
	const query = `SELECT ` + itemColumns + ` FROM inventory_items WHERE id = ANY($1)`

	rows, err := r.query(ctx, query, ids)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.Invalid("includedItems", "component item id is malformed")
		}
		return nil, storeErr("get items", err)
	}
	defer rows.Close()
	return r.collectItems(rows)
}

var itemSortFields = map[string]string{
	"name":     "name",
	"sku":      "sku",
	"price":    "price",
	"quantity": "quantity",
	"category": "category",
}

func (r *InventoryRepository) ListItems(ctx context.Context, filter app.ItemFilter) ([]domain.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items`
	args := []any{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += ` WHERE category = $` + itoa(len(args))
	}

	// Sort fields go through a whitelist, never into the query verbatim.
	sortField, ok := itemSortFields[filter.SortField]
	if !ok {
		sortField = "name"
	}
	order := "ASC"
	if filter.SortOrder == "desc" {
		order = "DESC"
	}
	query += ` ORDER BY ` + sortField + ` ` + order

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list items", err)
	}
	defer rows.Close()
	return r.collectItems(rows)
}

// AdjustQuantity moves stock by delta, never below zero.
func (r *InventoryRepository) AdjustQuantity(ctx context.Context, id string, delta int) error {
	const stmt = `
UPDATE inventory_items SET quantity = GREATEST(0, quantity + $2) WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, delta)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return storeErr("adjust quantity", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *InventoryRepository) componentsFor(ctx context.Context, comboID string) ([]domain.ComboComponent, error) {
	const query = `
SELECT item_id, quantity FROM item_components WHERE combo_id = $1 ORDER BY position`

	rows, err := r.query(ctx, query, comboID)
	if err != nil {
		return nil, storeErr("get components", err)
	}
	defer rows.Close()

	var components []domain.ComboComponent
	for rows.Next() {
		var c domain.ComboComponent
		if err := rows.Scan(&c.ItemID, &c.Quantity); err != nil {
			return nil, storeErr("scan component", err)
		}
		components = append(components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("get components", err)
	}
	return components, nil
}

func (r *InventoryRepository) scanItem(row pgx.Row) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	var fixedSecs int64
	err := row.Scan(
		&item.ID, &item.SKU, &item.Name, &item.Category, &item.Price,
		&item.Quantity, &item.LowStockThreshold, &item.Unit, &item.Kind,
		&fixedSecs, &item.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.InventoryItem{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.InventoryItem{}, domain.ErrItemNotFound
		}
		return domain.InventoryItem{}, storeErr("get item", err)
	}
	item.FixedDuration = time.Duration(fixedSecs) * time.Second
	return item, nil
}

func (r *InventoryRepository) collectItems(rows pgx.Rows) ([]domain.InventoryItem, error) {
	items := []domain.InventoryItem{}
	for rows.Next() {
		var item domain.InventoryItem
		var fixedSecs int64
		if err := rows.Scan(
			&item.ID, &item.SKU, &item.Name, &item.Category, &item.Price,
			&item.Quantity, &item.LowStockThreshold, &item.Unit, &item.Kind,
			&fixedSecs, &item.CreatedAt,
		); err != nil {
			return nil, storeErr("scan item", err)
		}
		item.FixedDuration = time.Duration(fixedSecs) * time.Second
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("collect items", err)
	}
	return items, nil
}

func (r *InventoryRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *InventoryRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *InventoryRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
