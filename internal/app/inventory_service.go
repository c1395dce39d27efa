package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/perchdesk/perchdesk/internal/clock"
	"github.com/perchdesk/perchdesk/internal/domain"
)

type InventoryRepository interface {
	CreateItem(ctx context.Context, item domain.InventoryItem) error
	GetItem(ctx context.Context, id string) (domain.InventoryItem, error)
	GetItems(ctx context.Context, ids []string) ([]domain.InventoryItem, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]domain.InventoryItem, error)
	AdjustQuantity(ctx context.Context, id string, delta int) error
}

type ItemFilter struct {
	Category  domain.ItemCategory
	SortField string
	SortOrder string
}

type InventoryService struct {
	repo  InventoryRepository
	clock clock.Clock
}

func NewInventoryService(repo InventoryRepository, clk clock.Clock) *InventoryService {
	return &InventoryService{
		repo:  repo,
		clock: clk,
	}
}

type CreateItemInput struct {
	SKU               string
	Name              string
	Category          string
	Price             float64
	Quantity          int
	LowStockThreshold int
	Unit              string
	Components        []domain.ComboComponent
	FixedDuration     time.Duration
}

func (s *InventoryService) CreateItem(ctx context.Context, in CreateItemInput) (domain.InventoryItem, error) {
	sku := domain.NormalizeSKU(in.SKU)
	if sku == "" {
		return domain.InventoryItem{}, domain.Invalid("sku", "required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return domain.InventoryItem{}, domain.Invalid("name", "required")
	}
	category, ok := domain.NormalizeCategory(in.Category)
	if !ok {
		return domain.InventoryItem{}, domain.Invalid("category", "unknown category")
	}
	if in.Price < 0 {
		return domain.InventoryItem{}, domain.Invalid("price", "must not be negative")
	}
	if in.Quantity < 0 {
		return domain.InventoryItem{}, domain.Invalid("quantity", "must not be negative")
	}
	if in.LowStockThreshold < 0 {
		return domain.InventoryItem{}, domain.Invalid("lowStockThreshold", "must not be negative")
	}

	kind := domain.ItemKindPlain
	var components []domain.ComboComponent
	if category == domain.CategoryCombo {
		kind = domain.ItemKindCombo
		validated, err := s.resolveComponents(ctx, in.Components)
		if err != nil {
			return domain.InventoryItem{}, err
		}
		components = validated
	} else {
		if len(in.Components) > 0 {
			return domain.InventoryItem{}, domain.Invalid("includedItems", "only combo items carry components")
		}
		if in.FixedDuration > 0 {
			return domain.InventoryItem{}, domain.Invalid("fixedDurationMinutes", "only combo items may fix a booking duration")
		}
	}

	item := domain.InventoryItem{
		ID:                uuid.NewString(),
		SKU:               sku,
		Name:              strings.TrimSpace(in.Name),
		Category:          category,
		Price:             in.Price,
		Quantity:          in.Quantity,
		LowStockThreshold: in.LowStockThreshold,
		Unit:              in.Unit,
		Kind:              kind,
		Components:        components,
		FixedDuration:     in.FixedDuration,
		CreatedAt:         s.clock.Now(),
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return domain.InventoryItem{}, err
	}
	return item, nil
}

// resolveComponents validates a combo's component list: every reference must
// point at an existing plain item, with quantity at least one. Order is
// preserved for fulfillment.
func (s *InventoryService) resolveComponents(ctx context.Context, components []domain.ComboComponent) ([]domain.ComboComponent, error) {
	if len(components) == 0 {
		return nil, domain.Invalid("includedItems", "combo requires at least one component")
	}

	ids := make([]string, 0, len(components))
	for _, c := range components {
		if c.ItemID == "" {
			return nil, domain.Invalid("includedItems", "component item id is required")
		}
		if c.Quantity < 1 {
			return nil, domain.Invalid("includedItems", "component quantity must be at least 1")
		}
		ids = append(ids, c.ItemID)
	}

	found, err := s.repo.GetItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.InventoryItem, len(found))
	for _, item := range found {
		byID[item.ID] = item
	}

	out := make([]domain.ComboComponent, 0, len(components))
	for _, c := range components {
		item, ok := byID[c.ItemID]
		if !ok {
			return nil, domain.Invalid("includedItems", "component item does not exist")
		}
		if item.Kind == domain.ItemKindCombo {
			return nil, domain.ErrComboNesting
		}
		out = append(out, c)
	}
	return out, nil
}

type ListItemsInput struct {
	Category     string
	LowStockOnly bool
	SortField    string
	SortOrder    string
}

func (s *InventoryService) ListItems(ctx context.Context, in ListItemsInput) ([]domain.InventoryItem, error) {
	filter := ItemFilter{SortField: in.SortField, SortOrder: in.SortOrder}
	if in.Category != "" {
		category, ok := domain.NormalizeCategory(in.Category)
		if !ok {
			return nil, domain.Invalid("category", "unknown category")
		}
		filter.Category = category
	}

	items, err := s.repo.ListItems(ctx, filter)
	if err != nil {
		return nil, err
	}
	if !in.LowStockOnly {
		return items, nil
	}
	// Low stock is derived at read time, so the filter runs here rather than
	// in the query.
	out := items[:0]
	for _, item := range items {
		if item.LowStock() {
			out = append(out, item)
		}
	}
	return out, nil
}

// ResolveCartLine prices one cart entry. A combo line prices at the combo's
// own price (components are fulfillment detail, not separately billed) and
// reports the combo's fixed booking duration, if any.
func (s *InventoryService) ResolveCartLine(ctx context.Context, itemID string, quantity int) (domain.OrderLine, time.Duration, error) {
	if quantity < 1 {
		return domain.OrderLine{}, 0, domain.Invalid("quantity", "must be at least 1")
	}
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return domain.OrderLine{}, 0, err
	}
	line := domain.OrderLine{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		Quantity:  quantity,
		Subtotal:  item.Price * float64(quantity),
	}
	return line, item.FixedDuration, nil
}

// AdjustStock moves an item's on-hand quantity by delta, flooring at zero.
func (s *InventoryService) AdjustStock(ctx context.Context, itemID string, delta int) error {
	return s.repo.AdjustQuantity(ctx, itemID, delta)
}
