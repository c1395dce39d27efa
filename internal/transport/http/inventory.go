package http

import (
	"net/http"
	"time"

	"github.com/perchdesk/perchdesk/internal/app"
	"github.com/perchdesk/perchdesk/internal/domain"
)

type componentPayload struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type itemResponse struct {
	ID                string             `json:"id"`
	SKU               string             `json:"sku"`
	Name              string             `json:"name"`
	Category          string             `json:"category"`
	Price             float64            `json:"price"`
	Quantity          int                `json:"quantity"`
	LowStockThreshold int                `json:"low_stock_threshold"`
	Unit              string             `json:"unit,omitempty"`
	Type              string             `json:"type"`
	IsLowStock        bool               `json:"is_low_stock"`
	IncludedItems     []componentPayload `json:"included_items,omitempty"`
	FixedDurationMins int                `json:"fixed_duration_minutes,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

func toItemResponse(item domain.InventoryItem) itemResponse {
	resp := itemResponse{
		ID:                item.ID,
		SKU:               item.SKU,
		Name:              item.Name,
		Category:          string(item.Category),
		Price:             item.Price,
		Quantity:          item.Quantity,
		LowStockThreshold: item.LowStockThreshold,
		Unit:              item.Unit,
		Type:              string(item.Kind),
		IsLowStock:        item.LowStock(),
		FixedDurationMins: int(item.FixedDuration / time.Minute),
	}
	for _, c := range item.Components {
		resp.IncludedItems = append(resp.IncludedItems, componentPayload{ItemID: c.ItemID, Quantity: c.Quantity})
	}
	resp.CreatedAt = item.CreatedAt
	return resp
}

type createItemRequest struct {
	SKU               string             `json:"sku"`
	Name              string             `json:"name"`
	Category          string             `json:"category"`
	Price             float64            `json:"price"`
	Quantity          int                `json:"quantity"`
	LowStockThreshold int                `json:"low_stock_threshold"`
	Unit              string             `json:"unit,omitempty"`
	IncludedItems     []componentPayload `json:"included_items,omitempty"`
	FixedDurationMins int                `json:"fixed_duration_minutes,omitempty"`
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body", "")
		return
	}

	in := app.CreateItemInput{
		SKU:               req.SKU,
		Name:              req.Name,
		Category:          req.Category,
		Price:             req.Price,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
		Unit:              req.Unit,
		FixedDuration:     time.Duration(req.FixedDurationMins) * time.Minute,
	}
	for _, c := range req.IncludedItems {
		in.Components = append(in.Components, domain.ComboComponent{ItemID: c.ItemID, Quantity: c.Quantity})
	}

	item, err := s.inventory.CreateItem(r.Context(), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := s.inventory.ListItems(r.Context(), app.ListItemsInput{
		Category:     q.Get("category"),
		LowStockOnly: q.Get("low_stock_only") == "true",
		SortField:    q.Get("sort_field"),
		SortOrder:    q.Get("sort_order"),
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	resp := make([]itemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toItemResponse(item))
	}
	writeJSON(w, http.StatusOK, resp)
}
