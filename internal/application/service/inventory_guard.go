package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/entity"
	"github.com/sangkips/bizops-api/internal/domain/repository"
	"github.com/sangkips/bizops-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// ItemDemand is the total quantity of one item requested across an order's lines
type ItemDemand struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal
}

// StockMovement records a stock deduction applied to one item
type StockMovement struct {
	ItemID   uuid.UUID       `json:"item_id"`
	ItemName string          `json:"item_name"`
	Quantity decimal.Decimal `json:"quantity"`
	Before   int             `json:"stock_before"`
	After    int             `json:"stock_after"`
}

// InventoryGuard validates and deducts stock for product lines
type InventoryGuard struct {
	itemRepo repository.ItemRepository
}

// NewInventoryGuard creates a new inventory guard
func NewInventoryGuard(itemRepo repository.ItemRepository) *InventoryGuard {
	return &InventoryGuard{itemRepo: itemRepo}
}

// BuildDemand sums quantities per item in first-seen order. Services and
// items missing from itemsByID do not consume stock and are skipped.
func BuildDemand(lines []entity.OrderLineSnapshot, itemsByID map[uuid.UUID]*entity.Item) []ItemDemand {
	index := make(map[uuid.UUID]int)
	var demand []ItemDemand
	for _, line := range lines {
		item, ok := itemsByID[line.ItemID]
		if !ok || !item.Type.TracksStock() {
			continue
		}
		if i, seen := index[line.ItemID]; seen {
			demand[i].Quantity = demand[i].Quantity.Add(line.Quantity)
			continue
		}
		index[line.ItemID] = len(demand)
		demand = append(demand, ItemDemand{ItemID: line.ItemID, Quantity: line.Quantity})
	}
	return demand
}

// EnsureAvailable fails on the first item whose demand exceeds its stock.
// It never writes.
func EnsureAvailable(itemsByID map[uuid.UUID]*entity.Item, demand []ItemDemand) error {
	for _, d := range demand {
		item, ok := itemsByID[d.ItemID]
		if !ok {
			return apperror.NewValidationError("Item not found: " + d.ItemID.String())
		}
		if d.Quantity.GreaterThan(decimal.NewFromInt(int64(item.Stock))) {
			return &apperror.InsufficientStockError{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Requested: d.Quantity,
				Available: item.Stock,
			}
		}
	}
	return nil
}

// ApplyDeduction re-reads the items under a row lock and writes
// floor(stock - demand) for each one. It must run inside the same
// transaction as the order write.
func (g *InventoryGuard) ApplyDeduction(ctx context.Context, tenantID uuid.UUID, demand []ItemDemand) ([]StockMovement, error) {
	if len(demand) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(demand))
	for i, d := range demand {
		ids[i] = d.ItemID
	}

	locked, err := g.itemRepo.GetByIDsForUpdate(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	current := make(map[uuid.UUID]*entity.Item, len(locked))
	for i := range locked {
		current[locked[i].ID] = &locked[i]
	}

	movements := make([]StockMovement, 0, len(demand))
	for _, d := range demand {
		item, ok := current[d.ItemID]
		if !ok {
			return nil, apperror.NewValidationError("Item not found: " + d.ItemID.String())
		}

		remaining := decimal.NewFromInt(int64(item.Stock)).Sub(d.Quantity).Floor()
		if remaining.IsNegative() {
			return nil, &apperror.InsufficientStockError{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Requested: d.Quantity,
				Available: item.Stock,
			}
		}

		after := int(remaining.IntPart())
		if err := g.itemRepo.UpdateStock(ctx, item.ID, after); err != nil {
			return nil, err
		}
		movements = append(movements, StockMovement{
			ItemID:   item.ID,
			ItemName: item.Name,
			Quantity: d.Quantity,
			Before:   item.Stock,
			After:    after,
		})
	}
	return movements, nil
}
