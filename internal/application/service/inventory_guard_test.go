package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/entity"
	"github.com/sangkips/bizops-api/internal/domain/enum"
	"github.com/sangkips/bizops-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDemand(t *testing.T) {
	widget := &entity.Item{ID: uuid.New(), Name: "Widget", Type: enum.ItemTypeProduct, Stock: 10}
	gadget := &entity.Item{ID: uuid.New(), Name: "Gadget", Type: enum.ItemTypeProduct, Stock: 10}
	install := &entity.Item{ID: uuid.New(), Name: "Install", Type: enum.ItemTypeService}
	itemsByID := map[uuid.UUID]*entity.Item{
		widget.ID:  widget,
		gadget.ID:  gadget,
		install.ID: install,
	}

	lines := []entity.OrderLineSnapshot{
		{ItemID: gadget.ID, Quantity: dec("1")},
		{ItemID: install.ID, Quantity: dec("3")},
		{ItemID: widget.ID, Quantity: dec("2")},
		{ItemID: uuid.New(), Quantity: dec("4")},
		{ItemID: gadget.ID, Quantity: dec("1.5")},
	}

	demand := BuildDemand(lines, itemsByID)

	require.Len(t, demand, 2)
	assert.Equal(t, gadget.ID, demand[0].ItemID)
	assert.Equal(t, "2.5", demand[0].Quantity.String())
	assert.Equal(t, widget.ID, demand[1].ItemID)
	assert.Equal(t, "2", demand[1].Quantity.String())
}

func TestEnsureAvailable(t *testing.T) {
	widget := &entity.Item{ID: uuid.New(), Name: "Widget", Type: enum.ItemTypeProduct, Stock: 3}
	itemsByID := map[uuid.UUID]*entity.Item{widget.ID: widget}

	t.Run("exact stock is enough", func(t *testing.T) {
		err := EnsureAvailable(itemsByID, []ItemDemand{{ItemID: widget.ID, Quantity: dec("3")}})
		assert.NoError(t, err)
	})

	t.Run("demand above stock", func(t *testing.T) {
		err := EnsureAvailable(itemsByID, []ItemDemand{{ItemID: widget.ID, Quantity: dec("3.5")}})

		var stockErr *apperror.InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.Equal(t, widget.ID, stockErr.ItemID)
		assert.Equal(t, "Widget", stockErr.ItemName)
		assert.Equal(t, 3, stockErr.Available)
		assert.Equal(t, "3.5", stockErr.Requested.String())
		assert.Equal(t, 422, apperror.GetAppError(err).Code)
	})

	t.Run("does not write", func(t *testing.T) {
		_ = EnsureAvailable(itemsByID, []ItemDemand{{ItemID: widget.ID, Quantity: dec("1")}})
		assert.Equal(t, 3, widget.Stock)
	})
}

func TestInventoryGuard_ApplyDeduction(t *testing.T) {
	t.Run("writes floor of remaining stock", func(t *testing.T) {
		f := newOrderFixture(t, "16")
		widget := f.product("Widget", "10.00", 10)
		guard := NewInventoryGuard(f.store.Items())

		movements, err := guard.ApplyDeduction(f.ctx, f.tenant.ID, []ItemDemand{{ItemID: widget.ID, Quantity: dec("2.5")}})
		require.NoError(t, err)

		require.Len(t, movements, 1)
		assert.Equal(t, widget.ID, movements[0].ItemID)
		assert.Equal(t, 10, movements[0].Before)
		assert.Equal(t, 7, movements[0].After)
		assert.Equal(t, 7, f.stockOf(widget))
	})

	t.Run("re-reads stock instead of trusting the earlier read", func(t *testing.T) {
		f := newOrderFixture(t, "16")
		widget := f.product("Widget", "10.00", 5)
		stale := map[uuid.UUID]*entity.Item{widget.ID: widget}
		demand := []ItemDemand{{ItemID: widget.ID, Quantity: dec("4")}}
		require.NoError(t, EnsureAvailable(stale, demand))

		// another order takes most of the stock in between
		require.NoError(t, f.store.Items().UpdateStock(f.ctx, widget.ID, 2))

		_, err := NewInventoryGuard(f.store.Items()).ApplyDeduction(f.ctx, f.tenant.ID, demand)

		var stockErr *apperror.InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.Equal(t, 2, stockErr.Available)
		assert.Equal(t, 2, f.stockOf(widget))
	})

	t.Run("empty demand is a no-op", func(t *testing.T) {
		f := newOrderFixture(t, "16")
		movements, err := NewInventoryGuard(f.store.Items()).ApplyDeduction(f.ctx, f.tenant.ID, nil)
		assert.NoError(t, err)
		assert.Empty(t, movements)
	})

	t.Run("item from another tenant is not found", func(t *testing.T) {
		f := newOrderFixture(t, "16")
		widget := f.product("Widget", "10.00", 5)

		_, err := NewInventoryGuard(f.store.Items()).ApplyDeduction(f.ctx, uuid.New(), []ItemDemand{{ItemID: widget.ID, Quantity: dec("1")}})

		assert.True(t, apperror.IsType(err, apperror.TypeValidation))
		assert.Equal(t, 5, f.stockOf(widget))
	})
}
