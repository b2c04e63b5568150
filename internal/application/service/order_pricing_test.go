package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/entity"
	"github.com/sangkips/bizops-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pricedItem(price string, discounted *decimal.Decimal) *entity.Item {
	return &entity.Item{
		ID:              uuid.New(),
		TenantID:        uuid.New(),
		Name:            "Widget",
		Type:            enum.ItemTypeProduct,
		Price:           dec(price),
		DiscountedPrice: discounted,
		Stock:           100,
	}
}

func TestBuildLineSnapshot(t *testing.T) {
	tests := []struct {
		name         string
		price        string
		discounted   *decimal.Decimal
		quantity     string
		vat          string
		wantQty      string
		wantSubtotal string
		wantDiscount string
		wantTax      string
		wantTotal    string
	}{
		{
			name:         "tax inclusive price",
			price:        "112.00",
			quantity:     "2",
			vat:          "12",
			wantQty:      "2.000",
			wantSubtotal: "224.00",
			wantDiscount: "0.00",
			wantTax:      "24.00",
			wantTotal:    "224.00",
		},
		{
			name:         "discounted price",
			price:        "100.00",
			discounted:   decPtr("90.00"),
			quantity:     "3",
			vat:          "16",
			wantQty:      "3.000",
			wantSubtotal: "300.00",
			wantDiscount: "30.00",
			wantTax:      "37.24",
			wantTotal:    "270.00",
		},
		{
			name:         "zero vat",
			price:        "50.00",
			quantity:     "2",
			vat:          "0",
			wantQty:      "2.000",
			wantSubtotal: "100.00",
			wantDiscount: "0.00",
			wantTax:      "0.00",
			wantTotal:    "100.00",
		},
		{
			name:         "quantity rounded to three places",
			price:        "10.00",
			quantity:     "1.23456",
			vat:          "0",
			wantQty:      "1.235",
			wantSubtotal: "12.35",
			wantDiscount: "0.00",
			wantTax:      "0.00",
			wantTotal:    "12.35",
		},
		{
			name:         "unit price rounded to cents",
			price:        "9.999",
			quantity:     "1",
			vat:          "0",
			wantQty:      "1.000",
			wantSubtotal: "10.00",
			wantDiscount: "0.00",
			wantTax:      "0.00",
			wantTotal:    "10.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := pricedItem(tt.price, tt.discounted)
			snap := BuildLineSnapshot(item, dec(tt.quantity), dec(tt.vat), nil)

			assert.Equal(t, item.ID, snap.ItemID)
			assert.Equal(t, item.TenantID, snap.TenantID)
			assert.Equal(t, "Widget", snap.ItemName)
			assert.Equal(t, enum.ItemTypeProduct, snap.ItemType)
			assert.Equal(t, tt.wantQty, snap.Quantity.StringFixed(3))
			assert.Equal(t, tt.wantSubtotal, snap.LineSubtotal.StringFixed(2))
			assert.Equal(t, tt.wantDiscount, snap.LineDiscount.StringFixed(2))
			assert.Equal(t, tt.wantTax, snap.LineTax.StringFixed(2))
			assert.Equal(t, tt.wantTotal, snap.LineTotal.StringFixed(2))
			assert.True(t, snap.TaxRate.Equal(dec(tt.vat)))
			assert.Nil(t, snap.Metadata)
		})
	}
}

func TestBuildLineSnapshot_KeepsDiscountedPriceAndMetadata(t *testing.T) {
	item := pricedItem("100.00", decPtr("80.004"))
	snap := BuildLineSnapshot(item, dec("1"), dec("16"), map[string]interface{}{"note": "gift wrap"})

	require.NotNil(t, snap.DiscountedUnitPrice)
	assert.Equal(t, "80.00", snap.DiscountedUnitPrice.StringFixed(2))
	assert.Equal(t, "100.00", snap.UnitPrice.StringFixed(2))
	assert.Equal(t, "gift wrap", snap.Metadata["note"])
}

func TestBuildLineSnapshot_DoesNotFollowLaterRepricing(t *testing.T) {
	item := pricedItem("112.00", nil)
	snap := BuildLineSnapshot(item, dec("2"), dec("12"), nil)

	item.Price = dec("500.00")

	assert.Equal(t, "112.00", snap.UnitPrice.StringFixed(2))
	assert.Equal(t, "224.00", snap.LineTotal.StringFixed(2))
}

func TestCalculateOrderTotals(t *testing.T) {
	t.Run("single line with shipping", func(t *testing.T) {
		snap := BuildLineSnapshot(pricedItem("112.00", nil), dec("2"), dec("12"), nil)
		totals := CalculateOrderTotals([]entity.OrderLineSnapshot{snap}, dec("10"), dec("12"))

		assert.Equal(t, "224.00", totals.Subtotal.StringFixed(2))
		assert.Equal(t, "200.00", totals.Taxable.StringFixed(2))
		assert.Equal(t, "24.00", totals.Tax.StringFixed(2))
		assert.Equal(t, "0.00", totals.Discount.StringFixed(2))
		assert.Equal(t, "10.00", totals.Shipping.StringFixed(2))

		withholding := CalculateWithholding(totals.Taxable, decimal.Zero)
		assert.True(t, withholding.IsZero())
		assert.Equal(t, "234.00", FinalizeTotal(totals.Subtotal, totals.Shipping, withholding).StringFixed(2))
	})

	t.Run("withholding on the taxable base", func(t *testing.T) {
		snap := BuildLineSnapshot(pricedItem("112.00", nil), dec("2"), dec("12"), nil)
		totals := CalculateOrderTotals([]entity.OrderLineSnapshot{snap}, dec("10"), dec("12"))

		withholding := CalculateWithholding(totals.Taxable, dec("5"))
		assert.Equal(t, "10.00", withholding.StringFixed(2))
		assert.Equal(t, "224.00", FinalizeTotal(totals.Subtotal, totals.Shipping, withholding).StringFixed(2))
	})

	t.Run("order tax comes from the summed totals", func(t *testing.T) {
		item := pricedItem("1.00", nil)
		lines := make([]entity.OrderLineSnapshot, 7)
		lineTaxSum := decimal.Zero
		for i := range lines {
			lines[i] = BuildLineSnapshot(item, dec("1"), dec("16"), nil)
			lineTaxSum = lineTaxSum.Add(lines[i].LineTax)
		}

		totals := CalculateOrderTotals(lines, decimal.Zero, dec("16"))

		assert.Equal(t, "0.98", lineTaxSum.StringFixed(2))
		assert.Equal(t, "7.00", totals.Subtotal.StringFixed(2))
		assert.Equal(t, "6.03", totals.Taxable.StringFixed(2))
		assert.Equal(t, "0.96", totals.Tax.StringFixed(2))
	})

	t.Run("discounts are summed", func(t *testing.T) {
		a := BuildLineSnapshot(pricedItem("100.00", decPtr("90.00")), dec("1"), dec("16"), nil)
		b := BuildLineSnapshot(pricedItem("50.00", decPtr("45.00")), dec("2"), dec("16"), nil)
		totals := CalculateOrderTotals([]entity.OrderLineSnapshot{a, b}, decimal.Zero, dec("16"))

		assert.Equal(t, "20.00", totals.Discount.StringFixed(2))
		assert.Equal(t, "180.00", totals.Subtotal.StringFixed(2))
	})

	t.Run("negative shipping clamps to zero", func(t *testing.T) {
		snap := BuildLineSnapshot(pricedItem("10.00", nil), dec("1"), dec("0"), nil)
		totals := CalculateOrderTotals([]entity.OrderLineSnapshot{snap}, dec("-5"), dec("0"))

		assert.True(t, totals.Shipping.IsZero())
	})

	t.Run("no lines", func(t *testing.T) {
		totals := CalculateOrderTotals(nil, dec("3.456"), dec("16"))

		assert.True(t, totals.Subtotal.IsZero())
		assert.True(t, totals.Tax.IsZero())
		assert.Equal(t, "3.46", totals.Shipping.StringFixed(2))
	})
}

func TestFinalizeTotal_NeverNegative(t *testing.T) {
	total := FinalizeTotal(dec("10.00"), decimal.Zero, dec("15.00"))
	assert.True(t, total.IsZero())
}

func TestCalculateWithholding_ZeroOrNegativeRate(t *testing.T) {
	assert.True(t, CalculateWithholding(dec("200.00"), decimal.Zero).IsZero())
	assert.True(t, CalculateWithholding(dec("200.00"), dec("-1")).IsZero())
}

// Folding snapshots must always satisfy subtotal == round2(sum of line
// totals) and total == max(round2(subtotal + shipping - withholding), 0)
func TestOrderTotalsInvariant(t *testing.T) {
	prices := []string{"0.99", "1.00", "3.33", "19.95", "112.00", "249.99"}
	quantities := []string{"1", "0.5", "2.333", "7", "12.125"}
	rates := []string{"0", "8", "16"}
	withholdingRates := []string{"0", "2", "5"}

	for _, rate := range rates {
		var lines []entity.OrderLineSnapshot
		for i, price := range prices {
			lines = append(lines, BuildLineSnapshot(pricedItem(price, nil), dec(quantities[i%len(quantities)]), dec(rate), nil))
		}

		sum := decimal.Zero
		for _, l := range lines {
			sum = sum.Add(l.LineTotal)
		}

		for _, whtRate := range withholdingRates {
			totals := CalculateOrderTotals(lines, dec("7.50"), dec(rate))
			withholding := CalculateWithholding(totals.Taxable, dec(whtRate))
			total := FinalizeTotal(totals.Subtotal, totals.Shipping, withholding)

			assert.True(t, totals.Subtotal.Equal(sum.Round(2)), "rate %s", rate)
			expected := totals.Subtotal.Add(totals.Shipping).Sub(withholding).Round(2)
			if expected.IsNegative() {
				expected = decimal.Zero
			}
			assert.True(t, total.Equal(expected), "rate %s withholding %s", rate, whtRate)
			assert.True(t, totals.Taxable.LessThanOrEqual(totals.Subtotal))
		}
	}
}

func TestApplyTotals(t *testing.T) {
	snap := BuildLineSnapshot(pricedItem("112.00", nil), dec("2"), dec("12"), nil)
	totals := CalculateOrderTotals([]entity.OrderLineSnapshot{snap}, dec("10"), dec("12"))

	order := &entity.Order{}
	applyTotals(order, totals, dec("10.00"))

	assert.Equal(t, "224.00", order.SubtotalAmount.StringFixed(2))
	assert.Equal(t, "24.00", order.TaxAmount.StringFixed(2))
	assert.Equal(t, "10.00", order.ShippingAmount.StringFixed(2))
	assert.Equal(t, "10.00", order.WithholdingTaxAmount.StringFixed(2))
	assert.Equal(t, "224.00", order.TotalAmount.StringFixed(2))
}
