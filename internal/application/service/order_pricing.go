package service

import (
	"github.com/sangkips/bizops-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var hundred = decimal.NewFromInt(100)

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func maxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// extractNet divides VAT out of a tax-inclusive gross amount
func extractNet(gross, vatRate decimal.Decimal) decimal.Decimal {
	if !vatRate.IsPositive() {
		return gross
	}
	return round2(gross.Div(decimal.NewFromInt(1).Add(vatRate.Div(hundred))))
}

func taxOn(net, vatRate decimal.Decimal) decimal.Decimal {
	if !vatRate.IsPositive() {
		return decimal.Zero
	}
	return round2(net.Mul(vatRate.Div(hundred)))
}

// BuildLineSnapshot prices one ordered line from the item's current price.
// Every intermediate figure is rounded to cents before it is used again.
func BuildLineSnapshot(item *entity.Item, quantity, vatRate decimal.Decimal, metadata map[string]interface{}) entity.OrderLineSnapshot {
	qty := quantity.Round(3)
	unitPrice := round2(item.Price)

	effective := unitPrice
	var discounted *decimal.Decimal
	if item.DiscountedPrice != nil {
		d := round2(*item.DiscountedPrice)
		discounted = &d
		effective = d
	}

	lineSubtotal := round2(unitPrice.Mul(qty))
	lineDiscount := round2(unitPrice.Sub(effective).Mul(qty))
	lineTotal := round2(effective.Mul(qty))
	lineTax := taxOn(extractNet(lineTotal, vatRate), vatRate)

	snapshot := entity.OrderLineSnapshot{
		TenantID:            item.TenantID,
		ItemID:              item.ID,
		ItemName:            item.Name,
		ItemType:            item.Type,
		UnitPrice:           unitPrice,
		DiscountedUnitPrice: discounted,
		TaxRate:             vatRate,
		Quantity:            qty,
		LineSubtotal:        lineSubtotal,
		LineDiscount:        lineDiscount,
		LineTax:             lineTax,
		LineTotal:           lineTotal,
	}
	if len(metadata) > 0 {
		snapshot.Metadata = datatypes.JSONMap(metadata)
	}
	return snapshot
}

// OrderTotals are the order level figures folded from a set of line snapshots
type OrderTotals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Taxable  decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
}

// CalculateOrderTotals folds line snapshots into order totals. Tax is taken
// from the summed line totals, not from the per-line tax figures, so it can
// differ from the sum of LineTax by a cent.
func CalculateOrderTotals(lines []entity.OrderLineSnapshot, shipping, vatRate decimal.Decimal) OrderTotals {
	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal)
		discount = discount.Add(line.LineDiscount)
	}
	subtotal = round2(subtotal)

	taxable := extractNet(subtotal, vatRate)
	return OrderTotals{
		Subtotal: subtotal,
		Discount: round2(discount),
		Taxable:  taxable,
		Tax:      taxOn(taxable, vatRate),
		Shipping: maxZero(round2(shipping)),
	}
}

// CalculateWithholding returns the withholding deducted from the taxable base
func CalculateWithholding(taxable, withholdingRate decimal.Decimal) decimal.Decimal {
	if !withholdingRate.IsPositive() {
		return decimal.Zero
	}
	return round2(taxable.Mul(withholdingRate.Div(hundred)))
}

// FinalizeTotal returns the payable total, never below zero
func FinalizeTotal(subtotal, shipping, withholding decimal.Decimal) decimal.Decimal {
	return maxZero(round2(subtotal.Add(shipping).Sub(withholding)))
}

// applyTotals writes computed figures onto the order
func applyTotals(order *entity.Order, totals OrderTotals, withholding decimal.Decimal) {
	order.SubtotalAmount = totals.Subtotal
	order.DiscountAmount = totals.Discount
	order.TaxAmount = totals.Tax
	order.ShippingAmount = totals.Shipping
	order.WithholdingTaxAmount = withholding
	order.TotalAmount = FinalizeTotal(totals.Subtotal, totals.Shipping, withholding)
}
