// Package services provides pricing, validation and export logic for
// AI-generated bills of quantities.
package services

import (
	"fmt"

	"github.com/google/uuid"
)

// ReferenceCurrency is the currency all base prices are expressed in.
const ReferenceCurrency = "USD"

// DefaultTaxRate is the combined tax percentage applied after margin.
const DefaultTaxRate = 18.0

// TaxPolicy selects how the tax figure is presented: a single flat rate or
// two equal components (e.g. CGST + SGST) that sum to the flat amount.
type TaxPolicy string

const (
	TaxPolicyFlat  TaxPolicy = "flat"
	TaxPolicySplit TaxPolicy = "split"
)

// LineItem is one priced equipment entry. UnitPrice and TotalPrice are
// always in the reference currency; conversion happens at derivation time.
// Margin is a per-item override in percent; nil means the item inherits the
// context's global margin. An explicit zero override disables margin for
// the item regardless of the global setting.
type LineItem struct {
	ID          string
	Category    string
	Description string
	Brand       string
	Model       string
	Quantity    int
	UnitPrice   float64
	TotalPrice  float64
	Margin      *float64
	Notes       string
	ImageURL    string
}

// ValidationError reports a line item or room that fails structural or
// numeric constraints.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewLineItem constructs a line item with a fresh stable identifier and a
// derived total price. Negative quantities or prices are rejected.
func NewLineItem(category, description, brand, model string, quantity int, unitPrice float64) (LineItem, error) {
	if quantity < 0 {
		return LineItem{}, &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	if unitPrice < 0 {
		return LineItem{}, &ValidationError{Field: "unitPrice", Reason: "must not be negative"}
	}
	item := LineItem{
		ID:          uuid.NewString(),
		Category:    category,
		Description: description,
		Brand:       brand,
		Model:       model,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
	item.TotalPrice = DeriveTotal(quantity, unitPrice)
	return item, nil
}

// DeriveTotal computes the reference-currency total for a quantity and unit
// price. Every mutation of either field must re-derive the total through
// this function.
func DeriveTotal(quantity int, unitPrice float64) float64 {
	return float64(quantity) * unitPrice
}

// PricingContext carries the ephemeral inputs of a derivation pass. It is
// rebuilt per render or export and never persisted.
type PricingContext struct {
	Currency     string
	ExchangeRate float64 // reference currency -> Currency multiplier
	GlobalMargin float64 // percent, used when an item has no override
	TaxRate      float64 // percent, combined
	TaxPolicy    TaxPolicy
}

// NormalizeRate clamps missing or non-positive exchange rates to 1.0 so a
// bad rate degrades to "no conversion" instead of corrupting every figure.
func NormalizeRate(rate float64) float64 {
	if rate <= 0 {
		return 1.0
	}
	return rate
}

// ResolveMargin returns the margin percent that applies to an item: the
// item's own override when present, otherwise the context's global margin.
// This is the single implementation of the fallback; display and export
// must both go through it.
func ResolveMargin(item LineItem, ctx PricingContext) float64 {
	if item.Margin != nil {
		return *item.Margin
	}
	return ctx.GlobalMargin
}

// ItemPricing holds every derived figure for one line item in the selected
// currency.
type ItemPricing struct {
	UnitPriceConverted  float64
	TotalPriceConverted float64
	MarginPercent       float64
	MarginAmount        float64
	AmountAfterMargin   float64
	UnitPriceFinal      float64
	TaxAmount           float64
	TaxComponents       [2]float64
	FinalPrice          float64
}

// EffectivePrice derives the full per-item figure set in fixed order:
// convert, apply margin, apply tax. It is pure and never fails on an item
// that passed validation.
func EffectivePrice(item LineItem, ctx PricingContext) ItemPricing {
	rate := NormalizeRate(ctx.ExchangeRate)
	marginPct := ResolveMargin(item, ctx)

	unitConverted := item.UnitPrice * rate
	totalConverted := item.TotalPrice * rate

	multiplier := 1 + marginPct/100
	amountAfterMargin := totalConverted * multiplier
	unitAfterMargin := unitConverted * multiplier

	taxAmount := amountAfterMargin * ctx.TaxRate / 100
	unitTax := unitAfterMargin * ctx.TaxRate / 100

	return ItemPricing{
		UnitPriceConverted:  unitConverted,
		TotalPriceConverted: totalConverted,
		MarginPercent:       marginPct,
		MarginAmount:        amountAfterMargin - totalConverted,
		AmountAfterMargin:   amountAfterMargin,
		UnitPriceFinal:      unitAfterMargin + unitTax,
		TaxAmount:           taxAmount,
		TaxComponents:       SplitTax(taxAmount),
		FinalPrice:          amountAfterMargin + taxAmount,
	}
}

// SplitTax divides a flat tax amount into two equal components. The second
// component is the remainder so the pair always sums exactly to the input,
// with no independent rounding drift.
func SplitTax(taxAmount float64) [2]float64 {
	half := taxAmount / 2
	return [2]float64{half, taxAmount - half}
}

// RoomTotals aggregates a room's items. Each field is the sum of the
// corresponding per-item figure, never recomputed from other aggregates,
// which keeps item, room and project levels reconciled by construction.
type RoomTotals struct {
	Subtotal      float64 // converted, before margin
	MarginAmount  float64
	TaxAmount     float64
	TaxComponents [2]float64
	GrandTotal    float64
}

// CalcRoomTotals sums the derived figures of every item in a room.
func CalcRoomTotals(items []LineItem, ctx PricingContext) RoomTotals {
	var totals RoomTotals
	for _, item := range items {
		p := EffectivePrice(item, ctx)
		totals.Subtotal += p.TotalPriceConverted
		totals.MarginAmount += p.MarginAmount
		totals.TaxAmount += p.TaxAmount
		totals.GrandTotal += p.FinalPrice
	}
	totals.TaxComponents = SplitTax(totals.TaxAmount)
	return totals
}

// CalcProjectTotal sums room grand totals into the project grand total.
func CalcProjectTotal(rooms []RoomTotals) float64 {
	var total float64
	for _, r := range rooms {
		total += r.GrandTotal
	}
	return total
}
