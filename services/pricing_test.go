package services

import (
	"math"
	"testing"
)

const priceEpsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < priceEpsilon
}

func floatPtr(v float64) *float64 { return &v }

func TestNewLineItem(t *testing.T) {
	item, err := NewLineItem("Display", "65\" 4K panel", "Samsung", "QM65C", 2, 1500)
	if err != nil {
		t.Fatalf("NewLineItem returned error: %v", err)
	}
	if item.ID == "" {
		t.Error("expected a generated ID")
	}
	if item.TotalPrice != 3000 {
		t.Errorf("TotalPrice = %v, want 3000", item.TotalPrice)
	}
	if item.Margin != nil {
		t.Error("new item should inherit the global margin (nil override)")
	}
}

func TestNewLineItemRejectsNegatives(t *testing.T) {
	if _, err := NewLineItem("Display", "panel", "LG", "X", -1, 100); err == nil {
		t.Error("expected error for negative quantity")
	}
	if _, err := NewLineItem("Display", "panel", "LG", "X", 1, -100); err == nil {
		t.Error("expected error for negative unit price")
	}
}

func TestDeriveTotal(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		unitPrice float64
		expect    float64
	}{
		{"basic multiplication", 2, 100, 200},
		{"zero quantity", 0, 100, 0},
		{"zero price", 5, 0, 0},
		{"decimal price", 3, 99.99, 299.97},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTotal(tt.quantity, tt.unitPrice)
			if !almostEqual(got, tt.expect) {
				t.Errorf("DeriveTotal(%v, %v) = %v, want %v",
					tt.quantity, tt.unitPrice, got, tt.expect)
			}
		})
	}
}

func TestNormalizeRate(t *testing.T) {
	tests := []struct {
		name   string
		rate   float64
		expect float64
	}{
		{"positive rate kept", 83.2, 83.2},
		{"zero clamps to one", 0, 1.0},
		{"negative clamps to one", -2.5, 1.0},
		{"one stays one", 1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeRate(tt.rate); got != tt.expect {
				t.Errorf("NormalizeRate(%v) = %v, want %v", tt.rate, got, tt.expect)
			}
		})
	}
}

func TestResolveMargin(t *testing.T) {
	ctx := PricingContext{GlobalMargin: 10}

	inherit := LineItem{Quantity: 1, UnitPrice: 100}
	if got := ResolveMargin(inherit, ctx); got != 10 {
		t.Errorf("inherited margin = %v, want 10", got)
	}

	override := LineItem{Quantity: 1, UnitPrice: 100, Margin: floatPtr(25)}
	if got := ResolveMargin(override, ctx); got != 25 {
		t.Errorf("override margin = %v, want 25", got)
	}

	// An explicit zero disables margin; it must not fall back to the global.
	zero := LineItem{Quantity: 1, UnitPrice: 100, Margin: floatPtr(0)}
	if got := ResolveMargin(zero, ctx); got != 0 {
		t.Errorf("explicit zero margin = %v, want 0", got)
	}
}

func TestEffectivePriceChain(t *testing.T) {
	// qty 2 x 100 USD, global margin 10%, 18% tax.
	item := LineItem{Quantity: 2, UnitPrice: 100, TotalPrice: 200}
	ctx := PricingContext{
		Currency:     "USD",
		ExchangeRate: 1.0,
		GlobalMargin: 10,
		TaxRate:      18,
		TaxPolicy:    TaxPolicyFlat,
	}

	p := EffectivePrice(item, ctx)
	if !almostEqual(p.AmountAfterMargin, 220) {
		t.Errorf("AmountAfterMargin = %v, want 220", p.AmountAfterMargin)
	}
	if !almostEqual(p.MarginAmount, 20) {
		t.Errorf("MarginAmount = %v, want 20", p.MarginAmount)
	}
	if !almostEqual(p.TaxAmount, 39.6) {
		t.Errorf("TaxAmount = %v, want 39.6", p.TaxAmount)
	}
	if !almostEqual(p.FinalPrice, 259.6) {
		t.Errorf("FinalPrice = %v, want 259.6", p.FinalPrice)
	}
	if !almostEqual(p.UnitPriceFinal, 129.8) {
		t.Errorf("UnitPriceFinal = %v, want 129.8", p.UnitPriceFinal)
	}
}

func TestEffectivePriceExplicitZeroMargin(t *testing.T) {
	item := LineItem{Quantity: 2, UnitPrice: 100, TotalPrice: 200, Margin: floatPtr(0)}
	ctx := PricingContext{ExchangeRate: 1.0, GlobalMargin: 10, TaxRate: 18}

	p := EffectivePrice(item, ctx)
	if !almostEqual(p.AmountAfterMargin, 200) {
		t.Errorf("AmountAfterMargin = %v, want 200 (no margin)", p.AmountAfterMargin)
	}
	if !almostEqual(p.TaxAmount, 36) {
		t.Errorf("TaxAmount = %v, want 36", p.TaxAmount)
	}
	if !almostEqual(p.FinalPrice, 236) {
		t.Errorf("FinalPrice = %v, want 236", p.FinalPrice)
	}
}

func TestEffectivePriceConversion(t *testing.T) {
	item := LineItem{Quantity: 2, UnitPrice: 100, TotalPrice: 200}
	ctx := PricingContext{
		Currency:     "INR",
		ExchangeRate: 83,
		GlobalMargin: 10,
		TaxRate:      18,
	}

	p := EffectivePrice(item, ctx)
	if !almostEqual(p.TotalPriceConverted, 16600) {
		t.Errorf("TotalPriceConverted = %v, want 16600", p.TotalPriceConverted)
	}
	if !almostEqual(p.AmountAfterMargin, 18260) {
		t.Errorf("AmountAfterMargin = %v, want 18260", p.AmountAfterMargin)
	}
	if !almostEqual(p.FinalPrice, 21546.8) {
		t.Errorf("FinalPrice = %v, want 21546.8", p.FinalPrice)
	}
}

func TestEffectivePriceRateOneIsIdentity(t *testing.T) {
	item := LineItem{Quantity: 3, UnitPrice: 42.5, TotalPrice: 127.5}

	base := EffectivePrice(item, PricingContext{ExchangeRate: 1.0, TaxRate: 18})
	// A missing (zero) rate must behave exactly like rate 1.0.
	missing := EffectivePrice(item, PricingContext{ExchangeRate: 0, TaxRate: 18})

	if base != missing {
		t.Errorf("rate 0 pricing %+v differs from rate 1.0 pricing %+v", missing, base)
	}
	if !almostEqual(base.TotalPriceConverted, item.TotalPrice) {
		t.Errorf("rate 1.0 changed the total: %v", base.TotalPriceConverted)
	}
}

func TestSplitTax(t *testing.T) {
	tests := []struct {
		name string
		tax  float64
	}{
		{"even amount", 39.6},
		{"zero", 0},
		{"awkward decimal", 0.01},
		{"large", 123456.789},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := SplitTax(tt.tax)
			if parts[0]+parts[1] != tt.tax {
				t.Errorf("SplitTax(%v) components %v do not sum exactly to the input", tt.tax, parts)
			}
		})
	}
}

func TestCalcRoomTotalsMatchesItemSums(t *testing.T) {
	items := []LineItem{
		{Quantity: 2, UnitPrice: 100, TotalPrice: 200},
		{Quantity: 1, UnitPrice: 999.99, TotalPrice: 999.99, Margin: floatPtr(0)},
		{Quantity: 5, UnitPrice: 12.34, TotalPrice: 61.7, Margin: floatPtr(25)},
	}
	ctx := PricingContext{ExchangeRate: 1.0, GlobalMargin: 10, TaxRate: 18}

	totals := CalcRoomTotals(items, ctx)

	var wantSubtotal, wantMargin, wantTax, wantGrand float64
	for _, item := range items {
		p := EffectivePrice(item, ctx)
		wantSubtotal += p.TotalPriceConverted
		wantMargin += p.MarginAmount
		wantTax += p.TaxAmount
		wantGrand += p.FinalPrice
	}

	if !almostEqual(totals.Subtotal, wantSubtotal) {
		t.Errorf("Subtotal = %v, want %v", totals.Subtotal, wantSubtotal)
	}
	if !almostEqual(totals.MarginAmount, wantMargin) {
		t.Errorf("MarginAmount = %v, want %v", totals.MarginAmount, wantMargin)
	}
	if !almostEqual(totals.TaxAmount, wantTax) {
		t.Errorf("TaxAmount = %v, want %v", totals.TaxAmount, wantTax)
	}
	if !almostEqual(totals.GrandTotal, wantGrand) {
		t.Errorf("GrandTotal = %v, want %v", totals.GrandTotal, wantGrand)
	}
	if totals.TaxComponents[0]+totals.TaxComponents[1] != totals.TaxAmount {
		t.Errorf("room tax components %v do not sum to %v", totals.TaxComponents, totals.TaxAmount)
	}
}

func TestCalcProjectTotal(t *testing.T) {
	rooms := []RoomTotals{
		{GrandTotal: 259.6},
		{GrandTotal: 1000},
		{GrandTotal: 0},
	}
	if got := CalcProjectTotal(rooms); !almostEqual(got, 1259.6) {
		t.Errorf("CalcProjectTotal = %v, want 1259.6", got)
	}
	if got := CalcProjectTotal(nil); got != 0 {
		t.Errorf("empty project total = %v, want 0", got)
	}
}
