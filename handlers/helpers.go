package handlers

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"avproposal/services"
)

// itemFromRecord converts a boq_items record into a pricing line item.
func itemFromRecord(r *core.Record) services.LineItem {
	item := services.LineItem{
		ID:          r.Id,
		Category:    r.GetString("category"),
		Description: r.GetString("description"),
		Brand:       r.GetString("brand"),
		Model:       r.GetString("model"),
		Quantity:    r.GetInt("qty"),
		UnitPrice:   r.GetFloat("unit_price"),
		TotalPrice:  r.GetFloat("total_price"),
		Notes:       r.GetString("notes"),
		ImageURL:    r.GetString("image_url"),
	}
	if r.GetBool("has_margin") {
		m := r.GetFloat("margin")
		item.Margin = &m
	}
	return item
}

// loadRoomItems fetches a room's items ordered by sort_order.
func loadRoomItems(app *pocketbase.PocketBase, roomID string) ([]services.LineItem, error) {
	records, err := app.FindRecordsByFilter("boq_items", "room = {:roomId}", "sort_order", 0, 0,
		map[string]any{"roomId": roomID})
	if err != nil {
		return nil, fmt.Errorf("could not load items for room %s: %w", roomID, err)
	}

	items := make([]services.LineItem, 0, len(records))
	for _, r := range records {
		items = append(items, itemFromRecord(r))
	}
	return items, nil
}

// pricingContext builds the pricing context from a project record. Missing
// fields fall back to the defaults: reference currency, rate 1.0, no
// margin, 18% flat tax.
func pricingContext(project *core.Record) services.PricingContext {
	ctx := services.PricingContext{
		Currency:     project.GetString("currency"),
		ExchangeRate: services.NormalizeRate(project.GetFloat("exchange_rate")),
		GlobalMargin: project.GetFloat("global_margin"),
		TaxRate:      project.GetFloat("tax_rate"),
		TaxPolicy:    services.TaxPolicy(project.GetString("tax_policy")),
	}
	if ctx.Currency == "" {
		ctx.Currency = services.ReferenceCurrency
	}
	if ctx.TaxPolicy == "" {
		ctx.TaxPolicy = services.TaxPolicyFlat
	}
	return ctx
}

// itemResponse serializes a boq_items record for JSON output.
func itemResponse(r *core.Record) map[string]any {
	resp := map[string]any{
		"id":          r.Id,
		"room":        r.GetString("room"),
		"sortOrder":   r.GetInt("sort_order"),
		"category":    r.GetString("category"),
		"description": r.GetString("description"),
		"brand":       r.GetString("brand"),
		"model":       r.GetString("model"),
		"qty":         r.GetInt("qty"),
		"unitPrice":   r.GetFloat("unit_price"),
		"totalPrice":  r.GetFloat("total_price"),
		"notes":       r.GetString("notes"),
		"imageUrl":    r.GetString("image_url"),
	}
	if r.GetBool("has_margin") {
		resp["margin"] = r.GetFloat("margin")
	} else {
		resp["margin"] = nil
	}
	return resp
}

// roomResponse serializes a rooms record for JSON output.
func roomResponse(r *core.Record) map[string]any {
	var answers map[string]any
	_ = r.UnmarshalJSONField("answers", &answers)
	return map[string]any{
		"id":         r.Id,
		"project":    r.GetString("project"),
		"name":       r.GetString("name"),
		"answers":    answers,
		"status":     r.GetString("status"),
		"generation": r.GetInt("generation"),
		"lastError":  r.GetString("last_error"),
	}
}

// projectResponse serializes a projects record for JSON output.
func projectResponse(r *core.Record) map[string]any {
	return map[string]any{
		"id":                 r.Id,
		"name":               r.GetString("name"),
		"clientName":         r.GetString("client_name"),
		"preparedBy":         r.GetString("prepared_by"),
		"designEngineer":     r.GetString("design_engineer"),
		"accountManager":     r.GetString("account_manager"),
		"keyClientPersonnel": r.GetString("key_client_personnel"),
		"location":           r.GetString("location"),
		"keyComments":        r.GetString("key_comments"),
		"budget":             r.GetFloat("budget"),
		"currency":           r.GetString("currency"),
		"exchangeRate":       r.GetFloat("exchange_rate"),
		"globalMargin":       r.GetFloat("global_margin"),
		"taxRate":            r.GetFloat("tax_rate"),
		"taxPolicy":          r.GetString("tax_policy"),
	}
}
