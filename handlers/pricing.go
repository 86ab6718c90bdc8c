package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"avproposal/rates"
	"avproposal/services"
)

// itemPricingResponse serializes a computed item pricing for JSON output.
func itemPricingResponse(item services.LineItem, p services.ItemPricing) map[string]any {
	return map[string]any{
		"id":                 item.ID,
		"unitPriceConverted": p.UnitPriceConverted,
		"totalPrice":         p.TotalPriceConverted,
		"marginPercent":      p.MarginPercent,
		"marginAmount":       p.MarginAmount,
		"amountAfterMargin":  p.AmountAfterMargin,
		"taxAmount":          p.TaxAmount,
		"taxComponents":      p.TaxComponents,
		"finalPrice":         p.FinalPrice,
	}
}

func roomTotalsResponse(t services.RoomTotals) map[string]any {
	return map[string]any{
		"subtotal":      t.Subtotal,
		"marginAmount":  t.MarginAmount,
		"taxAmount":     t.TaxAmount,
		"taxComponents": t.TaxComponents,
		"grandTotal":    t.GrandTotal,
	}
}

// HandleRoomPricing returns a handler that recomputes the pricing of every
// item in a room under the project's current pricing settings. Nothing is
// persisted; stored prices stay in the reference currency.
func HandleRoomPricing(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		roomID := e.Request.PathValue("id")
		room, err := app.FindRecordById("rooms", roomID)
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "Room not found"})
		}
		project, err := app.FindRecordById("projects", room.GetString("project"))
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "Project not found"})
		}

		items, err := loadRoomItems(app, roomID)
		if err != nil {
			log.Printf("room_pricing: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		ctx := pricingContext(project)
		priced := make([]map[string]any, 0, len(items))
		for _, item := range items {
			priced = append(priced, itemPricingResponse(item, services.EffectivePrice(item, ctx)))
		}

		totals := services.CalcRoomTotals(items, ctx)
		return e.JSON(http.StatusOK, map[string]any{
			"room":     roomID,
			"currency": ctx.Currency,
			"items":    priced,
			"totals":   roomTotalsResponse(totals),
		})
	}
}

// HandleProjectPricing returns a handler that recomputes every room's
// totals and the project grand total. The grand total is the sum of the
// room totals, which are themselves sums of per-item prices.
func HandleProjectPricing(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		project, err := app.FindRecordById("projects", projectID)
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "Project not found"})
		}

		roomRecords, err := app.FindRecordsByFilter("rooms", "project = {:projectId}", "created", 0, 0,
			map[string]any{"projectId": projectID})
		if err != nil {
			log.Printf("project_pricing: could not load rooms: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		ctx := pricingContext(project)
		var allTotals []services.RoomTotals
		roomsOut := make([]map[string]any, 0, len(roomRecords))
		for _, room := range roomRecords {
			items, err := loadRoomItems(app, room.Id)
			if err != nil {
				log.Printf("project_pricing: %v", err)
				return e.String(http.StatusInternalServerError, "Internal error")
			}
			totals := services.CalcRoomTotals(items, ctx)
			allTotals = append(allTotals, totals)
			roomsOut = append(roomsOut, map[string]any{
				"id":     room.Id,
				"name":   room.GetString("name"),
				"items":  len(items),
				"totals": roomTotalsResponse(totals),
			})
		}

		grand := services.CalcProjectTotal(allTotals)
		return e.JSON(http.StatusOK, map[string]any{
			"project":           projectID,
			"currency":          ctx.Currency,
			"rooms":             roomsOut,
			"grandTotal":        grand,
			"grandTotalDisplay": services.FormatMoney(grand, ctx.Currency),
		})
	}
}

// HandleRates returns a handler that serves the latest exchange rates for
// the supported currencies, for populating the currency picker.
func HandleRates(provider rates.Provider) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		all, err := provider.GetRates(e.Request.Context())
		if err != nil {
			log.Printf("rates: fetch failed: %v", err)
			return e.JSON(http.StatusBadGateway, map[string]any{"error": "Could not fetch exchange rates"})
		}

		out := make(map[string]float64, len(services.CurrencyOptions))
		for _, opt := range services.CurrencyOptions {
			out[opt.Code] = rates.Resolve(all, opt.Code)
		}
		return e.JSON(http.StatusOK, map[string]any{
			"base":  services.ReferenceCurrency,
			"rates": out,
		})
	}
}
