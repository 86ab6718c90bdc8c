package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"avproposal/aigen"
	"avproposal/services"
)

// itemForm carries the JSON body for item create/update requests. Margin
// set to a value pins the item's own margin; clearMargin returns the item
// to inheriting the project margin.
type itemForm struct {
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Brand       *string  `json:"brand"`
	Model       *string  `json:"model"`
	Qty         *int     `json:"qty"`
	UnitPrice   *float64 `json:"unitPrice"`
	Margin      *float64 `json:"margin"`
	ClearMargin bool     `json:"clearMargin"`
	Notes       *string  `json:"notes"`
	ImageURL    *string  `json:"imageUrl"`
}

// applyItemForm copies the submitted fields onto the record, re-deriving
// total_price whenever qty or unit_price changes. It returns a
// field->message map of validation errors.
func applyItemForm(record *core.Record, form itemForm) map[string]string {
	errors := make(map[string]string)

	if form.Category != nil {
		if strings.TrimSpace(*form.Category) == "" {
			errors["category"] = "Category is required"
		} else {
			record.Set("category", strings.TrimSpace(*form.Category))
		}
	}
	if form.Description != nil {
		if strings.TrimSpace(*form.Description) == "" {
			errors["description"] = "Description is required"
		} else {
			record.Set("description", strings.TrimSpace(*form.Description))
		}
	}
	if form.Brand != nil {
		if strings.TrimSpace(*form.Brand) == "" {
			errors["brand"] = "Brand is required"
		} else {
			record.Set("brand", strings.TrimSpace(*form.Brand))
		}
	}
	if form.Model != nil {
		if strings.TrimSpace(*form.Model) == "" {
			errors["model"] = "Model is required"
		} else {
			record.Set("model", strings.TrimSpace(*form.Model))
		}
	}
	if form.Qty != nil {
		if *form.Qty < 0 {
			errors["qty"] = "Quantity cannot be negative"
		} else {
			record.Set("qty", *form.Qty)
		}
	}
	if form.UnitPrice != nil {
		if *form.UnitPrice < 0 {
			errors["unitPrice"] = "Unit price cannot be negative"
		} else {
			record.Set("unit_price", *form.UnitPrice)
		}
	}
	if form.Margin != nil {
		if *form.Margin < 0 {
			errors["margin"] = "Margin cannot be negative"
		} else {
			record.Set("has_margin", true)
			record.Set("margin", *form.Margin)
		}
	}
	if form.ClearMargin {
		record.Set("has_margin", false)
		record.Set("margin", 0)
	}
	if form.Notes != nil {
		record.Set("notes", strings.TrimSpace(*form.Notes))
	}
	if form.ImageURL != nil {
		record.Set("image_url", strings.TrimSpace(*form.ImageURL))
	}

	if len(errors) == 0 {
		record.Set("total_price", services.DeriveTotal(record.GetInt("qty"), record.GetFloat("unit_price")))
	}
	return errors
}

// HandleItemCreate returns a handler that adds a manual line item to a room.
func HandleItemCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		roomID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("rooms", roomID); err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "Room not found"})
		}

		var form itemForm
		if err := e.BindBody(&form); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		}

		missing := map[string]string{}
		for field, v := range map[string]*string{
			"category":    form.Category,
			"description": form.Description,
			"brand":       form.Brand,
			"model":       form.Model,
		} {
			if v == nil || strings.TrimSpace(*v) == "" {
				missing[field] = "This field is required"
			}
		}
		if form.Qty == nil {
			missing["qty"] = "This field is required"
		}
		if form.UnitPrice == nil {
			missing["unitPrice"] = "This field is required"
		}
		if len(missing) > 0 {
			return e.JSON(http.StatusBadRequest, map[string]any{"errors": missing})
		}

		col, err := app.FindCollectionByNameOrId("boq_items")
		if err != nil {
			log.Printf("item_create: could not find boq_items collection: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		// Append after the current last item.
		existing, err := app.FindRecordsByFilter("boq_items", "room = {:roomId}", "-sort_order", 1, 0,
			map[string]any{"roomId": roomID})
		nextOrder := 1
		if err == nil && len(existing) > 0 {
			nextOrder = existing[0].GetInt("sort_order") + 1
		}

		record := core.NewRecord(col)
		record.Set("room", roomID)
		record.Set("sort_order", nextOrder)
		record.Set("has_margin", false)

		if errors := applyItemForm(record, form); len(errors) > 0 {
			return e.JSON(http.StatusBadRequest, map[string]any{"errors": errors})
		}

		if err := app.Save(record); err != nil {
			log.Printf("item_create: could not save item: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		return e.JSON(http.StatusCreated, itemResponse(record))
	}
}

// HandleItemUpdate returns a handler that applies a partial update to a
// line item.
func HandleItemUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("id")
		record, err := app.FindRecordById("boq_items", itemID)
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "Item not found"})
		}

		var form itemForm
		if err := e.BindBody(&form); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		}

		if errors := applyItemForm(record, form); len(errors) > 0 {
			return e.JSON(http.StatusBadRequest, map[string]any{"errors": errors})
		}

		if err := app.Save(record); err != nil {
			log.Printf("item_update: could not save item %s: %v", itemID, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		return e.JSON(http.StatusOK, itemResponse(record))
	}
}

// HandleItemDelete returns a handler that removes a line item.
func HandleItemDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("id")
		record, err := app.FindRecordById("boq_items", itemID)
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "Item not found"})
		}

		if err := app.Delete(record); err != nil {
			log.Printf("item_delete: could not delete item %s: %v", itemID, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		return e.NoContent(http.StatusNoContent)
	}
}

// HandleItemDetails returns a handler that looks up an image URL and short
// description for an item's brand and model, and stores them on the item.
func HandleItemDetails(app *pocketbase.PocketBase, lookup aigen.ProductLookup) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("id")
		record, err := app.FindRecordById("boq_items", itemID)
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "Item not found"})
		}

		name := strings.TrimSpace(record.GetString("brand") + " " + record.GetString("model"))
		info, err := lookup.ProductDetails(e.Request.Context(), name)
		if err != nil {
			log.Printf("item_details: lookup failed for item %s: %v", itemID, err)
			return e.JSON(http.StatusBadGateway, map[string]any{"error": "Product lookup failed"})
		}

		if info.ImageURL != "" {
			record.Set("image_url", info.ImageURL)
		}
		if info.Description != "" && record.GetString("notes") == "" {
			record.Set("notes", info.Description)
		}
		if err := app.Save(record); err != nil {
			log.Printf("item_details: could not save item %s: %v", itemID, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		return e.JSON(http.StatusOK, itemResponse(record))
	}
}
