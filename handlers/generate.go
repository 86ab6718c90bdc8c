package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"avproposal/aigen"
	"avproposal/collections"
	"avproposal/services"
)

// Busy tracks rooms with an in-flight generation call so a room can never
// run two generations at once.
type Busy struct {
	mu    sync.Mutex
	rooms map[string]bool
}

// NewBusy creates an empty guard.
func NewBusy() *Busy {
	return &Busy{rooms: make(map[string]bool)}
}

// TryAcquire marks the room busy. It returns false if the room is already
// generating.
func (b *Busy) TryAcquire(roomID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rooms[roomID] {
		return false
	}
	b.rooms[roomID] = true
	return true
}

// Release clears the room's busy flag.
func (b *Busy) Release(roomID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.rooms, roomID)
}

// buildRequirements flattens the room's name and questionnaire answers into
// the free-text requirements string for the generator.
func buildRequirements(room *core.Record) string {
	var answers map[string]any
	_ = room.UnmarshalJSONField("answers", &answers)

	req := fmt.Sprintf("Room: %s", room.GetString("name"))
	if flat := services.AnswersToRequirements(answers); flat != "" {
		req += ". " + flat
	}
	return req
}

// markRoomError records a failed generation, unless a later generation has
// already taken over the room.
func markRoomError(app *pocketbase.PocketBase, roomID string, gen int, msg string) {
	room, err := app.FindRecordById("rooms", roomID)
	if err != nil || room.GetInt("generation") != gen {
		return
	}
	room.Set("status", collections.StatusError)
	room.Set("last_error", msg)
	if err := app.Save(room); err != nil {
		log.Printf("generate: could not mark room %s error: %v", roomID, err)
	}
}

// applyGeneratedItems replaces the room's items with the parsed list. It
// re-fetches the room first and refuses to apply if another generation has
// superseded this one, so the last started request always wins.
func applyGeneratedItems(app *pocketbase.PocketBase, roomID string, gen int, items []services.LineItem) (bool, error) {
	room, err := app.FindRecordById("rooms", roomID)
	if err != nil {
		return false, fmt.Errorf("room vanished: %w", err)
	}
	if room.GetInt("generation") != gen {
		return true, nil // superseded
	}

	existing, err := app.FindRecordsByFilter("boq_items", "room = {:roomId}", "", 0, 0,
		map[string]any{"roomId": roomID})
	if err != nil {
		return false, fmt.Errorf("could not load existing items: %w", err)
	}
	for _, r := range existing {
		if err := app.Delete(r); err != nil {
			return false, fmt.Errorf("could not delete item %s: %w", r.Id, err)
		}
	}

	itemsCol, err := app.FindCollectionByNameOrId("boq_items")
	if err != nil {
		return false, fmt.Errorf("could not find boq_items collection: %w", err)
	}
	for i, item := range items {
		r := core.NewRecord(itemsCol)
		r.Set("room", roomID)
		r.Set("sort_order", i+1)
		r.Set("category", item.Category)
		r.Set("description", item.Description)
		r.Set("brand", item.Brand)
		r.Set("model", item.Model)
		r.Set("qty", item.Quantity)
		r.Set("unit_price", item.UnitPrice)
		r.Set("total_price", services.DeriveTotal(item.Quantity, item.UnitPrice))
		r.Set("has_margin", item.Margin != nil)
		if item.Margin != nil {
			r.Set("margin", *item.Margin)
		}
		if item.Notes != "" {
			r.Set("notes", item.Notes)
		}
		if item.ImageURL != "" {
			r.Set("image_url", item.ImageURL)
		}
		if err := app.Save(r); err != nil {
			return false, fmt.Errorf("could not save item %q: %w", item.Description, err)
		}
	}

	room.Set("status", collections.StatusReady)
	room.Set("last_error", "")
	if err := app.Save(room); err != nil {
		return false, fmt.Errorf("could not mark room ready: %w", err)
	}
	return false, nil
}

// generateResponse renders the outcome of a generate/refine call.
func generateResponse(app *pocketbase.PocketBase, e *core.RequestEvent, roomID string, skipped []services.ItemError) error {
	room, err := app.FindRecordById("rooms", roomID)
	if err != nil {
		return e.JSON(http.StatusNotFound, map[string]any{"error": "Room not found"})
	}

	itemRecords, err := app.FindRecordsByFilter("boq_items", "room = {:roomId}", "sort_order", 0, 0,
		map[string]any{"roomId": roomID})
	if err != nil {
		itemRecords = nil
	}
	items := make([]map[string]any, 0, len(itemRecords))
	for _, r := range itemRecords {
		items = append(items, itemResponse(r))
	}

	resp := roomResponse(room)
	resp["items"] = items
	resp["skippedItems"] = len(skipped)
	return e.JSON(http.StatusOK, resp)
}

// HandleRoomGenerate returns a handler that asks the generator for a fresh
// BOQ from the room's questionnaire answers and replaces the room's items
// with the result.
func HandleRoomGenerate(app *pocketbase.PocketBase, generator aigen.Generator, busy *Busy) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		roomID := e.Request.PathValue("id")
		room, err := app.FindRecordById("rooms", roomID)
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "Room not found"})
		}

		if !busy.TryAcquire(roomID) {
			return e.JSON(http.StatusConflict, map[string]any{"error": "A generation is already running for this room"})
		}
		defer busy.Release(roomID)

		gen := room.GetInt("generation") + 1
		room.Set("generation", gen)
		room.Set("status", collections.StatusPending)
		room.Set("last_error", "")
		if err := app.Save(room); err != nil {
			log.Printf("generate: could not mark room %s pending: %v", roomID, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		raw, err := generator.GenerateBOQ(e.Request.Context(), buildRequirements(room))
		if err != nil {
			log.Printf("generate: generator failed for room %s: %v", roomID, err)
			markRoomError(app, roomID, gen, "Failed to generate BOQ")
			return e.JSON(http.StatusBadGateway, map[string]any{"error": "Failed to generate BOQ"})
		}

		items, skipped, err := services.ParseGeneratedItems(raw)
		if err != nil {
			var malformed *services.MalformedResponseError
			if errors.As(err, &malformed) {
				log.Printf("generate: malformed response for room %s: %v", roomID, err)
			}
			markRoomError(app, roomID, gen, "The AI returned an invalid BOQ format")
			return e.JSON(http.StatusBadGateway, map[string]any{"error": "The AI returned an invalid BOQ format"})
		}
		for _, se := range skipped {
			log.Printf("generate: room %s dropped item %d: %v", roomID, se.Index, se.Err)
		}

		superseded, err := applyGeneratedItems(app, roomID, gen, items)
		if err != nil {
			log.Printf("generate: could not apply items for room %s: %v", roomID, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}
		if superseded {
			return e.JSON(http.StatusConflict, map[string]any{"error": "Superseded by a newer generation"})
		}

		return generateResponse(app, e, roomID, skipped)
	}
}

// currentBOQJSON serializes the room's items in the wire shape the
// generator emits, for use as refine input.
func currentBOQJSON(items []services.LineItem) (string, error) {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{
			"category":        it.Category,
			"itemDescription": it.Description,
			"brand":           it.Brand,
			"model":           it.Model,
			"quantity":        it.Quantity,
			"unitPrice":       it.UnitPrice,
			"totalPrice":      it.TotalPrice,
		})
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// HandleRoomRefine returns a handler that sends the room's current items
// plus a free-text instruction to the generator and replaces the items with
// the refined list.
func HandleRoomRefine(app *pocketbase.PocketBase, generator aigen.Generator, busy *Busy) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		roomID := e.Request.PathValue("id")
		room, err := app.FindRecordById("rooms", roomID)
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "Room not found"})
		}

		var form struct {
			Instruction string `json:"instruction"`
		}
		if err := e.BindBody(&form); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		}
		if strings.TrimSpace(form.Instruction) == "" {
			return e.JSON(http.StatusBadRequest, map[string]any{
				"errors": map[string]string{"instruction": "Refinement instruction is required"},
			})
		}

		current, err := loadRoomItems(app, roomID)
		if err != nil {
			log.Printf("refine: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}
		if len(current) == 0 {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Room has no items to refine; generate first"})
		}

		if !busy.TryAcquire(roomID) {
			return e.JSON(http.StatusConflict, map[string]any{"error": "A generation is already running for this room"})
		}
		defer busy.Release(roomID)

		gen := room.GetInt("generation") + 1
		room.Set("generation", gen)
		room.Set("status", collections.StatusPending)
		room.Set("last_error", "")
		if err := app.Save(room); err != nil {
			log.Printf("refine: could not mark room %s pending: %v", roomID, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		boqJSON, err := currentBOQJSON(current)
		if err != nil {
			log.Printf("refine: could not serialize current BOQ for room %s: %v", roomID, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		raw, err := generator.RefineBOQ(e.Request.Context(), boqJSON, form.Instruction)
		if err != nil {
			log.Printf("refine: generator failed for room %s: %v", roomID, err)
			markRoomError(app, roomID, gen, "Failed to refine BOQ")
			return e.JSON(http.StatusBadGateway, map[string]any{"error": "Failed to refine BOQ"})
		}

		items, skipped, err := services.ParseGeneratedItems(raw)
		if err != nil {
			markRoomError(app, roomID, gen, "The AI returned an invalid BOQ format")
			return e.JSON(http.StatusBadGateway, map[string]any{"error": "The AI returned an invalid BOQ format"})
		}
		for _, se := range skipped {
			log.Printf("refine: room %s dropped item %d: %v", roomID, se.Index, se.Err)
		}

		superseded, err := applyGeneratedItems(app, roomID, gen, items)
		if err != nil {
			log.Printf("refine: could not apply items for room %s: %v", roomID, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}
		if superseded {
			return e.JSON(http.StatusConflict, map[string]any{"error": "Superseded by a newer generation"})
		}

		return generateResponse(app, e, roomID, skipped)
	}
}
