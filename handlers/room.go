package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"avproposal/collections"
)

type roomForm struct {
	Name    *string         `json:"name"`
	Answers *map[string]any `json:"answers"`
}

// HandleRoomCreate returns a handler that adds a room to a project.
func HandleRoomCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "Project not found"})
		}

		var form roomForm
		if err := e.BindBody(&form); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		}
		if form.Name == nil || strings.TrimSpace(*form.Name) == "" {
			return e.JSON(http.StatusBadRequest, map[string]any{
				"errors": map[string]string{"name": "Room name is required"},
			})
		}

		col, err := app.FindCollectionByNameOrId("rooms")
		if err != nil {
			log.Printf("room_create: could not find rooms collection: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		record := core.NewRecord(col)
		record.Set("project", projectID)
		record.Set("name", strings.TrimSpace(*form.Name))
		record.Set("status", collections.StatusIdle)
		record.Set("generation", 0)
		if form.Answers != nil {
			record.Set("answers", *form.Answers)
		}

		if err := app.Save(record); err != nil {
			log.Printf("room_create: could not save room: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		return e.JSON(http.StatusCreated, roomResponse(record))
	}
}

// HandleRoomView returns a handler that renders one room with its items.
func HandleRoomView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		roomID := e.Request.PathValue("id")
		record, err := app.FindRecordById("rooms", roomID)
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "Room not found"})
		}

		itemRecords, err := app.FindRecordsByFilter("boq_items", "room = {:roomId}", "sort_order", 0, 0,
			map[string]any{"roomId": roomID})
		if err != nil {
			log.Printf("room_view: could not load items: %v", err)
			itemRecords = nil
		}

		items := make([]map[string]any, 0, len(itemRecords))
		for _, r := range itemRecords {
			items = append(items, itemResponse(r))
		}

		resp := roomResponse(record)
		resp["items"] = items
		return e.JSON(http.StatusOK, resp)
	}
}

// HandleRoomUpdate returns a handler that updates a room's name or
// questionnaire answers. Changing answers does not touch existing items;
// the user re-generates when they want the new answers reflected.
func HandleRoomUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		roomID := e.Request.PathValue("id")
		record, err := app.FindRecordById("rooms", roomID)
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "Room not found"})
		}

		var form roomForm
		if err := e.BindBody(&form); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		}

		if form.Name != nil {
			name := strings.TrimSpace(*form.Name)
			if name == "" {
				return e.JSON(http.StatusBadRequest, map[string]any{
					"errors": map[string]string{"name": "Room name is required"},
				})
			}
			record.Set("name", name)
		}
		if form.Answers != nil {
			record.Set("answers", *form.Answers)
		}

		if err := app.Save(record); err != nil {
			log.Printf("room_update: could not save room %s: %v", roomID, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		return e.JSON(http.StatusOK, roomResponse(record))
	}
}

// HandleRoomDelete returns a handler that deletes a room and its items.
func HandleRoomDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		roomID := e.Request.PathValue("id")
		record, err := app.FindRecordById("rooms", roomID)
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "Room not found"})
		}

		if err := app.Delete(record); err != nil {
			log.Printf("room_delete: could not delete room %s: %v", roomID, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		return e.NoContent(http.StatusNoContent)
	}
}
