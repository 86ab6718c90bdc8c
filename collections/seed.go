package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type itemDef struct {
	sortOrder   int
	category    string
	description string
	brand       string
	model       string
	qty         int
	unitPrice   float64
	hasMargin   bool
	margin      float64
	notes       string
}

type roomDef struct {
	name    string
	answers map[string]any
	items   []itemDef
}

// Seed populates the collections with a sample AV proposal so a fresh
// install has something to look at. It is safe to call on every startup
// because it returns early if any project records already exist.
func Seed(app *pocketbase.PocketBase) error {
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("seed: could not find projects collection: %w", err)
	}
	existing, err := app.FindAllRecords(projectsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query projects: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: projects collection is empty – inserting seed data …")

	roomsCol, err := app.FindCollectionByNameOrId("rooms")
	if err != nil {
		return fmt.Errorf("seed: could not find rooms collection: %w", err)
	}
	itemsCol, err := app.FindCollectionByNameOrId("boq_items")
	if err != nil {
		return fmt.Errorf("seed: could not find boq_items collection: %w", err)
	}

	createRoom := func(projectID string, d roomDef) error {
		r := core.NewRecord(roomsCol)
		r.Set("project", projectID)
		r.Set("name", d.name)
		r.Set("answers", d.answers)
		if len(d.items) > 0 {
			r.Set("status", StatusReady)
		} else {
			r.Set("status", StatusIdle)
		}
		r.Set("generation", 0)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save room %q: %w", d.name, err)
		}

		for _, it := range d.items {
			ir := core.NewRecord(itemsCol)
			ir.Set("room", r.Id)
			ir.Set("sort_order", it.sortOrder)
			ir.Set("category", it.category)
			ir.Set("description", it.description)
			ir.Set("brand", it.brand)
			ir.Set("model", it.model)
			ir.Set("qty", it.qty)
			ir.Set("unit_price", it.unitPrice)
			ir.Set("total_price", float64(it.qty)*it.unitPrice)
			ir.Set("has_margin", it.hasMargin)
			if it.hasMargin {
				ir.Set("margin", it.margin)
			}
			if it.notes != "" {
				ir.Set("notes", it.notes)
			}
			if err := app.Save(ir); err != nil {
				return fmt.Errorf("seed: save item %q: %w", it.description, err)
			}
		}
		return nil
	}

	p := core.NewRecord(projectsCol)
	p.Set("name", "Corporate HQ — AV Fit-Out")
	p.Set("client_name", "Meridian Holdings Pvt. Ltd.")
	p.Set("prepared_by", "AV Proposals Desk")
	p.Set("design_engineer", "S. Iyer")
	p.Set("account_manager", "R. Thomas")
	p.Set("key_client_personnel", "Facilities Head — A. Menon")
	p.Set("location", "Bangalore")
	p.Set("currency", "USD")
	p.Set("exchange_rate", 1.0)
	p.Set("global_margin", 10.0)
	p.Set("tax_rate", 18.0)
	p.Set("tax_policy", "flat")
	if err := app.Save(p); err != nil {
		return fmt.Errorf("seed: save project: %w", err)
	}

	rooms := []roomDef{
		{
			name: "Boardroom",
			answers: map[string]any{
				"room_type":     "boardroom",
				"seating":       "14",
				"display_pref":  "dual displays",
				"video_conf":    "yes",
				"audio_quality": "premium",
			},
			items: []itemDef{
				{sortOrder: 1, category: "Display", description: "98\" 4K Commercial Display", brand: "Samsung", model: "QM98C", qty: 2, unitPrice: 9500},
				{sortOrder: 2, category: "Video Conferencing", description: "All-in-one 4K video bar with speaker tracking", brand: "Poly", model: "Studio X70", qty: 1, unitPrice: 4200},
				{sortOrder: 3, category: "Audio", description: "Ceiling array microphone", brand: "Shure", model: "MXA920", qty: 2, unitPrice: 5800, hasMargin: true, margin: 15},
				{sortOrder: 4, category: "Control", description: "10\" tabletop touch panel", brand: "Crestron", model: "TS-1070", qty: 1, unitPrice: 2400},
				{sortOrder: 5, category: "Infrastructure", description: "HDMI and CAT6A cabling lot", brand: "Kramer", model: "C-HM/HM", qty: 1, unitPrice: 850, notes: "Includes wall plates and conduit"},
			},
		},
		{
			name: "Huddle Room 1",
			answers: map[string]any{
				"room_type":    "huddle",
				"seating":      "6",
				"display_pref": "single display",
				"video_conf":   "yes",
			},
			items: []itemDef{
				{sortOrder: 1, category: "Display", description: "65\" 4K Commercial Display", brand: "LG", model: "65UR640S", qty: 1, unitPrice: 1400},
				{sortOrder: 2, category: "Video Conferencing", description: "Compact video bar for small rooms", brand: "Logitech", model: "Rally Bar Mini", qty: 1, unitPrice: 2000},
				{sortOrder: 3, category: "Infrastructure", description: "Display wall mount, tilting", brand: "Chief", model: "LTM1U", qty: 1, unitPrice: 260},
			},
		},
		{
			name:    "Training Room",
			answers: map[string]any{"room_type": "training", "seating": "24"},
		},
	}

	for _, rd := range rooms {
		if err := createRoom(p.Id, rd); err != nil {
			return err
		}
	}

	log.Println("seed: all seed data inserted successfully (1 project, 3 rooms)")
	return nil
}
