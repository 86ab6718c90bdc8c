package collections_test

import (
	"testing"

	"avproposal/collections"
	"avproposal/testhelpers"
)

func TestSeed_CreatesData(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	projectsCol, _ := app.FindCollectionByNameOrId("projects")
	projects, err := app.FindAllRecords(projectsCol)
	if err != nil {
		t.Fatalf("query projects error: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	if projects[0].GetString("name") != "Corporate HQ — AV Fit-Out" {
		t.Errorf("project name = %q, want %q", projects[0].GetString("name"), "Corporate HQ — AV Fit-Out")
	}
	if projects[0].GetString("currency") != "USD" {
		t.Errorf("project currency = %q, want USD", projects[0].GetString("currency"))
	}

	roomsCol, _ := app.FindCollectionByNameOrId("rooms")
	rooms, _ := app.FindAllRecords(roomsCol)
	if len(rooms) != 3 {
		t.Fatalf("expected 3 rooms, got %d", len(rooms))
	}
	for _, r := range rooms {
		if r.GetString("project") != projects[0].Id {
			t.Errorf("room %q not linked to seed project", r.GetString("name"))
		}
	}

	itemsCol, _ := app.FindCollectionByNameOrId("boq_items")
	items, _ := app.FindAllRecords(itemsCol)
	if len(items) != 8 {
		t.Errorf("expected 8 items, got %d", len(items))
	}
}

func TestSeed_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("first Seed() error: %v", err)
	}
	if err := collections.Seed(app); err != nil {
		t.Fatalf("second Seed() error: %v", err)
	}

	projectsCol, _ := app.FindCollectionByNameOrId("projects")
	projects, _ := app.FindAllRecords(projectsCol)
	if len(projects) != 1 {
		t.Errorf("expected 1 project after idempotent seed, got %d", len(projects))
	}

	roomsCol, _ := app.FindCollectionByNameOrId("rooms")
	rooms, _ := app.FindAllRecords(roomsCol)
	if len(rooms) != 3 {
		t.Errorf("expected 3 rooms after idempotent seed, got %d", len(rooms))
	}
}

func TestSeed_RoomStatus(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	roomsCol, _ := app.FindCollectionByNameOrId("rooms")

	boardrooms, _ := app.FindRecordsByFilter(
		roomsCol,
		"name = {:n}",
		"", 1, 0,
		map[string]any{"n": "Boardroom"},
	)
	if len(boardrooms) == 0 {
		t.Fatal("Boardroom not found")
	}
	if got := boardrooms[0].GetString("status"); got != collections.StatusReady {
		t.Errorf("Boardroom status = %q, want %q", got, collections.StatusReady)
	}

	training, _ := app.FindRecordsByFilter(
		roomsCol,
		"name = {:n}",
		"", 1, 0,
		map[string]any{"n": "Training Room"},
	)
	if len(training) == 0 {
		t.Fatal("Training Room not found")
	}
	if got := training[0].GetString("status"); got != collections.StatusIdle {
		t.Errorf("Training Room status = %q, want %q", got, collections.StatusIdle)
	}
}

func TestSeed_ItemDetails(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	itemsCol, _ := app.FindCollectionByNameOrId("boq_items")
	mics, _ := app.FindRecordsByFilter(
		itemsCol,
		"model = {:m}",
		"", 1, 0,
		map[string]any{"m": "MXA920"},
	)
	if len(mics) == 0 {
		t.Fatal("ceiling microphone item not found")
	}

	item := mics[0]
	if item.GetInt("qty") != 2 {
		t.Errorf("qty = %v, want 2", item.GetInt("qty"))
	}
	if got := item.GetFloat("total_price"); got != 11600 {
		t.Errorf("total_price = %v, want 11600", got)
	}
	if !item.GetBool("has_margin") {
		t.Error("expected item-level margin override on the microphone")
	}
	if got := item.GetFloat("margin"); got != 15 {
		t.Errorf("margin = %v, want 15", got)
	}
}

func TestSeed_SkipsWhenDataExists(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	testhelpers.CreateTestProject(t, app, "Existing Project")

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	projectsCol, _ := app.FindCollectionByNameOrId("projects")
	projects, _ := app.FindAllRecords(projectsCol)
	if len(projects) != 1 {
		t.Errorf("expected 1 project (pre-existing only), got %d", len(projects))
	}
	if projects[0].GetString("name") != "Existing Project" {
		t.Errorf("expected pre-existing project, got %q", projects[0].GetString("name"))
	}
}
