// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"avproposal/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestProject creates a project record with the given name and
// sensible pricing defaults, and returns it.
func CreateTestProject(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		t.Fatalf("failed to find projects collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("client_name", "Test Client")
	record.Set("currency", "USD")
	record.Set("exchange_rate", 1.0)
	record.Set("global_margin", 0.0)
	record.Set("tax_rate", 18.0)
	record.Set("tax_policy", "flat")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}

	return record
}

// CreateTestRoom creates a room record linked to a project and returns it.
func CreateTestRoom(t *testing.T, app *pocketbase.PocketBase, projectID, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("rooms")
	if err != nil {
		t.Fatalf("failed to find rooms collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("project", projectID)
	record.Set("name", name)
	record.Set("status", collections.StatusIdle)
	record.Set("generation", 0)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test room: %v", err)
	}

	return record
}

// CreateTestItem creates a BOQ item record under a room and returns it.
func CreateTestItem(t *testing.T, app *pocketbase.PocketBase, roomID string, sortOrder int, description string, qty int, unitPrice float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("boq_items")
	if err != nil {
		t.Fatalf("failed to find boq_items collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("room", roomID)
	record.Set("sort_order", sortOrder)
	record.Set("category", "Display")
	record.Set("description", description)
	record.Set("brand", "TestBrand")
	record.Set("model", "TB-100")
	record.Set("qty", qty)
	record.Set("unit_price", unitPrice)
	record.Set("total_price", float64(qty)*unitPrice)
	record.Set("has_margin", false)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test item: %v", err)
	}

	return record
}
