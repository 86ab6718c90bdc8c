package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"avproposal/aigen"
	"avproposal/testhelpers"
)

func TestHandleItemCreate_ValidData(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Parent")
	room := testhelpers.CreateTestRoom(t, app, proj.Id, "Boardroom")

	handler := HandleItemCreate(app)
	body := `{"category":"Audio","description":"Ceiling mic","brand":"Shure","model":"MXA920","qty":2,"unitPrice":5800}`
	req := newJSONRequest(http.MethodPost, "/api/proposal/rooms/"+room.Id+"/items", body,
		map[string]string{"id": room.Id})
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeJSON(t, rec)
	if resp["totalPrice"] != 11600.0 {
		t.Errorf("totalPrice = %v, want 11600 (qty * unitPrice)", resp["totalPrice"])
	}
	if resp["sortOrder"] != 1.0 {
		t.Errorf("sortOrder = %v, want 1 for the first item", resp["sortOrder"])
	}
	if resp["margin"] != nil {
		t.Errorf("margin = %v, want nil (inherits project margin)", resp["margin"])
	}
}

func TestHandleItemCreate_AppendsAfterLast(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Parent")
	room := testhelpers.CreateTestRoom(t, app, proj.Id, "Boardroom")
	testhelpers.CreateTestItem(t, app, room.Id, 3, "Existing", 1, 100)

	handler := HandleItemCreate(app)
	body := `{"category":"Audio","description":"Mic","brand":"Shure","model":"M","qty":1,"unitPrice":100}`
	req := newJSONRequest(http.MethodPost, "/api/proposal/rooms/"+room.Id+"/items", body,
		map[string]string{"id": room.Id})
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	resp := decodeJSON(t, rec)
	if resp["sortOrder"] != 4.0 {
		t.Errorf("sortOrder = %v, want 4 (after the highest existing order)", resp["sortOrder"])
	}
}

func TestHandleItemCreate_MissingFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Parent")
	room := testhelpers.CreateTestRoom(t, app, proj.Id, "Boardroom")

	handler := HandleItemCreate(app)
	req := newJSONRequest(http.MethodPost, "/api/proposal/rooms/"+room.Id+"/items",
		`{"category":"Audio"}`, map[string]string{"id": room.Id})
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	resp := decodeJSON(t, rec)
	errs, ok := resp["errors"].(map[string]any)
	if !ok {
		t.Fatalf("expected an errors map, got %v", resp)
	}
	for _, field := range []string{"description", "brand", "model", "qty", "unitPrice"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected a validation error on %q", field)
		}
	}
}

func TestHandleItemUpdate_RederivesTotal(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Parent")
	room := testhelpers.CreateTestRoom(t, app, proj.Id, "Boardroom")
	item := testhelpers.CreateTestItem(t, app, room.Id, 1, "Display", 2, 100)

	handler := HandleItemUpdate(app)
	req := newJSONRequest(http.MethodPatch, "/api/proposal/items/"+item.Id,
		`{"qty":5}`, map[string]string{"id": item.Id})
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	updated, _ := app.FindRecordById("boq_items", item.Id)
	if got := updated.GetFloat("total_price"); got != 500 {
		t.Errorf("total_price = %v, want 500 after qty change", got)
	}
}

func TestHandleItemUpdate_MarginSetAndClear(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Parent")
	room := testhelpers.CreateTestRoom(t, app, proj.Id, "Boardroom")
	item := testhelpers.CreateTestItem(t, app, room.Id, 1, "Display", 1, 100)

	handler := HandleItemUpdate(app)

	// An explicit 0 pins the item to no margin; it does not mean "inherit".
	req := newJSONRequest(http.MethodPatch, "/api/proposal/items/"+item.Id,
		`{"margin":0}`, map[string]string{"id": item.Id})
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	updated, _ := app.FindRecordById("boq_items", item.Id)
	if !updated.GetBool("has_margin") {
		t.Error("expected has_margin=true after setting margin 0")
	}

	resp := decodeJSON(t, rec)
	if resp["margin"] != 0.0 {
		t.Errorf("margin = %v, want explicit 0", resp["margin"])
	}

	// clearMargin returns the item to inheriting the project margin.
	req = newJSONRequest(http.MethodPatch, "/api/proposal/items/"+item.Id,
		`{"clearMargin":true}`, map[string]string{"id": item.Id})
	rec = httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	updated, _ = app.FindRecordById("boq_items", item.Id)
	if updated.GetBool("has_margin") {
		t.Error("expected has_margin=false after clearMargin")
	}

	resp = decodeJSON(t, rec)
	if resp["margin"] != nil {
		t.Errorf("margin = %v, want nil after clearing", resp["margin"])
	}
}

func TestHandleItemDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Parent")
	room := testhelpers.CreateTestRoom(t, app, proj.Id, "Boardroom")
	item := testhelpers.CreateTestItem(t, app, room.Id, 1, "Doomed", 1, 100)

	handler := HandleItemDelete(app)
	req := newJSONRequest(http.MethodDelete, "/api/proposal/items/"+item.Id, "",
		map[string]string{"id": item.Id})
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}

	if _, err := app.FindRecordById("boq_items", item.Id); err == nil {
		t.Error("item should have been deleted")
	}
}

// fakeLookup implements aigen.ProductLookup with a canned answer.
type fakeLookup struct {
	info aigen.ProductInfo
	err  error
}

func (f fakeLookup) ProductDetails(_ context.Context, _ string) (aigen.ProductInfo, error) {
	return f.info, f.err
}

func TestHandleItemDetails(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Parent")
	room := testhelpers.CreateTestRoom(t, app, proj.Id, "Boardroom")
	item := testhelpers.CreateTestItem(t, app, room.Id, 1, "Display", 1, 100)

	lookup := fakeLookup{info: aigen.ProductInfo{
		ImageURL:    "https://example.com/p.jpg",
		Description: "A test display.",
	}}
	handler := HandleItemDetails(app, lookup)

	req := newJSONRequest(http.MethodPost, "/api/proposal/items/"+item.Id+"/details", "",
		map[string]string{"id": item.Id})
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	updated, _ := app.FindRecordById("boq_items", item.Id)
	if got := updated.GetString("image_url"); got != "https://example.com/p.jpg" {
		t.Errorf("image_url = %q, want the looked-up URL", got)
	}
	if got := updated.GetString("notes"); got != "A test display." {
		t.Errorf("notes = %q, want the looked-up description", got)
	}
}

func TestHandleItemDetails_KeepsExistingNotes(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Parent")
	room := testhelpers.CreateTestRoom(t, app, proj.Id, "Boardroom")
	item := testhelpers.CreateTestItem(t, app, room.Id, 1, "Display", 1, 100)
	item.Set("notes", "Hand-written note")
	if err := app.Save(item); err != nil {
		t.Fatalf("save item: %v", err)
	}

	lookup := fakeLookup{info: aigen.ProductInfo{Description: "Generated description."}}
	handler := HandleItemDetails(app, lookup)

	req := newJSONRequest(http.MethodPost, "/api/proposal/items/"+item.Id+"/details", "",
		map[string]string{"id": item.Id})
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	updated, _ := app.FindRecordById("boq_items", item.Id)
	if got := updated.GetString("notes"); got != "Hand-written note" {
		t.Errorf("notes = %q, existing notes must not be overwritten", got)
	}
}

func TestHandleItemDetails_LookupFails(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Parent")
	room := testhelpers.CreateTestRoom(t, app, proj.Id, "Boardroom")
	item := testhelpers.CreateTestItem(t, app, room.Id, 1, "Display", 1, 100)

	lookup := fakeLookup{err: context.DeadlineExceeded}
	handler := HandleItemDetails(app, lookup)

	req := newJSONRequest(http.MethodPost, "/api/proposal/items/"+item.Id+"/details", "",
		map[string]string{"id": item.Id})
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", rec.Code)
	}
}
