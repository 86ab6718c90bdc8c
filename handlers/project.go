package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"avproposal/services"
)

// projectForm carries the JSON body for project create/update requests.
// Pointer fields distinguish "not sent" from an explicit zero value.
type projectForm struct {
	Name               *string  `json:"name"`
	ClientName         *string  `json:"clientName"`
	PreparedBy         *string  `json:"preparedBy"`
	DesignEngineer     *string  `json:"designEngineer"`
	AccountManager     *string  `json:"accountManager"`
	KeyClientPersonnel *string  `json:"keyClientPersonnel"`
	Location           *string  `json:"location"`
	KeyComments        *string  `json:"keyComments"`
	Budget             *float64 `json:"budget"`
	Currency           *string  `json:"currency"`
	ExchangeRate       *float64 `json:"exchangeRate"`
	GlobalMargin       *float64 `json:"globalMargin"`
	TaxRate            *float64 `json:"taxRate"`
	TaxPolicy          *string  `json:"taxPolicy"`
}

// applyProjectForm copies the submitted fields onto the record and returns
// a field->message map of validation errors.
func applyProjectForm(record *core.Record, form projectForm) map[string]string {
	errors := make(map[string]string)

	if form.Name != nil {
		name := strings.TrimSpace(*form.Name)
		if name == "" {
			errors["name"] = "Project name is required"
		} else {
			record.Set("name", name)
		}
	}
	if form.ClientName != nil {
		record.Set("client_name", strings.TrimSpace(*form.ClientName))
	}
	if form.PreparedBy != nil {
		record.Set("prepared_by", strings.TrimSpace(*form.PreparedBy))
	}
	if form.DesignEngineer != nil {
		record.Set("design_engineer", strings.TrimSpace(*form.DesignEngineer))
	}
	if form.AccountManager != nil {
		record.Set("account_manager", strings.TrimSpace(*form.AccountManager))
	}
	if form.KeyClientPersonnel != nil {
		record.Set("key_client_personnel", strings.TrimSpace(*form.KeyClientPersonnel))
	}
	if form.Location != nil {
		record.Set("location", strings.TrimSpace(*form.Location))
	}
	if form.KeyComments != nil {
		record.Set("key_comments", strings.TrimSpace(*form.KeyComments))
	}
	if form.Budget != nil {
		if *form.Budget < 0 {
			errors["budget"] = "Budget cannot be negative"
		} else {
			record.Set("budget", *form.Budget)
		}
	}
	if form.Currency != nil {
		code := strings.ToUpper(strings.TrimSpace(*form.Currency))
		if !services.IsSupportedCurrency(code) {
			errors["currency"] = "Unsupported currency"
		} else {
			record.Set("currency", code)
		}
	}
	if form.ExchangeRate != nil {
		record.Set("exchange_rate", services.NormalizeRate(*form.ExchangeRate))
	}
	if form.GlobalMargin != nil {
		if *form.GlobalMargin < 0 {
			errors["globalMargin"] = "Margin cannot be negative"
		} else {
			record.Set("global_margin", *form.GlobalMargin)
		}
	}
	if form.TaxRate != nil {
		if *form.TaxRate < 0 {
			errors["taxRate"] = "Tax rate cannot be negative"
		} else {
			record.Set("tax_rate", *form.TaxRate)
		}
	}
	if form.TaxPolicy != nil {
		policy := services.TaxPolicy(*form.TaxPolicy)
		valid := false
		for _, opt := range services.TaxPolicyOptions {
			if policy == opt {
				valid = true
			}
		}
		if !valid {
			errors["taxPolicy"] = "Tax policy must be flat or split"
		} else {
			record.Set("tax_policy", string(policy))
		}
	}

	return errors
}

// HandleProjectList returns a handler that lists all projects.
func HandleProjectList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("projects", "id != ''", "-created", 0, 0, nil)
		if err != nil {
			log.Printf("project_list: could not load projects: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		projects := make([]map[string]any, 0, len(records))
		for _, r := range records {
			projects = append(projects, projectResponse(r))
		}
		return e.JSON(http.StatusOK, map[string]any{"projects": projects})
	}
}

// HandleProjectCreate returns a handler that creates a new project.
func HandleProjectCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var form projectForm
		if err := e.BindBody(&form); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		}
		if form.Name == nil || strings.TrimSpace(*form.Name) == "" {
			return e.JSON(http.StatusBadRequest, map[string]any{
				"errors": map[string]string{"name": "Project name is required"},
			})
		}

		col, err := app.FindCollectionByNameOrId("projects")
		if err != nil {
			log.Printf("project_create: could not find projects collection: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		record := core.NewRecord(col)
		// Pricing defaults for a new proposal.
		record.Set("currency", services.ReferenceCurrency)
		record.Set("exchange_rate", 1.0)
		record.Set("global_margin", 0.0)
		record.Set("tax_rate", services.DefaultTaxRate)
		record.Set("tax_policy", string(services.TaxPolicyFlat))

		if errors := applyProjectForm(record, form); len(errors) > 0 {
			return e.JSON(http.StatusBadRequest, map[string]any{"errors": errors})
		}

		if err := app.Save(record); err != nil {
			log.Printf("project_create: could not save project: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		return e.JSON(http.StatusCreated, projectResponse(record))
	}
}

// HandleProjectView returns a handler that renders one project with its rooms.
func HandleProjectView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		record, err := app.FindRecordById("projects", projectID)
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "Project not found"})
		}

		roomRecords, err := app.FindRecordsByFilter("rooms", "project = {:projectId}", "created", 0, 0,
			map[string]any{"projectId": projectID})
		if err != nil {
			log.Printf("project_view: could not load rooms: %v", err)
			roomRecords = nil
		}

		rooms := make([]map[string]any, 0, len(roomRecords))
		for _, r := range roomRecords {
			rooms = append(rooms, roomResponse(r))
		}

		resp := projectResponse(record)
		resp["rooms"] = rooms
		return e.JSON(http.StatusOK, resp)
	}
}

// HandleProjectUpdate returns a handler that applies a partial update to a
// project. Changing currency, margin, tax rate or tax policy immediately
// affects every recomputed price; stored item prices stay in the reference
// currency and are never rewritten.
func HandleProjectUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		record, err := app.FindRecordById("projects", projectID)
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "Project not found"})
		}

		var form projectForm
		if err := e.BindBody(&form); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		}

		if errors := applyProjectForm(record, form); len(errors) > 0 {
			return e.JSON(http.StatusBadRequest, map[string]any{"errors": errors})
		}

		if err := app.Save(record); err != nil {
			log.Printf("project_update: could not save project %s: %v", projectID, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		return e.JSON(http.StatusOK, projectResponse(record))
	}
}

// HandleProjectDelete returns a handler that deletes a project. Rooms and
// items cascade through the relation fields.
func HandleProjectDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		record, err := app.FindRecordById("projects", projectID)
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "Project not found"})
		}

		if err := app.Delete(record); err != nil {
			log.Printf("project_delete: could not delete project %s: %v", projectID, err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		return e.NoContent(http.StatusNoContent)
	}
}

// HandleOptions returns a handler that serves the dropdown option lists
// used when configuring a proposal.
func HandleOptions() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		currencies := make([]map[string]string, 0, len(services.CurrencyOptions))
		for _, c := range services.CurrencyOptions {
			currencies = append(currencies, map[string]string{
				"label":  c.Label,
				"code":   c.Code,
				"symbol": c.Symbol,
			})
		}
		return e.JSON(http.StatusOK, map[string]any{
			"currencies":  currencies,
			"margins":     services.MarginOptions,
			"taxPolicies": services.TaxPolicyOptions,
		})
	}
}
