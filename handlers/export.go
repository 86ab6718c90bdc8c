package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"avproposal/services"
)

// buildProposalData assembles the full export payload for a project: client
// details, the current pricing context, and every room with its items.
func buildProposalData(app *pocketbase.PocketBase, projectID string) (services.ProposalData, error) {
	project, err := app.FindRecordById("projects", projectID)
	if err != nil {
		return services.ProposalData{}, fmt.Errorf("project not found: %w", err)
	}

	date := time.Now().Format("02 Jan 2006")
	if dt := project.GetDateTime("created"); !dt.IsZero() {
		date = dt.Time().Format("02 Jan 2006")
	}

	details := services.ClientDetails{
		ClientName:         project.GetString("client_name"),
		ProjectName:        project.GetString("name"),
		PreparedBy:         project.GetString("prepared_by"),
		Date:               date,
		DesignEngineer:     project.GetString("design_engineer"),
		AccountManager:     project.GetString("account_manager"),
		KeyClientPersonnel: project.GetString("key_client_personnel"),
		Location:           project.GetString("location"),
		KeyComments:        project.GetString("key_comments"),
		Budget:             project.GetFloat("budget"),
	}

	roomRecords, err := app.FindRecordsByFilter("rooms", "project = {:projectId}", "created", 0, 0,
		map[string]any{"projectId": projectID})
	if err != nil {
		roomRecords = nil
	}

	var rooms []services.RoomInput
	for _, room := range roomRecords {
		items, err := loadRoomItems(app, room.Id)
		if err != nil {
			return services.ProposalData{}, err
		}
		rooms = append(rooms, services.RoomInput{
			Name:  room.GetString("name"),
			Items: items,
		})
	}

	return services.BuildProposalData(details, pricingContext(project), rooms), nil
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

// HandleExportExcel returns a handler that generates and downloads the
// proposal workbook for a project.
func HandleExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return e.String(http.StatusBadRequest, "Missing project ID")
		}

		data, err := buildProposalData(app, projectID)
		if err != nil {
			log.Printf("export_excel: %v", err)
			return e.String(http.StatusNotFound, "Project not found")
		}

		xlsxBytes, err := services.GenerateProposalExcel(data)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("%s-BOQ-Proposal-%s.xlsx",
			sanitizeFilename(data.Details.ProjectName), time.Now().Format("2006-01-02"))

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleExportPDF returns a handler that generates and downloads the
// proposal summary PDF for a project.
func HandleExportPDF(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return e.String(http.StatusBadRequest, "Missing project ID")
		}

		data, err := buildProposalData(app, projectID)
		if err != nil {
			log.Printf("export_pdf: %v", err)
			return e.String(http.StatusNotFound, "Project not found")
		}

		pdfBytes, err := services.GenerateProposalPDF(data)
		if err != nil {
			log.Printf("export_pdf: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}

		filename := fmt.Sprintf("%s-BOQ-Proposal-%s.pdf",
			sanitizeFilename(data.Details.ProjectName), time.Now().Format("2006-01-02"))

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}
