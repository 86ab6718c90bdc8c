package main

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"avproposal/aigen"
	"avproposal/collections"
	"avproposal/config"
	"avproposal/handlers"
	"avproposal/rates"
)

func main() {
	app := pocketbase.New()
	cfg := config.Load()

	generator := aigen.NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	ratesProvider := rates.NewHTTPProvider(cfg.RatesURL)
	busy := handlers.NewBusy()

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Project CRUD ─────────────────────────────────────────
		se.Router.GET("/api/proposal/projects", handlers.HandleProjectList(app))
		se.Router.POST("/api/proposal/projects", handlers.HandleProjectCreate(app))
		se.Router.GET("/api/proposal/projects/{id}", handlers.HandleProjectView(app))
		se.Router.PATCH("/api/proposal/projects/{id}", handlers.HandleProjectUpdate(app))
		se.Router.DELETE("/api/proposal/projects/{id}", handlers.HandleProjectDelete(app))

		// ── Rooms ────────────────────────────────────────────────
		se.Router.POST("/api/proposal/projects/{id}/rooms", handlers.HandleRoomCreate(app))
		se.Router.GET("/api/proposal/rooms/{id}", handlers.HandleRoomView(app))
		se.Router.PATCH("/api/proposal/rooms/{id}", handlers.HandleRoomUpdate(app))
		se.Router.DELETE("/api/proposal/rooms/{id}", handlers.HandleRoomDelete(app))

		// ── BOQ generation ───────────────────────────────────────
		se.Router.POST("/api/proposal/rooms/{id}/generate", handlers.HandleRoomGenerate(app, generator, busy))
		se.Router.POST("/api/proposal/rooms/{id}/refine", handlers.HandleRoomRefine(app, generator, busy))

		// ── Items ────────────────────────────────────────────────
		se.Router.POST("/api/proposal/rooms/{id}/items", handlers.HandleItemCreate(app))
		se.Router.PATCH("/api/proposal/items/{id}", handlers.HandleItemUpdate(app))
		se.Router.DELETE("/api/proposal/items/{id}", handlers.HandleItemDelete(app))
		se.Router.POST("/api/proposal/items/{id}/details", handlers.HandleItemDetails(app, generator))

		// ── Pricing ──────────────────────────────────────────────
		se.Router.GET("/api/proposal/rooms/{id}/pricing", handlers.HandleRoomPricing(app))
		se.Router.GET("/api/proposal/projects/{id}/pricing", handlers.HandleProjectPricing(app))
		se.Router.GET("/api/proposal/rates", handlers.HandleRates(ratesProvider))
		se.Router.GET("/api/proposal/options", handlers.HandleOptions())

		// ── Export ───────────────────────────────────────────────
		se.Router.GET("/api/proposal/projects/{id}/export/excel", handlers.HandleExportExcel(app))
		se.Router.GET("/api/proposal/projects/{id}/export/pdf", handlers.HandleExportPDF(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
