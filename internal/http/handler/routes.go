package handler

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"mrireport/internal/service"
)

// RouteOptions carries request limits from configuration.
type RouteOptions struct {
	MaxImageBytes  int64
	RefreshTimeout time.Duration
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers translate HTTP to service calls and nothing more.
func RegisterRoutes(app *fiber.App, db *sql.DB, reportSvc service.ReportService, dash DashboardStore, opt RouteOptions) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	reports := app.Group("/reports")
	reports.Post("", GenerateReport(reportSvc, opt.MaxImageBytes))
	reports.Get("", ListReports(reportSvc))
	// Static segment before the :id routes.
	reports.Get("/template", ReportTemplate())
	reports.Get("/:id", GetReport(reportSvc))
	reports.Get("/:id/download", DownloadReport(reportSvc))
	reports.Get("/:id/link", ReportLink(reportSvc))
	reports.Delete("/:id", DeleteReport(reportSvc))

	admin := app.Group("/admin")
	admin.Get("/dashboard", GetDashboard(dash))
	admin.Post("/dashboard/refresh", RefreshDashboard(dash, opt.RefreshTimeout))
}
