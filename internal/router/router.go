// Package router registers the HTTP routes onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/huuhung7301/hubo-event/internal/handler"
	"github.com/huuhung7301/hubo-event/internal/middleware"
	"github.com/huuhung7301/hubo-event/internal/model"
)

// RegisterRoutes registers routes that carry no authentication at all.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the account endpoints.  Register, login,
// refresh and logout are open; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	me := e.Group("/v1")
	me.Use(middleware.JWTAuth(jwtSecret))
	me.GET("/me", a.Me)
}

// RegisterPublic registers the guest-browsable endpoints: catalog,
// curated works, availability calendar and delivery quotes.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler,
	avail *handler.AvailabilityHandler, del *handler.DeliveryHandler) {

	e.GET("/v1/categories", cat.GetCategories)
	e.GET("/v1/categories/:name/items", cat.SelectionItems)
	e.GET("/v1/items", cat.GetItems)
	e.GET("/v1/items/:key", cat.GetItem)
	e.GET("/v1/works", cat.GetWorks)
	e.GET("/v1/availability", avail.GetAvailability)
	e.GET("/v1/delivery/quote", del.Quote)
}

// RegisterWizard registers the reservation wizard.  The routes accept
// anonymous users — only submission checks identity — so they use the
// optional JWT middleware to pick up a token when one is sent.
func RegisterWizard(e *echo.Echo, w *handler.WizardHandler, jwtSecret string) {
	g := e.Group("/v1/wizard", middleware.OptionalJWTAuth(jwtSecret))
	g.POST("/sessions", w.StartSession)
	g.GET("/sessions/:id", w.GetSession)
	g.DELETE("/sessions/:id", w.Abandon)
	g.POST("/sessions/:id/selection", w.Select)
	g.POST("/sessions/:id/package", w.SubmitPackage)
	g.POST("/sessions/:id/schedule", w.SubmitSchedule)
	g.POST("/sessions/:id/addons", w.SubmitAddOns)
	g.POST("/sessions/:id/jump", w.Jump)
	g.GET("/sessions/:id/quote", w.Quote)
	g.POST("/sessions/:id/submit", w.Submit)
}

// RegisterAdmin registers the management endpoints behind the ADMIN
// role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin))
	g.POST("/items", a.CreateItem)
	g.POST("/works", a.CreateWork)
	g.GET("/reservations", a.ListReservations)
	g.PATCH("/reservations/:id/status", a.UpdateReservationStatus)
}
