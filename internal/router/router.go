// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/elescandalo/teatro-tickets/internal/handler"
	"github.com/elescandalo/teatro-tickets/internal/middleware"
	"github.com/elescandalo/teatro-tickets/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register) // defaults to the colaborador role
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// API bundles the domain handlers mounted under /v1.
type API struct {
	Auth          *handler.AuthHandler
	Obras         *handler.ObraHandler
	Funciones     *handler.FuncionHandler
	Colaboradores *handler.ColaboradorHandler
	Invitados     *handler.InvitadoHandler
	Tickets       *handler.TicketHandler
	Validate      *handler.ValidateHandler
}

// RegisterAPI mounts the domain routes. Catalogue management is
// admin-only; registration, listing and door validation are open to both
// roles, with colaborador scoping enforced in the handlers. The rate
// limiter covers the whole group; the response cache only wraps catalogue
// reads, which look the same for every authenticated user.
func RegisterAPI(e *echo.Echo, api *API, jwtSecret string, limiter, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), limiter)

	admin := middleware.RequireRole(model.RoleAdmin)
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleColaborador)

	// ---- Obras ----
	g.POST("/obras", api.Obras.Create, admin)
	g.GET("/obras", api.Obras.List, anyRole, cache)
	g.GET("/obras/:id", api.Obras.Get, anyRole, cache)
	g.PUT("/obras/:id", api.Obras.Update, admin)
	g.DELETE("/obras/:id", api.Obras.Delete, admin)

	// ---- Funciones ----
	g.POST("/funciones", api.Funciones.Create, admin)
	g.GET("/funciones", api.Funciones.List, anyRole, cache)
	g.GET("/funciones/:id", api.Funciones.Get, anyRole, cache)
	g.PUT("/funciones/:id", api.Funciones.Update, admin)
	g.PATCH("/funciones/:id/estado", api.Funciones.UpdateEstado, admin)
	g.DELETE("/funciones/:id", api.Funciones.Delete, admin)
	g.GET("/funciones/:id/stats", api.Funciones.Stats, anyRole)

	// ---- Colaboradores ----
	g.POST("/colaboradores", api.Colaboradores.Create, admin)
	g.GET("/colaboradores", api.Colaboradores.List, admin)
	g.GET("/colaboradores/:id", api.Colaboradores.Get, admin)
	g.PUT("/colaboradores/:id", api.Colaboradores.Update, admin)
	g.DELETE("/colaboradores/:id", api.Colaboradores.Delete, admin)

	// ---- Invitados ----
	g.POST("/invitados", api.Invitados.Create, anyRole)
	g.GET("/invitados", api.Invitados.List, anyRole)
	g.GET("/invitados/extracto", api.Invitados.Extract, admin)
	g.GET("/invitados/:id", api.Invitados.Get, anyRole)
	g.PUT("/invitados/:id", api.Invitados.Update, anyRole)
	g.DELETE("/invitados/:id", api.Invitados.Delete, admin)
	g.POST("/invitados/:id/enviar-invitacion", api.Invitados.ResendInvite, anyRole)

	// ---- Tickets ----
	g.GET("/tickets", api.Tickets.List, anyRole)
	g.GET("/tickets/:id", api.Tickets.Get, anyRole)
	g.GET("/tickets/:id/qr", api.Tickets.QR, anyRole)
	g.GET("/invitados/:id/tickets/stats", api.Tickets.StatsByInvitado, anyRole)

	// ---- Validation at the door ----
	g.POST("/tickets/validate", api.Validate.Validate, anyRole)
	g.POST("/tickets/:id/redeem", api.Validate.Redeem, anyRole)

	// Admin user provisioning reuses the register handler; with an admin
	// token it may create admin accounts.
	g.POST("/users", api.Auth.Register, admin)
}
