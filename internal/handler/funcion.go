package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/elescandalo/teatro-tickets/internal/model"
	"github.com/elescandalo/teatro-tickets/internal/repository"
)

// FuncionHandler manages performances and their lifecycle.
type FuncionHandler struct {
	Funciones *repository.FuncionRepo
	Tickets   *repository.TicketRepo
}

func NewFuncionHandler(f *repository.FuncionRepo, t *repository.TicketRepo) *FuncionHandler {
	return &FuncionHandler{Funciones: f, Tickets: t}
}

type funcionReq struct {
	ObraID         string    `json:"obra_id"`
	Nombre         string    `json:"nombre"`
	Descripcion    *string   `json:"descripcion"`
	Fecha          time.Time `json:"fecha"`
	Ubicacion      string    `json:"ubicacion"`
	CapacidadTotal int       `json:"capacidad_total"`
	PrecioCents    uint32    `json:"precio_cents"`
}

type funcionResp struct {
	ID             string    `json:"id"`
	ObraID         string    `json:"obra_id"`
	Nombre         string    `json:"nombre"`
	Descripcion    *string   `json:"descripcion,omitempty"`
	Fecha          time.Time `json:"fecha"`
	Ubicacion      string    `json:"ubicacion"`
	CapacidadTotal int       `json:"capacidad_total"`
	PrecioCents    uint32    `json:"precio_cents"`
	Estado         string    `json:"estado"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toFuncionResp(f *model.Funcion) funcionResp {
	return funcionResp{
		ID: f.ID, ObraID: f.ObraID, Nombre: f.Nombre, Descripcion: f.Descripcion,
		Fecha: f.Fecha, Ubicacion: f.Ubicacion, CapacidadTotal: f.CapacidadTotal,
		PrecioCents: f.PrecioCents, Estado: f.Estado,
		CreatedAt: f.CreatedAt, UpdatedAt: f.UpdatedAt,
	}
}

// Capacity bounds mirror what the admin form enforces.
const maxCapacidadTotal = 1000

func (req *funcionReq) validate() error {
	req.Nombre = strings.TrimSpace(req.Nombre)
	req.Ubicacion = strings.TrimSpace(req.Ubicacion)
	switch {
	case req.ObraID == "":
		return echo.NewHTTPError(http.StatusBadRequest, "obra_id required")
	case req.Nombre == "":
		return echo.NewHTTPError(http.StatusBadRequest, "nombre required")
	case req.Fecha.IsZero():
		return echo.NewHTTPError(http.StatusBadRequest, "fecha required")
	case req.Ubicacion == "":
		return echo.NewHTTPError(http.StatusBadRequest, "ubicacion required")
	case req.CapacidadTotal < 1:
		return echo.NewHTTPError(http.StatusBadRequest, "La capacidad debe ser al menos 1")
	case req.CapacidadTotal > maxCapacidadTotal:
		return echo.NewHTTPError(http.StatusBadRequest, "La capacidad no puede exceder 1000")
	}
	return nil
}

// Create schedules a funcion. New funciones start ACTIVA.
func (h *FuncionHandler) Create(c echo.Context) error {
	var req funcionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return err
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	f := &model.Funcion{
		ObraID:         req.ObraID,
		Nombre:         req.Nombre,
		Descripcion:    req.Descripcion,
		Fecha:          req.Fecha,
		Ubicacion:      req.Ubicacion,
		CapacidadTotal: req.CapacidadTotal,
		PrecioCents:    req.PrecioCents,
		Estado:         model.EstadoActiva,
		CreatedBy:      uid,
	}
	if err := h.Funciones.Create(c.Request().Context(), f); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, toFuncionResp(f))
}

// List returns funciones, optionally filtered by ?estado= and ?obra_id=.
func (h *FuncionHandler) List(c echo.Context) error {
	estado := strings.ToUpper(strings.TrimSpace(c.QueryParam("estado")))
	funciones, err := h.Funciones.List(c.Request().Context(), estado, c.QueryParam("obra_id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]funcionResp, 0, len(funciones))
	for i := range funciones {
		out = append(out, toFuncionResp(&funciones[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"funciones": out})
}

// Get returns one funcion by id.
func (h *FuncionHandler) Get(c echo.Context) error {
	f, err := h.Funciones.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toFuncionResp(f))
}

// Update edits a funcion. Shrinking capacity below tickets already issued
// is rejected by the repository.
func (h *FuncionHandler) Update(c echo.Context) error {
	var req funcionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return err
	}
	f := &model.Funcion{
		ID:             c.Param("id"),
		ObraID:         req.ObraID,
		Nombre:         req.Nombre,
		Descripcion:    req.Descripcion,
		Fecha:          req.Fecha,
		Ubicacion:      req.Ubicacion,
		CapacidadTotal: req.CapacidadTotal,
		PrecioCents:    req.PrecioCents,
	}
	if err := h.Funciones.Update(c.Request().Context(), f); err != nil {
		return writeDomainError(c, err)
	}
	updated, err := h.Funciones.GetByID(c.Request().Context(), f.ID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toFuncionResp(updated))
}

type estadoReq struct {
	Estado string `json:"estado"`
}

// UpdateEstado transitions a funcion to CANCELADA or FINALIZADA. Only
// ACTIVA funciones can transition; the states are terminal.
func (h *FuncionHandler) UpdateEstado(c echo.Context) error {
	var req estadoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	estado := strings.ToUpper(strings.TrimSpace(req.Estado))
	if estado != model.EstadoCancelada && estado != model.EstadoFinalizada {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "estado must be CANCELADA or FINALIZADA"})
	}
	if err := h.Funciones.UpdateEstado(c.Request().Context(), c.Param("id"), estado); err != nil {
		return writeDomainError(c, err)
	}
	f, err := h.Funciones.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toFuncionResp(f))
}

// Delete removes a funcion with no registrations.
func (h *FuncionHandler) Delete(c echo.Context) error {
	if err := h.Funciones.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats reports ticket redemption progress for a funcion.
func (h *FuncionHandler) Stats(c echo.Context) error {
	if _, err := h.Funciones.GetByID(c.Request().Context(), c.Param("id")); err != nil {
		return writeDomainError(c, err)
	}
	stats, err := h.Tickets.StatsByFuncion(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
