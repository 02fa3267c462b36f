package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/elescandalo/teatro-tickets/internal/model"
	"github.com/elescandalo/teatro-tickets/internal/repository"
)

// ColaboradorHandler manages the colaborador directory. Admin only.
type ColaboradorHandler struct {
	Colaboradores *repository.ColaboradorRepo
}

func NewColaboradorHandler(col *repository.ColaboradorRepo) *ColaboradorHandler {
	return &ColaboradorHandler{Colaboradores: col}
}

type colaboradorReq struct {
	Nombre   string  `json:"nombre"`
	Email    string  `json:"email"`
	Telefono *string `json:"telefono"`
	Rol      *string `json:"rol"`
}

type colaboradorResp struct {
	ID        string    `json:"id"`
	Nombre    string    `json:"nombre"`
	Email     string    `json:"email"`
	Telefono  *string   `json:"telefono,omitempty"`
	Rol       *string   `json:"rol,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toColaboradorResp(col *model.Colaborador) colaboradorResp {
	return colaboradorResp{
		ID: col.ID, Nombre: col.Nombre, Email: col.Email,
		Telefono: col.Telefono, Rol: col.Rol,
		CreatedAt: col.CreatedAt, UpdatedAt: col.UpdatedAt,
	}
}

func (req *colaboradorReq) normalize() error {
	req.Nombre = strings.TrimSpace(req.Nombre)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Nombre == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "nombre and email required")
	}
	return nil
}

// Create adds a colaborador to the directory.
func (h *ColaboradorHandler) Create(c echo.Context) error {
	var req colaboradorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := req.normalize(); err != nil {
		return err
	}
	col := &model.Colaborador{
		Nombre:   req.Nombre,
		Email:    req.Email,
		Telefono: req.Telefono,
		Rol:      req.Rol,
	}
	if err := h.Colaboradores.Create(c.Request().Context(), col); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, toColaboradorResp(col))
}

// List returns the full directory.
func (h *ColaboradorHandler) List(c echo.Context) error {
	cols, err := h.Colaboradores.List(c.Request().Context())
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]colaboradorResp, 0, len(cols))
	for i := range cols {
		out = append(out, toColaboradorResp(&cols[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"colaboradores": out})
}

// Get returns one colaborador by id.
func (h *ColaboradorHandler) Get(c echo.Context) error {
	col, err := h.Colaboradores.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toColaboradorResp(col))
}

// Update edits a colaborador.
func (h *ColaboradorHandler) Update(c echo.Context) error {
	var req colaboradorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := req.normalize(); err != nil {
		return err
	}
	col := &model.Colaborador{
		ID:       c.Param("id"),
		Nombre:   req.Nombre,
		Email:    req.Email,
		Telefono: req.Telefono,
		Rol:      req.Rol,
	}
	if err := h.Colaboradores.Update(c.Request().Context(), col); err != nil {
		return writeDomainError(c, err)
	}
	updated, err := h.Colaboradores.GetByID(c.Request().Context(), col.ID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toColaboradorResp(updated))
}

// Delete removes a colaborador. Invitados attributed to it keep their
// rows; the FK sets their colaborador_id to NULL.
func (h *ColaboradorHandler) Delete(c echo.Context) error {
	if err := h.Colaboradores.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
