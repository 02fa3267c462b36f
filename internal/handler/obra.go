package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/elescandalo/teatro-tickets/internal/model"
	"github.com/elescandalo/teatro-tickets/internal/repository"
)

// ObraHandler manages the catalogue of theatrical works.
type ObraHandler struct {
	Obras *repository.ObraRepo
}

func NewObraHandler(obras *repository.ObraRepo) *ObraHandler {
	return &ObraHandler{Obras: obras}
}

type obraReq struct {
	Nombre      string  `json:"nombre"`
	Descripcion *string `json:"descripcion"`
}

type obraResp struct {
	ID          string    `json:"id"`
	Nombre      string    `json:"nombre"`
	Descripcion *string   `json:"descripcion,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toObraResp(o *model.Obra) obraResp {
	return obraResp{ID: o.ID, Nombre: o.Nombre, Descripcion: o.Descripcion, CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt}
}

// Create registers a new obra.
func (h *ObraHandler) Create(c echo.Context) error {
	var req obraReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Nombre = strings.TrimSpace(req.Nombre)
	if req.Nombre == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre required"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	o := &model.Obra{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		CreatedBy:   uid,
	}
	if err := h.Obras.Create(c.Request().Context(), o); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, toObraResp(o))
}

// List returns all obras, newest first.
func (h *ObraHandler) List(c echo.Context) error {
	obras, err := h.Obras.List(c.Request().Context())
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]obraResp, 0, len(obras))
	for i := range obras {
		out = append(out, toObraResp(&obras[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"obras": out})
}

// Get returns one obra by id.
func (h *ObraHandler) Get(c echo.Context) error {
	o, err := h.Obras.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toObraResp(o))
}

// Update replaces an obra's mutable fields.
func (h *ObraHandler) Update(c echo.Context) error {
	var req obraReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Nombre = strings.TrimSpace(req.Nombre)
	if req.Nombre == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre required"})
	}
	o := &model.Obra{ID: c.Param("id"), Nombre: req.Nombre, Descripcion: req.Descripcion}
	if err := h.Obras.Update(c.Request().Context(), o); err != nil {
		return writeDomainError(c, err)
	}
	updated, err := h.Obras.GetByID(c.Request().Context(), o.ID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toObraResp(updated))
}

// Delete removes an obra without funciones.
func (h *ObraHandler) Delete(c echo.Context) error {
	if err := h.Obras.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
