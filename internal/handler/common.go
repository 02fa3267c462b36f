// Package handler defines the HTTP handlers for the admin API.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/elescandalo/teatro-tickets/internal/repository"
	"github.com/elescandalo/teatro-tickets/internal/service"
)

// getUserID extracts the user_id claim from the context and converts it
// to uint64. JWT numbers arrive as float64; other forms are tolerated.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// currentRole returns the role claim, or "" when absent.
func currentRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// currentColaboradorID returns the colaborador the authenticated account
// is linked to, or "" for admins and unlinked accounts.
func currentColaboradorID(c echo.Context) string {
	cid, _ := c.Get("colaborador_id").(string)
	return cid
}

// writeDomainError maps service and repository errors onto HTTP responses.
// Unrecognized errors become a generic 500 so driver details never leak to
// clients.
func writeDomainError(c echo.Context, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": ve.Fields})
	}
	if ce, ok := repository.IsCapacity(err); ok {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     "capacity_exceeded",
			"message":   fmt.Sprintf("No hay suficiente capacidad. Solo quedan %d tickets disponibles.", ce.Available),
			"available": ce.Available,
		})
	}
	var cue *repository.CapacityInUseError
	if errors.As(err, &cue) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":    "capacity_in_use",
			"message":  fmt.Sprintf("No se puede reducir la capacidad: ya hay %d tickets emitidos.", cue.Vendidos),
			"vendidos": cue.Vendidos,
		})
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrAlreadyUsed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "ticket already used"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
