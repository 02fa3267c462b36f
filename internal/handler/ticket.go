package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elescandalo/teatro-tickets/internal/repository"
	"github.com/elescandalo/teatro-tickets/internal/service"
)

// TicketHandler exposes ticket lookups and the QR image endpoint.
type TicketHandler struct {
	Tickets *repository.TicketRepo
	Encoder *service.QREncoder
}

func NewTicketHandler(t *repository.TicketRepo, qr *service.QREncoder) *TicketHandler {
	return &TicketHandler{Tickets: t, Encoder: qr}
}

// List returns ticket details filtered by ?invitado_id= or ?funcion_id=.
// One of the two filters is required to keep responses bounded.
func (h *TicketHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	if id := c.QueryParam("invitado_id"); id != "" {
		tickets, err := h.Tickets.ListByInvitado(ctx, id)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"tickets": tickets})
	}
	if id := c.QueryParam("funcion_id"); id != "" {
		tickets, err := h.Tickets.ListByFuncion(ctx, id)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"tickets": tickets})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invitado_id or funcion_id required"})
}

// Get returns one ticket with its invitado and funcion context.
func (h *TicketHandler) Get(c echo.Context) error {
	det, err := h.Tickets.GetDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, det)
}

// QR serves the ticket's QR code as a PNG image. Repeated requests for
// the same ticket are served from the image cache.
func (h *TicketHandler) QR(c echo.Context) error {
	png, err := h.Encoder.Encode(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// StatsByInvitado reports redemption progress for one invitado's batch.
func (h *TicketHandler) StatsByInvitado(c echo.Context) error {
	stats, err := h.Tickets.StatsByInvitado(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
