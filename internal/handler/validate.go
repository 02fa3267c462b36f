package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/elescandalo/teatro-tickets/internal/queue"
	"github.com/elescandalo/teatro-tickets/internal/service"
)

// ValidateHandler is the door-scanning surface: classify a scanned QR,
// then confirm entry with a one-time redemption.
type ValidateHandler struct {
	Validator *service.Validator
}

func NewValidateHandler(v *service.Validator) *ValidateHandler {
	return &ValidateHandler{Validator: v}
}

type validateReq struct {
	QRData string `json:"qr_data"`
}

// Validate classifies a scanned payload without mutating anything. The
// response always carries a verdict; only storage failures produce 500s.
func (h *ValidateHandler) Validate(c echo.Context) error {
	var req validateReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.QRData) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "qr_data required"})
	}
	res, err := h.Validator.Validate(c.Request().Context(), req.QRData)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Redeem flips a ticket's usado flag exactly once. A second confirmation
// for the same ticket gets 409 regardless of how the requests interleave.
func (h *ValidateHandler) Redeem(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	det, err := h.Validator.Redeem(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return writeDomainError(c, err)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue.PublishTicketRedeemed(ctx, queue.TicketRedeemedEvent{
			TicketID:       det.ID,
			QRCode:         det.QRCode,
			FuncionID:      det.FuncionID,
			FuncionNombre:  det.FuncionNombre,
			InvitadoID:     det.InvitadoID,
			InvitadoNombre: det.InvitadoNombre,
			ValidatedBy:    uid,
			RedeemedAt:     time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Ticket válido",
		"ticket":  det,
	})
}
