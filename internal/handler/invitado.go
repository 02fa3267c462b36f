package handler

import (
	"context"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/elescandalo/teatro-tickets/internal/model"
	"github.com/elescandalo/teatro-tickets/internal/queue"
	"github.com/elescandalo/teatro-tickets/internal/repository"
	"github.com/elescandalo/teatro-tickets/internal/service"
)

// InvitadoHandler covers guest registration, listing, edits and the
// invitation email trigger.
type InvitadoHandler struct {
	Registrar *service.Registrar
	Invitados *repository.InvitadoRepo
	Tickets   *repository.TicketRepo
}

func NewInvitadoHandler(reg *service.Registrar, inv *repository.InvitadoRepo, t *repository.TicketRepo) *InvitadoHandler {
	return &InvitadoHandler{Registrar: reg, Invitados: inv, Tickets: t}
}

type invitadoResp struct {
	ID              string    `json:"id"`
	FuncionID       string    `json:"funcion_id"`
	ColaboradorID   *string   `json:"colaborador_id,omitempty"`
	Nombre          string    `json:"nombre"`
	Email           *string   `json:"email,omitempty"`
	Telefono        *string   `json:"telefono,omitempty"`
	CantidadTickets int       `json:"cantidad_tickets"`
	CreatedAt       time.Time `json:"created_at"`
}

func toInvitadoResp(inv *model.Invitado) invitadoResp {
	return invitadoResp{
		ID: inv.ID, FuncionID: inv.FuncionID, ColaboradorID: inv.ColaboradorID,
		Nombre: inv.Nombre, Email: inv.Email, Telefono: inv.Telefono,
		CantidadTickets: inv.CantidadTickets, CreatedAt: inv.CreatedAt,
	}
}

type ticketPart struct {
	ID     string `json:"id"`
	QRCode string `json:"qr_code"`
	Usado  bool   `json:"usado"`
}

// Create registers an invitado and issues its tickets atomically. A
// colaborador account always registers under its own colaborador id; the
// invitation email is enqueued for background delivery.
func (h *InvitadoHandler) Create(c echo.Context) error {
	var in service.RegistrationInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if currentRole(c) == model.RoleColaborador {
		in.ColaboradorID = currentColaboradorID(c)
	}

	inv, tickets, err := h.Registrar.Register(c.Request().Context(), in)
	if err != nil {
		return writeDomainError(c, err)
	}

	uid, _ := getUserID(c)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue.PublishInviteRequested(ctx, queue.InviteRequestedEvent{
			InvitadoID:  inv.ID,
			RequestedBy: uid,
			RequestedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}()

	parts := make([]ticketPart, 0, len(tickets))
	for _, t := range tickets {
		parts = append(parts, ticketPart{ID: t.ID, QRCode: t.QRCode, Usado: t.Usado})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"invitado": toInvitadoResp(inv),
		"tickets":  parts,
	})
}

// List returns invitado details, optionally filtered by ?funcion_id=.
// Colaborador accounts only see their own registrations.
func (h *InvitadoHandler) List(c echo.Context) error {
	colaboradorID := c.QueryParam("colaborador_id")
	if currentRole(c) == model.RoleColaborador {
		colaboradorID = currentColaboradorID(c)
		if colaboradorID == "" {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "account not linked to a colaborador"})
		}
	}
	details, err := h.Invitados.List(c.Request().Context(), c.QueryParam("funcion_id"), colaboradorID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"invitados": details})
}

// Get returns one invitado with its tickets.
func (h *InvitadoHandler) Get(c echo.Context) error {
	det, err := h.Invitados.GetDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	if err := h.authorize(c, det); err != nil {
		return err
	}
	tickets, err := h.Tickets.ListByInvitado(c.Request().Context(), det.ID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"invitado": det, "tickets": tickets})
}

// Update edits an invitado, re-checking funcion capacity.
func (h *InvitadoHandler) Update(c echo.Context) error {
	det, err := h.Invitados.GetDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	if err := h.authorize(c, det); err != nil {
		return err
	}

	var in service.RegistrationInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	// The funcion binding is immutable; moving a guest between funciones
	// would require re-issuing tickets.
	in.FuncionID = det.FuncionID
	if currentRole(c) == model.RoleColaborador {
		in.ColaboradorID = currentColaboradorID(c)
	}

	inv, err := h.Registrar.Update(c.Request().Context(), det.ID, in)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toInvitadoResp(inv))
}

// Delete removes an invitado and, via cascade, its tickets. Admin only.
func (h *InvitadoHandler) Delete(c echo.Context) error {
	if err := h.Invitados.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ResendInvite re-enqueues the invitation email for an invitado.
func (h *InvitadoHandler) ResendInvite(c echo.Context) error {
	det, err := h.Invitados.GetDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	if err := h.authorize(c, det); err != nil {
		return err
	}
	if det.Email == nil || *det.Email == "" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "invitado has no email"})
	}

	uid, _ := getUserID(c)
	if err := queue.PublishInviteRequested(c.Request().Context(), queue.InviteRequestedEvent{
		InvitadoID:  det.ID,
		RequestedBy: uid,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		logrus.WithError(err).WithField("invitado_id", det.ID).Warn("resend invite enqueue failed")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "could not enqueue invitation"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "queued"})
}

// Extract streams every registration as CSV grouped by funcion, the
// format the production team imports into their spreadsheets.
func (h *InvitadoHandler) Extract(c echo.Context) error {
	details, err := h.Invitados.List(c.Request().Context(), c.QueryParam("funcion_id"), "")
	if err != nil {
		return writeDomainError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="invitados_extracto.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write([]string{"Función", "Fecha", "Nombre", "Email", "Cantidad Tickets"}); err != nil {
		return err
	}
	for _, det := range details {
		email := ""
		if det.Email != nil {
			email = *det.Email
		}
		rec := []string{
			det.FuncionNombre,
			det.FuncionFecha.Format("02/01/2006 15:04"),
			det.Nombre,
			email,
			strconv.Itoa(det.CantidadTickets),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// authorize rejects colaborador access to registrations attributed to
// somebody else. Admins pass through.
func (h *InvitadoHandler) authorize(c echo.Context, det *repository.InvitadoDetail) error {
	if currentRole(c) != model.RoleColaborador {
		return nil
	}
	own := currentColaboradorID(c)
	if own == "" || det.ColaboradorID == nil || *det.ColaboradorID != own {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return nil
}
