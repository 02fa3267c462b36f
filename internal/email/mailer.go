package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/elescandalo/teatro-tickets/internal/repository"
)

// InvitadoSource resolves the invitado snapshot the email is built from.
type InvitadoSource interface {
	GetDetail(ctx context.Context, id string) (*repository.InvitadoDetail, error)
}

// TicketSource lists an invitado's tickets in issuance order.
type TicketSource interface {
	ListByInvitado(ctx context.Context, invitadoID string) ([]repository.TicketDetail, error)
}

// QRRenderer produces the base64 data URL embedded per ticket.
type QRRenderer interface {
	DataURL(ctx context.Context, ticketID string) (string, error)
}

// Mailer composes and sends invitation emails. It is driven by the
// invite.email queue consumer.
type Mailer struct {
	invitados InvitadoSource
	tickets   TicketSource
	qr        QRRenderer
	client    *Client
	baseURL   string // public base for the fallback ticket links
}

func NewMailer(invitados InvitadoSource, tickets TicketSource, qr QRRenderer, client *Client, baseURL string) *Mailer {
	return &Mailer{
		invitados: invitados,
		tickets:   tickets,
		qr:        qr,
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// SendInvite builds and delivers the invitation for one invitado. An
// invitado without an email address is skipped, not an error: operators may
// register walk-in guests by name only.
func (m *Mailer) SendInvite(ctx context.Context, invitadoID string) error {
	inv, err := m.invitados.GetDetail(ctx, invitadoID)
	if err != nil {
		return fmt.Errorf("invite %s: %w", invitadoID, err)
	}
	if inv.Email == nil || *inv.Email == "" {
		logrus.WithField("invitado_id", invitadoID).Info("mailer: invitado has no email, skipping invite")
		return nil
	}

	tickets, err := m.tickets.ListByInvitado(ctx, invitadoID)
	if err != nil {
		return fmt.Errorf("invite %s: list tickets: %w", invitadoID, err)
	}

	qrs := make([]QRAttachment, 0, len(tickets))
	for _, t := range tickets {
		att := QRAttachment{Link: m.baseURL + "/v1/tickets/" + t.ID + "/qr"}
		if url, err := m.qr.DataURL(ctx, t.ID); err == nil {
			att.ImageURL = url
		} else {
			// Fall back to the link; the email is still deliverable.
			logrus.WithError(err).WithField("ticket_id", t.ID).Warn("mailer: qr render failed")
		}
		qrs = append(qrs, att)
	}

	fecha := inv.FuncionFecha.Format("02/01/2006 15:04")
	htmlBody := BuildInviteHTML(inv.Nombre, inv.FuncionNombre, fecha, inv.FuncionUbicacion, qrs)
	subject := "Tu invitación para " + inv.FuncionNombre

	if err := m.client.Send(ctx, *inv.Email, subject, htmlBody); err != nil {
		return fmt.Errorf("invite %s: %w", invitadoID, err)
	}
	logrus.WithFields(logrus.Fields{
		"invitado_id": invitadoID,
		"tickets":     len(tickets),
	}).Info("mailer: invitation sent")
	return nil
}

// QRAttachment is one ticket's QR rendering for the email body. When the
// inline image is missing the recipient gets a link instead.
type QRAttachment struct {
	ImageURL string
	Link     string
}

// BuildInviteHTML renders the invitation body. The layout matches the
// invitations already in recipients' inboxes, so changes here should stay
// visually compatible.
func BuildInviteHTML(nombre, obra, fecha, lugar string, qrs []QRAttachment) string {
	var b strings.Builder
	for i, qr := range qrs {
		if qr.ImageURL != "" {
			fmt.Fprintf(&b, `<div style="margin-bottom:16px;"><img src="%s" alt="QR Ticket #%d" style="width:180px;display:block;margin:auto;" /><div style="text-align:center;font-size:12px;color:#555;">Ticket #%d</div></div>`,
				qr.ImageURL, i+1, i+1)
		} else {
			fmt.Fprintf(&b, `<div style="margin-bottom:16px;"><a href="%s">Ver QR Ticket #%d</a></div>`,
				html.EscapeString(qr.Link), i+1)
		}
	}
	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:480px;margin:auto;">
  <h2>¡Hola %s!</h2>
  <p>Te invitamos a la obra <b>%s</b>.</p>
  <p><b>Fecha:</b> %s<br/><b>Lugar:</b> %s</p>
  <p>Adjuntamos tu(s) código(s) QR para el ingreso. Mostralos en la entrada, ¡y listo!</p>
  %s
  <p style="margin-top:32px;">¡Nos vemos en el teatro!<br/>El equipo de El Escándalo</p>
</div>`,
		html.EscapeString(nombre), html.EscapeString(obra),
		html.EscapeString(fecha), html.EscapeString(lugar), b.String())
}
