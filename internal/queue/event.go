// Package queue defines message payloads exchanged over the message broker,
// the publisher used by request handlers and the background consumers.
package queue

// InviteRequestedEvent is published when an operator registers an invitado or
// asks for the invitation email to be resent. The mail consumer resolves the
// invitado's tickets and renders the QR codes at delivery time, so the event
// only needs the id plus audit fields.
type InviteRequestedEvent struct {
	InvitadoID  string `json:"invitado_id"`
	RequestedBy uint64 `json:"requested_by"`
	RequestedAt string `json:"requested_at"`
}

// TicketRedeemedEvent is published after a ticket's one-time redemption
// commits. It carries enough information for downstream consumers to log or
// trigger analytics without querying the primary database.
type TicketRedeemedEvent struct {
	TicketID       string `json:"ticket_id"`
	QRCode         string `json:"qr_code"`
	FuncionID      string `json:"funcion_id"`
	FuncionNombre  string `json:"funcion_nombre"`
	InvitadoID     string `json:"invitado_id"`
	InvitadoNombre string `json:"invitado_nombre"`
	ValidatedBy    uint64 `json:"validated_by"`
	RedeemedAt     string `json:"redeemed_at"`
}
