package model

import "time"

// Ticket is one seat's redemption credential.  QRCode holds the opaque
// code baked into the scannable image; Usado flips false→true exactly
// once, guarded by a conditional update in the repository.
//
// Fields:
//  ID          – UUID primary key.
//  FuncionID   – funcion the ticket admits to (same as its invitado's).
//  InvitadoID  – owning invitado.
//  QRCode      – opaque unique code embedded in the QR payload.
//  Usado       – redemption flag.
//  ValidatedAt – when the ticket was redeemed (nullable).
//  ValidatedBy – user that confirmed the redemption (nullable).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Ticket struct {
	ID          string     // tickets.id
	FuncionID   string     // tickets.funcion_id
	InvitadoID  string     // tickets.invitado_id
	QRCode      string     // tickets.qr_code
	Usado       bool       // tickets.usado
	ValidatedAt *time.Time // tickets.validated_at (nullable)
	ValidatedBy *uint64    // tickets.validated_by (nullable)
	CreatedAt   time.Time  // tickets.created_at
	UpdatedAt   time.Time  // tickets.updated_at
}
