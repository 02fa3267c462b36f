package model

import "time"

// Invitado is a reservation holder bound to exactly one funcion.  The
// requested seat count (CantidadTickets) drives ticket issuance: N
// tickets are created in the same transaction as the invitado row.
// ColaboradorID optionally attributes the registration to the
// colaborador that brought the guest in.
//
// Fields:
//  ID              – UUID primary key.
//  FuncionID       – funcion the reservation is for.
//  ColaboradorID   – attributed colaborador (nullable).
//  Nombre          – guest name.
//  Email           – contact email (nullable).
//  Telefono        – contact phone (nullable).
//  CantidadTickets – number of seats reserved.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Invitado struct {
	ID              string    // invitados.id
	FuncionID       string    // invitados.funcion_id
	ColaboradorID   *string   // invitados.colaborador_id (nullable)
	Nombre          string    // invitados.nombre
	Email           *string   // invitados.email (nullable)
	Telefono        *string   // invitados.telefono (nullable)
	CantidadTickets int       // invitados.cantidad_tickets
	CreatedAt       time.Time // invitados.created_at
	UpdatedAt       time.Time // invitados.updated_at
}
