package model

import "time"

// Colaborador is a distinct directory entity that invitados can be
// attributed to.  It is intentionally separate from the authenticated
// user: a colaborador-role user links to at most one colaborador row,
// and admins can attribute registrations to any colaborador.
//
// Fields:
//  ID        – UUID primary key.
//  Nombre    – display name.
//  Email     – contact email.
//  Telefono  – contact phone (nullable).
//  Rol       – free-form role label within the production (nullable).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Colaborador struct {
	ID        string    // colaboradores.id
	Nombre    string    // colaboradores.nombre
	Email     string    // colaboradores.email
	Telefono  *string   // colaboradores.telefono (nullable)
	Rol       *string   // colaboradores.rol (nullable)
	CreatedAt time.Time // colaboradores.created_at
	UpdatedAt time.Time // colaboradores.updated_at
}
