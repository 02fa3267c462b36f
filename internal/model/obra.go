package model

import "time"

// Obra is a theatrical work.  Each obra can have many funciones
// (performances) scheduled against it.
//
// Fields:
//  ID          – UUID primary key.
//  Nombre      – title of the work.
//  Descripcion – optional synopsis.
//  CreatedBy   – user that registered the obra.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Obra struct {
	ID          string    // obras.id
	Nombre      string    // obras.nombre
	Descripcion *string   // obras.descripcion (nullable)
	CreatedBy   uint64    // obras.created_by
	CreatedAt   time.Time // obras.created_at
	UpdatedAt   time.Time // obras.updated_at
}
