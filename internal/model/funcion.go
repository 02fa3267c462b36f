package model

import "time"

// Funcion estado values.  A funcion only accepts new invitados while
// it is ACTIVA; CANCELADA and FINALIZADA are terminal states reached
// by an explicit admin transition.
const (
	EstadoActiva     = "ACTIVA"
	EstadoCancelada  = "CANCELADA"
	EstadoFinalizada = "FINALIZADA"
)

// Funcion represents a single performance of an obra: one date, one
// venue, one seat ceiling.  Capacity is a hard limit enforced at
// invitado-registration time inside a database transaction.
//
// Fields:
//  ID             – UUID primary key, generated app-side.
//  ObraID         – obra this performance belongs to.
//  Nombre         – display name of the performance.
//  Descripcion    – optional free-text description.
//  Fecha          – when the performance takes place.
//  Ubicacion      – venue.
//  CapacidadTotal – total seats available across all invitados.
//  PrecioCents    – entry price in cents.
//  Estado         – lifecycle state (ACTIVA, CANCELADA, FINALIZADA).
//  CreatedBy      – user that created the funcion.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Funcion struct {
	ID             string    // funciones.id
	ObraID         string    // funciones.obra_id
	Nombre         string    // funciones.nombre
	Descripcion    *string   // funciones.descripcion (nullable)
	Fecha          time.Time // funciones.fecha
	Ubicacion      string    // funciones.ubicacion
	CapacidadTotal int       // funciones.capacidad_total
	PrecioCents    uint32    // funciones.precio_cents
	Estado         string    // funciones.estado
	CreatedBy      uint64    // funciones.created_by
	CreatedAt      time.Time // funciones.created_at
	UpdatedAt      time.Time // funciones.updated_at
}
