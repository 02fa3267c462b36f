package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/elescandalo/teatro-tickets/internal/model"
)

// InvitadoRepo provides registration, CRUD and listing for invitados.
// Registration and edits run inside a transaction that locks the
// funcion row, so the capacity ceiling holds even when two operators
// register guests for the same funcion at the same time.
type InvitadoRepo struct{ DB *sql.DB }

func NewInvitadoRepo(db *sql.DB) *InvitadoRepo { return &InvitadoRepo{DB: db} }

// InvitadoDetail is an invitado joined with its funcion and attributed
// colaborador, as returned by listing endpoints.
type InvitadoDetail struct {
	ID                string     `json:"id"`
	FuncionID         string     `json:"funcion_id"`
	ColaboradorID     *string    `json:"colaborador_id,omitempty"`
	Nombre            string     `json:"nombre"`
	Email             *string    `json:"email,omitempty"`
	Telefono          *string    `json:"telefono,omitempty"`
	CantidadTickets   int        `json:"cantidad_tickets"`
	CreatedAt         time.Time  `json:"created_at"`
	FuncionNombre     string     `json:"funcion_nombre"`
	FuncionFecha      time.Time  `json:"funcion_fecha"`
	FuncionUbicacion  string     `json:"funcion_ubicacion"`
	ColaboradorNombre *string    `json:"colaborador_nombre,omitempty"`
}

// lockFuncionTx reads capacidad_total and estado for a funcion under a
// row lock. Callers must hold the lock until commit so concurrent
// registrations serialize on the same funcion.
func lockFuncionTx(ctx context.Context, tx *sql.Tx, funcionID string) (capacidad int, estado string, err error) {
	const q = `SELECT capacidad_total, estado FROM funciones WHERE id = ? FOR UPDATE`
	err = tx.QueryRowContext(ctx, q, funcionID).Scan(&capacidad, &estado)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", ErrNotFound
	}
	return capacidad, estado, err
}

// vendidosTx sums cantidad_tickets across the funcion's invitados,
// optionally excluding one invitado (used when editing).
func vendidosTx(ctx context.Context, tx *sql.Tx, funcionID, excludeInvitadoID string) (int, error) {
	q := `SELECT COALESCE(SUM(cantidad_tickets), 0) FROM invitados WHERE funcion_id = ?`
	args := []any{funcionID}
	if excludeInvitadoID != "" {
		q += ` AND id <> ?`
		args = append(args, excludeInvitadoID)
	}
	var vendidos int
	err := tx.QueryRowContext(ctx, q, args...).Scan(&vendidos)
	return vendidos, err
}

// CreateWithTickets registers an invitado and issues its tickets as a
// single unit of work. The funcion row is locked first; the capacity
// check, the invitado insert and the multi-row ticket insert all
// commit or roll back together, so a mid-batch failure never leaves an
// invitado with fewer tickets than requested. One opaque code per
// seat must be supplied in codes; issuance order is preserved.
//
// Errors: ErrNotFound (unknown funcion), ErrConflict (funcion not
// ACTIVA), CapacityError (not enough seats left).
func (r *InvitadoRepo) CreateWithTickets(ctx context.Context, inv *model.Invitado, codes []string) ([]model.Ticket, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	capacidad, estado, err := lockFuncionTx(ctx, tx, inv.FuncionID)
	if err != nil {
		return nil, err
	}
	if estado != model.EstadoActiva {
		return nil, ErrConflict
	}
	vendidos, err := vendidosTx(ctx, tx, inv.FuncionID, "")
	if err != nil {
		return nil, err
	}
	available := capacidad - vendidos
	if len(codes) > available {
		return nil, &CapacityError{Available: available}
	}

	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	inv.CreatedAt = time.Now().UTC()
	const insInv = `INSERT INTO invitados
		(id, funcion_id, colaborador_id, nombre, email, telefono, cantidad_tickets)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insInv,
		inv.ID, inv.FuncionID, inv.ColaboradorID, inv.Nombre, inv.Email, inv.Telefono, inv.CantidadTickets,
	); err != nil {
		return nil, err
	}

	tickets := make([]model.Ticket, 0, len(codes))
	for _, code := range codes {
		tickets = append(tickets, model.Ticket{
			ID:         uuid.NewString(),
			FuncionID:  inv.FuncionID,
			InvitadoID: inv.ID,
			QRCode:     code,
			Usado:      false,
			CreatedAt:  inv.CreatedAt,
		})
	}
	if err := insertTicketsTx(ctx, tx, tickets); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return tickets, nil
}

// UpdateWithCapacity edits an invitado, re-checking the ceiling with a
// delta-aware sum that excludes the invitado's own current count.
// Ticket rows are not adjusted here: tickets are issued once at
// registration time.
func (r *InvitadoRepo) UpdateWithCapacity(ctx context.Context, inv *model.Invitado) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	capacidad, _, err := lockFuncionTx(ctx, tx, inv.FuncionID)
	if err != nil {
		return err
	}
	vendidosOtros, err := vendidosTx(ctx, tx, inv.FuncionID, inv.ID)
	if err != nil {
		return err
	}
	available := capacidad - vendidosOtros
	if inv.CantidadTickets > available {
		return &CapacityError{Available: available}
	}

	const q = `UPDATE invitados SET colaborador_id = ?, nombre = ?, email = ?, telefono = ?,
		cantidad_tickets = ? WHERE id = ? AND funcion_id = ?`
	res, err := tx.ExecContext(ctx, q,
		inv.ColaboradorID, inv.Nombre, inv.Email, inv.Telefono,
		inv.CantidadTickets, inv.ID, inv.FuncionID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns a single invitado or ErrNotFound.
func (r *InvitadoRepo) GetByID(ctx context.Context, id string) (*model.Invitado, error) {
	const q = `SELECT id, funcion_id, colaborador_id, nombre, email, telefono, cantidad_tickets,
		created_at, updated_at FROM invitados WHERE id = ?`
	var inv model.Invitado
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&inv.ID, &inv.FuncionID, &inv.ColaboradorID, &inv.Nombre, &inv.Email, &inv.Telefono,
		&inv.CantidadTickets, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetDetail returns an invitado joined with funcion and colaborador
// info, as needed by the invitation mailer and the extract.
func (r *InvitadoRepo) GetDetail(ctx context.Context, id string) (*InvitadoDetail, error) {
	const q = detailQuery + ` WHERE i.id = ?`
	det, err := scanInvitadoDetail(r.DB.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return det, err
}

const detailQuery = `SELECT i.id, i.funcion_id, i.colaborador_id, i.nombre, i.email, i.telefono,
		i.cantidad_tickets, i.created_at,
		f.nombre, f.fecha, f.ubicacion, c.nombre
	FROM invitados i
	JOIN funciones f ON f.id = i.funcion_id
	LEFT JOIN colaboradores c ON c.id = i.colaborador_id`

func scanInvitadoDetail(row interface{ Scan(...any) error }) (*InvitadoDetail, error) {
	var det InvitadoDetail
	err := row.Scan(
		&det.ID, &det.FuncionID, &det.ColaboradorID, &det.Nombre, &det.Email, &det.Telefono,
		&det.CantidadTickets, &det.CreatedAt,
		&det.FuncionNombre, &det.FuncionFecha, &det.FuncionUbicacion, &det.ColaboradorNombre,
	)
	if err != nil {
		return nil, err
	}
	return &det, nil
}

// List returns invitado details, optionally filtered by funcion and/or
// attributed colaborador. Ordered newest first.
func (r *InvitadoRepo) List(ctx context.Context, funcionID, colaboradorID string) ([]InvitadoDetail, error) {
	q := detailQuery + ` WHERE 1=1`
	args := make([]any, 0, 2)
	if funcionID != "" {
		q += ` AND i.funcion_id = ?`
		args = append(args, funcionID)
	}
	if colaboradorID != "" {
		q += ` AND i.colaborador_id = ?`
		args = append(args, colaboradorID)
	}
	q += ` ORDER BY i.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]InvitadoDetail, 0)
	for rows.Next() {
		det, err := scanInvitadoDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *det)
	}
	return details, rows.Err()
}

// Delete removes an invitado; its tickets cascade via FK.
func (r *InvitadoRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM invitados WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
