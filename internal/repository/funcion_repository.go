package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/elescandalo/teatro-tickets/internal/model"
)

// FuncionRepo provides CRUD operations and estado transitions for
// funciones. Capacity checks do not live here: they run inside the
// invitado registration transaction (see InvitadoRepo.CreateWithTickets)
// so that the ceiling holds under concurrent registrations.
type FuncionRepo struct{ DB *sql.DB }

func NewFuncionRepo(db *sql.DB) *FuncionRepo { return &FuncionRepo{DB: db} }

const funcionColumns = `id, obra_id, nombre, descripcion, fecha, ubicacion,
	capacidad_total, precio_cents, estado, created_by, created_at, updated_at`

func scanFuncion(row interface{ Scan(...any) error }) (*model.Funcion, error) {
	var f model.Funcion
	err := row.Scan(
		&f.ID, &f.ObraID, &f.Nombre, &f.Descripcion, &f.Fecha, &f.Ubicacion,
		&f.CapacidadTotal, &f.PrecioCents, &f.Estado, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a new funcion in estado ACTIVA and fills in its
// generated UUID.
func (r *FuncionRepo) Create(ctx context.Context, f *model.Funcion) error {
	f.ID = uuid.NewString()
	if f.Estado == "" {
		f.Estado = model.EstadoActiva
	}
	const q = `INSERT INTO funciones
		(id, obra_id, nombre, descripcion, fecha, ubicacion, capacidad_total, precio_cents, estado, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, q,
		f.ID, f.ObraID, f.Nombre, f.Descripcion, f.Fecha, f.Ubicacion,
		f.CapacidadTotal, f.PrecioCents, f.Estado, f.CreatedBy,
	)
	return err
}

// GetByID returns a single funcion or ErrNotFound.
func (r *FuncionRepo) GetByID(ctx context.Context, id string) (*model.Funcion, error) {
	f, err := scanFuncion(r.DB.QueryRowContext(ctx,
		`SELECT `+funcionColumns+` FROM funciones WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return f, err
}

// List returns funciones ordered by fecha, optionally filtered by
// estado and/or obra. Empty filter values mean "all".
func (r *FuncionRepo) List(ctx context.Context, estado, obraID string) ([]model.Funcion, error) {
	q := `SELECT ` + funcionColumns + ` FROM funciones WHERE 1=1`
	args := make([]any, 0, 2)
	if estado != "" {
		q += ` AND estado = ?`
		args = append(args, estado)
	}
	if obraID != "" {
		q += ` AND obra_id = ?`
		args = append(args, obraID)
	}
	q += ` ORDER BY fecha`
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	funciones := make([]model.Funcion, 0)
	for rows.Next() {
		f, err := scanFuncion(rows)
		if err != nil {
			return nil, err
		}
		funciones = append(funciones, *f)
	}
	return funciones, rows.Err()
}

// Update changes the mutable fields of a funcion. The funcion row is
// locked first so a capacity shrink serializes with concurrent
// registrations; shrinking capacidad_total below the number of tickets
// already committed is rejected with a CapacityInUseError so existing
// reservations stay valid.
func (r *FuncionRepo) Update(ctx context.Context, f *model.Funcion) error {
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

	if _, _, err := lockFuncionTx(ctx, tx, f.ID); err != nil {
		return err
	}
	vendidos, err := vendidosTx(ctx, tx, f.ID, "")
	if err != nil {
		return err
	}
	if f.CapacidadTotal < vendidos {
		return &CapacityInUseError{Vendidos: vendidos}
	}

	const q = `UPDATE funciones SET obra_id = ?, nombre = ?, descripcion = ?, fecha = ?,
		ubicacion = ?, capacidad_total = ?, precio_cents = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q,
		f.ObraID, f.Nombre, f.Descripcion, f.Fecha, f.Ubicacion,
		f.CapacidadTotal, f.PrecioCents, f.ID,
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UpdateEstado transitions a funcion's lifecycle state. Only ACTIVA
// funciones can move to CANCELADA or FINALIZADA; any other transition
// is ErrConflict.
func (r *FuncionRepo) UpdateEstado(ctx context.Context, id, estado string) error {
	if estado != model.EstadoCancelada && estado != model.EstadoFinalizada {
		return ErrConflict
	}
	const q = `UPDATE funciones SET estado = ? WHERE id = ? AND estado = ?`
	res, err := r.DB.ExecContext(ctx, q, estado, id, model.EstadoActiva)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish missing funcion from an invalid transition.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// Delete removes a funcion. Fails with ErrConflict while invitados
// still reference it.
func (r *FuncionRepo) Delete(ctx context.Context, id string) error {
	var n int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invitados WHERE funcion_id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM funciones WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
