package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/elescandalo/teatro-tickets/internal/model"
)

// ColaboradorRepo provides CRUD operations for colaboradores. A
// colaborador is a directory entry invitados can be attributed to,
// deliberately distinct from the authenticated user account.
type ColaboradorRepo struct{ DB *sql.DB }

func NewColaboradorRepo(db *sql.DB) *ColaboradorRepo { return &ColaboradorRepo{DB: db} }

// Create inserts a new colaborador and fills in its generated UUID.
func (r *ColaboradorRepo) Create(ctx context.Context, col *model.Colaborador) error {
	col.ID = uuid.NewString()
	const q = `INSERT INTO colaboradores (id, nombre, email, telefono, rol) VALUES (?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, q, col.ID, col.Nombre, col.Email, col.Telefono, col.Rol)
	return err
}

// GetByID returns a single colaborador or ErrNotFound.
func (r *ColaboradorRepo) GetByID(ctx context.Context, id string) (*model.Colaborador, error) {
	const q = `SELECT id, nombre, email, telefono, rol, created_at, updated_at FROM colaboradores WHERE id = ?`
	var col model.Colaborador
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&col.ID, &col.Nombre, &col.Email, &col.Telefono, &col.Rol, &col.CreatedAt, &col.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &col, nil
}

// List returns all colaboradores ordered by name.
func (r *ColaboradorRepo) List(ctx context.Context) ([]model.Colaborador, error) {
	const q = `SELECT id, nombre, email, telefono, rol, created_at, updated_at FROM colaboradores ORDER BY nombre`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols := make([]model.Colaborador, 0)
	for rows.Next() {
		var col model.Colaborador
		if err := rows.Scan(&col.ID, &col.Nombre, &col.Email, &col.Telefono, &col.Rol, &col.CreatedAt, &col.UpdatedAt); err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// Update changes the mutable fields of a colaborador.
func (r *ColaboradorRepo) Update(ctx context.Context, col *model.Colaborador) error {
	const q = `UPDATE colaboradores SET nombre = ?, email = ?, telefono = ?, rol = ? WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, q, col.Nombre, col.Email, col.Telefono, col.Rol, col.ID)
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

// Delete removes a colaborador. Invitados attributed to it keep their
// rows; the FK sets colaborador_id to NULL.
func (r *ColaboradorRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM colaboradores WHERE id = ?`, id)
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
