package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/elescandalo/teatro-tickets/internal/model"
)

// ObraRepo provides CRUD operations for obras (theatrical works).
type ObraRepo struct{ DB *sql.DB }

func NewObraRepo(db *sql.DB) *ObraRepo { return &ObraRepo{DB: db} }

// Create inserts a new obra and fills in its generated UUID.
func (r *ObraRepo) Create(ctx context.Context, o *model.Obra) error {
	o.ID = uuid.NewString()
	const q = `INSERT INTO obras (id, nombre, descripcion, created_by) VALUES (?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, q, o.ID, o.Nombre, o.Descripcion, o.CreatedBy)
	return err
}

// GetByID returns a single obra or ErrNotFound.
func (r *ObraRepo) GetByID(ctx context.Context, id string) (*model.Obra, error) {
	const q = `SELECT id, nombre, descripcion, created_by, created_at, updated_at FROM obras WHERE id = ?`
	var o model.Obra
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&o.ID, &o.Nombre, &o.Descripcion, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns all obras ordered by name.
func (r *ObraRepo) List(ctx context.Context) ([]model.Obra, error) {
	const q = `SELECT id, nombre, descripcion, created_by, created_at, updated_at FROM obras ORDER BY nombre`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	obras := make([]model.Obra, 0)
	for rows.Next() {
		var o model.Obra
		if err := rows.Scan(&o.ID, &o.Nombre, &o.Descripcion, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		obras = append(obras, o)
	}
	return obras, rows.Err()
}

// Update changes the mutable fields of an obra. Returns ErrNotFound
// when no row matched.
func (r *ObraRepo) Update(ctx context.Context, o *model.Obra) error {
	const q = `UPDATE obras SET nombre = ?, descripcion = ? WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, q, o.Nombre, o.Descripcion, o.ID)
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

// Delete removes an obra. Fails with ErrConflict while funciones still
// reference it (FK constraint).
func (r *ObraRepo) Delete(ctx context.Context, id string) error {
	const check = `SELECT COUNT(*) FROM funciones WHERE obra_id = ?`
	var n int
	if err := r.DB.QueryRowContext(ctx, check, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM obras WHERE id = ?`, id)
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
