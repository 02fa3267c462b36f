package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/elescandalo/teatro-tickets/internal/model"
)

// TicketRepo provides queries and the redemption update for tickets.
// Ticket creation happens through InvitadoRepo.CreateWithTickets so
// that issuance shares the registration transaction.
type TicketRepo struct{ DB *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{DB: db} }

// TicketDetail is a ticket joined with its invitado (name, contact)
// and funcion (name, date, venue). These are the canonical values the
// validator compares against the fields embedded in a scanned QR.
type TicketDetail struct {
	ID               string     `json:"id"`
	FuncionID        string     `json:"funcion_id"`
	InvitadoID       string     `json:"invitado_id"`
	QRCode           string     `json:"qr_code"`
	Usado            bool       `json:"usado"`
	ValidatedAt      *time.Time `json:"validated_at,omitempty"`
	ValidatedBy      *uint64    `json:"validated_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	InvitadoNombre   string     `json:"invitado_nombre"`
	InvitadoEmail    *string    `json:"invitado_email,omitempty"`
	FuncionNombre    string     `json:"funcion_nombre"`
	FuncionFecha     time.Time  `json:"funcion_fecha"`
	FuncionUbicacion string     `json:"funcion_ubicacion"`
}

// TicketStats summarizes redemption progress for a funcion or an
// invitado.
type TicketStats struct {
	Total            int `json:"total"`
	Usados           int `json:"usados"`
	Disponibles      int `json:"disponibles"`
	PorcentajeUsados int `json:"porcentaje_usados"`
}

// insertTicketsTx inserts all ticket rows in a single multi-row
// statement within the given transaction. Passing an empty slice has
// no effect and returns nil.
func insertTicketsTx(ctx context.Context, tx *sql.Tx, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	query := `INSERT INTO tickets (id, funcion_id, invitado_id, qr_code, usado) VALUES `
	args := make([]any, 0, len(tickets)*5)
	for i, t := range tickets {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, t.ID, t.FuncionID, t.InvitadoID, t.QRCode, t.Usado)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

const ticketDetailQuery = `SELECT t.id, t.funcion_id, t.invitado_id, t.qr_code, t.usado,
		t.validated_at, t.validated_by, t.created_at,
		i.nombre, i.email, f.nombre, f.fecha, f.ubicacion
	FROM tickets t
	JOIN invitados i ON i.id = t.invitado_id
	JOIN funciones f ON f.id = t.funcion_id`

func scanTicketDetail(row interface{ Scan(...any) error }) (*TicketDetail, error) {
	var det TicketDetail
	err := row.Scan(
		&det.ID, &det.FuncionID, &det.InvitadoID, &det.QRCode, &det.Usado,
		&det.ValidatedAt, &det.ValidatedBy, &det.CreatedAt,
		&det.InvitadoNombre, &det.InvitadoEmail,
		&det.FuncionNombre, &det.FuncionFecha, &det.FuncionUbicacion,
	)
	if err != nil {
		return nil, err
	}
	return &det, nil
}

// GetDetail returns the canonical ticket snapshot or ErrNotFound.
func (r *TicketRepo) GetDetail(ctx context.Context, id string) (*TicketDetail, error) {
	det, err := scanTicketDetail(r.DB.QueryRowContext(ctx, ticketDetailQuery+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return det, err
}

// ListByInvitado returns an invitado's tickets, newest first.
func (r *TicketRepo) ListByInvitado(ctx context.Context, invitadoID string) ([]TicketDetail, error) {
	return r.listDetails(ctx, ticketDetailQuery+` WHERE t.invitado_id = ? ORDER BY t.created_at DESC, t.id`, invitadoID)
}

// ListByFuncion returns all tickets for a funcion, newest first.
func (r *TicketRepo) ListByFuncion(ctx context.Context, funcionID string) ([]TicketDetail, error) {
	return r.listDetails(ctx, ticketDetailQuery+` WHERE t.funcion_id = ? ORDER BY t.created_at DESC, t.id`, funcionID)
}

func (r *TicketRepo) listDetails(ctx context.Context, q string, arg any) ([]TicketDetail, error) {
	rows, err := r.DB.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]TicketDetail, 0)
	for rows.Next() {
		det, err := scanTicketDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *det)
	}
	return details, rows.Err()
}

// MarkUsed flips the usado flag exactly once. The WHERE clause guards
// against double redemption: when two confirmations race, only the
// first one matches a row. Returns ErrAlreadyUsed when the ticket
// exists but was already redeemed, ErrNotFound when it does not exist.
func (r *TicketRepo) MarkUsed(ctx context.Context, id string, validatedBy uint64) error {
	const q = `UPDATE tickets SET usado = 1, validated_at = UTC_TIMESTAMP(), validated_by = ?
		WHERE id = ? AND usado = 0`
	res, err := r.DB.ExecContext(ctx, q, validatedBy, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var usado bool
	err = r.DB.QueryRowContext(ctx, `SELECT usado FROM tickets WHERE id = ?`, id).Scan(&usado)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if usado {
		return ErrAlreadyUsed
	}
	return ErrConflict
}

// StatsByFuncion aggregates redemption counts for a funcion.
func (r *TicketRepo) StatsByFuncion(ctx context.Context, funcionID string) (*TicketStats, error) {
	return r.stats(ctx, `SELECT COUNT(*), COALESCE(SUM(usado), 0) FROM tickets WHERE funcion_id = ?`, funcionID)
}

// StatsByInvitado aggregates redemption counts for an invitado.
func (r *TicketRepo) StatsByInvitado(ctx context.Context, invitadoID string) (*TicketStats, error) {
	return r.stats(ctx, `SELECT COUNT(*), COALESCE(SUM(usado), 0) FROM tickets WHERE invitado_id = ?`, invitadoID)
}

func (r *TicketRepo) stats(ctx context.Context, q string, arg any) (*TicketStats, error) {
	var s TicketStats
	if err := r.DB.QueryRowContext(ctx, q, arg).Scan(&s.Total, &s.Usados); err != nil {
		return nil, err
	}
	s.Disponibles = s.Total - s.Usados
	if s.Total > 0 {
		s.PorcentajeUsados = int(float64(s.Usados)/float64(s.Total)*100 + 0.5)
	}
	return &s, nil
}
