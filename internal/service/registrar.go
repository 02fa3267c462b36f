package service

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/elescandalo/teatro-tickets/internal/model"
)

// RegistrationStore is the slice of the storage layer the registrar
// depends on. CreateWithTickets must enforce the funcion's capacity
// ceiling and issue all tickets atomically with the invitado insert.
type RegistrationStore interface {
	CreateWithTickets(ctx context.Context, inv *model.Invitado, codes []string) ([]model.Ticket, error)
	UpdateWithCapacity(ctx context.Context, inv *model.Invitado) error
}

// RegistrationInput carries the fields an operator submits when
// registering or editing an invitado.
type RegistrationInput struct {
	FuncionID       string `json:"funcion_id"`
	ColaboradorID   string `json:"colaborador_id"`
	Nombre          string `json:"nombre"`
	Email           string `json:"email"`
	Telefono        string `json:"telefono"`
	CantidadTickets int    `json:"cantidad_tickets"`
}

// ValidationError maps field names to user-facing messages.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var (
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	telefonoRe = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
)

// Per-registration ticket ceiling, independent of funcion capacity.
const maxTicketsPorInvitado = 100

func validateInput(in RegistrationInput) error {
	fields := map[string]string{}
	if in.FuncionID == "" {
		fields["funcion_id"] = "Debes seleccionar una función válida."
	}
	nombre := strings.TrimSpace(in.Nombre)
	if utf8.RuneCountInString(nombre) < 2 {
		fields["nombre"] = "El nombre es obligatorio"
	} else if utf8.RuneCountInString(nombre) > 100 {
		fields["nombre"] = "El nombre es demasiado largo"
	}
	if in.Email == "" || !emailRe.MatchString(in.Email) {
		fields["email"] = "Email inválido"
	}
	if in.Telefono != "" && !telefonoRe.MatchString(in.Telefono) {
		fields["telefono"] = "Solo números, espacios, guiones y paréntesis"
	}
	if in.CantidadTickets < 1 {
		fields["cantidad_tickets"] = "Debe ser al menos 1"
	} else if in.CantidadTickets > maxTicketsPorInvitado {
		fields["cantidad_tickets"] = "Máximo 100 tickets"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (in RegistrationInput) toModel(id string) *model.Invitado {
	inv := &model.Invitado{
		ID:              id,
		FuncionID:       in.FuncionID,
		Nombre:          strings.TrimSpace(in.Nombre),
		CantidadTickets: in.CantidadTickets,
	}
	if in.ColaboradorID != "" {
		cid := in.ColaboradorID
		inv.ColaboradorID = &cid
	}
	if in.Email != "" {
		email := strings.ToLower(strings.TrimSpace(in.Email))
		inv.Email = &email
	}
	if in.Telefono != "" {
		tel := in.Telefono
		inv.Telefono = &tel
	}
	return inv
}

// Registrar accepts invitado registrations, running field validation
// before handing the capacity decision to the store's transaction.
type Registrar struct {
	store RegistrationStore
}

func NewRegistrar(store RegistrationStore) *Registrar { return &Registrar{store: store} }

// Register validates the input, synthesizes one opaque code per
// requested seat and creates the invitado plus its tickets in one
// transaction. Tickets come back in issuance order.
//
// Errors: *ValidationError, repository.ErrNotFound (funcion),
// repository.ErrConflict (funcion not ACTIVA),
// *repository.CapacityError (over the ceiling).
func (r *Registrar) Register(ctx context.Context, in RegistrationInput) (*model.Invitado, []model.Ticket, error) {
	if err := validateInput(in); err != nil {
		return nil, nil, err
	}
	// The invitado id is minted here because the ticket codes embed it.
	inv := in.toModel(uuid.NewString())
	codes := NewTicketCodes(inv.ID, inv.CantidadTickets)
	tickets, err := r.store.CreateWithTickets(ctx, inv, codes)
	if err != nil {
		return nil, nil, err
	}
	return inv, tickets, nil
}

// Update edits an existing invitado. The store re-checks capacity with
// a delta-aware sum; ticket rows are left untouched since issuance
// happens once at registration time.
func (r *Registrar) Update(ctx context.Context, invitadoID string, in RegistrationInput) (*model.Invitado, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	inv := in.toModel(invitadoID)
	if err := r.store.UpdateWithCapacity(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}
