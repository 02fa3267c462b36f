// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors: ErrNotFound maps to HTTP 404,
// ErrForbidden to 403 and ErrConflict to 409. CapacityError is a
// richer conflict carrying the number of seats still available so the
// caller can tell the operator exactly how many tickets remain.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced obra, funcion, invitado or
// ticket does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they are not allowed to touch.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed due to
// conflicting state, such as cancelling a funcion that is already
// FINALIZADA or registering against a funcion that is not ACTIVA.
var ErrConflict = errors.New("conflict")

// ErrAlreadyUsed is returned when a redemption is attempted on a ticket
// whose usado flag is already set. The conditional update in
// TicketRepo.MarkUsed guarantees only one confirmation wins.
var ErrAlreadyUsed = errors.New("ticket already used")

// CapacityError reports a rejected registration because the funcion
// does not have enough seats left. Available is the number of tickets
// that could still be issued at the moment the transaction held the
// funcion row lock.
type CapacityError struct {
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded: %d tickets available", e.Available)
}

// IsCapacity reports whether err is a CapacityError and returns it.
func IsCapacity(err error) (*CapacityError, bool) {
	var ce *CapacityError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// CapacityInUseError reports a rejected capacity shrink because tickets
// already committed to invitados exceed the requested ceiling. Vendidos
// is the number of tickets issued at the moment the transaction held
// the funcion row lock.
type CapacityInUseError struct {
	Vendidos int
}

func (e *CapacityInUseError) Error() string {
	return fmt.Sprintf("capacity in use: %d tickets already issued", e.Vendidos)
}
