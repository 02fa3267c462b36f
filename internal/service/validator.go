package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/elescandalo/teatro-tickets/internal/repository"
)

// Verdict classifies a scanned payload.
type Verdict string

const (
	// VerdictValid means the ticket exists, is unredeemed and every
	// embedded field matches the canonical record.
	VerdictValid Verdict = "VALID"
	// VerdictAlreadyUsed means the ticket is genuine but was redeemed
	// before; treated as a rejection for entry purposes.
	VerdictAlreadyUsed Verdict = "ALREADY_USED"
	// VerdictInvalid covers malformed payloads, unknown tickets and
	// tampered or stale snapshots. See Reason for the cause.
	VerdictInvalid Verdict = "INVALID"
)

// Invalid reasons.
const (
	ReasonMalformed = "MALFORMED"
	ReasonNotFound  = "NOT_FOUND"
	ReasonMismatch  = "MISMATCH"
)

// ValidationResult carries the verdict alongside both views the
// operator needs to make a manual call: the canonical snapshot fetched
// now and the payload that was embedded in the QR at issue time.
type ValidationResult struct {
	Verdict Verdict                  `json:"verdict"`
	Reason  string                   `json:"reason,omitempty"`
	Message string                   `json:"message"`
	Ticket  *repository.TicketDetail `json:"ticket,omitempty"`
	Payload *QRPayload               `json:"qr_info,omitempty"`
}

// Validator decodes scanned QR payloads, checks them against canonical
// storage and performs the one-time redemption flip.
type Validator struct {
	store TicketStore
	cache interface {
		Invalidate(ctx context.Context, ticketID string)
	}
}

// NewValidator builds a validator. The cache may be nil; when set it
// is invalidated after each successful redemption.
func NewValidator(store TicketStore, cache *QREncoder) *Validator {
	v := &Validator{store: store}
	if cache != nil {
		v.cache = cache
	}
	return v
}

// Validate classifies a raw scanned string. Storage failures are
// returned as errors; every recognizable outcome, malformed input
// included, is a ValidationResult so the operator always gets a
// verdict panel rather than an error page.
func (v *Validator) Validate(ctx context.Context, raw string) (*ValidationResult, error) {
	var p QRPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &p); err != nil {
		return &ValidationResult{
			Verdict: VerdictInvalid,
			Reason:  ReasonMalformed,
			Message: "QR inválido: formato incorrecto",
		}, nil
	}
	if p.TicketID == "" || p.Type != PayloadType {
		return &ValidationResult{
			Verdict: VerdictInvalid,
			Reason:  ReasonMalformed,
			Message: "QR inválido: formato incorrecto",
			Payload: &p,
		}, nil
	}

	det, err := v.store.GetDetail(ctx, p.TicketID)
	if err != nil {
		if err == repository.ErrNotFound {
			return &ValidationResult{
				Verdict: VerdictInvalid,
				Reason:  ReasonNotFound,
				Message: "Ticket no encontrado",
				Payload: &p,
			}, nil
		}
		return nil, err
	}

	// Already-used wins over mismatch: the operator sees the redeemed
	// state together with the embedded snapshot for review.
	if det.Usado {
		return &ValidationResult{
			Verdict: VerdictAlreadyUsed,
			Message: "Ticket ya fue utilizado",
			Ticket:  det,
			Payload: &p,
		}, nil
	}

	if det.QRCode != p.QRCode {
		return &ValidationResult{
			Verdict: VerdictInvalid,
			Reason:  ReasonMismatch,
			Message: "QR inválido: datos no coinciden",
			Ticket:  det,
			Payload: &p,
		}, nil
	}

	canonical := BuildPayload(det)
	if canonical.InvitadoNombre != p.InvitadoNombre ||
		canonical.InvitadoEmail != p.InvitadoEmail ||
		canonical.FuncionNombre != p.FuncionNombre {
		return &ValidationResult{
			Verdict: VerdictInvalid,
			Reason:  ReasonMismatch,
			Message: "QR inválido: datos del invitado o función no coinciden",
			Ticket:  det,
			Payload: &p,
		}, nil
	}

	return &ValidationResult{
		Verdict: VerdictValid,
		Message: "Ticket válido",
		Ticket:  det,
		Payload: &p,
	}, nil
}

// Redeem flips the usado flag after an operator confirms entry. The
// conditional update in the store guarantees the transition happens at
// most once; the QR cache entry is invalidated so subsequent encodes
// embed usado=true. Returns the post-redemption snapshot.
//
// Errors: repository.ErrNotFound, repository.ErrAlreadyUsed.
func (v *Validator) Redeem(ctx context.Context, ticketID string, validatedBy uint64) (*repository.TicketDetail, error) {
	if err := v.store.MarkUsed(ctx, ticketID, validatedBy); err != nil {
		return nil, err
	}
	if v.cache != nil {
		v.cache.Invalidate(ctx, ticketID)
	}
	return v.store.GetDetail(ctx, ticketID)
}
