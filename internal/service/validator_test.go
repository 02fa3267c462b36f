package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elescandalo/teatro-tickets/internal/repository"
	"github.com/elescandalo/teatro-tickets/internal/service"
)

func payloadJSON(t *testing.T, p service.QRPayload) string {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return string(b)
}

func TestValidateMalformed(t *testing.T) {
	v := service.NewValidator(newStore(), nil)

	for _, raw := range []string{"", "not json", "{", `{"ticketId":""}`} {
		res, err := v.Validate(context.Background(), raw)
		require.NoError(t, err)
		require.Equal(t, service.VerdictInvalid, res.Verdict)
		require.Equal(t, service.ReasonMalformed, res.Reason)
		require.Equal(t, "QR inválido: formato incorrecto", res.Message)
	}
}

func TestValidateWrongType(t *testing.T) {
	store := newStore("t-1")
	v := service.NewValidator(store, nil)

	p := service.BuildPayload(store.details["t-1"])
	p.Type = "concert-ticket"
	res, err := v.Validate(context.Background(), payloadJSON(t, p))
	require.NoError(t, err)
	require.Equal(t, service.VerdictInvalid, res.Verdict)
	require.Equal(t, service.ReasonMalformed, res.Reason)
}

func TestValidateNotFound(t *testing.T) {
	store := newStore("t-1")
	v := service.NewValidator(store, nil)

	p := service.BuildPayload(store.details["t-1"])
	p.TicketID = "ghost"
	res, err := v.Validate(context.Background(), payloadJSON(t, p))
	require.NoError(t, err)
	require.Equal(t, service.VerdictInvalid, res.Verdict)
	require.Equal(t, service.ReasonNotFound, res.Reason)
	require.Equal(t, "Ticket no encontrado", res.Message)
}

func TestValidateValid(t *testing.T) {
	store := newStore("t-1")
	v := service.NewValidator(store, nil)

	raw := payloadJSON(t, service.BuildPayload(store.details["t-1"]))
	res, err := v.Validate(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, service.VerdictValid, res.Verdict)
	require.Equal(t, "Ticket válido", res.Message)
	require.NotNil(t, res.Ticket)
	require.NotNil(t, res.Payload)
}

func TestValidateAlreadyUsedWins(t *testing.T) {
	store := newStore("t-1")
	// Tamper with the snapshot AND mark the ticket used; the used state
	// must dominate the verdict.
	p := service.BuildPayload(store.details["t-1"])
	p.InvitadoNombre = "Otra Persona"
	store.details["t-1"].Usado = true

	v := service.NewValidator(store, nil)
	res, err := v.Validate(context.Background(), payloadJSON(t, p))
	require.NoError(t, err)
	require.Equal(t, service.VerdictAlreadyUsed, res.Verdict)
	require.Equal(t, "Ticket ya fue utilizado", res.Message)
}

func TestValidateCodeMismatch(t *testing.T) {
	store := newStore("t-1")
	v := service.NewValidator(store, nil)

	p := service.BuildPayload(store.details["t-1"])
	p.QRCode = "forged-code"
	res, err := v.Validate(context.Background(), payloadJSON(t, p))
	require.NoError(t, err)
	require.Equal(t, service.VerdictInvalid, res.Verdict)
	require.Equal(t, service.ReasonMismatch, res.Reason)
	require.Equal(t, "QR inválido: datos no coinciden", res.Message)
}

func TestValidateSnapshotMismatch(t *testing.T) {
	store := newStore("t-1")
	v := service.NewValidator(store, nil)

	p := service.BuildPayload(store.details["t-1"])
	p.InvitadoNombre = "Otra Persona"
	res, err := v.Validate(context.Background(), payloadJSON(t, p))
	require.NoError(t, err)
	require.Equal(t, service.VerdictInvalid, res.Verdict)
	require.Equal(t, service.ReasonMismatch, res.Reason)
	require.Equal(t, "QR inválido: datos del invitado o función no coinciden", res.Message)
}

func TestRedeemOnce(t *testing.T) {
	store := newStore("t-1")
	enc := service.NewQREncoder(store, nil, 10, 0)
	v := service.NewValidator(store, enc)
	ctx := context.Background()

	// Warm the QR cache so redemption has something to invalidate.
	stale, err := enc.Encode(ctx, "t-1")
	require.NoError(t, err)

	det, err := v.Redeem(ctx, "t-1", 42)
	require.NoError(t, err)
	require.True(t, det.Usado)
	require.Equal(t, "t-1", store.markedID)
	require.Equal(t, uint64(42), store.markedBy)

	fresh, err := enc.Encode(ctx, "t-1")
	require.NoError(t, err)
	require.NotEqual(t, stale, fresh, "redemption must invalidate the cached image")

	_, err = v.Redeem(ctx, "t-1", 43)
	require.ErrorIs(t, err, repository.ErrAlreadyUsed)
}

func TestRedeemUnknownTicket(t *testing.T) {
	v := service.NewValidator(newStore(), nil)
	_, err := v.Redeem(context.Background(), "ghost", 1)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
