package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/require"

	"github.com/elescandalo/teatro-tickets/internal/repository"
	"github.com/elescandalo/teatro-tickets/internal/service"
)

// fakeTicketStore serves canned ticket details and records calls.
type fakeTicketStore struct {
	details   map[string]*repository.TicketDetail
	getCalls  int
	markCalls int
	markErr   error
	markedID  string
	markedBy  uint64
}

func (f *fakeTicketStore) GetDetail(_ context.Context, id string) (*repository.TicketDetail, error) {
	f.getCalls++
	det, ok := f.details[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *det
	return &cp, nil
}

func (f *fakeTicketStore) MarkUsed(_ context.Context, id string, validatedBy uint64) error {
	f.markCalls++
	f.markedID = id
	f.markedBy = validatedBy
	if f.markErr != nil {
		return f.markErr
	}
	det, ok := f.details[id]
	if !ok {
		return repository.ErrNotFound
	}
	if det.Usado {
		return repository.ErrAlreadyUsed
	}
	det.Usado = true
	return nil
}

func sampleDetail(id string) *repository.TicketDetail {
	email := "ana@example.com"
	return &repository.TicketDetail{
		ID:               id,
		FuncionID:        "f-1",
		InvitadoID:       "i-1",
		QRCode:           "i-1-0-1700000000000-abc",
		Usado:            false,
		CreatedAt:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		InvitadoNombre:   "Ana García",
		InvitadoEmail:    &email,
		FuncionNombre:    "Función de Gala",
		FuncionFecha:     time.Date(2026, 4, 10, 20, 30, 0, 0, time.UTC),
		FuncionUbicacion: "Teatro Principal",
	}
}

func newStore(ids ...string) *fakeTicketStore {
	f := &fakeTicketStore{details: map[string]*repository.TicketDetail{}}
	for _, id := range ids {
		f.details[id] = sampleDetail(id)
	}
	return f
}

func TestBuildPayloadFields(t *testing.T) {
	det := sampleDetail("t-1")
	p := service.BuildPayload(det)

	require.Equal(t, "t-1", p.TicketID)
	require.Equal(t, det.QRCode, p.QRCode)
	require.Equal(t, "f-1", p.FuncionID)
	require.Equal(t, "i-1", p.InvitadoID)
	require.Equal(t, "Ana García", p.InvitadoNombre)
	require.Equal(t, "ana@example.com", p.InvitadoEmail)
	require.Equal(t, "Función de Gala", p.FuncionNombre)
	require.Equal(t, "2026-04-10T20:30:00Z", p.FuncionFecha)
	require.Equal(t, "Teatro Principal", p.FuncionUbicacion)
	require.False(t, p.Usado)
	require.Equal(t, "theater-ticket", p.Type)
	require.Equal(t, "1.0", p.Version)
}

func TestBuildPayloadFallbacks(t *testing.T) {
	det := sampleDetail("t-1")
	det.InvitadoNombre = ""
	det.InvitadoEmail = nil
	det.FuncionNombre = ""
	det.FuncionFecha = time.Time{}
	det.FuncionUbicacion = ""

	p := service.BuildPayload(det)
	require.Equal(t, "Sin nombre", p.InvitadoNombre)
	require.Equal(t, "Sin email", p.InvitadoEmail)
	require.Equal(t, "Sin función", p.FuncionNombre)
	require.Equal(t, "Sin fecha", p.FuncionFecha)
	require.Equal(t, "Sin ubicación", p.FuncionUbicacion)
}

func TestQREncoderMemoizes(t *testing.T) {
	store := newStore("t-1")
	enc := service.NewQREncoder(store, nil, 10, 0)

	ctx := context.Background()
	first, err := enc.Encode(ctx, "t-1")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := enc.Encode(ctx, "t-1")
	require.NoError(t, err)
	require.Equal(t, first, second, "cache hits are byte-identical")
	require.Equal(t, 1, store.getCalls, "second encode must not touch storage")
}

func TestQREncoderEncodesPayload(t *testing.T) {
	store := newStore("t-1")
	enc := service.NewQREncoder(store, nil, 10, 0)

	png, err := enc.Encode(context.Background(), "t-1")
	require.NoError(t, err)

	want, err := json.Marshal(service.BuildPayload(sampleDetail("t-1")))
	require.NoError(t, err)
	wantPNG, err := qrcode.Encode(string(want), qrcode.Low, 200)
	require.NoError(t, err)
	require.Equal(t, wantPNG, png)
}

func TestQREncoderUnknownTicket(t *testing.T) {
	enc := service.NewQREncoder(newStore(), nil, 10, 0)
	_, err := enc.Encode(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestQREncoderInvalidate(t *testing.T) {
	store := newStore("t-1")
	enc := service.NewQREncoder(store, nil, 10, 0)
	ctx := context.Background()

	first, err := enc.Encode(ctx, "t-1")
	require.NoError(t, err)

	store.details["t-1"].Usado = true
	enc.Invalidate(ctx, "t-1")

	second, err := enc.Encode(ctx, "t-1")
	require.NoError(t, err)
	require.NotEqual(t, first, second, "post-redemption encode must reflect usado=true")
	require.Equal(t, 2, store.getCalls)
}

func TestQREncoderBounded(t *testing.T) {
	store := newStore("t-1", "t-2")
	enc := service.NewQREncoder(store, nil, 1, 0)
	ctx := context.Background()

	_, err := enc.Encode(ctx, "t-1")
	require.NoError(t, err)
	_, err = enc.Encode(ctx, "t-2") // evicts t-1
	require.NoError(t, err)
	_, err = enc.Encode(ctx, "t-1")
	require.NoError(t, err)
	require.Equal(t, 3, store.getCalls, "evicted entries are re-fetched")
}

func TestQREncoderDataURL(t *testing.T) {
	enc := service.NewQREncoder(newStore("t-1"), nil, 10, 0)
	url, err := enc.DataURL(context.Background(), "t-1")
	require.NoError(t, err)
	require.Contains(t, url, "data:image/png;base64,")
}
