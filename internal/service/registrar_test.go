package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elescandalo/teatro-tickets/internal/model"
	"github.com/elescandalo/teatro-tickets/internal/repository"
	"github.com/elescandalo/teatro-tickets/internal/service"
)

// fakeRegistrationStore simulates the transactional capacity check for a
// single funcion.
type fakeRegistrationStore struct {
	capacidad int
	vendidos  int
	created   *model.Invitado
	codes     []string
	updated   *model.Invitado
}

func (f *fakeRegistrationStore) CreateWithTickets(_ context.Context, inv *model.Invitado, codes []string) ([]model.Ticket, error) {
	if available := f.capacidad - f.vendidos; len(codes) > available {
		return nil, &repository.CapacityError{Available: available}
	}
	f.created = inv
	f.codes = codes
	f.vendidos += inv.CantidadTickets
	tickets := make([]model.Ticket, 0, len(codes))
	for _, code := range codes {
		tickets = append(tickets, model.Ticket{ID: code + "-id", InvitadoID: inv.ID, FuncionID: inv.FuncionID, QRCode: code})
	}
	return tickets, nil
}

func (f *fakeRegistrationStore) UpdateWithCapacity(_ context.Context, inv *model.Invitado) error {
	if inv.CantidadTickets > f.capacidad {
		return &repository.CapacityError{Available: f.capacidad}
	}
	f.updated = inv
	return nil
}

func validInput() service.RegistrationInput {
	return service.RegistrationInput{
		FuncionID:       "f-1",
		Nombre:          "Ana García",
		Email:           "Ana@Example.com",
		Telefono:        "+54 (11) 1234-5678",
		CantidadTickets: 4,
	}
}

func TestRegisterIssuesTickets(t *testing.T) {
	store := &fakeRegistrationStore{capacidad: 10}
	r := service.NewRegistrar(store)

	inv, tickets, err := r.Register(context.Background(), validInput())
	require.NoError(t, err)
	require.NotEmpty(t, inv.ID)
	require.Len(t, tickets, 4)
	require.Len(t, store.codes, 4)
	for _, code := range store.codes {
		require.True(t, strings.HasPrefix(code, inv.ID+"-"), "ticket codes embed the invitado id")
	}
	require.NotNil(t, inv.Email)
	require.Equal(t, "ana@example.com", *inv.Email, "emails are stored lowercased")
}

func TestRegisterCapacityExceeded(t *testing.T) {
	store := &fakeRegistrationStore{capacidad: 10}
	r := service.NewRegistrar(store)
	ctx := context.Background()

	in := validInput()
	_, _, err := r.Register(ctx, in)
	require.NoError(t, err)

	in.CantidadTickets = 7 // only 6 left
	_, _, err = r.Register(ctx, in)
	ce, ok := repository.IsCapacity(err)
	require.True(t, ok)
	require.Equal(t, 6, ce.Available)
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*service.RegistrationInput)
		field   string
		message string
	}{
		{"missing funcion", func(in *service.RegistrationInput) { in.FuncionID = "" }, "funcion_id", "Debes seleccionar una función válida."},
		{"short name", func(in *service.RegistrationInput) { in.Nombre = "A" }, "nombre", "El nombre es obligatorio"},
		{"long name", func(in *service.RegistrationInput) { in.Nombre = strings.Repeat("a", 101) }, "nombre", "El nombre es demasiado largo"},
		{"missing email", func(in *service.RegistrationInput) { in.Email = "" }, "email", "Email inválido"},
		{"bad email", func(in *service.RegistrationInput) { in.Email = "no-arroba" }, "email", "Email inválido"},
		{"bad phone", func(in *service.RegistrationInput) { in.Telefono = "abc123" }, "telefono", "Solo números, espacios, guiones y paréntesis"},
		{"zero tickets", func(in *service.RegistrationInput) { in.CantidadTickets = 0 }, "cantidad_tickets", "Debe ser al menos 1"},
		{"too many tickets", func(in *service.RegistrationInput) { in.CantidadTickets = 101 }, "cantidad_tickets", "Máximo 100 tickets"},
	}

	r := service.NewRegistrar(&fakeRegistrationStore{capacidad: 1000})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, _, err := r.Register(context.Background(), in)
			var ve *service.ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tc.message, ve.Fields[tc.field])
		})
	}
}

func TestRegisterOptionalPhone(t *testing.T) {
	r := service.NewRegistrar(&fakeRegistrationStore{capacidad: 10})
	in := validInput()
	in.Telefono = ""
	inv, _, err := r.Register(context.Background(), in)
	require.NoError(t, err)
	require.Nil(t, inv.Telefono)
}

func TestUpdateKeepsID(t *testing.T) {
	store := &fakeRegistrationStore{capacidad: 10}
	r := service.NewRegistrar(store)

	inv, err := r.Update(context.Background(), "i-9", validInput())
	require.NoError(t, err)
	require.Equal(t, "i-9", inv.ID)
	require.Equal(t, "i-9", store.updated.ID)
}

func TestUpdateCapacityExceeded(t *testing.T) {
	r := service.NewRegistrar(&fakeRegistrationStore{capacidad: 3})
	in := validInput()
	in.CantidadTickets = 4
	_, err := r.Update(context.Background(), "i-9", in)
	_, ok := repository.IsCapacity(err)
	require.True(t, ok)
}
