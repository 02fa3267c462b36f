package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/elescandalo/teatro-tickets/internal/handler"
	"github.com/elescandalo/teatro-tickets/internal/repository"
	"github.com/elescandalo/teatro-tickets/internal/service"
)

type stubTicketStore struct {
	det *repository.TicketDetail
}

func (s *stubTicketStore) GetDetail(_ context.Context, id string) (*repository.TicketDetail, error) {
	if s.det == nil || s.det.ID != id {
		return nil, repository.ErrNotFound
	}
	cp := *s.det
	return &cp, nil
}

func (s *stubTicketStore) MarkUsed(_ context.Context, id string, _ uint64) error {
	if s.det == nil || s.det.ID != id {
		return repository.ErrNotFound
	}
	if s.det.Usado {
		return repository.ErrAlreadyUsed
	}
	s.det.Usado = true
	return nil
}

func doorTicket() *repository.TicketDetail {
	return &repository.TicketDetail{
		ID:               "t-1",
		FuncionID:        "f-1",
		InvitadoID:       "i-1",
		QRCode:           "i-1-0-1700000000000-abc",
		CreatedAt:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		InvitadoNombre:   "Ana García",
		FuncionNombre:    "Función de Gala",
		FuncionFecha:     time.Date(2026, 4, 10, 20, 30, 0, 0, time.UTC),
		FuncionUbicacion: "Teatro Principal",
	}
}

func postJSON(t *testing.T, e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestValidateEndpointVerdicts(t *testing.T) {
	store := &stubTicketStore{det: doorTicket()}
	h := handler.NewValidateHandler(service.NewValidator(store, nil))
	e := echo.New()

	payload, err := json.Marshal(service.BuildPayload(store.det))
	require.NoError(t, err)
	body, err := json.Marshal(map[string]string{"qr_data": string(payload)})
	require.NoError(t, err)

	c, rec := postJSON(t, e, "/v1/tickets/validate", string(body))
	require.NoError(t, h.Validate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var res service.ValidationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, service.VerdictValid, res.Verdict)
	require.Equal(t, "Ticket válido", res.Message)
}

func TestValidateEndpointMalformed(t *testing.T) {
	h := handler.NewValidateHandler(service.NewValidator(&stubTicketStore{}, nil))
	e := echo.New()

	c, rec := postJSON(t, e, "/v1/tickets/validate", `{"qr_data":"garbage"}`)
	require.NoError(t, h.Validate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var res service.ValidationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, service.VerdictInvalid, res.Verdict)
	require.Equal(t, service.ReasonMalformed, res.Reason)
}

func TestValidateEndpointMissingBody(t *testing.T) {
	h := handler.NewValidateHandler(service.NewValidator(&stubTicketStore{}, nil))
	e := echo.New()

	c, rec := postJSON(t, e, "/v1/tickets/validate", `{}`)
	require.NoError(t, h.Validate(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRedeemEndpointOnce(t *testing.T) {
	store := &stubTicketStore{det: doorTicket()}
	h := handler.NewValidateHandler(service.NewValidator(store, nil))
	e := echo.New()

	redeem := func() *httptest.ResponseRecorder {
		c, rec := postJSON(t, e, "/v1/tickets/t-1/redeem", `{}`)
		c.SetParamNames("id")
		c.SetParamValues("t-1")
		c.Set("user_id", float64(7)) // as the JWT middleware stores it
		require.NoError(t, h.Redeem(c))
		return rec
	}

	first := redeem()
	require.Equal(t, http.StatusOK, first.Code)
	require.True(t, store.det.Usado)

	second := redeem()
	require.Equal(t, http.StatusConflict, second.Code)
}
