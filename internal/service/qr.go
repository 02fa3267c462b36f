package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/elescandalo/teatro-tickets/internal/repository"
)

// Payload tag and schema version. Already-printed and emailed codes
// carry these exact values, so they must never change for v1 payloads.
const (
	PayloadType    = "theater-ticket"
	PayloadVersion = "1.0"
)

// Fallback strings baked into historical payloads when a field was
// missing. Kept for compatibility: the validator re-derives the
// payload from canonical data and compares field by field.
const (
	sinNombre    = "Sin nombre"
	sinEmail     = "Sin email"
	sinFuncion   = "Sin función"
	sinFecha     = "Sin fecha"
	sinUbicacion = "Sin ubicación"
)

// QRPayload is the flat JSON object encoded into a ticket's QR image.
// It embeds a point-in-time snapshot of the invitado and funcion so a
// scanner can cross-check without an extra round trip.
type QRPayload struct {
	TicketID         string `json:"ticketId"`
	QRCode           string `json:"qrCode"`
	FuncionID        string `json:"funcionId"`
	InvitadoID       string `json:"invitadoId"`
	InvitadoNombre   string `json:"invitadoNombre"`
	InvitadoEmail    string `json:"invitadoEmail"`
	FuncionNombre    string `json:"funcionNombre"`
	FuncionFecha     string `json:"funcionFecha"`
	FuncionUbicacion string `json:"funcionUbicacion"`
	Usado            bool   `json:"usado"`
	CreatedAt        string `json:"created_at"`
	Type             string `json:"type"`
	Version          string `json:"version"`
}

// BuildPayload derives the QR payload from a canonical ticket snapshot.
func BuildPayload(det *repository.TicketDetail) QRPayload {
	p := QRPayload{
		TicketID:         det.ID,
		QRCode:           det.QRCode,
		FuncionID:        det.FuncionID,
		InvitadoID:       det.InvitadoID,
		InvitadoNombre:   det.InvitadoNombre,
		InvitadoEmail:    sinEmail,
		FuncionNombre:    det.FuncionNombre,
		FuncionFecha:     sinFecha,
		FuncionUbicacion: det.FuncionUbicacion,
		Usado:            det.Usado,
		CreatedAt:        det.CreatedAt.UTC().Format(time.RFC3339),
		Type:             PayloadType,
		Version:          PayloadVersion,
	}
	if p.InvitadoNombre == "" {
		p.InvitadoNombre = sinNombre
	}
	if det.InvitadoEmail != nil && *det.InvitadoEmail != "" {
		p.InvitadoEmail = *det.InvitadoEmail
	}
	if p.FuncionNombre == "" {
		p.FuncionNombre = sinFuncion
	}
	if !det.FuncionFecha.IsZero() {
		p.FuncionFecha = det.FuncionFecha.UTC().Format(time.RFC3339)
	}
	if p.FuncionUbicacion == "" {
		p.FuncionUbicacion = sinUbicacion
	}
	return p
}

// TicketStore is the slice of the storage layer the QR encoder and the
// validator depend on.
type TicketStore interface {
	GetDetail(ctx context.Context, id string) (*repository.TicketDetail, error)
	MarkUsed(ctx context.Context, id string, validatedBy uint64) error
}

// QREncoder renders ticket QR codes as PNG images and memoizes them
// per ticket id. The in-process cache is bounded (FIFO eviction) and
// explicitly invalidated on redemption, since the payload embeds the
// usado flag. An optional Redis tier shares encoded images across
// processes with a TTL; when the Redis client is nil only the local
// tier is used.
type QREncoder struct {
	store TicketStore
	rdb   *redis.Client
	ttl   time.Duration

	mu      sync.Mutex
	cache   map[string][]byte
	order   []string
	maxSize int
}

// Rendering parameters: low error correction keeps the image small at
// the cost of robustness to physical damage; 200px matches the size of
// previously issued codes.
const (
	qrRecoveryLevel = qrcode.Low
	qrPixelSize     = 200
)

// NewQREncoder builds an encoder over the given store. maxEntries
// bounds the in-process cache; ttl applies to the Redis tier only.
func NewQREncoder(store TicketStore, rdb *redis.Client, maxEntries int, ttl time.Duration) *QREncoder {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &QREncoder{
		store:   store,
		rdb:     rdb,
		ttl:     ttl,
		cache:   make(map[string][]byte, maxEntries),
		order:   make([]string, 0, maxEntries),
		maxSize: maxEntries,
	}
}

func qrCacheKey(ticketID string) string { return "qr:" + ticketID }

// Encode returns the PNG image for a ticket's QR code. Cache hits are
// byte-identical to the first encode and do not touch storage.
// Returns repository.ErrNotFound when the ticket does not exist.
func (e *QREncoder) Encode(ctx context.Context, ticketID string) ([]byte, error) {
	e.mu.Lock()
	if png, ok := e.cache[ticketID]; ok {
		e.mu.Unlock()
		return png, nil
	}
	e.mu.Unlock()

	if e.rdb != nil {
		if png, err := e.rdb.Get(ctx, qrCacheKey(ticketID)).Bytes(); err == nil && len(png) > 0 {
			e.storeLocal(ticketID, png)
			return png, nil
		}
	}

	det, err := e.store.GetDetail(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(BuildPayload(det))
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(string(data), qrRecoveryLevel, qrPixelSize)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}

	e.storeLocal(ticketID, png)
	if e.rdb != nil {
		// Best effort: a failed cache write never fails the request.
		_ = e.rdb.Set(ctx, qrCacheKey(ticketID), png, e.ttl).Err()
	}
	return png, nil
}

// DataURL returns the encoded image as a base64 PNG data URL, the form
// embedded in invitation emails.
func (e *QREncoder) DataURL(ctx context.Context, ticketID string) (string, error) {
	png, err := e.Encode(ctx, ticketID)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// Invalidate drops a ticket's cached image from both tiers. Called
// after redemption so the next encode reflects usado=true.
func (e *QREncoder) Invalidate(ctx context.Context, ticketID string) {
	e.mu.Lock()
	if _, ok := e.cache[ticketID]; ok {
		delete(e.cache, ticketID)
		for i, id := range e.order {
			if id == ticketID {
				e.order = append(e.order[:i], e.order[i+1:]...)
				break
			}
		}
	}
	e.mu.Unlock()
	if e.rdb != nil {
		_ = e.rdb.Del(ctx, qrCacheKey(ticketID)).Err()
	}
}

func (e *QREncoder) storeLocal(ticketID string, png []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.cache[ticketID]; ok {
		return
	}
	for len(e.cache) >= e.maxSize {
		oldest := e.order[0]
		e.order = e.order[1:]
		delete(e.cache, oldest)
	}
	e.cache[ticketID] = png
	e.order = append(e.order, ticketID)
}
