package email_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elescandalo/teatro-tickets/internal/email"
)

func TestBuildInviteHTML(t *testing.T) {
	qrs := []email.QRAttachment{
		{ImageURL: "data:image/png;base64,AAAA", Link: "https://example.com/v1/tickets/t-1/qr"},
		{Link: "https://example.com/v1/tickets/t-2/qr"},
	}
	html := email.BuildInviteHTML("Ana García", "La Obra", "10/04/2026 20:30", "Teatro Principal", qrs)

	require.Contains(t, html, "¡Hola Ana García!")
	require.Contains(t, html, "<b>La Obra</b>")
	require.Contains(t, html, "<b>Fecha:</b> 10/04/2026 20:30")
	require.Contains(t, html, "<b>Lugar:</b> Teatro Principal")
	require.Contains(t, html, `<img src="data:image/png;base64,AAAA" alt="QR Ticket #1"`)
	require.Contains(t, html, `<a href="https://example.com/v1/tickets/t-2/qr">Ver QR Ticket #2</a>`)
	require.Contains(t, html, "El equipo de El Escándalo")
}

func TestBuildInviteHTMLEscapes(t *testing.T) {
	html := email.BuildInviteHTML(`<script>`, "Obra & Cía", "hoy", "allí", nil)
	require.NotContains(t, html, "<script>")
	require.Contains(t, html, "&lt;script&gt;")
	require.Contains(t, html, "Obra &amp; Cía")
}
