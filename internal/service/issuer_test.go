package service_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elescandalo/teatro-tickets/internal/service"
)

func TestNewTicketCodes(t *testing.T) {
	codes := service.NewTicketCodes("inv-123", 5)
	require.Len(t, codes, 5)

	seen := map[string]bool{}
	for _, code := range codes {
		require.True(t, strings.HasPrefix(code, "inv-123-"), "code %q should embed the invitado id", code)
		require.False(t, seen[code], "codes must be unique within a batch")
		seen[code] = true
		require.Equal(t, code, strings.ToLower(code), "codes are lowercase")
	}
}

func TestNewTicketCodesZero(t *testing.T) {
	require.Empty(t, service.NewTicketCodes("inv-123", 0))
}
