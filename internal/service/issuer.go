package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v3"
)

// NewTicketCodes synthesizes n opaque ticket codes for an invitado.
// Each code combines the invitado id, the sequence index, the current
// time in milliseconds and a random suffix. Collision-resistant across
// a funcion, not cryptographically unique; the database additionally
// enforces uniqueness on the column.
func NewTicketCodes(invitadoID string, n int) []string {
	now := time.Now().UnixMilli()
	codes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		codes = append(codes, fmt.Sprintf("%s-%d-%d-%s", invitadoID, i, now, strings.ToLower(shortuuid.New())))
	}
	return codes
}
