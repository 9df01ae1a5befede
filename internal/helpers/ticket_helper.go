package helpers

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"unicode"
)

var codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// TicketCodePrefix derives a short uppercase prefix from an event title,
// e.g. "Fall Carnival 2026" -> "FC".
func TicketCodePrefix(eventTitle string) string {
	var b strings.Builder
	for _, word := range strings.Fields(eventTitle) {
		r := rune(word[0])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
		if b.Len() >= 4 {
			break
		}
	}
	if b.Len() == 0 {
		return "TKT"
	}
	return b.String()
}

// GenerateTicketCode returns a ticket code with a title-derived prefix and a
// random suffix from crypto/rand. Uniqueness is ultimately enforced by the
// unique constraint on ticket_codes.code.
func GenerateTicketCode(eventTitle string) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate ticket code: %w", err)
	}
	suffix := codeEncoding.EncodeToString(buf)
	return fmt.Sprintf("%s-%s", TicketCodePrefix(eventTitle), suffix), nil
}
