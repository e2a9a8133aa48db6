package validators

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// IsIdentifier accepts provider and patient ids: up to 64 characters of
// letters, digits, dot, underscore and dash, not starting with punctuation.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}

func IsEmail(email string) bool {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@")+1:], ".")
}
