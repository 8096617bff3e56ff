package validation

import (
	"regexp"
	"strings"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	idNumPattern  = regexp.MustCompile(`^\d{13}$`)
	scriptPattern = regexp.MustCompile(`(?is)<script\b.*?</script>`)
)

// ValidEmail reports whether the address is well formed.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidGrade reports whether the grade falls in the supported 1-12 range.
func ValidGrade(grade int) bool {
	return grade >= 1 && grade <= 12
}

// ValidIDNumber reports whether the national id number is a 13-digit string.
func ValidIDNumber(idNum string) bool {
	return idNumPattern.MatchString(idNum)
}

// ValidPassword enforces the minimum password length.
func ValidPassword(password string) bool {
	return len(password) >= 6
}

// Sanitize trims whitespace and strips script tags from free-text input.
func Sanitize(input string) string {
	return scriptPattern.ReplaceAllString(strings.TrimSpace(input), "")
}
