package utils

import (
	"errors"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ExtractEmailDomain(email string) (string, error) {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "", errors.New("invalid email format")
	}
	return parts[1], nil
}

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsInstitutionalEmail applies the .edu-suffix check; nothing smarter.
func IsInstitutionalEmail(email string) bool {
	return strings.HasSuffix(strings.ToLower(email), ".edu")
}
