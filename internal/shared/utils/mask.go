package utils

import "strings"

// MaskEmail hides most of the local part of an email address.
// Example: "maria@example.com" -> "ma***@example.com"
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return email
	}
	if len(local) <= 2 {
		return local + "@" + domain
	}
	return local[:2] + "***@" + domain
}
