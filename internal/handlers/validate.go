package handlers

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits for form fields.
const (
	maxTitleLen       = 300
	maxBodyLen        = 100_000
	maxExcerptLen     = 1_000
	maxDisplayNameLen = 100
	maxEmailLen       = 254
	minPasswordLen    = 10
)

// emailPattern is a permissive shape check; real validation happens when
// the address is used.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validatePost checks post form inputs and returns the first error found.
func validatePost(title, body, excerpt string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "Body is too long (max 100,000 characters)."
	}
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return "Excerpt is too long (max 1,000 characters)."
	}
	return ""
}

// validateRegistration checks registration form inputs and returns the
// first error found.
func validateRegistration(displayName, email, password string) string {
	if strings.TrimSpace(displayName) == "" {
		return "Display name is required."
	}
	if utf8.RuneCountInString(displayName) > maxDisplayNameLen {
		return "Display name is too long (max 100 characters)."
	}
	if email == "" {
		return "Email is required."
	}
	if len(email) > maxEmailLen || !emailPattern.MatchString(email) {
		return "Email address is not valid."
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 10 characters."
	}
	return ""
}
