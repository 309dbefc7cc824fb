package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// componentIDRegex matches the characters permitted in a component-id.
var componentIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateComponentID validates an AppStream component-id.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - Only ASCII letters, digits, dots, hyphens and underscores
//   - No leading or trailing dots, no empty segments
//   - Maximum length of 256 characters
func ValidateComponentID(cid string) error {
	if cid == "" {
		return New(ErrCodeInvalidComponentID, "component-id cannot be empty")
	}

	if len(cid) > 256 {
		return New(ErrCodeInvalidComponentID, "component-id too long (max 256 characters)")
	}

	if !componentIDRegex.MatchString(cid) {
		return New(ErrCodeInvalidComponentID, "component-id contains invalid characters: %q", cid)
	}

	if strings.HasSuffix(cid, ".") || strings.Contains(cid, "..") {
		return New(ErrCodeInvalidComponentID, "component-id has an empty segment: %q", cid)
	}

	return nil
}

// localeRegex matches POSIX locale names like "de", "pt_BR" or
// "sr@latin", with an optional encoding part.
var localeRegex = regexp.MustCompile(`^[a-zA-Z]{2,3}(_[A-Za-z]{2,4})?(\.[A-Za-z0-9-]+)?(@[a-z]+)?$`)

// ValidateLocale validates a locale name. The special "C" and "POSIX"
// locales are accepted.
func ValidateLocale(locale string) error {
	if locale == "" {
		return New(ErrCodeInvalidInput, "locale cannot be empty")
	}
	if locale == "C" || locale == "POSIX" {
		return nil
	}
	if !localeRegex.MatchString(locale) {
		return New(ErrCodeInvalidInput, "invalid locale name: %q", locale)
	}
	return nil
}

// ValidatePath validates a file path within a unit for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
