package middleware

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Input validation and sanitization utilities

var ErrInvalid = errors.New("invalid input")

// ParseID parses a positive int64 path id.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", ErrInvalid, raw)
	}
	return id, nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// RequireText sanitizes a free-text field and rejects it when empty or
// longer than max runes (max <= 0 disables the length check).
func RequireText(field, value string, max int) (string, error) {
	v := SanitizeString(value)
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalid, field)
	}
	if max > 0 && utf8.RuneCountInString(v) > max {
		return "", fmt.Errorf("%w: %s exceeds %d characters", ErrInvalid, field, max)
	}
	return v, nil
}

// CleanFilename keeps only the base name of an uploaded file, stripping any
// client-supplied directories.
func CleanFilename(name string) (string, error) {
	name = SanitizeString(strings.ReplaceAll(name, `\`, "/"))
	base := filepath.Base(name)
	if base == "." || base == "/" || base == ".." || base == "" {
		return "", fmt.Errorf("%w: filename is required", ErrInvalid)
	}
	if len(base) > 255 {
		return "", fmt.Errorf("%w: filename too long", ErrInvalid)
	}
	return base, nil
}
