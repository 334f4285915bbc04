// Package isbn validates and normalizes ISBN-10 and ISBN-13 identifiers.
//
// Both validators accept human-formatted input such as "ISBN-13: 978-0-13-419044-0".
// The character-stripping step runs under StripBudget; input that cannot be
// cleaned in time fails validation instead of stalling the request.
package isbn

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// StripBudget bounds the time spent cleaning a single candidate value.
const StripBudget = 500 * time.Millisecond

// checkEvery is how many runes are processed between deadline checks.
const checkEvery = 256

const (
	prefix13 = "ISBN-13"
	prefix10 = "ISBN-10"
)

// FieldError reports a failed identifier check against a named field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func invalid(field string) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf("The field %s is invalid.", field)}
}

// Validate13 checks value as an ISBN-13. Empty input passes.
func Validate13(field, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), StripBudget)
	defer cancel()
	return Validate13Context(ctx, field, value)
}

// Validate13Context is Validate13 with a caller-supplied deadline.
func Validate13Context(ctx context.Context, field, value string) error {
	if value == "" {
		return nil
	}
	digits, err := strip(ctx, trimPrefix(value, prefix13), false)
	if err != nil || !checksum13(digits) {
		return invalid(field)
	}
	return nil
}

// Validate10 checks value as an ISBN-10. Empty input passes.
func Validate10(field, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), StripBudget)
	defer cancel()
	return Validate10Context(ctx, field, value)
}

// Validate10Context is Validate10 with a caller-supplied deadline.
func Validate10Context(ctx context.Context, field, value string) error {
	if value == "" {
		return nil
	}
	chars, err := strip(ctx, trimPrefix(value, prefix10), true)
	if err != nil || !checksum10(chars) {
		return invalid(field)
	}
	return nil
}

// Valid13 reports whether value is empty or a valid ISBN-13.
func Valid13(value string) bool {
	return Validate13("isbn13", value) == nil
}

// Valid10 reports whether value is empty or a valid ISBN-10.
func Valid10(value string) bool {
	return Validate10("isbn10", value) == nil
}

// Normalize13 returns the digits of value with any "ISBN-13" prefix removed.
// The result is the storage key of a book; it is not checksum-validated.
func Normalize13(value string) string {
	digits, err := strip(context.Background(), trimPrefix(value, prefix13), false)
	if err != nil {
		return ""
	}
	return digits
}

// Normalize10 returns the digits and check character (upper-cased X) of value.
func Normalize10(value string) string {
	chars, err := strip(context.Background(), trimPrefix(value, prefix10), true)
	if err != nil {
		return ""
	}
	return chars
}

// Normalize returns the normalized key for either ISBN form: ten-character
// values keep their check character, anything else is reduced to digits.
func Normalize(value string) string {
	if n := Normalize10(value); len(n) == 10 {
		return n
	}
	return Normalize13(value)
}

// trimPrefix drops everything up to and including a leading "ISBN-13" or
// "ISBN-10" marker (with optional colon), matched case-insensitively.
func trimPrefix(value, prefix string) string {
	// Offsets index value itself; upper-casing can change byte lengths.
	for i := 0; i+len(prefix) <= len(value); i++ {
		if strings.EqualFold(value[i:i+len(prefix)], prefix) {
			return strings.TrimPrefix(value[i+len(prefix):], ":")
		}
	}
	return value
}

func strip(ctx context.Context, value string, keepX bool) (string, error) {
	var b strings.Builder
	b.Grow(13)
	n := 0
	for _, r := range value {
		n++
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case keepX && (r == 'X' || r == 'x'):
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func checksum13(digits string) bool {
	if len(digits) != 13 || !strings.HasPrefix(digits, "97") || (digits[2] != '8' && digits[2] != '9') {
		return false
	}
	sum := 0
	for i := 0; i < 13; i++ {
		d := int(digits[i] - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += 3 * d
		}
	}
	return sum%10 == 0
}

// checksum10 expects digits with an optional X, which is only legal last.
func checksum10(chars string) bool {
	if len(chars) != 10 {
		return false
	}
	sum := 0
	for i := 0; i < 9; i++ {
		c := chars[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += int(c-'0') * (10 - i)
	}
	if chars[9] == 'X' {
		sum += 10
	} else {
		sum += int(chars[9] - '0')
	}
	return sum%11 == 0
}
