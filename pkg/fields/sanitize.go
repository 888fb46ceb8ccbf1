package fields

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/formstate/pkg/domain"
)

var (
	// DefaultMaxValueSize is 4KB (conservative default)
	DefaultMaxValueSize = 4096
	// EnvMaxValueSize is the environment variable to override the default
	EnvMaxValueSize = "FORMSTATE_MAX_VALUE_SIZE"
)

var (
	ErrValueTooLarge = errors.New("value exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("value contains invalid UTF-8 sequences")
)

// SanitizeValue cleans a value received from an untrusted client. String
// payloads are size limited, must be valid UTF-8 and lose every control
// character except newline, tab and carriage return. Other kinds pass through.
func SanitizeValue(v domain.Value) (domain.Value, error) {
	s, ok := v.AsString()
	if !ok {
		return v, nil
	}

	limit := maxValueSize()
	if len(s) > limit {
		// Rejected rather than truncated so the stored value is exactly what was sent.
		return domain.Value{}, fmt.Errorf("%w: size=%d limit=%d", ErrValueTooLarge, len(s), limit)
	}
	if !utf8.ValidString(s) {
		return domain.Value{}, ErrInvalidUTF8
	}

	// Fast path: if no control chars, return as is.
	if strings.IndexFunc(s, isUnsafeControl) < 0 {
		return v, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !isUnsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return domain.String(b.String()), nil
}

// SanitizeValues applies SanitizeValue to every entry of data.
func SanitizeValues(data map[string]domain.Value) (map[string]domain.Value, error) {
	out := make(map[string]domain.Value, len(data))
	for k, v := range data {
		clean, err := SanitizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = clean
	}
	return out, nil
}

func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

func maxValueSize() int {
	if val := os.Getenv(EnvMaxValueSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxValueSize
}
