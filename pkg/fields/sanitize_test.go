package fields

import (
	"strings"
	"testing"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeValue_SizeLimit(t *testing.T) {
	limit := 4096

	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SanitizeValue(domain.String(strings.Repeat("a", tt.size)))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValueTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeValue_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Hello World", "Hello World"},
		{"Safe Controls", "Line1\nLine2\tTabbed\r", "Line1\nLine2\tTabbed\r"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeValue(domain.String(tt.input))
			require.NoError(t, err)
			assert.Equal(t, domain.String(tt.expected), got)
		})
	}
}

func TestSanitizeValue_NonStrings(t *testing.T) {
	for _, v := range []domain.Value{domain.Null(), domain.Number(1), domain.Bool(false)} {
		got, err := SanitizeValue(v)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestSanitizeValue_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxValueSize, "10")

	_, err := SanitizeValue(domain.String("12345678901"))
	assert.ErrorIs(t, err, ErrValueTooLarge)

	_, err = SanitizeValue(domain.String("12345"))
	assert.NoError(t, err)
}

func TestSanitizeValue_InvalidUTF8(t *testing.T) {
	_, err := SanitizeValue(domain.String("\xbd\xb2\x3d\xbc\x20\xe2\x8c\x98"))
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestSanitizeValues(t *testing.T) {
	got, err := SanitizeValues(map[string]domain.Value{
		"name": domain.String("Ada\x00"),
		"age":  domain.Number(36),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.String("Ada"), got["name"])
	assert.Equal(t, domain.Number(36), got["age"])

	_, err = SanitizeValues(map[string]domain.Value{"bio": domain.String("\xff")})
	assert.ErrorIs(t, err, ErrInvalidUTF8)
	assert.ErrorContains(t, err, "bio")
}
