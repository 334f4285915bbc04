package isbn

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate13(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"empty passes", "", true},
		{"plain digits", "9780134190440", true},
		{"979 prefix", "9791032305690", true},
		{"hyphenated", "978-1-61729-178-4", true},
		{"with prefix and colon", "ISBN-13: 978-1-4919-4195-9", true},
		{"lowercase prefix", "isbn-13 9780596007126", true},
		{"bad checksum", "9780134190441", false},
		{"valid checksum wrong prefix", "1234567890128", false},
		{"977 prefix", "9770134190441", false},
		{"too short", "978013419044", false},
		{"too long", "97801341904400", false},
		{"letters only", "not an isbn", false},
		{"multibyte before prefix", "ɐISBN-13", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate13("isbn13", tt.value)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "isbn13", fe.Field)
			assert.Contains(t, fe.Message, "isbn13")
		})
	}
}

func TestValidate13_SingleDigitMutationFails(t *testing.T) {
	const good = "9780134190440"
	require.NoError(t, Validate13("isbn13", good))

	// Changing the check digit alone always breaks a weighted mod-10 sum.
	for d := byte('0'); d <= '9'; d++ {
		if d == good[12] {
			continue
		}
		mutated := good[:12] + string(d)
		assert.Error(t, Validate13("isbn13", mutated), mutated)
	}
}

func TestValidate10(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"empty passes", "", true},
		{"plain digits", "0134190440", true},
		{"x check digit", "080442957X", true},
		{"lowercase x", "080442957x", true},
		{"hyphenated", "1-61729-178-1", true},
		{"with prefix", "ISBN-10: 0-596-00712-4", true},
		{"multibyte then prefixed isbn", "ɐɐISBN-10:0134190440", true},
		{"multibyte before prefix", "ɐɐɐISBN-10", false},
		{"bad checksum", "0134190441", false},
		{"x in the middle", "01341X0440", false},
		{"too short", "013419044", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate10("isbn10", tt.value)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_TimeoutFailsClosed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	long := strings.Repeat("-", 10_000) + "9780134190440"
	assert.Error(t, Validate13Context(ctx, "isbn13", long))
	assert.Error(t, Validate10Context(ctx, "isbn10", "0134190440"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "9780134190440", Normalize13("ISBN-13: 978-0-13-419044-0"))
	assert.Equal(t, "080442957X", Normalize10("0-8044-2957-x"))
	assert.Equal(t, "0134190440", Normalize("0-13-419044-0"))
	assert.Equal(t, "9780134190440", Normalize("978 0 13 419044 0"))
	assert.True(t, Valid13(""))
	assert.False(t, Valid10("123"))
	assert.Equal(t, "0134190440", Normalize10("ɐɐISBN-10:0134190440"))
	assert.Equal(t, "9780134190440", Normalize13("ɐISBN-13:9780134190440"))
}
