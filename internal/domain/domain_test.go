package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion_RoundTrip(t *testing.T) {
	for _, v := range []Version{0, 1, 42, 1 << 40} {
		parsed, err := ParseVersion(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
	}

	assert.Equal(t, "AAAAAAAAAAE=", Version(1).String())
}

func TestParseVersion_Invalid(t *testing.T) {
	_, err := ParseVersion("not base64!")
	assert.Error(t, err)

	_, err = ParseVersion("AAE=")
	assert.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Alan A. A. Donovan", DisplayName("  Alan", "A.  A.", "Donovan "))
	assert.Equal(t, "Brian Kernighan", DisplayName("Brian", "", "Kernighan"))
	assert.Equal(t, "", DisplayName("", " ", ""))

	a := &Author{}
	a.Rename("Alan", "A. A.", "Donovan")
	assert.Equal(t, "Alan A. A. Donovan", a.Name)
	assert.Equal(t, "Alan Donovan", a.FirstLast())
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, FoldKey("Linux"), FoldKey("LINUX"))
	assert.Equal(t, FoldKey("UI/UX"), FoldKey(" ui/ux "))
	assert.NotEqual(t, FoldKey("React"), FoldKey("Redux"))
}

func TestPlaceholderAuthor(t *testing.T) {
	a := PlaceholderAuthor()
	assert.NotEqual(t, [16]byte{}, [16]byte(a.GUID))
	assert.False(t, a.CreatedAt.IsZero())
}
