package fontregistry

import (
	"testing"

	"github.com/npillmayer/glyphs/core/font"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryStoreAndTypeCase(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	reg := NewRegistry()
	reg.StoreFont("", font.FallbackFont())
	tc, err := reg.TypeCase("go_sans", 12)
	require.NoError(t, err)
	assert.Equal(t, 12.0, tc.PtSize())
	assert.Equal(t, "Go Sans", tc.ScalableFontParent().Fontname)
	//
	// typecases are cached
	tc2, err := reg.TypeCase("go_sans", 12)
	require.NoError(t, err)
	assert.Same(t, tc, tc2)
}

func TestRegistryFallback(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	reg := NewRegistry()
	tc, err := reg.TypeCase("no_such_font", 10)
	assert.Error(t, err)
	require.NotNil(t, tc)
	assert.Equal(t, "Go Sans", tc.ScalableFontParent().Fontname)
}

func TestRegistryPrefixSearch(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	reg := NewRegistry()
	reg.StoreFont("", font.FallbackFont())
	assert.Contains(t, reg.Matches("go"), "go_sans")
	assert.Empty(t, reg.Matches("zz"))
	assert.Empty(t, reg.Matches(""))
}
