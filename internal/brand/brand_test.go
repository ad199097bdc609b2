package brand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry(DefaultBrands(), "BQUK")

	tests := []struct {
		name         string
		code         string
		expectedCode string
		expectedName string
	}{
		{"full code", "BQUK", "BQUK", "B&Q"},
		{"short alias", "BQ", "BQUK", "B&Q"},
		{"tradepoint alias", "TP", "TRADEPOINT", "TradePoint"},
		{"screwfix alias", "SF", "SCREWFIX", "Screwfix"},
		{"case insensitive", "sf", "SCREWFIX", "Screwfix"},
		{"surrounding whitespace", " bq ", "BQUK", "B&Q"},
		{"unknown falls back to default", "DIY-WAREHOUSE", "BQUK", "B&Q"},
		{"empty falls back to default", "", "BQUK", "B&Q"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := r.Resolve(tt.code)
			require.True(t, ok)
			assert.Equal(t, tt.expectedCode, b.Code)
			assert.Equal(t, tt.expectedName, b.Name)
		})
	}
}

func TestRegistry_Resolve_NoDefault(t *testing.T) {
	r := NewRegistry(DefaultBrands(), "")

	_, ok := r.Resolve("UNKNOWN")
	assert.False(t, ok)

	// Known codes still resolve.
	b, ok := r.Resolve("TP")
	require.True(t, ok)
	assert.Equal(t, "TRADEPOINT", b.Code)
}

func TestRegistry_Known(t *testing.T) {
	r := NewRegistry(DefaultBrands(), "BQUK")

	assert.True(t, r.Known("SCREWFIX"))
	assert.True(t, r.Known("sf"))
	assert.False(t, r.Known("UNKNOWN"), "default fallback does not make a code known")
}

func TestDefaultBrands_SenderIDs(t *testing.T) {
	byCode := map[string]Brand{}
	for _, b := range DefaultBrands() {
		byCode[b.Code] = b
	}
	assert.Equal(t, "B&Q", byCode["BQUK"].SenderID)
	assert.Equal(t, "TradePoint", byCode["TRADEPOINT"].SenderID)
	assert.Equal(t, "Screwfix", byCode["SCREWFIX"].SenderID)
}
