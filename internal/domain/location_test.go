package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestLocationID(t *testing.T) {
	tests := []struct {
		name string
		lat  *float64
		lon  *float64
		zip  string
		want string
	}{
		{"zip wins over coordinates", ptr(41.8781), ptr(-87.6298), "60601", "zip_60601"},
		{"coordinates rounded to 4 places", ptr(41.87811234), ptr(-87.62985678), "", "41.8781_-87.6299"},
		{"trailing zeros trimmed", ptr(41.5), ptr(-87.6200), "", "41.5_-87.62"},
		{"whole numbers keep one decimal", ptr(37.0), ptr(-122.0), "", "37.0_-122.0"},
		{"invalid zip falls back to coordinates", ptr(41.5), ptr(-87.5), "606", "41.5_-87.5"},
		{"nothing usable", nil, nil, "", "unknown"},
		{"latitude alone is not enough", ptr(41.5), nil, "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LocationID(tt.lat, tt.lon, tt.zip))
		})
	}
}

func TestProfileLocationID(t *testing.T) {
	assert.Equal(t, "zip_60601", ProfileLocationID(Profile{ZipCode: "60601"}, "fallback"))
	assert.Equal(t, "fallback", ProfileLocationID(Profile{}, "fallback"))
}

func TestParseLatLon(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		key, err := ParseLatLon("41.87811234, -87.62985678")
		require.NoError(t, err)
		assert.Equal(t, "41.8781_-87.6299", key)
	})

	t.Run("missing comma", func(t *testing.T) {
		_, err := ParseLatLon("41.8781")
		assert.Error(t, err)
	})

	t.Run("non-numeric", func(t *testing.T) {
		_, err := ParseLatLon("north,south")
		assert.Error(t, err)
	})
}
