package kernel_test

import (
	"math"
	"testing"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocation(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr error
	}{
		{name: "berlin", lat: 52.52, lng: 13.405},
		{name: "poles and antimeridian", lat: -90, lng: 180},
		{name: "latitude too high", lat: 90.1, lng: 0, wantErr: errs.ErrValueIsOutOfRange},
		{name: "longitude too low", lat: 0, lng: -180.5, wantErr: errs.ErrValueIsOutOfRange},
		{name: "nan latitude", lat: math.NaN(), lng: 0, wantErr: errs.ErrValueIsOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := kernel.NewLocation(tt.lat, tt.lng)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, loc.Validate())
			assert.InDelta(t, tt.lat, loc.Lat(), 1e-9)
			assert.InDelta(t, tt.lng, loc.Lng(), 1e-9)
		})
	}
}

func TestLocation_ZeroValueIsRequired(t *testing.T) {
	var loc kernel.Location
	require.ErrorIs(t, loc.Validate(), errs.ErrValueIsRequired)
}

func TestLocation_IsEqual(t *testing.T) {
	berlin, _ := kernel.NewLocation(52.5200, 13.4050)
	paris, _ := kernel.NewLocation(48.8566, 2.3522)

	assert.True(t, berlin.IsEqual(berlin))
	assert.False(t, berlin.IsEqual(paris))
	assert.Equal(t, "(52.520000, 13.405000)", berlin.String())
}
