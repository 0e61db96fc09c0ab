package rate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMonthly(t *testing.T) {
	tests := []struct {
		name   string
		yearly float64
		want   float64
	}{
		{name: "zero", yearly: 0, want: 0},
		{name: "three percent", yearly: 0.03, want: 0.0024662697723036},
		{name: "one hundred percent", yearly: 1, want: 0.0594630943592953},
		{name: "total loss", yearly: -1, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMonthly(tt.yearly)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-10)
		})
	}
}

func TestToMonthly_CompoundsBackToYearly(t *testing.T) {
	for _, yearly := range []float64{-1, -0.5, -0.01, 0, 0.001, 0.03, 0.06, 0.25, 1, 3.5} {
		monthly, err := ToMonthly(yearly)
		require.NoError(t, err)
		assert.InDelta(t, 1+yearly, math.Pow(1+monthly, 12), 1e-12, "yearly rate %v", yearly)

		back, err := ToAnnual(monthly)
		require.NoError(t, err)
		assert.InDelta(t, yearly, back, 1e-12, "yearly rate %v", yearly)
	}
}

func TestToMonthly_Invalid(t *testing.T) {
	for _, yearly := range []float64{-1.0001, -5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := ToMonthly(yearly)
		assert.ErrorIs(t, err, ErrInvalidRate, "yearly rate %v", yearly)
	}
}
