package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpretAccuracy(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{100, "Near-perfect (>=98%)"},
		{98, "Near-perfect (>=98%)"},
		{93.2, "Excellent (90-98%)"},
		{75, "Good (75-90%)"},
		{60, "Needs Work (50-75%)"},
		{12, "Poor (<50%)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InterpretAccuracy(tt.pct))
	}
}

func TestInterpretPassRate(t *testing.T) {
	assert.Contains(t, InterpretPassRate(1), "All pairs")
	assert.Contains(t, InterpretPassRate(0.85), "Most pairs")
	assert.Contains(t, InterpretPassRate(0.5), "About half")
	assert.Contains(t, InterpretPassRate(0.1), "Few pairs")
}
