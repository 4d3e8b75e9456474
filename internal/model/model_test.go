package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalProductMinutes(t *testing.T) {
	tests := []struct {
		name          string
		production    float64
		assembly      float64
		assembly2x2   bool
		assembly2x2Mn float64
		quantity      int
		heads         int
		want          float64
	}{
		{"single unit single head", 10, 5, false, 0, 1, 1, 15},
		{"quantity scales", 10, 5, false, 0, 4, 1, 60},
		{"heads divide", 10, 5, false, 0, 4, 2, 30},
		{"2x2 adds its time", 10, 5, true, 3, 1, 1, 18},
		{"2x2 off ignores its time", 10, 5, false, 3, 1, 1, 15},
		{"zero heads treated as one", 10, 5, false, 0, 2, 0, 30},
		{"negative heads treated as one", 10, 5, false, 0, 2, -3, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalProductMinutes(tt.production, tt.assembly, tt.assembly2x2, tt.assembly2x2Mn, tt.quantity, tt.heads)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestComputeTimes(t *testing.T) {
	o := Order{
		ProductionMinutes: 40,
		AssemblyMinutes:   20,
		Quantity:          8,
		Heads:             1,
	}
	ComputeTimes(&o)

	assert.InDelta(t, 480.0, o.TotalMinutes, 0.001)
	assert.InDelta(t, 8.0, o.TotalHours, 0.001)
}

func TestProductMatches(t *testing.T) {
	p := Product{Reference: "P-100", MachineReference: "MR-1"}

	assert.True(t, p.Matches("P-100"))
	assert.True(t, p.Matches("MR-1"))
	assert.False(t, p.Matches("p-100")) // exact, never fuzzy
	assert.False(t, p.Matches("P-10"))
	assert.False(t, p.Matches(""))

	empty := Product{}
	assert.False(t, empty.Matches(""))
}
