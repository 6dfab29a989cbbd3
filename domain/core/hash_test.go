package core

import (
	"testing"
)

func TestComputeInputHashDeterministic(t *testing.T) {
	samples := [][]float64{{1, 2, 3}, {4, 5}}
	settings := map[string]string{"cl": "0.95", "tail": "two"}

	a := ComputeInputHash(samples, settings)
	b := ComputeInputHash(samples, map[string]string{"tail": "two", "cl": "0.95"})
	if a != b {
		t.Errorf("Expected setting order not to matter: %s vs %s", a, b)
	}
	if len(a.Short()) != 12 {
		t.Errorf("Expected 12-character short hash, got %q", a.Short())
	}
}

func TestComputeInputHashSensitivity(t *testing.T) {
	base := ComputeInputHash([][]float64{{1, 2, 3}}, nil)

	tests := []struct {
		name    string
		samples [][]float64
	}{
		{"reordered values", [][]float64{{3, 2, 1}}},
		{"split sample", [][]float64{{1, 2}, {3}}},
		{"extra value", [][]float64{{1, 2, 3, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeInputHash(tt.samples, nil); got == base {
				t.Errorf("Expected different hash for %v", tt.samples)
			}
		})
	}
}
