package factor

import (
	"math"

	"github.com/pkg/errors"
)

// Constrained is a hard/constrained noise model: a very large penalty weight
// on every residual row, standing in for an exact equality constraint inside
// a soft least-squares solve.
type Constrained struct {
	weights []float64
}

// NewConstrained builds a constrained model of the given residual dimension
// with the same penalty weight on every row. The sign of mu is discarded;
// the stored weight is always |mu|.
func NewConstrained(dim int, mu float64) (*Constrained, error) {
	if dim < 1 {
		return nil, errors.Errorf("noise model dimension must be positive, got %d", dim)
	}
	weights := make([]float64, dim)
	for i := range weights {
		weights[i] = math.Abs(mu)
	}
	return &Constrained{weights: weights}, nil
}

// Dim returns the residual dimension the model applies to.
func (c *Constrained) Dim() int {
	return len(c.weights)
}

// Weights returns a copy of the per-row penalty weights.
func (c *Constrained) Weights() []float64 {
	out := make([]float64, len(c.weights))
	copy(out, c.weights)
	return out
}

// Whiten scales a residual by the per-row weights, producing the vector
// whose squared norm enters the objective.
func (c *Constrained) Whiten(residual []float64) ([]float64, error) {
	if len(residual) != len(c.weights) {
		return nil, errors.Errorf("residual has dimension %d, want %d", len(residual), len(c.weights))
	}
	out := make([]float64, len(residual))
	for i, r := range residual {
		out[i] = c.weights[i] * r
	}
	return out, nil
}

// clone returns an independent copy of the model.
func (c *Constrained) clone() *Constrained {
	return &Constrained{weights: c.Weights()}
}
