package factor

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"
)

// DefaultMu is the default penalty weight approximating a hard equality
// constraint. It is a tunable default, not a law; construct with an explicit
// mu to override it.
const DefaultMu = 1000.0

// MotionConstraint ties two scalar positions and a scalar velocity together
// over a fixed time step: x1 + v·dt = x2. It connects three 1-dimensional
// variables and contributes a single residual row under a constrained noise
// model. The constraint is immutable after construction and evaluation is a
// pure function of the supplied values.
type MotionConstraint struct {
	x1, x2, vel Key
	dt          float64
	noise       *Constrained
}

// NewMotionConstraint builds the constraint with the default penalty weight.
func NewMotionConstraint(x1, x2, vel Key, dt float64) *MotionConstraint {
	return NewMotionConstraintWithPenalty(x1, x2, vel, dt, DefaultMu)
}

// NewMotionConstraintWithPenalty builds the constraint with an explicit
// penalty weight. The stored weight is |mu| regardless of the sign passed.
func NewMotionConstraintWithPenalty(x1, x2, vel Key, dt, mu float64) *MotionConstraint {
	noise, _ := NewConstrained(1, mu)
	return &MotionConstraint{x1: x1, x2: x2, vel: vel, dt: dt, noise: noise}
}

// Keys returns the connected variable keys in evaluation order x1, x2, v.
func (c *MotionConstraint) Keys() []Key {
	return []Key{c.x1, c.x2, c.vel}
}

// Dim returns the residual dimension, 1.
func (c *MotionConstraint) Dim() int {
	return 1
}

// DT returns the fixed time step.
func (c *MotionConstraint) DT() float64 {
	return c.dt
}

// Noise returns the constrained noise model on the residual row.
func (c *MotionConstraint) Noise() *Constrained {
	return c.noise
}

// EvaluateError returns the residual e = x1 + v·dt - x2 at the given
// variable values. Each of h1, h2, h3 is an optional output slot for the
// Jacobian with respect to x1, x2 and v: pass nil to skip that derivative;
// a non-nil matrix is sized to 1x1 and overwritten with the exact
// closed-form value (1, -1 and dt respectively). No numerical differencing
// is ever involved.
func (c *MotionConstraint) EvaluateError(x1, x2, v float64, h1, h2, h3 *mat.Dense) *mat.VecDense {
	// Reset before ReuseAs so caller buffers can be reused across calls.
	if h1 != nil {
		h1.Reset()
		h1.ReuseAs(1, 1)
		h1.Set(0, 0, 1)
	}
	if h2 != nil {
		h2.Reset()
		h2.ReuseAs(1, 1)
		h2.Set(0, 0, -1)
	}
	if h3 != nil {
		h3.Reset()
		h3.ReuseAs(1, 1)
		h3.Set(0, 0, c.dt)
	}
	return mat.NewVecDense(1, []float64{x1 + v*c.dt - x2})
}

// Clone returns an independent copy with the same time step and an
// independent noise model, usable in a separate graph.
func (c *MotionConstraint) Clone() Factor {
	return &MotionConstraint{
		x1:    c.x1,
		x2:    c.x2,
		vel:   c.vel,
		dt:    c.dt,
		noise: c.noise.clone(),
	}
}

// Validate reports every connected key the surrounding graph does not know
// about. Connecting a missing variable is a construction error that must
// reach the caller rather than be absorbed.
func (c *MotionConstraint) Validate(exists func(Key) bool) error {
	var err error
	for _, k := range c.Keys() {
		if !exists(k) {
			err = multierr.Append(err, errors.Errorf("variable key %d is not in the graph", k))
		}
	}
	return err
}

// String renders the configuration for diagnostics.
func (c *MotionConstraint) String() string {
	return fmt.Sprintf("MotionConstraint(x1: %d, x2: %d, v: %d, dt: %.6f)", c.x1, c.x2, c.vel, c.dt)
}

var _ Factor = (*MotionConstraint)(nil)
