package manifold

import (
	"math"

	"github.com/pkg/errors"
)

// CheckRetractInvariants verifies the two properties a linearizing solver
// relies on: Retract of the zero vector is the identity, and
// LocalCoordinates(Retract(delta)) recovers delta to within tol for a small
// delta. It returns the first violated property as an error.
func CheckRetractInvariants[T Manifold[T]](x T, delta []float64, tol float64) error {
	zero := make([]float64, x.Dim())
	same, err := x.Retract(zero)
	if err != nil {
		return errors.Wrap(err, "retract of zero vector failed")
	}
	if !x.Equals(same, tol) {
		return errors.New("retract of the zero vector is not the identity")
	}

	stepped, err := x.Retract(delta)
	if err != nil {
		return errors.Wrap(err, "retract failed")
	}
	back := x.LocalCoordinates(stepped)
	if len(back) != x.Dim() {
		return errors.Errorf("local coordinates have length %d, want %d", len(back), x.Dim())
	}
	for i := range delta {
		if diff := math.Abs(back[i] - delta[i]); diff > tol {
			return errors.Errorf("round trip error %g at tangent index %d exceeds %g", diff, i, tol)
		}
	}
	return nil
}
