// Package manifold defines the chart contract implemented by every
// optimizable geometric type. An iterative solver never does Euclidean
// arithmetic on a chart value directly; it moves between values and local
// tangent vectors through Retract and LocalCoordinates.
package manifold

import "github.com/pkg/errors"

// Manifold is the capability set a geometric type exposes to the solver.
// Dim is the fixed tangent-space size for the type. Retract steps from the
// receiver along a tangent vector of length exactly Dim and returns a new
// value; the receiver is never mutated. LocalCoordinates is the approximate
// local inverse: Retract(LocalCoordinates(other)) ≈ other, and for small
// deltas LocalCoordinates(Retract(delta)) ≈ delta to first order. Equals is
// approximate equality under a caller-supplied tolerance.
type Manifold[T any] interface {
	Dim() int
	Retract(delta []float64) (T, error)
	LocalCoordinates(other T) []float64
	Equals(other T, tol float64) bool
}

// CheckTangent rejects a tangent vector whose length differs from the fixed
// dimension of the chart. A wrong-sized delta is a programming error on the
// caller side and is never truncated or zero-padded.
func CheckTangent(name string, delta []float64, dim int) error {
	if len(delta) != dim {
		return errors.Errorf("%s: tangent vector has length %d, want %d", name, len(delta), dim)
	}
	return nil
}
