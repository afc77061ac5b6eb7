// Package geometry provides the manifold-valued geometric types used in
// two-view state estimation: 3D rotations, unit directions, and the
// essential and fundamental matrix parameterizations, together with helpers
// to estimate initial values from point correspondences.
package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/estimation/manifold"
)

// smallAngle is the threshold below which exp/log maps switch to their
// first-order series to avoid dividing by a vanishing sine.
const smallAngle = 1e-12

// Rot3 is a rotation in 3D space, stored as a unit quaternion. The zero
// value is not usable; construct with NewRot3 or Rot3Exp.
type Rot3 struct {
	q quat.Number
}

// Rot3Dim is the tangent-space dimension of a rotation.
const Rot3Dim = 3

// NewRot3 returns the identity rotation.
func NewRot3() Rot3 {
	return Rot3{quat.Number{Real: 1}}
}

// NewRot3FromQuaternion builds a rotation from an arbitrary nonzero
// quaternion, normalizing it onto the unit sphere.
func NewRot3FromQuaternion(q quat.Number) (Rot3, error) {
	n := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if n < smallAngle {
		return Rot3{}, errors.New("cannot build a rotation from a zero quaternion")
	}
	return Rot3{quat.Scale(1/n, q)}, nil
}

// Rot3Exp is the exponential map at the identity: it converts a rotation
// vector (axis scaled by angle, in radians) to a rotation.
func Rot3Exp(w r3.Vector) Rot3 {
	theta := w.Norm()
	if theta < smallAngle {
		// First-order expansion of the half-angle quaternion.
		q := quat.Number{Real: 1, Imag: w.X / 2, Jmag: w.Y / 2, Kmag: w.Z / 2}
		r, _ := NewRot3FromQuaternion(q)
		return r
	}
	s := math.Sin(theta/2) / theta
	return Rot3{quat.Number{
		Real: math.Cos(theta / 2),
		Imag: w.X * s,
		Jmag: w.Y * s,
		Kmag: w.Z * s,
	}}
}

// Log is the inverse of Rot3Exp: it returns the rotation vector of the
// receiver, with the shortest-arc sign convention.
func (r Rot3) Log() r3.Vector {
	q := r.q
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	v := r3.Vector{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	s := v.Norm()
	if s < smallAngle {
		return v.Mul(2)
	}
	halfTheta := math.Atan2(s, q.Real)
	return v.Mul(2 * halfTheta / s)
}

// Compose returns the rotation r followed by s, i.e. r·s.
func (r Rot3) Compose(s Rot3) Rot3 {
	return Rot3{quat.Mul(r.q, s.q)}
}

// Inverse returns the inverse rotation.
func (r Rot3) Inverse() Rot3 {
	return Rot3{quat.Conj(r.q)}
}

// Quaternion returns the underlying unit quaternion.
func (r Rot3) Quaternion() quat.Number {
	return r.q
}

// Matrix returns the 3x3 rotation matrix representation.
func (r Rot3) Matrix() *mat.Dense {
	w, x, y, z := r.q.Real, r.q.Imag, r.q.Jmag, r.q.Kmag
	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	})
}

// Rotate applies the rotation to a vector.
func (r Rot3) Rotate(v r3.Vector) r3.Vector {
	m := r.Matrix()
	return r3.Vector{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z,
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z,
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z,
	}
}

// Dim returns the tangent-space dimension, 3.
func (r Rot3) Dim() int {
	return Rot3Dim
}

// Retract steps from r along a 3-vector rotation delta, returning r·Exp(delta).
func (r Rot3) Retract(delta []float64) (Rot3, error) {
	if err := manifold.CheckTangent("Rot3.Retract", delta, Rot3Dim); err != nil {
		return Rot3{}, err
	}
	return r.Compose(Rot3Exp(r3.Vector{X: delta[0], Y: delta[1], Z: delta[2]})), nil
}

// LocalCoordinates returns the rotation vector delta with r.Retract(delta) ≈ s.
func (r Rot3) LocalCoordinates(s Rot3) []float64 {
	w := r.Inverse().Compose(s).Log()
	return []float64{w.X, w.Y, w.Z}
}

// Equals compares the rotation matrices entrywise within tol.
func (r Rot3) Equals(s Rot3, tol float64) bool {
	return mat.EqualApprox(r.Matrix(), s.Matrix(), tol)
}

// String renders the rotation matrix for diagnostics.
func (r Rot3) String() string {
	return fmt.Sprintf("Rot3(%v)", mat.Formatted(r.Matrix(), mat.Prefix("     ")))
}
