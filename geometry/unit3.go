package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/estimation/manifold"
)

// Unit3 is a direction in 3D space: a point on the unit sphere with a
// 2-dimensional tangent space. The zero value is not usable; construct with
// NewUnit3 or DefaultUnit3.
type Unit3 struct {
	p r3.Vector
}

// Unit3Dim is the tangent-space dimension of a direction.
const Unit3Dim = 2

// DefaultUnit3 returns the +z direction.
func DefaultUnit3() Unit3 {
	return Unit3{r3.Vector{Z: 1}}
}

// NewUnit3 builds a direction from any nonzero vector, normalizing it.
func NewUnit3(v r3.Vector) (Unit3, error) {
	n := v.Norm()
	if n < smallAngle {
		return Unit3{}, errors.New("cannot build a direction from a zero vector")
	}
	return Unit3{v.Mul(1 / n)}, nil
}

// Vector returns the unit vector of the direction.
func (u Unit3) Vector() r3.Vector {
	return u.p
}

// basis returns a deterministic orthonormal basis of the tangent plane at u.
// The reference axis switches away from z when u is close to the poles so the
// cross product stays well conditioned.
func (u Unit3) basis() (r3.Vector, r3.Vector) {
	axis := r3.Vector{Z: 1}
	if math.Abs(u.p.Z) > 0.9 {
		axis = r3.Vector{X: 1}
	}
	b1 := u.p.Cross(axis)
	b1 = b1.Mul(1 / b1.Norm())
	b2 := u.p.Cross(b1)
	return b1, b2
}

// Dim returns the tangent-space dimension, 2.
func (u Unit3) Dim() int {
	return Unit3Dim
}

// Retract moves along the sphere from u: the tangent delta is expressed in
// the local basis and mapped through the sphere exponential.
func (u Unit3) Retract(delta []float64) (Unit3, error) {
	if err := manifold.CheckTangent("Unit3.Retract", delta, Unit3Dim); err != nil {
		return Unit3{}, err
	}
	b1, b2 := u.basis()
	xi := b1.Mul(delta[0]).Add(b2.Mul(delta[1]))
	theta := xi.Norm()
	if theta < smallAngle {
		return u, nil
	}
	p := u.p.Mul(math.Cos(theta)).Add(xi.Mul(math.Sin(theta) / theta))
	return Unit3{p}, nil
}

// LocalCoordinates is the inverse of Retract for directions less than π
// apart. An antipodal pair has no preferred tangent; the zero vector is
// returned in that degenerate case.
func (u Unit3) LocalCoordinates(v Unit3) []float64 {
	b1, b2 := u.basis()
	y1 := b1.Dot(v.p)
	y2 := b2.Dot(v.p)
	sinTheta := math.Hypot(y1, y2)
	if sinTheta < smallAngle {
		return []float64{0, 0}
	}
	cosTheta := u.p.Dot(v.p)
	scale := math.Atan2(sinTheta, cosTheta) / sinTheta
	return []float64{y1 * scale, y2 * scale}
}

// Equals compares the unit vectors componentwise within tol.
func (u Unit3) Equals(v Unit3, tol float64) bool {
	d := u.p.Sub(v.p)
	return math.Abs(d.X) < tol && math.Abs(d.Y) < tol && math.Abs(d.Z) < tol
}

// String renders the unit vector for diagnostics.
func (u Unit3) String() string {
	return fmt.Sprintf("Unit3(%.6f, %.6f, %.6f)", u.p.X, u.p.Y, u.p.Z)
}
