package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/estimation/manifold"
)

// minFocal is the smallest focal-length magnitude for which the calibration
// matrix is still treated as invertible. Below it, Matrix would emit
// infinities instead of a meaningful epipolar constraint.
const minFocal = 1e-12

// FundamentalMatrix is the uncalibrated two-view epipolar constraint in its
// general parameterization: two rotations around a fixed-form diagonal, with
// matrix form U·diag(1,s,1)·Vᵀ. The scalar s is a free parameter; no
// positivity or bound is enforced, so transiently unusual values during
// optimization are representable.
type FundamentalMatrix struct {
	u Rot3
	s float64
	v Rot3
}

// FundamentalDim is the tangent-space dimension of a fundamental matrix:
// 3 for U, 1 for s, 3 for V.
const FundamentalDim = 2*Rot3Dim + 1

// NewFundamentalMatrix builds a fundamental matrix from its components.
func NewFundamentalMatrix(u Rot3, s float64, v Rot3) FundamentalMatrix {
	return FundamentalMatrix{u: u, s: s, v: v}
}

// DefaultFundamentalMatrix returns identity rotations with s = 1, whose
// matrix form is the identity.
func DefaultFundamentalMatrix() FundamentalMatrix {
	return FundamentalMatrix{u: NewRot3(), s: 1, v: NewRot3()}
}

// U returns the left rotation.
func (f FundamentalMatrix) U() Rot3 { return f.u }

// S returns the scalar parameter.
func (f FundamentalMatrix) S() float64 { return f.s }

// V returns the right rotation.
func (f FundamentalMatrix) V() Rot3 { return f.v }

// Matrix returns the 3x3 matrix form U·diag(1,s,1)·Vᵀ.
func (f FundamentalMatrix) Matrix() *mat.Dense {
	diag := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, f.s, 0,
		0, 0, 1,
	})
	out := mat.NewDense(3, 3, nil)
	out.Mul(f.u.Matrix(), diag)
	out.Mul(out, f.v.Matrix().T())
	return out
}

// Dim returns the tangent-space dimension, 7.
func (f FundamentalMatrix) Dim() int {
	return FundamentalDim
}

// Retract splits the 7-vector as delta[0:3) for U, delta[3] for s and
// delta[4:7) for V. The split order is a binding contract mirrored by
// LocalCoordinates.
func (f FundamentalMatrix) Retract(delta []float64) (FundamentalMatrix, error) {
	if err := manifold.CheckTangent("FundamentalMatrix.Retract", delta, FundamentalDim); err != nil {
		return FundamentalMatrix{}, err
	}
	u, err := f.u.Retract(delta[:Rot3Dim])
	if err != nil {
		return FundamentalMatrix{}, err
	}
	v, err := f.v.Retract(delta[Rot3Dim+1:])
	if err != nil {
		return FundamentalMatrix{}, err
	}
	return FundamentalMatrix{u: u, s: f.s + delta[Rot3Dim], v: v}, nil
}

// LocalCoordinates stacks U coordinates, the scalar difference, then V
// coordinates, matching the Retract split.
func (f FundamentalMatrix) LocalCoordinates(g FundamentalMatrix) []float64 {
	out := make([]float64, 0, FundamentalDim)
	out = append(out, f.u.LocalCoordinates(g.u)...)
	out = append(out, g.s-f.s)
	out = append(out, f.v.LocalCoordinates(g.v)...)
	return out
}

// Equals holds when U, s and V each agree within the same tol.
func (f FundamentalMatrix) Equals(g FundamentalMatrix, tol float64) bool {
	return f.u.Equals(g.u, tol) && math.Abs(f.s-g.s) < tol && f.v.Equals(g.v, tol)
}

// String renders the components for diagnostics.
func (f FundamentalMatrix) String() string {
	return fmt.Sprintf("FundamentalMatrix(U: %v, s: %.6f, V: %v)", f.u, f.s, f.v)
}

// SimpleFundamentalMatrix parameterizes the uncalibrated constraint as an
// essential matrix plus one focal length per camera, with matrix form
// Ka·E·Kb⁻¹. The principal points ca and cb are carried as metadata only:
// they are copied unchanged through every Retract and never contribute to
// the 7-dimensional tangent space, even though the full state holds 11
// scalars. That asymmetry is deliberate.
type SimpleFundamentalMatrix struct {
	e      EssentialMatrix
	fa, fb float64
	ca, cb r2.Point
}

// SimpleFundamentalDim is the tangent-space dimension of a simple
// fundamental matrix: 5 for E, 1 for each focal length.
const SimpleFundamentalDim = EssentialDim + 2

// NewSimpleFundamentalMatrix builds a simple fundamental matrix from an
// essential matrix, the two focal lengths, and the two principal points.
func NewSimpleFundamentalMatrix(e EssentialMatrix, fa, fb float64, ca, cb r2.Point) SimpleFundamentalMatrix {
	return SimpleFundamentalMatrix{e: e, fa: fa, fb: fb, ca: ca, cb: cb}
}

// DefaultSimpleFundamentalMatrix returns the default essential matrix with
// unit focal lengths and principal points at the origin.
func DefaultSimpleFundamentalMatrix() SimpleFundamentalMatrix {
	return SimpleFundamentalMatrix{e: DefaultEssentialMatrix(), fa: 1, fb: 1}
}

// Essential returns the essential matrix component.
func (s SimpleFundamentalMatrix) Essential() EssentialMatrix { return s.e }

// FocalLengths returns the focal lengths of the two cameras.
func (s SimpleFundamentalMatrix) FocalLengths() (fa, fb float64) { return s.fa, s.fb }

// PrincipalPoints returns the principal points of the two cameras.
func (s SimpleFundamentalMatrix) PrincipalPoints() (ca, cb r2.Point) { return s.ca, s.cb }

// calibrationMatrix builds the 3x3 calibration matrix of a camera with a
// single focal length f and principal point c.
func calibrationMatrix(f float64, c r2.Point) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		f, 0, c.X,
		0, f, c.Y,
		0, 0, 1,
	})
}

// calibrationMatrixInverse builds the closed-form inverse of
// calibrationMatrix(f, c). The caller guarantees f is nonzero.
func calibrationMatrixInverse(f float64, c r2.Point) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1 / f, 0, -c.X / f,
		0, 1 / f, -c.Y / f,
		0, 0, 1,
	})
}

// Matrix returns the 3x3 matrix form Ka·E·Kb⁻¹. A zero or near-singular
// focal length is a precondition violation and is reported as an error
// rather than propagated as an infinite or NaN matrix.
func (s SimpleFundamentalMatrix) Matrix() (*mat.Dense, error) {
	if math.Abs(s.fa) < minFocal {
		return nil, errors.Errorf("left focal length %g is singular", s.fa)
	}
	if math.Abs(s.fb) < minFocal {
		return nil, errors.Errorf("right focal length %g is singular", s.fb)
	}
	out := mat.NewDense(3, 3, nil)
	out.Mul(calibrationMatrix(s.fa, s.ca), s.e.Matrix())
	out.Mul(out, calibrationMatrixInverse(s.fb, s.cb))
	return out, nil
}

// Dim returns the tangent-space dimension, 7.
func (s SimpleFundamentalMatrix) Dim() int {
	return SimpleFundamentalDim
}

// Retract splits the 7-vector as delta[0:5) for E, delta[5] for fa and
// delta[6] for fb. The principal points pass through unchanged.
func (s SimpleFundamentalMatrix) Retract(delta []float64) (SimpleFundamentalMatrix, error) {
	if err := manifold.CheckTangent("SimpleFundamentalMatrix.Retract", delta, SimpleFundamentalDim); err != nil {
		return SimpleFundamentalMatrix{}, err
	}
	e, err := s.e.Retract(delta[:EssentialDim])
	if err != nil {
		return SimpleFundamentalMatrix{}, err
	}
	return SimpleFundamentalMatrix{
		e:  e,
		fa: s.fa + delta[EssentialDim],
		fb: s.fb + delta[EssentialDim+1],
		ca: s.ca,
		cb: s.cb,
	}, nil
}

// LocalCoordinates stacks E coordinates then the focal-length differences.
// The principal points never contribute to the tangent vector.
func (s SimpleFundamentalMatrix) LocalCoordinates(t SimpleFundamentalMatrix) []float64 {
	out := make([]float64, 0, SimpleFundamentalDim)
	out = append(out, s.e.LocalCoordinates(t.e)...)
	out = append(out, t.fa-s.fa, t.fb-s.fb)
	return out
}

// Equals holds when E, both focal lengths, and both principal points agree
// within the same tol; the principal points compare by Euclidean distance.
func (s SimpleFundamentalMatrix) Equals(t SimpleFundamentalMatrix, tol float64) bool {
	return s.e.Equals(t.e, tol) &&
		math.Abs(s.fa-t.fa) < tol && math.Abs(s.fb-t.fb) < tol &&
		s.ca.Sub(t.ca).Norm() < tol && s.cb.Sub(t.cb).Norm() < tol
}

// String renders the components for diagnostics.
func (s SimpleFundamentalMatrix) String() string {
	return fmt.Sprintf("SimpleFundamentalMatrix(E: %v, fa: %.6f, fb: %.6f, ca: (%.3f, %.3f), cb: (%.3f, %.3f))",
		s.e, s.fa, s.fb, s.ca.X, s.ca.Y, s.cb.X, s.cb.Y)
}

// Every chart type satisfies the solver-facing contract.
var (
	_ manifold.Manifold[Rot3]                    = Rot3{}
	_ manifold.Manifold[Unit3]                   = Unit3{}
	_ manifold.Manifold[EssentialMatrix]         = EssentialMatrix{}
	_ manifold.Manifold[FundamentalMatrix]       = FundamentalMatrix{}
	_ manifold.Manifold[SimpleFundamentalMatrix] = SimpleFundamentalMatrix{}
)
