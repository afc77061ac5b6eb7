package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/estimation/manifold"
)

// EssentialMatrix is the calibrated two-view epipolar constraint,
// parameterized by the rotation and the translation direction between the
// cameras. Its matrix form is skew(t)·R, and its tangent space stacks the
// 3 rotation coordinates ahead of the 2 direction coordinates.
type EssentialMatrix struct {
	rot Rot3
	dir Unit3
}

// EssentialDim is the tangent-space dimension of an essential matrix.
const EssentialDim = Rot3Dim + Unit3Dim

// NewEssentialMatrix builds an essential matrix from a rotation and a
// translation direction.
func NewEssentialMatrix(rot Rot3, dir Unit3) EssentialMatrix {
	return EssentialMatrix{rot: rot, dir: dir}
}

// DefaultEssentialMatrix returns the essential matrix of an identity
// rotation and a +z translation direction.
func DefaultEssentialMatrix() EssentialMatrix {
	return EssentialMatrix{rot: NewRot3(), dir: DefaultUnit3()}
}

// Rotation returns the rotation component.
func (e EssentialMatrix) Rotation() Rot3 {
	return e.rot
}

// Direction returns the translation direction component.
func (e EssentialMatrix) Direction() Unit3 {
	return e.dir
}

// skewSymmetric returns the cross-product matrix of p, so that
// skewSymmetric(p)·v = p × v.
func skewSymmetric(p r3.Vector) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -p.Z, p.Y,
		p.Z, 0, -p.X,
		-p.Y, p.X, 0,
	})
}

// Matrix returns the 3x3 essential matrix skew(t)·R.
func (e EssentialMatrix) Matrix() *mat.Dense {
	out := mat.NewDense(3, 3, nil)
	out.Mul(skewSymmetric(e.dir.Vector()), e.rot.Matrix())
	return out
}

// Dim returns the tangent-space dimension, 5.
func (e EssentialMatrix) Dim() int {
	return EssentialDim
}

// Retract steps the rotation along delta[0:3) and the direction along
// delta[3:5). The split order is mirrored by LocalCoordinates.
func (e EssentialMatrix) Retract(delta []float64) (EssentialMatrix, error) {
	if err := manifold.CheckTangent("EssentialMatrix.Retract", delta, EssentialDim); err != nil {
		return EssentialMatrix{}, err
	}
	rot, err := e.rot.Retract(delta[:Rot3Dim])
	if err != nil {
		return EssentialMatrix{}, err
	}
	dir, err := e.dir.Retract(delta[Rot3Dim:])
	if err != nil {
		return EssentialMatrix{}, err
	}
	return EssentialMatrix{rot: rot, dir: dir}, nil
}

// LocalCoordinates stacks the rotation coordinates ahead of the direction
// coordinates, matching the Retract split.
func (e EssentialMatrix) LocalCoordinates(f EssentialMatrix) []float64 {
	out := make([]float64, 0, EssentialDim)
	out = append(out, e.rot.LocalCoordinates(f.rot)...)
	out = append(out, e.dir.LocalCoordinates(f.dir)...)
	return out
}

// Equals holds when both the rotation and the direction agree within tol.
func (e EssentialMatrix) Equals(f EssentialMatrix, tol float64) bool {
	return e.rot.Equals(f.rot, tol) && e.dir.Equals(f.dir, tol)
}

// String renders the components for diagnostics.
func (e EssentialMatrix) String() string {
	return fmt.Sprintf("EssentialMatrix(R: %v, t: %v)", e.rot, e.dir)
}

// HasEssentialSingularValues reports whether m has the singular-value
// pattern (σ, σ, 0) of an essential matrix, within tol after scale
// normalization.
func HasEssentialSingularValues(m *mat.Dense, tol float64) bool {
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDNone); !ok {
		return false
	}
	sv := svd.Values(nil)
	if sv[0] < smallAngle {
		return false
	}
	return math.Abs(sv[1]/sv[0]-1) < tol && sv[2]/sv[0] < tol
}
