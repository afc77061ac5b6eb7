package geometry

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/estimation/manifold"
)

func TestRot3Identity(t *testing.T) {
	r := NewRot3()
	m := r.Matrix()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			test.That(t, m.At(i, j), test.ShouldAlmostEqual, want)
		}
	}
}

func TestRot3FromQuaternion(t *testing.T) {
	r, err := NewRot3FromQuaternion(quat.Number{Real: 2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Equals(NewRot3(), 1e-12), test.ShouldBeTrue)

	_, err = NewRot3FromQuaternion(quat.Number{})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRot3ExpLog(t *testing.T) {
	// 90 degrees around z maps x to y.
	r := Rot3Exp(r3.Vector{Z: math.Pi / 2})
	rotated := r.Rotate(r3.Vector{X: 1})
	test.That(t, rotated.X, test.ShouldAlmostEqual, 0)
	test.That(t, rotated.Y, test.ShouldAlmostEqual, 1)
	test.That(t, rotated.Z, test.ShouldAlmostEqual, 0)

	w := r.Log()
	test.That(t, w.X, test.ShouldAlmostEqual, 0)
	test.That(t, w.Y, test.ShouldAlmostEqual, 0)
	test.That(t, w.Z, test.ShouldAlmostEqual, math.Pi/2)

	// Small angles survive the series branch.
	small := Rot3Exp(r3.Vector{X: 1e-14}).Log()
	test.That(t, small.X, test.ShouldAlmostEqual, 1e-14, 1e-18)
}

func TestRot3ComposeInverse(t *testing.T) {
	r := Rot3Exp(r3.Vector{X: 0.3, Y: -0.2, Z: 0.5})
	test.That(t, r.Compose(r.Inverse()).Equals(NewRot3(), 1e-12), test.ShouldBeTrue)
}

func TestRot3Chart(t *testing.T) {
	r := Rot3Exp(r3.Vector{X: 0.1, Y: 0.2, Z: -0.3})
	test.That(t, r.Dim(), test.ShouldEqual, 3)

	same, err := r.Retract([]float64{0, 0, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, same.Equals(r, 1e-12), test.ShouldBeTrue)

	test.That(t, manifold.CheckRetractInvariants(r, []float64{0.01, -0.02, 0.005}, 1e-6), test.ShouldBeNil)
	test.That(t, manifold.CheckRetractInvariants(NewRot3(), []float64{0.3, 0.1, -0.2}, 1e-6), test.ShouldBeNil)
}

func TestRot3RetractDimension(t *testing.T) {
	_, err := NewRot3().Retract([]float64{1, 2})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewRot3().Retract([]float64{1, 2, 3, 4})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRot3EqualsReflexiveSymmetric(t *testing.T) {
	a := Rot3Exp(r3.Vector{X: 0.2, Y: 0.1, Z: 0.4})
	b, err := a.Retract([]float64{1e-9, 0, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a.Equals(a, 1e-8), test.ShouldBeTrue)
	test.That(t, a.Equals(b, 1e-8), test.ShouldBeTrue)
	test.That(t, b.Equals(a, 1e-8), test.ShouldBeTrue)
}
