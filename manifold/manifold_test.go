package manifold_test

import (
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/estimation/manifold"
)

// scalarChart is a 1-dimensional Euclidean chart used to exercise the
// contract helpers.
type scalarChart struct {
	v float64
}

func (s scalarChart) Dim() int { return 1 }

func (s scalarChart) Retract(delta []float64) (scalarChart, error) {
	if err := manifold.CheckTangent("scalarChart.Retract", delta, 1); err != nil {
		return scalarChart{}, err
	}
	return scalarChart{s.v + delta[0]}, nil
}

func (s scalarChart) LocalCoordinates(t scalarChart) []float64 {
	return []float64{t.v - s.v}
}

func (s scalarChart) Equals(t scalarChart, tol float64) bool {
	return math.Abs(s.v-t.v) < tol
}

// brokenChart drops the sign of the tangent on the way back, violating the
// round-trip property.
type brokenChart struct {
	v float64
}

func (b brokenChart) Dim() int { return 1 }

func (b brokenChart) Retract(delta []float64) (brokenChart, error) {
	if err := manifold.CheckTangent("brokenChart.Retract", delta, 1); err != nil {
		return brokenChart{}, err
	}
	return brokenChart{b.v + delta[0]}, nil
}

func (b brokenChart) LocalCoordinates(c brokenChart) []float64 {
	return []float64{math.Abs(c.v - b.v)}
}

func (b brokenChart) Equals(c brokenChart, tol float64) bool {
	return math.Abs(b.v-c.v) < tol
}

var (
	_ manifold.Manifold[scalarChart] = scalarChart{}
	_ manifold.Manifold[brokenChart] = brokenChart{}
)

func TestCheckTangent(t *testing.T) {
	test.That(t, manifold.CheckTangent("x", []float64{1, 2, 3}, 3), test.ShouldBeNil)
	err := manifold.CheckTangent("x", []float64{1, 2}, 3)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "length 2, want 3")
}

func TestRetractInvariants(t *testing.T) {
	x := scalarChart{4.2}
	test.That(t, manifold.CheckRetractInvariants(x, []float64{1e-3}, 1e-9), test.ShouldBeNil)
	test.That(t, manifold.CheckRetractInvariants(x, []float64{-0.25}, 1e-9), test.ShouldBeNil)
}

func TestRetractInvariantsDetectBrokenChart(t *testing.T) {
	b := brokenChart{1.0}
	err := manifold.CheckRetractInvariants(b, []float64{-1e-3}, 1e-9)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "round trip")
}
