package factor

import (
	"testing"

	"go.viam.com/test"
)

func TestConstrainedConstruction(t *testing.T) {
	n, err := NewConstrained(3, -2.5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n.Dim(), test.ShouldEqual, 3)
	test.That(t, n.Weights(), test.ShouldResemble, []float64{2.5, 2.5, 2.5})

	_, err = NewConstrained(0, 1)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewConstrained(-1, 1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConstrainedWhiten(t *testing.T) {
	n, err := NewConstrained(2, 10)
	test.That(t, err, test.ShouldBeNil)
	out, err := n.Whiten([]float64{0.5, -0.25})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldResemble, []float64{5.0, -2.5})

	_, err = n.Whiten([]float64{1})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConstrainedWeightsAreCopies(t *testing.T) {
	n, err := NewConstrained(1, 7)
	test.That(t, err, test.ShouldBeNil)
	w := n.Weights()
	w[0] = 0
	test.That(t, n.Weights(), test.ShouldResemble, []float64{7.0})
}
