// Package factor provides the residual/Jacobian contract constraints expose
// to an iterative least-squares solver, the constrained noise model used to
// approximate hard equalities, and a scalar motion constraint tying two
// positions and a velocity together over a fixed time step.
package factor

// Key identifies a variable owned by the surrounding graph. Factors hold
// keys only; the graph supplies current values at evaluation time.
type Key uint64

// Factor is the contract every graph edge satisfies: the keys it connects,
// the dimension of its residual, and an independent deep copy usable in a
// separate graph. Residual evaluation itself is typed per factor, so the
// solver calls it through the concrete type.
type Factor interface {
	Keys() []Key
	Dim() int
	Clone() Factor
}
