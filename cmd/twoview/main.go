// Package main demonstrates the two-view estimation pipeline: synthetic
// correspondences are generated from a known fundamental matrix, the
// 8-point estimate is recovered from them, and the chart types are stepped
// with Retract/LocalCoordinates the way an optimizer would.
package main

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/estimation/factor"
	"go.viam.com/estimation/geometry"
)

var logger = golog.NewDevelopmentLogger("twoview")

// correspondencesFor samples n point pairs satisfying x2ᵀ·F·x1 = 0: for each
// left point the right point is picked on its epipolar line.
func correspondencesFor(f *mat.Dense, n int) ([]r2.Point, []r2.Point) {
	pts1 := make([]r2.Point, 0, n)
	pts2 := make([]r2.Point, 0, n)
	for i := 0; len(pts1) < n; i++ {
		x1 := r2.Point{X: math.Cos(float64(i)) * 3, Y: math.Sin(float64(i)*0.7) * 2}
		// Epipolar line of x1 in the right image.
		l := []float64{
			f.At(0, 0)*x1.X + f.At(0, 1)*x1.Y + f.At(0, 2),
			f.At(1, 0)*x1.X + f.At(1, 1)*x1.Y + f.At(1, 2),
			f.At(2, 0)*x1.X + f.At(2, 1)*x1.Y + f.At(2, 2),
		}
		if math.Abs(l[1]) < 1e-9 {
			continue
		}
		x := float64(i%7) - 3
		pts1 = append(pts1, x1)
		pts2 = append(pts2, r2.Point{X: x, Y: -(l[0]*x + l[2]) / l[1]})
	}
	return pts1, pts2
}

func main() {
	// The 8-point algorithm enforces rank 2, so the ground truth is built
	// from an essential matrix rather than the full-rank general form.
	dir, err := geometry.NewUnit3(r3.Vector{X: 1, Y: 0.5, Z: 0.2})
	if err != nil {
		logger.Fatalw("direction construction failed", "error", err)
	}
	truth := geometry.NewEssentialMatrix(geometry.Rot3Exp(r3.Vector{X: 0.1, Y: -0.2, Z: 0.05}), dir)
	fTrue := truth.Matrix()
	logger.Infow("ground truth", "E", mat.Formatted(fTrue))

	pts1, pts2 := correspondencesFor(fTrue, 16)
	fEst, err := geometry.EstimateFundamentalMatrix(pts1, pts2)
	if err != nil {
		logger.Fatalw("eight-point estimation failed", "error", err)
	}
	residuals, err := geometry.EpipolarResiduals(fEst, pts1, pts2)
	if err != nil {
		logger.Fatalw("residual evaluation failed", "error", err)
	}
	worst := 0.0
	for _, r := range residuals {
		worst = math.Max(worst, math.Abs(r))
	}
	logger.Infow("eight-point estimate", "F", mat.Formatted(fEst), "worst residual", worst)

	// One optimizer-style step on the general chart and its inverse.
	general := geometry.NewFundamentalMatrix(
		geometry.Rot3Exp(r3.Vector{X: 0.1, Y: -0.2, Z: 0.05}),
		0.8,
		geometry.Rot3Exp(r3.Vector{X: -0.05, Y: 0.1, Z: 0.2}),
	)
	delta := []float64{0.01, -0.02, 0.03, 0.1, -0.01, 0.02, 0.01}
	stepped, err := general.Retract(delta)
	if err != nil {
		logger.Fatalw("retract failed", "error", err)
	}
	logger.Infow("chart round trip", "delta", delta, "recovered", general.LocalCoordinates(stepped))

	// A scalar motion constraint with optional Jacobians.
	constraint := factor.NewMotionConstraint(1, 2, 3, 2.0)
	var h1, h2, h3 mat.Dense
	e := constraint.EvaluateError(3.0, 10.0, 3.5, &h1, &h2, &h3)
	logger.Infow("motion constraint",
		"residual", e.AtVec(0),
		"dx1", h1.At(0, 0), "dx2", h2.At(0, 0), "dv", h3.At(0, 0),
		"weights", constraint.Noise().Weights(),
	)
}
