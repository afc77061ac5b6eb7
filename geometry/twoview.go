package geometry

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// EstimateFundamentalMatrix computes a fundamental matrix from at least 8
// point correspondences with the normalized 8-point algorithm: Hartley
// normalization of both point sets, a homogeneous least-squares solve, and
// rank-2 enforcement, all via SVD. The result is scaled so its bottom-right
// entry is 1, and feeds chart types with an initial value for refinement.
func EstimateFundamentalMatrix(pts1, pts2 []r2.Point) (*mat.Dense, error) {
	if len(pts1) != len(pts2) {
		return nil, errors.New("point sets must have the same number of correspondences")
	}
	if len(pts1) < 8 {
		return nil, errors.New("need at least 8 correspondences")
	}

	points1, t1 := normalizePoints(pts1)
	points2, t2 := normalizePoints(pts2)

	m := mat.NewDense(len(points1), 9, nil)
	for i := range points1 {
		v1 := points1[i]
		v2 := points2[i]
		m.SetRow(i, []float64{
			v2.X * v1.X, v2.X * v1.Y, v2.X,
			v2.Y * v1.X, v2.Y * v1.Y, v2.Y,
			v1.X, v1.Y, 1,
		})
	}

	// The solution is the right singular vector of the smallest singular
	// value, reshaped row-major into 3x3.
	mats, err := decomposeSVD(m)
	if err != nil {
		return nil, err
	}
	lastCol := mats.v.ColView(8)
	fData := make([]float64, 9)
	for i := range fData {
		fData[i] = lastCol.AtVec(i)
	}
	f := mat.NewDense(3, 3, fData)

	// Enforce rank 2, then undo the normalization: F = T2ᵀ·F̂·T1.
	fMats, err := decomposeSVD(f)
	if err != nil {
		return nil, err
	}
	s := fMats.s
	s.Set(2, 2, 0)
	f.Mul(fMats.u, s)
	f.Mul(f, fMats.vt)
	f.Mul(denseTranspose(t2), f)
	f.Mul(f, t1)

	if math.Abs(f.At(2, 2)) < smallAngle {
		return nil, errors.New("estimated fundamental matrix is degenerate")
	}
	f.Scale(1/f.At(2, 2), f)
	return f, nil
}

// EssentialFromFundamental lifts a fundamental matrix to an essential matrix
// using the calibration matrices of the two cameras, K2ᵀ·F·K1, and projects
// it onto the essential manifold by forcing the singular values to (1, 1, 0).
func EssentialFromFundamental(k1, k2, f *mat.Dense) (*mat.Dense, error) {
	ess := mat.NewDense(3, 3, nil)
	ess.Mul(denseTranspose(k2), f)
	ess.Mul(ess, k1)

	mats, err := decomposeSVD(ess)
	if err != nil {
		return nil, err
	}
	s := identity(3)
	s.Set(2, 2, 0)
	ess.Mul(mats.u, s)
	ess.Mul(ess, mats.vt)
	return ess, nil
}

// EpipolarResiduals returns x2ᵢᵀ·F·x1ᵢ for each correspondence, the algebraic
// error a two-view factor would minimize.
func EpipolarResiduals(f *mat.Dense, pts1, pts2 []r2.Point) ([]float64, error) {
	if len(pts1) != len(pts2) {
		return nil, errors.New("point sets must have the same number of correspondences")
	}
	out := make([]float64, len(pts1))
	for i := range pts1 {
		x1 := []float64{pts1[i].X, pts1[i].Y, 1}
		x2 := []float64{pts2[i].X, pts2[i].Y, 1}
		var v float64
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				v += x2[r] * f.At(r, c) * x1[c]
			}
		}
		out[i] = v
	}
	return out, nil
}

// normalizePoints centers the points on their centroid and scales them so
// the mean distance from it is √2, per Multiple View Geometry, Alg 11.1.
// It returns the transformed points and the 3x3 normalizing transform.
func normalizePoints(pts []r2.Point) ([]r2.Point, *mat.Dense) {
	n := float64(len(pts))
	mu := r2.Point{}
	for _, pt := range pts {
		mu.X += pt.X
		mu.Y += pt.Y
	}
	mu = mu.Mul(1 / n)

	d := 0.0
	for _, pt := range pts {
		d += math.Hypot(pt.X-mu.X, pt.Y-mu.Y) / n
	}
	scale := math.Sqrt2 / d

	t := mat.NewDense(3, 3, []float64{
		scale, 0, -scale * mu.X,
		0, scale, -scale * mu.Y,
		0, 0, 1,
	})
	transformed := make([]r2.Point, len(pts))
	for i, pt := range pts {
		transformed[i] = r2.Point{X: scale * (pt.X - mu.X), Y: scale * (pt.Y - mu.Y)}
	}
	return transformed, t
}

func denseTranspose(m *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(cols, rows, nil)
	out.Copy(m.T())
	return out
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// svdMats holds the factors of a full SVD.
type svdMats struct {
	u  *mat.Dense
	v  *mat.Dense
	vt *mat.Dense
	s  *mat.Dense
}

// decomposeSVD performs a full SVD and returns U, V, Vᵀ and the rectangular
// singular-value matrix Σ with U·Σ·Vᵀ equal to the input.
func decomposeSVD(input *mat.Dense) (*svdMats, error) {
	var svd mat.SVD
	if ok := svd.Factorize(input, mat.SVDFull); !ok {
		return nil, errors.New("failed to factorize matrix")
	}

	u, v, vt := &mat.Dense{}, &mat.Dense{}, &mat.Dense{}
	svd.UTo(u)
	svd.VTo(v)
	vt.CloneFrom(v.T())

	values := svd.Values(nil)
	rows, cols := input.Dims()
	s := mat.NewDense(rows, cols, nil)
	for i, sv := range values {
		s.Set(i, i, sv)
	}
	return &svdMats{u: u, v: v, vt: vt, s: s}, nil
}
