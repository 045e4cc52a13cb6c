package godual

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ============================================================
// Functions of one variable
// ============================================================

// Func is a scalar function written in terms of Dual operations.
type Func func(x Dual) Dual

// Point is one row of a value/derivative table.
type Point struct {
	X          float64 `json:"x"`
	Value      float64 `json:"value"`
	Derivative float64 `json:"derivative"`
}

// Derive evaluates f and f' at x.
func Derive(f Func, x float64) (value, derivative float64) {
	y := f(Variable(x))
	return y.Value(), y.Derivative()
}

// Sample evaluates f and f' at every x in xs.
func Sample(f Func, xs []float64) []Point {
	out := make([]Point, len(xs))
	for i, x := range xs {
		v, d := Derive(f, x)
		out[i] = Point{X: x, Value: v, Derivative: d}
	}
	return out
}

// TangentLine returns the line y = slope·t + intercept touching f at x.
func TangentLine(f Func, x float64) (slope, intercept float64) {
	v, d := Derive(f, x)
	return d, v - d*x
}

// ============================================================
// Newton–Raphson
// ============================================================

var (
	ErrZeroDerivative = errors.New("godual: derivative vanished")
	ErrNotConverged   = errors.New("godual: did not converge")
	ErrNaN            = errors.New("godual: non-finite value")
)

const (
	defaultTol     = 1e-10
	defaultMaxIter = 100
	defaultRange   = 100
	minSlope       = 1e-15
)

// NewtonRoot runs Newton's method from x0 until |f(x)| < tol.
// Non-positive tol or maxIter select the defaults (1e-10, 100).
func NewtonRoot(f Func, x0, tol float64, maxIter int) (root float64, iters int, err error) {
	if tol <= 0 {
		tol = defaultTol
	}
	if maxIter <= 0 {
		maxIter = defaultMaxIter
	}
	x := x0
	for iters = 0; iters < maxIter; iters++ {
		fx, dfx := Derive(f, x)
		if math.IsNaN(fx) || math.IsInf(fx, 0) {
			return x, iters, fmt.Errorf("f(%g): %w", x, ErrNaN)
		}
		if math.Abs(fx) < tol {
			return x, iters, nil
		}
		if math.IsNaN(dfx) || math.IsInf(dfx, 0) {
			return x, iters, fmt.Errorf("f'(%g): %w", x, ErrNaN)
		}
		if math.Abs(dfx) < minSlope {
			return x, iters, fmt.Errorf("at x=%g: %w", x, ErrZeroDerivative)
		}
		x -= fx / dfx
	}
	return x, iters, fmt.Errorf("after %d iterations: %w", maxIter, ErrNotConverged)
}

// FindRoots starts Newton's method from 201 evenly spaced points across
// [-searchRange, searchRange] and returns the distinct roots found, sorted.
func FindRoots(f Func, searchRange, tol float64, maxIter int) []float64 {
	if searchRange <= 0 {
		searchRange = defaultRange
	}
	if tol <= 0 {
		tol = defaultTol
	}
	if maxIter <= 0 {
		maxIter = defaultMaxIter
	}
	var roots []float64
	for i := 0; i <= 200; i++ {
		x0 := -searchRange + 2*searchRange*float64(i)/200
		r, _, err := NewtonRoot(f, x0, tol, maxIter)
		if err != nil || math.Abs(r) > searchRange*10 {
			continue
		}
		dup := false
		for _, seen := range roots {
			if math.Abs(seen-r) < tol*100 {
				dup = true
				break
			}
		}
		if !dup {
			roots = append(roots, r)
		}
	}
	sort.Float64s(roots)
	return roots
}
