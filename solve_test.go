package godual_test

import (
	"errors"
	"math"
	"testing"

	"github.com/njchilds90/godual"
)

// ============================================================
// Derive / Sample / TangentLine
// ============================================================

func TestDerive(t *testing.T) {
	v, d := godual.Derive(func(x godual.Dual) godual.Dual { return x.Pow(3) }, 2)
	if v != 8 || d != 12 {
		t.Errorf("want (8, 12), got (%v, %v)", v, d)
	}
}

func TestSample(t *testing.T) {
	square := func(x godual.Dual) godual.Dual { return x.Mul(x) }
	pts := godual.Sample(square, []float64{-1, 0, 3})
	want := []godual.Point{{X: -1, Value: 1, Derivative: -2}, {X: 0, Value: 0, Derivative: 0}, {X: 3, Value: 9, Derivative: 6}}
	if len(pts) != len(want) {
		t.Fatalf("want %d points, got %d", len(want), len(pts))
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Errorf("point %d: want %+v, got %+v", i, want[i], pts[i])
		}
	}
}

func TestTangentLine(t *testing.T) {
	// x^2 at 3: y = 6t - 9
	slope, intercept := godual.TangentLine(func(x godual.Dual) godual.Dual { return x.Pow(2) }, 3)
	if slope != 6 || intercept != -9 {
		t.Errorf("want (6, -9), got (%v, %v)", slope, intercept)
	}
}

// ============================================================
// Newton
// ============================================================

func TestNewtonRoot_Sqrt2(t *testing.T) {
	f := func(x godual.Dual) godual.Dual { return x.Mul(x).SubF(2) }
	root, iters, err := godual.NewtonRoot(f, 1, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(root-math.Sqrt2) > 1e-9 {
		t.Errorf("want %v, got %v", math.Sqrt2, root)
	}
	if iters == 0 || iters > 10 {
		t.Errorf("unexpected iteration count %d", iters)
	}
}

func TestNewtonRoot_Cosine(t *testing.T) {
	// cos(x) = x
	f := func(x godual.Dual) godual.Dual { return x.Cos().Sub(x) }
	root, _, err := godual.NewtonRoot(f, 1, 1e-12, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(math.Cos(root)-root) > 1e-12 {
		t.Errorf("cos(%v) != %v", root, root)
	}
}

func TestNewtonRoot_ZeroDerivative(t *testing.T) {
	f := func(x godual.Dual) godual.Dual { return x.Mul(x).AddF(1) }
	_, _, err := godual.NewtonRoot(f, 0, 0, 0)
	if !errors.Is(err, godual.ErrZeroDerivative) {
		t.Errorf("want ErrZeroDerivative, got %v", err)
	}
}

func TestNewtonRoot_NotConverged(t *testing.T) {
	f := func(x godual.Dual) godual.Dual { return x.Mul(x).AddF(1) }
	_, iters, err := godual.NewtonRoot(f, 0.5, 0, 5)
	if !errors.Is(err, godual.ErrNotConverged) {
		t.Errorf("want ErrNotConverged, got %v", err)
	}
	if iters != 5 {
		t.Errorf("want 5 iterations, got %d", iters)
	}
}

func TestNewtonRoot_NaN(t *testing.T) {
	f := func(x godual.Dual) godual.Dual { return x.Ln() }
	_, _, err := godual.NewtonRoot(f, -1, 0, 0)
	if !errors.Is(err, godual.ErrNaN) {
		t.Errorf("want ErrNaN, got %v", err)
	}
}

func TestFindRoots_Quadratic(t *testing.T) {
	f := func(x godual.Dual) godual.Dual { return x.Mul(x).SubF(4) }
	roots := godual.FindRoots(f, 10, 0, 0)
	if len(roots) != 2 {
		t.Fatalf("want 2 roots, got %v", roots)
	}
	if math.Abs(roots[0]+2) > 1e-9 || math.Abs(roots[1]-2) > 1e-9 {
		t.Errorf("want [-2 2], got %v", roots)
	}
}

func TestFindRoots_None(t *testing.T) {
	f := func(x godual.Dual) godual.Dual { return x.Mul(x).AddF(1) }
	if roots := godual.FindRoots(f, 5, 0, 20); len(roots) != 0 {
		t.Errorf("want no roots, got %v", roots)
	}
}
