// Package godual provides forward-mode automatic differentiation for Go.
//
// Design goals:
//   - One value type, Dual, carrying a primal value and its first derivative
//   - Exact derivatives by the chain rule, no symbolic or finite differences
//   - Pure value semantics: every operation returns a new Dual
//   - IEEE-754 behaviour at domain edges: NaN and ±Inf propagate, nothing panics
//   - AI/LLM friendly: JSON expression trees and MCP-ready tool APIs
//
// A computation differentiates with respect to exactly one variable. Seed it
// with Variable and wrap every other literal with Constant (or use the *F
// helpers, which treat a float64 as a constant):
//
//	x := godual.Variable(5)
//	y := x.Pow(2).Cos()
//	y.Value()      // cos(25)
//	y.Derivative() // -sin(25) * 10
package godual

import (
	"fmt"
	"math"
)

// ============================================================
// Dual — value plus first derivative
// ============================================================

// Dual is a dual number value + derivative·ε with ε² = 0.
//
// The zero value is the constant 0. Dual values are immutable and safe to
// share between goroutines.
//
// Only one independent variable is supported per computation. Combining two
// Variable-seeded Duals adds their seeds together; what the resulting
// derivative means is up to the caller.
type Dual struct {
	value      float64
	derivative float64
}

// Variable seeds the differentiation variable: d(x)/dx = 1.
func Variable(v float64) Dual { return Dual{value: v, derivative: 1} }

// Constant wraps a literal that does not depend on the variable.
func Constant(c float64) Dual { return Dual{value: c} }

func (d Dual) Value() float64      { return d.value }
func (d Dual) Derivative() float64 { return d.derivative }

// Equal compares both components exactly. NaN is never equal to anything.
func (d Dual) Equal(o Dual) bool { return d.value == o.value && d.derivative == o.derivative }

// IsNaN reports whether either component is NaN.
func (d Dual) IsNaN() bool { return math.IsNaN(d.value) || math.IsNaN(d.derivative) }

// IsInf reports whether either component is infinite.
func (d Dual) IsInf() bool { return math.IsInf(d.value, 0) || math.IsInf(d.derivative, 0) }

func (d Dual) String() string {
	sign := "+"
	dv := d.derivative
	if math.Signbit(dv) && !math.IsNaN(dv) {
		sign = "-"
		dv = -dv
	}
	return fmt.Sprintf("%v %s %vε", d.value, sign, dv)
}

// ============================================================
// Arithmetic
// ============================================================

// Add applies the sum rule.
func (d Dual) Add(o Dual) Dual {
	return Dual{value: d.value + o.value, derivative: d.derivative + o.derivative}
}

// Sub applies the difference rule.
func (d Dual) Sub(o Dual) Dual {
	return Dual{value: d.value - o.value, derivative: d.derivative - o.derivative}
}

// Mul applies the product rule.
func (d Dual) Mul(o Dual) Dual {
	return Dual{
		value:      d.value * o.value,
		derivative: d.derivative*o.value + d.value*o.derivative,
	}
}

// Div applies the quotient rule. Division by zero follows IEEE-754.
func (d Dual) Div(o Dual) Dual {
	return Dual{
		value:      d.value / o.value,
		derivative: (d.derivative*o.value - d.value*o.derivative) / (o.value * o.value),
	}
}

func (d Dual) Neg() Dual { return Dual{value: -d.value, derivative: -d.derivative} }

// The F variants combine a Dual with a plain float64 constant. Each one goes
// through Constant so the result is bit-identical to the Dual form.

func (d Dual) AddF(c float64) Dual { return d.Add(Constant(c)) }
func (d Dual) SubF(c float64) Dual { return d.Sub(Constant(c)) }
func (d Dual) MulF(c float64) Dual { return d.Mul(Constant(c)) }
func (d Dual) DivF(c float64) Dual { return d.Div(Constant(c)) }

// RSubF computes c - d.
func (d Dual) RSubF(c float64) Dual { return Constant(c).Sub(d) }

// RDivF computes c / d.
func (d Dual) RDivF(c float64) Dual { return Constant(c).Div(d) }

// ============================================================
// Powers
// ============================================================

// Pow raises d to a constant real exponent: n·x^(n-1)·dx.
// A zero base with a non-positive exponent yields NaN in both components.
func (d Dual) Pow(n float64) Dual {
	if d.value == 0 && n <= 0 {
		return Dual{value: math.NaN(), derivative: math.NaN()}
	}
	return Dual{
		value:      math.Pow(d.value, n),
		derivative: n * math.Pow(d.value, n-1) * d.derivative,
	}
}

// PowD raises d to a Dual exponent e:
// d(x^y) = y·x^(y-1)·dx + x^y·ln(x)·dy.
// A constant exponent reduces to Pow.
func (d Dual) PowD(e Dual) Dual {
	if e.derivative == 0 {
		return d.Pow(e.value)
	}
	p := math.Pow(d.value, e.value)
	return Dual{
		value:      p,
		derivative: e.value*math.Pow(d.value, e.value-1)*d.derivative + p*math.Log(d.value)*e.derivative,
	}
}

// ExpBase raises a constant base to a Dual power: ln(b)·b^x·dx.
func ExpBase(base float64, x Dual) Dual {
	p := math.Pow(base, x.value)
	return Dual{value: p, derivative: math.Log(base) * p * x.derivative}
}

func (d Dual) Sqrt() Dual {
	s := math.Sqrt(d.value)
	return Dual{value: s, derivative: d.derivative / (2 * s)}
}

// ============================================================
// Exponentials and logarithms
// ============================================================

func (d Dual) Exp() Dual {
	e := math.Exp(d.value)
	return Dual{value: e, derivative: e * d.derivative}
}

// Ln is the natural logarithm. Non-positive input yields NaN.
func (d Dual) Ln() Dual {
	if d.value <= 0 {
		return Dual{value: math.NaN(), derivative: math.NaN()}
	}
	return Dual{value: math.Log(d.value), derivative: d.derivative / d.value}
}

// Log is the logarithm in the given base.
func (d Dual) Log(base float64) Dual {
	if d.value <= 0 {
		return Dual{value: math.NaN(), derivative: math.NaN()}
	}
	lb := math.Log(base)
	return Dual{value: math.Log(d.value) / lb, derivative: d.derivative / (d.value * lb)}
}

// ============================================================
// Trigonometry
// ============================================================

func (d Dual) Sin() Dual {
	return Dual{value: math.Sin(d.value), derivative: math.Cos(d.value) * d.derivative}
}

func (d Dual) Cos() Dual {
	return Dual{value: math.Cos(d.value), derivative: -math.Sin(d.value) * d.derivative}
}

func (d Dual) Tan() Dual {
	c := math.Cos(d.value)
	return Dual{value: math.Tan(d.value), derivative: d.derivative / (c * c)}
}

func (d Dual) Asin() Dual {
	return Dual{
		value:      math.Asin(d.value),
		derivative: d.derivative / math.Sqrt(1-d.value*d.value),
	}
}

func (d Dual) Acos() Dual {
	return Dual{
		value:      math.Acos(d.value),
		derivative: -d.derivative / math.Sqrt(1-d.value*d.value),
	}
}

func (d Dual) Atan() Dual {
	return Dual{
		value:      math.Atan(d.value),
		derivative: d.derivative / (1 + d.value*d.value),
	}
}
