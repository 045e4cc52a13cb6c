package godual

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Expression trees
// ============================================================

// Node is a parsed expression tree that can be evaluated on Duals.
type Node interface {
	Eval(env Env) (Dual, error)
	String() string
	collectSymbols(out map[string]struct{})
}

// Env binds symbol names to Dual values.
type Env map[string]Dual

var ErrUnboundSymbol = errors.New("godual: unbound symbol")

type numNode struct {
	v    float64
	text string
}

type symNode struct{ name string }

type addNode struct{ terms []Node }

type mulNode struct{ factors []Node }

type subNode struct{ left, right Node }

type divNode struct{ num, den Node }

type powNode struct{ base, exp Node }

type logNode struct {
	base float64
	arg  Node
}

type funcNode struct {
	name string
	arg  Node
}

var unaryFuncs = map[string]func(Dual) Dual{
	"sin":  Dual.Sin,
	"cos":  Dual.Cos,
	"tan":  Dual.Tan,
	"exp":  Dual.Exp,
	"ln":   Dual.Ln,
	"sqrt": Dual.Sqrt,
	"asin": Dual.Asin,
	"acos": Dual.Acos,
	"atan": Dual.Atan,
	"neg":  Dual.Neg,
}

func (n *numNode) Eval(Env) (Dual, error)             { return Constant(n.v), nil }
func (n *numNode) String() string                     { return n.text }
func (n *numNode) collectSymbols(map[string]struct{}) {}

func (s *symNode) Eval(env Env) (Dual, error) {
	d, ok := env[s.name]
	if !ok {
		return Dual{}, fmt.Errorf("%s: %w", s.name, ErrUnboundSymbol)
	}
	return d, nil
}
func (s *symNode) String() string                         { return s.name }
func (s *symNode) collectSymbols(out map[string]struct{}) { out[s.name] = struct{}{} }

func (a *addNode) Eval(env Env) (Dual, error) {
	sum := Constant(0)
	for _, t := range a.terms {
		d, err := t.Eval(env)
		if err != nil {
			return Dual{}, err
		}
		sum = sum.Add(d)
	}
	return sum, nil
}
func (a *addNode) String() string { return joinNodes(a.terms, " + ") }
func (a *addNode) collectSymbols(out map[string]struct{}) {
	for _, t := range a.terms {
		t.collectSymbols(out)
	}
}

func (m *mulNode) Eval(env Env) (Dual, error) {
	prod := Constant(1)
	for _, f := range m.factors {
		d, err := f.Eval(env)
		if err != nil {
			return Dual{}, err
		}
		prod = prod.Mul(d)
	}
	return prod, nil
}
func (m *mulNode) String() string { return joinNodes(m.factors, "*") }
func (m *mulNode) collectSymbols(out map[string]struct{}) {
	for _, f := range m.factors {
		f.collectSymbols(out)
	}
}

func (s *subNode) Eval(env Env) (Dual, error) {
	l, r, err := evalPair(env, s.left, s.right)
	if err != nil {
		return Dual{}, err
	}
	return l.Sub(r), nil
}
func (s *subNode) String() string { return "(" + s.left.String() + " - " + s.right.String() + ")" }
func (s *subNode) collectSymbols(out map[string]struct{}) {
	s.left.collectSymbols(out)
	s.right.collectSymbols(out)
}

func (q *divNode) Eval(env Env) (Dual, error) {
	n, d, err := evalPair(env, q.num, q.den)
	if err != nil {
		return Dual{}, err
	}
	return n.Div(d), nil
}
func (q *divNode) String() string { return "(" + q.num.String() + ")/(" + q.den.String() + ")" }
func (q *divNode) collectSymbols(out map[string]struct{}) {
	q.num.collectSymbols(out)
	q.den.collectSymbols(out)
}

func (p *powNode) Eval(env Env) (Dual, error) {
	b, e, err := evalPair(env, p.base, p.exp)
	if err != nil {
		return Dual{}, err
	}
	return b.PowD(e), nil
}
func (p *powNode) String() string { return "(" + p.base.String() + ")^(" + p.exp.String() + ")" }
func (p *powNode) collectSymbols(out map[string]struct{}) {
	p.base.collectSymbols(out)
	p.exp.collectSymbols(out)
}

func (l *logNode) Eval(env Env) (Dual, error) {
	d, err := l.arg.Eval(env)
	if err != nil {
		return Dual{}, err
	}
	return d.Log(l.base), nil
}
func (l *logNode) String() string {
	return fmt.Sprintf("log_%v(%s)", l.base, l.arg.String())
}
func (l *logNode) collectSymbols(out map[string]struct{}) { l.arg.collectSymbols(out) }

func (f *funcNode) Eval(env Env) (Dual, error) {
	d, err := f.arg.Eval(env)
	if err != nil {
		return Dual{}, err
	}
	return unaryFuncs[f.name](d), nil
}
func (f *funcNode) String() string                         { return f.name + "(" + f.arg.String() + ")" }
func (f *funcNode) collectSymbols(out map[string]struct{}) { f.arg.collectSymbols(out) }

func evalPair(env Env, a, b Node) (Dual, Dual, error) {
	x, err := a.Eval(env)
	if err != nil {
		return Dual{}, Dual{}, err
	}
	y, err := b.Eval(env)
	if err != nil {
		return Dual{}, Dual{}, err
	}
	return x, y, nil
}

func joinNodes(nodes []Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// FreeSymbols returns the sorted symbol names used by n.
func FreeSymbols(n Node) []string {
	set := map[string]struct{}{}
	n.collectSymbols(set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compile turns n into a Func of varName. Every other symbol must be bound
// in consts, where it is treated as a constant.
func Compile(n Node, varName string, consts map[string]float64) (Func, error) {
	for _, name := range FreeSymbols(n) {
		if name == varName {
			continue
		}
		if _, ok := consts[name]; !ok {
			return nil, fmt.Errorf("%s: %w", name, ErrUnboundSymbol)
		}
	}
	base := make(Env, len(consts)+1)
	for name, v := range consts {
		base[name] = Constant(v)
	}
	return func(x Dual) Dual {
		env := make(Env, len(base)+1)
		for k, v := range base {
			env[k] = v
		}
		env[varName] = x
		// Symbols were checked above, Eval cannot fail.
		d, _ := n.Eval(env)
		return d
	}, nil
}

// ============================================================
// JSON decoding
// ============================================================

// ParseExpr decodes a JSON expression tree as produced by encoding/json
// into map[string]interface{}.
func ParseExpr(data map[string]interface{}) (Node, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subExpr := func(field string) (Node, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		n, err := ParseExpr(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return n, nil
	}

	subExprArray := func(field string) ([]Node, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]Node, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			n, err := ParseExpr(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = n
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		v, text, err := parseNumber(data["value"])
		if err != nil {
			return nil, fmt.Errorf("num: %w", err)
		}
		return &numNode{v: v, text: text}, nil

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return &symNode{name: name}, nil

	case "add":
		terms, err := subExprArray("terms")
		if err != nil {
			return nil, err
		}
		return &addNode{terms: terms}, nil

	case "mul":
		factors, err := subExprArray("factors")
		if err != nil {
			return nil, err
		}
		return &mulNode{factors: factors}, nil

	case "sub":
		l, err := subExpr("left")
		if err != nil {
			return nil, err
		}
		r, err := subExpr("right")
		if err != nil {
			return nil, err
		}
		return &subNode{left: l, right: r}, nil

	case "div":
		n, err := subExpr("num")
		if err != nil {
			return nil, err
		}
		d, err := subExpr("den")
		if err != nil {
			return nil, err
		}
		return &divNode{num: n, den: d}, nil

	case "pow":
		b, err := subExpr("base")
		if err != nil {
			return nil, err
		}
		e, err := subExpr("exp")
		if err != nil {
			return nil, err
		}
		return &powNode{base: b, exp: e}, nil

	case "log":
		base, _, err := parseNumber(data["base"])
		if err != nil {
			return nil, fmt.Errorf("log: base: %w", err)
		}
		arg, err := subExpr("arg")
		if err != nil {
			return nil, err
		}
		return &logNode{base: base, arg: arg}, nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		if _, ok := unaryFuncs[name]; !ok {
			return nil, fmt.Errorf("func: unknown function %q", name)
		}
		arg, err := subExpr("arg")
		if err != nil {
			return nil, err
		}
		return &funcNode{name: name, arg: arg}, nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

// parseNumber accepts a JSON number or a string holding an integer, a
// decimal, or a fraction such as "1/3".
func parseNumber(v interface{}) (float64, string, error) {
	switch n := v.(type) {
	case float64:
		return n, fmt.Sprint(n), nil
	case string:
		if n == "" {
			return 0, "", fmt.Errorf("number must be a non-empty string")
		}
		r, ok := new(big.Rat).SetString(n)
		if !ok {
			return 0, "", fmt.Errorf("invalid number: %s", n)
		}
		f, _ := r.Float64()
		return f, n, nil
	case nil:
		return 0, "", fmt.Errorf("missing number")
	}
	return 0, "", fmt.Errorf("number must be a string or number, got %T", v)
}
