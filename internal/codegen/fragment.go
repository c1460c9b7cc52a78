package codegen

import "strings"

// Power is the binding power of a value fragment. Higher binds tighter.
type Power int

const (
	PowerOr             Power = 20
	PowerAnd            Power = 30
	PowerEquality       Power = 40
	PowerRelational     Power = 50
	PowerAdditive       Power = 60
	PowerMultiplicative Power = 70
	PowerUnary          Power = 80
	PowerCall           Power = 90
	PowerAtomic         Power = 100
)

// Fragment is the output of one handler: either a statement fragment (lines
// that each end in their own terminator) or a value fragment (an expression
// with a binding power).
type Fragment struct {
	Lines []string
	Expr  string
	Power Power

	statement bool
}

// Stmt builds a statement fragment. Nested bodies are passed pre-indented.
func Stmt(lines ...string) Fragment {
	return Fragment{Lines: lines, statement: true}
}

// Value builds a value fragment.
func Value(expr string, p Power) Fragment {
	return Fragment{Expr: expr, Power: p}
}

// Atom builds an atomic value fragment.
func Atom(expr string) Fragment {
	return Value(expr, PowerAtomic)
}

// IsStatement reports whether f is a statement fragment.
func (f Fragment) IsStatement() bool {
	return f.statement
}

// Operand renders f for use inside a larger expression. Anything that binds
// looser than a call is parenthesized.
func (f Fragment) Operand() string {
	if f.Power < PowerCall {
		return "(" + f.Expr + ")"
	}
	return f.Expr
}

// Paren wraps f in parentheses; the result is atomic.
func Paren(f Fragment) Fragment {
	return Atom("(" + f.Expr + ")")
}

// Binary joins two operands with an infix operator.
func Binary(a Fragment, op string, b Fragment, p Power) Fragment {
	return Value(a.Operand()+" "+op+" "+b.Operand(), p)
}

// Unary applies a prefix operator.
func Unary(op string, a Fragment) Fragment {
	return Value(op+a.Operand(), PowerUnary)
}

// Indent shifts lines one level (two spaces). Empty lines stay empty.
func Indent(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if l != "" {
			out[i] = "  " + l
		}
	}
	return out
}

// markerText keeps names from breaking out of the comment they are
// reported in.
func markerText(s string) string {
	s = strings.ReplaceAll(s, "*/", "* /")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
