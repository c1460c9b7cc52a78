package codegen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/registry"
	"github.com/roach88/blockc/internal/selections"
)

type operator struct {
	symbol string
	power  Power
}

// binaryOperators covers the VALUE-0/VALUE-1 operator kinds.
var binaryOperators = map[string]operator{
	"Add":                {"+", PowerAdditive},
	"Subtract":           {"-", PowerAdditive},
	"Multiply":           {"*", PowerMultiplicative},
	"Divide":             {"/", PowerMultiplicative},
	"Modulo":             {"%", PowerMultiplicative},
	"And":                {"&&", PowerAnd},
	"Or":                 {"||", PowerOr},
	"Equals":             {"===", PowerEquality},
	"NotEqualTo":         {"!==", PowerEquality},
	"LessThan":           {"<", PowerRelational},
	"LessThanOrEqual":    {"<=", PowerRelational},
	"GreaterThan":        {">", PowerRelational},
	"GreaterThanOrEqual": {">=", PowerRelational},
}

// opFieldOperators covers the OP-field operator kinds, keyed by OP value.
var opFieldOperators = map[string]operator{
	"ADD":      {"+", PowerAdditive},
	"MINUS":    {"-", PowerAdditive},
	"MULTIPLY": {"*", PowerMultiplicative},
	"DIVIDE":   {"/", PowerMultiplicative},
	"MODULO":   {"%", PowerMultiplicative},
	"EQ":       {"===", PowerEquality},
	"NEQ":      {"!==", PowerEquality},
	"LT":       {"<", PowerRelational},
	"LTE":      {"<=", PowerRelational},
	"GT":       {">", PowerRelational},
	"GTE":      {">=", PowerRelational},
	"AND":      {"&&", PowerAnd},
	"OR":       {"||", PowerOr},
}

func builtinHandlers() map[string]Handler {
	h := map[string]Handler{
		"Number":        numberLiteral,
		"math_number":   numberLiteral,
		"String":        stringLiteral,
		"text":          stringLiteral,
		"Boolean":       booleanLiteral,
		"logic_boolean": booleanLiteral,

		"RaiseToPower":    raiseToPower,
		"Not":             not("VALUE-0"),
		"logic_negate":    not("BOOL"),
		"math_arithmetic": opField,
		"logic_compare":   opField,
		"logic_operation": opField,

		"If":                  ifStatement,
		"controls_if":         ifChain,
		"While":               whileLoop,
		"controls_repeat_ext": repeatLoop,
		"ForVariable":         forVariable,
		"Break":               keyword("break;"),
		"Continue":            keyword("continue;"),
		"Return":              keyword("return;"),
		"Comment":             comment,

		"SetVariable":                   setVariable,
		"variables_set":                 setVariable,
		"variables_get":                 getVariable,
		registry.KindVariableReference:  getVariable,
		registry.KindCondition:          conditionValue,
		registry.KindSubroutineCall:     callSubroutine,
		registry.KindSubroutineArgument: subroutineArgument,
		registry.KindCollectionCall:     useCollection,

		registry.KindMod:        misplaced,
		registry.KindRule:       misplaced,
		registry.KindSubroutine: misplaced,
		registry.KindCollection: misplaced,
	}
	for kind, op := range binaryOperators {
		h[kind] = binary(op)
	}
	return h
}

func numberLiteral(c *Context, n *ir.Node) Fragment {
	switch v := n.Fields["NUM"].(type) {
	case ir.IRNumber:
		if _, err := ir.ParseIRNumber(string(v)); err == nil {
			return Atom(string(v))
		}
	case ir.IRString:
		if num, err := ir.ParseIRNumber(string(v)); err == nil {
			return Atom(string(num))
		}
	}
	return Atom("0")
}

func stringLiteral(c *Context, n *ir.Node) Fragment {
	return Atom(quote(n.FieldText("TEXT")))
}

func booleanLiteral(c *Context, n *ir.Node) Fragment {
	if strings.EqualFold(n.FieldText("BOOL"), "true") {
		return Atom("true")
	}
	return Atom("false")
}

func binary(op operator) Handler {
	return func(c *Context, n *ir.Node) Fragment {
		a := c.Input(n, "VALUE-0", "undefined")
		b := c.Input(n, "VALUE-1", "undefined")
		return Binary(a, op.symbol, b, op.power)
	}
}

func raiseToPower(c *Context, n *ir.Node) Fragment {
	args := []string{
		c.Input(n, "VALUE-0", "undefined").Expr,
		c.Input(n, "VALUE-1", "undefined").Expr,
	}
	return Value("Math.pow("+strings.Join(args, ", ")+")", PowerCall)
}

func not(input string) Handler {
	return func(c *Context, n *ir.Node) Fragment {
		return Unary("!", c.Input(n, input, "true"))
	}
}

func opField(c *Context, n *ir.Node) Fragment {
	code := strings.ToUpper(n.FieldText("OP"))
	a := c.Input(n, "A", "undefined")
	b := c.Input(n, "B", "undefined")
	if code == "POWER" {
		return Value("Math.pow("+a.Expr+", "+b.Expr+")", PowerCall)
	}
	op, ok := opFieldOperators[code]
	if !ok {
		return Atom(c.Marker("/* unknown operator: " + markerText(n.FieldText("OP")) + " */ undefined"))
	}
	return Binary(a, op.symbol, b, op.power)
}

func ifStatement(c *Context, n *ir.Node) Fragment {
	lines := []string{"if (" + c.Input(n, "CONDITION", "true").Expr + ") {"}
	lines = append(lines, c.Block(n, "DO")...)
	if !n.Slot("ELSE").Empty() {
		lines = append(lines, "} else {")
		lines = append(lines, c.Block(n, "ELSE")...)
	}
	return Stmt(append(lines, "}")...)
}

var branchInput = regexp.MustCompile(`^(IF|DO)(\d+)$`)

// ifChain renders IF0/DO0, IF1/DO1, ... ELSE as one if/else-if chain.
func ifChain(c *Context, n *ir.Node) Fragment {
	branches := -1
	for _, name := range n.InputNames() {
		if m := branchInput.FindStringSubmatch(name); m != nil {
			if i, err := strconv.Atoi(m[2]); err == nil && i > branches {
				branches = i
			}
		}
	}

	var lines []string
	for i := 0; i <= branches; i++ {
		cond := c.Input(n, fmt.Sprintf("IF%d", i), "true").Expr
		if i == 0 {
			lines = append(lines, "if ("+cond+") {")
		} else {
			lines = append(lines, "} else if ("+cond+") {")
		}
		lines = append(lines, c.Block(n, fmt.Sprintf("DO%d", i))...)
	}
	if !n.Slot("ELSE").Empty() {
		if branches < 0 {
			return Stmt(c.Body(n.Input("ELSE"))...)
		}
		lines = append(lines, "} else {")
		lines = append(lines, c.Block(n, "ELSE")...)
	}
	if branches < 0 {
		return Stmt()
	}
	return Stmt(append(lines, "}")...)
}

func whileLoop(c *Context, n *ir.Node) Fragment {
	lines := []string{"while (" + c.Input(n, "CONDITION", "true").Expr + ") {"}
	lines = append(lines, c.Block(n, "DO")...)
	return Stmt(append(lines, "}")...)
}

func repeatLoop(c *Context, n *ir.Node) Fragment {
	inner, i := c.loop()
	times := c.Input(n, "TIMES", "0")
	lines := []string{fmt.Sprintf("for (let %s = 0; %s < %s; %s++) {", i, i, times.Operand(), i)}
	lines = append(lines, inner.Block(n, "DO")...)
	return Stmt(append(lines, "}")...)
}

func forVariable(c *Context, n *ir.Node) Fragment {
	name, ok := c.variableIdent(n.Fields["VAR"])
	if !ok {
		return Stmt(c.Marker("// unknown variable"))
	}
	from := c.Input(n, "FROM", "0").Expr
	to := c.Input(n, "TO", "0").Operand()
	by := c.Input(n, "BY", "1").Expr
	lines := []string{fmt.Sprintf("for (%s = %s; %s <= %s; %s += %s) {", name, from, name, to, name, by)}
	lines = append(lines, c.Block(n, "DO")...)
	return Stmt(append(lines, "}")...)
}

func keyword(line string) Handler {
	return func(*Context, *ir.Node) Fragment {
		return Stmt(line)
	}
}

func comment(c *Context, n *ir.Node) Fragment {
	var lines []string
	for _, l := range strings.Split(n.FieldText("TEXT"), "\n") {
		lines = append(lines, strings.TrimRight("// "+l, " "))
	}
	return Stmt(lines...)
}

func setVariable(c *Context, n *ir.Node) Fragment {
	name, ok := c.variableIdent(n.Fields["VAR"])
	if !ok {
		return Stmt(c.Marker("// unknown variable"))
	}
	return Stmt(name + " = " + c.Input(n, "VALUE", "undefined").Expr + ";")
}

func getVariable(c *Context, n *ir.Node) Fragment {
	name, ok := c.variableIdent(n.Fields["VAR"])
	if !ok {
		return Atom(c.Marker("/* unknown variable */ undefined"))
	}
	return Atom(name)
}

// conditionValue lets a condition block stand wherever a value is expected.
func conditionValue(c *Context, n *ir.Node) Fragment {
	return c.Input(n, "CONDITION", "true")
}

func misplaced(c *Context, n *ir.Node) Fragment {
	return Stmt(c.Marker("// misplaced block: " + markerText(n.Type)))
}

// callHandler translates a registry-described runtime call.
func callHandler(def registry.Definition) Handler {
	return func(c *Context, n *ir.Node) Fragment {
		call := c.Runtime() + "." + def.Call + "(" + strings.Join(c.Args(n, def.ValueInputs), ", ") + ")"
		if def.Shape == registry.ShapeValue {
			if def.Await {
				return Value("await "+call, PowerUnary)
			}
			return Value(call, PowerCall)
		}
		if def.Await {
			call = "await " + call
		}
		return Stmt(call + ";")
	}
}

// enumHandler translates an enumeration kind to mod.<List>.<Value>, using
// the listed spelling when the selections are loaded.
func enumHandler(def registry.Definition) Handler {
	return func(c *Context, n *ir.Node) Fragment {
		field := "VALUE"
		if len(def.Fields) > 0 {
			field = def.Fields[0]
		}
		value := n.FieldText(field)
		if value == "" {
			return Atom(c.Marker("/* empty selection: " + def.Enum + " */ undefined"))
		}
		if lookup := c.gen.opts.Selections; lookup != nil {
			if values, err := lookup.Lookup(def.Enum); err == nil {
				if listed, ok := selections.Match(values, value); ok {
					value = listed
				}
			}
		}
		return Atom(c.Runtime() + "." + Identifier(def.Enum) + "." + Identifier(value))
	}
}
