package registry

// Internal names of the structural kinds.
const (
	KindMod                = "modBlock"
	KindRule               = "ruleBlock"
	KindCondition          = "conditionBlock"
	KindSubroutine         = "subroutineBlock"
	KindSubroutineCall     = "subroutineCallBlock"
	KindSubroutineArgument = "subroutineArgumentBlock"
	KindVariableReference  = "variableReferenceBlock"
	KindCollection         = "collectionBlock"
	KindCollectionCall     = "collectionCallBlock"
)

// Canonical interchange names of the structural kinds.
const (
	CanonicalMod               = "Mod"
	CanonicalRule              = "Rule"
	CanonicalCondition         = "Condition"
	CanonicalSubroutine        = "SubroutineDefinition"
	CanonicalSubroutineCall    = "CallSubroutine"
	CanonicalVariableReference = "VariableReference"
)

// Structural pairs an internal structural kind with its canonical name and
// fixed shape.
type Structural struct {
	Kind      string
	Canonical string
	Shape     Shape
}

// structural lists the kinds whose shape never comes from inference.
var structural = []Structural{
	{KindMod, CanonicalMod, ShapeTop},
	{KindRule, CanonicalRule, ShapeStatement},
	{KindCondition, CanonicalCondition, ShapeStatement},
	{KindSubroutine, CanonicalSubroutine, ShapeStatement},
	{KindSubroutineCall, CanonicalSubroutineCall, ShapeStatement},
	{KindVariableReference, CanonicalVariableReference, ShapeValue},
}

// StructuralKinds returns the structural kind table.
func StructuralKinds() []Structural {
	return append([]Structural(nil), structural...)
}

// StructuralShape returns the fixed shape of a structural kind given by
// either its internal or canonical name.
func StructuralShape(kind string) (Shape, bool) {
	for _, s := range structural {
		if kind == s.Kind || kind == s.Canonical {
			return s.Shape, true
		}
	}
	return "", false
}

// Builtins returns the built-in vocabulary.
func Builtins() []Definition {
	defs := []Definition{
		{Kind: KindMod, Shape: ShapeTop, StatementInputs: []string{"RULES"}},
		{Kind: KindRule, Shape: ShapeStatement,
			Fields:          []string{"RULE_NAME", "SCOPE_TYPE", "EVENT_TYPE"},
			ValueInputs:     []string{"CONDITIONS"},
			StatementInputs: []string{"ACTIONS"}},
		{Kind: KindCondition, Shape: ShapeStatement, ValueInputs: []string{"CONDITION"}},
		{Kind: KindSubroutine, Shape: ShapeStatement,
			Fields:          []string{"SUBROUTINE_NAME"},
			ValueInputs:     []string{"CONDITION"},
			StatementInputs: []string{"ACTIONS"}},
		{Kind: KindSubroutineCall, Shape: ShapeStatement, Fields: []string{"SUBROUTINE_NAME"}},
		{Kind: KindSubroutineArgument, Shape: ShapeValue, Fields: []string{"ARGUMENT_NAME"}},
		{Kind: KindVariableReference, Shape: ShapeValue, Fields: []string{"VAR"}},
		{Kind: KindCollection, Shape: ShapeTop, Fields: []string{"NAME"}, StatementInputs: []string{"STACK"}},
		{Kind: KindCollectionCall, Shape: ShapeStatement, Fields: []string{"NAME"}},

		{Kind: "Number", Shape: ShapeValue, Fields: []string{"NUM"}},
		{Kind: "math_number", Shape: ShapeValue, Fields: []string{"NUM"}},
		{Kind: "String", Shape: ShapeValue, Fields: []string{"TEXT"}},
		{Kind: "text", Shape: ShapeValue, Fields: []string{"TEXT"}},
		{Kind: "Boolean", Shape: ShapeValue, Fields: []string{"BOOL"}},
		{Kind: "logic_boolean", Shape: ShapeValue, Fields: []string{"BOOL"}},

		{Kind: "math_arithmetic", Shape: ShapeValue, Fields: []string{"OP"}, ValueInputs: []string{"A", "B"}},
		{Kind: "logic_compare", Shape: ShapeValue, Fields: []string{"OP"}, ValueInputs: []string{"A", "B"}},
		{Kind: "logic_operation", Shape: ShapeValue, Fields: []string{"OP"}, ValueInputs: []string{"A", "B"}},
		{Kind: "logic_negate", Shape: ShapeValue, ValueInputs: []string{"BOOL"}},
		{Kind: "Not", Shape: ShapeValue, ValueInputs: []string{"VALUE-0"}},

		{Kind: "If", Shape: ShapeStatement, ValueInputs: []string{"CONDITION"}, StatementInputs: []string{"DO", "ELSE"}},
		{Kind: "controls_if", Shape: ShapeStatement, ValueInputs: []string{"IF0"}, StatementInputs: []string{"DO0", "ELSE"}},
		{Kind: "While", Shape: ShapeStatement, ValueInputs: []string{"CONDITION"}, StatementInputs: []string{"DO"}},
		{Kind: "controls_repeat_ext", Shape: ShapeStatement, ValueInputs: []string{"TIMES"}, StatementInputs: []string{"DO"}},
		{Kind: "ForVariable", Shape: ShapeStatement, Fields: []string{"VAR"},
			ValueInputs: []string{"FROM", "TO", "BY"}, StatementInputs: []string{"DO"}},
		{Kind: "Break", Shape: ShapeStatement},
		{Kind: "Continue", Shape: ShapeStatement},
		{Kind: "Return", Shape: ShapeStatement},
		{Kind: "SetVariable", Shape: ShapeStatement, Fields: []string{"VAR"}, ValueInputs: []string{"VALUE"}},
		{Kind: "variables_set", Shape: ShapeStatement, Fields: []string{"VAR"}, ValueInputs: []string{"VALUE"}},
		{Kind: "Comment", Shape: ShapeStatement, Fields: []string{"TEXT"}},
	}

	for _, op := range BinaryOperators() {
		defs = append(defs, Definition{Kind: op, Shape: ShapeValue, ValueInputs: []string{"VALUE-0", "VALUE-1"}})
	}
	defs = append(defs, runtimeCalls...)
	defs = append(defs, enums...)

	for i := range defs {
		if defs[i].Label == "" {
			defs[i].Label = defs[i].Kind
		}
	}
	return defs
}

// BinaryOperators lists the two-operand operator kinds.
func BinaryOperators() []string {
	return []string{
		"Add", "Subtract", "Multiply", "Divide", "Modulo", "RaiseToPower",
		"And", "Or",
		"Equals", "NotEqualTo", "LessThan", "LessThanOrEqual", "GreaterThan", "GreaterThanOrEqual",
	}
}

// runtimeCalls maps call kinds onto runtime API functions of the same name.
var runtimeCalls = []Definition{
	{Kind: "Wait", Shape: ShapeStatement, Call: "Wait", Await: true, ValueInputs: []string{"SECONDS"}},
	{Kind: "WaitUntil", Shape: ShapeStatement, Call: "WaitUntil", Await: true, ValueInputs: []string{"CONDITION", "TIMEOUT"}},
	{Kind: "Teleport", Shape: ShapeStatement, Call: "Teleport", ValueInputs: []string{"TARGET", "POSITION"}},
	{Kind: "DealDamage", Shape: ShapeStatement, Call: "DealDamage", ValueInputs: []string{"TARGET", "AMOUNT"}},
	{Kind: "Heal", Shape: ShapeStatement, Call: "Heal", ValueInputs: []string{"TARGET", "AMOUNT"}},
	{Kind: "Kill", Shape: ShapeStatement, Call: "Kill", ValueInputs: []string{"TARGET"}},
	{Kind: "DisplayMessage", Shape: ShapeStatement, Call: "DisplayMessage", ValueInputs: []string{"MESSAGE", "TARGET"}},
	{Kind: "PlaySound", Shape: ShapeStatement, Call: "PlaySound", ValueInputs: []string{"SOUND", "POSITION"}},
	{Kind: "SpawnObject", Shape: ShapeStatement, Call: "SpawnObject", Await: true, ValueInputs: []string{"OBJECT", "POSITION"}},
	{Kind: "SetScore", Shape: ShapeStatement, Call: "SetScore", ValueInputs: []string{"TEAM", "SCORE"}},
	{Kind: "EndRound", Shape: ShapeStatement, Call: "EndRound", ValueInputs: []string{"TEAM"}},

	{Kind: "EventPlayer", Shape: ShapeValue, Call: "EventPlayer"},
	{Kind: "GetPosition", Shape: ShapeValue, Call: "GetPosition", ValueInputs: []string{"TARGET"}},
	{Kind: "GetHealth", Shape: ShapeValue, Call: "GetHealth", ValueInputs: []string{"TARGET"}},
	{Kind: "IsAlive", Shape: ShapeValue, Call: "IsAlive", ValueInputs: []string{"TARGET"}},
	{Kind: "CreateVector", Shape: ShapeValue, Call: "CreateVector", ValueInputs: []string{"X", "Y", "Z"}},
	{Kind: "DistanceBetween", Shape: ShapeValue, Call: "DistanceBetween", ValueInputs: []string{"A", "B"}},
	{Kind: "RandomInteger", Shape: ShapeValue, Call: "RandomInteger", ValueInputs: []string{"MIN", "MAX"}},
	{Kind: "GetScore", Shape: ShapeValue, Call: "GetScore", ValueInputs: []string{"TEAM"}},
	{Kind: "Message", Shape: ShapeValue, Call: "Message", ValueInputs: []string{"TEXT", "ARG0", "ARG1"}},
	{Kind: "ElapsedTime", Shape: ShapeValue, Call: "ElapsedTime"},
}

// enums maps enumeration kinds onto selection lists. The selected value is
// read from the kind's first field.
var enums = []Definition{
	{Kind: "Team", Shape: ShapeValue, Fields: []string{"VALUE"}, Enum: "Teams"},
	{Kind: "Sound", Shape: ShapeValue, Fields: []string{"VALUE"}, Enum: "Sounds"},
	{Kind: "ObjectType", Shape: ShapeValue, Fields: []string{"VALUE"}, Enum: "Objects"},
	{Kind: "Color", Shape: ShapeValue, Fields: []string{"VALUE"}, Enum: "Colors"},
}
