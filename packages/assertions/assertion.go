package assertions

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Operator int

const (
	OpEquals Operator = iota
	OpNotEquals
	OpGreaterThan
	OpGreaterOrEqual
	OpLessThan
	OpLessOrEqual
	OpContains
	OpNotContains
	OpStartsWith
	OpEndsWith
	OpMatches
	OpExists
	OpNotExists
	OpLength
	OpIncludes
	OpNotIncludes
	OpIn
	OpNotIn
	OpType
)

var operatorNames = map[Operator]string{
	OpEquals:         "==",
	OpNotEquals:      "!=",
	OpGreaterThan:    ">",
	OpGreaterOrEqual: ">=",
	OpLessThan:       "<",
	OpLessOrEqual:    "<=",
	OpContains:       "contains",
	OpNotContains:    "!contains",
	OpStartsWith:     "startswith",
	OpEndsWith:       "endswith",
	OpMatches:        "matches",
	OpExists:         "exists",
	OpNotExists:      "!exists",
	OpLength:         "length",
	OpIncludes:       "includes",
	OpNotIncludes:    "!includes",
	OpIn:             "in",
	OpNotIn:          "!in",
	OpType:           "type",
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// unary operators take no expected value
func (o Operator) unary() bool {
	return o == OpExists || o == OpNotExists
}

// ParseOperator accepts the names above, case-insensitively
func ParseOperator(s string) (Operator, bool) {
	s = strings.ToLower(s)
	for op, name := range operatorNames {
		if name == s {
			return op, true
		}
	}
	return 0, false
}

// Assertion is a single expectation about a response
type Assertion struct {
	Subject  string
	Operator Operator
	Expected any
}

func (a *Assertion) String() string {
	if a.Operator.unary() {
		return a.Subject + " " + a.Operator.String()
	}
	return fmt.Sprintf("%s %s %v", a.Subject, a.Operator, a.Expected)
}

// Parse reads "<subject> <operator> [expected]"
func Parse(expr string) (*Assertion, error) {
	expr = strings.TrimSpace(expr)

	subject, rest, _ := strings.Cut(expr, " ")
	if subject == "" {
		return nil, fmt.Errorf("empty expectation")
	}

	opName, raw, _ := strings.Cut(strings.TrimSpace(rest), " ")
	if opName == "" {
		return nil, fmt.Errorf("expectation %q has no operator", expr)
	}
	op, ok := ParseOperator(opName)
	if !ok {
		return nil, fmt.Errorf("expectation %q: unknown operator %q", expr, opName)
	}

	a := &Assertion{Subject: subject, Operator: op}

	raw = strings.TrimSpace(raw)
	if op.unary() {
		if raw != "" {
			return nil, fmt.Errorf("expectation %q: %s takes no value", expr, op)
		}
		return a, nil
	}
	if raw == "" {
		return nil, fmt.Errorf("expectation %q has no expected value", expr)
	}
	a.Expected = parseValue(raw)

	return a, nil
}

// parseValue decodes JSON literals and falls back to the raw string
func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}
