package assertions

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/request/packages/capture"
	"github.com/abdul-hamid-achik/request/packages/request"
)

type Result struct {
	Assertion *Assertion
	Passed    bool
	Message   string
	Actual    any
}

type Evaluator struct {
	extractor *capture.Extractor
}

func NewEvaluator(resp *request.Response) *Evaluator {
	return &Evaluator{extractor: capture.NewExtractor(resp)}
}

func (e *Evaluator) Evaluate(a *Assertion) *Result {
	result := &Result{Assertion: a}

	actual, ok := e.extractor.Get(a.Subject)
	if !ok {
		actual = nil
	}
	result.Actual = actual

	result.Passed, result.Message = e.compare(actual, a.Operator, a.Expected)

	// For length, show the computed length as the actual value
	if a.Operator == OpLength {
		result.Actual = computeLength(actual)
	}

	return result
}

// EvaluateAll evaluates every assertion against resp
func EvaluateAll(resp *request.Response, list []*Assertion) []*Result {
	e := NewEvaluator(resp)
	results := make([]*Result, len(list))
	for i, a := range list {
		results[i] = e.Evaluate(a)
	}
	return results
}

func negate(passed bool, msg string) (bool, string) {
	if passed {
		return false, msg
	}
	return true, ""
}

func (e *Evaluator) compare(actual any, op Operator, expected any) (bool, string) {
	switch op {
	case OpEquals:
		return equals(actual, expected)
	case OpNotEquals:
		passed, _ := equals(actual, expected)
		return negate(passed, fmt.Sprintf("expected not to equal %v", expected))
	case OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual:
		return compareNumeric(actual, expected, op)
	case OpContains:
		return contains(actual, expected)
	case OpNotContains:
		passed, _ := contains(actual, expected)
		return negate(passed, fmt.Sprintf("expected not to contain %v", expected))
	case OpStartsWith:
		if strings.HasPrefix(fmt.Sprint(actual), fmt.Sprint(expected)) {
			return true, ""
		}
		return false, fmt.Sprintf("expected '%v' to start with '%v'", actual, expected)
	case OpEndsWith:
		if strings.HasSuffix(fmt.Sprint(actual), fmt.Sprint(expected)) {
			return true, ""
		}
		return false, fmt.Sprintf("expected '%v' to end with '%v'", actual, expected)
	case OpMatches:
		return matches(actual, expected)
	case OpExists:
		if actual == nil {
			return false, "expected to exist"
		}
		return true, ""
	case OpNotExists:
		return negate(actual != nil, "expected not to exist")
	case OpLength:
		return length(actual, expected)
	case OpIncludes:
		return includes(actual, expected)
	case OpNotIncludes:
		passed, _ := includes(actual, expected)
		return negate(passed, fmt.Sprintf("expected not to include %v", expected))
	case OpIn:
		return in(actual, expected)
	case OpNotIn:
		passed, _ := in(actual, expected)
		return negate(passed, fmt.Sprintf("expected not to be in %v", expected))
	case OpType:
		return typeCheck(actual, expected)
	default:
		return false, fmt.Sprintf("unknown operator: %v", op)
	}
}

func equals(actual, expected any) (bool, string) {
	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}

	actualNum, aOk := toFloat64(actual)
	expectedNum, eOk := toFloat64(expected)
	if aOk && eOk && actualNum == expectedNum {
		return true, ""
	}

	if actual != nil && expected != nil && fmt.Sprint(actual) == fmt.Sprint(expected) {
		return true, ""
	}

	return false, fmt.Sprintf("expected %v, got %v", expected, actual)
}

func compareNumeric(actual, expected any, op Operator) (bool, string) {
	actualNum, aOk := toFloat64(actual)
	expectedNum, eOk := toFloat64(expected)

	if !aOk || !eOk {
		return false, fmt.Sprintf("cannot compare non-numeric values: %v %s %v", actual, op, expected)
	}

	var passed bool
	switch op {
	case OpGreaterThan:
		passed = actualNum > expectedNum
	case OpGreaterOrEqual:
		passed = actualNum >= expectedNum
	case OpLessThan:
		passed = actualNum < expectedNum
	case OpLessOrEqual:
		passed = actualNum <= expectedNum
	}

	if passed {
		return true, ""
	}
	return false, fmt.Sprintf("expected %v %s %v", actual, op, expected)
}

func contains(actual, expected any) (bool, string) {
	if actual != nil && strings.Contains(fmt.Sprint(actual), fmt.Sprint(expected)) {
		return true, ""
	}
	return false, fmt.Sprintf("expected '%v' to contain '%v'", actual, expected)
}

func matches(actual, expected any) (bool, string) {
	pattern := strings.TrimSuffix(strings.TrimPrefix(fmt.Sprint(expected), "/"), "/")

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid regex pattern: %v", err)
	}

	if actual != nil && re.MatchString(fmt.Sprint(actual)) {
		return true, ""
	}
	return false, fmt.Sprintf("expected '%v' to match /%v/", actual, pattern)
}

// computeLength returns the length of a value, or -1 if it has none
func computeLength(actual any) int {
	switch v := actual.(type) {
	case string:
		return len(v)
	case []any:
		return len(v)
	case map[string]any:
		return len(v)
	default:
		return -1
	}
}

func length(actual, expected any) (bool, string) {
	expectedLen, ok := toInt(expected)
	if !ok {
		return false, fmt.Sprintf("expected length must be a number, got %v", expected)
	}

	actualLen := computeLength(actual)
	if actualLen == -1 {
		return false, fmt.Sprintf("cannot get length of %T", actual)
	}

	if actualLen == expectedLen {
		return true, ""
	}
	return false, fmt.Sprintf("expected length %d, got %d", expectedLen, actualLen)
}

func includes(actual, expected any) (bool, string) {
	arr, ok := actual.([]any)
	if !ok {
		return false, fmt.Sprintf("expected array, got %T", actual)
	}

	for _, item := range arr {
		if passed, _ := equals(item, expected); passed {
			return true, ""
		}
	}
	return false, fmt.Sprintf("expected array to include %v", expected)
}

func in(actual, expected any) (bool, string) {
	arr, ok := expected.([]any)
	if !ok {
		return false, fmt.Sprintf("expected array for 'in' operator, got %T", expected)
	}

	for _, item := range arr {
		if passed, _ := equals(actual, item); passed {
			return true, ""
		}
	}
	return false, fmt.Sprintf("expected %v to be in %v", actual, expected)
}

func typeCheck(actual, expected any) (bool, string) {
	expectedType := fmt.Sprint(expected)
	var actualType string

	switch actual.(type) {
	case nil:
		actualType = "null"
	case bool:
		actualType = "boolean"
	case float64, int, int64:
		actualType = "number"
	case string:
		actualType = "string"
	case []any:
		actualType = "array"
	case map[string]any:
		actualType = "object"
	default:
		actualType = reflect.TypeOf(actual).String()
	}

	if actualType == expectedType {
		return true, ""
	}
	return false, fmt.Sprintf("expected type %s, got %s", expectedType, actualType)
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}
