// ABOUTME: Reference evaluator for the engine's declarative expression language
// ABOUTME: Supports the operators used by our layers: get, has, case, concat, step, round, arithmetic

package style

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// ErrBadExpression is returned for malformed or unsupported expressions.
var ErrBadExpression = errors.New("bad expression")

// Expr is an expression in the engine's JSON array form, e.g.
// []any{"get", "point_count"}. Literals are plain values.
type Expr = any

// Eval evaluates expr against feature properties. Numbers come back as
// float64, matching how the engine treats JSON numbers.
func Eval(expr Expr, props map[string]any) (any, error) {
	arr, ok := expr.([]any)
	if !ok {
		return normalize(expr), nil
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrBadExpression)
	}
	op, ok := arr[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: operator must be a string, got %T", ErrBadExpression, arr[0])
	}
	args := arr[1:]

	switch op {
	case "literal":
		if len(args) != 1 {
			return nil, arity(op, 1, len(args))
		}
		return normalize(args[0]), nil
	case "get":
		name, err := stringArg(op, args)
		if err != nil {
			return nil, err
		}
		return normalize(props[name]), nil
	case "has":
		name, err := stringArg(op, args)
		if err != nil {
			return nil, err
		}
		_, ok := props[name]
		return ok, nil
	case "!":
		if len(args) != 1 {
			return nil, arity(op, 1, len(args))
		}
		v, err := Eval(args[0], props)
		if err != nil {
			return nil, err
		}
		return !truthy(v), nil
	case "all", "any":
		want := op == "any"
		for _, a := range args {
			v, err := Eval(a, props)
			if err != nil {
				return nil, err
			}
			if truthy(v) == want {
				return want, nil
			}
		}
		return !want, nil
	case "==", "!=":
		if len(args) != 2 {
			return nil, arity(op, 2, len(args))
		}
		a, err := Eval(args[0], props)
		if err != nil {
			return nil, err
		}
		b, err := Eval(args[1], props)
		if err != nil {
			return nil, err
		}
		eq := reflect.DeepEqual(a, b)
		if op == "==" {
			return eq, nil
		}
		return !eq, nil
	case "case":
		return evalCase(args, props)
	case "concat":
		var s string
		for _, a := range args {
			v, err := Eval(a, props)
			if err != nil {
				return nil, err
			}
			s += toString(v)
		}
		return s, nil
	case "to-string":
		if len(args) != 1 {
			return nil, arity(op, 1, len(args))
		}
		v, err := Eval(args[0], props)
		if err != nil {
			return nil, err
		}
		return toString(v), nil
	case "to-number":
		if len(args) != 1 {
			return nil, arity(op, 1, len(args))
		}
		return evalNumber(args[0], props)
	case "step":
		return evalStep(args, props)
	case "round":
		if len(args) != 1 {
			return nil, arity(op, 1, len(args))
		}
		n, err := evalNumber(args[0], props)
		if err != nil {
			return nil, err
		}
		return math.Round(n), nil
	case "+", "*":
		if len(args) < 2 {
			return nil, arity(op, 2, len(args))
		}
		acc, err := evalNumber(args[0], props)
		if err != nil {
			return nil, err
		}
		for _, a := range args[1:] {
			n, err := evalNumber(a, props)
			if err != nil {
				return nil, err
			}
			if op == "+" {
				acc += n
			} else {
				acc *= n
			}
		}
		return acc, nil
	case "-", "/":
		if len(args) != 2 {
			return nil, arity(op, 2, len(args))
		}
		a, err := evalNumber(args[0], props)
		if err != nil {
			return nil, err
		}
		b, err := evalNumber(args[1], props)
		if err != nil {
			return nil, err
		}
		if op == "-" {
			return a - b, nil
		}
		return a / b, nil
	default:
		return nil, fmt.Errorf("%w: unsupported operator %q", ErrBadExpression, op)
	}
}

// EvalString evaluates expr and requires a string result.
func EvalString(expr Expr, props map[string]any) (string, error) {
	v, err := Eval(expr, props)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string result, got %T", ErrBadExpression, v)
	}
	return s, nil
}

func evalCase(args []any, props map[string]any) (any, error) {
	if len(args) < 3 || len(args)%2 == 0 {
		return nil, fmt.Errorf("%w: case needs condition/output pairs and a fallback", ErrBadExpression)
	}
	for i := 0; i+1 < len(args); i += 2 {
		cond, err := Eval(args[i], props)
		if err != nil {
			return nil, err
		}
		if truthy(cond) {
			return Eval(args[i+1], props)
		}
	}
	return Eval(args[len(args)-1], props)
}

// evalStep implements ["step", input, out0, stop1, out1, ...]: the output
// of the largest stop not above input, or out0 below the first stop.
func evalStep(args []any, props map[string]any) (any, error) {
	if len(args) < 2 || len(args)%2 != 0 {
		return nil, fmt.Errorf("%w: step needs input, base output and stop/output pairs", ErrBadExpression)
	}
	input, err := evalNumber(args[0], props)
	if err != nil {
		return nil, err
	}
	out := args[1]
	for i := 2; i+1 < len(args); i += 2 {
		stop, err := evalNumber(args[i], props)
		if err != nil {
			return nil, err
		}
		if input < stop {
			break
		}
		out = args[i+1]
	}
	return Eval(out, props)
}

func evalNumber(expr Expr, props map[string]any) (float64, error) {
	v, err := Eval(expr, props)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrBadExpression, n)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("%w: missing number", ErrBadExpression)
	default:
		return 0, fmt.Errorf("%w: %T is not a number", ErrBadExpression, v)
	}
}

func stringArg(op string, args []any) (string, error) {
	if len(args) != 1 {
		return "", arity(op, 1, len(args))
	}
	s, ok := args[0].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s expects a property name", ErrBadExpression, op)
	}
	return s, nil
}

func arity(op string, want, got int) error {
	return fmt.Errorf("%w: %s expects %d arguments, got %d", ErrBadExpression, op, want, got)
}

// normalize maps Go numeric types onto float64 so comparisons behave like
// the engine's JSON numbers.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case uint:
		return float64(n)
	default:
		return v
	}
}

func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		return b != ""
	default:
		return true
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(s)
	}
}
