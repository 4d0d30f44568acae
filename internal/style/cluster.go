// ABOUTME: Reference implementation of cluster property aggregation
// ABOUTME: Folds clusterProperties reducers over member features like the engine does

package style

import (
	"fmt"
	"strconv"
)

func itoa(i int) string {
	return strconv.Itoa(i)
}

// Reduce aggregates member feature properties into cluster properties.
// Each reducer is [operator, mapExpr]: mapExpr is evaluated per member and
// the results are folded with operator. point_count and cluster are set
// the way the engine sets them.
func Reduce(reducers map[string]Expr, members []map[string]any) (map[string]any, error) {
	out := map[string]any{
		PropCluster:    true,
		PropPointCount: float64(len(members)),
	}
	for name, r := range reducers {
		arr, ok := r.([]any)
		if !ok || len(arr) != 2 {
			return nil, fmt.Errorf("%w: reducer %q must be [operator, expression]", ErrBadExpression, name)
		}
		op, ok := arr[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: reducer %q operator must be a string", ErrBadExpression, name)
		}

		var acc any
		for i, props := range members {
			v, err := Eval(arr[1], props)
			if err != nil {
				return nil, fmt.Errorf("reducer %q: %w", name, err)
			}
			if i == 0 {
				acc = v
				continue
			}
			acc, err = Eval([]any{op, []any{"literal", acc}, []any{"literal", v}}, nil)
			if err != nil {
				return nil, fmt.Errorf("reducer %q: %w", name, err)
			}
		}
		out[name] = acc
	}
	return out, nil
}
