package condition

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/combatai/app/arena/internal/graph"
)

// Epsilon "=" 运算符的容差
const Epsilon = 1e-5

var ErrInvalidOperator = errors.New("condition: invalid operator")

// Compare 按运算符比较 actual 与 threshold
func Compare(op graph.Operator, actual, threshold float64) (bool, error) {
	switch op {
	case graph.Less:
		return actual < threshold, nil
	case graph.LessEqual:
		return actual <= threshold, nil
	case graph.GreaterEqual:
		return actual >= threshold, nil
	case graph.Greater:
		return actual > threshold, nil
	case graph.Equal:
		return approximately(actual, threshold), nil
	default:
		return false, errors.Wrapf(ErrInvalidOperator, "%q", op)
	}
}

func approximately(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// Combine 析取范式：以 Or 分组，组内 And；任一组全部为真即为真
// 缺失的连接符按 And 处理
func Combine(results []bool, connectors []graph.Connector) bool {
	if len(results) == 0 {
		return true
	}
	groupOK := results[0]
	for i := 1; i < len(results); i++ {
		if i-1 < len(connectors) && connectors[i-1] == graph.Or {
			if groupOK {
				return true
			}
			groupOK = results[i]
			continue
		}
		groupOK = groupOK && results[i]
	}
	return groupOK
}
