package utility

import "math"

// Softmax 带温度的 softmax，减去最大值保证数值稳定
// temperature <= 0 时退化为第一个最大值处的 one-hot
func Softmax(scores []float64, temperature float64) []float64 {
	if len(scores) == 0 {
		return nil
	}

	maxIdx := 0
	for i, s := range scores {
		if s > scores[maxIdx] {
			maxIdx = i
		}
	}

	probs := make([]float64, len(scores))
	if temperature <= 0 {
		probs[maxIdx] = 1
		return probs
	}

	var sum float64
	for i, s := range scores {
		probs[i] = math.Exp((s - scores[maxIdx]) / temperature)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// Sample 累积概率首次 >= r 的下标，概率为 0 的项不会被选中
// 舍入误差时回退到最后一个概率非 0 的项
func Sample(probs []float64, r float64) int {
	last := -1
	var cumulative float64
	for i, p := range probs {
		if p <= 0 {
			continue
		}
		last = i
		cumulative += p
		if r <= cumulative {
			return i
		}
	}
	if last < 0 && len(probs) > 0 {
		return len(probs) - 1
	}
	return last
}
