package utility

import "math"

// Clamp01 截断到 [0,1]
func Clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// InverseLerp v 在 [a,b] 上的位置，截断到 [0,1]；a == b 时为 0
func InverseLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return Clamp01((v - a) / (b - a))
}

// SmoothStep 三次平滑 t²(3-2t)
func SmoothStep(t float64) float64 {
	t = Clamp01(t)
	return t * t * (3 - 2*t)
}

// ValueHigh lo 及以下为 0，线性升至 hi 及以上为 1
func ValueHigh(x, lo, hi float64) float64 {
	return InverseLerp(lo, hi, x)
}

// ValueLow 1 - ValueHigh
func ValueLow(x, lo, hi float64) float64 {
	return Clamp01(1 - ValueHigh(x, lo, hi))
}

// ApplyCompensationToScore 补偿多个 [0,1] 因子相乘造成的分数塌缩
// raw + (1-raw)(1-1/n)·raw
func ApplyCompensationToScore(raw float64, n int) float64 {
	if n <= 1 {
		return raw
	}
	mod := 1 - 1/float64(n)
	return raw + (1-raw)*mod*raw
}

// WithinBounds 分数是否在 [0,1]
func WithinBounds(score float64) bool {
	return score >= 0 && score <= 1
}

// Bit 布尔转 0/1
func Bit(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
