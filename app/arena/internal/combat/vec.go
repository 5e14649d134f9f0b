package combat

import "math"

// Vec2 平面坐标
type Vec2 struct {
	X float64 `mapstructure:"x" yaml:"x" json:"x"`
	Y float64 `mapstructure:"y" yaml:"y" json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist 两点距离
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }

// Normalize 零向量返回零向量
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// Angle 弧度，x 轴为 0
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) }

// Polar 以 center 为圆心、angle 方向、半径 r 的点
func Polar(center Vec2, angle, r float64) Vec2 {
	return center.Add(Vec2{math.Cos(angle) * r, math.Sin(angle) * r})
}
