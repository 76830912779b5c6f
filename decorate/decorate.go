// Package decorate 提供排版完成后逐页调用的装饰器，例如对角水印与页面边框。
//
// 装饰器只能看到页面几何尺寸，看不到页面上的内容块，因此它既不会影响分页结果，
// 也不依赖分页结果。装饰器必须是纯函数：相同的几何尺寸总是返回相同的绘制操作。
package decorate

import (
	"github.com/ByLCY/platen/style"
)

// Geometry 是装饰器唯一可见的页面信息，单位为 pt。
type Geometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Func 为一页生成叠加在内容之上的绘制操作。
type Func func(Geometry) []Op

// Op 是一条页面坐标系（左上角为原点）下的绘制操作。
type Op interface {
	isOp()
}

// Text 以 (X, Y) 为中心绘制一行文字，并绕中心逆时针旋转 Angle 度。
type Text struct {
	Text   string      `json:"text"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Angle  float64     `json:"angle"`
	Family string      `json:"family"`
	Bold   bool        `json:"bold"`
	Size   float64     `json:"size"`
	Color  style.Color `json:"color"`
}

// Rect 绘制矩形。Fill 或 Stroke 为零值时不填充或不描边。
type Rect struct {
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Fill        style.Color `json:"fill"`
	Stroke      style.Color `json:"stroke"`
	StrokeWidth float64     `json:"strokeWidth"`
}

// Line 绘制线段。
type Line struct {
	X1    float64     `json:"x1"`
	Y1    float64     `json:"y1"`
	X2    float64     `json:"x2"`
	Y2    float64     `json:"y2"`
	Color style.Color `json:"color"`
	Width float64     `json:"width"`
}

func (Text) isOp() {}
func (Rect) isOp() {}
func (Line) isOp() {}

// Apply 调用装饰器；f 为 nil 时返回空。
func Apply(f Func, g Geometry) []Op {
	if f == nil {
		return nil
	}
	return f(g)
}

// Chain 依次调用多个装饰器并拼接它们的绘制操作，nil 会被跳过。
func Chain(fns ...Func) Func {
	return func(g Geometry) []Op {
		var ops []Op
		for _, f := range fns {
			ops = append(ops, Apply(f, g)...)
		}
		return ops
	}
}
