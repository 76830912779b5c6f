package decorate

import (
	"github.com/ByLCY/platen/style"
)

// 水印默认值：Helvetica 粗体 60pt，70% 灰，30% 不透明度，45° 对角。
const (
	DefaultWatermarkSize    = 60.0
	DefaultWatermarkAngle   = 45.0
	DefaultWatermarkOpacity = 0.3
)

// DefaultWatermarkColor 是 0.7 灰。
var DefaultWatermarkColor = style.RGB(179, 179, 179)

type watermarkConfig struct {
	family  string
	bold    bool
	size    float64
	angle   float64
	color   style.Color
	opacity float64
}

// WatermarkOption 调整水印外观。
type WatermarkOption func(*watermarkConfig)

// WithFont 指定水印字体。
func WithFont(family string, bold bool) WatermarkOption {
	return func(c *watermarkConfig) {
		c.family = family
		c.bold = bold
	}
}

// WithSize 指定字号（pt）。
func WithSize(size float64) WatermarkOption {
	return func(c *watermarkConfig) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithAngle 指定逆时针旋转角度。
func WithAngle(deg float64) WatermarkOption {
	return func(c *watermarkConfig) { c.angle = deg }
}

// WithColor 指定颜色，不透明度由 WithOpacity 单独控制。
func WithColor(col style.Color) WatermarkOption {
	return func(c *watermarkConfig) { c.color = col }
}

// WithOpacity 指定不透明度（0..1）。
func WithOpacity(alpha float64) WatermarkOption {
	return func(c *watermarkConfig) { c.opacity = alpha }
}

// Watermark 返回一个在每页中心绘制旋转半透明文字的装饰器。text 为空时不绘制任何内容。
func Watermark(text string, opts ...WatermarkOption) Func {
	cfg := watermarkConfig{
		family:  "Helvetica",
		bold:    true,
		size:    DefaultWatermarkSize,
		angle:   DefaultWatermarkAngle,
		color:   DefaultWatermarkColor,
		opacity: DefaultWatermarkOpacity,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	col := cfg.color.WithAlpha(cfg.opacity)
	return func(g Geometry) []Op {
		if text == "" {
			return nil
		}
		return []Op{Text{
			Text:   text,
			X:      g.Width / 2,
			Y:      g.Height / 2,
			Angle:  cfg.angle,
			Family: cfg.family,
			Bold:   cfg.bold,
			Size:   cfg.size,
			Color:  col,
		}}
	}
}

// Border 返回一个在距页面边缘 inset 处绘制矩形边框的装饰器。
func Border(inset, width float64, col style.Color) Func {
	return func(g Geometry) []Op {
		if width <= 0 || 2*inset >= g.Width || 2*inset >= g.Height {
			return nil
		}
		return []Op{Rect{
			X:           inset,
			Y:           inset,
			Width:       g.Width - 2*inset,
			Height:      g.Height - 2*inset,
			Stroke:      col,
			StrokeWidth: width,
		}}
	}
}
