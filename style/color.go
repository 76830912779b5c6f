package style

import (
	"fmt"
	"strconv"
	"strings"
)

// Color 采用 0-255 的 RGBA 数值，A 为不透明度（255 为完全不透明）。
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// 常用颜色。
var (
	Black = Color{A: 255}
	White = Color{R: 255, G: 255, B: 255, A: 255}
)

// RGB 返回一个不透明颜色。
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 255} }

// WithAlpha 返回将不透明度替换为 alpha（0..1）的颜色。
func (c Color) WithAlpha(alpha float64) Color {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	c.A = uint8(alpha*255 + 0.5)
	return c
}

// Alpha 以 0..1 返回不透明度。
func (c Color) Alpha() float64 { return float64(c.A) / 255 }

// IsZero 判断颜色是否为零值（完全透明的黑色），零值表示“未设置”。
func (c Color) IsZero() bool { return c == Color{} }

// Hex 以 #rrggbb 或 #rrggbbaa（非不透明时）形式输出。
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseColor 解析 #rgb、#rrggbb、#rrggbbaa 形式的颜色。
func ParseColor(value string) (Color, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(v) {
	case 3:
		r, err1 := parseHexByte(strings.Repeat(v[0:1], 2))
		g, err2 := parseHexByte(strings.Repeat(v[1:2], 2))
		b, err3 := parseHexByte(strings.Repeat(v[2:3], 2))
		if err := firstErr(err1, err2, err3); err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
		}
		return RGB(r, g, b), nil
	case 6, 8:
		r, err1 := parseHexByte(v[0:2])
		g, err2 := parseHexByte(v[2:4])
		b, err3 := parseHexByte(v[4:6])
		if err := firstErr(err1, err2, err3); err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
		}
		c := RGB(r, g, b)
		if len(v) == 8 {
			a, err := parseHexByte(v[6:8])
			if err != nil {
				return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
			}
			c.A = a
		}
		return c, nil
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

// MustColor 与 ParseColor 相同，但解析失败时 panic，仅用于常量定义。
func MustColor(value string) Color {
	c, err := ParseColor(value)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHexByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 16, 8)
	return uint8(v), err
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
