// Package style 提供具名、可继承的文本样式以及样式注册表。
//
// 样式在内容构造阶段按名称解析为不可变的 Style 值，排版阶段不再查表。
package style

import (
	"fmt"
	"strings"

	"github.com/ByLCY/platen/errs"
)

// Alignment 表示段落的水平对齐方式。
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	default:
		return "left"
	}
}

// MarshalText 让对齐方式在调试 JSON 中以名称输出。
func (a Alignment) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// ParseAlignment 解析对齐方式，支持 start/end 别名。
func ParseAlignment(v string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "left", "start":
		return AlignLeft, nil
	case "center", "middle":
		return AlignCenter, nil
	case "right", "end":
		return AlignRight, nil
	case "justify":
		return AlignJustify, nil
	default:
		return AlignLeft, fmt.Errorf("%w: 不支持的对齐方式：%s", errs.ErrConfiguration, v)
	}
}

// Weight 表示字重。
type Weight int

const (
	WeightRegular Weight = iota
	WeightBold
)

func (w Weight) String() string {
	if w == WeightBold {
		return "bold"
	}
	return "regular"
}

// MarshalText 让字重在调试 JSON 中以名称输出。
func (w Weight) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

// ParseWeight 解析字重；数值 600 及以上视为粗体。
func ParseWeight(v string) (Weight, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "regular", "normal", "400":
		return WeightRegular, nil
	case "bold", "semibold", "600", "700", "800", "900":
		return WeightBold, nil
	default:
		return WeightRegular, fmt.Errorf("%w: 不支持的字重：%s", errs.ErrConfiguration, v)
	}
}

// DefaultLeadingFactor 是未指定行距时相对字号的倍数。
const DefaultLeadingFactor = 1.2

// Style 是一条不可变的具名样式记录，所有长度单位为 pt。
type Style struct {
	Name        string    `json:"name"`
	FontFamily  string    `json:"fontFamily"`
	Weight      Weight    `json:"weight"`
	Italic      bool      `json:"italic,omitempty"`
	SizePt      float64   `json:"sizePt"`
	LeadingPt   float64   `json:"leadingPt"`
	Color       Color     `json:"color"`
	Alignment   Alignment `json:"alignment"`
	LeftIndent  float64   `json:"leftIndent,omitempty"`
	SpaceBefore float64   `json:"spaceBefore,omitempty"`
	SpaceAfter  float64   `json:"spaceAfter,omitempty"`
}

// Leading 返回行距；未显式设置时为字号的 1.2 倍。
func (s Style) Leading() float64 {
	if s.LeadingPt > 0 {
		return s.LeadingPt
	}
	return s.SizePt * DefaultLeadingFactor
}

// Bold 报告样式是否为粗体。
func (s Style) Bold() bool { return s.Weight == WeightBold }

// Base 返回一个带默认值的样式（Helvetica 10pt 黑色左对齐），用作注册时的起点。
func Base(name string) Style {
	return Style{
		Name:       name,
		FontFamily: "Helvetica",
		SizePt:     10,
		Color:      Black,
		Alignment:  AlignLeft,
	}
}

func (s Style) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: 样式名称不能为空", errs.ErrConfiguration)
	}
	if s.SizePt <= 0 {
		return fmt.Errorf("%w: 样式 %s 的字号必须大于 0", errs.ErrConfiguration, s.Name)
	}
	if s.LeadingPt < 0 || s.LeftIndent < 0 || s.SpaceBefore < 0 || s.SpaceAfter < 0 {
		return fmt.Errorf("%w: 样式 %s 的行距与间距不能为负数", errs.ErrConfiguration, s.Name)
	}
	if s.FontFamily == "" {
		return fmt.Errorf("%w: 样式 %s 缺少字体", errs.ErrConfiguration, s.Name)
	}
	return nil
}
