package layout

import (
	"log/slog"
	"unicode/utf8"
)

// Options 配置排版阶段所需的依赖。
type Options struct {
	// Measurer 负责测量文字宽度，通常由渲染后端提供，以保证测量与绘制一致。
	Measurer Measurer
	// Logger 为空时不输出日志。
	Logger *slog.Logger
}

// Face 描述测量或绘制文字所需的字体信息，Size 单位为 pt。
type Face struct {
	Family string  `json:"family"`
	Bold   bool    `json:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty"`
	Size   float64 `json:"size"`
}

// Measurer 返回文字在给定字体下的宽度与上升高度（pt）。
type Measurer interface {
	TextWidth(text string, face Face) float64
	Ascent(face Face) float64
}

// EstimateMeasurer 按固定字宽估算文字宽度，不依赖任何字体文件。
// Advance 是每个字符相对字号的宽度倍数，0 时取 0.55。
type EstimateMeasurer struct {
	Advance float64
}

func (m EstimateMeasurer) TextWidth(text string, face Face) float64 {
	adv := m.Advance
	if adv <= 0 {
		adv = 0.55
	}
	return face.Size * adv * float64(utf8.RuneCountInString(text))
}

func (m EstimateMeasurer) Ascent(face Face) float64 { return face.Size * 0.8 }
