// Package content 定义可流式排版的内容块模型：段落、空白、分隔线、色块、表格、图片与强制分页。
//
// Block 是一个封闭的变体类型，只有本包内的类型可以实现它。内容块在构造后不可变，
// 排版阶段只会测量与定位，不会修改它们。
package content

import (
	"fmt"
	"image"

	"github.com/ByLCY/platen/errs"
	"github.com/ByLCY/platen/style"
)

// Kind 标识内容块的种类。
type Kind string

const (
	KindParagraph Kind = "paragraph"
	KindSpacer    Kind = "spacer"
	KindRule      Kind = "rule"
	KindBox       Kind = "box"
	KindTable     Kind = "table"
	KindPageBreak Kind = "pagebreak"
	KindImage     Kind = "image"
)

// Block 是所有内容块的公共接口。
type Block interface {
	Kind() Kind
	isBlock()
}

// Paragraph 是一段可折行的文本，Text 中可以包含 <b>、<i>、<font color>、<br/> 标记。
type Paragraph struct {
	Text  string      `json:"text"`
	Style style.Style `json:"style"`
	Runs  []Run       `json:"runs"`
}

// NewParagraph 在构造时按名称解析样式，并把文本标记解析为 Run。
func NewParagraph(reg *style.Registry, styleName, text string) (Paragraph, error) {
	s, err := reg.Resolve(styleName)
	if err != nil {
		return Paragraph{}, err
	}
	return StyledParagraph(s, text), nil
}

// StyledParagraph 使用已解析的样式构造段落。
func StyledParagraph(s style.Style, text string) Paragraph {
	return Paragraph{Text: text, Style: s, Runs: ParseMarkup(text)}
}

// Markup 返回段落的 Run 序列；以结构体字面量构造、未解析标记的段落在此按 Text 解析。
func (p Paragraph) Markup() []Run {
	if p.Runs == nil {
		return ParseMarkup(p.Text)
	}
	return p.Runs
}

// Spacer 是固定高度的空白。
type Spacer struct {
	Height float64 `json:"height"`
}

// Rule 是一条水平分隔线，WidthFraction 为相对可用宽度的比例（0 视为 1）。
type Rule struct {
	Thickness     float64     `json:"thickness"`
	Color         style.Color `json:"color"`
	WidthFraction float64     `json:"widthFraction"`
}

// Fraction 返回有效的宽度比例。
func (r Rule) Fraction() float64 {
	if r.WidthFraction <= 0 || r.WidthFraction > 1 {
		return 1
	}
	return r.WidthFraction
}

// Box 是带背景色的单格容器，整体不可跨页拆分。
// Width 为 0 时占满可用宽度；TextColor 非空时覆盖子段落的文字颜色。
type Box struct {
	Blocks     []Block         `json:"blocks"`
	Background style.Color     `json:"background"`
	TextColor  *style.Color    `json:"textColor,omitempty"`
	Padding    float64         `json:"padding"`
	Width      float64         `json:"width,omitempty"`
	Align      style.Alignment `json:"align"`
}

// Table 是由段落单元格组成的表格，只能在行边界处跨页拆分。
// ColumnWidths 为空时平均分配可用宽度。
type Table struct {
	Rows             [][]Paragraph   `json:"rows"`
	ColumnWidths     []float64       `json:"columnWidths"`
	HeaderRow        bool            `json:"headerRow"`
	Banded           bool            `json:"banded"`
	Padding          float64         `json:"padding"`
	HeaderBackground style.Color     `json:"headerBackground"`
	BandBackground   style.Color     `json:"bandBackground"`
	GridColor        style.Color     `json:"gridColor"`
	GridWidth        float64         `json:"gridWidth"`
	Align            style.Alignment `json:"align"`
}

// Columns 返回列数：优先取 ColumnWidths 的长度，否则取最宽一行的单元格数。
func (t Table) Columns() int {
	if len(t.ColumnWidths) > 0 {
		return len(t.ColumnWidths)
	}
	n := 0
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// PageBreak 强制结束当前页。
type PageBreak struct{}

// Image 是已加载的位图，宽高单位为 pt。像素数据在排版前解析完毕。
type Image struct {
	Path   string          `json:"path"`
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
	Align  style.Alignment `json:"align"`
	Pixels image.Image     `json:"-"`
}

func (Paragraph) Kind() Kind { return KindParagraph }
func (Spacer) Kind() Kind    { return KindSpacer }
func (Rule) Kind() Kind      { return KindRule }
func (Box) Kind() Kind       { return KindBox }
func (Table) Kind() Kind     { return KindTable }
func (PageBreak) Kind() Kind { return KindPageBreak }
func (Image) Kind() Kind     { return KindImage }

func (Paragraph) isBlock() {}
func (Spacer) isBlock()    {}
func (Rule) isBlock()      {}
func (Box) isBlock()       {}
func (Table) isBlock()     {}
func (PageBreak) isBlock() {}
func (Image) isBlock()     {}

// Atomic 报告块是否不可拆分。只有表格可以在行边界处拆分，分页符不占高度。
func Atomic(b Block) bool {
	switch b.(type) {
	case Table, PageBreak:
		return false
	default:
		return true
	}
}

// Validate 检查内容块的构造参数，错误均归类为 errs.ErrConfiguration。
func Validate(b Block) error {
	switch v := b.(type) {
	case Paragraph:
		if v.Style.SizePt <= 0 {
			return &errs.InvalidBlockError{Kind: string(KindParagraph), Reason: "段落缺少已解析的样式"}
		}
	case Spacer:
		if v.Height < 0 {
			return &errs.InvalidBlockError{Kind: string(KindSpacer), Reason: "高度不能为负数"}
		}
	case Rule:
		if v.Thickness <= 0 {
			return &errs.InvalidBlockError{Kind: string(KindRule), Reason: "线宽必须大于 0"}
		}
	case Box:
		if v.Padding < 0 || v.Width < 0 {
			return &errs.InvalidBlockError{Kind: string(KindBox), Reason: "内边距与宽度不能为负数"}
		}
		for i, child := range v.Blocks {
			switch child.(type) {
			case Paragraph, Spacer, Rule, Image, Box:
			default:
				return &errs.InvalidBlockError{Kind: string(KindBox), Reason: fmt.Sprintf("第 %d 个子块 %s 不能放入 box", i, child.Kind())}
			}
			if err := Validate(child); err != nil {
				return err
			}
		}
	case Table:
		if len(v.Rows) == 0 {
			return &errs.InvalidBlockError{Kind: string(KindTable), Reason: "表格至少需要一行"}
		}
		if v.Padding < 0 || v.GridWidth < 0 {
			return &errs.InvalidBlockError{Kind: string(KindTable), Reason: "内边距与网格线宽不能为负数"}
		}
		for i, w := range v.ColumnWidths {
			if w <= 0 {
				return &errs.InvalidBlockError{Kind: string(KindTable), Reason: fmt.Sprintf("第 %d 列宽度必须大于 0", i)}
			}
		}
		for r, row := range v.Rows {
			for _, cell := range row {
				if err := Validate(cell); err != nil {
					return fmt.Errorf("表格第 %d 行: %w", r, err)
				}
			}
		}
	case Image:
		if v.Width <= 0 || v.Height <= 0 {
			return &errs.InvalidBlockError{Kind: string(KindImage), Reason: "图片宽高必须大于 0"}
		}
	case PageBreak:
	case nil:
		return &errs.InvalidBlockError{Kind: "nil", Reason: "内容块为空"}
	default:
		return &errs.InvalidBlockError{Kind: string(b.Kind()), Reason: "不支持指针形式的内容块"}
	}
	return nil
}
