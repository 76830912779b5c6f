package layout

// 该文件定义排版输入与排版结果，供布局计算、渲染与调试 JSON 共用。
// 所有长度单位为 pt，页面坐标以左上角为原点，y 向下增长。

import (
	"github.com/ByLCY/platen/content"
	"github.com/ByLCY/platen/decorate"
	"github.com/ByLCY/platen/style"
)

// Margins 以 pt 为单位。
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Point 是页面坐标。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// Document 是一次排版的完整输入。
type Document struct {
	PageWidth  float64
	PageHeight float64
	Margins    Margins
	// Spacing 是相邻块之间的间距；同一表格的相邻行之间没有间距。
	Spacing float64
	Blocks  []content.Block
	// Styles 非空时在排版开始前冻结，之后不允许再注册样式。
	Styles    *style.Registry
	Decorator decorate.Func
	Meta      DocumentMeta
}

// UsableWidth 返回扣除左右边距后的宽度。
func (d Document) UsableWidth() float64 { return d.PageWidth - d.Margins.Left - d.Margins.Right }

// UsableHeight 返回扣除上下边距后的高度。
func (d Document) UsableHeight() float64 { return d.PageHeight - d.Margins.Top - d.Margins.Bottom }

// Result 保存排版后的页面。
type Result struct {
	Pages      []Page       `json:"pages"`
	PageWidth  float64      `json:"pageWidth"`
	PageHeight float64      `json:"pageHeight"`
	Meta       DocumentMeta `json:"meta"`
}

// Page 记录页面尺寸、边距、已定位的内容块以及装饰器生成的叠加层。
type Page struct {
	Index        int           `json:"index"`
	Width        float64       `json:"width"`
	Height       float64       `json:"height"`
	Margins      Margins       `json:"margins"`
	UsableWidth  float64       `json:"usableWidth"`
	UsableHeight float64       `json:"usableHeight"`
	Blocks       []Placed      `json:"blocks"`
	Overlay      []decorate.Op `json:"overlay,omitempty"`
}

// Used 返回页面上已占用的高度（含块间距），即最后一个块的底边到内容区顶部的距离。
func (p Page) Used() float64 {
	if len(p.Blocks) == 0 {
		return 0
	}
	last := p.Blocks[len(p.Blocks)-1]
	return last.Origin.Y + last.Height - p.Margins.Top
}

// Placed 是一个已经确定位置的内容块。
//
// Source 是块在 Document.Blocks 中的下标；表格的每个行组各自是一个 Placed，Row 非空。
// Lines 中的坐标相对 Origin；Children 与 Row.Cells 中的 Placed 使用页面绝对坐标。
type Placed struct {
	Source   int           `json:"source"`
	Kind     content.Kind  `json:"kind"`
	Block    content.Block `json:"-"`
	Origin   Point         `json:"origin"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Lines    []TextLine    `json:"lines,omitempty"`
	Row      *RowGroup     `json:"row,omitempty"`
	Children []Placed      `json:"children,omitempty"`
}

func (p *Placed) translate(dx, dy float64) {
	p.Origin.X += dx
	p.Origin.Y += dy
	for i := range p.Children {
		p.Children[i].translate(dx, dy)
	}
	if p.Row != nil {
		for i := range p.Row.Cells {
			p.Row.Cells[i].Content.translate(dx, dy)
		}
	}
}

// TextLine 是段落折行后的一行。Top 与 Baseline 相对所属块的 Origin。
type TextLine struct {
	Top      float64 `json:"top"`
	Baseline float64 `json:"baseline"`
	Height   float64 `json:"height"`
	Width    float64 `json:"width"`
	Spans    []Span  `json:"spans"`
}

// Span 是行内格式一致、位置确定的一段文字，X 相对所属块的 Origin。
type Span struct {
	Text  string      `json:"text"`
	X     float64     `json:"x"`
	Width float64     `json:"width"`
	Face  Face        `json:"face"`
	Color style.Color `json:"color"`
}

// RowGroup 是表格中可独立放置的一行。
type RowGroup struct {
	// Index 是该行在 Table.Rows 中的下标。
	Index    int  `json:"index"`
	IsHeader bool `json:"isHeader"`
	// Repeat 标记在续页顶部重复放置的表头。
	Repeat bool    `json:"repeat,omitempty"`
	Banded bool    `json:"banded,omitempty"`
	Height float64 `json:"height"`
	Cells  []Cell  `json:"cells"`
}

// Cell 是一个单元格；X 相对所在行的 Origin。
type Cell struct {
	Column  int     `json:"column"`
	X       float64 `json:"x"`
	Width   float64 `json:"width"`
	Content Placed  `json:"content"`
}
