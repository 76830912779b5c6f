// Package canvasrenderer 使用 github.com/tdewolff/canvas 把布局结果输出为 PDF。
//
// 布局坐标单位为 pt，canvas 的坐标单位为 mm，字号仍以 pt 计；两者在绘制边界处换算。
package canvasrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/platen/content"
	"github.com/ByLCY/platen/decorate"
	"github.com/ByLCY/platen/errs"
	"github.com/ByLCY/platen/fonts"
	"github.com/ByLCY/platen/layout"
	"github.com/ByLCY/platen/renderer"
	"github.com/ByLCY/platen/style"
)

// Name 是该后端在 BackendError 中的名称。
const Name = "canvas"

const defaultStrokeWidth = 0.5 // pt

// Renderer draws layout results via github.com/tdewolff/canvas.
type Renderer struct {
	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ renderer.Backend  = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

// New creates a canvas-based renderer using the embedded Go fonts.
func New() *Renderer {
	return &Renderer{families: map[string]*canvas.FontFamily{}}
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, &errs.BackendError{Backend: Name, Op: "render", Err: errors.New("渲染结果为空")}
	}
	if len(result.Pages) == 0 {
		return nil, &errs.BackendError{Backend: Name, Op: "render", Err: errors.New("缺少可渲染的页面")}
	}

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, toMm(first.Width), toMm(first.Height), nil)
	applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(toMm(page.Width), toMm(page.Height))
		}
		c := canvas.New(toMm(page.Width), toMm(page.Height))
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(c, ctx, page); err != nil {
			return nil, &errs.BackendError{Backend: Name, Op: fmt.Sprintf("page %d", page.Index), Err: err}
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, &errs.BackendError{Backend: Name, Op: "close", Err: fmt.Errorf("写入 PDF 失败: %w", err)}
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// TextWidth 实现 layout.Measurer，返回 pt。
func (r *Renderer) TextWidth(text string, face layout.Face) float64 {
	f, err := r.fontFace(face, style.Black)
	if err != nil {
		return layout.EstimateMeasurer{}.TextWidth(text, face)
	}
	return toPt(f.TextWidth(text))
}

// Ascent 实现 layout.Measurer，返回 pt。
func (r *Renderer) Ascent(face layout.Face) float64 {
	f, err := r.fontFace(face, style.Black)
	if err != nil {
		return layout.EstimateMeasurer{}.Ascent(face)
	}
	return toPt(f.Metrics().Ascent)
}

func (r *Renderer) drawPage(c *canvas.Canvas, ctx *canvas.Context, page layout.Page) error {
	err := renderer.Walk(page.Blocks, func(p layout.Placed) error {
		switch b := p.Block.(type) {
		case content.Paragraph:
			return r.drawLines(ctx, p)
		case content.Rule:
			fillRect(ctx, p.Origin.X, p.Origin.Y, p.Width, p.Height, b.Color)
		case content.Box:
			if !b.Background.IsZero() {
				fillRect(ctx, p.Origin.X, p.Origin.Y, p.Width, p.Height, b.Background)
			}
		case content.Table:
			return r.drawRow(ctx, p, b)
		case content.Image:
			drawImage(ctx, p, b)
		}
		return nil
	})
	if err != nil {
		return err
	}
	// 叠加层最后绘制，位于正文之上。
	for _, op := range page.Overlay {
		if err := r.drawOp(c, ctx, page, op); err != nil {
			return err
		}
	}
	return nil
}

// drawLines 逐行绘制段落；Span 的 X 与行的 Baseline 相对块原点。
func (r *Renderer) drawLines(ctx *canvas.Context, p layout.Placed) error {
	for _, line := range p.Lines {
		for _, span := range line.Spans {
			if span.Text == "" {
				continue
			}
			face, err := r.fontFace(span.Face, span.Color)
			if err != nil {
				return err
			}
			textLine := canvas.NewTextLine(face, span.Text, canvas.Left)
			ctx.DrawText(toMm(p.Origin.X+span.X), toMm(p.Origin.Y+line.Baseline), textLine)
		}
	}
	return nil
}

// drawRow 绘制表格的一个行组：先填充背景，再画网格，最后写单元格文字。
func (r *Renderer) drawRow(ctx *canvas.Context, p layout.Placed, tbl content.Table) error {
	rg := p.Row
	if rg == nil {
		return nil
	}
	fill, hasFill := renderer.RowFill(rg, tbl)
	for _, cell := range rg.Cells {
		x := p.Origin.X + cell.X
		if hasFill {
			fillRect(ctx, x, p.Origin.Y, cell.Width, rg.Height, fill)
		}
		if tbl.GridWidth > 0 {
			strokeRect(ctx, x, p.Origin.Y, cell.Width, rg.Height, tbl.GridColor, tbl.GridWidth)
		}
		if err := r.drawLines(ctx, cell.Content); err != nil {
			return err
		}
	}
	return nil
}

func drawImage(ctx *canvas.Context, p layout.Placed, img content.Image) {
	if img.Pixels == nil || p.Width <= 0 {
		return
	}
	dpmm := float64(img.Pixels.Bounds().Dx()) / toMm(p.Width)
	if dpmm <= 0 {
		dpmm = 1
	}
	ctx.DrawImage(toMm(p.Origin.X), toMm(p.Origin.Y), img.Pixels, canvas.DPMM(dpmm))
}

func (r *Renderer) drawOp(c *canvas.Canvas, ctx *canvas.Context, page layout.Page, op decorate.Op) error {
	switch o := op.(type) {
	case decorate.Text:
		face, err := r.fontFace(layout.Face{Family: o.Family, Bold: o.Bold, Size: o.Size}, o.Color)
		if err != nil {
			return err
		}
		// 旋转文字直接在 canvas 的笛卡尔坐标（y 向上）中绘制，以 (X, Y) 为中心。
		text := canvas.NewTextLine(face, o.Text, canvas.Center)
		capHeight := face.Metrics().CapHeight
		m := canvas.Identity.
			Translate(toMm(o.X), toMm(page.Height-o.Y)).
			Rotate(o.Angle).
			Translate(0, -capHeight/2)
		c.RenderText(text, m)
	case decorate.Rect:
		if !o.Fill.IsZero() {
			fillRect(ctx, o.X, o.Y, o.Width, o.Height, o.Fill)
		}
		if o.StrokeWidth > 0 {
			strokeRect(ctx, o.X, o.Y, o.Width, o.Height, o.Stroke, o.StrokeWidth)
		}
	case decorate.Line:
		w := o.Width
		if w <= 0 {
			w = defaultStrokeWidth
		}
		ctx.SetFillColor(color.Transparent)
		ctx.SetStrokeColor(colorOf(o.Color))
		ctx.SetStrokeWidth(toMm(w))
		path := &canvas.Path{}
		path.MoveTo(0, 0)
		path.LineTo(toMm(o.X2-o.X1), toMm(o.Y2-o.Y1))
		ctx.DrawPath(toMm(o.X1), toMm(o.Y1), path)
	}
	return nil
}

func fillRect(ctx *canvas.Context, x, y, w, h float64, col style.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	ctx.SetFillColor(colorOf(col))
	ctx.SetStrokeColor(color.Transparent)
	ctx.SetStrokeWidth(0)
	ctx.DrawPath(toMm(x), toMm(y), canvas.Rectangle(toMm(w), toMm(h)))
}

func strokeRect(ctx *canvas.Context, x, y, w, h float64, col style.Color, width float64) {
	ctx.SetFillColor(color.Transparent)
	ctx.SetStrokeColor(colorOf(col))
	ctx.SetStrokeWidth(toMm(width))
	ctx.DrawPath(toMm(x), toMm(y), canvas.Rectangle(toMm(w), toMm(h)))
}

func (r *Renderer) fontFace(face layout.Face, col style.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(face.Family)
	if err != nil {
		return nil, err
	}
	size := face.Size
	if size <= 0 || math.IsNaN(size) {
		size = 10
	}
	return family.Face(size, colorOf(col), fontStyle(face.Bold, face.Italic), canvas.FontNormal), nil
}

// ensureFontFamily 按内置字体族（无衬线或等宽）加载并缓存 canvas 字体族。
func (r *Renderer) ensureFontFamily(name string) (*canvas.FontFamily, error) {
	key := fonts.Family(name)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.families[key]; ok {
		return family, nil
	}
	family := canvas.NewFontFamily("platen-" + key)
	for _, v := range []struct{ bold, italic bool }{{false, false}, {true, false}, {false, true}, {true, true}} {
		data := fonts.Face(key, v.bold, v.italic)
		if err := family.LoadFont(data, 0, fontStyle(v.bold, v.italic)); err != nil {
			return nil, fmt.Errorf("加载字体 %s 失败: %w", fonts.File(key, v.bold, v.italic), err)
		}
	}
	r.families[key] = family
	return family, nil
}

func fontStyle(bold, italic bool) canvas.FontStyle {
	s := canvas.FontRegular
	if bold {
		s = canvas.FontBold
	}
	if italic {
		s |= canvas.FontItalic
	}
	return s
}

func colorOf(c style.Color) color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
