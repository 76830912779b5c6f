// Package fpdfrenderer 是基于 codeberg.org/go-pdf/fpdf 的渲染后端。
//
// fpdf 以 pt 为单位、左上角为原点，与布局坐标一致，无需换算。
// 字体使用内置的 Go 字体（UTF-8 嵌入），测量与绘制共用同一套字形度量。
package fpdfrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"strings"
	"sync"

	"codeberg.org/go-pdf/fpdf"

	"github.com/ByLCY/platen/content"
	"github.com/ByLCY/platen/decorate"
	"github.com/ByLCY/platen/errs"
	"github.com/ByLCY/platen/fonts"
	"github.com/ByLCY/platen/layout"
	"github.com/ByLCY/platen/renderer"
	"github.com/ByLCY/platen/style"
)

// Name 是该后端在 BackendError 中的名称。
const Name = "fpdf"

const defaultStrokeWidth = 0.5

var variants = []struct {
	bold, italic bool
	style        string
}{
	{false, false, ""},
	{true, false, "B"},
	{false, true, "I"},
	{true, true, "BI"},
}

// Renderer draws layout results via fpdf.
type Renderer struct {
	// measure 仅用于测量文字，与实际输出的文档分开。
	mu      sync.Mutex
	measure *fpdf.Fpdf
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ renderer.Backend  = (*Renderer)(nil)
)

// New 创建 fpdf 渲染器。
func New() *Renderer {
	return &Renderer{measure: newDoc(612, 792)}
}

func newDoc(w, h float64) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	for _, fam := range []string{fonts.Sans, fonts.Mono} {
		for _, v := range variants {
			pdf.AddUTF8FontFromBytes(fam, v.style, fonts.Face(fam, v.bold, v.italic))
		}
	}
	return pdf
}

func fontStyle(bold, italic bool) string {
	for _, v := range variants {
		if v.bold == bold && v.italic == italic {
			return v.style
		}
	}
	return ""
}

func setFont(pdf *fpdf.Fpdf, face layout.Face) {
	size := face.Size
	if size <= 0 {
		size = 10
	}
	pdf.SetFont(fonts.Family(face.Family), fontStyle(face.Bold, face.Italic), size)
}

// TextWidth 实现 layout.Measurer。
func (r *Renderer) TextWidth(text string, face layout.Face) float64 {
	if text == "" {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	setFont(r.measure, face)
	if r.measure.Err() {
		return layout.EstimateMeasurer{}.TextWidth(text, face)
	}
	return r.measure.GetStringWidth(text)
}

// Ascent 实现 layout.Measurer，取字体描述中的上升高度（千分之一字号单位）。
func (r *Renderer) Ascent(face layout.Face) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	desc := r.measure.GetFontDesc(fonts.Family(face.Family), fontStyle(face.Bold, face.Italic))
	if desc.Ascent <= 0 {
		return layout.EstimateMeasurer{}.Ascent(face)
	}
	return float64(desc.Ascent) * face.Size / 1000
}

// Render 把布局结果输出为 PDF。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, &errs.BackendError{Backend: Name, Op: "render", Err: errors.New("渲染结果为空")}
	}
	if len(result.Pages) == 0 {
		return nil, &errs.BackendError{Backend: Name, Op: "render", Err: errors.New("缺少可渲染的页面")}
	}

	first := result.Pages[0]
	pdf := newDoc(first.Width, first.Height)
	applyMeta(pdf, result.Meta)

	d := &drawer{pdf: pdf}
	for _, page := range result.Pages {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})
		if err := d.page(page); err != nil {
			return nil, &errs.BackendError{Backend: Name, Op: fmt.Sprintf("page %d", page.Index), Err: err}
		}
		if err := pdf.Error(); err != nil {
			return nil, &errs.BackendError{Backend: Name, Op: fmt.Sprintf("page %d", page.Index), Err: err}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &errs.BackendError{Backend: Name, Op: "output", Err: fmt.Errorf("写入 PDF 失败: %w", err)}
	}
	return buf.Bytes(), nil
}

func applyMeta(pdf *fpdf.Fpdf, meta layout.DocumentMeta) {
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetKeywords(strings.Join(meta.Keywords, ", "), true)
	pdf.SetCreator(meta.Creator, true)
}

// drawer 保存单次渲染的状态，图片按出现顺序注册。
type drawer struct {
	pdf    *fpdf.Fpdf
	images int
}

func (d *drawer) page(page layout.Page) error {
	err := renderer.Walk(page.Blocks, func(p layout.Placed) error {
		switch b := p.Block.(type) {
		case content.Paragraph:
			d.lines(p)
		case content.Rule:
			d.fill(p.Origin.X, p.Origin.Y, p.Width, p.Height, b.Color)
		case content.Box:
			if !b.Background.IsZero() {
				d.fill(p.Origin.X, p.Origin.Y, p.Width, p.Height, b.Background)
			}
		case content.Table:
			d.row(p, b)
		case content.Image:
			return d.image(p, b)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, op := range page.Overlay {
		d.op(op)
	}
	return nil
}

func (d *drawer) lines(p layout.Placed) {
	for _, line := range p.Lines {
		for _, span := range line.Spans {
			if span.Text == "" {
				continue
			}
			setFont(d.pdf, span.Face)
			d.withColor(span.Color, func() {
				d.pdf.SetTextColor(int(span.Color.R), int(span.Color.G), int(span.Color.B))
				d.pdf.Text(p.Origin.X+span.X, p.Origin.Y+line.Baseline, span.Text)
			})
		}
	}
}

func (d *drawer) row(p layout.Placed, tbl content.Table) {
	rg := p.Row
	if rg == nil {
		return
	}
	fill, hasFill := renderer.RowFill(rg, tbl)
	for _, cell := range rg.Cells {
		x := p.Origin.X + cell.X
		if hasFill {
			d.fill(x, p.Origin.Y, cell.Width, rg.Height, fill)
		}
		if tbl.GridWidth > 0 {
			d.stroke(x, p.Origin.Y, cell.Width, rg.Height, tbl.GridColor, tbl.GridWidth)
		}
		d.lines(cell.Content)
	}
}

func (d *drawer) image(p layout.Placed, img content.Image) error {
	if img.Pixels == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img.Pixels); err != nil {
		return fmt.Errorf("编码图片 %s 失败: %w", img.Path, err)
	}
	d.images++
	name := fmt.Sprintf("img%d", d.images)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader(name, opts, &buf)
	d.pdf.ImageOptions(name, p.Origin.X, p.Origin.Y, p.Width, p.Height, false, opts, 0, "")
	return nil
}

func (d *drawer) op(op decorate.Op) {
	switch o := op.(type) {
	case decorate.Text:
		face := layout.Face{Family: o.Family, Bold: o.Bold, Size: o.Size}
		setFont(d.pdf, face)
		w := d.pdf.GetStringWidth(o.Text)
		// 以 (X, Y) 为中心旋转，基线下移半个大写字母高度使文字垂直居中。
		capHeight := o.Size * 0.7
		d.withColor(o.Color, func() {
			d.pdf.SetTextColor(int(o.Color.R), int(o.Color.G), int(o.Color.B))
			d.pdf.TransformBegin()
			d.pdf.TransformRotate(o.Angle, o.X, o.Y)
			d.pdf.Text(o.X-w/2, o.Y+capHeight/2, o.Text)
			d.pdf.TransformEnd()
		})
	case decorate.Rect:
		if !o.Fill.IsZero() {
			d.fill(o.X, o.Y, o.Width, o.Height, o.Fill)
		}
		if o.StrokeWidth > 0 {
			d.stroke(o.X, o.Y, o.Width, o.Height, o.Stroke, o.StrokeWidth)
		}
	case decorate.Line:
		w := o.Width
		if w <= 0 {
			w = defaultStrokeWidth
		}
		d.withColor(o.Color, func() {
			d.pdf.SetDrawColor(int(o.Color.R), int(o.Color.G), int(o.Color.B))
			d.pdf.SetLineWidth(w)
			d.pdf.Line(o.X1, o.Y1, o.X2, o.Y2)
		})
	}
}

func (d *drawer) fill(x, y, w, h float64, col style.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	d.withColor(col, func() {
		d.pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
		d.pdf.Rect(x, y, w, h, "F")
	})
}

func (d *drawer) stroke(x, y, w, h float64, col style.Color, width float64) {
	d.withColor(col, func() {
		d.pdf.SetDrawColor(int(col.R), int(col.G), int(col.B))
		d.pdf.SetLineWidth(width)
		d.pdf.Rect(x, y, w, h, "D")
	})
}

// withColor 在颜色带有透明度时临时设置 alpha，绘制后恢复为不透明。
func (d *drawer) withColor(col style.Color, draw func()) {
	if col.A == 255 || col.IsZero() {
		draw()
		return
	}
	d.pdf.SetAlpha(col.Alpha(), "Normal")
	draw()
	d.pdf.SetAlpha(1, "Normal")
}
