package layout

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ByLCY/platen/content"
	"github.com/ByLCY/platen/decorate"
	"github.com/ByLCY/platen/errs"
	"github.com/ByLCY/platen/style"
)

// Compose 对文档做单次前向分页，返回每页已定位的内容块与装饰层。
//
// 排版分两步：先在可用宽度下测量所有块（表格展开为行组），再按顺序逐块放置。
// 任何错误都会中止整个构建，不返回部分结果。
func Compose(doc Document, opts Options) (*Result, error) {
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	if opts.Measurer == nil {
		return nil, fmt.Errorf("%w: layout 缺少文字测量后端 Measurer", errs.ErrConfiguration)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if doc.Styles != nil {
		doc.Styles.Freeze()
	}

	items, err := measureAll(doc, opts.Measurer)
	if err != nil {
		return nil, err
	}

	pc := newPageCollector(doc, log)
	for _, it := range items {
		switch {
		case it.pageBreak:
			pc.newPage(true)
		case it.table != nil:
			pc.placeTable(it)
		default:
			pc.placeAtomic(it.placed)
		}
	}
	pages := pc.finish()
	log.Debug("排版完成", "pages", len(pages), "blocks", len(doc.Blocks))

	return &Result{
		Pages:      pages,
		PageWidth:  doc.PageWidth,
		PageHeight: doc.PageHeight,
		Meta:       doc.Meta,
	}, nil
}

func validateDocument(doc Document) error {
	if doc.PageWidth <= 0 || doc.PageHeight <= 0 {
		return fmt.Errorf("%w: 页面尺寸必须大于 0（%gx%g）", errs.ErrConfiguration, doc.PageWidth, doc.PageHeight)
	}
	m := doc.Margins
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return fmt.Errorf("%w: 页边距不能为负数", errs.ErrConfiguration)
	}
	if doc.UsableWidth() <= 0 || doc.UsableHeight() <= 0 {
		return fmt.Errorf("%w: 扣除页边距后没有可用区域", errs.ErrConfiguration)
	}
	if doc.Spacing < 0 {
		return fmt.Errorf("%w: 块间距不能为负数", errs.ErrConfiguration)
	}
	for i, b := range doc.Blocks {
		if err := content.Validate(b); err != nil {
			return fmt.Errorf("第 %d 个内容块: %w", i, err)
		}
	}
	return nil
}

// item 是测量后的内容块：原子块已算好尺寸，表格已展开为行组。
type item struct {
	index     int
	pageBreak bool
	placed    Placed
	table     *TableLayout
	block     content.Table
}

func measureAll(doc Document, m Measurer) ([]item, error) {
	width := doc.UsableWidth()
	usable := doc.UsableHeight()
	items := make([]item, 0, len(doc.Blocks))
	for i, b := range doc.Blocks {
		switch v := b.(type) {
		case content.PageBreak:
			items = append(items, item{index: i, pageBreak: true})
		case content.Table:
			tl, err := LayoutTable(v, width, usable, m)
			if err != nil {
				var rowErr *errs.UnsplittableRowError
				if errors.As(err, &rowErr) {
					rowErr.Index = i
				}
				return nil, err
			}
			items = append(items, item{index: i, table: tl, block: v})
		default:
			p, err := measureBlock(b, width, nil, m)
			if err != nil {
				return nil, fmt.Errorf("第 %d 个内容块: %w", i, err)
			}
			if p.Height > usable+epsilon {
				return nil, &errs.BlockTooTallError{Index: i, Kind: string(b.Kind()), Height: p.Height, Available: usable}
			}
			p.Source = i
			items = append(items, item{index: i, placed: p})
		}
	}
	return items, nil
}

// measureBlock 测量一个原子块，返回以内容区左上角为原点的 Placed。
// 块的高度只取决于内容、样式与宽度，与它最终落在哪一页无关。
func measureBlock(b content.Block, width float64, override *style.Color, m Measurer) (Placed, error) {
	p := Placed{Kind: b.Kind(), Block: b, Width: width}
	switch v := b.(type) {
	case content.Paragraph:
		p.Lines, p.Height = layoutParagraph(v, width, override, m)
	case content.Spacer:
		p.Height = v.Height
	case content.Rule:
		p.Width = width * v.Fraction()
		p.Origin.X = (width - p.Width) / 2
		p.Height = v.Thickness
	case content.Image:
		w, h := v.Width, v.Height
		if w > width {
			h = h * width / w
			w = width
		}
		p.Width, p.Height = w, h
		p.Origin.X = alignOffset(width, w, v.Align)
	case content.Box:
		bw := width
		if v.Width > 0 {
			if v.Width > width+epsilon {
				return Placed{}, &errs.InvalidBlockError{
					Kind:   string(content.KindBox),
					Reason: fmt.Sprintf("宽度 %.2fpt 超出可用宽度 %.2fpt", v.Width, width),
				}
			}
			bw = v.Width
		}
		if v.TextColor != nil {
			override = v.TextColor
		}
		inner := bw - 2*v.Padding
		if inner <= 0 {
			return Placed{}, &errs.InvalidBlockError{Kind: string(content.KindBox), Reason: "内边距大于宽度"}
		}
		y := v.Padding
		for _, child := range v.Blocks {
			cp, err := measureBlock(child, inner, override, m)
			if err != nil {
				return Placed{}, err
			}
			cp.translate(v.Padding, y)
			y += cp.Height
			p.Children = append(p.Children, cp)
		}
		p.Width = bw
		p.Height = y + v.Padding
		p.Origin.X = alignOffset(width, bw, v.Align)
		// 子块坐标相对 box 原点，随 box 一起平移。
		for i := range p.Children {
			p.Children[i].translate(p.Origin.X, 0)
		}
	default:
		return Placed{}, &errs.InvalidBlockError{Kind: string(b.Kind()), Reason: "无法测量"}
	}
	return p, nil
}

// alignOffset 计算宽度为 width 的块在 container 内按 align 对齐时的水平偏移。
func alignOffset(container, width float64, align style.Alignment) float64 {
	if container <= width {
		return 0
	}
	switch align {
	case style.AlignCenter:
		return (container - width) / 2
	case style.AlignRight:
		return container - width
	default:
		return 0
	}
}

// pageCollector 维护当前页的游标与剩余高度，并收集已完成的页面。
type pageCollector struct {
	doc     Document
	usable  float64
	log     *slog.Logger
	pages   []Page
	cur     *Page
	cursorY float64
	// openedByBreak 标记当前页由显式分页符打开；这样的页即使为空也会输出。
	openedByBreak bool
	// lastTable 是上一个放置的行组所属表格的下标，-1 表示上一个块不是表格行。
	lastTable int
}

func newPageCollector(doc Document, log *slog.Logger) *pageCollector {
	pc := &pageCollector{doc: doc, usable: doc.UsableHeight(), log: log, lastTable: -1}
	pc.open(false)
	return pc
}

func (pc *pageCollector) open(byBreak bool) {
	pc.cur = &Page{
		Width:        pc.doc.PageWidth,
		Height:       pc.doc.PageHeight,
		Margins:      pc.doc.Margins,
		UsableWidth:  pc.doc.UsableWidth(),
		UsableHeight: pc.usable,
	}
	pc.cursorY = 0
	pc.openedByBreak = byBreak
	pc.lastTable = -1
}

// close 结束当前页。空页只有在由分页符打开时才输出，装饰器在页面完成时调用一次。
func (pc *pageCollector) close(final bool) {
	if len(pc.cur.Blocks) == 0 && (final || !pc.openedByBreak) {
		return
	}
	page := *pc.cur
	page.Index = len(pc.pages)
	page.Overlay = decorate.Apply(pc.doc.Decorator, decorate.Geometry{Width: page.Width, Height: page.Height})
	pc.pages = append(pc.pages, page)
}

func (pc *pageCollector) newPage(byBreak bool) {
	pc.close(false)
	reason := "overflow"
	if byBreak {
		reason = "pagebreak"
	}
	pc.log.Debug("分页", "page", len(pc.pages), "reason", reason, "used", pc.cursorY)
	pc.open(byBreak)
}

func (pc *pageCollector) finish() []Page {
	pc.close(true)
	if pc.pages == nil {
		return []Page{}
	}
	return pc.pages
}

func (pc *pageCollector) empty() bool { return len(pc.cur.Blocks) == 0 }

// gap 返回放置下一个块前需要的间距：页首没有间距，同一表格的相邻行之间也没有。
func (pc *pageCollector) gap(source int, row bool) float64 {
	if pc.empty() {
		return 0
	}
	if row && pc.lastTable == source {
		return 0
	}
	return pc.doc.Spacing
}

// fits 判断高度 h 加上间距能否放入当前页，恰好相等时视为放得下。
func (pc *pageCollector) fits(h, gap float64) bool {
	return pc.cursorY+gap+h <= pc.usable+epsilon
}

func (pc *pageCollector) place(p Placed, gap float64) {
	p.translate(pc.doc.Margins.Left, pc.doc.Margins.Top+pc.cursorY+gap)
	pc.cursorY += gap + p.Height
	pc.cur.Blocks = append(pc.cur.Blocks, p)
	if p.Row != nil {
		pc.lastTable = p.Source
	} else {
		pc.lastTable = -1
	}
}

func (pc *pageCollector) placeAtomic(p Placed) {
	gap := pc.gap(p.Source, false)
	if !pc.fits(p.Height, gap) && !pc.empty() {
		pc.newPage(false)
		gap = 0
	}
	pc.place(p, gap)
}

// placeTable 逐行放置表格。表头只在其下至少能放下一行数据时才放置，
// 表格跨页后在续页顶部重新放置表头。
func (pc *pageCollector) placeTable(it item) {
	tl := it.table
	rowPlaced := func(rg RowGroup) Placed {
		p := Placed{
			Source: it.index,
			Kind:   content.KindTable,
			Block:  it.block,
			Width:  tl.Width,
			Height: rg.Height,
			Row:    rg.clone(),
		}
		p.translate(tl.Offset, 0)
		return p
	}

	if len(tl.Rows) == 0 {
		if tl.Header != nil {
			pc.placeAtomic(rowPlaced(*tl.Header))
		}
		return
	}

	headerPlaced := false
	headerHere := false
	for _, rg := range tl.Rows {
		need := rg.Height
		if tl.Header != nil && !headerHere {
			need += tl.Header.Height
		}
		gap := pc.gap(it.index, true)
		if !pc.fits(need, gap) && !pc.empty() {
			pc.newPage(false)
			headerHere = false
			gap = 0
		}
		if tl.Header != nil && !headerHere {
			hp := rowPlaced(*tl.Header)
			hp.Row.Repeat = headerPlaced
			pc.place(hp, gap)
			headerPlaced = true
			headerHere = true
			gap = 0
		}
		pc.place(rowPlaced(rg), gap)
	}
}
