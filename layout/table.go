package layout

import (
	"github.com/ByLCY/platen/content"
	"github.com/ByLCY/platen/errs"
)

// TableLayout 是表格展开后的行组序列。行组坐标相对表格左上角，放置时再平移到页面坐标。
type TableLayout struct {
	Columns []float64 `json:"columns"`
	Width   float64   `json:"width"`
	// Offset 是表格相对内容区左边界的水平偏移（由 Align 决定）。
	Offset float64    `json:"offset"`
	Header *RowGroup  `json:"header,omitempty"`
	Rows   []RowGroup `json:"rows"`
}

// LayoutTable 计算列宽、逐格折行并生成行组。
//
// 列宽未指定时平均分配 width；列宽总和超过 width 时返回 *errs.ColumnWidthOverflowError。
// 单行高度超过 usableHeight，或数据行与表头无法同时放进一整页时返回 *errs.UnsplittableRowError。
func LayoutTable(tbl content.Table, width, usableHeight float64, m Measurer) (*TableLayout, error) {
	cols := tbl.Columns()
	if cols == 0 {
		return nil, &errs.InvalidBlockError{Kind: string(content.KindTable), Reason: "表格没有列"}
	}
	widths := make([]float64, cols)
	if len(tbl.ColumnWidths) > 0 {
		copy(widths, tbl.ColumnWidths)
	} else {
		for i := range widths {
			widths[i] = width / float64(cols)
		}
	}
	total := 0.0
	for _, w := range widths {
		total += w
	}
	if total > width+epsilon {
		return nil, &errs.ColumnWidthOverflowError{Total: total, Available: width}
	}

	tl := &TableLayout{
		Columns: widths,
		Width:   total,
		Offset:  alignOffset(width, total, tbl.Align),
	}

	dataOffset := 0
	for r, row := range tbl.Rows {
		if len(row) > cols {
			return nil, &errs.TableShapeError{Row: r, Cells: len(row), Columns: cols}
		}
		rg := layoutRow(tbl, r, row, widths, m)
		if rg.Height > usableHeight+epsilon {
			return nil, &errs.UnsplittableRowError{Row: r, Height: rg.Height, Available: usableHeight}
		}
		if r == 0 && tbl.HeaderRow {
			rg.IsHeader = true
			tl.Header = &rg
			continue
		}
		if tl.Header != nil && tl.Header.Height+rg.Height > usableHeight+epsilon {
			return nil, &errs.UnsplittableRowError{Row: r, Height: tl.Header.Height + rg.Height, Available: usableHeight}
		}
		rg.Banded = tbl.Banded && dataOffset%2 == 0
		dataOffset++
		tl.Rows = append(tl.Rows, rg)
	}
	return tl, nil
}

// layoutRow 以单元格内宽（列宽减去两侧内边距）折行，行高取各单元格高度的最大值。
func layoutRow(tbl content.Table, index int, row []content.Paragraph, widths []float64, m Measurer) RowGroup {
	rg := RowGroup{Index: index}
	x := 0.0
	maxHeight := 0.0
	for c, cell := range row {
		inner := widths[c] - 2*tbl.Padding
		if inner <= 0 {
			inner = widths[c]
		}
		lines, h := layoutParagraph(cell, inner, nil, m)
		rg.Cells = append(rg.Cells, Cell{
			Column: c,
			X:      x,
			Width:  widths[c],
			Content: Placed{
				Source: -1,
				Kind:   content.KindParagraph,
				Block:  cell,
				Origin: Point{X: x + tbl.Padding, Y: tbl.Padding},
				Width:  inner,
				Height: h,
				Lines:  lines,
			},
		})
		if h > maxHeight {
			maxHeight = h
		}
		x += widths[c]
	}
	rg.Height = maxHeight + 2*tbl.Padding
	return rg
}

// clone 深拷贝行组，避免同一表头在多页重复放置时共享单元格坐标。
func (rg RowGroup) clone() *RowGroup {
	out := rg
	out.Cells = make([]Cell, len(rg.Cells))
	copy(out.Cells, rg.Cells)
	return &out
}
