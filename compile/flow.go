package compile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ByLCY/platen/binding"
	"github.com/ByLCY/platen/content"
	"github.com/ByLCY/platen/dsl"
	"github.com/ByLCY/platen/errs"
	"github.com/ByLCY/platen/style"
)

// BulletPrefix 是 bullet 命令在文本前添加的项目符号。
const BulletPrefix = "• "

// 表格的默认外观。
var (
	defaultHeaderBackground = style.RGB(230, 230, 230)
	defaultBandBackground   = style.RGB(245, 245, 245)
	defaultGridColor        = style.RGB(204, 204, 204)
)

const (
	defaultCellPadding = 4.0
	defaultGridWidth   = 0.5
	defaultRuleWidth   = 1.0
)

// flow 把一个正文块编译为内容块序列，width 是当前容器的可用宽度（用于百分比）。
// 块内的赋值是所属命令的属性（例如 box 的 background），在此跳过。
func (c *compiler) flow(block *dsl.Block, width float64) ([]content.Block, error) {
	if block == nil {
		return nil, nil
	}
	var out []content.Block
	for _, stmt := range block.Statements {
		var (
			b   content.Block
			err error
		)
		switch {
		case stmt.Table != nil:
			if b, err = c.table(stmt.Table, width); err != nil {
				return nil, fmt.Errorf("第 %d 行 table: %w", stmt.Table.Pos.Line, err)
			}
		case stmt.Command != nil:
			if b, err = c.command(stmt.Command, width); err != nil {
				return nil, fmt.Errorf("第 %d 行 %s: %w", stmt.Command.Pos.Line, stmt.Command.Name, err)
			}
		}
		if b != nil {
			out = append(out, b)
		}
	}
	return out, nil
}

// command 编译单个命令；返回 nil 块表示该命令被省略（例如图片缺失）。
func (c *compiler) command(cmd *dsl.Command, width float64) (content.Block, error) {
	switch cmd.Name {
	case "paragraph", "text":
		args := cmd.ParseArgs(true)
		return c.paragraph(args.Name, DefaultStyle, args.Text, args.Attrs)
	case "bullet":
		args := cmd.ParseArgs(true)
		def := DefaultStyle
		if _, err := c.reg.Resolve("Bullet"); err == nil {
			def = "Bullet"
		}
		return c.paragraph(args.Name, def, BulletPrefix+args.Text, args.Attrs)
	case "spacer":
		return c.spacer(cmd)
	case "rule":
		return c.rule(cmd.ParseArgs(false).Attrs, width)
	case "box":
		return c.box(cmd, width)
	case "image":
		return c.image(cmd.ParseArgs(true), width)
	case "pagebreak":
		return content.PageBreak{}, nil
	default:
		return nil, fmt.Errorf("%w: 未知命令 %s", errs.ErrConfiguration, cmd.Name)
	}
}

// paragraph 解析样式、应用行内属性并插值文本。
func (c *compiler) paragraph(name, fallback, text string, attrs map[string]string) (content.Paragraph, error) {
	if name == "" {
		name = fallback
	}
	s, err := c.reg.Resolve(name)
	if err != nil {
		return content.Paragraph{}, err
	}
	if s, err = c.deriveStyle(s, attrs); err != nil {
		return content.Paragraph{}, err
	}
	body, err := c.text(text)
	if err != nil {
		return content.Paragraph{}, err
	}
	return content.StyledParagraph(s, body), nil
}

func (c *compiler) spacer(cmd *dsl.Command) (content.Block, error) {
	attrs := cmd.ParseArgs(false).Attrs
	if len(cmd.Args) == 1 {
		attrs["height"] = cmd.Args[0].Value
	}
	h, err := c.length(attrs, "height", 0)
	if err != nil {
		return nil, err
	}
	return content.Spacer{Height: h}, nil
}

func (c *compiler) rule(attrs map[string]string, width float64) (content.Block, error) {
	thickness, err := c.length(attrs, "thickness", defaultRuleWidth)
	if err != nil {
		return nil, err
	}
	col, err := c.colorAttr(attrs, "color", defaultGridColor)
	if err != nil {
		return nil, err
	}
	fraction := 1.0
	if _, ok := attrs["width"]; ok && width > 0 {
		w, err := c.dimension(attrs, "width", width, width)
		if err != nil {
			return nil, err
		}
		fraction = w / width
	}
	return content.Rule{Thickness: thickness, Color: col, WidthFraction: fraction}, nil
}

func (c *compiler) box(cmd *dsl.Command, width float64) (content.Block, error) {
	attrs := cmd.ParseArgs(false).Attrs
	b := content.Box{}
	var err error
	if b.Background, err = c.colorAttr(attrs, "background", style.Color{}); err != nil {
		return nil, err
	}
	for _, key := range []string{"textcolor", "text-color"} {
		if _, ok := attrs[key]; ok {
			col, err := c.colorAttr(attrs, key, style.Black)
			if err != nil {
				return nil, err
			}
			b.TextColor = &col
		}
	}
	if b.Padding, err = c.length(attrs, "padding", 0); err != nil {
		return nil, err
	}
	if b.Width, err = c.dimension(attrs, "width", width, 0); err != nil {
		return nil, err
	}
	if b.Align, err = style.ParseAlignment(attrs["align"]); err != nil {
		return nil, err
	}
	inner := width
	if b.Width > 0 {
		inner = b.Width
	}
	inner -= 2 * b.Padding
	if b.Blocks, err = c.flow(cmd.Block, inner); err != nil {
		return nil, err
	}
	return b, nil
}

// table 编译 `table { columns: [...]; header {...}; row {...}; row each items {...} }`。
func (c *compiler) table(tbl *dsl.Table, width float64) (content.Block, error) {
	attrs := tbl.Attrs()
	t := content.Table{}
	var err error
	if cols, ok := attrs["columns"]; ok {
		for _, v := range strings.Fields(cols) {
			w, err := c.dimension(map[string]string{"columns": v}, "columns", width, 0)
			if err != nil {
				return nil, err
			}
			t.ColumnWidths = append(t.ColumnWidths, w)
		}
	}
	if t.Banded, err = c.boolAttr(attrs, "banded"); err != nil {
		return nil, err
	}
	if t.Padding, err = c.length(attrs, "padding", defaultCellPadding); err != nil {
		return nil, err
	}
	if t.HeaderBackground, err = c.colorAttr(attrs, "header-background", defaultHeaderBackground); err != nil {
		return nil, err
	}
	if t.BandBackground, err = c.colorAttr(attrs, "band-background", defaultBandBackground); err != nil {
		return nil, err
	}
	if t.GridColor, err = c.colorAttr(attrs, "grid-color", defaultGridColor); err != nil {
		return nil, err
	}
	if t.GridWidth, err = c.length(attrs, "grid-width", defaultGridWidth); err != nil {
		return nil, err
	}
	if t.Align, err = style.ParseAlignment(attrs["align"]); err != nil {
		return nil, err
	}

	cellStyle := attrs["style"]
	if cellStyle == "" {
		cellStyle = DefaultStyle
	}
	headerStyle := attrs["header-style"]

	for _, item := range tbl.Items {
		switch {
		case item.Header != nil:
			if len(t.Rows) > 0 {
				return nil, fmt.Errorf("%w: 第 %d 行: header 必须是表格的第一行", errs.ErrConfiguration, item.Header.Pos.Line)
			}
			if item.Header.Each != "" {
				return nil, fmt.Errorf("%w: 第 %d 行: header 不能使用 each", errs.ErrConfiguration, item.Header.Pos.Line)
			}
			row, err := c.row(item.Header, c.binder, cellStyle, headerStyle, true)
			if err != nil {
				return nil, err
			}
			t.HeaderRow = true
			t.Rows = append(t.Rows, row)
		case item.Row != nil:
			rows, err := c.rows(item.Row, cellStyle)
			if err != nil {
				return nil, err
			}
			t.Rows = append(t.Rows, rows...)
		}
	}
	return t, nil
}

// rows 编译普通行；带 each 时对数据中的数组逐项展开，行内可用 ${item.xxx} 引用当前项。
func (c *compiler) rows(r *dsl.TableRow, cellStyle string) ([][]content.Paragraph, error) {
	if s := r.Attrs()["style"]; s != "" {
		cellStyle = s
	}
	path := r.Each
	if path == "" {
		row, err := c.row(r, c.binder, cellStyle, "", false)
		if err != nil {
			return nil, err
		}
		return [][]content.Paragraph{row}, nil
	}

	items, err := c.binder.Lookup(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrConfiguration, err)
	}
	var list []any
	switch v := items.(type) {
	case []any:
		list = v
	case []string:
		for _, s := range v {
			list = append(list, s)
		}
	case nil:
		// 非严格模式下缺失的数组视为空。
		c.log.Warn("row each 的数据不存在，按空数组处理", "path", path)
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: 第 %d 行: row each %s 的值不是数组（%T）", errs.ErrConfiguration, r.Pos.Line, path, items)
	}
	var out [][]content.Paragraph
	for _, item := range list {
		scoped := &binding.Binder{Data: withItem(c.binder.Data, item), Strict: c.binder.Strict}
		row, err := c.row(r, scoped, cellStyle, "", false)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// withItem 返回在顶层数据之上增加 item 字段的新数据，原数据不变。
func withItem(data any, item any) map[string]any {
	scope := map[string]any{}
	if root, ok := data.(map[string]any); ok {
		for k, v := range root {
			scope[k] = v
		}
	}
	scope["item"] = item
	return scope
}

func (c *compiler) row(r *dsl.TableRow, b *binding.Binder, cellStyle, headerStyle string, header bool) ([]content.Paragraph, error) {
	var row []content.Paragraph
	for _, cell := range r.Cells {
		args := cell.ParseArgs()
		name := args.Name
		if name == "" && header {
			name = headerStyle
		}
		if name == "" {
			name = cellStyle
		}
		s, err := c.reg.Resolve(name)
		if err != nil {
			return nil, err
		}
		attrs := args.Attrs
		if header && args.Name == "" && headerStyle == "" {
			if _, set := attrs["bold"]; !set {
				attrs["bold"] = "true"
			}
		}
		if s, err = c.deriveStyle(s, attrs); err != nil {
			return nil, err
		}
		text, err := b.Interpolate(args.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrConfiguration, err)
		}
		row = append(row, content.StyledParagraph(s, text))
	}
	return row, nil
}

// image 加载图片。图片缺失或无法解码时记录警告并省略该块，排版继续。
func (c *compiler) image(args dsl.Args, width float64) (content.Block, error) {
	src := args.Text
	attrs := map[string]string{}
	if args.Name != "" {
		res, ok := c.images[args.Name]
		if !ok {
			return nil, fmt.Errorf("%w: 未定义的图片资源 %s", errs.ErrConfiguration, args.Name)
		}
		src = res.Src
		if res.Width != "" {
			attrs["width"] = res.Width
		}
		if res.Height != "" {
			attrs["height"] = res.Height
		}
	}
	for k, v := range args.Attrs {
		attrs[k] = v
	}
	src, err := c.text(src)
	if err != nil {
		return nil, err
	}

	img, err := c.loader.LoadImage(src)
	if err != nil {
		if errors.Is(err, errs.ErrAsset) {
			c.log.Warn("图片加载失败，已省略", "path", src, "error", err)
			return nil, nil
		}
		return nil, err
	}
	w, err := c.dimension(attrs, "width", width, 0)
	if err != nil {
		return nil, err
	}
	h, err := c.length(attrs, "height", 0)
	if err != nil {
		return nil, err
	}
	align, err := style.ParseAlignment(attrs["align"])
	if err != nil {
		return nil, err
	}
	w, h = img.Fit(w, h)
	return content.Image{Path: src, Width: w, Height: h, Align: align, Pixels: img.Pixels}, nil
}
