// Package compile 把 DSL 语法树编译为可排版的 layout.Document：
// 解析资源（颜色、样式、图片）、页面几何、元信息与叠加层，并把正文命令转换为内容块。
package compile

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ByLCY/platen/assets"
	"github.com/ByLCY/platen/binding"
	"github.com/ByLCY/platen/content"
	"github.com/ByLCY/platen/decorate"
	"github.com/ByLCY/platen/dsl"
	"github.com/ByLCY/platen/errs"
	"github.com/ByLCY/platen/layout"
	"github.com/ByLCY/platen/style"
)

// DefaultCreator 是未在 meta 中指定 creator 时写入的值。
const DefaultCreator = "platen"

// Defaults 是 DSL 未指定时使用的页面设置，通常来自配置文件。
type Defaults struct {
	PageSize  string
	Landscape bool
	Margins   layout.Margins
	Spacing   float64
	// Decorator 与 DSL 的 overlay 叠加，先绘制。
	Decorator decorate.Func
}

// StandardDefaults 返回 Letter 纸张、四边 0.75in、块间距 12pt 的默认设置。
func StandardDefaults() Defaults {
	return Defaults{
		PageSize: "letter",
		Margins:  layout.Margins{Top: 54, Right: 54, Bottom: 54, Left: 54},
		Spacing:  12,
	}
}

// Options 控制一次编译。
type Options struct {
	// Data 是 ${...} 占位符的数据源，通常来自 JSON 文件。
	Data any
	// StrictBinding 为 true 时，无法解析且没有默认值的占位符会使编译失败。
	StrictBinding bool
	// Loader 为空时相对当前目录加载图片。
	Loader   *assets.Loader
	Logger   *slog.Logger
	Defaults Defaults
}

type compiler struct {
	opts   Options
	log    *slog.Logger
	binder *binding.Binder
	loader *assets.Loader
	reg    *style.Registry
	colors map[string]style.Color
	images map[string]imageResource
	// leading 记录每个样式声明（或继承）的行距写法。
	leading map[string]layout.LeadingSpec
}

// Compile 编译 DSL 文档。返回的 Document.Styles 尚未冻结，排版开始时由 layout 冻结。
func Compile(doc *dsl.Document, opts Options) (layout.Document, error) {
	if doc == nil {
		return layout.Document{}, fmt.Errorf("%w: 文档为空", errs.ErrConfiguration)
	}
	c := &compiler{
		opts:    opts,
		log:     opts.Logger,
		binder:  &binding.Binder{Data: opts.Data, Strict: opts.StrictBinding},
		loader:  opts.Loader,
		reg:     style.NewRegistry(),
		colors:  map[string]style.Color{},
		images:  map[string]imageResource{},
		leading: map[string]layout.LeadingSpec{},
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	if c.loader == nil {
		c.loader = assets.NewLoader(".")
	}
	if c.opts.Defaults.PageSize == "" {
		c.opts.Defaults.PageSize = StandardDefaults().PageSize
	}

	if err := c.collectResources(doc); err != nil {
		return layout.Document{}, err
	}

	pages := doc.Pages()
	if len(pages) == 0 {
		return layout.Document{}, fmt.Errorf("%w: 文档缺少 page 段", errs.ErrConfiguration)
	}
	out, err := c.pageGeometry(pages[0].Spec)
	if err != nil {
		return layout.Document{}, err
	}
	out.Styles = c.reg

	meta, err := c.collectMeta(doc)
	if err != nil {
		return layout.Document{}, err
	}
	out.Meta = meta

	overlay, err := c.collectOverlay(doc)
	if err != nil {
		return layout.Document{}, err
	}
	out.Decorator = decorate.Chain(c.opts.Defaults.Decorator, overlay)

	for i, page := range pages {
		if i > 0 {
			geo, err := c.pageGeometry(page.Spec)
			if err != nil {
				return layout.Document{}, err
			}
			if geo.PageWidth != out.PageWidth || geo.PageHeight != out.PageHeight {
				return layout.Document{}, fmt.Errorf("%w: 第 %d 个 page 段的纸张尺寸与首个 page 段不一致", errs.ErrConfiguration, i+1)
			}
			out.Blocks = append(out.Blocks, content.PageBreak{})
		}
		blocks, err := c.flow(page.Block, out.UsableWidth())
		if err != nil {
			return layout.Document{}, err
		}
		out.Blocks = append(out.Blocks, blocks...)
	}
	c.log.Debug("编译完成", "blocks", len(out.Blocks), "styles", len(c.reg.Names()))
	return out, nil
}

// pageGeometry 解析 page 段头：纸张、方向、margin 后的 1 到 4 个长度以及 spacing。
func (c *compiler) pageGeometry(spec dsl.PageSpec) (layout.Document, error) {
	def := c.opts.Defaults
	size := spec.Size
	landscape := false
	if strings.EqualFold(size, "default") {
		size = def.PageSize
		landscape = def.Landscape
	}
	doc := layout.Document{Margins: def.Margins, Spacing: def.Spacing}

	params := spec.Params
	for i := 0; i < len(params); i++ {
		switch strings.ToLower(params[i].Value) {
		case "landscape":
			landscape = true
		case "portrait":
			landscape = false
		case "margin":
			var vals []string
			for j := i + 1; j < len(params) && len(vals) < 4 && params[j].Type == "Number"; j++ {
				vals = append(vals, params[j].Value)
			}
			m, err := layout.ParseMargins(vals)
			if err != nil {
				return doc, fmt.Errorf("page margin: %w", err)
			}
			doc.Margins = m
			i += len(vals)
		case "spacing":
			if i+1 >= len(params) {
				return doc, fmt.Errorf("%w: page spacing 缺少取值", errs.ErrConfiguration)
			}
			v, err := layout.ParseLength(params[i+1].Value)
			if err != nil {
				return doc, fmt.Errorf("page spacing: %w", err)
			}
			doc.Spacing = v
			i++
		default:
			return doc, fmt.Errorf("%w: 无法识别的页面参数 %q", errs.ErrConfiguration, params[i].Value)
		}
	}

	w, h, err := layout.PageSize(size, landscape)
	if err != nil {
		return doc, err
	}
	doc.PageWidth = w
	doc.PageHeight = h
	return doc, nil
}

func (c *compiler) collectMeta(doc *dsl.Document) (layout.DocumentMeta, error) {
	meta := layout.DocumentMeta{Creator: DefaultCreator}
	for key, val := range doc.Meta() {
		var err error
		switch key {
		case "title":
			meta.Title, err = c.text(dsl.ValueString(val))
		case "author":
			meta.Author, err = c.text(dsl.ValueString(val))
		case "subject":
			meta.Subject, err = c.text(dsl.ValueString(val))
		case "creator":
			meta.Creator, err = c.text(dsl.ValueString(val))
		case "keywords":
			meta.Keywords = nil
			for _, kw := range dsl.ValueStrings(val) {
				s, kerr := c.text(kw)
				if kerr != nil {
					err = kerr
					break
				}
				meta.Keywords = append(meta.Keywords, s)
			}
		}
		if err != nil {
			return meta, fmt.Errorf("meta %s: %w", key, err)
		}
	}
	return meta, nil
}

// collectOverlay 把 overlay 段中的 watermark 与 border 转换为装饰器，按声明顺序绘制。
func (c *compiler) collectOverlay(doc *dsl.Document) (decorate.Func, error) {
	var fns []decorate.Func
	for _, item := range doc.Decorations() {
		switch {
		case item.Watermark != nil:
			wm := item.Watermark
			text, err := c.text(string(wm.Text))
			if err != nil {
				return nil, err
			}
			opts, err := c.watermarkOptions(wm.Attrs())
			if err != nil {
				return nil, fmt.Errorf("第 %d 行 watermark: %w", wm.Pos.Line, err)
			}
			fns = append(fns, decorate.Watermark(text, opts...))
		case item.Border != nil:
			fn, err := c.border(item.Border.Attrs())
			if err != nil {
				return nil, fmt.Errorf("第 %d 行 border: %w", item.Border.Pos.Line, err)
			}
			fns = append(fns, fn)
		}
	}
	return decorate.Chain(fns...), nil
}

func (c *compiler) border(attrs map[string]string) (decorate.Func, error) {
	inset, err := c.length(attrs, "inset", 18)
	if err != nil {
		return nil, err
	}
	width, err := c.length(attrs, "width", 1)
	if err != nil {
		return nil, err
	}
	col, err := c.colorAttr(attrs, "color", style.Black)
	if err != nil {
		return nil, err
	}
	return decorate.Border(inset, width, col), nil
}

func (c *compiler) watermarkOptions(attrs map[string]string) ([]decorate.WatermarkOption, error) {
	var opts []decorate.WatermarkOption
	if v, ok := attrs["size"]; ok {
		f, err := layout.ParseLength(v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, decorate.WithSize(f))
	}
	if v, ok := attrs["angle"]; ok {
		f, err := parseFloat(v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, decorate.WithAngle(f))
	}
	if v, ok := attrs["opacity"]; ok {
		f, err := parseFloat(v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, decorate.WithOpacity(f))
	}
	if v, ok := attrs["color"]; ok {
		col, err := c.color(v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, decorate.WithColor(col))
	}
	if v, ok := attrs["font"]; ok {
		opts = append(opts, decorate.WithFont(v, true))
	}
	return opts, nil
}

// text 对文本做数据插值。
func (c *compiler) text(s string) (string, error) {
	out, err := c.binder.Interpolate(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errs.ErrConfiguration, err)
	}
	return out, nil
}
