package compile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ByLCY/platen/dsl"
	"github.com/ByLCY/platen/errs"
	"github.com/ByLCY/platen/layout"
	"github.com/ByLCY/platen/style"
)

// DefaultStyle 是未指定样式名的段落与单元格使用的样式，必须在 resources 中声明。
const DefaultStyle = "Body"

type imageResource struct {
	Src    string
	Width  string
	Height string
}

// collectResources 先收集全部颜色，再批量注册样式（样式可以引用颜色名），最后登记图片。
func (c *compiler) collectResources(doc *dsl.Document) error {
	var styles []*dsl.StyleDecl
	for _, res := range doc.Resources() {
		switch {
		case res.Color != nil:
			col, err := style.ParseColor(res.Color.Value)
			if err != nil {
				return fmt.Errorf("%w: 第 %d 行: %v", errs.ErrConfiguration, res.Color.Pos.Line, err)
			}
			c.colors[res.Color.Name] = col
		case res.Style != nil:
			styles = append(styles, res.Style)
		case res.Image != nil:
			attrs := res.Image.Attrs()
			src := string(res.Image.Src)
			if v, ok := attrs["src"]; ok {
				src = v
			}
			if src == "" {
				return fmt.Errorf("%w: 第 %d 行: image %s 缺少 src", errs.ErrConfiguration, res.Image.Pos.Line, res.Image.Name)
			}
			c.images[res.Image.Name] = imageResource{Src: src, Width: attrs["width"], Height: attrs["height"]}
		}
	}

	defs := make([]style.Definition, 0, len(styles))
	for _, decl := range styles {
		defs = append(defs, c.styleDefinition(decl))
	}
	return c.reg.RegisterAll(defs)
}

// styleDefinition 把 `style Name [extends Parent] { key: value ... }` 转换为注册表定义。
func (c *compiler) styleDefinition(decl *dsl.StyleDecl) style.Definition {
	props := map[string]string{}
	for key, val := range decl.Body.Assignments() {
		if s := dsl.ValueString(val); s != "" {
			props[key] = s
		}
	}
	name, parent := decl.Name, decl.Extends
	apply := func(s *style.Style) error {
		if err := c.applyProps(s, props); err != nil {
			return err
		}
		// 倍数行距随继承链传递，子样式改字号时按新字号重新计算。
		spec, ok := c.leading[parent]
		if v, own := props["leading"]; own {
			spec, _ = layout.ParseLeading(v)
			ok = true
		}
		if ok {
			s.LeadingPt = spec.Resolve(s.SizePt)
			c.leading[name] = spec
		}
		return nil
	}
	return style.Definition{Name: name, Extends: parent, Apply: apply}
}

// InlineSuffix 标记由行内属性派生出的样式名，派生样式不会与注册表中的同名样式混淆。
const InlineSuffix = "#inline"

// deriveStyle 在已解析样式上应用行内属性，返回改名后的副本；没有属性时原样返回。
// 字号改变时按原样式声明的行距写法重新计算行距。
func (c *compiler) deriveStyle(base style.Style, attrs map[string]string) (style.Style, error) {
	if len(attrs) == 0 {
		return base, nil
	}
	s := base
	if err := c.applyProps(&s, attrs); err != nil {
		return style.Style{}, err
	}
	if _, own := attrs["leading"]; !own {
		if spec, ok := c.leading[base.Name]; ok {
			s.LeadingPt = spec.Resolve(s.SizePt)
		}
	}
	s.Name = base.Name + InlineSuffix
	return s, nil
}

// applyProps 把属性写入样式。字号先于其他属性处理，倍数行距依赖最终字号。
func (c *compiler) applyProps(s *style.Style, props map[string]string) error {
	if v, ok := props["size"]; ok {
		f, err := layout.ParseLength(v)
		if err != nil {
			return err
		}
		s.SizePt = f
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		v := props[key]
		var err error
		switch key {
		case "size":
		case "font", "family":
			s.FontFamily = v
		case "leading":
			var spec layout.LeadingSpec
			if spec, err = layout.ParseLeading(v); err == nil {
				s.LeadingPt = spec.Resolve(s.SizePt)
			}
		case "weight":
			s.Weight, err = style.ParseWeight(v)
		case "bold":
			var b bool
			if b, err = strconv.ParseBool(v); err == nil {
				s.Weight = style.WeightRegular
				if b {
					s.Weight = style.WeightBold
				}
			}
		case "italic":
			s.Italic, err = strconv.ParseBool(v)
		case "color":
			s.Color, err = c.color(v)
		case "align":
			s.Alignment, err = style.ParseAlignment(v)
		case "indent", "left-indent":
			s.LeftIndent, err = layout.ParseLength(v)
		case "space-before":
			s.SpaceBefore, err = layout.ParseLength(v)
		case "space-after":
			s.SpaceAfter, err = layout.ParseLength(v)
		default:
			err = fmt.Errorf("%w: 未知的样式属性 %s", errs.ErrConfiguration, key)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// color 解析颜色字面量或 resources 中声明的颜色名。
func (c *compiler) color(v string) (style.Color, error) {
	if col, ok := c.colors[v]; ok {
		return col, nil
	}
	if strings.HasPrefix(v, "#") {
		return style.ParseColor(v)
	}
	switch strings.ToLower(v) {
	case "black":
		return style.Black, nil
	case "white":
		return style.White, nil
	}
	return style.Color{}, fmt.Errorf("%w: 未定义的颜色 %s", errs.ErrConfiguration, v)
}

func (c *compiler) colorAttr(attrs map[string]string, key string, def style.Color) (style.Color, error) {
	v, ok := attrs[key]
	if !ok {
		return def, nil
	}
	col, err := c.color(v)
	if err != nil {
		return style.Color{}, fmt.Errorf("%s: %w", key, err)
	}
	return col, nil
}

func (c *compiler) length(attrs map[string]string, key string, def float64) (float64, error) {
	v, ok := attrs[key]
	if !ok {
		return def, nil
	}
	f, err := layout.ParseLength(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// dimension 与 length 相同，但允许相对 reference 的百分比。
func (c *compiler) dimension(attrs map[string]string, key string, reference, def float64) (float64, error) {
	v, ok := attrs[key]
	if !ok {
		return def, nil
	}
	f, err := layout.ParseDimension(v, reference)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func (c *compiler) boolAttr(attrs map[string]string, key string) (bool, error) {
	v, ok := attrs[key]
	if !ok {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s 需要 true 或 false", errs.ErrConfiguration, key)
	}
	return b, nil
}

func parseFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: 无法解析数值 %q", errs.ErrConfiguration, v)
	}
	return f, nil
}
