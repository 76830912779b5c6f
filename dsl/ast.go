package dsl

import (
	"strings"
)

// Pages returns the page sections in source order.
func (d *Document) Pages() []*PageSection {
	var out []*PageSection
	for _, section := range d.Sections {
		if section.Page != nil {
			out = append(out, section.Page)
		}
	}
	return out
}

// Meta merges the assignments of every meta section; later sections win.
func (d *Document) Meta() map[string]*Value {
	out := map[string]*Value{}
	for _, section := range d.Sections {
		for key, val := range section.Meta.Assignments() {
			out[key] = val
		}
	}
	return out
}

// Resources returns the resource declarations of every resources section.
func (d *Document) Resources() []*Resource {
	var out []*Resource
	for _, section := range d.Sections {
		if section.Resources != nil {
			out = append(out, section.Resources.Decls...)
		}
	}
	return out
}

// Decorations returns the overlay items of every overlay section.
func (d *Document) Decorations() []*Decoration {
	var out []*Decoration
	for _, section := range d.Sections {
		if section.Overlay != nil {
			out = append(out, section.Overlay.Items...)
		}
	}
	return out
}

// Assignments collects the key/value assignments of a block (last one wins).
func (b *Block) Assignments() map[string]*Value {
	out := map[string]*Value{}
	if b == nil {
		return out
	}
	for _, stmt := range b.Statements {
		if stmt.Assignment != nil {
			out[strings.ToLower(stmt.Assignment.Key)] = stmt.Assignment.Value
		}
	}
	return out
}

// Text concatenates the string literals of a block, one per line.
func (b *Block) Text() string {
	if b == nil {
		return ""
	}
	var parts []string
	for _, stmt := range b.Statements {
		if stmt.Text != nil {
			parts = append(parts, string(stmt.Text.Value))
		}
	}
	return strings.Join(parts, "\n")
}

// Attrs 返回表格属性：段头的 key value 对与表格体内的赋值，赋值优先。
func (t *Table) Attrs() map[string]string {
	out := pairs(t.Params)
	for _, item := range t.Items {
		if item.Assignment != nil {
			if s := ValueString(item.Assignment.Value); s != "" {
				out[strings.ToLower(item.Assignment.Key)] = s
			}
		}
	}
	return out
}

// Attrs returns the row's key/value pairs (eg. `row style Note { ... }`).
func (r *TableRow) Attrs() map[string]string { return pairs(r.Params) }

// ParseArgs interprets the cell arguments; a leading Ident is the style name.
func (c *Cell) ParseArgs() Args { return parseArgs(c.Args, c.Body, true) }

// Attrs 合并图片资源的参数与声明体内的赋值。
func (i *ImageDecl) Attrs() map[string]string { return parseArgs(i.Params, i.Body, false).Attrs }

// Attrs 合并水印参数与声明体内的赋值。
func (w *Watermark) Attrs() map[string]string { return parseArgs(w.Params, w.Body, false).Attrs }

// Attrs 合并边框参数与声明体内的赋值。
func (b *Border) Attrs() map[string]string { return parseArgs(b.Params, b.Body, false).Attrs }

// Args splits command arguments into an optional leading name (an Ident,
// eg. a style or resource name), an optional string literal and the
// remaining key/value pairs. Assignments in the command body are merged
// into the attributes and take precedence over inline pairs.
//
//	paragraph Title "Hello" align center
//	box { background: #0b3d91; padding: 12pt }
type Args struct {
	Name  string
	Text  string
	Attrs map[string]string
}

// ParseArgs interprets the command arguments. allowName controls whether a
// leading Ident that is not a known attribute key is treated as a name.
func (c *Command) ParseArgs(allowName bool) Args {
	return parseArgs(c.Args, c.Block, allowName)
}

func parseArgs(args []*Lexeme, body *Block, allowName bool) Args {
	out := Args{}
	if allowName && len(args) > 0 && args[0].Type == "Ident" && !isKnownKey(args[0].Value) {
		out.Name = args[0].Value
		args = args[1:]
	}
	if len(args) > 0 && args[0].Type == "String" {
		out.Text = args[0].Value
		args = args[1:]
	}
	out.Attrs = pairs(args)
	for key, val := range body.Assignments() {
		if s := ValueString(val); s != "" {
			out.Attrs[key] = s
		}
	}
	if out.Text == "" {
		out.Text = body.Text()
	}
	return out
}

// pairs 把 `key value key value` 形式的参数转换为属性表，落单的末尾参数被忽略。
func pairs(args []*Lexeme) map[string]string {
	out := map[string]string{}
	for i := 0; i+1 < len(args); i += 2 {
		out[strings.ToLower(args[i].Value)] = args[i+1].Value
	}
	return out
}

// knownKeys 是命令的属性名；以这些词开头的参数不会被当作名称。
var knownKeys = map[string]bool{
	"align": true, "background": true, "color": true, "padding": true,
	"width": true, "height": true, "thickness": true, "textcolor": true,
	"size": true, "opacity": true, "angle": true, "inset": true, "font": true,
	"style": true,
}

func isKnownKey(v string) bool { return knownKeys[strings.ToLower(v)] }

// ValueString renders scalar values as text; arrays are joined with spaces.
func ValueString(val *Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Array != nil:
		return strings.Join(ValueStrings(val), " ")
	case val.Expr != nil:
		var builder strings.Builder
		for _, part := range val.Expr.Parts {
			builder.WriteString(part.Value)
		}
		return builder.String()
	default:
		return ""
	}
}

// ValueStrings flattens an array value; a scalar becomes a one-element slice.
func ValueStrings(val *Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := ValueString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := ValueString(val); s != "" {
		return []string{s}
	}
	return nil
}
