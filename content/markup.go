package content

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/platen/style"
)

// Run 是一段格式一致的文本。Break 为 true 时表示强制换行，Text 为空。
type Run struct {
	Text   string       `json:"text,omitempty"`
	Bold   bool         `json:"bold,omitempty"`
	Italic bool         `json:"italic,omitempty"`
	Color  *style.Color `json:"color,omitempty"`
	Break  bool         `json:"break,omitempty"`
}

func (r Run) sameFormat(o Run) bool {
	if r.Bold != o.Bold || r.Italic != o.Italic || r.Break || o.Break {
		return false
	}
	switch {
	case r.Color == nil && o.Color == nil:
		return true
	case r.Color == nil || o.Color == nil:
		return false
	default:
		return *r.Color == *o.Color
	}
}

type format struct {
	tag    string
	bold   bool
	italic bool
	color  *style.Color
}

// ParseMarkup 把带有内联标记的文本解析为 Run 序列。
//
// 支持 <b>/<strong>、<i>/<em>、<font color="#rrggbb"> 与 <br/>，其余标签忽略但保留其中的文字。
// 连续空白折叠为一个空格，段首段尾与换行两侧的空白被去掉；文字统一为 NFC 形式。
func ParseMarkup(text string) []Run {
	z := html.NewTokenizer(strings.NewReader(text))
	stack := []format{{}}
	var runs []Run
	pendingSpace := false
	lineStart := true

	emit := func(s string, f format) {
		var b strings.Builder
		for _, r := range s {
			if unicode.IsSpace(r) {
				pendingSpace = true
				continue
			}
			if pendingSpace && !lineStart {
				b.WriteByte(' ')
			}
			pendingSpace = false
			lineStart = false
			b.WriteRune(r)
		}
		if b.Len() == 0 {
			return
		}
		runs = append(runs, Run{
			Text:   norm.NFC.String(b.String()),
			Bold:   f.bold,
			Italic: f.italic,
			Color:  f.color,
		})
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// strings.Reader 只会以 io.EOF 结束。
			return mergeRuns(runs)
		case html.TextToken:
			emit(string(z.Text()), stack[len(stack)-1])
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if tag == "br" {
				runs = append(runs, Run{Break: true})
				pendingSpace = false
				lineStart = true
				continue
			}
			if tt == html.SelfClosingTagToken {
				continue
			}
			next := stack[len(stack)-1]
			next.tag = tag
			switch tag {
			case "b", "strong":
				next.bold = true
			case "i", "em":
				next.italic = true
			case "font":
				for hasAttr {
					var key, val []byte
					key, val, hasAttr = z.TagAttr()
					if string(key) != "color" {
						continue
					}
					if c, err := style.ParseColor(string(val)); err == nil {
						next.color = &c
					}
				}
			}
			stack = append(stack, next)
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].tag == tag {
					stack = stack[:i]
					break
				}
			}
		}
	}
}

func mergeRuns(runs []Run) []Run {
	out := make([]Run, 0, len(runs))
	for _, r := range runs {
		if n := len(out); n > 0 && out[n-1].sameFormat(r) {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

// PlainText 去掉格式，返回 Run 序列中的文字，强制换行以 "\n" 表示。
func PlainText(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		if r.Break {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(r.Text)
	}
	return b.String()
}
