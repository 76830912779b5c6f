package layout

import (
	"strings"
	"unicode"

	"github.com/ByLCY/platen/content"
	"github.com/ByLCY/platen/style"
)

const epsilon = 1e-6

// segment 是一个词内格式一致的片段，例如 "<b>Acme</b>." 中的 "Acme" 与 "."。
type segment struct {
	text  string
	face  Face
	color style.Color
	width float64
}

// token 是折行的最小单位：一个完整的词（可能跨多个 Run）、一段空白或一次强制换行。
type token struct {
	segs    []segment
	space   bool
	newline bool
	width   float64
}

func runFace(s style.Style, r content.Run) Face {
	return Face{
		Family: s.FontFamily,
		Bold:   s.Bold() || r.Bold,
		Italic: s.Italic || r.Italic,
		Size:   s.SizePt,
	}
}

// tokenizeRuns 把 Run 序列切分为词与空白，相邻 Run 之间没有空白时合并为同一个词。
func tokenizeRuns(runs []content.Run, s style.Style, override *style.Color, m Measurer) []token {
	var tokens []token
	for _, r := range runs {
		if r.Break {
			tokens = append(tokens, token{newline: true})
			continue
		}
		face := runFace(s, r)
		col := s.Color
		if override != nil {
			col = *override
		}
		if r.Color != nil {
			col = *r.Color
		}
		for _, chunk := range splitSpaces(r.Text) {
			isSpace := strings.TrimFunc(chunk, unicode.IsSpace) == ""
			seg := segment{text: chunk, face: face, color: col, width: m.TextWidth(chunk, face)}
			if isSpace {
				seg.text = " "
				seg.width = m.TextWidth(" ", face)
				tokens = append(tokens, token{segs: []segment{seg}, space: true, width: seg.width})
				continue
			}
			if n := len(tokens); n > 0 && !tokens[n-1].space && !tokens[n-1].newline {
				tokens[n-1].segs = append(tokens[n-1].segs, seg)
				tokens[n-1].width += seg.width
				continue
			}
			tokens = append(tokens, token{segs: []segment{seg}, width: seg.width})
		}
	}
	return tokens
}

// splitSpaces 把文本切分为交替出现的空白段与非空白段。
func splitSpaces(s string) []string {
	var parts []string
	var b strings.Builder
	lastWasSpace := false
	for _, r := range s {
		isSpace := unicode.IsSpace(r)
		if b.Len() > 0 && lastWasSpace != isSpace {
			parts = append(parts, b.String())
			b.Reset()
		}
		lastWasSpace = isSpace
		b.WriteRune(r)
	}
	if b.Len() > 0 {
		parts = append(parts, b.String())
	}
	return parts
}

// splitWord 把超出行宽的词按字符拆成若干段，每段宽度不超过 limit（单个字符本身超宽时除外）。
func splitWord(tok token, limit float64, m Measurer) []token {
	var out []token
	var cur token
	push := func() {
		if len(cur.segs) > 0 {
			out = append(out, cur)
		}
		cur = token{}
	}
	for _, seg := range tok.segs {
		for _, r := range seg.text {
			ch := string(r)
			w := m.TextWidth(ch, seg.face)
			if cur.width > 0 && cur.width+w > limit+epsilon {
				push()
			}
			n := len(cur.segs)
			if n > 0 && cur.segs[n-1].face == seg.face && cur.segs[n-1].color == seg.color {
				cur.segs[n-1].text += ch
				cur.segs[n-1].width += w
			} else {
				cur.segs = append(cur.segs, segment{text: ch, face: seg.face, color: seg.color, width: w})
			}
			cur.width += w
		}
	}
	push()
	return out
}

type wrappedLine struct {
	tokens []token
	width  float64
	// last 为 true 表示段落的最后一行或强制换行前的一行，两端对齐时不拉伸。
	last bool
}

// greedyWrap 使用贪心算法折行：优先在空白处断开，单词超出行宽时在词内拆分。
func greedyWrap(tokens []token, limit float64, m Measurer) []wrappedLine {
	var lines []wrappedLine
	var cur wrappedLine

	emit := func(last bool) {
		for n := len(cur.tokens); n > 0 && cur.tokens[n-1].space; n = len(cur.tokens) {
			cur.width -= cur.tokens[n-1].width
			cur.tokens = cur.tokens[:n-1]
		}
		cur.last = last
		lines = append(lines, cur)
		cur = wrappedLine{}
	}
	appendToken := func(t token) {
		cur.tokens = append(cur.tokens, t)
		cur.width += t.width
	}

	for _, tok := range tokens {
		switch {
		case tok.newline:
			emit(true)
		case tok.space:
			if len(cur.tokens) == 0 {
				continue
			}
			appendToken(tok)
		default:
			if len(cur.tokens) > 0 && cur.width+tok.width > limit+epsilon {
				emit(false)
			}
			if tok.width <= limit+epsilon {
				appendToken(tok)
				continue
			}
			for _, chunk := range splitWord(tok, limit, m) {
				if len(cur.tokens) > 0 && cur.width+chunk.width > limit+epsilon {
					emit(false)
				}
				appendToken(chunk)
			}
		}
	}
	if len(cur.tokens) > 0 {
		emit(true)
	}
	return lines
}

// layoutParagraph 在给定宽度下折行并计算段落高度：
// SpaceBefore + 行数 × 行距 + SpaceAfter。override 非空时替换样式的文字颜色。
func layoutParagraph(p content.Paragraph, width float64, override *style.Color, m Measurer) ([]TextLine, float64) {
	s := p.Style
	avail := width - s.LeftIndent
	if avail <= 0 {
		avail = width
	}
	leading := s.Leading()
	wrapped := greedyWrap(tokenizeRuns(p.Markup(), s, override, m), avail, m)

	baseFace := Face{Family: s.FontFamily, Bold: s.Bold(), Italic: s.Italic, Size: s.SizePt}
	ascent := m.Ascent(baseFace)
	lines := make([]TextLine, 0, len(wrapped))
	for i, wl := range wrapped {
		top := s.SpaceBefore + float64(i)*leading
		lines = append(lines, TextLine{
			Top:      top,
			Baseline: top + (leading-s.SizePt)/2 + ascent,
			Height:   leading,
			Width:    wl.width,
			Spans:    placeSpans(wl, s.Alignment, avail, s.LeftIndent),
		})
	}
	height := s.SpaceBefore + float64(len(lines))*leading + s.SpaceAfter
	return lines, height
}

// placeSpans 按对齐方式计算每个片段的水平位置。两端对齐时把剩余宽度平均分配到词间空白。
func placeSpans(wl wrappedLine, align style.Alignment, avail, indent float64) []Span {
	leftover := avail - wl.width
	if leftover < 0 {
		leftover = 0
	}
	x := indent
	extra := 0.0
	justify := false
	switch align {
	case style.AlignCenter:
		x += leftover / 2
	case style.AlignRight:
		x += leftover
	case style.AlignJustify:
		if !wl.last {
			spaces := 0
			for _, t := range wl.tokens {
				if t.space {
					spaces++
				}
			}
			if spaces > 0 {
				extra = leftover / float64(spaces)
				justify = true
			}
		}
	}

	var spans []Span
	for _, t := range wl.tokens {
		if t.space && justify {
			x += t.width + extra
			continue
		}
		for _, seg := range t.segs {
			if n := len(spans); n > 0 && !justify {
				prev := &spans[n-1]
				if prev.Face == seg.face && prev.Color == seg.color {
					prev.Text += seg.text
					prev.Width += seg.width
					x += seg.width
					continue
				}
			}
			spans = append(spans, Span{Text: seg.text, X: x, Width: seg.width, Face: seg.face, Color: seg.color})
			x += seg.width
		}
	}
	return spans
}
