package canvasrenderer

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/platen/content"
	"github.com/ByLCY/platen/decorate"
	"github.com/ByLCY/platen/errs"
	"github.com/ByLCY/platen/layout"
	"github.com/ByLCY/platen/style"
)

func bodyFace(size float64) layout.Face {
	return layout.Face{Family: "Helvetica", Size: size}
}

func TestMeasurerScalesWithSize(t *testing.T) {
	r := New()

	w10 := r.TextWidth("hello world", bodyFace(10))
	w20 := r.TextWidth("hello world", bodyFace(20))
	require.Greater(t, w10, 0.0)
	assert.InDelta(t, 2*w10, w20, 0.01)

	bold := r.TextWidth("hello world", layout.Face{Family: "Helvetica", Bold: true, Size: 10})
	assert.Greater(t, bold, w10, "粗体应比常规体更宽")

	asc := r.Ascent(bodyFace(10))
	assert.Greater(t, asc, 5.0)
	assert.Less(t, asc, 12.0)

	assert.Equal(t, 0.0, r.TextWidth("", bodyFace(10)))
}

func TestMonoFamilyHasFixedAdvance(t *testing.T) {
	r := New()
	face := layout.Face{Family: "Courier", Size: 10}
	assert.InDelta(t, r.TextWidth("iiii", face), r.TextWidth("WWWW", face), 1e-6)
}

// 当第一行宽度与可用宽度恰好相等且后面紧跟一个显式换行时，不应产生额外的空行。
func TestNoBlankLineWhenEqualWidthThenBreak(t *testing.T) {
	r := New()
	s := style.Base("Body")
	s.SizePt = 12

	first := "SAMPLE-A"
	limit := r.TextWidth(first, bodyFace(12))
	require.Greater(t, limit, 0.0)

	res, err := layout.Compose(layout.Document{
		PageWidth:  limit + 20,
		PageHeight: 200,
		Margins:    layout.Margins{Top: 10, Right: 10, Bottom: 10, Left: 10},
		Blocks:     []content.Block{content.StyledParagraph(s, first+"<br/>SAMPLE-B")},
	}, layout.Options{Measurer: r})
	require.NoError(t, err)
	require.Len(t, res.Pages, 1)

	lines := res.Pages[0].Blocks[0].Lines
	require.Len(t, lines, 2)
	assert.Equal(t, first, lines[0].Spans[0].Text)
	assert.Equal(t, "SAMPLE-B", lines[1].Spans[0].Text)
}

func TestRenderProducesPDF(t *testing.T) {
	r := New()
	body := style.Base("Body")
	pixels := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range pixels.Pix {
		pixels.Pix[i] = 0x80
	}
	pixels.Set(0, 0, color.Black)

	doc := layout.Document{
		PageWidth:  612,
		PageHeight: 792,
		Margins:    layout.Margins{Top: 54, Right: 54, Bottom: 54, Left: 54},
		Spacing:    12,
		Blocks: []content.Block{
			content.StyledParagraph(body, "<b>Daily</b> briefing, page one"),
			content.Rule{Thickness: 1, Color: style.MustColor("#cccccc")},
			content.Box{
				Blocks:     []content.Block{content.StyledParagraph(body, "Boxed note")},
				Background: style.MustColor("#0b3d91"),
				TextColor:  &style.White,
				Padding:    6,
			},
			content.Table{
				Rows: [][]content.Paragraph{
					{content.StyledParagraph(body, "Region"), content.StyledParagraph(body, "Status")},
					{content.StyledParagraph(body, "North"), content.StyledParagraph(body, "Green")},
					{content.StyledParagraph(body, "South"), content.StyledParagraph(body, "Amber")},
				},
				HeaderRow:        true,
				Banded:           true,
				Padding:          4,
				HeaderBackground: style.RGB(230, 230, 230),
				BandBackground:   style.RGB(245, 245, 245),
				GridColor:        style.MustColor("#cccccc"),
				GridWidth:        0.5,
			},
			content.Image{Path: "dot.png", Width: 40, Height: 40, Pixels: pixels},
			content.PageBreak{},
			content.StyledParagraph(body, "Second page"),
		},
		Decorator: decorate.Chain(
			decorate.Watermark("DRAFT"),
			decorate.Border(18, 1, style.Black),
		),
		Meta: layout.DocumentMeta{Title: "Briefing", Author: "ops", Keywords: []string{"daily", "ops"}},
	}
	res, err := layout.Compose(doc, layout.Options{Measurer: r})
	require.NoError(t, err)
	require.Len(t, res.Pages, 2)

	data, err := r.Render(res)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "输出应以 %%PDF 开头")
	assert.Greater(t, len(data), 1000)
}

func TestRenderWithoutPagesFails(t *testing.T) {
	r := New()

	_, err := r.Render(&layout.Result{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrBackend)

	_, err = r.Render(nil)
	assert.ErrorIs(t, err, errs.ErrBackend)
}

func TestColorConversionKeepsAlpha(t *testing.T) {
	c := colorOf(style.MustColor("#0b3d91").WithAlpha(0.5))
	nrgba, ok := c.(color.NRGBA)
	require.True(t, ok)
	assert.Equal(t, uint8(0x0b), nrgba.R)
	assert.InDelta(t, 128, int(nrgba.A), 1)
}
