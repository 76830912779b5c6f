package fpdfrenderer

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

func TestMeasurer(t *testing.T) {
	r := New()
	face := layout.Face{Family: "Helvetica", Size: 10}

	w := r.TextWidth("hello world", face)
	require.Greater(t, w, 0.0)
	assert.InDelta(t, 2*w, r.TextWidth("hello world", layout.Face{Family: "Helvetica", Size: 20}), 0.01)
	assert.Equal(t, 0.0, r.TextWidth("", face))

	mono := layout.Face{Family: "Courier", Size: 10}
	assert.InDelta(t, r.TextWidth("iiii", mono), r.TextWidth("WWWW", mono), 1e-6)

	asc := r.Ascent(face)
	assert.Greater(t, asc, 5.0)
	assert.Less(t, asc, 12.0)
}

func TestRenderProducesPDF(t *testing.T) {
	r := New()
	body := style.Base("Body")
	pixels := image.NewRGBA(image.Rect(0, 0, 2, 2))
	pixels.Set(1, 1, color.RGBA{R: 255, A: 255})

	res, err := layout.Compose(layout.Document{
		PageWidth:  595.28,
		PageHeight: 841.89,
		Margins:    layout.Margins{Top: 54, Right: 54, Bottom: 54, Left: 54},
		Spacing:    12,
		Blocks: []content.Block{
			content.StyledParagraph(body, "Status <i>update</i>"),
			content.Rule{Thickness: 2, Color: style.MustColor("#0b3d91"), WidthFraction: 0.5},
			content.Table{
				Rows: [][]content.Paragraph{
					{content.StyledParagraph(body, "Key"), content.StyledParagraph(body, "Value")},
					{content.StyledParagraph(body, "uptime"), content.StyledParagraph(body, "99.9%")},
				},
				HeaderRow:        true,
				Padding:          4,
				HeaderBackground: style.RGB(230, 230, 230),
				GridColor:        style.Black,
				GridWidth:        0.5,
			},
			content.Image{Path: "red.png", Width: 20, Height: 20, Pixels: pixels},
		},
		Decorator: decorate.Chain(decorate.Watermark("CONFIDENTIAL"), decorate.Border(18, 1, style.Black)),
		Meta:      layout.DocumentMeta{Title: "Status", Creator: "platen"},
	}, layout.Options{Measurer: r})
	require.NoError(t, err)

	data, err := r.Render(res)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderWithoutPagesFails(t *testing.T) {
	_, err := New().Render(&layout.Result{})
	assert.ErrorIs(t, err, errs.ErrBackend)
}
