package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/platen/errs"
	"github.com/ByLCY/platen/style"
)

func TestParseMarkupRuns(t *testing.T) {
	runs := ParseMarkup(`Prepared for <b>Acme</b>  and <i>partners</i>.`)
	require.Len(t, runs, 5)
	assert.Equal(t, Run{Text: "Prepared for"}, runs[0])
	assert.Equal(t, Run{Text: " Acme", Bold: true}, runs[1])
	assert.Equal(t, Run{Text: " and"}, runs[2])
	assert.Equal(t, Run{Text: " partners", Italic: true}, runs[3])
	assert.Equal(t, ".", runs[4].Text)
}

func TestParseMarkupNestedAndColor(t *testing.T) {
	runs := ParseMarkup(`<b>Total: <font color="#c0392b">$4,900</font></b>`)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].Bold)
	assert.Nil(t, runs[0].Color)
	require.NotNil(t, runs[1].Color)
	assert.True(t, runs[1].Bold)
	assert.Equal(t, "#c0392b", runs[1].Color.Hex())
	assert.Equal(t, "Total: $4,900", PlainText(runs))
}

func TestParseMarkupBreaksAndWhitespace(t *testing.T) {
	runs := ParseMarkup("  first line <br/>\n  second   line  ")
	assert.Equal(t, "first line\nsecond line", PlainText(runs))

	runs = ParseMarkup("a<br>b")
	require.Len(t, runs, 3)
	assert.True(t, runs[1].Break)
}

func TestParseMarkupEntitiesAndUnknownTags(t *testing.T) {
	runs := ParseMarkup(`R&amp;D <span>team</span>`)
	require.Len(t, runs, 1)
	assert.Equal(t, "R&D team", runs[0].Text)
}

func TestParseMarkupNormalizesToNFC(t *testing.T) {
	runs := ParseMarkup("Cafe\u0301")
	require.Len(t, runs, 1)
	assert.Equal(t, "Caf\u00e9", runs[0].Text)
}

func TestParseMarkupEmpty(t *testing.T) {
	assert.Empty(t, ParseMarkup(""))
	assert.Empty(t, ParseMarkup("   "))
}

func TestNewParagraphResolvesStyle(t *testing.T) {
	reg := style.NewRegistry()
	require.NoError(t, reg.Register(style.Base("Body")))

	p, err := NewParagraph(reg, "Body", "hello <b>world</b>")
	require.NoError(t, err)
	assert.Equal(t, "Body", p.Style.Name)
	assert.Len(t, p.Runs, 2)

	_, err = NewParagraph(reg, "Missing", "x")
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestParagraphMarkupParsesLiteralText(t *testing.T) {
	p := Paragraph{Text: "a <i>b</i>", Style: style.Base("Body")}
	runs := p.Markup()
	require.Len(t, runs, 2)
	assert.True(t, runs[1].Italic)

	parsed := StyledParagraph(style.Base("Body"), "x")
	assert.Equal(t, parsed.Runs, parsed.Markup())
}

func TestAtomic(t *testing.T) {
	assert.True(t, Atomic(Spacer{Height: 10}))
	assert.True(t, Atomic(Box{}))
	assert.True(t, Atomic(Rule{Thickness: 1}))
	assert.True(t, Atomic(Image{Width: 1, Height: 1}))
	assert.False(t, Atomic(Table{}))
	assert.False(t, Atomic(PageBreak{}))
}

func TestValidate(t *testing.T) {
	body := StyledParagraph(style.Base("Body"), "x")

	cases := []struct {
		name  string
		block Block
		ok    bool
	}{
		{"paragraph", body, true},
		{"unstyled paragraph", Paragraph{Text: "x"}, false},
		{"negative spacer", Spacer{Height: -1}, false},
		{"zero rule", Rule{}, false},
		{"box", Box{Blocks: []Block{body, Spacer{Height: 4}}, Padding: 6}, true},
		{"box with table", Box{Blocks: []Block{Table{Rows: [][]Paragraph{{body}}}}}, false},
		{"box with bad child", Box{Blocks: []Block{Spacer{Height: -2}}}, false},
		{"empty table", Table{}, false},
		{"table zero column", Table{Rows: [][]Paragraph{{body}}, ColumnWidths: []float64{0}}, false},
		{"table", Table{Rows: [][]Paragraph{{body, body}}, ColumnWidths: []float64{100, 100}}, true},
		{"image", Image{Width: 10}, false},
		{"pagebreak", PageBreak{}, true},
		{"pointer", &Spacer{Height: 1}, false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.block)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrConfiguration)
		})
	}
}

func TestRuleFractionAndTableColumns(t *testing.T) {
	assert.Equal(t, 1.0, Rule{Thickness: 1}.Fraction())
	assert.Equal(t, 0.5, Rule{Thickness: 1, WidthFraction: 0.5}.Fraction())

	body := StyledParagraph(style.Base("Body"), "x")
	tbl := Table{Rows: [][]Paragraph{{body}, {body, body, body}}}
	assert.Equal(t, 3, tbl.Columns())
	tbl.ColumnWidths = []float64{10, 20}
	assert.Equal(t, 2, tbl.Columns())
}
