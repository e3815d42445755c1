package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInline(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Inline
	}{
		{
			name: "plain",
			in:   "Plants make food.",
			want: []Inline{{Kind: Text, Text: "Plants make food."}},
		},
		{
			name: "bold pair",
			in:   "**Photosynthesis** is a process.",
			want: []Inline{
				{Kind: Bold, Text: "Photosynthesis"},
				{Kind: Text, Text: " is a process."},
			},
		},
		{
			name: "two pairs",
			in:   "a **b** c **d**",
			want: []Inline{
				{Kind: Text, Text: "a "},
				{Kind: Bold, Text: "b"},
				{Kind: Text, Text: " c "},
				{Kind: Bold, Text: "d"},
			},
		},
		{
			name: "unpaired marker stays literal",
			in:   "5 ** 2 is power",
			want: []Inline{{Kind: Text, Text: "5 ** 2 is power"}},
		},
		{
			name: "third marker unpaired",
			in:   "**x** and ** y",
			want: []Inline{
				{Kind: Bold, Text: "x"},
				{Kind: Text, Text: " and ** y"},
			},
		},
		{
			name: "empty pair literal",
			in:   "****",
			want: []Inline{{Kind: Text, Text: "****"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseInline(tt.in))
		})
	}
}

func TestParseBlocks(t *testing.T) {
	doc := Parse("Intro line\nsecond line\n\n- first\n* second\n• third\n\nClosing **note**.")

	require.Len(t, doc.Blocks, 5)

	assert.Equal(t, Paragraph, doc.Blocks[0].Kind)
	assert.Equal(t, []Inline{
		{Kind: Text, Text: "Intro line"},
		{Kind: Break},
		{Kind: Text, Text: "second line"},
	}, doc.Blocks[0].Inlines)

	for i, want := range []string{"first", "second", "third"} {
		blk := doc.Blocks[i+1]
		assert.Equal(t, Bullet, blk.Kind)
		assert.Equal(t, []Inline{{Kind: Text, Text: want}}, blk.Inlines)
	}

	assert.Equal(t, Paragraph, doc.Blocks[4].Kind)
	assert.Equal(t, []Inline{
		{Kind: Text, Text: "Closing "},
		{Kind: Bold, Text: "note"},
		{Kind: Text, Text: "."},
	}, doc.Blocks[4].Inlines)
}

func TestParseEmptyAndCRLF(t *testing.T) {
	assert.Empty(t, Parse("").Blocks)
	assert.Empty(t, Parse(" \n\n ").Blocks)

	doc := Parse("a\r\n\r\nb")
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, "a\nb", doc.PlainText())
}

func TestHTMLEscapesEverything(t *testing.T) {
	doc := Parse("<script>alert(1)</script> **<b>x</b>**\n- a & b\n- c\n\nend")
	got := HTML(doc)

	assert.Equal(t,
		"<p>&lt;script&gt;alert(1)&lt;/script&gt; <strong>&lt;b&gt;x&lt;/b&gt;</strong></p>"+
			"<ul><li>a &amp; b</li><li>c</li></ul>"+
			"<p>end</p>",
		got)
	assert.NotContains(t, got, "<script>")
}

func TestHTMLSoftBreak(t *testing.T) {
	assert.Equal(t, "<p>one<br>two</p>", HTML(Parse("one\ntwo")))
}

func TestTerminalKeepsText(t *testing.T) {
	out := Terminal(Parse("**Cell** is the unit.\n\n- nucleus\n- membrane"), 80)
	assert.Contains(t, out, "Cell")
	assert.Contains(t, out, "is the unit.")
	assert.Contains(t, out, "nucleus")
	assert.Contains(t, out, "membrane")
	assert.NotContains(t, out, "**")
}
