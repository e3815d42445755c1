// Package markup converts the small markdown-like subset used in backend
// answers into a typed tree. Only four rules are recognized: **bold** pairs,
// leading bullet markers, blank-line paragraph breaks and single-newline soft
// breaks. Everything else is literal text, so rendered output never carries
// markup the answer did not ask for.
package markup

import (
	"regexp"
	"strings"
)

// InlineKind identifies an inline node.
type InlineKind int

const (
	Text InlineKind = iota
	Bold
	Break
)

// Inline is a run of text inside a block. Break nodes carry no text.
type Inline struct {
	Kind InlineKind
	Text string
}

// BlockKind identifies a block node.
type BlockKind int

const (
	Paragraph BlockKind = iota
	Bullet
)

// Block is a paragraph or a single bullet item.
type Block struct {
	Kind    BlockKind
	Inlines []Inline
}

// Document is a parsed answer.
type Document struct {
	Blocks []Block
}

const boldMarker = "**"

var (
	paragraphSplit = regexp.MustCompile(`\n[ \t]*\n`)
	bulletPrefixes = []string{"- ", "* ", "• "}
)

// Parse builds a Document from answer text.
func Parse(s string) Document {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSpace(s)
	if s == "" {
		return Document{}
	}

	var doc Document
	for _, chunk := range paragraphSplit.Split(s, -1) {
		doc.Blocks = append(doc.Blocks, parseChunk(chunk)...)
	}
	return doc
}

// parseChunk turns one blank-line-delimited chunk into blocks. Bullet lines
// become their own blocks; runs of other lines form a paragraph joined by
// soft breaks.
func parseChunk(chunk string) []Block {
	var (
		blocks []Block
		lines  []string
	)

	flush := func() {
		if len(lines) == 0 {
			return
		}
		var inlines []Inline
		for i, line := range lines {
			if i > 0 {
				inlines = append(inlines, Inline{Kind: Break})
			}
			inlines = append(inlines, parseInline(line)...)
		}
		blocks = append(blocks, Block{Kind: Paragraph, Inlines: inlines})
		lines = nil
	}

	for _, line := range strings.Split(chunk, "\n") {
		line = strings.TrimRight(line, " \t")
		if item, ok := bulletItem(line); ok {
			flush()
			blocks = append(blocks, Block{Kind: Bullet, Inlines: parseInline(item)})
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	flush()
	return blocks
}

func bulletItem(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return strings.TrimSpace(trimmed[len(p):]), true
		}
	}
	return "", false
}

// parseInline splits a line into text and bold runs. A marker without a
// closing partner, or a pair enclosing nothing, stays literal.
func parseInline(line string) []Inline {
	var out []Inline
	rest := line
	for {
		open := strings.Index(rest, boldMarker)
		if open < 0 {
			break
		}
		closeAt := strings.Index(rest[open+len(boldMarker):], boldMarker)
		if closeAt < 0 {
			break
		}
		closeAt += open + len(boldMarker)

		inner := rest[open+len(boldMarker) : closeAt]
		if strings.TrimSpace(inner) == "" {
			out = appendText(out, rest[:closeAt+len(boldMarker)])
		} else {
			out = appendText(out, rest[:open])
			out = append(out, Inline{Kind: Bold, Text: inner})
		}
		rest = rest[closeAt+len(boldMarker):]
	}
	return appendText(out, rest)
}

// appendText adds s as a Text node, merging with a preceding Text node.
func appendText(out []Inline, s string) []Inline {
	if s == "" {
		return out
	}
	if n := len(out); n > 0 && out[n-1].Kind == Text {
		out[n-1].Text += s
		return out
	}
	return append(out, Inline{Kind: Text, Text: s})
}

// PlainText returns the document without any markers, one block per line.
func (d Document) PlainText() string {
	var b strings.Builder
	for i, blk := range d.Blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		if blk.Kind == Bullet {
			b.WriteString("• ")
		}
		for _, in := range blk.Inlines {
			if in.Kind == Break {
				b.WriteString("\n")
				continue
			}
			b.WriteString(in.Text)
		}
	}
	return b.String()
}
