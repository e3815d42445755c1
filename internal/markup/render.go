package markup

import (
	"html"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cbseprep/internal/ui/theme"
)

// HTML renders d with a fixed tag whitelist: p, ul, li, strong and br.
// All text is escaped.
func HTML(d Document) string {
	var b strings.Builder
	inList := false
	for _, blk := range d.Blocks {
		switch blk.Kind {
		case Bullet:
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>")
			writeHTMLInlines(&b, blk.Inlines)
			b.WriteString("</li>")
		default:
			if inList {
				b.WriteString("</ul>")
				inList = false
			}
			b.WriteString("<p>")
			writeHTMLInlines(&b, blk.Inlines)
			b.WriteString("</p>")
		}
	}
	if inList {
		b.WriteString("</ul>")
	}
	return b.String()
}

func writeHTMLInlines(b *strings.Builder, inlines []Inline) {
	for _, in := range inlines {
		switch in.Kind {
		case Bold:
			b.WriteString("<strong>")
			b.WriteString(html.EscapeString(in.Text))
			b.WriteString("</strong>")
		case Break:
			b.WriteString("<br>")
		default:
			b.WriteString(html.EscapeString(in.Text))
		}
	}
}

// Terminal renders d for the TUI using the active theme, wrapping to width.
// A width below 1 disables wrapping.
func Terminal(d Document, width int) string {
	wrap := lipgloss.NewStyle()
	if width > 0 {
		wrap = wrap.Width(width)
	}

	blocks := make([]string, 0, len(d.Blocks))
	for i, blk := range d.Blocks {
		line := terminalInlines(blk.Inlines)
		if blk.Kind == Bullet {
			line = theme.Chip.Render("•") + " " + line
			blocks = append(blocks, wrap.Render(line))
			continue
		}
		if i > 0 {
			blocks = append(blocks, "")
		}
		blocks = append(blocks, wrap.Render(line))
	}
	return strings.Join(blocks, "\n")
}

func terminalInlines(inlines []Inline) string {
	var b strings.Builder
	for _, in := range inlines {
		switch in.Kind {
		case Bold:
			b.WriteString(theme.Strong.Render(in.Text))
		case Break:
			b.WriteString("\n")
		default:
			b.WriteString(theme.Body.Render(in.Text))
		}
	}
	return b.String()
}
