package theme

import (
	"image/color"
	"sync"

	"charm.land/lipgloss/v2"
)

// Names of the two palettes.
const (
	NameDark  = "dark"
	NameLight = "light"
)

// Palette is a full set of UI colors.
type Palette struct {
	Primary   color.Color
	Secondary color.Color
	Accent    color.Color
	Success   color.Color
	Error     color.Color
	Text      color.Color
	TextDim   color.Color
	Bg        color.Color
	BgCard    color.Color
	Border    color.Color
}

// Dark is the default palette: calm study colors on deep navy.
var Dark = Palette{
	Primary:   lipgloss.Color("#6366F1"), // Indigo
	Secondary: lipgloss.Color("#14B8A6"), // Teal
	Accent:    lipgloss.Color("#F59E0B"), // Amber
	Success:   lipgloss.Color("#22C55E"), // Green
	Error:     lipgloss.Color("#F43F5E"), // Rose
	Text:      lipgloss.Color("#F8FAFC"), // White
	TextDim:   lipgloss.Color("#94A3B8"), // Slate
	Bg:        lipgloss.Color("#0F172A"), // Deep Navy
	BgCard:    lipgloss.Color("#1E293B"), // Dark Slate
	Border:    lipgloss.Color("#334155"), // Slate
}

// Light mirrors Dark for bright terminals.
var Light = Palette{
	Primary:   lipgloss.Color("#4F46E5"),
	Secondary: lipgloss.Color("#0D9488"),
	Accent:    lipgloss.Color("#D97706"),
	Success:   lipgloss.Color("#15803D"),
	Error:     lipgloss.Color("#BE123C"),
	Text:      lipgloss.Color("#0F172A"),
	TextDim:   lipgloss.Color("#64748B"),
	Bg:        lipgloss.Color("#F8FAFC"),
	BgCard:    lipgloss.Color("#E2E8F0"),
	Border:    lipgloss.Color("#CBD5E1"),
}

// Active colors. Apply swaps them.
var (
	Primary   color.Color
	Secondary color.Color
	Accent    color.Color
	Success   color.Color
	Error     color.Color
	Text      color.Color
	TextDim   color.Color
	Bg        color.Color
	BgCard    color.Color
	Border    color.Color
)

// Typography
var (
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Strong   lipgloss.Style
	Hint     lipgloss.Style
)

// Layout
var (
	Header lipgloss.Style
	Footer lipgloss.Style
	Card   lipgloss.Style
)

// States
var (
	Selected   lipgloss.Style
	Unselected lipgloss.Style
	Good       lipgloss.Style
	Bad        lipgloss.Style
)

// Chat
var (
	UserBubble  lipgloss.Style
	ModelBubble lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style
	Chip        lipgloss.Style
)

var (
	mu      sync.Mutex
	current = NameDark
)

func init() {
	Apply(NameDark)
}

// Apply makes the named palette active and rebuilds every style. Unknown
// names select the dark palette. It must be called before the program
// renders its first frame or from the UI event loop.
func Apply(name string) {
	mu.Lock()
	defer mu.Unlock()

	p := Dark
	current = NameDark
	if name == NameLight {
		p = Light
		current = NameLight
	}

	Primary, Secondary, Accent = p.Primary, p.Secondary, p.Accent
	Success, Error = p.Success, p.Error
	Text, TextDim = p.Text, p.TextDim
	Bg, BgCard, Border = p.Bg, p.BgCard, p.Border

	build()
}

// Current returns the name of the active palette.
func Current() string {
	mu.Lock()
	defer mu.Unlock()
	return current
}

func build() {
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
		Foreground(TextDim).
		Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Strong = lipgloss.NewStyle().
		Foreground(Text).
		Bold(true)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Header = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Footer = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	Selected = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	Unselected = lipgloss.NewStyle().
		Foreground(Text)

	Good = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Bad = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	UserBubble = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ModelBubble = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	Tab = lipgloss.NewStyle().
		Foreground(TextDim).
		Padding(0, 1)

	TabActive = lipgloss.NewStyle().
		Foreground(Bg).
		Background(Primary).
		Bold(true).
		Padding(0, 1)

	Chip = lipgloss.NewStyle().
		Foreground(Accent)
}
