package theme

import (
	"github.com/charmbracelet/lipgloss"

	"lovenest/viewmodel"
)

// Palette is everything that differs between themes.
type Palette struct {
	Mode Mode

	Header    lipgloss.Style
	ActiveTab lipgloss.Style
	Tab       lipgloss.Style
	Item      lipgloss.Style
	Selected  lipgloss.Style
	Done      lipgloss.Style
	Muted     lipgloss.Style
	Danger    lipgloss.Style
	Toast     lipgloss.Style
	Banner    lipgloss.Style
	Box       lipgloss.Style
	Progress  lipgloss.Color

	CheckedMark   string
	UncheckedMark string
	Divider       string

	tones map[string]lipgloss.Color
}

// Style is a category style with its theme color.
type Style struct {
	viewmodel.Style
	Color lipgloss.Color
}

var pixelTones = map[string]lipgloss.Color{
	"rose":  lipgloss.Color("205"),
	"sky":   lipgloss.Color("45"),
	"mint":  lipgloss.Color("84"),
	"sun":   lipgloss.Color("220"),
	"lilac": lipgloss.Color("141"),
	"sand":  lipgloss.Color("180"),
}

var starryTones = map[string]lipgloss.Color{
	"rose":  lipgloss.Color("#f4a6c8"),
	"sky":   lipgloss.Color("#8ab4f8"),
	"mint":  lipgloss.Color("#9be7c4"),
	"sun":   lipgloss.Color("#ffe08a"),
	"lilac": lipgloss.Color("#c3a6ff"),
	"sand":  lipgloss.Color("#d8c8a8"),
}

func PaletteFor(m Mode) Palette {
	if m == Starry {
		return starry()
	}
	return pixel()
}

func pixel() Palette {
	return Palette{
		Mode: Pixel,
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("205")).
			Bold(true).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			Bold(true),
		Tab: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(0, 1),
		Item:     lipgloss.NewStyle().PaddingLeft(2),
		Selected: lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("205")).Bold(true),
		Done:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Danger:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Toast: lipgloss.NewStyle().
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("84")).
			Padding(0, 1),
		Banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true),
		Box: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 2),
		Progress:      lipgloss.Color("205"),
		CheckedMark:   "[x]",
		UncheckedMark: "[ ]",
		Divider:       "▀▄▀▄▀▄▀▄",
		tones:         pixelTones,
	}
}

func starry() Palette {
	return Palette{
		Mode: Starry,
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffe08a")).
			Background(lipgloss.Color("#1b1f3b")).
			Bold(true).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffe08a")).
			Underline(true).
			Padding(0, 1),
		Tab: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6c7293")).
			Padding(0, 1),
		Item:     lipgloss.NewStyle().PaddingLeft(2),
		Selected: lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("#c3a6ff")).Bold(true),
		Done:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7293")).Strikethrough(true),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8fb5")),
		Danger:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ff6b81")).Bold(true),
		Toast: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1b1f3b")).
			Background(lipgloss.Color("#c3a6ff")).
			Padding(0, 1),
		Banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffe08a")).
			Italic(true),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#c3a6ff")).
			Padding(1, 2),
		Progress:      lipgloss.Color("#c3a6ff"),
		CheckedMark:   "★",
		UncheckedMark: "☆",
		Divider:       "✦ · ✧ · ✦",
		tones:         starryTones,
	}
}

// Tone resolves a tone name; unknown tones get the sand color.
func (p Palette) Tone(name string) lipgloss.Color {
	if c, ok := p.tones[name]; ok {
		return c
	}
	return p.tones["sand"]
}

// CategoryStyle is the themed style of a category.
func (p Palette) CategoryStyle(entity, category string) Style {
	s := viewmodel.CategoryStyle(entity, category)
	return Style{Style: s, Color: p.Tone(s.Tone)}
}

// Badge renders "emoji Label" in the category color.
func (p Palette) Badge(entity, category string) string {
	s := p.CategoryStyle(entity, category)
	return lipgloss.NewStyle().Foreground(s.Color).Render(s.Emoji + " " + s.Label)
}

// CategoryStyle resolves (theme, entity, category) to a style.
func CategoryStyle(m Mode, entity, category string) Style {
	return PaletteFor(m).CategoryStyle(entity, category)
}
