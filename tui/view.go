package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lovenest/theme"
	"lovenest/viewmodel"
)

const banner = "♥ lovenest"

func (m Model) View() string {
	p := m.palette()
	if m.mode == modeLocked {
		return m.viewLocked(p)
	}

	var sections []string
	sections = append(sections, m.viewTabs(p))

	switch m.mode {
	case modeForm, modeMemory:
		sections = append(sections, m.viewForm(p))
	case modeUploading:
		sections = append(sections, m.viewUpload(p))
	default:
		sections = append(sections, m.viewList(p))
	}

	if m.toast != "" {
		sections = append(sections, p.Toast.Render(m.toast))
	}
	if m.mode == modeBrowse {
		sections = append(sections, m.help.View(m.keys))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) viewLocked(p theme.Palette) string {
	body := []string{
		p.Header.Render(banner),
		p.Muted.Render("Enter our secret to come in."),
		"",
		m.passcode.View(),
	}
	if m.lockErr != "" {
		body = append(body, "", p.Danger.Render(m.lockErr))
	}
	box := p.Box.Render(lipgloss.JoinVertical(lipgloss.Left, body...))
	// A wrong passcode shakes the box left and right.
	if m.shake > 0 && m.shake%2 == 1 {
		box = lipgloss.NewStyle().MarginLeft(2).Render(box)
	}
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

func (m Model) viewTabs(p theme.Palette) string {
	tabs := []string{p.Header.Render(banner), " "}
	for i, pn := range m.panes {
		style := p.Tab
		if i == m.active {
			style = p.ActiveTab
		}
		tabs = append(tabs, style.Render(pn.Title()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewList(p theme.Palette) string {
	pn := m.pane()
	var out []string

	if m.mode == modeSearch {
		out = append(out, m.search.View())
	} else {
		out = append(out, p.Muted.Render(describeView(pn.ViewState())))
	}
	if err := pn.Banner(); err != nil {
		out = append(out, p.Banner.Render("⚠ "+err.Error()+"  (esc to dismiss)"))
	}
	out = append(out, p.Muted.Render(p.Divider))
	out = append(out, pn.Render(p, m.listWidth(), m.listHeight()))

	if m.mode == modeConfirm {
		prompt := fmt.Sprintf("Delete %q forever? (y/n)", m.confirmTitle)
		out = append(out, "", p.Box.Render(p.Danger.Render(prompt)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

func (m Model) listWidth() int {
	if m.width == 0 {
		return 100
	}
	return max(20, m.width-4)
}

// listHeight leaves room for the header, status line and help.
func (m Model) listHeight() int {
	if m.height == 0 {
		return 0
	}
	return max(3, m.height-10)
}

func describeView(vs viewmodel.ViewState) string {
	arrow := "↑"
	if vs.Direction == viewmodel.Desc {
		arrow = "↓"
	}
	parts := []string{
		"status: " + vs.Status,
		"category: " + vs.Category,
		"sort: " + vs.Sort + " " + arrow,
	}
	if vs.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", vs.Search))
	}
	return strings.Join(parts, " · ")
}

func (m Model) viewForm(p theme.Palette) string {
	var out []string
	if m.mode == modeForm {
		if errs := m.pane().FieldErrors(); len(errs) > 0 {
			fields := make([]string, 0, len(errs))
			for f := range errs {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			for _, f := range fields {
				out = append(out, p.Danger.Render(f+": "+errs[f]))
			}
		}
		if err := m.pane().Banner(); err != nil {
			out = append(out, p.Banner.Render("⚠ "+err.Error()))
		}
	}
	if m.form != nil {
		out = append(out, m.form.View())
	}
	out = append(out, p.Muted.Render("esc to cancel"))
	return p.Box.Render(lipgloss.JoinVertical(lipgloss.Left, out...))
}

func (m Model) viewUpload(p theme.Palette) string {
	return p.Box.Render(lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("Uploading photos… %d%%", m.percent),
		m.progress.ViewAs(float64(m.percent)/100),
		p.Muted.Render("esc to cancel"),
	))
}
