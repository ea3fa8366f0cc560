package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"lovenest/forms"
	"lovenest/theme"
	"lovenest/viewmodel"
)

var errNoSelection = errors.New("nothing selected")

// pane is one collection tab. Everything it shows comes from the live feed;
// mutations never touch the local items.
type pane interface {
	Name() string
	Title() string
	Load(raw json.RawMessage) error
	Loaded() bool
	Len() int
	Move(delta int)
	Selected() (id, title string, ok bool)

	ViewState() viewmodel.ViewState
	CycleStatus()
	CycleCategory()
	CycleSort()
	Reverse()
	SetSearch(q string)

	OpenAdd() (*huh.Form, error)
	StartEdit() (*huh.Form, error)
	Reopen() *huh.Form
	Stage() error
	PendingPhotos() []string
	AttachPhotos(urls, pending []string) error
	Submit(ctx context.Context) tea.Cmd
	CancelForm()
	FieldErrors() map[string]string
	Banner() error
	DismissBanner()

	Toggle(ctx context.Context) tea.Cmd
	Remove(ctx context.Context) tea.Cmd

	Render(p theme.Palette, width, height int) string
}

// editor builds a form over a draft and returns a function reading the
// edited values back. Editors that take local photos bind files.
type editor[T any] func(draft T, files *string) (*huh.Form, func() T)

type listPane[T any] struct {
	name   string
	title  string
	schema viewmodel.Schema[T]
	// month groups the view by calendar month when set.
	month  func(T) string
	label  func(T) string
	line   func(p theme.Palette, it T) string
	detail func(p theme.Palette, it T) []string
	blank  func() T
	edit   editor[T]
	// attach appends uploaded photo URLs to a draft; nil when the form
	// takes no local photos.
	attach func(d T, urls []string) T
	toggle func(ctx context.Context, it T) error
	remove func(ctx context.Context, id string) error
	forms  *forms.List[T]

	items   []T
	loaded  bool
	vs      viewmodel.ViewState
	shown   []T
	groups  []viewmodel.Group[T]
	cursor  int
	adding  bool
	collect func() T
	files   string
}

func (lp *listPane[T]) Name() string  { return lp.name }
func (lp *listPane[T]) Title() string { return lp.title }
func (lp *listPane[T]) Loaded() bool  { return lp.loaded }
func (lp *listPane[T]) Len() int      { return len(lp.shown) }

func (lp *listPane[T]) Load(raw json.RawMessage) error {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("decode %s: %w", lp.name, err)
	}
	lp.items = items
	lp.loaded = true
	lp.refresh()
	return nil
}

// refresh re-derives the display list and keeps the cursor on the same
// record when it is still shown.
func (lp *listPane[T]) refresh() {
	var keep string
	if it, ok := lp.current(); ok {
		keep = lp.schema.ID(it)
	}
	lp.shown = lp.schema.Apply(lp.items, lp.vs)
	lp.groups = nil
	if lp.month != nil {
		lp.groups = viewmodel.GroupByMonth(lp.shown, lp.month)
		flat := make([]T, 0, len(lp.shown))
		for _, g := range lp.groups {
			flat = append(flat, g.Items...)
		}
		lp.shown = flat
	}
	if keep != "" {
		for i, it := range lp.shown {
			if lp.schema.ID(it) == keep {
				lp.cursor = i
				return
			}
		}
	}
	lp.Move(0)
}

func (lp *listPane[T]) current() (T, bool) {
	var zero T
	if lp.cursor < 0 || lp.cursor >= len(lp.shown) {
		return zero, false
	}
	return lp.shown[lp.cursor], true
}

func (lp *listPane[T]) Move(delta int) {
	lp.cursor += delta
	if lp.cursor >= len(lp.shown) {
		lp.cursor = len(lp.shown) - 1
	}
	if lp.cursor < 0 {
		lp.cursor = 0
	}
}

func (lp *listPane[T]) Selected() (string, string, bool) {
	it, ok := lp.current()
	if !ok {
		return "", "", false
	}
	return lp.schema.ID(it), lp.label(it), true
}

func (lp *listPane[T]) ViewState() viewmodel.ViewState {
	return lp.schema.Normalize(lp.vs)
}

func cycle(options []string, cur string) string {
	if len(options) == 0 {
		return cur
	}
	i := slices.Index(options, cur)
	return options[(i+1)%len(options)]
}

func (lp *listPane[T]) CycleStatus() {
	vs := lp.ViewState()
	lp.vs.Status = cycle(append([]string{viewmodel.All}, lp.schema.Statuses...), vs.Status)
	lp.refresh()
}

func (lp *listPane[T]) CycleCategory() {
	if len(lp.schema.Categories) == 0 {
		return
	}
	vs := lp.ViewState()
	lp.vs.Category = cycle(append([]string{viewmodel.All}, lp.schema.Categories...), vs.Category)
	lp.refresh()
}

func (lp *listPane[T]) CycleSort() {
	vs := lp.ViewState()
	lp.vs.Sort = cycle(lp.schema.SortKeys, vs.Sort)
	lp.refresh()
}

func (lp *listPane[T]) Reverse() {
	if lp.ViewState().Direction == viewmodel.Asc {
		lp.vs.Direction = viewmodel.Desc
	} else {
		lp.vs.Direction = viewmodel.Asc
	}
	lp.refresh()
}

func (lp *listPane[T]) SetSearch(q string) {
	lp.vs.Search = q
	lp.refresh()
}

func (lp *listPane[T]) OpenAdd() (*huh.Form, error) {
	if err := lp.forms.OpenAdd(lp.blank()); err != nil {
		return nil, err
	}
	lp.adding = true
	lp.files = ""
	return lp.Reopen(), nil
}

func (lp *listPane[T]) StartEdit() (*huh.Form, error) {
	it, ok := lp.current()
	if !ok {
		return nil, errNoSelection
	}
	if err := lp.forms.StartEdit(lp.schema.ID(it), it); err != nil {
		return nil, err
	}
	lp.adding = false
	lp.files = ""
	return lp.Reopen(), nil
}

// Reopen rebuilds the open form from the kept draft, e.g. after a failed
// validation.
func (lp *listPane[T]) Reopen() *huh.Form {
	draft, ok := lp.draft()
	if !ok {
		return nil
	}
	form, collect := lp.edit(draft, &lp.files)
	lp.collect = collect
	return form
}

func (lp *listPane[T]) draft() (T, bool) {
	if lp.adding {
		return lp.forms.AddDraft()
	}
	return lp.forms.EditDraft()
}

func (lp *listPane[T]) setDraft(d T) error {
	if lp.adding {
		return lp.forms.SetAddDraft(d)
	}
	return lp.forms.SetEditDraft(d)
}

// Stage keeps what the open form holds as the draft without committing it,
// so the form can be rebuilt while its photos upload.
func (lp *listPane[T]) Stage() error {
	if lp.collect == nil {
		return forms.ErrNotEditing
	}
	return lp.setDraft(lp.collect())
}

// PendingPhotos lists the local files picked in the open form.
func (lp *listPane[T]) PendingPhotos() []string {
	if lp.attach == nil {
		return nil
	}
	return splitList(lp.files)
}

// AttachPhotos appends stored photo URLs to the staged draft; pending is
// what is still left to upload.
func (lp *listPane[T]) AttachPhotos(urls, pending []string) error {
	draft, ok := lp.draft()
	if !ok || lp.attach == nil {
		return forms.ErrNotEditing
	}
	draft = lp.attach(draft, urls)
	if err := lp.setDraft(draft); err != nil {
		return err
	}
	lp.files = strings.Join(pending, ", ")
	_, lp.collect = lp.edit(draft, &lp.files)
	return nil
}

func (lp *listPane[T]) Submit(ctx context.Context) tea.Cmd {
	if lp.collect == nil {
		return nil
	}
	draft := lp.collect()
	if lp.adding {
		if err := lp.forms.SetAddDraft(draft); err != nil {
			return failed(lp.name, "create", err)
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(ctx, requestTimeout)
			defer cancel()
			id, err := lp.forms.Create(ctx)
			return savedMsg{pane: lp.name, id: id, err: err}
		}
	}
	if err := lp.forms.SetEditDraft(draft); err != nil {
		return failed(lp.name, "save", err)
	}
	id := lp.forms.EditingID()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		return savedMsg{pane: lp.name, id: id, err: lp.forms.Save(ctx)}
	}
}

func (lp *listPane[T]) CancelForm() {
	if lp.adding {
		lp.forms.CancelAdd()
	} else {
		lp.forms.CancelEdit()
	}
	lp.collect = nil
	lp.files = ""
}

func (lp *listPane[T]) FieldErrors() map[string]string { return lp.forms.FieldErrors() }
func (lp *listPane[T]) Banner() error                  { return lp.forms.Banner() }
func (lp *listPane[T]) DismissBanner()                 { lp.forms.DismissBanner() }

func (lp *listPane[T]) Toggle(ctx context.Context) tea.Cmd {
	if lp.toggle == nil {
		return nil
	}
	it, ok := lp.current()
	if !ok {
		return nil
	}
	return lp.mutate(ctx, "toggle", func(ctx context.Context) error { return lp.toggle(ctx, it) })
}

func (lp *listPane[T]) Remove(ctx context.Context) tea.Cmd {
	it, ok := lp.current()
	if !ok {
		return nil
	}
	id := lp.schema.ID(it)
	return lp.mutate(ctx, "delete", func(ctx context.Context) error { return lp.remove(ctx, id) })
}

// mutate runs a mutation that bypasses the drafts; failures land in the
// list banner.
func (lp *listPane[T]) mutate(ctx context.Context, action string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		err := fn(ctx)
		if err != nil {
			lp.forms.Fail(fmt.Errorf("%s: %w", action, err))
		}
		return mutatedMsg{pane: lp.name, action: action, err: err}
	}
}

func (lp *listPane[T]) Render(p theme.Palette, width, height int) string {
	if !lp.loaded {
		return p.Muted.Render("Loading…")
	}
	if len(lp.shown) == 0 {
		if len(lp.items) == 0 {
			return p.Muted.Render("Nothing here yet. Press a to add one.")
		}
		return p.Muted.Render("Nothing matches this view.")
	}

	var lines []string
	at := 0
	emit := func(i int, it T) {
		row := lp.line(p, it)
		if i == lp.cursor {
			at = len(lines)
			lines = append(lines, p.Selected.Render("› "+row))
			for _, d := range lp.detail(p, it) {
				lines = append(lines, p.Muted.Render("    "+d))
			}
			return
		}
		lines = append(lines, p.Item.Render("  "+row))
	}
	if lp.groups != nil {
		i := 0
		for _, g := range lp.groups {
			lines = append(lines, p.Header.Render(g.Label))
			for _, it := range g.Items {
				emit(i, it)
				i++
			}
		}
	} else {
		for i, it := range lp.shown {
			emit(i, it)
		}
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(window(lines, at, height), "\n"))
}

// window keeps at most height lines with line at roughly in the middle.
func window(lines []string, at, height int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	start := at - height/2
	if start < 0 {
		start = 0
	}
	if start+height > len(lines) {
		start = len(lines) - height
	}
	return lines[start : start+height]
}

func failed(pane, action string, err error) tea.Cmd {
	return func() tea.Msg { return mutatedMsg{pane: pane, action: action, err: err} }
}
