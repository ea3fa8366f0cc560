package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"lovenest/appstate"
	"lovenest/client"
	"lovenest/forms"
	"lovenest/gate"
	"lovenest/logging"
	"lovenest/store"
	"lovenest/theme"
	"lovenest/validate"
)

const plansPane = store.Plans

type mode int

const (
	modeLocked mode = iota
	modeBrowse
	modeForm
	modeConfirm
	modeSearch
	modeMemory
	modeUploading
)

// Options are the client settings the views need.
type Options struct {
	UploadURL      string
	UploadPreset   string
	MaxUploadBytes int64
	// ExportPath is where the memory book is written.
	ExportPath string
}

type Model struct {
	ctx    context.Context
	app    *appstate.Context
	api    *client.API
	opts   Options
	log    logging.Logger
	sender *sender

	keys   KeyMap
	help   help.Model
	mode   mode
	panes  []pane
	active int
	subs   map[string]*client.Subscription

	passcode textinput.Model
	lockErr  string
	shake    int

	search       textinput.Model
	form         *huh.Form
	confirmID    string
	confirmTitle string

	memory       *memoryDraft
	progress     progress.Model
	percent      int
	cancelUpload context.CancelFunc

	toast   string
	toastID int
	width   int
	height  int
}

func NewModel(ctx context.Context, app *appstate.Context, api *client.API, opts Options, log logging.Logger) Model {
	if opts.ExportPath == "" {
		opts.ExportPath = "lovenest-memories.pdf"
	}
	pass := textinput.New()
	pass.Placeholder = "our secret"
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '♥'
	pass.CharLimit = 64
	pass.Focus()

	search := textinput.New()
	search.Placeholder = "search"
	search.Prompt = "/ "

	m := Model{
		ctx:      ctx,
		app:      app,
		api:      api,
		opts:     opts,
		log:      log,
		sender:   &sender{},
		keys:     DefaultKeyMap(),
		help:     help.New(),
		mode:     modeLocked,
		panes:    newPanes(api),
		subs:     map[string]*client.Subscription{},
		passcode: pass,
		search:   search,
	}
	m.progress = m.newProgress()
	if app.Gate.State() == gate.Unlocked {
		m.mode = modeBrowse
		m.passcode.Blur()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.mode == modeLocked {
		return textinput.Blink
	}
	return m.subscribeAll()
}

func (m Model) palette() theme.Palette { return m.app.Theme.Palette() }

func (m Model) pane() pane { return m.panes[m.active] }

func (m Model) paneByName(name string) pane {
	for _, p := range m.panes {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func (m Model) newProgress() progress.Model {
	p := progress.New(progress.WithSolidFill(string(m.palette().Progress)), progress.WithoutPercentage())
	p.Width = 40
	return p
}

func (m Model) styleForm(f *huh.Form) *huh.Form {
	t := huh.ThemeCharm()
	if m.app.Theme.Mode() == theme.Starry {
		t = huh.ThemeDracula()
	}
	f = f.WithTheme(t).WithShowHelp(true)
	if m.width > 0 {
		f = f.WithWidth(min(m.width-4, 72))
	}
	return f
}

func (m Model) subscribeAll() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.panes))
	for _, p := range m.panes {
		cmds = append(cmds, subscribeCmd(m.ctx, m.api, p.Name()))
	}
	return tea.Batch(cmds...)
}

func (m Model) closeFeeds() {
	for name, sub := range m.subs {
		sub.Close()
		delete(m.subs, name)
	}
}

// notify shows a toast that disappears on its own.
func (m Model) notify(text string) (Model, tea.Cmd) {
	m.toastID++
	m.toast = text
	return m, expireToast(m.toastID)
}

// relock drops back to the lock screen, e.g. when the server no longer
// accepts the session.
func (m Model) relock(reason string) (Model, tea.Cmd) {
	m.closeFeeds()
	if err := m.app.Gate.Lock(); err != nil {
		m.log.Warn(m.ctx, "forget session", "error", err)
	}
	m.mode = modeLocked
	m.form = nil
	m.lockErr = reason
	m.passcode.Reset()
	return m, m.passcode.Focus()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.progress.Width = max(10, min(msg.Width-8, 60))
		return m, nil

	case toastExpiredMsg:
		if int(msg) == m.toastID {
			m.toast = ""
		}
		return m, nil

	case shakeMsg:
		if m.shake > 0 {
			m.shake--
		}
		if m.shake > 0 {
			return m, shakeTick()
		}
		return m, nil

	case unlockedMsg:
		return m.onUnlocked(msg)

	case lockedMsg:
		if msg.err != nil {
			m.log.Warn(m.ctx, "lock", "error", msg.err)
		}
		return m.relock("")

	case subscribedMsg:
		return m.onSubscribed(msg)

	case snapshotMsg:
		if m.subs[msg.name] != msg.sub {
			return m, nil
		}
		if p := m.paneByName(msg.name); p != nil {
			if err := p.Load(msg.snap.Items); err != nil {
				m.log.Error(m.ctx, "load snapshot", "collection", msg.name, "error", err)
			}
		}
		return m, nextSnapshot(msg.name, msg.sub)

	case feedClosedMsg:
		if m.subs[msg.name] != msg.sub || m.mode == modeLocked {
			return m, nil
		}
		delete(m.subs, msg.name)
		msg.sub.Close()
		m.log.Warn(m.ctx, "live feed lost", "collection", msg.name, "error", msg.err)
		return m, resubscribeLater(msg.name)

	case resubscribeMsg:
		if m.mode == modeLocked || m.subs[msg.name] != nil {
			return m, nil
		}
		return m, subscribeCmd(m.ctx, m.api, msg.name)

	case savedMsg:
		return m.onSaved(msg)

	case mutatedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, client.ErrUnauthorized) {
				return m.relock("Session expired, enter our secret again")
			}
			m.log.Warn(m.ctx, "mutation failed", "collection", msg.pane, "action", msg.action, "error", msg.err)
			return m.notify(fmt.Sprintf("Could not %s: %v", msg.action, msg.err))
		}
		if msg.action == "delete" {
			return m.notify("Deleted")
		}
		return m, nil

	case progressMsg:
		m.percent = int(msg)
		return m, nil

	case uploadedMsg:
		return m.onUploaded(msg)

	case memorySavedMsg:
		return m.onMemorySaved(msg)

	case exportedMsg:
		if msg.err != nil {
			m.log.Warn(m.ctx, "export", "error", msg.err)
			return m.notify(msg.err.Error())
		}
		return m.notify("Memory book written to " + msg.path)
	}

	switch m.mode {
	case modeLocked:
		return m.updateLocked(msg)
	case modeForm, modeMemory:
		return m.updateForm(msg)
	case modeConfirm:
		return m.updateConfirm(msg)
	case modeSearch:
		return m.updateSearch(msg)
	case modeUploading:
		return m.updateUploading(msg)
	}
	return m.updateBrowse(msg)
}

func (m Model) updateLocked(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			code := m.passcode.Value()
			if code == "" {
				return m, nil
			}
			m.lockErr = ""
			return m, unlockCmd(m.ctx, m.app.Gate, code)
		}
	}
	var cmd tea.Cmd
	m.passcode, cmd = m.passcode.Update(msg)
	return m, cmd
}

func (m Model) onUnlocked(msg unlockedMsg) (tea.Model, tea.Cmd) {
	m.passcode.Reset()
	switch {
	case errors.Is(msg.err, gate.ErrWrongPasscode):
		m.shake = shakeFrames
		m.lockErr = "That's not our secret"
		if n := m.app.Gate.Rejections(); n > 1 {
			m.lockErr = fmt.Sprintf("That's not our secret (%d tries)", n)
		}
		m.log.Info(m.ctx, "wrong passcode", "rejections", m.app.Gate.Rejections())
		return m, shakeTick()
	case msg.err != nil:
		m.lockErr = msg.err.Error()
		m.log.Warn(m.ctx, "unlock", "error", msg.err)
		return m, nil
	}
	m.log.Info(m.ctx, "unlocked")
	m.mode = modeBrowse
	m.lockErr = ""
	m.passcode.Blur()
	return m, m.subscribeAll()
}

func (m Model) onSubscribed(msg subscribedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, client.ErrUnauthorized) {
			if m.mode == modeLocked {
				return m, nil
			}
			return m.relock("Session expired, enter our secret again")
		}
		m.log.Warn(m.ctx, "subscribe", "collection", msg.name, "error", msg.err)
		return m, resubscribeLater(msg.name)
	}
	if m.mode == modeLocked {
		msg.sub.Close()
		return m, nil
	}
	if old := m.subs[msg.name]; old != nil {
		old.Close()
	}
	m.subs[msg.name] = msg.sub
	return m, nextSnapshot(msg.name, msg.sub)
}

func (m Model) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	p := m.pane()
	switch {
	case key.Matches(k, m.keys.Quit):
		m.closeFeeds()
		return m, tea.Quit
	case key.Matches(k, m.keys.NextTab):
		m.active = (m.active + 1) % len(m.panes)
	case key.Matches(k, m.keys.PrevTab):
		m.active = (m.active + len(m.panes) - 1) % len(m.panes)
	case key.Matches(k, m.keys.Up):
		p.Move(-1)
	case key.Matches(k, m.keys.Down):
		p.Move(1)
	case key.Matches(k, m.keys.Add):
		form, err := p.OpenAdd()
		if err != nil {
			return m.notify(err.Error())
		}
		return m.showForm(form)
	case key.Matches(k, m.keys.Edit):
		form, err := p.StartEdit()
		switch {
		case errors.Is(err, forms.ErrReadOnly):
			return m.notify(p.Title() + " can't be edited, only added or removed")
		case err != nil:
			return m.notify(err.Error())
		}
		return m.showForm(form)
	case key.Matches(k, m.keys.Toggle):
		if cmd := p.Toggle(m.ctx); cmd != nil {
			return m, cmd
		}
		return m.notify("Nothing to tick off here")
	case key.Matches(k, m.keys.Delete):
		id, title, ok := p.Selected()
		if !ok {
			return m, nil
		}
		m.confirmID, m.confirmTitle = id, title
		m.mode = modeConfirm
	case key.Matches(k, m.keys.Memory):
		return m.openMemory()
	case key.Matches(k, m.keys.Status):
		p.CycleStatus()
	case key.Matches(k, m.keys.Category):
		p.CycleCategory()
	case key.Matches(k, m.keys.Sort):
		p.CycleSort()
	case key.Matches(k, m.keys.Reverse):
		p.Reverse()
	case key.Matches(k, m.keys.Search):
		m.search.SetValue(p.ViewState().Search)
		m.search.CursorEnd()
		m.mode = modeSearch
		return m, m.search.Focus()
	case key.Matches(k, m.keys.Theme):
		mode, err := m.app.Theme.Toggle()
		if err != nil {
			m.log.Warn(m.ctx, "persist theme", "error", err)
			return m.notify("Theme not saved: " + err.Error())
		}
		m.progress = m.newProgress()
		return m.notify("Theme: " + string(mode))
	case key.Matches(k, m.keys.Export):
		return m, exportCmd(m.ctx, m.api, m.opts.ExportPath)
	case key.Matches(k, m.keys.Lock):
		return m, lockCmd(m.ctx, m.api, m.app.Gate)
	case key.Matches(k, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case k.String() == "esc":
		p.DismissBanner()
	}
	return m, nil
}

func (m Model) showForm(form *huh.Form) (tea.Model, tea.Cmd) {
	if form == nil {
		return m, nil
	}
	m.form = m.styleForm(form)
	m.mode = modeForm
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		return m.closeForm()
	}
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		if m.mode == modeMemory {
			return m.startUpload()
		}
		m.form = nil
		m.mode = modeBrowse
		p := m.pane()
		if paths := p.PendingPhotos(); len(paths) > 0 {
			if err := p.Stage(); err != nil {
				return m.notify(err.Error())
			}
			return m.uploadPhotos(p.Name(), paths)
		}
		return m, p.Submit(m.ctx)
	case huh.StateAborted:
		return m.closeForm()
	}
	return m, cmd
}

func (m Model) closeForm() (tea.Model, tea.Cmd) {
	if m.mode == modeForm {
		m.pane().CancelForm()
	}
	m.form = nil
	m.memory = nil
	m.mode = modeBrowse
	return m, nil
}

// onSaved closes the form on success. On failure the draft is still held by
// the form state, so the form comes back with the errors above it.
func (m Model) onSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	p := m.paneByName(msg.pane)
	if p == nil {
		return m, nil
	}
	if msg.err == nil {
		m.log.Info(m.ctx, "saved", "collection", msg.pane, "id", msg.id)
		return m.notify("Saved ♥")
	}
	if errors.Is(msg.err, client.ErrUnauthorized) {
		p.CancelForm()
		return m.relock("Session expired, enter our secret again")
	}
	if !errors.Is(msg.err, validate.ErrValidation) {
		m.log.Warn(m.ctx, "save failed", "collection", msg.pane, "error", msg.err)
	}
	if p != m.pane() || m.mode != modeBrowse {
		return m.notify(msg.err.Error())
	}
	return m.showForm(p.Reopen())
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "y", "Y":
		m.mode = modeBrowse
		id, _, ok := m.pane().Selected()
		if !ok || id != m.confirmID {
			// The list moved under the prompt; do not delete something else.
			return m.notify("That record changed, nothing deleted")
		}
		return m, m.pane().Remove(m.ctx)
	case "n", "N", "esc", "q":
		m.mode = modeBrowse
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			m.pane().SetSearch(m.search.Value())
			m.search.Blur()
			m.mode = modeBrowse
			return m, nil
		case "esc":
			m.pane().SetSearch("")
			m.search.Reset()
			m.search.Blur()
			m.mode = modeBrowse
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) updateUploading(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" && m.cancelUpload != nil {
		m.cancelUpload()
	}
	return m, nil
}
