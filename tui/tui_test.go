package tui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovenest/appstate"
	"lovenest/client"
	"lovenest/config"
	"lovenest/forms"
	"lovenest/gate"
	"lovenest/logging"
	"lovenest/models"
	"lovenest/server"
	"lovenest/store"
	"lovenest/theme"
	"lovenest/upload"
	"lovenest/validate"
)

func offlineAPI(t *testing.T) *client.API {
	t.Helper()
	c, err := client.New("http://127.0.0.1:1", nil, nil)
	require.NoError(t, err)
	return client.NewAPI(c)
}

func localApp() *appstate.Context {
	return appstate.New(appstate.NewMemoryStorage(), appstate.NewMemoryStorage(), gate.Local{Checker: gate.Plain("0214")})
}

func keys(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func loadPlans(t *testing.T, p pane, plans ...models.Plan) {
	t.Helper()
	raw, err := json.Marshal(plans)
	require.NoError(t, err)
	require.NoError(t, p.Load(raw))
}

func TestPlansPane_GroupsAndFilters(t *testing.T) {
	p := newPlansPane(offlineAPI(t))
	assert.Contains(t, p.Render(theme.PaletteFor(theme.Pixel), 100, 0), "Loading")

	loadPlans(t, p,
		models.Plan{ID: "a", Title: "Beach day", Date: "2026-07-04", Type: models.PlanTrip},
		models.Plan{ID: "b", Title: "Pottery", Type: models.PlanActivity},
		models.Plan{ID: "c", Title: "Dinner", Date: "2026-07-20", Type: models.PlanDate, IsCompleted: true},
		models.Plan{ID: "d", Title: "Picnic", Date: "2026-06-01", Type: models.PlanDate},
	)
	require.Equal(t, 4, p.Len())

	out := p.Render(theme.PaletteFor(theme.Pixel), 200, 0)
	assert.Contains(t, out, "June 2026")
	assert.Contains(t, out, "July 2026")
	assert.Contains(t, out, "Sometime Soon…")

	// Cursor starts on the first open plan by date.
	id, title, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, "d", id)
	assert.Equal(t, "Picnic", title)

	p.CycleStatus() // upcoming
	assert.Equal(t, "upcoming", p.ViewState().Status)
	assert.Equal(t, 3, p.Len())

	p.SetSearch("POTTERY")
	assert.Equal(t, 1, p.Len())
	id, _, _ = p.Selected()
	assert.Equal(t, "b", id)

	p.SetSearch("nothing like this")
	assert.Equal(t, 0, p.Len())
	assert.Contains(t, p.Render(theme.PaletteFor(theme.Pixel), 100, 0), "Nothing matches")
}

func TestPane_CursorFollowsRecordAcrossSnapshots(t *testing.T) {
	p := newPlansPane(offlineAPI(t))
	loadPlans(t, p,
		models.Plan{ID: "a", Title: "A", Date: "2026-01-01", Type: models.PlanDate},
		models.Plan{ID: "b", Title: "B", Date: "2026-02-01", Type: models.PlanDate},
	)
	p.Move(1)
	id, _, _ := p.Selected()
	require.Equal(t, "b", id)

	loadPlans(t, p,
		models.Plan{ID: "z", Title: "Z", Date: "2025-12-01", Type: models.PlanDate},
		models.Plan{ID: "a", Title: "A", Date: "2026-01-01", Type: models.PlanDate},
		models.Plan{ID: "b", Title: "B", Date: "2026-02-01", Type: models.PlanDate},
	)
	id, _, _ = p.Selected()
	assert.Equal(t, "b", id)

	p.Move(100)
	id, _, _ = p.Selected()
	assert.Equal(t, "b", id)
	p.Move(-100)
	id, _, _ = p.Selected()
	assert.Equal(t, "z", id)
}

func TestCycleWrapsAround(t *testing.T) {
	assert.Equal(t, "b", cycle([]string{"a", "b"}, "a"))
	assert.Equal(t, "a", cycle([]string{"a", "b"}, "b"))
	assert.Equal(t, "a", cycle([]string{"a", "b"}, "unknown"))
	assert.Equal(t, "x", cycle(nil, "x"))
}

func TestWindow(t *testing.T) {
	lines := []string{"0", "1", "2", "3", "4", "5", "6", "7"}
	assert.Equal(t, lines, window(lines, 3, 0))
	assert.Equal(t, []string{"0", "1", "2"}, window(lines, 0, 3))
	assert.Equal(t, []string{"3", "4", "5"}, window(lines, 4, 3))
	assert.Equal(t, []string{"5", "6", "7"}, window(lines, 7, 3))
}

func TestLockScreen_WrongThenRightPasscode(t *testing.T) {
	ctx := context.Background()
	app := localApp()
	m := NewModel(ctx, app, offlineAPI(t), Options{}, logging.Nop())
	require.Equal(t, modeLocked, m.mode)

	m, _ = update(t, m, keys("1111"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	require.ErrorIs(t, msg.(unlockedMsg).err, gate.ErrWrongPasscode)

	m, cmd = update(t, m, msg)
	assert.Equal(t, modeLocked, m.mode)
	assert.Equal(t, shakeFrames, m.shake)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "not our secret")
	assert.Empty(t, m.passcode.Value())

	for m.shake > 0 {
		m, _ = update(t, m, shakeMsg{})
	}

	m, _ = update(t, m, keys("0214"))
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, gate.Unlocked, app.Gate.State())

	// A new model over the same session starts unlocked.
	again := NewModel(ctx, appstate.New(app.Session, app.Local, gate.Local{Checker: gate.Plain("0214")}), offlineAPI(t), Options{}, logging.Nop())
	assert.Equal(t, modeBrowse, again.mode)
}

func unlockedModel(t *testing.T, api *client.API) Model {
	t.Helper()
	app := localApp()
	require.NoError(t, app.Gate.Unlock(context.Background(), "0214"))
	return NewModel(context.Background(), app, api, Options{}, logging.Nop())
}

func TestThemeToggle_Persists(t *testing.T) {
	m := unlockedModel(t, offlineAPI(t))
	m, cmd := update(t, m, keys("t"))
	assert.NotNil(t, cmd)
	assert.Equal(t, theme.Starry, m.app.Theme.Mode())
	got, ok := m.app.Local.Get(theme.StorageKey)
	require.True(t, ok)
	assert.Equal(t, "starry", got)
	assert.Equal(t, "Theme: starry", m.toast)
}

func TestToast_OnlyLatestExpires(t *testing.T) {
	m := unlockedModel(t, offlineAPI(t))
	m, _ = m.notify("first")
	m, _ = m.notify("second")
	m, _ = update(t, m, toastExpiredMsg(1))
	assert.Equal(t, "second", m.toast)
	m, _ = update(t, m, toastExpiredMsg(2))
	assert.Empty(t, m.toast)
}

func TestTabsAndDeleteConfirm(t *testing.T) {
	m := unlockedModel(t, offlineAPI(t))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, store.BucketList, m.pane().Name())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, store.Cinema, m.pane().Name())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, store.Plans, m.pane().Name())

	loadPlans(t, m.pane(), models.Plan{ID: "a", Title: "Beach day", Type: models.PlanTrip})

	m, _ = update(t, m, keys("d"))
	require.Equal(t, modeConfirm, m.mode)
	assert.Contains(t, m.View(), `Delete "Beach day" forever?`)

	m, cmd := update(t, m, keys("n"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.Nil(t, cmd)

	m, _ = update(t, m, keys("d"))
	m, cmd = update(t, m, keys("y"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.NotNil(t, cmd)
}

func TestReadOnlyEdit(t *testing.T) {
	m := unlockedModel(t, offlineAPI(t))
	m.active = 2 // dreams
	raw, _ := json.Marshal([]models.Dream{{ID: "d1", Title: "House", Category: models.DreamHome}})
	require.NoError(t, m.pane().Load(raw))

	m, _ = update(t, m, keys("e"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.Contains(t, m.toast, "can't be edited")

	m, _ = update(t, m, keys(" "))
	assert.Equal(t, "Nothing to tick off here", m.toast)
}

func TestMemoryOnlyForPlans(t *testing.T) {
	m := unlockedModel(t, offlineAPI(t))
	m.active = 1
	m, _ = update(t, m, keys("m"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, "Memories belong to plans", m.toast)

	m.active = 0
	loadPlans(t, m.pane(), models.Plan{ID: "a", Title: "Beach day", Type: models.PlanTrip, IsCompleted: true})
	m, _ = update(t, m, keys("m"))
	assert.Equal(t, modeMemory, m.mode)
	require.NotNil(t, m.memory)
	assert.Equal(t, "a", m.memory.planID)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeBrowse, m.mode)
	assert.Nil(t, m.memory)
}

func TestMemoryDraft(t *testing.T) {
	d := memoryDraft{rating: 4, notes: "best day\n\n  sunburn  \n", photos: "a.jpg, ,b.png"}
	assert.Equal(t, []string{"a.jpg", "b.png"}, d.paths())

	now := time.Date(2026, 7, 5, 10, 0, 0, 0, time.UTC)
	d.uploaded = []string{"https://cdn.example.com/a.jpg"}
	mem := d.memory(now)
	assert.Equal(t, []string{"best day", "sunburn"}, mem.Notes)
	assert.Equal(t, 4, mem.Rating)
	assert.Equal(t, now, mem.CreatedAt)
	require.NoError(t, mem.Validate())

	empty := memoryDraft{rating: 5}.memory(now)
	assert.NotNil(t, empty.Photos)
	assert.NotNil(t, empty.Notes)
}

func TestUploadCancelled_LeavesNothingSaved(t *testing.T) {
	m := unlockedModel(t, offlineAPI(t))
	cancelled := false
	m.memory = &memoryDraft{planID: "a", planTitle: "Beach day", rating: 4, notes: "sunset", photos: "one.jpg, two.jpg"}
	m.mode = modeUploading
	m.cancelUpload = func() { cancelled = true }

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, cancelled)

	m, _ = update(t, m, uploadedMsg{
		paths:  []string{"one.jpg", "two.jpg"},
		result: upload.Result{URLs: []string{"https://cdn.test/one.jpg"}},
		err:    context.Canceled,
	})
	assert.Nil(t, m.cancelUpload)
	assert.Equal(t, "Upload cancelled, nothing was saved", m.toast)

	// The draft comes back with the stored photo kept and the rest pending.
	assert.Equal(t, modeMemory, m.mode)
	require.NotNil(t, m.memory)
	assert.Equal(t, "sunset", m.memory.notes)
	assert.Equal(t, []string{"https://cdn.test/one.jpg"}, m.memory.uploaded)
	assert.Equal(t, "two.jpg", m.memory.photos)

	m, _ = update(t, m, progressMsg(40))
	assert.Equal(t, 40, m.percent)
}

func TestMemorySaveFailure_ReopensDraft(t *testing.T) {
	m := unlockedModel(t, offlineAPI(t))
	loadPlans(t, m.pane(), models.Plan{ID: "a", Title: "Beach day", Date: "2026-07-04", Type: models.PlanTrip, IsCompleted: true})
	m, _ = update(t, m, keys("m"))
	require.Equal(t, modeMemory, m.mode)
	m.memory.rating = 4
	m.memory.notes = "sunset"
	m.memory.uploaded = []string{"https://cdn.test/a.jpg"}

	m, cmd := m.startUpload()
	require.NotNil(t, cmd)
	assert.Equal(t, modeBrowse, m.mode)
	require.NotNil(t, m.memory, "draft is kept while the save is in flight")

	saved, ok := cmd().(memorySavedMsg)
	require.True(t, ok)
	require.Error(t, saved.err)
	assert.Equal(t, "a", saved.planID)

	m, _ = update(t, m, saved)
	assert.Equal(t, modeMemory, m.mode)
	assert.NotNil(t, m.form)
	assert.Contains(t, m.toast, "Memory not saved")
	require.NotNil(t, m.memory)
	assert.Equal(t, 4, m.memory.rating)
	assert.Equal(t, "sunset", m.memory.notes)
	assert.Equal(t, []string{"https://cdn.test/a.jpg"}, m.memory.uploaded)

	// Opening the same plan again keeps the draft; success drops it.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m.memory = &memoryDraft{planID: "a", planTitle: "Beach day", rating: 4, notes: "sunset"}
	m, _ = update(t, m, keys("m"))
	assert.Equal(t, "sunset", m.memory.notes)

	m, _ = update(t, m, memorySavedMsg{planID: "other", title: "Other"})
	require.NotNil(t, m.memory)
	m, _ = update(t, m, memorySavedMsg{planID: "a", title: "Beach day"})
	assert.Nil(t, m.memory)
	assert.Equal(t, "Memory of Beach day saved ♥", m.toast)
}

// photoServer stores nothing and answers like POST /api/uploads.
func photoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"secure_url": "https://cdn.test/" + header.Filename})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func milestonesModel(t *testing.T, opts Options) (Model, *listPane[models.Milestone]) {
	t.Helper()
	app := localApp()
	require.NoError(t, app.Gate.Unlock(context.Background(), "0214"))
	m := NewModel(context.Background(), app, offlineAPI(t), opts, logging.Nop())
	for i, p := range m.panes {
		if p.Name() == store.Milestones {
			m.active = i
		}
	}
	p, ok := m.pane().(*listPane[models.Milestone])
	require.True(t, ok)
	return m, p
}

func TestMilestonePhotos_UploadedAndAppended(t *testing.T) {
	srv := photoServer(t)
	m, p := milestonesModel(t, Options{UploadURL: srv.URL, UploadPreset: "lovenest"})

	dir := t.TempDir()
	photo := filepath.Join(dir, "kiss.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("jpeg"), 0o644))

	_, err := p.OpenAdd()
	require.NoError(t, err)
	require.NoError(t, p.forms.SetAddDraft(models.Milestone{
		Title:    "First kiss",
		Date:     "2024-02-14",
		Category: models.MilestoneSpecialMoment,
		Photos:   []string{"https://cdn.test/old.jpg"},
	}))
	require.NotNil(t, p.Reopen())
	p.files = photo
	require.Equal(t, []string{photo}, p.PendingPhotos())
	require.NoError(t, p.Stage())

	m, cmd := m.uploadPhotos(p.Name(), p.PendingPhotos())
	require.NotNil(t, cmd)
	assert.Equal(t, modeUploading, m.mode)

	msg, ok := cmd().(uploadedMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)

	m, cmd = update(t, m, msg)
	assert.NotNil(t, cmd, "the milestone is submitted once its photos are stored")
	assert.Equal(t, modeBrowse, m.mode)
	d, ok := p.forms.AddDraft()
	require.True(t, ok)
	assert.Equal(t, []string{"https://cdn.test/old.jpg", "https://cdn.test/kiss.jpg"}, d.Photos)
	assert.Empty(t, p.PendingPhotos())
	require.NoError(t, d.Validate())
}

func TestMilestonePhotos_FailedUploadReopensForm(t *testing.T) {
	m, p := milestonesModel(t, Options{})
	_, err := p.OpenAdd()
	require.NoError(t, err)
	require.NoError(t, p.forms.SetAddDraft(models.Milestone{
		Title:    "Moved in",
		Date:     "2025-03-01",
		Category: models.MilestoneSpecialMoment,
		Photos:   []string{"https://cdn.test/keys.jpg"},
	}))
	require.NotNil(t, p.Reopen())

	m.mode = modeUploading
	m, _ = update(t, m, uploadedMsg{
		pane:   p.Name(),
		paths:  []string{"a.jpg", "b.jpg"},
		result: upload.Result{URLs: []string{"https://cdn.test/a.jpg"}},
		err:    errors.New("connection reset"),
	})
	assert.Equal(t, modeForm, m.mode)
	assert.NotNil(t, m.form)
	assert.Equal(t, "Upload failed: connection reset", m.toast)

	d, ok := p.forms.AddDraft()
	require.True(t, ok)
	assert.Equal(t, []string{"https://cdn.test/keys.jpg", "https://cdn.test/a.jpg"}, d.Photos)
	assert.Equal(t, []string{"b.jpg"}, p.PendingPhotos())

	// A path that cannot be read never starts an upload.
	m.form, m.mode = nil, modeBrowse
	m, _ = m.uploadPhotos(p.Name(), []string{filepath.Join(t.TempDir(), "missing.jpg")})
	assert.Equal(t, modeForm, m.mode)
	assert.Contains(t, m.toast, "Photo not added")
	d, _ = p.forms.AddDraft()
	assert.Len(t, d.Photos, 2)
}

// liveServer runs the real API with the in-memory store.
func liveServer(t *testing.T) *client.API {
	t.Helper()
	ctx := context.Background()
	s, err := server.New(ctx, config.Server{
		Passcode:       "0214",
		JWTSecret:      "0123456789abcdef0123456789abcdef",
		SessionTTL:     time.Hour,
		Store:          "memory",
		Media:          "local",
		MediaDir:       t.TempDir(),
		PublicURL:      "http://localhost",
		MaxUploadBytes: 5 << 20,
		PosterURL:      "http://127.0.0.1:1/",
		RateLimit:      1000,
		RateBurst:      1000,
		CORSOrigins:    []string{"*"},
	}, logging.Nop())
	require.NoError(t, err)
	s.Start(ctx)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close(ctx)
	})

	session := appstate.NewMemoryStorage()
	c, err := client.New(ts.URL, func() string {
		tok, _ := session.Get(gate.KeyToken)
		return tok
	}, nil)
	require.NoError(t, err)
	require.NoError(t, gate.New(session, client.Verifier{Client: c}).Unlock(ctx, "0214"))
	return client.NewAPI(c)
}

func TestAddPlan_ValidationKeepsDraftThenCreates(t *testing.T) {
	api := liveServer(t)
	m := unlockedModel(t, api)
	p := m.pane().(*listPane[models.Plan])

	m, _ = update(t, m, keys("a"))
	require.Equal(t, modeForm, m.mode)

	// What the form would hand back with an empty title.
	p.collect = func() models.Plan { return models.Plan{Type: models.PlanDate, Date: "2026-02-14"} }
	m.form, m.mode = nil, modeBrowse
	msg := p.Submit(context.Background())()
	saved := msg.(savedMsg)
	require.ErrorIs(t, saved.err, validate.ErrValidation)
	assert.Contains(t, p.FieldErrors(), "title")
	assert.Equal(t, forms.AddingNew, p.forms.AddState())

	m, _ = update(t, m, saved)
	require.Equal(t, modeForm, m.mode, "the form comes back with the kept draft")
	draft, ok := p.forms.AddDraft()
	require.True(t, ok)
	assert.Equal(t, "2026-02-14", draft.Date)
	assert.Contains(t, m.View(), "title")

	p.collect = func() models.Plan {
		return models.Plan{Title: "Valentine's dinner", Type: models.PlanDate, Date: "2026-02-14"}
	}
	m.form, m.mode = nil, modeBrowse
	saved = p.Submit(context.Background())().(savedMsg)
	require.NoError(t, saved.err)
	assert.NotEmpty(t, saved.id)
	assert.Equal(t, forms.Closed, p.forms.AddState())

	m, _ = update(t, m, saved)
	assert.Equal(t, "Saved ♥", m.toast)

	plans, err := api.Plans.List(context.Background(), p.ViewState())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.True(t, strings.HasPrefix(plans[0].Title, "Valentine"))
}

func TestToggleAndRemoveThroughPane(t *testing.T) {
	api := liveServer(t)
	ctx := context.Background()
	id, err := api.BucketList.Add(ctx, models.BucketListItem{Title: "Skydive", Category: models.BucketAdventure})
	require.NoError(t, err)

	p := newBucketListPane(api)
	items, err := api.BucketList.List(ctx, p.ViewState())
	require.NoError(t, err)
	raw, _ := json.Marshal(items)
	require.NoError(t, p.Load(raw))

	msg := p.Toggle(ctx)().(mutatedMsg)
	require.NoError(t, msg.err)
	items, err = api.BucketList.List(ctx, p.ViewState())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
	assert.True(t, items[0].IsCompleted)

	msg = p.Remove(ctx)().(mutatedMsg)
	require.NoError(t, msg.err)
	assert.Equal(t, "delete", msg.action)

	// The pane still shows the stale record until the feed refreshes it.
	msg = p.Remove(ctx)().(mutatedMsg)
	require.ErrorIs(t, msg.err, store.ErrNotFound)
	assert.ErrorIs(t, p.Banner(), store.ErrNotFound)
}
