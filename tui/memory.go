package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"lovenest/client"
	"lovenest/models"
	"lovenest/upload"
)

// memoryDraft is what the memory form collects for one plan. It lives on
// the model until the memory is saved.
type memoryDraft struct {
	planID    string
	planTitle string
	rating    int
	notes     string
	photos    string
	// uploaded holds the URLs of photos an earlier attempt already stored.
	uploaded []string
}

func (d memoryDraft) paths() []string { return splitList(d.photos) }

func (d memoryDraft) memory(now time.Time) models.Memory {
	var notes []string
	for _, line := range strings.Split(d.notes, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			notes = append(notes, line)
		}
	}
	if notes == nil {
		notes = []string{}
	}
	urls := append([]string{}, d.uploaded...)
	return models.Memory{Photos: urls, Rating: d.rating, Notes: notes, CreatedAt: now.UTC()}
}

// checkPhotos reports the first listed file that cannot be uploaded.
// maxBytes <= 0 skips the size check.
func checkPhotos(s string, maxBytes int64) error {
	for _, p := range splitList(s) {
		if _, err := upload.ReadFile(p, maxBytes); err != nil {
			return err
		}
	}
	return nil
}

// memoryForm binds the draft held by the model; maxBytes is checked while
// typing so oversized photos never reach the uploader.
func memoryForm(d *memoryDraft, maxBytes int64) *huh.Form {
	ratings := make([]huh.Option[int], 0, 5)
	for n := 5; n >= 1; n-- {
		ratings = append(ratings, huh.NewOption(stars(n), n))
	}
	desc := "Image files, comma separated."
	if n := len(d.uploaded); n > 0 {
		desc = fmt.Sprintf("%d already uploaded. %s", n, desc)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().Title("How was it?").Options(ratings...).Value(&d.rating),
			huh.NewText().Title("Notes").Description("One per line.").Value(&d.notes),
			huh.NewInput().
				Title("Photos").
				Description(desc).
				Value(&d.photos).
				Validate(func(s string) error { return checkPhotos(s, maxBytes) }),
		).Title("Memory of " + d.planTitle),
	)
}

// openMemory starts a memory for the selected plan, or brings back the
// unsaved draft of the same plan.
func (m Model) openMemory() (Model, tea.Cmd) {
	if m.pane().Name() != plansPane {
		return m.notify("Memories belong to plans")
	}
	id, title, ok := m.pane().Selected()
	if !ok {
		return m.notify("Pick a plan first")
	}
	if m.memory == nil || m.memory.planID != id {
		m.memory = &memoryDraft{planID: id, planTitle: title, rating: 5}
	}
	return m.showMemory()
}

func (m Model) showMemory() (Model, tea.Cmd) {
	m.form = m.styleForm(memoryForm(m.memory, m.opts.MaxUploadBytes))
	m.mode = modeMemory
	return m, m.form.Init()
}

// reopenMemory shows text and puts the kept draft back in front of the user.
func (m Model) reopenMemory(text string) (Model, tea.Cmd) {
	m, toast := m.notify(text)
	if m.memory == nil || m.mode != modeBrowse {
		return m, toast
	}
	m, cmd := m.showMemory()
	return m, tea.Batch(cmd, toast)
}

// reopenForm is reopenMemory for a collection form waiting on photos.
func (m Model) reopenForm(name, text string) (Model, tea.Cmd) {
	m, toast := m.notify(text)
	p := m.paneByName(name)
	if p == nil || p != m.pane() || m.mode != modeBrowse {
		return m, toast
	}
	form := p.Reopen()
	if form == nil {
		return m, toast
	}
	m.form = m.styleForm(form)
	m.mode = modeForm
	return m, tea.Batch(m.form.Init(), toast)
}

// startUpload runs when the memory form completes. Nothing is saved until
// every photo has been uploaded.
func (m Model) startUpload() (Model, tea.Cmd) {
	m.form = nil
	m.mode = modeBrowse
	if paths := m.memory.paths(); len(paths) > 0 {
		return m.uploadPhotos("", paths)
	}
	return m.saveMemory()
}

func (m Model) saveMemory() (Model, tea.Cmd) {
	mem := m.memory.memory(time.Now())
	if err := mem.Validate(); err != nil {
		return m.reopenMemory(err.Error())
	}
	return m, saveMemoryCmd(m.ctx, m.api, *m.memory, mem)
}

// uploadPhotos reads paths and uploads them one after another. pane names
// the form waiting for them; empty means the open memory.
func (m Model) uploadPhotos(pane string, paths []string) (Model, tea.Cmd) {
	files := make([]upload.File, 0, len(paths))
	for _, p := range paths {
		f, err := upload.ReadFile(p, m.opts.MaxUploadBytes)
		if err != nil {
			return m.uploadFailed(pane, "Photo not added: "+err.Error())
		}
		files = append(files, f)
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelUpload = cancel
	m.percent = 0
	m.mode = modeUploading
	tracker := upload.NewTracker(m.uploader(), m.opts.MaxUploadBytes, func(p int) {
		m.sender.Send(progressMsg(p))
	})
	m.log.Info(m.ctx, "uploading photos", "pane", pane, "files", len(files))
	return m, uploadCmd(ctx, tracker, pane, paths, files)
}

func (m Model) uploadFailed(pane, text string) (Model, tea.Cmd) {
	if pane == "" {
		return m.reopenMemory(text)
	}
	return m.reopenForm(pane, text)
}

func (m Model) uploader() upload.Uploader {
	return &upload.HTTPUploader{
		Endpoint: m.opts.UploadURL,
		Preset:   m.opts.UploadPreset,
		Token:    m.app.Gate.Token(),
	}
}

// onUploaded keeps every stored URL on the draft. Files the batch never
// reached stay pending so a retry only sends those.
func (m Model) onUploaded(msg uploadedMsg) (Model, tea.Cmd) {
	if m.cancelUpload != nil {
		m.cancelUpload()
		m.cancelUpload = nil
	}
	m.mode = modeBrowse

	res := msg.result
	pending := msg.paths[min(len(msg.paths), len(res.URLs)+len(res.Failed)):]
	for _, f := range res.Failed {
		m.log.Warn(m.ctx, "photo skipped", "file", f.Name, "error", f.Err)
	}
	var p pane
	if msg.pane == "" {
		if m.memory == nil {
			return m, nil
		}
		m.memory.uploaded = append(m.memory.uploaded, res.URLs...)
		m.memory.photos = strings.Join(pending, ", ")
	} else {
		if p = m.paneByName(msg.pane); p == nil {
			return m, nil
		}
		if err := p.AttachPhotos(res.URLs, pending); err != nil {
			m.log.Warn(m.ctx, "attach photos", "pane", msg.pane, "error", err)
			return m.notify("Photos uploaded but the form was closed")
		}
	}

	if msg.err != nil {
		text := "Upload cancelled, nothing was saved"
		if !errors.Is(msg.err, context.Canceled) {
			m.log.Warn(m.ctx, "upload failed", "pane", msg.pane, "error", msg.err)
			text = "Upload failed: " + msg.err.Error()
		}
		return m.uploadFailed(msg.pane, text)
	}

	var save tea.Cmd
	if p == nil {
		m, save = m.saveMemory()
	} else {
		save = p.Submit(m.ctx)
	}
	if n := len(res.Failed); n > 0 {
		var toast tea.Cmd
		m, toast = m.notify(fmt.Sprintf("%d photo(s) skipped: %v", n, res.Failed[0]))
		return m, tea.Batch(save, toast)
	}
	return m, save
}

// onMemorySaved drops the draft once the server has it; on failure the form
// comes back with everything that was typed and uploaded.
func (m Model) onMemorySaved(msg memorySavedMsg) (Model, tea.Cmd) {
	current := m.memory != nil && m.memory.planID == msg.planID
	if msg.err == nil {
		if current {
			m.memory = nil
		}
		return m.notify("Memory of " + msg.title + " saved ♥")
	}
	if errors.Is(msg.err, client.ErrUnauthorized) {
		return m.relock("Session expired, enter our secret again")
	}
	m.log.Warn(m.ctx, "save memory", "plan", msg.planID, "error", msg.err)
	text := "Memory not saved: " + msg.err.Error()
	if !current {
		return m.notify(text)
	}
	return m.reopenMemory(text)
}
