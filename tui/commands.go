package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lovenest/client"
	"lovenest/gate"
	"lovenest/live"
	"lovenest/models"
	"lovenest/upload"
)

const (
	requestTimeout = 15 * time.Second
	toastDuration  = 3 * time.Second
	resubscribeIn  = 2 * time.Second
	shakeFrames    = 8
	shakeInterval  = 40 * time.Millisecond
)

type (
	unlockedMsg struct{ err error }
	lockedMsg   struct{ err error }

	subscribedMsg struct {
		name string
		sub  *client.Subscription
		err  error
	}
	snapshotMsg struct {
		name string
		sub  *client.Subscription
		snap live.Snapshot
	}
	feedClosedMsg struct {
		name string
		sub  *client.Subscription
		err  error
	}
	resubscribeMsg struct{ name string }

	savedMsg struct {
		pane string
		id   string
		err  error
	}
	mutatedMsg struct {
		pane   string
		action string
		err    error
	}

	progressMsg int
	uploadedMsg struct {
		// pane is the form waiting for the photos; empty for a memory.
		pane   string
		paths  []string
		result upload.Result
		err    error
	}
	memorySavedMsg struct {
		planID string
		title  string
		err    error
	}
	exportedMsg struct {
		path string
		err  error
	}

	toastExpiredMsg int
	shakeMsg        struct{}
)

// sender lets long-running commands report back through the program.
type sender struct {
	p *tea.Program
}

func (s *sender) Send(msg tea.Msg) {
	if s != nil && s.p != nil {
		s.p.Send(msg)
	}
}

func unlockCmd(ctx context.Context, g *gate.Gate, passcode string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		return unlockedMsg{err: g.Unlock(ctx, passcode)}
	}
}

// lockCmd ends the server session, then forgets the local one even when
// the server could not be reached.
func lockCmd(ctx context.Context, api *client.API, g *gate.Gate) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		err := api.Logout(ctx)
		if lerr := g.Lock(); lerr != nil {
			err = errors.Join(err, lerr)
		}
		return lockedMsg{err: err}
	}
}

func subscribeCmd(ctx context.Context, api *client.API, name string) tea.Cmd {
	return func() tea.Msg {
		sub, err := api.Subscribe(ctx, name)
		return subscribedMsg{name: name, sub: sub, err: err}
	}
}

// nextSnapshot waits for one message on the feed; it is reissued after
// every snapshot.
func nextSnapshot(name string, sub *client.Subscription) tea.Cmd {
	return func() tea.Msg {
		snap, err := sub.Next()
		if err != nil {
			return feedClosedMsg{name: name, sub: sub, err: err}
		}
		return snapshotMsg{name: name, sub: sub, snap: snap}
	}
}

func resubscribeLater(name string) tea.Cmd {
	return tea.Tick(resubscribeIn, func(time.Time) tea.Msg { return resubscribeMsg{name: name} })
}

func uploadCmd(ctx context.Context, tracker *upload.Tracker, pane string, paths []string, files []upload.File) tea.Cmd {
	return func() tea.Msg {
		res, err := tracker.Upload(ctx, files)
		return uploadedMsg{pane: pane, paths: paths, result: res, err: err}
	}
}

func saveMemoryCmd(ctx context.Context, api *client.API, d memoryDraft, m models.Memory) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		return memorySavedMsg{planID: d.planID, title: d.planTitle, err: api.AddMemory(ctx, d.planID, m)}
	}
}

func exportCmd(ctx context.Context, api *client.API, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		f, err := os.Create(path)
		if err != nil {
			return exportedMsg{err: err}
		}
		err = api.MemoryBook(ctx, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
			return exportedMsg{err: fmt.Errorf("memory book: %w", err)}
		}
		return exportedMsg{path: path}
	}
}

func expireToast(id int) tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg(id) })
}

func shakeTick() tea.Cmd {
	return tea.Tick(shakeInterval, func(time.Time) tea.Msg { return shakeMsg{} })
}
