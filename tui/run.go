package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"lovenest/appstate"
	"lovenest/client"
	"lovenest/logging"
)

// Run starts the program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, app *appstate.Context, api *client.API, opts Options, log logging.Logger) error {
	m := NewModel(ctx, app, api, opts, log)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.sender.p = p

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.closeFeeds()
		if fm.cancelUpload != nil {
			fm.cancelUpload()
		}
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
