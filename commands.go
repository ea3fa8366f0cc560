package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/term"

	"lovenest/appstate"
	"lovenest/client"
	"lovenest/config"
	"lovenest/gate"
	"lovenest/logging"
	"lovenest/server"
	"lovenest/tui"
)

type ServeCmd struct {
	config.Server `embed:""`
}

func (c *ServeCmd) Run() error {
	log := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, c.Server, log)
	if err != nil {
		return err
	}
	if err := srv.ListenAndServe(ctx); err != nil {
		return err
	}
	log.Info(context.Background(), "server stopped cleanly")
	return nil
}

type TuiCmd struct {
	config.Client `embed:""`
}

func (c *TuiCmd) Run() error {
	// The terminal belongs to the UI, so logs go to a file.
	if dir := filepath.Dir(c.LogFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	logFile, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	log := logging.New(logFile, "text", c.LogLevel)

	paths, err := appstate.DefaultPaths()
	if err != nil {
		return err
	}
	if c.SessionFile != "" {
		paths.Session = c.SessionFile
	}
	if c.SettingsFile != "" {
		paths.Local = c.SettingsFile
	}

	// The token is read from session storage on every request; the storage
	// only exists once the app context is open.
	var app *appstate.Context
	httpClient, err := client.New(c.ServerURL, func() string {
		if app == nil {
			return ""
		}
		return app.Gate.Token()
	}, nil)
	if err != nil {
		return err
	}
	app, err = appstate.Open(paths, client.Verifier{Client: httpClient}, time.Now())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	log.Info(ctx, "starting", "server", c.ServerURL, "theme", string(app.Theme.Mode()), "locked", app.Gate.State() == gate.Locked)
	return tui.Run(ctx, app, client.NewAPI(httpClient), tui.Options{
		UploadURL:      c.UploadURL(),
		UploadPreset:   c.UploadPreset,
		MaxUploadBytes: c.MaxUploadBytes,
	}, log)
}

type HashPasscodeCmd struct {
	Passcode string `arg:"" optional:"" help:"Passcode to hash; read from the terminal when omitted."`
}

func (c *HashPasscodeCmd) Run() error {
	passcode := c.Passcode
	if passcode == "" {
		fmt.Fprint(os.Stderr, "Passcode: ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read passcode: %w", err)
		}
		passcode = string(b)
	}
	if passcode == "" {
		return fmt.Errorf("passcode must not be empty")
	}
	hash, err := gate.HashPasscode(passcode)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
