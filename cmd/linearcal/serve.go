package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/guilherme-santos/linearcalendar/file"
	"github.com/guilherme-santos/linearcalendar/internal"
	"github.com/guilherme-santos/linearcalendar/internal/api"
	"github.com/guilherme-santos/linearcalendar/internal/drag"
	"github.com/guilherme-santos/linearcalendar/internal/syncer"
	"github.com/guilherme-santos/linearcalendar/internal/websocket"
)

const refreshOff = "off"

var ServeCommand = _serveCommand{
	Name:        "serve",
	Description: "Serve the calendar API on the configured address",
}

type _serveCommand struct {
	Name        string
	Description string
}

func (s _serveCommand) Run(ctx context.Context, cfg *file.Config, args []string) error {
	fs := newFlagSet(s.Name)
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "address to listen on")
	fs.StringVar(&cfg.RefreshCron, "refresh", cfg.RefreshCron, `refresh schedule, "off" to disable`)
	if err := fs.Parse(args); err != nil {
		return err
	}

	w := flag.CommandLine.Output()

	st, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	googleCal, err := newGoogleClient(cfg)
	if err != nil {
		return fmt.Errorf("creating client: %v", err)
	}
	googleCal.Output = w
	if ok, err := resumeSession(ctx, cfg, googleCal); err != nil {
		internal.Logf(w, "serve:", nil, "Unable to resume Google session: %v", err)
	} else if !ok {
		internal.Logf(w, "serve:", nil, "No Google token, run %q to connect", ConfigureCommand.Name)
	}

	ctrl := syncer.New(w, googleCal, st)
	defer ctrl.Wait()
	if err := ctrl.AutoReconnect(ctx); err != nil {
		internal.Logf(w, "serve:", nil, "Unable to reconnect: %v", err)
	}

	holidays, err := loadHolidays(cfg)
	if err != nil {
		return err
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)
	bc := websocket.NewBroadcaster(hub, st)
	defer bc.Attach()()

	if cfg.RefreshCron != refreshOff {
		sched, err := syncer.NewScheduler(ctrl, cfg.RefreshCron)
		if err != nil {
			return err
		}
		sched.OnError = bc.SyncError
		sched.Start()
		defer sched.Stop()
		internal.Logf(w, "serve:", nil, "Next refresh at %s", sched.Next().Format(time.RFC3339))
	}

	srv := &http.Server{
		Addr: cfg.Listen,
		Handler: api.NewRouter(api.Services{
			Store:      st,
			Controller: ctrl,
			Drag:       drag.New(st, ctrl),
			Holidays:   holidays,
			Hub:        hub,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		internal.Logf(w, "serve:", nil, "Listening on %s", cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
