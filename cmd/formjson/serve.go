package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tomasbasham/formjson"
	"github.com/tomasbasham/formjson/internal/errors"
)

// ServeCmd runs an HTTP server that answers form posts with their nested
// JSON encoding
type ServeCmd struct {
	Listen string `help:"Address to listen on. Defaults to the configured address." short:"l"`
}

// Run executes the serve command
func (c *ServeCmd) Run(app *App) error {
	addr := c.Listen
	if addr == "" {
		addr = app.Config.Server.Listen
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.NewServerError("failed to listen on "+addr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serve(ctx, ln, app)
}

// serve runs the server on ln until ctx is done.
func serve(ctx context.Context, ln net.Listener, app *App) error {
	srv := &http.Server{
		Handler:           newHandler(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		app.Logger.Info("listening", "addr", ln.Addr().String(), "path", app.Config.Server.Path)
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return errors.NewServerError("server stopped", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.NewServerError("failed to shut down", err)
	}
	app.Logger.Info("server stopped")
	return nil
}

func newHandler(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(app.Logger.Handler(), slog.LevelDebug),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(formjson.Middleware(app.Config.EncodeOptions()...))

	r.Post(app.Config.Server.Path, echoJSON)
	return r
}

// echoJSON writes back the JSON body produced by the form middleware.
func echoJSON(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "expected a form body", http.StatusUnsupportedMediaType)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = io.Copy(w, r.Body)
}
