package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// healthHandler reports that the application context is up.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// modulesHandler serves the merged catalog along with the modules already
// instantiated for the application context.
func (a *App) modulesHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Modules endpoint hit.", "remote_addr", r.RemoteAddr)
	body := struct {
		ContextID string `json:"contextId"`
		Modules   any    `json:"modules"`
		Loaded    any    `json:"loaded"`
	}{
		ContextID: a.appCtx.ID(),
		Modules:   a.host.Descriptors(),
		Loaded:    a.host.Loaded(a.appCtx),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Error("Failed to write modules response", "error", err)
	}
}

func (a *App) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/modules", a.modulesHandler)
	return mux
}

// serveHealthcheck runs the health check server until ctx is cancelled.
func (a *App) serveHealthcheck(ctx context.Context, port int) error {
	a.logger.Debug("Configuring health check server.")
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("health check server: %w", err)
	}
	a.httpServer = &http.Server{Handler: a.handler(), ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://%s/health", ln.Addr()))
		errCh <- a.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health check server failed unexpectedly: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.logger.Info("🩺 Shutting down health check server...")
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("health check server shutdown failed: %w", err)
	}
	a.logger.Debug("Health check server shut down gracefully.")
	return nil
}
