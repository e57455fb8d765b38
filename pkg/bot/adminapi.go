// Copyright 2024-2026 Aiku AI

package bot

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdlog "log"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.mau.fi/util/exzerolog"
)

// maxReloadBodySize is the maximum allowed request body for module reload (1 MB).
const maxReloadBodySize = 1 << 20

const adminAPIShutdownTimeout = 5 * time.Second

// ModuleInfo describes one loaded module in the GET /api/modules response.
type ModuleInfo struct {
	Identity           string   `json:"identity"`
	Namespace          string   `json:"namespace,omitempty"`
	Commands           []string `json:"commands"`
	RestrictedCommands []string `json:"restricted_commands"`
	ConnectHook        bool     `json:"connect_hook"`
}

// AdminHandler returns the mux serving the admin API.
func (c *Client) AdminHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/reload-modules", c.HandleReloadModules)
	mux.HandleFunc("/api/modules", c.HandleListModules)
	return mux
}

func (c *Client) serveAdminAPI(ctx context.Context, addr string) {
	server := &http.Server{
		Addr:         addr,
		Handler:      c.AdminHandler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     stdlog.New(exzerolog.NewLogWriter(c.log).WithLevel(zerolog.WarnLevel), "", 0),
	}
	errCh := make(chan error, 1)
	go func() {
		c.log.Info().Str("addr", addr).Msg("Starting admin API")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.log.Error().Err(err).Msg("Admin API error")
		}
		return
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), adminAPIShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		c.log.Warn().Err(err).Msg("Failed to shut down admin API")
	}
	<-errCh
}

// HandleReloadModules is an HTTP handler for POST /api/reload-modules.
// It accepts an optional JSON list of module names; if the body is empty or
// absent, the modules listed in the config are used.
func (c *Client) HandleReloadModules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	c.log.Info().
		Str("remote_addr", r.RemoteAddr).
		Str("content_length", r.Header.Get("Content-Length")).
		Msg("Module reload requested")

	var names []string
	source := "config"
	if r.Body != nil && r.ContentLength != 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxReloadBodySize)
		defer r.Body.Close()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &names); err != nil {
				http.Error(w, "invalid JSON", http.StatusBadRequest)
				return
			}
			source = "body"
		}
	}
	if source == "config" {
		names = c.cfg.Modules
	}

	c.log.Info().
		Str("remote_addr", r.RemoteAddr).
		Int("modules", len(names)).
		Str("source", source).
		Msg("Processing module reload")

	added, removed := c.loader.Reload(names)
	resp := map[string]int{
		"added":   added,
		"removed": removed,
		"total":   len(c.registry.Modules()),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		c.log.Warn().Err(err).Msg("Failed to write reload response")
	}
}

// HandleListModules is an HTTP handler for GET /api/modules.
func (c *Client) HandleListModules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	modules := c.registry.Modules()
	out := make([]ModuleInfo, 0, len(modules))
	for _, m := range modules {
		id := ModuleIdentity(m)
		ns, _ := Namespace(m)
		commands, restricted := c.registry.CommandsOf(id)
		_, hook := m.(ConnectHook)
		out = append(out, ModuleInfo{
			Identity:           id,
			Namespace:          ns,
			Commands:           nonNil(commands),
			RestrictedCommands: nonNil(restricted),
			ConnectHook:        hook,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		c.log.Warn().Err(err).Msg("Failed to write module list")
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
