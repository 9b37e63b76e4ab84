// Package api serves the local HTTP control surface used by the CLI.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/netutil"

	"github.com/user/oneclick-vpn/internal/config"
	"github.com/user/oneclick-vpn/internal/core"
	"github.com/user/oneclick-vpn/internal/logger"
	"github.com/user/oneclick-vpn/internal/profiles"
)

// Constants for route prefixing. Versioning is explicit to allow non-breaking additions.
const (
	APIVersion     = "v1"
	DefaultAddress = "127.0.0.1:8787"
)

// Backend is the service the server controls.
type Backend interface {
	GetStatusPayload() *core.StatusPayload
	SelectedProfile() string
	SelectProfile(id string) error
	Dispatch(req core.Request) error
}

// ServerOptions configures the HTTP server.
type ServerOptions struct {
	Addr              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxConns          int // concurrent connections accepted by Start
}

// Server hosts the HTTP API.
type Server struct {
	http     *http.Server
	backend  Backend
	opts     ServerOptions
	listener net.Listener
	done     chan struct{}
}

// NewServer constructs a server for backend. It does not listen until Start.
func NewServer(backend Backend, opts ServerOptions) *Server {
	if backend == nil {
		panic("api.NewServer: backend is nil")
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddress
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 5 * time.Second
	}
	if opts.ReadHeaderTimeout == 0 {
		opts.ReadHeaderTimeout = 2 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 60 * time.Second
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	if opts.MaxConns == 0 {
		opts.MaxConns = 16
	}

	mux := http.NewServeMux()
	s := &Server{
		backend: backend,
		opts:    opts,
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           withBasicMiddleware(withLocalOnly(config.IsSocketAddress(opts.Addr), mux)),
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
			WriteTimeout:      opts.WriteTimeout,
			IdleTimeout:       opts.IdleTimeout,
		},
	}

	mux.HandleFunc("/"+APIVersion+"/healthz", s.handleHealthz)
	mux.HandleFunc("/"+APIVersion+"/status", s.handleStatus)
	mux.HandleFunc("/"+APIVersion+"/profiles", s.handleProfiles)
	mux.HandleFunc("/"+APIVersion+"/profile", s.handleSelect)
	mux.HandleFunc("/"+APIVersion+"/connect", s.handleCommand(core.CommandConnect))
	mux.HandleFunc("/"+APIVersion+"/disconnect", s.handleCommand(core.CommandDisconnect))
	mux.HandleFunc("/"+APIVersion+"/toggle", s.handleCommand(core.CommandToggle))
	mux.Handle("/metrics", metricsHandler(backend))

	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start binds the listen address and serves in a background goroutine.
func (s *Server) Start() error {
	ln, err := listen(s.opts.Addr)
	if err != nil {
		return fmt.Errorf("api: listen %s: %w", s.opts.Addr, err)
	}
	ln = netutil.LimitListener(ln, s.opts.MaxConns)
	s.listener = ln
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		defer logger.Recover("apiServer")
		logger.Info("api: listening on %s", ln.Addr())
		if err := s.http.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api: Serve error: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.opts.Addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the server, waiting up to ShutdownTimeout.
func (s *Server) Stop(ctx context.Context) error {
	if timeout := s.opts.ShutdownTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	err := s.http.Shutdown(ctx)
	if s.done != nil {
		<-s.done
	}
	return err
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": timestamp(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		StatusPayload: *s.backend.GetStatusPayload(),
		GeneratedAt:   timestamp(),
	})
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	selected := s.backend.SelectedProfile()
	resp := ProfilesResponse{Selected: selected}
	for _, id := range profiles.Names() {
		resp.Profiles = append(resp.Profiles, ProfileView{
			ID:       id,
			Label:    profiles.Label(id),
			Selected: id == selected,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSelect persists a new selection.
// Method: PUT
// Request: ProfileRequest JSON
// Errors: 400 for malformed JSON or an unknown profile.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPut) {
		return
	}
	req, ok := decodeProfile(w, r, false)
	if !ok {
		return
	}
	if err := s.backend.SelectProfile(req.Profile); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, profiles.ErrUnknownProfile) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ProfileRequest{Profile: s.backend.SelectedProfile()})
}

// handleCommand accepts a service command. Effects are observed via status.
// Method: POST
// Request: optional ProfileRequest JSON (ignored for disconnect)
// Response (202): CommandResponse JSON
func (s *Server) handleCommand(cmd core.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allow(w, r, http.MethodPost) {
			return
		}
		req, ok := decodeProfile(w, r, true)
		if !ok {
			return
		}
		if cmd == core.CommandDisconnect {
			req.Profile = ""
		}
		if err := s.backend.Dispatch(core.Request{Command: cmd, Profile: req.Profile}); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusAccepted, CommandResponse{
			Accepted: true,
			Command:  string(cmd),
			Profile:  req.Profile,
		})
	}
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// decodeProfile strictly decodes a ProfileRequest. An empty body is accepted
// when optional is set.
func decodeProfile(w http.ResponseWriter, r *http.Request, optional bool) (ProfileRequest, bool) {
	var req ProfileRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return req, true
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return req, false
	}
	if !optional && req.Profile == "" {
		writeError(w, http.StatusBadRequest, "profile is required")
		return req, false
	}
	return req, true
}

// socketHost is the Host the Client sends over a unix socket or named pipe.
const socketHost = "oneclick-vpn"

// withLocalOnly rejects requests a web page could forge: a foreign Origin,
// a Host that does not name the local server (DNS rebinding) and POST or
// PUT without a JSON body type, which browsers only send after a preflight.
func withLocalOnly(socket bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !localHost(r.Host, socket) {
			logger.Warning("api: rejected %s %s for host %q", r.Method, r.URL.Path, r.Host)
			writeError(w, http.StatusForbidden, "host not allowed")
			return
		}
		if origin := r.Header.Get("Origin"); origin != "" && !localOrigin(origin) {
			logger.Warning("api: rejected %s %s from origin %q", r.Method, r.URL.Path, origin)
			writeError(w, http.StatusForbidden, "cross-origin requests are not allowed")
			return
		}
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mt != "application/json" {
				writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// localHost reports whether a Host header names this machine.
func localHost(host string, socket bool) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if socket && host == socketHost {
		return true
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}
	addr, err := netip.ParseAddr(host)
	return err == nil && addr.IsLoopback()
}

func localOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return localHost(u.Host, false)
}

// Basic middleware: sets JSON content type and very lightweight logging.
func withBasicMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := TimeNow()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
		logger.Debug("api: %s %s %dms", r.Method, r.URL.Path, time.Since(start).Milliseconds())
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIError{Error: msg, Timestamp: timestamp()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}
