// Package portal provides the configuration web UI. The same server backs
// the everyday status page on the home network and the captive fallback
// portal on the appliance's own access point.
package portal

import (
	"context"
	"log"
	"net"
	"net/http"
	"strconv"

	"github.com/sweeney/wifi-clock/internal/logic"
	"github.com/sweeney/wifi-clock/internal/status"
)

// SettingsStore is the slice of persistence the portal writes to.
type SettingsStore interface {
	LoadClock() logic.Settings
	SaveSettings(logic.Settings) error
	SaveCredentials(ssid, password string) error
	EraseAll() error
}

// Callbacks notify the run loop of portal-driven changes. All of them are
// invoked from HTTP handler goroutines and must be safe for that.
type Callbacks struct {
	OnSettings    func(logic.Settings)
	OnCredentials func(ssid, password string)
	OnReset       func()
}

// Server serves the settings page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	store      SettingsStore
	callbacks  Callbacks
}

// New creates a Server that reads state from the given tracker and writes
// configuration through the given store.
func New(addr string, tracker *status.Tracker, store SettingsStore, cb Callbacks) *Server {
	s := &Server{tracker: tracker, store: store, callbacks: cb}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/settings", s.handleSettings)
	mux.HandleFunc("/wifi", s.handleWiFi)
	mux.HandleFunc("/reset", s.handleReset)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap, s.store.LoadClock())
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	cfg := s.store.LoadClock()
	if v := r.PostFormValue("brightness"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < logic.BrightnessMin || n > logic.BrightnessMax {
			http.Error(w, "brightness out of range", http.StatusBadRequest)
			return
		}
		cfg.Brightness = n
	}
	cfg.Hour24 = r.PostFormValue("hour24") != ""
	if v := r.PostFormValue("utc_offset_sec"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "bad utc offset", http.StatusBadRequest)
			return
		}
		cfg.UTCOffsetSec = int32(n)
		cfg.HasZone = true
	}
	if v := r.PostFormValue("dst_offset_sec"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "bad dst offset", http.StatusBadRequest)
			return
		}
		cfg.DSTOffsetSec = int32(n)
	}

	if err := s.store.SaveSettings(cfg); err != nil {
		log.Printf("portal: save settings: %v", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	if s.callbacks.OnSettings != nil {
		s.callbacks.OnSettings(cfg)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleWiFi(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	ssid := r.PostFormValue("ssid")
	if ssid == "" {
		http.Error(w, "ssid required", http.StatusBadRequest)
		return
	}
	password := r.PostFormValue("password")

	if err := s.store.SaveCredentials(ssid, password); err != nil {
		log.Printf("portal: save credentials: %v", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	log.Printf("portal: new credentials for %q", ssid)
	if s.callbacks.OnCredentials != nil {
		s.callbacks.OnCredentials(ssid, password)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.store.EraseAll(); err != nil {
		log.Printf("portal: factory reset: %v", err)
		http.Error(w, "reset failed", http.StatusInternalServerError)
		return
	}
	log.Printf("portal: factory reset requested")
	if s.callbacks.OnReset != nil {
		s.callbacks.OnReset()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
