// Admin UI and JSON API over the telemetry core.
package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"tractorops-sim/internal/core"
	"tractorops-sim/internal/safety"
)

// Server exposes the core over HTTP. It is a thin presentation layer; all
// decisions stay in the core.
type Server struct {
	Core *core.Core
	tpl  *template.Template
	mux  *http.ServeMux
	srv  *http.Server
}

//go:embed templates/index.html
var content embed.FS

// NewServer builds the admin server around a core.
func NewServer(c *core.Core) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	s := &Server{Core: c, tpl: tpl, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /", s.handleIndex)
	s.mux.HandleFunc("GET /snapshot", s.handleSnapshot)
	s.mux.HandleFunc("GET /history", s.handleHistory)
	s.mux.HandleFunc("GET /status", s.handleStatus)
	s.mux.HandleFunc("GET /tractor-info", s.handleTractorInfo)
	s.mux.HandleFunc("POST /command", s.handleCommand)
	s.mux.HandleFunc("POST /emergency-stop", s.handleEmergencyStop)
	s.mux.HandleFunc("POST /clear-emergency-stop", s.handleClearEmergencyStop)
	s.mux.HandleFunc("POST /safe-mode", s.handleSafeMode)
}

// Start serves until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.srv = &http.Server{Addr: addr, Handler: s.mux}
	go func() {
		<-ctx.Done()
		_ = s.srv.Shutdown(context.Background())
	}()
	return s.srv.ListenAndServe()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Status   safety.Status
		SafeMode bool
		Info     any
		Snapshot any
	}{
		Status:   s.Core.Status(),
		SafeMode: s.Core.SafeMode(),
		Info:     s.Core.TractorInfo(),
		Snapshot: s.Core.Snapshot(),
	}
	if err := s.tpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Core.Snapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")
	if channel == "" {
		http.Error(w, "channel parameter required", http.StatusBadRequest)
		return
	}
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))
	if count <= 0 {
		count = 100
	}
	writeJSON(w, s.Core.History(channel, count))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":    s.Core.Status(),
		"safe_mode": s.Core.SafeMode(),
	})
}

func (s *Server) handleTractorInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Core.TractorInfo())
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd safety.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "invalid command payload", http.StatusBadRequest)
		return
	}
	if err := s.Core.SendCommand(r.Context(), cmd); err != nil {
		var rej *safety.Rejection
		if errors.As(err, &rej) {
			w.WriteHeader(http.StatusConflict)
			writeJSON(w, map[string]any{"accepted": false, "reason": rej.Reason, "message": rej.Message})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"accepted": true})
}

func (s *Server) handleEmergencyStop(w http.ResponseWriter, r *http.Request) {
	err := s.Core.SendCommand(r.Context(), safety.Command{Name: safety.CmdEmergencyStop})
	if err != nil {
		var rej *safety.Rejection
		if errors.As(err, &rej) {
			w.WriteHeader(http.StatusConflict)
			writeJSON(w, map[string]any{"accepted": false, "reason": rej.Reason})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"accepted": true, "status": s.Core.Status()})
}

func (s *Server) handleClearEmergencyStop(w http.ResponseWriter, r *http.Request) {
	if err := s.Core.ClearEmergencyStop(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]any{"status": s.Core.Status()})
}

func (s *Server) handleSafeMode(w http.ResponseWriter, r *http.Request) {
	on, err := strconv.ParseBool(r.URL.Query().Get("on"))
	if err != nil {
		http.Error(w, "on parameter must be true or false", http.StatusBadRequest)
		return
	}
	s.Core.SetSafeMode(on)
	writeJSON(w, map[string]any{"safe_mode": s.Core.SafeMode()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
