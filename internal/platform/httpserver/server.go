package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	reportengine "tribunal/contexts/moderation/report-engine"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	moderation reportengine.Module
}

func New(moderation reportengine.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		moderation: moderation,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/moderation/v1/posts", s.handleCreatePost)
	s.mux.HandleFunc("GET /api/moderation/v1/posts/{post_id}", s.handleGetPost)
	s.mux.HandleFunc("POST /api/moderation/v1/reports", s.handleFileReport)
	s.mux.HandleFunc("GET /api/moderation/v1/reports/{report_id}", s.handleGetReport)
	s.mux.HandleFunc("POST /api/moderation/v1/reports/{report_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /api/moderation/v1/reports/{report_id}/votes", s.handleListReportVotes)
	s.mux.HandleFunc("POST /api/moderation/v1/reports/{report_id}/resolve", s.handleResolveReport)
	s.mux.HandleFunc("POST /api/moderation/v1/moderators/{principal}", s.handlePromoteModerator)
	s.mux.HandleFunc("GET /api/moderation/v1/reputation/{principal}", s.handleGetReputation)
	s.mux.HandleFunc("GET /api/moderation/v1/stats", s.handleStats)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON parses the request body, reporting malformed payloads through
// the supplied error writer.
func (s *Server) decodeJSON(
	w http.ResponseWriter,
	r *http.Request,
	target any,
	writeError func(w http.ResponseWriter, status int, code string, message string),
) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return false
	}
	return true
}
