// Package server is the thin HTTP entry point around the mapper and the
// forwarder: method gate, body decode, convert, send, response shaping. It
// holds no state across requests.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fastjson"

	relay "github.com/damianharouff/gl-json-to-gelf"
	"github.com/damianharouff/gl-json-to-gelf/config"
	"github.com/damianharouff/gl-json-to-gelf/forward"
)

type Server struct {
	cfg *config.Config
	fwd *forward.Forwarder
	log *slog.Logger
}

func New(cfg *config.Config, fwd *forward.Forwarder, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{cfg: cfg, fwd: fwd, log: log}
}

// Handler builds the route table: the relay at / and a liveness probe at
// /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRelay)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.cfg.Server.Listen,
		Handler: s.Handler(),
	}

	errc := make(chan error, 1)
	go func() {
		errc <- httpServer.ListenAndServe()
	}()
	s.log.Info("started listening", "addr", httpServer.Addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// handleRelay is the whole request/response cycle: one JSON body in, one GELF
// record out to Graylog, one JSON envelope back.
func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start := time.Now()
	log := s.log.With(
		"request_id", uuid.NewString(),
		"remote", r.RemoteAddr,
	)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	body, err := readBody(r, s.cfg.Server.MaxBodyBytes)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || errors.Is(err, errBodyTooLarge) {
			log.Warn("request body too large", "limit", s.cfg.Server.MaxBodyBytes)
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		log.Warn("failed to read request body", "error", err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var p fastjson.Parser
	input, err := p.ParseBytes(body)
	if err != nil {
		log.Warn("request body is not valid JSON", "error", err)
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	rec, err := relay.Convert(input, s.cfg.DefaultShortMessage)
	if err != nil {
		log.Warn("conversion failed", "error", err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.fwd.Send(r.Context(), rec, s.cfg.Graylog.Host, s.cfg.Graylog.Port)
	if err != nil {
		log.Error("forwarding failed", "error", err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !result.Ok {
		log.Error("graylog rejected record",
			"status", result.StatusCode,
			"body", result.Body)
		respondError(w, http.StatusBadGateway, "Graylog error: "+result.Body)
		return
	}

	log.Info("forwarded",
		"fields", rec.Len(),
		"status", result.StatusCode,
		"duration", time.Since(start))
	respondJSON(w, http.StatusOK, response{Success: true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
