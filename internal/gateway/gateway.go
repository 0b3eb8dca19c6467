// Package gateway serves consultations over HTTP: health and metrics
// endpoints, plus a WebSocket transport that stands in for the console.
package gateway

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kairoslabs/kairos/internal/console"
	"github.com/kairoslabs/kairos/internal/model/advisory"
	"github.com/kairoslabs/kairos/internal/model/persona"
	"github.com/kairoslabs/kairos/internal/orchestrator"
	"github.com/kairoslabs/kairos/pkg/utils"
)

// Runner executes one consultation over the supplied prompter.
type Runner interface {
	Run(ctx context.Context, prompter console.Prompter, initialQuery string) (*advisory.Bundle, error)
}

// Handler owns the WebSocket session endpoint.
type Handler struct {
	runner   Runner
	upgrader websocket.Upgrader
}

// NewHandler creates the session handler.
func NewHandler(runner Runner) *Handler {
	return &Handler{
		runner: runner,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// NewRouter wires HTTP routes to the consultation runner and the advisory
// persona roster.
func NewRouter(runner Runner, personas persona.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	handler := NewHandler(runner)
	r.Route("/api", func(api chi.Router) {
		api.Get("/session/ws", handler.handleSession)
		api.Get("/personas", listPersonas(personas))
		api.Get("/personas/{id}", getPersona(personas))
	})

	return r
}

// listPersonas exposes the advisory roster so clients can render role
// descriptions before a session starts.
func listPersonas(personas persona.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, personas.List())
	}
}

func getPersona(personas persona.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		p, ok := personas.FindByID(id)
		if !ok {
			utils.RespondError(w, http.StatusNotFound, "persona not found")
			return
		}
		utils.RespondJSON(w, http.StatusOK, p)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleSession runs one consultation per WebSocket connection.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gateway] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	prompter := newWSPrompter(conn)
	prompter.Say("Welcome to Kairos. Please share your purpose-related question or concern.")

	query, err := prompter.Ask("Your question: ")
	if err != nil {
		log.Printf("[gateway] session ended before intake: %v", err)
		return
	}

	bundle, err := h.runner.Run(r.Context(), prompter, query)
	if err != nil {
		prompter.sendAbort(abortReason(err))
		return
	}

	prompter.sendBundle(bundle)
}

func abortReason(err error) string {
	switch {
	case errors.Is(err, orchestrator.ErrEmptyQuery):
		return "empty_query"
	case errors.Is(err, orchestrator.ErrDonationNotConfirmed):
		return "donation_not_confirmed"
	case errors.Is(err, orchestrator.ErrPaymentUnverified):
		return "payment_unverified"
	default:
		log.Printf("[gateway] session failed: %v", err)
		return "internal_error"
	}
}
