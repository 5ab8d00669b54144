// Package ws is the websocket transport in front of the relay engine.
// Clients connect once with their identity in the query string and then
// exchange JSON envelopes for the lifetime of the socket.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"care-chat/contract"
	"care-chat/domain"
	"care-chat/search"
)

const defaultSearchLimit = 20

type Server struct {
	log        *slog.Logger
	relay      contract.Dispatcher
	indexer    *search.Indexer
	bufferSize int
	upgrader   websocket.Upgrader
}

// NewServer builds the HTTP surface. indexer may be nil when search is not
// configured.
func NewServer(log *slog.Logger, relay contract.Dispatcher, indexer *search.Indexer, bufferSize int) *Server {
	return &Server{
		log:        log,
		relay:      relay,
		indexer:    indexer,
		bufferSize: bufferSize,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // clients are mobile apps, not browsers; no origin policy
			},
		},
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/search", s.handleSearch)
	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprint(w, "Healthcare Chat Server Running")
}

// handleWS upgrades the connection and binds it to the relay. Identity is
// caller-supplied: userId keys the connection registry, userType defaults
// to patient.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}
	role := domain.ParseRole(r.URL.Query().Get("userType"))

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Upgrade failed", "user_id", userID, "error", err)
		return
	}

	sink := NewSink(s.bufferSize)
	c := &client{userID: userID, conn: conn, sink: sink, relay: s.relay, log: s.log}

	s.relay.Connect(userID, role, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.writePump(ctx)
	c.readPump()
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.indexer == nil {
		http.Error(w, "search is not enabled", http.StatusNotFound)
		return
	}

	terms := r.URL.Query().Get("q")
	if terms == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	hits, err := s.indexer.Search(r.Context(), r.URL.Query().Get("chatId"), terms, limit)
	if err != nil {
		s.log.Error("Search failed", "error", err)
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	if hits == nil {
		hits = []search.Hit{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(hits)
}
