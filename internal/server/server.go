// Package server exposes the generation and review workflow over HTTP.
// All dependencies are injected; handlers never reach for globals.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"scriptor/internal/config"
	"scriptor/internal/llm"
	"scriptor/internal/media"
	"scriptor/internal/pipeline"
	"scriptor/internal/store"
	"scriptor/internal/tools"
)

// Server wires the HTTP routes to the underlying services.
type Server struct {
	router   *mux.Router
	cfg      *config.Config
	store    *store.Store
	catalog  *llm.Catalog
	pipeline *pipeline.Pipeline
	toolset  *tools.Toolset
	renderer *media.Renderer

	// topicLocks serializes generate/regenerate per slug. Concurrent
	// regeneration of the same topic would interleave hard deletes with
	// inserts.
	mu         sync.Mutex
	topicLocks map[string]*sync.Mutex
}

// New builds a fully wired server. The caller owns the store's lifetime.
func New(cfg *config.Config, st *store.Store, catalog *llm.Catalog,
	pipe *pipeline.Pipeline, toolset *tools.Toolset, renderer *media.Renderer) *Server {
	s := &Server{
		cfg:        cfg,
		store:      st,
		catalog:    catalog,
		pipeline:   pipe,
		toolset:    toolset,
		renderer:   renderer,
		topicLocks: map[string]*sync.Mutex{},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/topics", s.handleListTopics).Methods("GET")
	r.HandleFunc("/api/topics/resolve", s.handleResolveTopic).Methods("POST")
	r.HandleFunc("/api/topics/generate", s.handleGenerate).Methods("POST")

	r.HandleFunc("/api/session/init", s.handleSessionInit).Methods("POST")

	r.HandleFunc("/api/section/save", s.handleSectionSave).Methods("POST")
	r.HandleFunc("/api/section/diff", s.handleSectionDiff).Methods("POST")
	r.HandleFunc("/api/section/render", s.handleSectionRender).Methods("POST")
	r.HandleFunc("/api/section/llm_rewrite", s.handleSectionRewrite).Methods("POST")
	r.HandleFunc("/api/section/chat", s.handleSectionChat).Methods("POST")
	r.HandleFunc("/api/section/tool", s.handleSectionTool).Methods("POST")
	r.HandleFunc("/api/section/media", s.handleSectionMedia).Methods("POST")

	r.HandleFunc("/api/document/promote", s.handlePromote).Methods("POST")
	r.HandleFunc("/api/document/regenerate", s.handleRegenerate).Methods("POST")

	r.HandleFunc("/api/models", s.handleListModels).Methods("GET")

	// Rendered media lives under the asset root; the fragments returned by
	// the media endpoint reference it as /assets/{slug}/media/{file}.
	r.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/",
		http.FileServer(http.Dir(s.cfg.Storage.AssetRoot))))

	return r
}

// Handler returns the router wrapped with the CORS middleware, for embedding
// in tests or a custom http.Server.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.router)
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	if addr == "" {
		addr = s.cfg.Server.Addr
	}
	log.Printf("scriptor server listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// corsMiddleware answers preflight requests before mux's method matching
// rejects them, and reflects the origin on everything else.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// topicLock returns the mutex guarding one slug's generate/regenerate.
func (s *Server) topicLock(slug string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.topicLocks[slug]
	if !ok {
		lock = &sync.Mutex{}
		s.topicLocks[slug] = lock
	}
	return lock
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeBody parses a JSON request body, mapping malformed input to a 400
// before any handler logic runs.
func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
