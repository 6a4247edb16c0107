// Package gatewaytest runs an in-process fake of the remote event admin
// gateway for tests: the six admin operations behind a chi router, with
// token auth and per-operation failure injection.
package gatewaytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ventureops/eventadmin/internal/models"
)

// Token is the bearer token the fake gateway issues on login.
const Token = "gatewaytest-token"

// Server is a fake gateway backed by an in-memory event table.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	username string
	password string
	events   map[int64]models.Event
	order    []int64
	failing  map[string]bool
	calls    map[string]int
}

// New starts a fake gateway accepting the given login credentials and
// seeded with the given events. Callers must Close it.
func New(username, password string, seed ...models.Event) *Server {
	s := &Server{
		username: username,
		password: password,
		events:   make(map[int64]models.Event),
		failing:  make(map[string]bool),
		calls:    make(map[string]int),
	}
	for _, ev := range seed {
		s.events[ev.ID] = ev
		s.order = append(s.order, ev.ID)
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.NoCache)
	r.Use(s.auth)

	r.Post("/login", s.handleLogin)
	r.Get("/list", s.handleList)
	r.Post("/set-show", s.handleSetShow)
	r.Post("/delete", s.handleDelete)
	r.Post("/set-sort", s.handleSetSort)
	r.Get("/info", s.handleInfo)
	r.Post("/add-votes", s.handleAddVotes)

	s.Server = httptest.NewServer(r)
	return s
}

// FailOn makes the named operation ("list", "set-show", ...) answer 500
// until PassOn is called.
func (s *Server) FailOn(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[op] = true
}

// PassOn clears failure injection for the named operation.
func (s *Server) PassOn(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failing, op)
}

// Calls reports how many requests reached the named operation, counting
// injected failures but not auth rejections.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Event returns the server-side copy of the event and whether it exists.
func (s *Server) Event(id int64) (models.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	return ev, ok
}

// auth enforces the issued bearer token on everything but /login.
func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Authorization") != Token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// enter records the call and reports whether a failure is injected.
func (s *Server) enter(w http.ResponseWriter, op string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	if s.failing[op] {
		http.Error(w, "injected failure", http.StatusInternalServerError)
		return false
	}
	return true
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, "login") {
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	ok := req.Username == s.username && req.Password == s.password
	s.mu.Unlock()
	if !ok {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	writeData(w, map[string]string{"token": Token})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, "list") {
		return
	}
	s.mu.Lock()
	events := make([]models.Event, 0, len(s.order))
	for _, id := range s.order {
		events = append(events, s.events[id])
	}
	s.mu.Unlock()
	writeData(w, map[string]any{"events": events})
}

func (s *Server) handleSetShow(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, "set-show") {
		return
	}
	var req struct {
		EventID int64 `json:"event_id"`
		IsShow  int   `json:"is_show"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[req.EventID]
	if !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	ev.Show = req.IsShow
	s.events[req.EventID] = ev
	writeData(w, nil)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, "delete") {
		return
	}
	var req struct {
		EventID int64 `json:"event_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[req.EventID]; !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	delete(s.events, req.EventID)
	for i, id := range s.order {
		if id == req.EventID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	writeData(w, nil)
}

func (s *Server) handleSetSort(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, "set-sort") {
		return
	}
	var req struct {
		EventID int64 `json:"event_id"`
		Sort    int   `json:"sort"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Sort < 0 {
		http.Error(w, "negative sort", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[req.EventID]
	if !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	ev.SortOrder = req.Sort
	s.events[req.EventID] = ev
	writeData(w, nil)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, "info") {
		return
	}
	id, err := strconv.ParseInt(r.URL.Query().Get("event_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid event_id", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	ev, ok := s.events[id]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	writeData(w, ev)
}

func (s *Server) handleAddVotes(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, "add-votes") {
		return
	}
	var req struct {
		EventID int64 `json:"event_id"`
		Votes   int   `json:"votes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[req.EventID]
	if !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	// The contract is an absolute new total, not a delta.
	ev.Votes = req.Votes
	s.events[req.EventID] = ev
	writeData(w, nil)
}
