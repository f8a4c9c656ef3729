package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/appengine-ltd/wagon-trail/internal/savegame"
	"github.com/appengine-ltd/wagon-trail/internal/travel"
	"github.com/appengine-ltd/wagon-trail/internal/trail"
)

type Config struct {
	Logger *slog.Logger
}

// Server exposes a single journey over HTTP. Every request that touches
// the journey holds mu, so the session sees one caller at a time.
type Server struct {
	mu       sync.Mutex
	session  *travel.Session
	saves    savegame.Store
	hub      *Hub
	sink     trail.EventSink
	logger   *slog.Logger
	router   *mux.Router
	upgrader websocket.Upgrader
}

func New(session *travel.Session, saves savegame.Store, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		session: session,
		saves:   saves,
		hub:     NewHub(logger),
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.sink = trail.MultiSink(s.hub, trail.NewLogSink(logger))
	session.Journey().SetEventSink(s.sink)
	s.routes()
	return s
}

func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.HandleFunc("/api/journey", s.handleJourney).Methods("GET")
	r.HandleFunc("/api/journey/commands", s.handleCommand).Methods("POST")
	r.HandleFunc("/api/saves", s.handleListSaves).Methods("GET")
	r.HandleFunc("/api/saves", s.handleCreateSave).Methods("POST")
	r.HandleFunc("/api/saves/{id}/load", s.handleLoadSave).Methods("POST")
	r.HandleFunc("/api/saves/{id}", s.handleDeleteSave).Methods("DELETE")
	r.HandleFunc("/ws", s.handleEvents).Methods("GET")
	s.router = r
}

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type Snapshot struct {
	Journey  *trail.JourneyState `json:"journey"`
	Outcome  travel.Outcome      `json:"outcome"`
	Status   string              `json:"status"`
	Capacity trail.CapacityInfo  `json:"capacity"`
}

type commandRequest struct {
	Input string `json:"input"`
}

type commandResponse struct {
	Result   travel.CommandResult `json:"result"`
	Snapshot Snapshot             `json:"snapshot"`
}

type saveRequest struct {
	Name string `json:"name"`
}

type SlotSummary struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	SavedAt  time.Time  `json:"saved_at"`
	Date     trail.Date `json:"date"`
	Miles    float64    `json:"miles"`
	Living   int        `json:"living"`
	Location string     `json:"location"`
}

func summarise(slot savegame.Slot) SlotSummary {
	out := SlotSummary{ID: slot.ID, Name: slot.Name, SavedAt: slot.SavedAt}
	if js := slot.Journey; js != nil {
		out.Date = js.Date()
		out.Miles = js.MilesTraveled
		out.Living = js.LivingCount()
		out.Location = js.Location
	}
	return out
}

// snapshot must be called with mu held.
func (s *Server) snapshot() Snapshot {
	js := s.session.Journey()
	return Snapshot{
		Journey:  js.Clone(),
		Outcome:  s.session.Outcome(),
		Status:   s.session.StatusLine(),
		Capacity: js.Inventory().CapacityInfo(),
	}
}

func (s *Server) handleJourney(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.session.Execute(req.Input)
	switch result.Action {
	case travel.ActionSave:
		slot, err := s.saveLocked(r.Context(), result.ActionArg)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		result.Message = fmt.Sprintf("Saved %q.", slot.Name)
	case travel.ActionLoad:
		slot, err := savegame.Resolve(r.Context(), s.saves, result.ActionArg)
		if errors.Is(err, savegame.ErrNotFound) {
			result.Message = "No saved journey by that name."
			break
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.session.Replace(slot.Journey, s.sink)
		result.Message = fmt.Sprintf("Loaded %q.", slot.Name)
	case travel.ActionMenu:
		result.Message = "There is no title screen here."
	}
	writeJSON(w, http.StatusOK, commandResponse{Result: result, Snapshot: s.snapshot()})
}

func (s *Server) saveLocked(ctx context.Context, name string) (savegame.Slot, error) {
	return s.saves.Save(ctx, savegame.Slot{Name: name, Journey: s.session.Journey().Clone()})
}

func (s *Server) handleListSaves(w http.ResponseWriter, r *http.Request) {
	slots, err := s.saves.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]SlotSummary, 0, len(slots))
	for _, slot := range slots {
		out = append(out, summarise(slot))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}
	s.mu.Lock()
	slot, err := s.saveLocked(r.Context(), req.Name)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, summarise(slot))
}

func (s *Server) handleLoadSave(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	slot, err := s.saves.Load(r.Context(), id)
	if errors.Is(err, savegame.ErrNotFound) {
		writeError(w, http.StatusNotFound, "save slot not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.mu.Lock()
	s.session.Replace(slot.Journey, s.sink)
	snap := s.snapshot()
	s.mu.Unlock()
	s.logger.Info("journey loaded", "slot", slot.ID, "name", slot.Name)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSave(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := s.saves.Delete(r.Context(), id)
	if errors.Is(err, savegame.ErrNotFound) {
		writeError(w, http.StatusNotFound, "save slot not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "err", err)
		return
	}
	s.mu.Lock()
	snap, err := json.Marshal(s.snapshot())
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("failed to marshal snapshot", "err", err)
		_ = conn.Close()
		return
	}
	first, err := json.Marshal(frame{Type: "snapshot", Snapshot: snap})
	if err != nil {
		_ = conn.Close()
		return
	}
	s.hub.serve(conn, first)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
