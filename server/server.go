// Package server implements Ripple's HTTP introspection surface, started
// by the ripple CLI's --http flag: liveness, a graph dump, a push
// endpoint, a snapshot dump, and a sink change stream.
//
// Routing is github.com/go-chi/chi/v5. Each request gets a uuid-tagged
// request ID surfaced in the response header and in error logs. The
// optional bearer-token auth on the mutating endpoint uses
// github.com/golang-jwt/jwt/v5, wired as an opt-in middleware
// (config.Config.RequireAuth) rather than mandatory, since a Ripple graph is
// typically embedded rather than multi-tenant.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dekarrin/ripple/config"
	"github.com/dekarrin/ripple/engine"
	"github.com/dekarrin/ripple/internal/history"
	"github.com/dekarrin/ripple/lang/rerr"
	"github.com/dekarrin/ripple/snapshot"
	"github.com/dekarrin/ripple/value"
)

// Server wraps a chi router over a single engine.Engine.
type Server struct {
	eng     *engine.Engine
	cfg     config.Config
	logger  *log.Logger
	mux     *chi.Mux
	history *history.Log
}

// New builds a Server. cfg.RequireAuth gates the push endpoint behind a
// bearer-token check using cfg.TokenSecret as the HMAC signing key. If
// cfg.HistoryPath is non-empty, every successful push is also recorded to
// that SQLite file via package history; a failure to open it is logged and
// the server runs without an audit log rather than refusing to start.
func New(eng *engine.Engine, cfg config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.StepBudget > 0 {
		eng.StepBudget = cfg.StepBudget
	}
	if cfg.CSVBaseDir != "" {
		eng.BaseDir = cfg.CSVBaseDir
	}
	s := &Server{eng: eng, cfg: cfg, logger: logger, mux: chi.NewRouter()}

	if cfg.HistoryPath != "" {
		h, err := history.Open(cfg.HistoryPath)
		if err != nil {
			logger.Printf("history: %s: %s (audit log disabled)", cfg.HistoryPath, err)
		} else {
			s.history = h
		}
	}

	s.mux.Use(s.requestID)
	s.mux.Get("/healthz", s.handleHealthz)
	s.mux.Get("/graph", s.handleGraph)
	s.mux.With(s.maybeRequireAuth).Post("/push/{source}", s.handlePush)
	s.mux.Get("/sinks/{name}/stream", s.handleSinkStream)
	s.mux.Get("/history/{name}", s.handleHistory)
	s.mux.Get("/snapshot", s.handleSnapshot)

	return s
}

// Close releases the server's audit log handle, if one was opened.
func (s *Server) Close() error {
	if s.history == nil {
		return nil
	}
	return s.history.Close()
}

// ServeHTTP lets Server be used directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type ctxKey string

const ctxKeyRequestID ctxKey = "requestID"

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) maybeRequireAuth(next http.Handler) http.Handler {
	if !s.cfg.RequireAuth {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		tokStr := strings.TrimPrefix(authz, "Bearer ")
		if tokStr == authz || tokStr == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		_, err := jwt.Parse(tokStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(s.cfg.TokenSecret), nil
		})
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token: "+err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type nodeView struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Rank     int    `json:"rank"`
	HasValue bool   `json:"has_value"`
	Value    string `json:"value,omitempty"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	g := s.eng.G
	out := make([]nodeView, 0, len(g.Order))
	for _, name := range g.Order {
		n := g.Nodes[name]
		view := nodeView{Name: n.Name, Kind: n.Kind.String(), Rank: n.Rank, HasValue: n.HasValue}
		if n.HasValue {
			view.Value = n.Cached.String()
		}
		out = append(out, view)
	}
	writeJSON(w, http.StatusOK, out)
}

type pushRequest struct {
	Value json.RawMessage `json:"value"`
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	sourceName := chi.URLParam(r, "source")

	var body pushRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	v, err := decodeJSONValue(body.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep := s.eng.Push(sourceName, v)
	if rep.HasErrors() {
		reqID, _ := r.Context().Value(ctxKeyRequestID).(string)
		s.logger.Printf("push %s [%s]: %s", sourceName, reqID, rep.Error())
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"errors": reportMessages(rep),
		})
		return
	}

	if s.history != nil {
		if err := s.history.Record(r.Context(), sourceName, v.String()); err != nil {
			s.logger.Printf("history: record %s: %s", sourceName, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleHistory returns the most recent pushes recorded for a node, newest
// first. Returns an empty array (not 404) when no history log is
// configured, since "no audit log" and "no recorded pushes yet" are
// indistinguishable to a client that doesn't know the server's config.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if s.history == nil {
		writeJSON(w, http.StatusOK, []history.Entry{})
		return
	}
	entries, err := s.history.Recent(r.Context(), name, 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleSnapshot dumps a REZI-encoded point-in-time snapshot of every
// node's current value, for offline debugging via package snapshot's
// Inspect rather than live introspection through /graph.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := snapshot.Export(s.eng.G)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func reportMessages(rep *rerr.Report) []string {
	out := make([]string, len(rep.Errors))
	for i, e := range rep.Errors {
		out[i] = e.Error()
	}
	return out
}

func decodeJSONValue(raw json.RawMessage) (value.Value, error) {
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return value.NullValue, fmt.Errorf("value: %w", err)
	}
	return fromGeneric(generic)
}

func fromGeneric(g interface{}) (value.Value, error) {
	switch x := g.(type) {
	case nil:
		return value.NullValue, nil
	case bool:
		return value.OfBool(x), nil
	case string:
		return value.OfString(x), nil
	case float64:
		if x == float64(int(x)) {
			return value.OfInt(int(x)), nil
		}
		return value.OfFloat(x), nil
	case []interface{}:
		out := make([]value.Value, len(x))
		for i, el := range x {
			v, err := fromGeneric(el)
			if err != nil {
				return value.NullValue, err
			}
			out[i] = v
		}
		return value.OfList(out), nil
	default:
		return value.NullValue, fmt.Errorf("value: unsupported JSON shape %T", g)
	}
}

// handleSinkStream relays a sink's changes to the client as newline-
// delimited JSON events for as long as the connection stays open,
// grounded on the notify-observer shape engine.Engine.Subscribe already
// uses internally.
func (s *Server) handleSinkStream(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := s.eng.Read(name); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no such sink %q", name))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	events := make(chan value.Value, 16)
	s.eng.Subscribe(name, func(v value.Value) {
		select {
		case events <- v:
		default:
			// client too slow; drop rather than block the engine
		}
	})

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case v := <-events:
			fmt.Fprintf(w, `{"time":%q,"value":%q}`+"\n", time.Now().UTC().Format(time.RFC3339), v.String())
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
