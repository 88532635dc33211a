// Package server exposes a vskia.Instance over HTTP so a host running in
// another process can drive the scene and fetch renders.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/phanxgames/vskia"
)

// maxBodyBytes caps request bodies; shape payloads are small.
const maxBodyBytes = 1 << 20

// Server serializes every command against a single instance.
type Server struct {
	mu     sync.Mutex
	inst   *vskia.Instance
	log    *zap.Logger
	debug  bool
	router chi.Router
}

// New builds a server around inst. With debug set, GET /debug/tree is
// mounted and requests are logged at Debug level.
func New(inst *vskia.Instance, log *zap.Logger, debug bool) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{inst: inst, log: log, debug: debug}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/containers/{containerID}/children", s.handleCreateChild)
	r.Delete("/containers/{containerID}/children/{childID}", s.handleRemoveChild)
	r.Put("/nodes/{nodeID}/shape", s.handleSetShape)
	r.Post("/commands", s.handleCommands)
	r.Get("/render", s.handleRenderURI)
	r.Get("/render.png", s.handleRenderPNG)
	if debug {
		r.Get("/debug/tree", s.handleDump)
	}
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// createChildRequest is the body of POST /containers/{id}/children. When
// Before is set the child is inserted ahead of that sibling.
type createChildRequest struct {
	Child  *vskia.NodeID `json:"child"`
	Before *vskia.NodeID `json:"before,omitempty"`
}

func (s *Server) handleCreateChild(w http.ResponseWriter, r *http.Request) {
	container, ok := s.pathID(w, r, "containerID")
	if !ok {
		return
	}
	var req createChildRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	if req.Child == nil {
		s.fail(w, r, http.StatusBadRequest, errors.New("missing child id"))
		return
	}

	s.mu.Lock()
	var err error
	if req.Before != nil {
		err = s.inst.InsertChildBefore(*req.Child, *req.Before, container)
	} else {
		err = s.inst.AppendChild(*req.Child, container)
	}
	s.mu.Unlock()

	if err != nil {
		s.fail(w, r, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveChild(w http.ResponseWriter, r *http.Request) {
	container, ok := s.pathID(w, r, "containerID")
	if !ok {
		return
	}
	child, ok := s.pathID(w, r, "childID")
	if !ok {
		return
	}
	s.mu.Lock()
	s.inst.RemoveChild(child, container)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetShape(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "nodeID")
	if !ok {
		return
	}
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	err = s.inst.ApplyShapePayload(id, payload)
	s.mu.Unlock()
	if err != nil {
		s.fail(w, r, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCommands applies a list of script steps in order under one lock.
func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	var steps []vskia.Step
	if err := decodeJSON(r, &steps); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, st := range steps {
		if err := s.inst.ApplyStep(st); err != nil {
			s.fail(w, r, statusFor(err), fmt.Errorf("step %d: %w", i, err))
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenderURI(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	uri, err := s.inst.ToDataURI()
	s.mu.Unlock()
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, uri)
}

func (s *Server) handleRenderPNG(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	s.mu.Lock()
	err := s.inst.WritePNG(&buf)
	s.mu.Unlock()
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if buf.Len() == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleDump(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	dump := s.inst.Dump()
	s.mu.Unlock()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, dump)
}

// --- Helpers ---

func (s *Server) pathID(w http.ResponseWriter, r *http.Request, name string) (vskia.NodeID, bool) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("bad %s %q", name, raw))
		return 0, false
	}
	return vskia.NodeID(v), true
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// statusFor maps core errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case vskia.IsMalformedPayload(err):
		return http.StatusBadRequest
	case errors.Is(err, vskia.ErrDuplicateID), errors.Is(err, vskia.ErrAlreadyAttached), errors.Is(err, vskia.ErrCycle):
		return http.StatusConflict
	case errors.Is(err, vskia.ErrUnknownNode):
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.log.Warn("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
	http.Error(w, err.Error(), status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.debug {
			next.ServeHTTP(w, r)
			return
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		t0 := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(t0)),
		)
	})
}
