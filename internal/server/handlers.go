package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/pathfit/internal/clippath"
	"github.com/ziadkadry99/pathfit/internal/history"
	"github.com/ziadkadry99/pathfit/internal/pathdata"
	"github.com/ziadkadry99/pathfit/internal/svgdoc"
)

// maxDocumentSize caps request bodies for /api/fit and /api/rescale, and
// WebSocket messages.
const maxDocumentSize = 4 << 20

// rescaleRequest is the body of POST /api/rescale and of "rescale" WebSocket
// messages.
type rescaleRequest struct {
	D       string          `json:"d"`
	ViewBox string          `json:"view_box"`
	Frame   *pathdata.Frame `json:"frame,omitempty"`
	Strict  *bool           `json:"strict,omitempty"`
}

type rescaleResponse struct {
	D      string  `json:"d"`
	Cached bool    `json:"cached"`
	ScaleX float64 `json:"scale_x"`
	ScaleY float64 `json:"scale_y"`
}

// requestError is an error caused by the request rather than the server.
type requestError struct{ err error }

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error { return &requestError{err: err} }

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var re *requestError
	if errors.As(err, &re) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// rescale serves one rescale request, through the cache when one is configured.
func (s *Server) rescale(ctx context.Context, req rescaleRequest) (*rescaleResponse, error) {
	vb, err := pathdata.ParseViewBox(req.ViewBox)
	if err != nil {
		return nil, badRequest(err)
	}
	if !vb.Valid() {
		return nil, badRequest(pathdata.ErrDegenerateViewBox)
	}

	frame := s.cfg.Frame
	if req.Frame != nil {
		frame = *req.Frame
	}
	if err := validateFrame(frame); err != nil {
		return nil, badRequest(err)
	}

	strict := s.cfg.Strict
	if req.Strict != nil {
		strict = *req.Strict
	}

	r := pathdata.NewRescaler(vb, frame)
	sx, sy := r.Scale()
	resp := &rescaleResponse{ScaleX: sx, ScaleY: sy}

	if strict {
		if _, err := r.RescaleStrict(req.D); err != nil {
			return nil, badRequest(err)
		}
	}
	if s.cache == nil {
		resp.D = r.Rescale(req.D)
		return resp, nil
	}

	resp.D, resp.Cached, err = s.cache.RescalePath(ctx, r, req.D, strict)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func validateFrame(f pathdata.Frame) error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("frame width and height must be positive")
	}
	return nil
}

func (s *Server) handleRescale(w http.ResponseWriter, r *http.Request) {
	var req rescaleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentSize)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.rescale(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	frame, err := frameFromQuery(q, s.cfg.Frame)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	strict := s.cfg.Strict
	if v := q.Get("strict"); v != "" {
		if strict, err = strconv.ParseBool(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid strict value")
			return
		}
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "document too large")
		return
	}

	out, stats, err := svgdoc.Fit(data, frame, svgdoc.Options{Strict: strict})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Pathfit-Paths", strconv.Itoa(stats.Paths))
	w.Header().Set("X-Pathfit-Rewritten", strconv.Itoa(stats.Rewritten))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// frameFromQuery reads width, height, offset_x and offset_y, falling back to
// def for each one that is absent.
func frameFromQuery(q url.Values, def pathdata.Frame) (pathdata.Frame, error) {
	f := def
	fields := []struct {
		name string
		dst  *float64
	}{
		{"width", &f.Width},
		{"height", &f.Height},
		{"offset_x", &f.OffsetX},
		{"offset_y", &f.OffsetY},
	}
	for _, fld := range fields {
		v := q.Get(fld.name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return pathdata.Frame{}, fmt.Errorf("invalid %s %q", fld.name, v)
		}
		*fld.dst = n
	}
	if err := validateFrame(f); err != nil {
		return pathdata.Frame{}, err
	}
	return f, nil
}

type clipResponse struct {
	ClipPath string `json:"clip_path"`
	Path     string `json:"path,omitempty"`
}

func (s *Server) handleClipProgress(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var angle float64
	switch {
	case q.Get("angle") != "":
		v, err := strconv.ParseFloat(q.Get("angle"), 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid angle")
			return
		}
		angle = v
	case q.Get("score") != "":
		v, err := strconv.ParseFloat(q.Get("score"), 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid score")
			return
		}
		angle = v * 3.6
	default:
		writeError(w, http.StatusBadRequest, "angle or score is required")
		return
	}

	resp := clipResponse{ClipPath: clippath.Progress(angle)}
	if q.Get("width") != "" || q.Get("height") != "" {
		frame, err := frameFromQuery(q, pathdata.Frame{})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		resp.Path = clippath.ProgressPath(angle, frame)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClipBar(w http.ResponseWriter, r *http.Request) {
	pct, err := strconv.ParseFloat(r.URL.Query().Get("percent"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid percent")
		return
	}
	writeJSON(w, http.StatusOK, clipResponse{ClipPath: clippath.Bar(pct)})
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history is not enabled")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	runs, err := s.history.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history is not enabled")
		return
	}

	run, err := s.history.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache is not enabled")
		return
	}
	st, err := s.cache.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
