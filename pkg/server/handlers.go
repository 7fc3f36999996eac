package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/matzehuels/fishbone/pkg/buildinfo"
	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/errors"
	"github.com/matzehuels/fishbone/pkg/observability"
	"github.com/matzehuels/fishbone/pkg/pipeline"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/theme"
)

// CacheHeader reports whether a response came from the cache.
const CacheHeader = "X-Cache"

// =============================================================================
// Wire Types
// =============================================================================

// Request is the body of the layout and render endpoints. Exactly one of
// Diagram and Hash must be set.
type Request struct {
	Diagram json.RawMessage  `json:"diagram,omitempty"`
	Hash    string           `json:"hash,omitempty"`
	Options pipeline.Options `json:"options"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type healthBody struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type paletteEntry struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Hex     string `json:"hex"`
	Default bool   `json:"default,omitempty"`
}

type storedBody struct {
	Hash string `json:"hash"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handlePalette(w http.ResponseWriter, r *http.Request) {
	entries := make([]paletteEntry, len(theme.Palette))
	for i, c := range theme.Palette {
		entries[i] = paletteEntry{Index: i, Name: c.Name, Hex: c.Hex, Default: i == theme.DefaultIndex}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, opts, err := s.decodeRequest(ctx, w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	l, hit, err := s.runner.GenerateLayoutWithCacheInfo(ctx, d, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := diagram.MarshalLayout(l)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	download := r.URL.Query().Get("download")
	if download != "" {
		if err := errors.ValidateFilename(download); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	d, opts, err := s.decodeRequest(ctx, w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	l, layoutHit, err := s.runner.GenerateLayoutWithCacheInfo(ctx, d, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, renderHit, err := s.runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	setCacheHeader(w, layoutHit && renderHit)
	w.Header().Set("Content-Type", contentType(format))
	if download != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, download, format))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) handleStoreDiagram(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format, err := bodyFormat(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := diagram.Parse(body, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	hash, err := s.runner.StoreDiagram(ctx, d)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeCache, err, "store diagram"))
		return
	}
	w.Header().Set("Location", "/api/v1/diagrams/"+hash)
	writeJSON(w, http.StatusCreated, storedBody{Hash: hash})
}

func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := s.lookup(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// =============================================================================
// Helpers
// =============================================================================

// decodeRequest reads a [Request] and resolves its diagram. Options that
// would make the server read local files or bypass the cache are dropped.
func (s *Server) decodeRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) (*diagram.Diagram, pipeline.Options, error) {
	body, err := s.readBody(w, r)
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}

	opts := req.Options
	opts.Source = ""
	opts.InputFormat = ""
	opts.Refresh = false
	opts.Logger = s.logger.With("request_id", RequestID(ctx))

	hasDiagram := len(req.Diagram) > 0 && string(req.Diagram) != "null"
	switch {
	case hasDiagram && req.Hash != "":
		return nil, opts, errors.New(errors.ErrCodeInvalidInput, "set either diagram or hash, not both")
	case req.Hash != "":
		d, err := s.lookup(ctx, req.Hash)
		return d, opts, err
	case hasDiagram:
		d, err := diagram.Parse(req.Diagram, diagram.FormatJSON)
		return d, opts, err
	default:
		return nil, opts, errors.New(errors.ErrCodeInvalidInput, "no data")
	}
}

func (s *Server) lookup(ctx context.Context, hash string) (*diagram.Diagram, error) {
	d, hit, err := s.runner.LoadDiagram(ctx, hash)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCache, err, "load diagram %s", hash)
	}
	if !hit {
		return nil, errors.New(errors.ErrCodeNotFound, "diagram %s not found", hash)
	}
	return d, nil
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return body, nil
}

// bodyFormat maps the request Content-Type to a diagram format. JSON is
// assumed when none is given.
func bodyFormat(r *http.Request) (diagram.Format, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return diagram.FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "content type")
	}
	switch {
	case mt == "application/json", strings.HasSuffix(mt, "+json"):
		return diagram.FormatJSON, nil
	case strings.Contains(mt, "yaml"):
		return diagram.FormatYAML, nil
	case strings.Contains(mt, "toml"):
		return diagram.FormatTOML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported content type %q", mt)
	}
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(CacheHeader, "hit")
	} else {
		w.Header().Set(CacheHeader, "miss")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := errors.HTTPStatus(err)
	if stderrors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}

	id := RequestID(ctx)
	observability.HTTP().OnError(ctx, id, r.Method, r.URL.Path, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", id, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "id", id, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: describe(err)})
}
