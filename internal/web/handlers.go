package web

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/hpungsan/focusbrief/internal/config"
	"github.com/hpungsan/focusbrief/internal/errors"
	"github.com/hpungsan/focusbrief/internal/logging"
	"github.com/hpungsan/focusbrief/internal/ops"
	"github.com/hpungsan/focusbrief/internal/source"
)

// multipartOverhead is the allowance for form boundaries and text fields on
// top of the file ceiling.
const multipartOverhead = 1 << 20

// Handlers contains HTTP route handlers for the API and capsule view.
type Handlers struct {
	db       *sql.DB
	pipeline *ops.Pipeline
	cfg      *config.Config
	log      *logging.Logger
	version  string
	renderer *Renderer
}

// HandleHealth handles GET /api/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	model := ""
	if h.pipeline != nil && h.pipeline.Generator != nil {
		model = h.pipeline.Generator.Model()
	}
	renderJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.version,
		"model":   model,
	})
}

type processRequest struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

// HandleProcess handles POST /api/process: free text.
func (h *Handlers) HandleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := decodeJSON(w, r, h.textBodyLimit(), &req); err != nil {
		writeError(w, err)
		return
	}
	h.create(w, r, source.Reference{Kind: source.KindText, Text: req.Content, Label: req.Source})
}

type processURLRequest struct {
	URL string `json:"url"`
}

// HandleProcessURL handles POST /api/process-url.
func (h *Handlers) HandleProcessURL(w http.ResponseWriter, r *http.Request) {
	var req processURLRequest
	if err := decodeJSON(w, r, 64<<10, &req); err != nil {
		writeError(w, err)
		return
	}
	h.create(w, r, source.Reference{Kind: source.KindURL, URL: req.URL})
}

type processFileRequest struct {
	FileData string `json:"fileData"`
	MIMEType string `json:"mimeType"`
	FileName string `json:"fileName"`
	Source   string `json:"source"`
}

// HandleProcessFile handles POST /api/process-file as either a multipart
// upload (field "file") or JSON with base64 fileData.
func (h *Handlers) HandleProcessFile(w http.ResponseWriter, r *http.Request) {
	var (
		ref source.Reference
		err error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		ref, err = h.readMultipartFile(w, r)
	} else {
		ref, err = h.readJSONFile(w, r)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	h.create(w, r, ref)
}

type createRequest struct {
	Kind        string `json:"kind"`
	Content     string `json:"content"`
	SourceLabel string `json:"sourceLabel"`
	URL         string `json:"url"`
	FileData    string `json:"fileData"`
	MIMEType    string `json:"mimeType"`
	FileName    string `json:"fileName"`
}

// HandleCreate handles POST /api/capsules with a kind-tagged body.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(w, r, h.fileBodyLimit(), &req); err != nil {
		writeError(w, err)
		return
	}

	ref := source.Reference{Kind: source.Kind(req.Kind)}
	switch ref.Kind {
	case source.KindText:
		ref.Text, ref.Label = req.Content, req.SourceLabel
	case source.KindURL:
		ref.URL = req.URL
	case source.KindFile:
		data, err := decodeBase64(req.FileData)
		if err != nil {
			writeError(w, err)
			return
		}
		ref.Data, ref.MIMEType, ref.FileName = data, req.MIMEType, req.FileName
	}
	h.create(w, r, ref)
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request, ref source.Reference) {
	c, err := h.pipeline.Create(r.Context(), ref)
	writeResult(w, ops.NewResult(c, err))
}

// HandleList handles GET /api/capsules.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := ops.List(r.Context(), h.db, ops.ListInput{
		SourceType: q.Get("source_type"),
		Priority:   q.Get("priority"),
		Limit:      parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:     parseIntParam(r, "offset", 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"items":      result.Items,
		"pagination": result.Pagination,
		"sort":       result.Sort,
	})
}

// HandleFetch handles GET /api/capsules/{id}.
func (h *Handlers) HandleFetch(w http.ResponseWriter, r *http.Request) {
	c, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{ID: r.PathValue("id")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, ops.NewResult(c, nil))
}

// HandleDelete handles DELETE /api/capsules/{id}; the delete is permanent.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{ID: r.PathValue("id")})
	if err != nil {
		writeError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"deleted": result.Deleted,
		"id":      result.ID,
	})
}

// HandleView handles GET /capsules/{id}: the capsule rendered as HTML.
func (h *Handlers) HandleView(w http.ResponseWriter, r *http.Request) {
	c, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderer.renderCapsule(w, c)
}

func (h *Handlers) readMultipartFile(w http.ResponseWriter, r *http.Request) (source.Reference, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxFileBytes+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return source.Reference{}, bodyError(err, h.cfg.MaxFileBytes)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		return source.Reference{}, errors.NewInvalidInput("multipart field \"file\" is required")
	}
	defer file.Close()

	if header.Size > h.cfg.MaxFileBytes {
		return source.Reference{}, errors.NewPayloadTooLarge("file", h.cfg.MaxFileBytes, header.Size)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return source.Reference{}, errors.NewInternal(err)
	}

	return source.Reference{
		Kind:     source.KindFile,
		Data:     data,
		MIMEType: header.Header.Get("Content-Type"),
		FileName: header.Filename,
		Label:    r.FormValue("source"),
	}, nil
}

func (h *Handlers) readJSONFile(w http.ResponseWriter, r *http.Request) (source.Reference, error) {
	var req processFileRequest
	if err := decodeJSON(w, r, h.fileBodyLimit(), &req); err != nil {
		return source.Reference{}, err
	}
	data, err := decodeBase64(req.FileData)
	if err != nil {
		return source.Reference{}, err
	}
	return source.Reference{
		Kind:     source.KindFile,
		Data:     data,
		MIMEType: req.MIMEType,
		FileName: req.FileName,
		Label:    req.Source,
	}, nil
}

// textBodyLimit allows four bytes per permitted character plus slack.
func (h *Handlers) textBodyLimit() int64 {
	return int64(h.cfg.MaxTextChars)*4 + 64<<10
}

// fileBodyLimit accounts for base64 expansion of the file ceiling.
func (h *Handlers) fileBodyLimit() int64 {
	return h.cfg.MaxFileBytes/3*4 + multipartOverhead
}

// decodeJSON reads a size-capped JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return bodyError(err, limit)
	}
	return nil
}

func bodyError(err error, limit int64) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.NewPayloadTooLarge("request body", limit, tooLarge.Limit+1)
	}
	if stderrors.Is(err, io.EOF) {
		return errors.NewInvalidInput("request body is required")
	}
	return errors.NewInvalidInput("invalid request body: " + err.Error())
}

// decodeBase64 accepts plain base64 or a data: URL.
func decodeBase64(s string) ([]byte, error) {
	if i := strings.Index(s, ";base64,"); strings.HasPrefix(s, "data:") && i >= 0 {
		s = s[i+len(";base64,"):]
	}
	if s == "" {
		return nil, errors.NewInvalidInput("fileData is required")
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.NewInvalidInput("fileData must be base64")
	}
	return data, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
