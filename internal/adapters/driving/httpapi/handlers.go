package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
	"github.com/custodia-labs/sercha-ingest/internal/mimetype"
)

// Form fields of a multipart upload.
const (
	fieldFile     = "file"
	fieldMIMEType = "mime_type"
	fieldMetadata = "metadata"
)

// ChunkResponse is one chunk in an upload response.
type ChunkResponse struct {
	Content  string         `json:"content"`
	Position int            `json:"position"`
	Metadata map[string]any `json:"metadata"`
}

// UploadResponse is the body of a successful upload.
type UploadResponse struct {
	UploadID string          `json:"upload_id"`
	MIMEType string          `json:"mime_type"`
	Chunks   []ChunkResponse `json:"chunks"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// FormatsResponse lists the ingestible MIME types.
type FormatsResponse struct {
	MIMETypes []string `json:"mime_types"`
}

// errUploadTooLarge marks uploads over the configured limit.
var errUploadTooLarge = errors.New("upload too large")

// upload is a decoded request.
type upload struct {
	content  []byte
	mimeType string
	metadata map[string]any
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	types := s.ingest.SupportedMIMETypes()
	if types == nil {
		types = []string{}
	}
	writeJSON(w, http.StatusOK, FormatsResponse{MIMETypes: types})
}

// handleUpload ingests one document.
// POST /v1/documents
// Either a multipart form with a "file" part (optional "mime_type" and
// "metadata" JSON fields) or a raw body with its Content-Type and an optional
// ?filename= query parameter.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+multipartOverhead)

	var (
		up  *upload
		err error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		up, err = s.readMultipart(r)
	} else {
		up, err = s.readRaw(r)
	}
	if err != nil {
		writeRequestError(w, err)
		return
	}

	chunks, err := s.ingest.Ingest(r.Context(), up.content, up.mimeType, up.metadata)
	if err != nil {
		writeIngestError(w, err)
		return
	}

	resp := UploadResponse{
		MIMEType: domain.CanonicalMIMEType(up.mimeType),
		Chunks:   make([]ChunkResponse, len(chunks)),
	}
	for i, c := range chunks {
		resp.Chunks[i] = ChunkResponse{Content: c.Content, Position: c.Position, Metadata: c.Metadata}
	}
	if len(chunks) > 0 {
		resp.UploadID, _ = chunks[0].Metadata[domain.MetaUploadID].(string)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) readMultipart(r *http.Request) (*upload, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, err
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(fieldFile)
	if err != nil {
		return nil, fmt.Errorf("%w: missing %q part", domain.ErrInvalidInput, fieldFile)
	}
	defer file.Close()

	content, err := s.readLimited(file)
	if err != nil {
		return nil, err
	}

	metadata := make(map[string]any)
	if raw := r.FormValue(fieldMetadata); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			return nil, fmt.Errorf("%w: metadata must be a JSON object: %v", domain.ErrInvalidInput, err)
		}
		// JSON null leaves the map nil.
		if metadata == nil {
			metadata = make(map[string]any)
		}
	}
	if _, ok := metadata[domain.MetaFilename]; !ok && header.Filename != "" {
		metadata[domain.MetaFilename] = header.Filename
	}

	mimeType := r.FormValue(fieldMIMEType)
	if mimeType == "" {
		mimeType = declaredType(header.Header.Get("Content-Type"))
	}
	if mimeType == "" {
		mimeType = mimetype.Detect(header.Filename, content)
	}
	return &upload{content: content, mimeType: mimeType, metadata: metadata}, nil
}

func (s *Server) readRaw(r *http.Request) (*upload, error) {
	content, err := s.readLimited(r.Body)
	if err != nil {
		return nil, err
	}
	metadata := make(map[string]any)
	filename := r.URL.Query().Get(domain.MetaFilename)
	if filename != "" {
		metadata[domain.MetaFilename] = filename
	}
	mimeType := declaredType(r.Header.Get("Content-Type"))
	if mimeType == "" {
		mimeType = mimetype.Detect(filename, content)
	}
	return &upload{content: content, mimeType: mimeType, metadata: metadata}, nil
}

// readLimited reads at most maxUploadBytes, failing on anything larger.
func (s *Server) readLimited(rd io.Reader) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(rd, s.maxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > s.maxUploadBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", errUploadTooLarge, s.maxUploadBytes)
	}
	return content, nil
}

// declaredType treats a generic binary declaration as no declaration.
func declaredType(ct string) string {
	if strings.TrimSpace(ct) == "" || domain.CanonicalMIMEType(ct) == mimetype.OctetStream {
		return ""
	}
	return ct
}

func writeRequestError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, errUploadTooLarge), errors.As(err, &maxErr):
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
}

// writeIngestError maps pipeline failures to status codes.
func writeIngestError(w http.ResponseWriter, err error) {
	var rej *domain.RejectionError
	if !errors.As(err, &rej) {
		logger.Error("Upload failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	status := http.StatusUnprocessableEntity
	if errors.Is(rej, domain.ErrUnsupportedFormat) {
		status = http.StatusUnsupportedMediaType
	}
	resp := ErrorResponse{Error: rej.UserMessage()}
	if rej.Reason != nil {
		resp.Reason = rej.Reason.Error()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response: %v", err)
	}
}
