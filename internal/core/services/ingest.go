package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
	"github.com/custodia-labs/sercha-ingest/internal/textclean"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// StateObserver is notified of every state an ingestion call enters.
type StateObserver func(uploadID string, state domain.IngestState)

// IngestService runs the ingestion state machine for one upload at a time.
// It holds no per-call state, so one instance serves concurrent callers.
type IngestService struct {
	registry     driven.ParserRegistry
	pipeline     driven.PostProcessorPipeline
	escalator    *FallbackEscalator
	minTextChars int
	newID        func() string
	observer     StateObserver
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithEscalator enables fallback extraction for low-yield PDFs.
func WithEscalator(e *FallbackEscalator) IngestOption {
	return func(s *IngestService) {
		s.escalator = e
	}
}

// WithMinTextChars sets the minimum extractable text for PDFs.
func WithMinTextChars(n int) IngestOption {
	return func(s *IngestService) {
		s.minTextChars = n
	}
}

// WithIDGenerator replaces the upload id generator.
func WithIDGenerator(fn func() string) IngestOption {
	return func(s *IngestService) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithStateObserver registers a callback for state transitions.
func WithStateObserver(fn StateObserver) IngestOption {
	return func(s *IngestService) {
		s.observer = fn
	}
}

// NewIngestService creates an ingestion service.
// The pipeline is expected to chunk and then sanitise (see postprocessors.NewDefaultPipeline).
func NewIngestService(
	registry driven.ParserRegistry,
	pipeline driven.PostProcessorPipeline,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		registry:     registry,
		pipeline:     pipeline,
		minTextChars: domain.DefaultMinTextChars,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SupportedMIMETypes returns the MIME types that can be ingested.
func (s *IngestService) SupportedMIMETypes() []string {
	if s.registry == nil {
		return nil
	}
	return s.registry.SupportedMIMETypes()
}

// Ingest parses, cleans and chunks one upload.
// Every returned chunk carries the same fresh upload_id. Dispatch and
// minimum-content failures are returned as *domain.RejectionError.
func (s *IngestService) Ingest(
	ctx context.Context,
	content []byte,
	mimeType string,
	metadata map[string]any,
) ([]domain.Chunk, error) {
	if s.registry == nil || s.pipeline == nil {
		return nil, fmt.Errorf("ingest: service not configured")
	}

	// Received
	upload := domain.NewUploadContext(s.newID(), mimeType, textclean.SanitiseMetadata(metadata))
	s.enter(upload, domain.StateReceived)

	raw := &domain.RawDocument{
		Filename: filenameFrom(upload.Metadata),
		MIMEType: upload.MIMEType,
		Content:  content,
	}

	// Dispatched
	docs, err := s.registry.Parse(ctx, raw)
	s.enter(upload, domain.StateDispatched)
	if err != nil {
		return nil, s.reject(upload, err)
	}

	// Escalated
	replaced := false
	if s.escalator != nil && s.escalator.ShouldEscalate(upload.MIMEType, docs) {
		s.enter(upload, domain.StateEscalated)
		docs, replaced = s.escalator.Escalate(ctx, raw, docs, upload.Metadata)
	}
	if !replaced {
		for i := range docs {
			docs[i].Metadata = domain.MergeMetadata(docs[i].Metadata, upload.Metadata)
		}
	}

	// Normalized
	for i := range docs {
		docs[i].Content = textclean.Normalise(docs[i].Content)
	}
	s.enter(upload, domain.StateNormalized)

	// Sanitized
	for i := range docs {
		docs[i].Content = textclean.SanitiseText(docs[i].Content)
		docs[i].Metadata = textclean.SanitiseMetadata(docs[i].Metadata)
	}
	s.enter(upload, domain.StateSanitized)

	if err := s.checkMinimumContent(upload.MIMEType, docs); err != nil {
		return nil, s.reject(upload, err)
	}

	// Chunked
	var chunks []domain.Chunk
	for i := range docs {
		if strings.TrimSpace(docs[i].Content) == "" {
			continue
		}
		docChunks, err := s.pipeline.Process(ctx, &docs[i])
		if err != nil {
			return nil, s.reject(upload, fmt.Errorf("chunk document %d: %w", i, err))
		}
		chunks = append(chunks, docChunks...)
	}
	for i := range chunks {
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = make(map[string]any)
		}
		chunks[i].Metadata[domain.MetaUploadID] = upload.UploadID
	}
	s.enter(upload, domain.StateChunked)

	// Completed
	s.enter(upload, domain.StateCompleted)
	logger.Info("Ingested upload %s (%s): %d documents, %d chunks", upload.UploadID, upload.MIMEType, len(docs), len(chunks))
	return chunks, nil
}

// checkMinimumContent enforces the extractable-text policy: PDFs need at
// least minTextChars characters, every other format needs some text.
func (s *IngestService) checkMinimumContent(mimeType string, docs []domain.Document) error {
	total := TextLength(docs)
	if domain.IsPDF(mimeType) {
		if total < s.minTextChars || total == 0 {
			return domain.NewInsufficientTextError(mimeType)
		}
		return nil
	}
	if total == 0 {
		return domain.NewInsufficientTextError(mimeType)
	}
	return nil
}

func (s *IngestService) enter(upload domain.UploadContext, state domain.IngestState) {
	logger.Debug("upload %s: %s", upload.UploadID, state)
	if s.observer != nil {
		s.observer(upload.UploadID, state)
	}
}

func (s *IngestService) reject(upload domain.UploadContext, err error) error {
	s.enter(upload, domain.StateRejected)
	var rej *domain.RejectionError
	if errors.As(err, &rej) {
		logger.Debug("upload %s rejected: %v", upload.UploadID, rej)
		return rej
	}
	logger.Warn("upload %s failed: %v", upload.UploadID, err)
	return fmt.Errorf("ingest %s: %w", upload.UploadID, err)
}

func filenameFrom(meta map[string]any) string {
	if name, ok := meta[domain.MetaFilename].(string); ok {
		return name
	}
	return ""
}
