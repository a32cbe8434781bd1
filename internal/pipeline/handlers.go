package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/chronicle-ai/chronicle/internal/agents"
	"github.com/chronicle-ai/chronicle/internal/documents"
	"github.com/chronicle-ai/chronicle/internal/orchestrator"
	"github.com/chronicle-ai/chronicle/internal/retrieval"
	"github.com/chronicle-ai/chronicle/pkg/storage"
)

// Handlers implements the standard pipeline stages over the document
// system, blob storage, chunk store, and orchestrator.
type Handlers struct {
	docs          documents.System
	store         storage.System
	orch          *orchestrator.Orchestrator
	chunks        retrieval.ChunkStore
	maxUploadSize int64
	chunkSize     int
	logger        *slog.Logger
}

// NewHandlers creates the standard stage handlers. Submissions larger than
// maxUploadSize bytes are rejected at acceptance; chunkSize bounds the
// searchable chunks produced during embedding.
func NewHandlers(
	docs documents.System,
	store storage.System,
	orch *orchestrator.Orchestrator,
	chunks retrieval.ChunkStore,
	maxUploadSize int64,
	chunkSize int,
	logger *slog.Logger,
) *Handlers {
	if chunkSize < 1 {
		chunkSize = retrieval.DefaultChunkSize
	}
	return &Handlers{
		docs:          docs,
		store:         store,
		orch:          orch,
		chunks:        chunks,
		maxUploadSize: maxUploadSize,
		chunkSize:     chunkSize,
		logger:        logger.With("system", "pipeline"),
	}
}

// Wire registers the standard handlers and failure finalizer on a machine.
// Each state's handler performs that state's work before the machine
// records the state as complete and checkpoints.
func (h *Handlers) Wire(m *Machine) {
	m.Register(StateSubmitted, h.Accept)
	m.Register(StateStoring, h.Store)
	m.Register(StateExtractingText, h.ExtractText)
	m.Register(StateCleaning, h.Clean)
	m.Register(StateAnalyzingEntities, h.analyze(agents.TaskEntityExtraction, KeyEntities))
	m.Register(StateExtractingActions, h.analyze(agents.TaskActionItems, KeyActions))
	m.Register(StateExtractingRisks, h.analyze(agents.TaskRiskAssessment, KeyRisks))
	m.Register(StateSummarizing, h.analyze(agents.TaskSummarization, KeySummary))
	m.Register(StateEmbedding, h.Embed)
	m.Register(StatePersistingResults, h.PersistResults)
	m.OnFailure(h.MarkDocumentFailed)
}

// Accept validates the submission before any side effects occur.
func (h *Handlers) Accept(ctx context.Context, job *Job) error {
	content, ok := payloadString(job, KeyContent)
	if !ok || strings.TrimSpace(content) == "" {
		return documents.ErrInvalidFile
	}
	if filename, _ := payloadString(job, KeyFilename); filename == "" {
		return documents.ErrInvalidFile
	}
	if h.maxUploadSize > 0 && int64(len(content)) > h.maxUploadSize {
		return documents.ErrFileTooLarge
	}
	return nil
}

// Store uploads the submitted content to blob storage and registers the
// document row. The raw content leaves the payload once the blob holds it.
func (h *Handlers) Store(ctx context.Context, job *Job) error {
	content, ok := payloadString(job, KeyContent)
	if !ok || content == "" {
		return documents.ErrInvalidFile
	}
	filename, _ := payloadString(job, KeyFilename)

	data := []byte(content)
	declared, _ := payloadString(job, "content_type")
	contentType := documents.DetectContentType(declared, data)
	pageCount := documents.ExtractPDFPageCount(h.logger, data, contentType)

	doc, err := h.docs.Create(ctx, documents.CreateCommand{
		Data:        data,
		OwnerID:     job.OwnerID,
		Filename:    filename,
		ContentType: contentType,
		PageCount:   pageCount,
	})
	if err != nil {
		return err
	}

	job.Payload[KeyDocumentID] = doc.ID.String()
	job.AddArtifact(doc.StorageKey)
	delete(job.Payload, KeyContent)

	return nil
}

// ExtractText downloads the stored blob and captures its text content.
func (h *Handlers) ExtractText(ctx context.Context, job *Job) error {
	doc, err := h.document(ctx, job)
	if err != nil {
		return err
	}

	reader, err := h.store.Download(ctx, doc.StorageKey)
	if err != nil {
		return fmt.Errorf("download %s: %w", doc.StorageKey, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read %s: %w", doc.StorageKey, err)
	}

	job.Payload[KeyText] = string(data)
	return nil
}

var (
	collapseSpaces = regexp.MustCompile(`[ \t]+`)
	collapseBlank  = regexp.MustCompile(`\n{3,}`)
)

// Clean normalizes extracted text: uniform line endings, collapsed runs of
// spaces and blank lines, trimmed edges.
func (h *Handlers) Clean(ctx context.Context, job *Job) error {
	text, ok := payloadString(job, KeyText)
	if !ok {
		return fmt.Errorf("no extracted text in payload")
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = collapseSpaces.ReplaceAllString(text, " ")
	text = collapseBlank.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if text == "" {
		return fmt.Errorf("document has no textual content")
	}

	job.Payload[KeyText] = text
	return nil
}

// analyze returns a handler that routes the cleaned text to the unit
// registered for the task type and stores the structured output under the
// given payload key.
func (h *Handlers) analyze(task agents.TaskType, key string) Handler {
	return func(ctx context.Context, job *Job) error {
		text, ok := payloadString(job, KeyText)
		if !ok {
			return fmt.Errorf("no extracted text in payload")
		}

		docID, err := h.documentID(job)
		if err != nil {
			return err
		}

		result, err := h.orch.RouteTask(ctx, task, agents.Input{
			DocumentID: docID,
			Text:       text,
		})
		if err != nil {
			return err
		}

		job.Payload[key] = result.Output
		return nil
	}
}

// Embed splits the cleaned text into chunks and replaces the document's
// searchable chunk set.
func (h *Handlers) Embed(ctx context.Context, job *Job) error {
	text, ok := payloadString(job, KeyText)
	if !ok {
		return fmt.Errorf("no extracted text in payload")
	}

	docID, err := h.documentID(job)
	if err != nil {
		return err
	}

	chunks := retrieval.Split(text, h.chunkSize)
	if err := h.chunks.Replace(ctx, docID, chunks); err != nil {
		return err
	}

	job.Payload[KeyChunkCount] = len(chunks)
	return nil
}

// PersistResults uploads the consolidated analysis results as a JSON
// artifact and marks the document ready.
func (h *Handlers) PersistResults(ctx context.Context, job *Job) error {
	docID, err := h.documentID(job)
	if err != nil {
		return err
	}

	results := map[string]any{
		KeyDocumentID: docID.String(),
		KeyEntities:   job.Payload[KeyEntities],
		KeyActions:    job.Payload[KeyActions],
		KeyRisks:      job.Payload[KeyRisks],
		KeySummary:    job.Payload[KeySummary],
		KeyChunkCount: job.Payload[KeyChunkCount],
	}

	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	key := fmt.Sprintf("results/%s.json", docID)
	if err := h.store.Upload(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return err
	}
	job.AddArtifact(key)

	return h.docs.SetStatus(ctx, docID, documents.StatusReady)
}

// MarkDocumentFailed flags the registered document after a failed run.
// Jobs that fail before registration have no document to flag.
func (h *Handlers) MarkDocumentFailed(ctx context.Context, job *Job) {
	docID, err := h.documentID(job)
	if err != nil {
		return
	}

	if err := h.docs.SetStatus(ctx, docID, documents.StatusFailed); err != nil {
		h.logger.Warn("document failure status update failed",
			"document_id", docID,
			"error", err,
		)
	}
}

func (h *Handlers) document(ctx context.Context, job *Job) (*documents.Document, error) {
	docID, err := h.documentID(job)
	if err != nil {
		return nil, err
	}
	return h.docs.Find(ctx, docID)
}

func (h *Handlers) documentID(job *Job) (uuid.UUID, error) {
	raw, ok := payloadString(job, KeyDocumentID)
	if !ok {
		return uuid.Nil, fmt.Errorf("no document id in payload")
	}
	return uuid.Parse(raw)
}

func payloadString(job *Job, key string) (string, bool) {
	v, ok := job.Payload[key].(string)
	return v, ok
}
