package certificate

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gamecert/cert-tracker/internal/scanning"
)

// DefaultMaxUploadSize is the byte ceiling for uploaded documents
const DefaultMaxUploadSize int64 = 20 << 20

// allowedContentTypes is the upload allow-list. Matching is exact: variant
// MIME strings like "image/pngx" are rejected.
var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
}

// IDGenerator generates unique IDs for processed files
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service owns the processed-file queue and drives the batch pipeline.
// File records are mutated only here; a busy flag makes exports and
// clear-all mutually exclusive with an in-flight run.
type Service struct {
	db            DB
	extractor     scanning.Extractor
	storage       Storage
	idGenerator   IDGenerator
	timeSource    TimeSource
	maxUploadSize int64

	mu      sync.Mutex
	running bool
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, extractor scanning.Extractor, storage Storage, maxUploadSize int64) *Service {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &Service{
		db:            db,
		extractor:     extractor,
		storage:       storage,
		idGenerator:   &defaultIDGenerator{},
		timeSource:    &defaultTimeSource{},
		maxUploadSize: maxUploadSize,
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, extractor scanning.Extractor, storage Storage, maxUploadSize int64, idGen IDGenerator, timeSrc TimeSource) *Service {
	s := NewService(db, extractor, storage, maxUploadSize)
	s.idGenerator = idGen
	s.timeSource = timeSrc
	return s
}

// sanitizeFilename cleans up an uploaded filename before it is used as part
// of a storage path
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)

	reg := regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	base = reg.ReplaceAllString(base, "")

	reg = regexp.MustCompile(`\s+`)
	base = reg.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}
	if base == "" {
		base = "document"
	}

	return base + ext
}

// AddFile validates and enqueues an uploaded document. Files failing the
// size or MIME check are recorded in a terminal error state immediately and
// never processed; their original bytes are not kept.
func (s *Service) AddFile(filename string, data []byte, contentType string) (*ProcessedFile, error) {
	if s.isRunning() {
		return nil, ErrBusy
	}

	seq, err := s.nextSeq()
	if err != nil {
		return nil, err
	}

	now := s.timeSource.Now()
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	file := &ProcessedFile{
		ID:          s.idGenerator.Generate(),
		Seq:         seq,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Instances:   []GameInstance{},
		Status:      StatusQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	switch {
	case file.Size > s.maxUploadSize:
		file.Status = StatusError
		file.ErrorMessage = fmt.Sprintf("file is too large: %d bytes exceeds the %d byte limit", file.Size, s.maxUploadSize)
	case !allowedContentTypes[contentType]:
		file.Status = StatusError
		file.ErrorMessage = fmt.Sprintf("unsupported file type %q: only PDF, PNG and JPEG documents are accepted", contentType)
	default:
		storedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", file.ID, sanitizeFilename(filename)), data)
		if err != nil {
			return nil, fmt.Errorf("saving file: %w", err)
		}
		file.StoredPath = storedPath
	}

	if err := s.db.SaveFile(file); err != nil {
		if file.StoredPath != "" {
			s.storage.Delete(file.StoredPath)
		}
		return nil, fmt.Errorf("saving file record: %w", err)
	}

	return file, nil
}

// nextSeq returns the next queue position
func (s *Service) nextSeq() (int, error) {
	files, err := s.db.ListFiles()
	if err != nil {
		return 0, fmt.Errorf("listing files: %w", err)
	}
	maxSeq := 0
	for _, f := range files {
		if f.Seq > maxSeq {
			maxSeq = f.Seq
		}
	}
	return maxSeq + 1, nil
}

// Run parses the reference table and processes every queued file in order,
// strictly one at a time. Preconditions are checked before any file record
// is touched; a failure on one file never aborts the rest of the batch.
func (s *Service) Run(ctx context.Context, referenceText string, credential string) error {
	if strings.TrimSpace(credential) == "" {
		return ErrNoCredential
	}

	table := ParseReferenceTable(referenceText)
	if len(table) == 0 {
		return ErrEmptyReferenceTable
	}

	if !s.tryStart() {
		return ErrBusy
	}
	defer s.finish()

	files, err := s.db.ListFiles()
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}

	var queued []*ProcessedFile
	for _, f := range files {
		if f.Status == StatusQueued {
			queued = append(queued, f)
		}
	}
	if len(queued) == 0 {
		return ErrNoQueuedFiles
	}

	// The table is immutable for the duration of the run; persist the raw
	// text and credential so exports and later sessions can reuse them
	if err := s.db.SaveReferenceText(referenceText); err != nil {
		slog.Warn("Failed to persist reference table text", "error", err)
	}
	if err := s.db.SaveCredential(credential); err != nil {
		slog.Warn("Failed to persist credential", "error", err)
	}

	slog.Info("Starting batch run", "queued", len(queued), "reference_entries", len(table))

	for _, f := range queued {
		s.processFile(ctx, f, credential)
	}

	return nil
}

// processFile drives one file through processing to completed or error
func (s *Service) processFile(ctx context.Context, file *ProcessedFile, credential string) {
	s.transition(file, StatusProcessing, "")

	data, err := s.storage.Get(file.StoredPath)
	if err != nil {
		s.fail(file, fmt.Errorf("reading stored file: %w", err))
		return
	}

	var extracted *scanning.CertificateData
	if file.ContentType == "application/pdf" {
		text, err := scanning.ExtractPDFText(data)
		if err != nil {
			s.fail(file, err)
			return
		}
		extracted, err = s.extractor.ExtractFromText(ctx, text, credential)
		if err != nil {
			s.fail(file, err)
			return
		}
	} else {
		extracted, err = s.extractor.ExtractFromImage(ctx, data, file.ContentType, credential)
		if err != nil {
			s.fail(file, err)
			return
		}
	}

	file.ReportNumber = extracted.ReportNumber
	file.CertificationDate = extracted.CertificationDate
	file.SupplierRegistrationNumber = extracted.SupplierRegistrationNumber
	file.Instances = toInstances(extracted.Games)

	s.transition(file, StatusCompleted, "")
	slog.Info("Processed file", "filename", file.Filename, "instances", len(file.Instances))
}

// toInstances converts extraction results into immutable game instances
func toInstances(games []scanning.ExtractedGame) []GameInstance {
	instances := make([]GameInstance, 0, len(games))
	for _, g := range games {
		details := make([]FileDetail, 0, len(g.Files))
		for _, f := range g.Files {
			details = append(details, FileDetail{Name: f.Name, MD5: f.MD5, SHA1: f.SHA1})
		}
		instances = append(instances, GameInstance{
			GameName: g.GameName,
			GameCode: g.GameCode,
			Files:    details,
		})
	}
	return instances
}

// fail moves a file to the terminal error state, capturing the failure
// message verbatim for display
func (s *Service) fail(file *ProcessedFile, err error) {
	slog.Error("Failed to process file", "filename", file.Filename, "error", err)
	s.transition(file, StatusError, err.Error())
}

func (s *Service) transition(file *ProcessedFile, status Status, errorMessage string) {
	file.Status = status
	file.ErrorMessage = errorMessage
	file.UpdatedAt = s.timeSource.Now()
	if err := s.db.SaveFile(file); err != nil {
		slog.Error("Failed to save file record", "id", file.ID, "error", err)
	}
}

// ListFiles returns every file record in queue order
func (s *Service) ListFiles() ([]*ProcessedFile, error) {
	return s.db.ListFiles()
}

// GetFile returns a single file record
func (s *Service) GetFile(id string) (*ProcessedFile, error) {
	return s.db.GetFile(id)
}

// ClearAll removes every file record and its stored bytes. Refused while a
// batch run is in flight.
func (s *Service) ClearAll() error {
	if s.isRunning() {
		return ErrBusy
	}

	files, err := s.db.ListFiles()
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}
	for _, f := range files {
		if f.StoredPath == "" {
			continue
		}
		if err := s.storage.Delete(f.StoredPath); err != nil {
			slog.Warn("Failed to delete stored file", "path", f.StoredPath, "error", err)
		}
	}

	if err := s.db.DeleteAllFiles(); err != nil {
		return fmt.Errorf("clearing file records: %w", err)
	}
	return nil
}

// ExportFull renders the full TSV export over the current completed set
func (s *Service) ExportFull() (string, error) {
	files, table, err := s.exportInputs()
	if err != nil {
		return "", err
	}
	return FullTSV(files, table), nil
}

// ExportCondensed renders the condensed TSV export over the current completed set
func (s *Service) ExportCondensed() (string, error) {
	files, table, err := s.exportInputs()
	if err != nil {
		return "", err
	}
	return CondensedTSV(files, table), nil
}

// ExportArchive builds the provider-partitioned ZIP of original uploads
func (s *Service) ExportArchive() ([]byte, error) {
	files, table, err := s.exportInputs()
	if err != nil {
		return nil, err
	}
	return BuildArchive(files, table, s.storage)
}

// exportInputs gathers the file set and the last-used reference table,
// refusing while a batch run is in flight
func (s *Service) exportInputs() ([]*ProcessedFile, ReferenceTable, error) {
	if s.isRunning() {
		return nil, nil, ErrBusy
	}
	files, err := s.db.ListFiles()
	if err != nil {
		return nil, nil, fmt.Errorf("listing files: %w", err)
	}
	referenceText, err := s.db.ReferenceText()
	if err != nil {
		return nil, nil, fmt.Errorf("loading reference table: %w", err)
	}
	return files, ParseReferenceTable(referenceText), nil
}

// SaveCredential persists the operator's API credential across sessions
func (s *Service) SaveCredential(credential string) error {
	return s.db.SaveCredential(credential)
}

// Credential returns the persisted API credential
func (s *Service) Credential() (string, error) {
	return s.db.Credential()
}

func (s *Service) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Service) tryStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Service) finish() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}
