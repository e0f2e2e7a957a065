package certificate

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
)

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// jsonError writes an error response with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// statusForError maps service errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrBusy):
		return http.StatusConflict
	case errors.Is(err, ErrNoCredential),
		errors.Is(err, ErrEmptyReferenceTable),
		errors.Is(err, ErrNoQueuedFiles),
		errors.Is(err, ErrNoCompletedFiles):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleListFiles returns every file record in queue order
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.service.ListFiles()
	if err != nil {
		slog.Error("Error listing files", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(files); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetFile returns a single file record
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		jsonError(w, "File ID required", http.StatusBadRequest)
		return
	}
	file, err := s.service.GetFile(id)
	if err != nil {
		jsonError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(file); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleUploadFile enqueues an uploaded document. Validation failures still
// produce a record, in a terminal error state, so the caller sees exactly
// why the file will never be processed.
func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		jsonError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		jsonError(w, "No file was selected. Please choose a file to upload.", http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		switch strings.ToLower(filepath.Ext(header.Filename)) {
		case ".jpg", ".jpeg":
			contentType = "image/jpeg"
		case ".png":
			contentType = "image/png"
		case ".pdf":
			contentType = "application/pdf"
		default:
			contentType = "application/octet-stream"
		}
	}

	file, err := s.service.AddFile(header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error adding file", "filename", header.Filename, "error", err)
		jsonError(w, err.Error(), statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(file); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleClearFiles removes every file record and stored upload
func (s *Server) handleClearFiles(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearAll(); err != nil {
		slog.Error("Error clearing files", "error", err)
		jsonError(w, err.Error(), statusForError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleProcess runs the batch pipeline over every queued file
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReferenceTable string `json:"reference_table"`
		Credential     string `json:"credential"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Fall back to the persisted credential when the form field is blank
	if strings.TrimSpace(req.Credential) == "" {
		stored, err := s.service.Credential()
		if err != nil {
			slog.Warn("Failed to load persisted credential", "error", err)
		}
		req.Credential = stored
	}

	if err := s.service.Run(r.Context(), req.ReferenceTable, req.Credential); err != nil {
		slog.Error("Batch run failed", "error", err)
		jsonError(w, err.Error(), statusForError(err))
		return
	}

	files, err := s.service.ListFiles()
	if err != nil {
		slog.Error("Error listing files", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(files); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetCredential returns the persisted API credential
func (s *Server) handleGetCredential(w http.ResponseWriter, r *http.Request) {
	credential, err := s.service.Credential()
	if err != nil {
		slog.Error("Error loading credential", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"credential": credential})
}

// handlePutCredential persists the API credential across sessions
func (s *Server) handlePutCredential(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Credential string `json:"credential"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.service.SaveCredential(req.Credential); err != nil {
		slog.Error("Error saving credential", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportFull serves the full TSV export
func (s *Server) handleExportFull(w http.ResponseWriter, r *http.Request) {
	s.serveTSV(w, "certificates-full.tsv", s.service.ExportFull)
}

// handleExportCondensed serves the condensed TSV export
func (s *Server) handleExportCondensed(w http.ResponseWriter, r *http.Request) {
	s.serveTSV(w, "certificates-condensed.tsv", s.service.ExportCondensed)
}

func (s *Server) serveTSV(w http.ResponseWriter, filename string, export func() (string, error)) {
	tsv, err := export()
	if err != nil {
		slog.Error("Export failed", "error", err)
		jsonError(w, err.Error(), statusForError(err))
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write([]byte(tsv))
}

// handleExportArchive serves the provider-partitioned ZIP of original uploads
func (s *Server) handleExportArchive(w http.ResponseWriter, r *http.Request) {
	archive, err := s.service.ExportArchive()
	if err != nil {
		slog.Error("Archive export failed", "error", err)
		jsonError(w, err.Error(), statusForError(err))
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="certificates.zip"`)
	w.Write(archive)
}
