package matching

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/anjanakv868/Smart-Match/internal/extraction"
	"github.com/anjanakv868/Smart-Match/internal/reconcile"
)

// maxUploadSize bounds the multipart form; generous enough for two
// high-resolution phone photos.
const maxUploadSize = int64(50 << 20) // 50MB

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// jsonError writes a JSON error body with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// readFormFile reads one named file out of a parsed multipart form
func readFormFile(r *http.Request, field string) (extraction.FileInput, error) {
	f, header, err := r.FormFile(field)
	if err != nil {
		return extraction.FileInput{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return extraction.FileInput{}, err
	}

	return extraction.FileInput{
		Filename:    header.Filename,
		Data:        data,
		ContentType: detectContentType(header),
	}, nil
}

// detectContentType resolves the content type from the part header, falling
// back to the filename extension
func detectContentType(header *multipart.FileHeader) string {
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		switch ext {
		case ".jpg", ".jpeg":
			contentType = "image/jpeg"
		case ".png":
			contentType = "image/png"
		case ".pdf":
			contentType = "application/pdf"
		case ".heic":
			contentType = "image/heic"
		case ".heif":
			contentType = "image/heif"
		default:
			contentType = "application/octet-stream"
		}
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// handleCreateComparison accepts an invoice and a purchase order as multipart
// files, extracts both and stores the comparison
func (s *Server) handleCreateComparison(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		if err.Error() == "http: request body too large" {
			errorMsg = "Files are too large. Maximum combined size is 50MB."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}

	invoice, err := readFormFile(r, "invoice")
	if err != nil {
		slog.Error("Error getting invoice file from form", "error", err)
		jsonError(w, "Please upload both an invoice and a purchase order file.", http.StatusBadRequest)
		return
	}

	po, err := readFormFile(r, "po")
	if err != nil {
		slog.Error("Error getting purchase order file from form", "error", err)
		jsonError(w, "Please upload both an invoice and a purchase order file.", http.StatusBadRequest)
		return
	}

	comparison, err := s.service.CreateComparison(invoice, po)
	if err != nil {
		slog.Error("Error creating comparison", "invoice", invoice.Filename, "po", po.Filename, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(comparison); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleListComparisons returns a list of all comparisons
func (s *Server) handleListComparisons(w http.ResponseWriter, r *http.Request) {
	comparisons, err := s.service.ListComparisons()
	if err != nil {
		slog.Error("Error listing comparisons", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Ensure we always return an array, not nil
	if comparisons == nil {
		comparisons = []*Comparison{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(comparisons); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetComparison returns a single comparison
func (s *Server) handleGetComparison(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Comparison ID required", http.StatusBadRequest)
		return
	}
	comparison, err := s.service.GetComparison(id)
	if err != nil {
		corsError(w, "Comparison not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(comparison); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleDeleteComparison deletes a comparison
func (s *Server) handleDeleteComparison(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Comparison ID required", http.StatusBadRequest)
		return
	}
	if err := s.service.DeleteComparison(id); err != nil {
		corsError(w, "Error deleting comparison", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateDocument replaces one side of a comparison with a corrected
// document
func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	side := r.PathValue("side")
	if id == "" || side == "" {
		corsError(w, "Comparison ID and document side required", http.StatusBadRequest)
		return
	}

	var doc reconcile.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	comparison, err := s.service.UpdateDocument(id, side, doc)
	if err != nil {
		slog.Error("Error updating document", "id", id, "side", side, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(comparison); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetSummary reconciles the comparison and returns the match report
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Comparison ID required", http.StatusBadRequest)
		return
	}

	report, err := s.service.Summarize(id)
	if err != nil {
		corsError(w, "Comparison not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetNarrative returns the natural-language mismatch summary
func (s *Server) handleGetNarrative(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Comparison ID required", http.StatusBadRequest)
		return
	}

	narrative, err := s.service.Narrative(id)
	if err != nil {
		slog.Error("Error generating narrative", "id", id, "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"narrative": narrative}); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetDocumentFile returns the stored source file for one side
func (s *Server) handleGetDocumentFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	side := r.PathValue("side")
	if id == "" || side == "" {
		corsError(w, "Comparison ID and document side required", http.StatusBadRequest)
		return
	}
	data, contentType, err := s.service.GetDocumentFile(id, side)
	if err != nil {
		corsError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
