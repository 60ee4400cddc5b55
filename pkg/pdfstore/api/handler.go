package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/loresmith/pdfstore/pkg/pdfstore"
)

// RequestUploadRequest is the request body for requesting a presigned upload
type RequestUploadRequest struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Name     string `json:"name,omitempty"`
	Tags     string `json:"tags,omitempty"`
}

// RequestUploadResponse is the response body for a granted presigned upload
type RequestUploadResponse struct {
	Success      bool               `json:"success"`
	UploadID     string             `json:"upload_id"`
	PresignedURL string             `json:"presigned_url"`
	ExpiresIn    int                `json:"expires_in"`
	Instructions UploadInstructions `json:"instructions"`
}

// UploadInstructions tells the client how to perform the binary transfer
type UploadInstructions struct {
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Note    string            `json:"note"`
}

// CompleteUploadRequest is the request body for completing a presigned upload
type CompleteUploadRequest struct {
	UploadID string `json:"upload_id"`
	ETag     string `json:"etag,omitempty"`
}

// CompleteUploadResponse is the response body for a completed upload
type CompleteUploadResponse struct {
	Success  bool                `json:"success"`
	PdfID    string              `json:"pdf_id"`
	Message  string              `json:"message"`
	Metadata *pdfstore.PdfRecord `json:"metadata"`
}

// DirectUploadResponse is the response body for a single-shot upload
type DirectUploadResponse struct {
	Success  bool                `json:"success"`
	PdfID    string              `json:"pdfId"`
	Message  string              `json:"message"`
	Metadata *pdfstore.PdfRecord `json:"metadata"`
}

// ListPdfsResponse is the response body for the library listing
type ListPdfsResponse struct {
	Pdfs    []*pdfstore.PdfRecord `json:"pdfs"`
	Count   int                   `json:"count"`
	Message string                `json:"message,omitempty"`
}

// ValidateKeyRequest is the request body for the key validation endpoint
type ValidateKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// Config carries the handler settings that shape responses and routing.
type Config struct {
	HourlyUploadLimit  int
	DailyUploadLimit   int
	RequireAdminDelete bool
}

// Handler exposes the pdfstore service over HTTP
type Handler struct {
	service            pdfstore.Service
	auth               *pdfstore.Authenticator
	hourlyLimit        int
	dailyLimit         int
	requireAdminDelete bool
}

// NewHandler creates a new HTTP handler over the service
func NewHandler(service pdfstore.Service, auth *pdfstore.Authenticator, cfg Config) *Handler {
	if cfg.HourlyUploadLimit <= 0 {
		cfg.HourlyUploadLimit = pdfstore.DefaultHourlyUploadLimit
	}
	if cfg.DailyUploadLimit <= 0 {
		cfg.DailyUploadLimit = pdfstore.DefaultDailyUploadLimit
	}

	return &Handler{
		service:            service,
		auth:               auth,
		hourlyLimit:        cfg.HourlyUploadLimit,
		dailyLimit:         cfg.DailyUploadLimit,
		requireAdminDelete: cfg.RequireAdminDelete,
	}
}

// Routes returns the routes for the pdfstore API
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(CORSMiddleware)

	r.Get("/", h.Index)
	r.Get("/health", h.Health)
	r.Post("/validate-key", h.ValidateKey)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.auth))

		r.Post("/upload/request", h.RequestUpload)
		r.Post("/upload/complete", h.CompleteUpload)
		r.Post("/upload", h.DirectUpload)

		r.Get("/pdfs", h.ListPdfs)
		r.Get("/pdf/{id}", h.DownloadPdf)
		r.Get("/pdf/{id}/metadata", h.GetPdfMetadata)
		r.Delete("/pdf/{id}", h.DeletePdf)
	})

	return r
}

// Index describes the available endpoints
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"name":   "pdfstore",
		"status": "ready",
		"file_limits": map[string]interface{}{
			"max_size":        strconv.FormatInt(pdfstore.MaxUploadSize>>20, 10) + "MB",
			"max_direct_size": strconv.FormatInt(pdfstore.MaxDirectUploadSize>>20, 10) + "MB",
			"supported_types": []string{pdfstore.PdfContentType},
		},
		"endpoints": []map[string]string{
			{"method": "POST", "path": "/validate-key", "description": "Validate an API key without performing any operations", "authentication": "none"},
			{"method": "POST", "path": "/upload/request", "description": "Request a presigned upload URL for large PDFs", "authentication": "required"},
			{"method": "POST", "path": "/upload/complete", "description": "Complete the upload after the direct transfer", "authentication": "required"},
			{"method": "POST", "path": "/upload", "description": "Upload a PDF file directly (smaller files only)", "authentication": "required"},
			{"method": "GET", "path": "/pdfs", "description": "List all stored PDFs", "authentication": "required"},
			{"method": "GET", "path": "/pdf/{id}", "description": "Download a specific PDF", "authentication": "required"},
			{"method": "GET", "path": "/pdf/{id}/metadata", "description": "Get PDF metadata", "authentication": "required"},
			{"method": "DELETE", "path": "/pdf/{id}", "description": "Delete a PDF", "authentication": "admin"},
		},
	})
}

// Health reports service liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// ValidateKey checks a credential without performing any operation
func (h *Handler) ValidateKey(w http.ResponseWriter, r *http.Request) {
	var req ValidateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	identity, err := h.auth.Authenticate(req.APIKey, false)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"success":  true,
		"message":  "API key is valid",
		"clientId": identity.ID,
	})
}

// RequestUpload grants a presigned upload for large PDFs
func (h *Handler) RequestUpload(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		h.respondError(w, r, pdfstore.ErrMissingCredential)
		return
	}

	var req RequestUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Filename == "" || req.Size == 0 {
		errorJSON(w, r, http.StatusBadRequest, "Missing required fields: filename and size", "")
		return
	}

	ticket, err := h.service.RequestUpload(r.Context(), identity, pdfstore.RequestUploadParams{
		Filename: req.Filename,
		Size:     req.Size,
		Name:     req.Name,
		Tags:     splitTags(req.Tags),
	})
	if err != nil {
		slog.Error("Failed to create upload request", "filename", req.Filename, "error", err)
		h.respondError(w, r, err)
		return
	}

	slog.Info("Presigned upload granted", "upload_id", ticket.UploadID, "client_id", identity.ID)
	render.JSON(w, r, RequestUploadResponse{
		Success:      true,
		UploadID:     ticket.UploadID,
		PresignedURL: ticket.PresignedURL,
		ExpiresIn:    ticket.ExpiresIn,
		Instructions: UploadInstructions{
			Method:  http.MethodPut,
			Headers: map[string]string{"Content-Type": pdfstore.PdfContentType},
			Note:    "Upload the file directly to the presigned URL, then call /upload/complete",
		},
	})
}

// CompleteUpload promotes a pending upload to a final record
func (h *Handler) CompleteUpload(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		h.respondError(w, r, pdfstore.ErrMissingCredential)
		return
	}

	var req CompleteUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.UploadID == "" {
		errorJSON(w, r, http.StatusBadRequest, "Missing required field: upload_id", "")
		return
	}

	record, err := h.service.CompleteUpload(r.Context(), identity, req.UploadID, req.ETag)
	if err != nil {
		slog.Error("Failed to complete upload", "upload_id", req.UploadID, "error", err)
		h.respondError(w, r, err)
		return
	}

	slog.Info("Upload completed", "pdf_id", record.ID, "client_id", identity.ID)
	render.JSON(w, r, CompleteUploadResponse{
		Success:  true,
		PdfID:    record.ID,
		Message:  "PDF upload completed successfully",
		Metadata: record,
	})
}

// DirectUpload accepts a multipart single-shot upload for smaller PDFs
func (h *Handler) DirectUpload(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		h.respondError(w, r, pdfstore.ErrMissingCredential)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errorJSON(w, r, http.StatusBadRequest, "Please upload a valid PDF file", "")
		return
	}
	defer file.Close()

	record, err := h.service.UploadDirect(r.Context(), identity, file, pdfstore.DirectUploadParams{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Name:        r.FormValue("name"),
		Tags:        splitTags(r.FormValue("tags")),
	})
	if err != nil {
		slog.Error("Failed to upload PDF", "filename", header.Filename, "error", err)
		h.respondError(w, r, err)
		return
	}

	slog.Info("PDF uploaded", "pdf_id", record.ID, "size", record.Size, "client_id", identity.ID)
	render.JSON(w, r, DirectUploadResponse{
		Success:  true,
		PdfID:    record.ID,
		Message:  "PDF uploaded successfully",
		Metadata: record,
	})
}

// ListPdfs lists all stored PDFs. A backend read failure degrades to an
// empty listing with an explanatory message rather than an error status.
func (h *Handler) ListPdfs(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListPdfs(r.Context())
	if err != nil {
		slog.Warn("Failed to list PDFs, returning empty library", "error", err)
		render.JSON(w, r, ListPdfsResponse{
			Pdfs:    []*pdfstore.PdfRecord{},
			Count:   0,
			Message: "Unable to load PDF library at this time. This might be a configuration issue.",
		})
		return
	}

	if records == nil {
		records = []*pdfstore.PdfRecord{}
	}

	resp := ListPdfsResponse{Pdfs: records, Count: len(records)}
	if len(records) == 0 {
		resp.Message = "Your PDF library is currently empty. Upload some PDFs to get started!"
	}

	render.JSON(w, r, resp)
}

// DownloadPdf streams a stored PDF
func (h *Handler) DownloadPdf(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, meta, err := h.service.GetPdf(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", pdfstore.PdfContentType)
	disposition := meta.ContentDisposition
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition)
	if meta.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	}

	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("Failed to stream PDF", "pdf_id", id, "error", err)
	}
}

// GetPdfMetadata returns the metadata record for a single PDF
func (h *Handler) GetPdfMetadata(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.service.GetPdfMetadata(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	render.JSON(w, r, record)
}

// DeletePdf deletes a PDF blob and its metadata
func (h *Handler) DeletePdf(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if h.requireAdminDelete {
		identity, ok := IdentityFromContext(r.Context())
		if !ok || !identity.IsAdmin {
			h.respondError(w, r, pdfstore.ErrAdminRequired)
			return
		}
	}

	if err := h.service.DeletePdf(r.Context(), id); err != nil {
		slog.Error("Failed to delete PDF", "pdf_id", id, "error", err)
		h.respondError(w, r, err)
		return
	}

	slog.Info("PDF deleted", "pdf_id", id)
	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"message": "PDF deleted successfully",
	})
}

// respondError maps service errors to HTTP responses. Rate-limit errors
// carry the configured limits and a Retry-After header.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var rateErr *pdfstore.RateLimitError
	if errors.As(err, &rateErr) {
		w.Header().Set("Retry-After", strconv.Itoa(rateErr.RetryAfter))
		render.Status(r, http.StatusTooManyRequests)
		render.JSON(w, r, map[string]interface{}{
			"error":   "Rate limit exceeded",
			"message": rateErr.Error(),
			"limits": map[string]int{
				"uploads_per_hour": h.hourlyLimit,
				"uploads_per_day":  h.dailyLimit,
			},
			"retry_after": rateErr.RetryAfter,
		})
		return
	}

	writeError(w, r, err)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var sizeErr *pdfstore.SizeLimitError
	switch {
	case errors.Is(err, pdfstore.ErrMissingCredential),
		errors.Is(err, pdfstore.ErrInvalidAPIKey),
		errors.Is(err, pdfstore.ErrAdminRequired):
		w.Header().Set("WWW-Authenticate", "Bearer")
		errorJSON(w, r, http.StatusUnauthorized, "Authentication required", err.Error())
	case errors.Is(err, pdfstore.ErrUploadNotOwned):
		errorJSON(w, r, http.StatusForbidden, "Unauthorized to complete this upload", "")
	case errors.As(err, &sizeErr):
		body := map[string]interface{}{
			"error":   "File too large",
			"message": sizeErr.Error(),
			"size":    sizeErr.Size,
		}
		if sizeErr.Recommendation != "" {
			body["recommendation"] = sizeErr.Recommendation
		}
		render.Status(r, http.StatusRequestEntityTooLarge)
		render.JSON(w, r, body)
	case errors.Is(err, pdfstore.ErrUploadNotFound):
		errorJSON(w, r, http.StatusNotFound, "Upload not found or expired", "")
	case errors.Is(err, pdfstore.ErrBlobNotFound):
		errorJSON(w, r, http.StatusNotFound, "File not found in storage. Please retry the upload.", "")
	case errors.Is(err, pdfstore.ErrPdfNotFound):
		errorJSON(w, r, http.StatusNotFound, "PDF not found", "")
	case errors.Is(err, pdfstore.ErrInvalidContentType):
		errorJSON(w, r, http.StatusBadRequest, "Please upload a valid PDF file", "")
	default:
		slog.Error("Request failed", "path", r.URL.Path, "error", err)
		errorJSON(w, r, http.StatusInternalServerError, "Internal storage error", err.Error())
	}
}

func errorJSON(w http.ResponseWriter, r *http.Request, status int, message, details string) {
	body := map[string]interface{}{"error": message}
	if details != "" {
		body["details"] = details
	}
	render.Status(r, status)
	render.JSON(w, r, body)
}

func splitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
