package jobs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/labelsort/pkg/handlers"
	"github.com/JaimeStill/labelsort/pkg/labels"
	"github.com/JaimeStill/labelsort/pkg/pagination"
	"github.com/JaimeStill/labelsort/pkg/routes"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler provides HTTP endpoints for label processing and sort jobs.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SortResponse is the body returned after a sort job is created.
type SortResponse struct {
	Job         *Job             `json:"job"`
	PageMapping map[string][]int `json:"page_mapping"`
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "jobs"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// LabelRoutes returns the upload endpoints that run the pipeline.
func (h *Handler) LabelRoutes() routes.Group {
	return routes.Group{
		Prefix: "/labels",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/sort", Handler: h.Sort},
			{Method: "POST", Pattern: "/classify", Handler: h.Classify},
			{Method: "POST", Pattern: "/crop", Handler: h.Crop},
		},
	}
}

// JobRoutes returns the endpoints over stored sort jobs.
func (h *Handler) JobRoutes() routes.Group {
	return routes.Group{
		Prefix: "/jobs",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "GET", Pattern: "/{id}/download", Handler: h.Download},
			{Method: "POST", Pattern: "/{id}/export", Handler: h.Export},
			{Method: "GET", Pattern: "/{id}/report", Handler: h.Report},
		},
	}
}

// Sort accepts a multipart upload, sorts it, and stores the run as a job.
// Form fields sort_by (PRODUCT or COURIER) and remove_invoice (YES or NO)
// are optional and default to PRODUCT and YES.
func (h *Handler) Sort(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.readUpload(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	mode, err := labels.ParseMode(formValue(r, "sort_by", "sortBy"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	strip, err := ParseRemoveInvoice(formValue(r, "remove_invoice", "removeInvoice"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	job, err := h.sys.Create(r.Context(), CreateCommand{
		Data:     data,
		Filename: filename,
		Mode:     mode,
		Strip:    strip,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, SortResponse{
		Job:         job,
		PageMapping: job.PageMapping(),
	})
}

// Classify returns the grouping of an uploaded document without storing it.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	data, _, err := h.readUpload(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	mode, err := labels.ParseMode(formValue(r, "sort_by", "sortBy"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Classify(r.Context(), data, mode)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Crop returns the uploaded document with every page cut to its label region.
func (h *Handler) Crop(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.readUpload(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	out, err := h.sys.Crop(r.Context(), data)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	name := labels.DerivedPath(baseName(filename), "_cropped")
	writeFile(w, handlers.Attachment, name, "application/pdf", out)
}

// List returns a paginated list of jobs with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single job by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	job, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, job)
}

// Delete removes a job and its stored documents.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Download streams the sorted document. The mode query parameter selects
// inline display (for printing) or attachment (the default).
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = handlers.Attachment
	}
	if mode != handlers.Inline && mode != handlers.Attachment {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: unknown download mode %q", labels.ErrInvalidInput, mode))
		return
	}

	job, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	rc, err := h.sys.Open(r.Context(), job.OutputKey)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	if job.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(job.SizeBytes, 10))
	}
	handlers.SetDisposition(w, mode, job.OutputName())
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("download stream interrupted", "id", id, "error", err)
	}
}

// Export accepts {key, pages?} and returns a standalone document holding
// those source pages.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var cmd ExportCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", labels.ErrInvalidInput, err))
		return
	}

	doc, err := h.sys.Export(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	writeFile(w, handlers.Attachment, doc.Name, "application/pdf", doc.Data)
}

// Report returns the job's group summary as an XLSX workbook.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	job, err := h.sys.Report(r.Context(), id, &buf)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	writeFile(w, handlers.Attachment, ReportName(job), xlsxContentType, buf.Bytes())
}

// ParseRemoveInvoice reads the remove_invoice form value. It accepts YES
// and NO as well as boolean literals; empty input means YES.
func ParseRemoveInvoice(s string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "YES", "Y":
		return true, nil
	case "NO", "N":
		return false, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("%w: remove_invoice must be YES or NO, got %q", labels.ErrInvalidInput, s)
	}
	return v, nil
}

func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	if r.ContentLength > h.maxUploadSize {
		return nil, "", ErrFileTooLarge
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", ErrFileTooLarge
		}
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: file field required", ErrInvalidFile)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty file", ErrInvalidFile)
	}

	return data, header.Filename, nil
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: invalid job id", ErrInvalidFile))
		return uuid.Nil, false
	}
	return id, true
}

func formValue(r *http.Request, names ...string) string {
	for _, name := range names {
		if v := r.FormValue(name); v != "" {
			return v
		}
	}
	return ""
}

func baseName(filename string) string {
	if filename == "" {
		return "labels.pdf"
	}
	return filename
}

func writeFile(w http.ResponseWriter, mode, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	handlers.SetDisposition(w, mode, name)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
