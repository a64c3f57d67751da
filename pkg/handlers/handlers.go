// Package handlers provides shared HTTP response helpers.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
)

// Disposition values for Content-Disposition.
const (
	Inline     = "inline"
	Attachment = "attachment"
)

// RespondJSON writes data as a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as {"error": "..."} with the given status.
// Server errors are logged at error level, client errors at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// SetDisposition sets Content-Disposition for filename. Any mode other than
// Inline is treated as Attachment.
func SetDisposition(w http.ResponseWriter, mode, filename string) {
	if mode != Inline {
		mode = Attachment
	}
	value := mime.FormatMediaType(mode, map[string]string{"filename": filename})
	if value == "" {
		value = fmt.Sprintf("%s; filename=%q", mode, "download")
	}
	w.Header().Set("Content-Disposition", value)
}
