package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/labelsort/pkg/handlers"
)

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name   string
		status int
		data   any
	}{
		{"200 with map", http.StatusOK, map[string]string{"key": "value"}},
		{"201 with struct", http.StatusCreated, struct{ ID int }{ID: 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlers.RespondJSON(rec, tt.status, tt.data)

			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content-type: got %s", ct)
			}

			var parsed map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError} {
		rec := httptest.NewRecorder()
		handlers.RespondError(rec, logger, status, errors.New("invalid input"))

		if rec.Code != status {
			t.Errorf("status: got %d, want %d", rec.Code, status)
		}

		var parsed map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if parsed["error"] != "invalid input" {
			t.Errorf("error: got %q, want %q", parsed["error"], "invalid input")
		}
	}
}

func TestSetDisposition(t *testing.T) {
	tests := []struct {
		mode string
		want string
	}{
		{handlers.Inline, "inline; filename=sorted.pdf"},
		{handlers.Attachment, "attachment; filename=sorted.pdf"},
		{"", "attachment; filename=sorted.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlers.SetDisposition(rec, tt.mode, "sorted.pdf")
			if got := rec.Header().Get("Content-Disposition"); got != tt.want {
				t.Errorf("Content-Disposition = %q, want %q", got, tt.want)
			}
		})
	}
}
