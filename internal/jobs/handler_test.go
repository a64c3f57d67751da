package jobs_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/labelsort/internal/jobs"
	"github.com/JaimeStill/labelsort/pkg/labels"
	"github.com/JaimeStill/labelsort/pkg/pagination"
	"github.com/JaimeStill/labelsort/pkg/routes"
	"github.com/JaimeStill/labelsort/pkg/storage"
)

type mockSystem struct {
	createFn   func(ctx context.Context, cmd jobs.CreateCommand) (*jobs.Job, error)
	classifyFn func(ctx context.Context, data []byte, mode labels.Mode) (*jobs.Classification, error)
	cropFn     func(ctx context.Context, data []byte) ([]byte, error)
	listFn     func(ctx context.Context, page pagination.PageRequest, filters jobs.Filters) (*pagination.PageResult[jobs.Job], error)
	findFn     func(ctx context.Context, id uuid.UUID) (*jobs.Job, error)
	deleteFn   func(ctx context.Context, id uuid.UUID) error
	exportFn   func(ctx context.Context, id uuid.UUID, cmd jobs.ExportCommand) (*jobs.Document, error)
	openFn     func(ctx context.Context, key string) (io.ReadCloser, error)
	reportFn   func(ctx context.Context, id uuid.UUID, w io.Writer) (*jobs.Job, error)
}

func (m *mockSystem) Handler(maxUploadSize int64) *jobs.Handler {
	return newTestHandler(m, maxUploadSize)
}

func (m *mockSystem) Create(ctx context.Context, cmd jobs.CreateCommand) (*jobs.Job, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Classify(ctx context.Context, data []byte, mode labels.Mode) (*jobs.Classification, error) {
	return m.classifyFn(ctx, data, mode)
}

func (m *mockSystem) Crop(ctx context.Context, data []byte) ([]byte, error) {
	return m.cropFn(ctx, data)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters jobs.Filters) (*pagination.PageResult[jobs.Job], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*jobs.Job, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockSystem) Export(ctx context.Context, id uuid.UUID, cmd jobs.ExportCommand) (*jobs.Document, error) {
	return m.exportFn(ctx, id, cmd)
}

func (m *mockSystem) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return m.openFn(ctx, key)
}

func (m *mockSystem) Report(ctx context.Context, id uuid.UUID, w io.Writer) (*jobs.Job, error) {
	return m.reportFn(ctx, id, w)
}

func newTestHandler(sys jobs.System, maxUploadSize int64) *jobs.Handler {
	return jobs.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		maxUploadSize,
	)
}

func setupMux(sys *mockSystem) *http.ServeMux {
	h := newTestHandler(sys, 1<<20)
	mux := http.NewServeMux()
	routes.Register(mux, h.LabelRoutes(), h.JobRoutes())
	return mux
}

func upload(t *testing.T, path, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if data != nil {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(data)
	}
	mw.Close()

	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandlerSort(t *testing.T) {
	job := sampleJob()

	t.Run("creates job with options", func(t *testing.T) {
		var captured jobs.CreateCommand
		sys := &mockSystem{
			createFn: func(_ context.Context, cmd jobs.CreateCommand) (*jobs.Job, error) {
				captured = cmd
				return job, nil
			},
		}

		rec := httptest.NewRecorder()
		req := upload(t, "/labels/sort", "bulk.pdf", []byte("%PDF-1.4"), map[string]string{
			"sort_by":        "courier",
			"remove_invoice": "NO",
		})
		setupMux(sys).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
		}
		if captured.Mode != labels.ModeCourier {
			t.Errorf("mode = %s, want COURIER", captured.Mode)
		}
		if captured.Strip {
			t.Error("strip = true, want false")
		}
		if captured.Filename != "bulk.pdf" || string(captured.Data) != "%PDF-1.4" {
			t.Errorf("command = %q %q", captured.Filename, captured.Data)
		}

		var resp jobs.SortResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Job.ID != job.ID {
			t.Errorf("id = %v, want %v", resp.Job.ID, job.ID)
		}
		if got := resp.PageMapping["SKU-001"]; len(got) != 3 {
			t.Errorf("page mapping SKU-001 = %v, want 3 pages", got)
		}
	})

	t.Run("defaults and camel case aliases", func(t *testing.T) {
		var captured []jobs.CreateCommand
		sys := &mockSystem{
			createFn: func(_ context.Context, cmd jobs.CreateCommand) (*jobs.Job, error) {
				captured = append(captured, cmd)
				return job, nil
			},
		}
		mux := setupMux(sys)

		mux.ServeHTTP(httptest.NewRecorder(), upload(t, "/labels/sort", "a.pdf", []byte("x"), nil))
		mux.ServeHTTP(httptest.NewRecorder(), upload(t, "/labels/sort", "b.pdf", []byte("x"), map[string]string{
			"sortBy":        "COURIER",
			"removeInvoice": "NO",
		}))

		if len(captured) != 2 {
			t.Fatalf("create calls = %d, want 2", len(captured))
		}
		if captured[0].Mode != labels.ModeProduct || !captured[0].Strip {
			t.Errorf("defaults = %s/%v, want PRODUCT/true", captured[0].Mode, captured[0].Strip)
		}
		if captured[1].Mode != labels.ModeCourier || captured[1].Strip {
			t.Errorf("aliases = %s/%v, want COURIER/false", captured[1].Mode, captured[1].Strip)
		}
	})

	t.Run("rejects bad requests", func(t *testing.T) {
		sys := &mockSystem{
			createFn: func(_ context.Context, _ jobs.CreateCommand) (*jobs.Job, error) {
				t.Error("create called for bad request")
				return nil, nil
			},
		}
		mux := setupMux(sys)

		tests := []struct {
			name string
			req  *http.Request
			want int
		}{
			{"missing file", upload(t, "/labels/sort", "", nil, map[string]string{"sort_by": "PRODUCT"}), http.StatusBadRequest},
			{"empty file", upload(t, "/labels/sort", "a.pdf", []byte{}, nil), http.StatusBadRequest},
			{"unknown mode", upload(t, "/labels/sort", "a.pdf", []byte("x"), map[string]string{"sort_by": "COLOR"}), http.StatusBadRequest},
			{"bad remove invoice", upload(t, "/labels/sort", "a.pdf", []byte("x"), map[string]string{"remove_invoice": "SOMETIMES"}), http.StatusBadRequest},
			{"too large", upload(t, "/labels/sort", "a.pdf", bytes.Repeat([]byte("x"), 2<<20), nil), http.StatusRequestEntityTooLarge},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, tt.req)
				if rec.Code != tt.want {
					t.Errorf("status = %d, want %d", rec.Code, tt.want)
				}
			})
		}
	})

	t.Run("maps pipeline errors", func(t *testing.T) {
		sys := &mockSystem{
			createFn: func(_ context.Context, _ jobs.CreateCommand) (*jobs.Job, error) {
				return nil, labels.ErrDocument
			},
		}

		rec := httptest.NewRecorder()
		setupMux(sys).ServeHTTP(rec, upload(t, "/labels/sort", "a.pdf", []byte("not a pdf"), nil))

		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})
}

func TestHandlerClassify(t *testing.T) {
	var gotMode labels.Mode
	sys := &mockSystem{
		classifyFn: func(_ context.Context, _ []byte, mode labels.Mode) (*jobs.Classification, error) {
			gotMode = mode
			groups := []labels.Group{{Key: "Delhivery", LabelCount: 2, Pages: []int{0, 1}}}
			return &jobs.Classification{TotalPages: 2, Groups: groups, PageMapping: labels.PageMapping(groups)}, nil
		},
	}

	rec := httptest.NewRecorder()
	setupMux(sys).ServeHTTP(rec, upload(t, "/labels/classify", "a.pdf", []byte("x"), map[string]string{"sort_by": "COURIER"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotMode != labels.ModeCourier {
		t.Errorf("mode = %s, want COURIER", gotMode)
	}

	var result jobs.Classification
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.TotalPages != 2 || len(result.Groups) != 1 || result.Groups[0].Key != "Delhivery" {
		t.Errorf("result = %+v", result)
	}
}

func TestHandlerCrop(t *testing.T) {
	sys := &mockSystem{
		cropFn: func(_ context.Context, data []byte) ([]byte, error) {
			return append([]byte("cropped:"), data...), nil
		},
	}

	rec := httptest.NewRecorder()
	setupMux(sys).ServeHTTP(rec, upload(t, "/labels/crop", "march.pdf", []byte("x"), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q, want application/pdf", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, "attachment") || !strings.Contains(cd, "march_cropped.pdf") {
		t.Errorf("disposition = %q", cd)
	}
	if rec.Body.String() != "cropped:x" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestHandlerList(t *testing.T) {
	var (
		captured jobs.Filters
		page     pagination.PageRequest
	)
	sys := &mockSystem{
		listFn: func(_ context.Context, p pagination.PageRequest, f jobs.Filters) (*pagination.PageResult[jobs.Job], error) {
			captured, page = f, p
			result := pagination.NewPageResult([]jobs.Job{*sampleJob()}, 1, p.Page, p.PageSize)
			return &result, nil
		},
	}

	rec := httptest.NewRecorder()
	setupMux(sys).ServeHTTP(rec, httptest.NewRequest("GET", "/jobs?sort_by=PRODUCT&filename=bulk&page=2&page_size=500", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if captured.SortBy == nil || *captured.SortBy != "PRODUCT" {
		t.Errorf("sort_by filter = %v, want PRODUCT", captured.SortBy)
	}
	if captured.Filename == nil || *captured.Filename != "bulk" {
		t.Errorf("filename filter = %v, want bulk", captured.Filename)
	}
	if page.Page != 2 || page.PageSize != 100 {
		t.Errorf("page = %+v, want page 2 size 100", page)
	}

	var result pagination.PageResult[jobs.Job]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Data) != 1 || len(result.Data[0].Groups) != 2 {
		t.Errorf("data = %+v", result.Data)
	}
}

func TestHandlerFindAndDelete(t *testing.T) {
	job := sampleJob()
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*jobs.Job, error) {
			if id != job.ID {
				return nil, jobs.ErrNotFound
			}
			return job, nil
		},
		deleteFn: func(_ context.Context, id uuid.UUID) error {
			if id != job.ID {
				return jobs.ErrNotFound
			}
			return nil
		},
	}
	mux := setupMux(sys)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/jobs/" + job.ID.String(), http.StatusOK},
		{"GET", "/jobs/" + uuid.NewString(), http.StatusNotFound},
		{"GET", "/jobs/not-a-uuid", http.StatusBadRequest},
		{"DELETE", "/jobs/" + job.ID.String(), http.StatusNoContent},
		{"DELETE", "/jobs/" + uuid.NewString(), http.StatusNotFound},
		{"DELETE", "/jobs/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerDownload(t *testing.T) {
	job := sampleJob()
	var openedKey string
	sys := &mockSystem{
		findFn: func(_ context.Context, _ uuid.UUID) (*jobs.Job, error) { return job, nil },
		openFn: func(_ context.Context, key string) (io.ReadCloser, error) {
			openedKey = key
			return io.NopCloser(strings.NewReader("sorted-pdf")), nil
		},
	}
	mux := setupMux(sys)
	base := "/jobs/" + job.ID.String() + "/download"

	t.Run("inline", func(t *testing.T) {
		rec := httptest.NewRecorder()
		job.SizeBytes = int64(len("sorted-pdf"))
		mux.ServeHTTP(rec, httptest.NewRequest("GET", base+"?mode=inline", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if openedKey != job.OutputKey {
			t.Errorf("opened %q, want %q", openedKey, job.OutputKey)
		}
		cd := rec.Header().Get("Content-Disposition")
		if !strings.HasPrefix(cd, "inline") || !strings.Contains(cd, "bulk_sorted.pdf") {
			t.Errorf("disposition = %q", cd)
		}
		if rec.Body.String() != "sorted-pdf" {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("attachment by default", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", base, nil))

		if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment") {
			t.Errorf("disposition = %q, want attachment", cd)
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", base+"?mode=print", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("missing blob", func(t *testing.T) {
		sys.openFn = func(_ context.Context, _ string) (io.ReadCloser, error) {
			return nil, storage.ErrNotFound
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", base, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandlerExport(t *testing.T) {
	job := sampleJob()
	var captured jobs.ExportCommand
	sys := &mockSystem{
		exportFn: func(_ context.Context, _ uuid.UUID, cmd jobs.ExportCommand) (*jobs.Document, error) {
			captured = cmd
			if cmd.Key == "missing" {
				return nil, jobs.ErrUnknownKey
			}
			if len(cmd.Pages) > 0 && cmd.Pages[0] >= job.TotalPages {
				return nil, labels.ErrInvalidInput
			}
			return &jobs.Document{Name: "abc_SKU-001-labels.pdf", Data: []byte("subset")}, nil
		},
	}
	mux := setupMux(sys)
	path := "/jobs/" + job.ID.String() + "/export"

	t.Run("exports group", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", path, strings.NewReader(`{"key":"SKU-001","pages":[0,2]}`)))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
		}
		if captured.Key != "SKU-001" || len(captured.Pages) != 2 {
			t.Errorf("command = %+v", captured)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "abc_SKU-001-labels.pdf") {
			t.Errorf("disposition = %q", cd)
		}
		if rec.Body.String() != "subset" {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{"key":`, http.StatusBadRequest},
		{"unknown key", `{"key":"missing"}`, http.StatusNotFound},
		{"out of range", `{"key":"SKU-001","pages":[9]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("POST", path, strings.NewReader(tt.body)))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerReport(t *testing.T) {
	job := sampleJob()
	sys := &mockSystem{
		reportFn: func(_ context.Context, id uuid.UUID, w io.Writer) (*jobs.Job, error) {
			if id != job.ID {
				return nil, jobs.ErrNotFound
			}
			return job, jobs.WriteReport(w, job)
		},
	}
	mux := setupMux(sys)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/jobs/"+job.ID.String()+"/report", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "bulk_groups.xlsx") {
		t.Errorf("disposition = %q", cd)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty report body")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/jobs/"+uuid.NewString()+"/report", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
