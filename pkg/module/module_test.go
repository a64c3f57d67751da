package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/labelsort/pkg/module"
)

func TestNewPanicsOnInvalidPrefix(t *testing.T) {
	for _, prefix := range []string{"", "api", "/api/v1"} {
		t.Run(prefix, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%q) did not panic", prefix)
				}
			}()
			module.New(prefix, http.NewServeMux())
		})
	}
}

func TestRouterDispatch(t *testing.T) {
	inner := http.NewServeMux()
	var gotPath string
	inner.HandleFunc("GET /jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	api := module.New("/api", inner)
	var moduleHits int
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			moduleHits++
			next.ServeHTTP(w, r)
		})
	})

	router := module.NewRouter()
	router.Mount(api)
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		path string
		want int
	}{
		{"/api/jobs/7", http.StatusOK},
		{"/api/jobs/7/", http.StatusOK},
		{"/healthz", http.StatusNoContent},
		{"/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if gotPath != "/jobs/7" {
		t.Errorf("inner path = %q, want /jobs/7", gotPath)
	}
	if moduleHits != 2 {
		t.Errorf("module middleware hits = %d, want 2", moduleHits)
	}
}
