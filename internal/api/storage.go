package api

import (
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/JaimeStill/labelsort/pkg/handlers"
	"github.com/JaimeStill/labelsort/pkg/routes"
	"github.com/JaimeStill/labelsort/pkg/storage"
)

type storageHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newStorageHandler(store storage.System, logger *slog.Logger) *storageHandler {
	return &storageHandler{
		store:  store,
		logger: logger.With("handler", "storage"),
	}
}

func (h *storageHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/storage",
		Routes: []routes.Route{
			{Method: "HEAD", Pattern: "/{key...}", Handler: h.exists},
			{Method: "GET", Pattern: "/{key...}", Handler: h.download},
		},
	}
}

func (h *storageHandler) exists(w http.ResponseWriter, r *http.Request) {
	ok, err := h.store.Exists(r.Context(), r.PathValue("key"))
	if err != nil {
		w.WriteHeader(storage.MapHTTPStatus(err))
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *storageHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	body, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/pdf")
	handlers.SetDisposition(w, handlers.Attachment, path.Base(key))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("blob stream interrupted", "key", key, "error", err)
	}
}
