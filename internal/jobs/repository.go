package jobs

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/JaimeStill/labelsort/pkg/labels"
	"github.com/JaimeStill/labelsort/pkg/pagination"
	"github.com/JaimeStill/labelsort/pkg/repository"
	"github.com/JaimeStill/labelsort/pkg/storage"
)

const pdfContentType = "application/pdf"

type repo struct {
	db         *sql.DB
	storage    storage.System
	sorter     *labels.Sorter
	slots      *semaphore.Weighted
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a job repository implementing the System interface. At most
// maxConcurrent pipeline runs (sort, classify, crop, export) execute at once.
func New(
	db *sql.DB,
	store storage.System,
	sorter *labels.Sorter,
	logger *slog.Logger,
	pagination pagination.Config,
	maxConcurrent int,
) System {
	return &repo{
		db:         db,
		storage:    store,
		sorter:     sorter,
		slots:      semaphore.NewWeighted(int64(max(maxConcurrent, 1))),
		logger:     logger.With("system", "jobs"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Job, error) {
	release, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	res, err := r.sorter.Sort(cmd.Data, cmd.Mode, cmd.Strip)
	release()
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	name := sanitizeFilename(cmd.Filename)
	sourceKey := buildStorageKey(id, "source", name)
	outputKey := buildStorageKey(id, "sorted", name)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.storage.Upload(gctx, sourceKey, bytes.NewReader(cmd.Data), pdfContentType)
	})
	g.Go(func() error {
		return r.storage.Upload(gctx, outputKey, bytes.NewReader(res.Output), pdfContentType)
	})
	if err := g.Wait(); err != nil {
		r.discard(ctx, sourceKey, outputKey)
		return nil, fmt.Errorf("upload job blobs: %w", err)
	}

	groups, err := json.Marshal(res.Groups)
	if err != nil {
		r.discard(ctx, sourceKey, outputKey)
		return nil, fmt.Errorf("encode groups: %w", err)
	}

	q := `
		INSERT INTO jobs(id, filename, sort_by, remove_invoice, total_pages, fallback, groups, source_key, output_key, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + columns

	insertArgs := []any{
		id,
		cmd.Filename,
		string(cmd.Mode),
		cmd.Strip,
		res.TotalPages,
		res.Fallback,
		groups,
		sourceKey,
		outputKey,
		int64(len(res.Output)),
	}

	j, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Job, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanJob)
	})
	if err != nil {
		r.discard(ctx, sourceKey, outputKey)
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"job created",
		"id", j.ID,
		"filename", j.Filename,
		"sort_by", j.SortBy,
		"groups", len(j.Groups),
		"fallback", j.Fallback,
	)
	return &j, nil
}

func (r *repo) Classify(ctx context.Context, data []byte, mode labels.Mode) (*Classification, error) {
	release, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	groups, err := r.sorter.Classify(data, mode)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, g := range groups {
		total += g.LabelCount
	}

	return &Classification{
		TotalPages:  total,
		Groups:      groups,
		PageMapping: labels.PageMapping(groups),
	}, nil
}

func (r *repo) Crop(ctx context.Context, data []byte) ([]byte, error) {
	release, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return r.sorter.Crop(data)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Job], error) {
	page.Normalize(r.pagination)

	where, args := filters.Where(page.Search)

	total, err := repository.Count(ctx, r.db, "SELECT COUNT(*) FROM jobs"+where, args...)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	q := fmt.Sprintf(
		"SELECT %s FROM jobs%s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		columns, where, page.PageSize, page.Offset(),
	)
	jobs, err := repository.QueryMany(ctx, r.db, q, args, scanJob)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	result := pagination.NewPageResult(jobs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Job, error) {
	q := "SELECT " + columns + " FROM jobs WHERE id = $1"

	j, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanJob)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &j, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	j, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM jobs WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.discard(ctx, j.SourceKey, j.OutputKey)

	r.logger.Info("job deleted", "id", id)
	return nil
}

func (r *repo) Export(ctx context.Context, id uuid.UUID, cmd ExportCommand) (*Document, error) {
	key := strings.TrimSpace(cmd.Key)
	if key == "" {
		return nil, fmt.Errorf("%w: group key required", labels.ErrInvalidInput)
	}

	j, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	pages := cmd.Pages
	if len(pages) == 0 {
		g, ok := labels.Find(j.Groups, key)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
		}
		pages = g.Pages
	}

	data, err := r.read(ctx, j.SourceKey)
	if err != nil {
		return nil, err
	}

	release, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out, err := r.sorter.Export(data, pages)
	if err != nil {
		return nil, err
	}

	r.logger.Info("job exported", "id", id, "key", key, "pages", len(pages))
	return &Document{Name: labels.ExportName(key), Data: out}, nil
}

func (r *repo) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return r.storage.Download(ctx, key)
}

func (r *repo) Report(ctx context.Context, id uuid.UUID, w io.Writer) (*Job, error) {
	j, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := WriteReport(w, j); err != nil {
		return nil, err
	}
	return j, nil
}

func (r *repo) acquire(ctx context.Context) (func(), error) {
	if err := r.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBusy, err)
	}
	return func() { r.slots.Release(1) }, nil
}

func (r *repo) read(ctx context.Context, key string) ([]byte, error) {
	rc, err := r.storage.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// discard removes job blobs, logging failures other than missing blobs.
func (r *repo) discard(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := r.storage.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("blob delete failed", "key", key, "error", err)
		}
	}
}

func buildStorageKey(id uuid.UUID, kind, filename string) string {
	return fmt.Sprintf("jobs/%s/%s/%s", id, kind, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" || name == ".." || name == "/" {
		name = "labels.pdf"
	}
	return url.PathEscape(name)
}
