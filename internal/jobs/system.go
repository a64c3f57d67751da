package jobs

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/JaimeStill/labelsort/pkg/labels"
	"github.com/JaimeStill/labelsort/pkg/pagination"
)

// System defines the public contract for sort-job operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Create sorts an uploaded document and persists the run.
	Create(ctx context.Context, cmd CreateCommand) (*Job, error)
	// Classify groups an uploaded document without storing anything.
	Classify(ctx context.Context, data []byte, mode labels.Mode) (*Classification, error)
	// Crop keeps the label region of every page without reordering.
	Crop(ctx context.Context, data []byte) ([]byte, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Job], error)

	Find(ctx context.Context, id uuid.UUID) (*Job, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Export builds a standalone document from the job's source pages.
	Export(ctx context.Context, id uuid.UUID, cmd ExportCommand) (*Document, error)
	// Open streams a stored blob. The caller must close the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Report writes the job's group summary as an XLSX workbook and returns the job.
	Report(ctx context.Context, id uuid.UUID, w io.Writer) (*Job, error)
}
