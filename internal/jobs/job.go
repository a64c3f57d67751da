// Package jobs implements the sort-job domain. A job records one sort run:
// the uploaded source document, the sorted output, and the resulting groups,
// which later drive filtered exports and group reports.
package jobs

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/labelsort/pkg/labels"
)

// Job is a persisted sort run with its blob references.
type Job struct {
	ID            uuid.UUID      `json:"id"`
	Filename      string         `json:"filename"`
	SortBy        labels.Mode    `json:"sort_by"`
	RemoveInvoice bool           `json:"remove_invoice"`
	TotalPages    int            `json:"total_pages"`
	Fallback      bool           `json:"fallback"`
	Groups        []labels.Group `json:"groups"`
	SourceKey     string         `json:"source_key"`
	OutputKey     string         `json:"output_key"`
	SizeBytes     int64          `json:"size_bytes"`
	CreatedAt     time.Time      `json:"created_at"`
}

// PageMapping returns the key -> pages view of the job's groups.
func (j *Job) PageMapping() map[string][]int {
	return labels.PageMapping(j.Groups)
}

// OutputName returns the download name of the sorted document.
func (j *Job) OutputName() string {
	base := strings.TrimSuffix(filepath.Base(j.Filename), filepath.Ext(j.Filename))
	if base == "" || base == "." {
		base = "labels"
	}
	return base + "_sorted.pdf"
}

// CreateCommand carries an uploaded document and its sort options.
type CreateCommand struct {
	Data     []byte
	Filename string
	Mode     labels.Mode
	Strip    bool
}

// ExportCommand selects the pages of one group for a standalone document.
// Pages defaults to the job's recorded pages for Key.
type ExportCommand struct {
	Key   string `json:"key"`
	Pages []int  `json:"pages,omitempty"`
}

// Classification is the grouping of an uploaded document without a stored job.
type Classification struct {
	TotalPages  int              `json:"total_pages"`
	Groups      []labels.Group   `json:"groups"`
	PageMapping map[string][]int `json:"page_mapping"`
}

// Document is a generated PDF and the name it should be served under.
type Document struct {
	Name string
	Data []byte
}
