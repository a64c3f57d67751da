package jobs

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/JaimeStill/labelsort/pkg/labels"
	"github.com/JaimeStill/labelsort/pkg/repository"
)

const columns = `id, filename, sort_by, remove_invoice, total_pages, fallback, groups,
	source_key, output_key, size_bytes, created_at`

// Filters contains optional criteria for job queries. Nil fields are ignored.
// SortBy matches exactly; Filename is a case-insensitive contains match.
type Filters struct {
	SortBy   *string `json:"sort_by,omitempty"`
	Filename *string `json:"filename,omitempty"`
}

// Where renders the filters and an optional search term as a WHERE clause
// with numbered placeholders. It returns an empty clause when nothing applies.
func (f Filters) Where(search *string) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(format string, v any) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(format, len(args)))
	}

	if f.SortBy != nil && *f.SortBy != "" {
		add("sort_by = $%d", strings.ToUpper(*f.SortBy))
	}
	if f.Filename != nil && *f.Filename != "" {
		add("filename ILIKE $%d", "%"+*f.Filename+"%")
	}
	if search != nil && *search != "" {
		// search also matches group keys inside the groups document
		pattern := "%" + *search + "%"
		args = append(args, pattern)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(filename ILIKE $%d OR groups::text ILIKE $%d)", n, n))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("sort_by"); s != "" {
		f.SortBy = &s
	}
	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	return f
}

func scanJob(s repository.Scanner) (Job, error) {
	var (
		j      Job
		mode   string
		groups []byte
	)
	err := s.Scan(
		&j.ID,
		&j.Filename,
		&mode,
		&j.RemoveInvoice,
		&j.TotalPages,
		&j.Fallback,
		&groups,
		&j.SourceKey,
		&j.OutputKey,
		&j.SizeBytes,
		&j.CreatedAt,
	)
	if err != nil {
		return j, err
	}

	j.SortBy = labels.Mode(mode)
	if err := json.Unmarshal(groups, &j.Groups); err != nil {
		return j, fmt.Errorf("decode groups: %w", err)
	}
	return j, nil
}
