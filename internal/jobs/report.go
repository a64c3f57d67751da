package jobs

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	groupsSheet = "Groups"
	jobSheet    = "Job"
)

// ReportName returns the download name of a job's group report.
func ReportName(j *Job) string {
	return strings.TrimSuffix(j.OutputName(), "_sorted.pdf") + "_groups.xlsx"
}

// WriteReport renders the job's groups as an XLSX workbook. The Groups
// sheet lists each key in output order with its label count and 1-based
// source page numbers; the Job sheet holds the run's metadata.
func WriteReport(w io.Writer, j *Job) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", groupsSheet); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("report style: %w", err)
	}

	if err := writeGroups(f, j, bold); err != nil {
		return fmt.Errorf("report groups: %w", err)
	}
	if err := writeJob(f, j, bold); err != nil {
		return fmt.Errorf("report job: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("report write: %w", err)
	}
	return nil
}

func writeGroups(f *excelize.File, j *Job, bold int) error {
	if err := f.SetSheetRow(groupsSheet, "A1", &[]any{"Key", "Labels", "Pages"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(groupsSheet, "A1", "C1", bold); err != nil {
		return err
	}

	for i, g := range j.Groups {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(groupsSheet, cell, &[]any{g.Key, g.LabelCount, pageList(g.Pages)}); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(groupsSheet, "A", "A", 32); err != nil {
		return err
	}
	return f.SetColWidth(groupsSheet, "C", "C", 48)
}

func writeJob(f *excelize.File, j *Job, bold int) error {
	if _, err := f.NewSheet(jobSheet); err != nil {
		return err
	}

	rows := [][]any{
		{"ID", j.ID.String()},
		{"Filename", j.Filename},
		{"Sort By", string(j.SortBy)},
		{"Invoice Removed", j.RemoveInvoice},
		{"Total Pages", j.TotalPages},
		{"Groups", len(j.Groups)},
		{"Fallback", j.Fallback},
		{"Created", j.CreatedAt.UTC().Format(time.RFC3339)},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(jobSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetCellStyle(jobSheet, "A1", fmt.Sprintf("A%d", len(rows)), bold); err != nil {
		return err
	}
	return f.SetColWidth(jobSheet, "A", "B", 24)
}

func pageList(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p + 1)
	}
	return strings.Join(parts, ", ")
}
