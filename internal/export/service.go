package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/fedtech/jobtracker/constants"
	"github.com/fedtech/jobtracker/internal/jobs"
)

const (
	sheetApplications = "Applications"
	sheetSummary      = "Summary"
	notesMaxChars     = 500
)

// JobLister is the read side of jobs.Store.
type JobLister interface {
	List(filter string) ([]jobs.Job, error)
}

// Service produces XLSX workbooks of the tracked applications.
type Service struct {
	jobs   JobLister
	logger *slog.Logger
}

func NewService(lister JobLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: lister, logger: logger}
}

// Window limits the export to applications dated within [From, To], both inclusive.
// Either bound may be nil. Undated applications are only kept when both are nil.
type Window struct {
	From *time.Time
	To   *time.Time
}

func (w Window) contains(date string) bool {
	if w.From == nil && w.To == nil {
		return true
	}
	d, err := time.Parse(jobs.DateLayout, date)
	if err != nil {
		return false
	}
	if w.From != nil && d.Before(dateOnly(*w.From)) {
		return false
	}
	if w.To != nil && d.After(dateOnly(*w.To)) {
		return false
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ExportJobsXLSX returns the workbook bytes for jobs matching filter ("all" or a status).
func (s *Service) ExportJobsXLSX(ctx context.Context, filter string, window Window) ([]byte, error) {
	start := time.Now()

	all, err := s.jobs.List(filter)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	rows := make([]jobs.Job, 0, len(all))
	for _, j := range all {
		if window.contains(j.DateApplied) {
			rows = append(rows, j)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetApplications); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	if err := writeApplications(f, rows); err != nil {
		return nil, err
	}
	if err := writeSummary(f, rows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"filter", filter,
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeApplications(f *excelize.File, rows []jobs.Job) error {
	headers := []any{"Date Applied", "Title", "Company", "Location", "Salary", "Status", "Notes"}
	if err := f.SetSheetRow(sheetApplications, "A1", &headers); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetApplications, "A1", "G1", bold); err != nil {
		return err
	}

	for i, j := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{
			jobs.FormatDate(j.DateApplied),
			j.Title,
			j.Company,
			j.Location,
			j.Salary,
			j.Status.Label(),
			truncate(j.Notes, notesMaxChars),
		}
		if err := f.SetSheetRow(sheetApplications, cell, &values); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(sheetApplications, "A", "A", 14)
	_ = f.SetColWidth(sheetApplications, "B", "C", 30)
	_ = f.SetColWidth(sheetApplications, "D", "E", 24)
	_ = f.SetColWidth(sheetApplications, "F", "F", 12)
	_ = f.SetColWidth(sheetApplications, "G", "G", 60)
	return f.SetPanes(sheetApplications, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummary(f *excelize.File, rows []jobs.Job) error {
	counts := map[constants.Status]int{}
	for _, j := range rows {
		counts[j.Status]++
	}
	header := []any{"Status", "Count"}
	if err := f.SetSheetRow(sheetSummary, "A1", &header); err != nil {
		return err
	}
	r := 2
	for _, st := range constants.Statuses() {
		cell, _ := excelize.CoordinatesToCellName(1, r)
		values := []any{st.Label(), counts[st]}
		if err := f.SetSheetRow(sheetSummary, cell, &values); err != nil {
			return err
		}
		r++
	}
	cell, _ := excelize.CoordinatesToCellName(1, r)
	total := []any{"Total", len(rows)}
	return f.SetSheetRow(sheetSummary, cell, &total)
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
