package export

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fedtech/jobtracker/constants"
	"github.com/fedtech/jobtracker/internal/jobs"
)

type staticLister []jobs.Job

func (l staticLister) List(filter string) ([]jobs.Job, error) {
	if filter == "" || filter == constants.FilterAll {
		return l, nil
	}
	st, err := jobs.ParseStatus(filter)
	if err != nil {
		return nil, err
	}
	var out []jobs.Job
	for _, j := range l {
		if j.Status == st {
			out = append(out, j)
		}
	}
	return out, nil
}

func openBook(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestExportJobsXLSX(t *testing.T) {
	svc := NewService(staticLister(jobs.SeedJobs()), nil)
	b, err := svc.ExportJobsXLSX(context.Background(), constants.FilterAll, Window{})
	require.NoError(t, err)

	f := openBook(t, b)
	assert.Equal(t, []string{"Applications", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Applications")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Date Applied", "Title", "Company", "Location", "Salary", "Status", "Notes"}, rows[0])
	assert.Equal(t, []string{"Feb 5, 2026", "Senior Frontend Developer", "TechCorp", "Jakarta, Indonesia",
		"$80,000 - $120,000", "Interview", "Second round interview scheduled"}, rows[1])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Offer", "1"}, summary[3])
	assert.Equal(t, []string{"Total", "3"}, summary[6])
}

func TestExportFilterAndWindow(t *testing.T) {
	svc := NewService(staticLister(jobs.SeedJobs()), nil)

	b, err := svc.ExportJobsXLSX(context.Background(), "offer", Window{})
	require.NoError(t, err)
	rows, err := openBook(t, b).GetRows("Applications")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "React Developer", rows[1][1])

	from := time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC)
	b, err = svc.ExportJobsXLSX(context.Background(), constants.FilterAll, Window{From: &from})
	require.NoError(t, err)
	rows, err = openBook(t, b).GetRows("Applications")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = svc.ExportJobsXLSX(context.Background(), "hired", Window{})
	assert.Error(t, err)
}

func TestTruncateNotes(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	got := truncate(strings.Repeat("é", 12), 10)
	assert.Equal(t, 10, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
}
