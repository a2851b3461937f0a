// Package jobs owns the job-application collection: the data model, the form
// draft that assisted fill merges into, and the serialized store that persists
// a full snapshot after every mutation.
package jobs

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/fedtech/jobtracker/constants"
	"github.com/fedtech/jobtracker/internal/common"
	"github.com/fedtech/jobtracker/internal/extract"
)

// DateLayout is the calendar-date format of DateApplied.
const DateLayout = "2006-01-02"

// Status is an alias so callers of this package need not import constants.
type Status = constants.Status

// Job is one tracked application.
type Job struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Salary      string `json:"salary"`
	Status      Status `json:"status"`
	DateApplied string `json:"dateApplied"`
	Notes       string `json:"notes"`
	Logo        string `json:"logo,omitempty"`
}

// ParseStatus accepts only the five stored status values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", common.NewAppError(common.CodeInvalidStatus,
			fmt.Sprintf("unknown status %q (want one of %s)", s, strings.Join(constants.AsStringSlice(), ", ")),
			common.ErrInvalidInput)
	}
	return st, nil
}

// StatusFromInput is ParseStatus for typed input. It also accepts the labels
// and synonyms known to constants.Canonicalize.
func StatusFromInput(s string) (Status, error) {
	if st, ok := constants.Canonicalize(s); ok {
		return st, nil
	}
	return ParseStatus(s)
}

// Draft is the entry form state before submission.
type Draft struct {
	Title       string `json:"title" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Location    string `json:"location"`
	Salary      string `json:"salary"`
	Status      Status `json:"status" validate:"required,oneof=applied interview offer rejected pending"`
	DateApplied string `json:"dateApplied" validate:"omitempty,datetime=2006-01-02"`
	Notes       string `json:"notes"`
	Logo        string `json:"logo,omitempty"`
}

// NewDraft returns the empty form: status applied, dated today.
func NewDraft(now time.Time) Draft {
	return Draft{
		Status:      constants.StatusApplied,
		DateApplied: now.Format(DateLayout),
	}
}

// DraftFromJob loads an existing job into the form for editing.
func DraftFromJob(j Job) Draft {
	return Draft{
		Title:       j.Title,
		Company:     j.Company,
		Location:    j.Location,
		Salary:      j.Salary,
		Status:      j.Status,
		DateApplied: j.DateApplied,
		Notes:       j.Notes,
		Logo:        j.Logo,
	}
}

// Merge overlays an extraction result: a non-empty extracted field wins,
// otherwise the draft keeps its value. Logo is never touched.
func (d Draft) Merge(rec extract.Record) Draft {
	d.Title = pick(rec.Title, d.Title)
	d.Company = pick(rec.Company, d.Company)
	d.Location = pick(rec.Location, d.Location)
	d.Salary = pick(rec.Salary, d.Salary)
	d.Notes = pick(rec.Notes, d.Notes)
	return d
}

func pick(extracted, previous string) string {
	if extracted != "" {
		return extracted
	}
	return previous
}

func (d Draft) toJob(id string) Job {
	return Job{
		ID:          id,
		Title:       d.Title,
		Company:     d.Company,
		Location:    d.Location,
		Salary:      d.Salary,
		Status:      d.Status,
		DateApplied: d.DateApplied,
		Notes:       d.Notes,
		Logo:        d.Logo,
	}
}

// Initials is the two-letter badge shown in place of a missing logo.
func Initials(company string) string {
	var b strings.Builder
	n := 0
	for _, w := range strings.Fields(company) {
		for _, r := range w {
			b.WriteRune(unicode.ToUpper(r))
			break
		}
		n++
		if n == 2 {
			break
		}
	}
	return b.String()
}

// FormatDate renders a stored date as "Feb 5, 2026". Unparseable input is returned as is.
func FormatDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2, 2006")
}
