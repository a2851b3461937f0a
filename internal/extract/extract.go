// Package extract turns OCR text from a job posting screenshot into form
// fields. Extraction is a pure, deterministic function of its input: every
// field is produced by an ordered rule chain where the first hit wins, with
// positional fallbacks for company and title.
package extract

// Field names used in traces.
const (
	FieldTitle    = "title"
	FieldCompany  = "company"
	FieldLocation = "location"
	FieldSalary   = "salary"
	FieldNotes    = "notes"
)

// Record is the set of fields inferred from one OCR pass. Empty strings mean
// nothing was found; they are not errors.
type Record struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Salary   string `json:"salary"`
	Notes    string `json:"notes"`
}

// Fields returns the record as field name -> value, in form order.
func (r Record) Fields() [][2]string {
	return [][2]string{
		{FieldTitle, r.Title},
		{FieldCompany, r.Company},
		{FieldLocation, r.Location},
		{FieldSalary, r.Salary},
		{FieldNotes, r.Notes},
	}
}

// Found counts the non-empty fields other than notes.
func (r Record) Found() int {
	n := 0
	for _, f := range []string{r.Title, r.Company, r.Location, r.Salary} {
		if f != "" {
			n++
		}
	}
	return n
}

// claims carries lines already assigned to a field so later extractors can
// exclude them.
type claims struct {
	company string
}

func (c claims) isCompany(line string) bool {
	return c.company != "" && line == c.company
}

// Extract runs the full pipeline over raw OCR text.
func Extract(text string) Record {
	rec, _ := Explain(text)
	return rec
}

// Explain is Extract plus the list of rules that produced each field, in the
// order they fired.
func Explain(text string) (Record, []Match) {
	lines := SplitLines(text)
	var (
		rec   Record
		trace []Match
	)

	if m, ok := CompanyRules.Scan(lines, nil); ok {
		rec.Company = m.Value
		record(&trace, FieldCompany, m)
	}

	cl := claims{company: rec.Company}
	if m, ok := TitleRules.Scan(lines, cl.isCompany); ok {
		rec.Title = m.Value
		record(&trace, FieldTitle, m)
	} else if m, ok := TitleLabelRules.Scan(lines, nil); ok {
		rec.Title = m.Value
		record(&trace, FieldTitle, m)
	}

	if m, ok := LocationRules.Scan(lines, nil); ok {
		rec.Location = m.Value
		record(&trace, FieldLocation, m)
	}
	if m, ok := SalaryRules.Scan(lines, nil); ok {
		rec.Salary = m.Value
		record(&trace, FieldSalary, m)
	}

	resolveFallbacks(lines, &rec, &trace)

	rec.Notes = ComposeNotes(text)
	record(&trace, FieldNotes, Match{Rule: "notes.excerpt", Line: -1, Value: rec.Notes})
	return rec, trace
}

func record(trace *[]Match, field string, m Match) {
	if trace == nil {
		return
	}
	m.Field = field
	*trace = append(*trace, m)
}
