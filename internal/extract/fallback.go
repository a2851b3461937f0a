package extract

import (
	"regexp"
	"unicode/utf8"
)

// MaxFallbackLength caps every value produced by a fallback rule.
const MaxFallbackLength = 50

var (
	reCompanyStoplist = regexp.MustCompile(`(?i)^(?:we are|hiring|lowongan|dibutuhkan|kualifikasi|persyaratan|requirements)`)
	reStartsUpper     = regexp.MustCompile(`^[A-Z]`)

	reHiringKeyword = regexp.MustCompile(`(?i)\b(?:hiring|looking for|dibutuhkan|dicari|membutuhkan)\b`)
	reHiringLabeled = regexp.MustCompile(`(?i)(?:hiring|looking for|dibutuhkan|dicari|membutuhkan)[:\s]+(.+)`)

	hiringRemainder = captured("title.fallback_hiring_labeled", reHiringLabeled, 1)
)

// CompanyFallbackRules picks the first plausible proper-noun line.
var CompanyFallbackRules = Chain{
	{Name: "company.fallback_capitalized", Match: matchCapitalizedLine},
}

// TitleFallbackRules picks a line that announces a hiring.
var TitleFallbackRules = Chain{
	{Name: "title.fallback_hiring", Match: matchHiringLine},
}

func matchCapitalizedLine(line string) (string, bool) {
	if utf8.RuneCountInString(line) <= 5 {
		return "", false
	}
	if reCompanyStoplist.MatchString(line) || !reStartsUpper.MatchString(line) {
		return "", false
	}
	return truncate(line, MaxFallbackLength), true
}

func matchHiringLine(line string) (string, bool) {
	if !reHiringKeyword.MatchString(line) {
		return "", false
	}
	v := line
	if m, ok := hiringRemainder.Match(line); ok {
		v = m
	}
	return truncate(v, MaxFallbackLength), true
}

// resolveFallbacks fills fields the primary chains left empty. Rules run in a
// fixed order and never overwrite a value that is already set:
//
//	company (capitalized line), title (hiring line),
//	company (first line), title (second line unless it is the company).
func resolveFallbacks(lines []string, rec *Record, trace *[]Match) {
	if rec.Company == "" {
		if m, ok := CompanyFallbackRules.Scan(lines, nil); ok {
			rec.Company = m.Value
			record(trace, FieldCompany, m)
		}
	}
	if rec.Title == "" {
		if m, ok := TitleFallbackRules.Scan(lines, nil); ok {
			rec.Title = m.Value
			record(trace, FieldTitle, m)
		}
	}
	if rec.Company == "" && len(lines) > 0 {
		rec.Company = truncate(lines[0], MaxFallbackLength)
		record(trace, FieldCompany, Match{Rule: "company.fallback_first_line", Line: 0, Value: rec.Company})
	}
	if rec.Title == "" && len(lines) >= 2 && lines[1] != rec.Company {
		rec.Title = truncate(lines[1], MaxFallbackLength)
		record(trace, FieldTitle, Match{Rule: "title.fallback_second_line", Line: 1, Value: rec.Title})
	}
}
