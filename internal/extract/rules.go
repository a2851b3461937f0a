package extract

import (
	"regexp"
	"strings"
)

// Rule is one step of an ordered extraction chain. Match returns the value the
// rule produces for a line, if any.
type Rule struct {
	Name  string
	Match func(line string) (string, bool)
}

// Chain is evaluated line by line; for each line the rules are tried in order
// and the first hit ends the scan.
type Chain []Rule

// Names lists the rule names in evaluation order.
func (c Chain) Names() []string {
	out := make([]string, len(c))
	for i, r := range c {
		out[i] = r.Name
	}
	return out
}

// Scan walks lines in order and returns the first value produced by any rule.
// Lines for which skip returns true are not considered.
func (c Chain) Scan(lines []string, skip func(string) bool) (Match, bool) {
	for i, ln := range lines {
		if skip != nil && skip(ln) {
			continue
		}
		for _, r := range c {
			if v, ok := r.Match(ln); ok {
				return Match{Rule: r.Name, Line: i, Value: v}, true
			}
		}
	}
	return Match{}, false
}

// Match records which rule produced a field value and from which line.
type Match struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Line  int    `json:"line"`
	Value string `json:"value"`
}

// wholeLine yields the entire line when re matches anywhere in it.
func wholeLine(name string, re *regexp.Regexp) Rule {
	return Rule{Name: name, Match: func(line string) (string, bool) {
		if re.MatchString(line) {
			return line, true
		}
		return "", false
	}}
}

// captured yields the trimmed submatch group of re.
func captured(name string, re *regexp.Regexp, group int) Rule {
	return Rule{Name: name, Match: func(line string) (string, bool) {
		m := re.FindStringSubmatch(line)
		if m == nil || len(m) <= group {
			return "", false
		}
		return strings.TrimSpace(m[group]), true
	}}
}

// substring yields the text matched by re, not the whole line.
func substring(name string, re *regexp.Regexp) Rule {
	return Rule{Name: name, Match: func(line string) (string, bool) {
		m := re.FindString(line)
		if m == "" {
			return "", false
		}
		return m, true
	}}
}
