package extract

import (
	"regexp"
	"strings"
)

// IndonesianCities are matched as case-insensitive substrings.
var IndonesianCities = []string{
	"jakarta", "surabaya", "bandung", "medan", "semarang", "makassar",
	"palembang", "tangerang", "depok", "bekasi", "bogor", "malang",
	"yogyakarta", "solo", "denpasar", "bali", "batam",
}

var (
	reLocationLabeled = regexp.MustCompile(`(?i)(?:lokasi|location|alamat|address|tempat|kantor|office)[:\s]+(.+)`)
	reWorkMode        = regexp.MustCompile(`(?i)\b(?:remote|hybrid|wfh|work from home|onsite|on-site)\b`)
)

// LocationRules: labeled line, then city names, then work-mode keywords.
var LocationRules = Chain{
	captured("location.labeled", reLocationLabeled, 1),
	{Name: "location.city", Match: matchCity},
	wholeLine("location.work_mode", reWorkMode),
}

// matchCity takes the whole line when it names a known city, unless the line
// looks like a company name ("PT. Bandung Raya").
func matchCity(line string) (string, bool) {
	l := strings.ToLower(line)
	if strings.Contains(l, "pt.") || strings.Contains(l, "cv.") {
		return "", false
	}
	for _, city := range IndonesianCities {
		if strings.Contains(l, city) {
			return line, true
		}
	}
	return "", false
}
