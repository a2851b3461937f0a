package extract

import "regexp"

const (
	amount   = `\d[\d.,]*`
	rangeSep = `\s*(?:-|–|—|to|s/d|sampai)\s*`
)

var (
	// Rp 8.000.000 - Rp 12.000.000, IDR 10 juta, Rp. 5jt
	reSalaryRupiah = regexp.MustCompile(`(?i)\b(?:rp\.?|idr)\s*` + amount +
		`(?:` + rangeSep + `(?:(?:rp\.?|idr)\s*)?` + amount + `)?` +
		`(?:\s*(?:juta|jt|rb|ribu)\b)?`)

	// Gaji: 7.500.000, Salary $4,000
	reSalaryLabeled = regexp.MustCompile(`(?i)(?:gaji|salary|upah|penghasilan)[:\s]*(?:(?:rp\.?|idr|usd|\$)\s*)?` + amount)

	// $80,000 - $120,000/year, $5,000 per month
	reSalaryUSD = regexp.MustCompile(`(?i)\$\s*` + amount +
		`(?:` + rangeSep + `\$\s*` + amount + `)?` +
		`(?:\s*/\s*[a-z]+|\s+per\s+(?:year|month|bulan|tahun))?`)

	// 8-12 juta, 3,000 - 4,000 USD
	reSalaryBareRange = regexp.MustCompile(`(?i)` + amount + rangeSep + amount + `\s*(?:usd|idr|juta|jt)\b`)
)

// SalaryRules yields the matched substring, never the whole line.
var SalaryRules = Chain{
	substring("salary.rupiah", reSalaryRupiah),
	substring("salary.labeled", reSalaryLabeled),
	substring("salary.usd", reSalaryUSD),
	substring("salary.bare_range", reSalaryBareRange),
}
