package extract

import "regexp"

var (
	reTitleVocabulary = regexp.MustCompile(`(?i)\b(?:` +
		`(?:software|web|front[- ]?end|back[- ]?end|full[- ]?stack|mobile) developer|` +
		`data (?:scientist|analyst|engineer)|` +
		`(?:devops|qa) engineer|` +
		`ui ?/ ?ux designer|` +
		`(?:product|project) manager|` +
		`(?:business|system) analyst|` +
		`network engineer|security analyst|cloud engineer|` +
		`(?:ml|machine learning) engineer` +
		`)\b`)

	reTitleGeneric = regexp.MustCompile(`(?i)\b(?:(?:senior|junior|lead|staff|principal|head of)\s+)?` +
		`(?:programmer|developer|engineer|designer|analyst|architect|manager|administrator|specialist|coordinator|consultant|technician|officer)\b`)

	reTitleIndonesian = regexp.MustCompile(`(?i)\b(?:staff it|it support|admin it|teknisi|operator|staf|karyawan)\b`)

	reTitleLabeled = regexp.MustCompile(`(?i)(?:posisi|position|lowongan|dibutuhkan|hiring|vacancy)[:\s]+(.+)`)
)

// TitleRules is the primary title chain. Every rule yields the whole line.
var TitleRules = Chain{
	wholeLine("title.vocabulary", reTitleVocabulary),
	wholeLine("title.generic", reTitleGeneric),
	wholeLine("title.indonesian", reTitleIndonesian),
}

// TitleLabelRules runs only when TitleRules found nothing.
var TitleLabelRules = Chain{
	captured("title.labeled", reTitleLabeled, 1),
}
