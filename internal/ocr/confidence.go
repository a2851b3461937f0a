package ocr

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	reRoleWord  = regexp.MustCompile(`\b(developer|engineer|manager|analyst|designer|staff|staf|lowongan|hiring|vacancy|posisi)\b`)
	reMoneyWord = regexp.MustCompile(`\b(rp|idr|usd|gaji|salary)\b|\$`)
	rePlaceWord = regexp.MustCompile(`\b(remote|hybrid|lokasi|location|jakarta|bandung|surabaya|office|kantor)\b`)
)

// heuristicConfidence scores how much the text looks like a job posting.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2)
	if reRoleWord.MatchString(txtL) {
		score += 0.25
	}
	if reMoneyWord.MatchString(txtL) {
		score += 0.15
	}
	if rePlaceWord.MatchString(txtL) {
		score += 0.15
	}
	if utf8.RuneCountInString(txt) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// meanTSVConfidence averages tesseract's per-word conf column (0..100) into 0..1.
func meanTSVConfidence(tsv string) float32 {
	var sum, n float64
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || ln == "" {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		conf := cols[10]
		if conf == "" || conf == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(conf, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float32(sum / n / 100.0)
}

func blendConfidence(ocrConf, heurConf float32) float32 {
	conf := heurConf
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
