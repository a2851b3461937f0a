package constants

import "strings"

// Status is the pipeline stage of a job application.
type Status string

// Stable values (persisted verbatim in snapshots).
const (
	StatusApplied   Status = "applied"
	StatusInterview Status = "interview"
	StatusOffer     Status = "offer"
	StatusRejected  Status = "rejected"
	StatusPending   Status = "pending"
)

// FilterAll selects every status when listing.
const FilterAll = "all"

var allStatuses = []Status{
	StatusApplied,
	StatusInterview,
	StatusOffer,
	StatusRejected,
	StatusPending,
}

var statusLabels = map[Status]string{
	StatusApplied:   "Applied",
	StatusInterview: "Interview",
	StatusOffer:     "Offer",
	StatusRejected:  "Rejected",
	StatusPending:   "Pending",
}

// Statuses returns every status in display order.
func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allStatuses))
	for i, s := range allStatuses {
		result[i] = string(s)
	}
	return result
}

// Label is the human-readable name shown in lists and exports.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Canonicalize maps free-form input (labels, synonyms, Indonesian terms) to a
// Status. The second return is false when nothing matched.
func Canonicalize(input string) (Status, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]Status{
		"apply":        StatusApplied,
		"submitted":    StatusApplied,
		"melamar":      StatusApplied,
		"interviewing": StatusInterview,
		"wawancara":    StatusInterview,
		"offered":      StatusOffer,
		"diterima":     StatusOffer,
		"declined":     StatusRejected,
		"ditolak":      StatusRejected,
		"waiting":      StatusPending,
		"menunggu":     StatusPending,
	}
	if s, ok := synonyms[normalized]; ok {
		return s, true
	}

	for _, s := range allStatuses {
		if normalized == string(s) {
			return s, true
		}
	}
	return "", false
}
