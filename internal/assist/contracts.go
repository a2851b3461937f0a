// Package assist turns an uploaded screenshot into pre-filled form fields:
// OCR first, then the rule-based extractor, then a guarded merge into the draft.
package assist

import (
	"context"
	"log/slog"
	"time"

	"github.com/fedtech/jobtracker/internal/extract"
	"github.com/fedtech/jobtracker/internal/ocr"
)

// TextExtractor is Stage 1: image -> text.
type TextExtractor interface {
	ExtractText(ctx context.Context, dataURI string, progress ocr.ProgressFunc) (TextResult, error)
}

type TextResult struct {
	Text       string
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// FieldExtractor is Stage 2: text -> form fields.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, text string) extract.Record
}

// RuleExtractor is the deterministic FieldExtractor backed by package extract.
type RuleExtractor struct {
	logger *slog.Logger
}

func NewRuleExtractor(logger *slog.Logger) *RuleExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleExtractor{logger: logger}
}

func (r *RuleExtractor) ExtractFields(_ context.Context, text string) extract.Record {
	rec, trace := extract.Explain(text)
	for _, m := range trace {
		r.logger.Debug("extract.match", "field", m.Field, "rule", m.Rule, "line", m.Line)
	}
	r.logger.Info("extract.ok", "found", rec.Found(), "rules", len(trace))
	return rec
}
