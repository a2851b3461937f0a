package assist

import (
	"context"
	"log/slog"

	"github.com/fedtech/jobtracker/internal/ocr"
)

type OCRAdapter struct {
	e      *ocr.Extractor
	logger *slog.Logger
}

func NewOCRAdapter(e *ocr.Extractor, logger *slog.Logger) *OCRAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRAdapter{e: e, logger: logger}
}

func (a *OCRAdapter) ExtractText(ctx context.Context, dataURI string, progress ocr.ProgressFunc) (TextResult, error) {
	r, err := a.e.Recognize(ctx, dataURI, progress)
	return toTextResult(r), err
}

// ExtractFileText is used by batch import, which reads screenshots from disk.
func (a *OCRAdapter) ExtractFileText(ctx context.Context, path string) (TextResult, error) {
	r, err := a.e.RecognizeFile(ctx, path, nil)
	if err != nil {
		a.logger.Warn("ocr.file.failed", "path", path, "error", err)
	}
	return toTextResult(r), err
}

func toTextResult(r ocr.Result) TextResult {
	return TextResult{
		Text:       r.Text,
		Language:   r.Language,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
		Confidence: r.Confidence,
	}
}
