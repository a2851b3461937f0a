// Package ocr recognizes text in uploaded images by shelling out to tesseract.
package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fedtech/jobtracker/constants"
	"github.com/fedtech/jobtracker/internal/common"
)

// StatusRecognizing is the status reported with every progress update.
const StatusRecognizing = "recognizing text"

// ProgressFunc receives a non-decreasing fraction in [0,1].
type ProgressFunc func(status string, fraction float64)

type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	HeicConverter string

	EnableTSVConfidence bool
	PSM                 int // e.g., 6 is good for a uniform block of text
	OEM                 int // 1 = LSTM; 0 leaves the default

	ArtifactCacheDir string

	// Timeout bounds each external tool run; 0 leaves only the caller's deadline.
	Timeout time.Duration
}

type Result struct {
	Text       string
	MIME       string
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the exec-based command runner.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	e := &Extractor{cfg: cfg, runner: toolRunner{timeout: cfg.Timeout, logger: logger}, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recognize runs OCR over an image given as a data-URI.
func (e *Extractor) Recognize(ctx context.Context, dataURI string, progress ProgressFunc) (Result, error) {
	report := newReporter(progress)
	report(0)

	mime, data, err := DecodeDataURI(dataURI)
	if err != nil {
		return Result{}, err
	}
	ext := constants.ExtForMIME(mime)
	if ext == "" {
		return Result{MIME: mime}, fmt.Errorf("unsupported image type %q: %w", mime, common.ErrInvalidInput)
	}

	f, err := os.CreateTemp("", "jt-ocr-*."+ext)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = os.Remove(f.Name()) }()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return Result{}, fmt.Errorf("spool image: %w", err)
	}
	if err := f.Close(); err != nil {
		return Result{}, fmt.Errorf("spool image: %w", err)
	}
	report(0.1)

	sum := sha256.Sum256(data)
	return e.recognize(ctx, f.Name(), mime, hex.EncodeToString(sum[:]), report)
}

// RecognizeFile runs OCR over an image on disk; the type comes from its extension.
func (e *Extractor) RecognizeFile(ctx context.Context, path string, progress ProgressFunc) (Result, error) {
	report := newReporter(progress)
	report(0)

	mime := constants.MIMEForExt(filepath.Ext(path))
	if mime == "" {
		return Result{}, fmt.Errorf("unsupported image extension %q: %w", filepath.Ext(path), common.ErrInvalidInput)
	}
	var hashHex string
	if constants.IsHEIC(mime) && e.cfg.ArtifactCacheDir != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Result{}, err
		}
		sum := sha256.Sum256(data)
		hashHex = hex.EncodeToString(sum[:])
	}
	report(0.1)
	return e.recognize(ctx, path, mime, hashHex, report)
}

func (e *Extractor) recognize(ctx context.Context, path, mime, hashHex string, report func(float64)) (Result, error) {
	start := time.Now()
	res := Result{MIME: mime, Language: e.cfg.TesseractLang}
	e.logger.Debug("ocr.start", "mime", mime, "lang", e.cfg.TesseractLang)

	if constants.IsHEIC(mime) {
		out, warns, cleanup, err := convertHEICtoPNG(ctx, e.runner, e.logger, e.cfg.HeicConverter, path, e.cfg.ArtifactCacheDir, hashHex)
		res.Warnings = append(res.Warnings, warns...)
		if err != nil {
			e.logger.Error("heic conversion failed", "error", err)
			return res, err
		}
		if cleanup != nil {
			defer cleanup()
		}
		path = out
	}
	report(0.3)

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.tesseractArgs(path)...)
	if err != nil {
		if len(errb) > 0 {
			res.Warnings = append(res.Warnings, string(errb))
		}
		return res, fmt.Errorf("tesseract: %w", err)
	}
	res.Text = Normalize(string(out))
	report(0.8)

	var ocrConf float32
	if e.cfg.EnableTSVConfidence {
		tsv, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, append(e.tesseractArgs(path), "tsv")...)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("tsv confidence: %v %s", err, errb))
		} else {
			ocrConf = meanTSVConfidence(string(tsv))
		}
	}
	res.Confidence = blendConfidence(ocrConf, heuristicConfidence(res.Text))
	res.Duration = time.Since(start)
	report(1)

	e.logger.Info("ocr.ok",
		"chars", len(res.Text),
		"confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// tesseract <file> stdout -l <lang> [--psm N] [--oem N] [--tessdata-dir D]
func (e *Extractor) tesseractArgs(path string) []string {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}

// newReporter clamps updates so callers only ever see increasing fractions.
func newReporter(fn ProgressFunc) func(float64) {
	var mu sync.Mutex
	last := -1.0
	return func(f float64) {
		if fn == nil {
			return
		}
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
		mu.Lock()
		if f < last {
			f = last
		}
		last = f
		mu.Unlock()
		fn(StatusRecognizing, f)
	}
}
