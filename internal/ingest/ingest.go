// Package ingest imports job-posting screenshots from disk: each file is
// recognized, run through the extractor into a fresh draft and submitted.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fedtech/jobtracker/internal/assist"
	"github.com/fedtech/jobtracker/internal/common"
	"github.com/fedtech/jobtracker/internal/jobs"
)

// FileTextExtractor is the OCR stage for files already on disk.
type FileTextExtractor interface {
	ExtractFileText(ctx context.Context, path string) (assist.TextResult, error)
}

// FileResult is the per-file import outcome.
type FileResult struct {
	Path         string
	JobID        string
	Title        string
	Company      string
	HashHex      string
	Deduplicated bool
	Err          string
}

// Importer turns one screenshot into one job.
type Importer struct {
	text   FileTextExtractor
	fields assist.FieldExtractor
	store  assist.Submitter
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]string // content hash -> job id
}

func NewImporter(text FileTextExtractor, fields assist.FieldExtractor, store assist.Submitter, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	if fields == nil {
		fields = assist.NewRuleExtractor(logger)
	}
	return &Importer{
		text:   text,
		fields: fields,
		store:  store,
		logger: logger,
		now:    time.Now,
		seen:   map[string]string{},
	}
}

// ProcessFile satisfies async.Processor.
func (i *Importer) ProcessFile(ctx context.Context, path string) error {
	_, err := i.ImportFile(ctx, path)
	return err
}

// ImportFile recognizes path and submits the extracted draft. A file whose
// content was already imported by this Importer is skipped.
func (i *Importer) ImportFile(ctx context.Context, path string) (FileResult, error) {
	out := FileResult{Path: path}
	if !AllowedExt(filepath.Ext(path)) {
		err := fmt.Errorf("unsupported extension %q: %w", filepath.Ext(path), common.ErrInvalidInput)
		out.Err = err.Error()
		return out, err
	}

	hashHex, err := hashFile(path)
	if err != nil {
		out.Err = err.Error()
		return out, err
	}
	out.HashHex = hashHex

	i.mu.Lock()
	if id, ok := i.seen[hashHex]; ok {
		i.mu.Unlock()
		out.JobID = id
		out.Deduplicated = true
		i.logger.Info("import.dedup", "path", path, "job_id", id)
		return out, nil
	}
	i.mu.Unlock()

	res, err := i.text.ExtractFileText(ctx, path)
	if err != nil {
		err = common.NewAppError(common.CodeOCRFailed, assist.MsgOCRFailed, errors.Join(assist.ErrOCRFailed, err))
		out.Err = err.Error()
		return out, err
	}
	if strings.TrimSpace(res.Text) == "" {
		err = common.NewAppError(common.CodeNoText, assist.MsgNoText, assist.ErrNoText)
		out.Err = err.Error()
		return out, err
	}

	rec := i.fields.ExtractFields(ctx, res.Text)
	draft := jobs.NewDraft(i.now()).Merge(rec)
	job, err := i.store.Submit(ctx, draft, "")
	if err != nil {
		out.Err = err.Error()
		out.Title, out.Company = draft.Title, draft.Company
		return out, err
	}

	i.mu.Lock()
	i.seen[hashHex] = job.ID
	i.mu.Unlock()

	out.JobID, out.Title, out.Company = job.ID, job.Title, job.Company
	i.logger.Info("import.submitted", "path", path, "job_id", job.ID, "company", job.Company, "confidence", res.Confidence)
	return out, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
