package assist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fedtech/jobtracker/internal/common"
	"github.com/fedtech/jobtracker/internal/extract"
	"github.com/fedtech/jobtracker/internal/jobs"
	"github.com/fedtech/jobtracker/internal/ocr"
)

// User-facing failure messages.
const (
	MsgNoText    = "No text found in image"
	MsgOCRFailed = "Failed to extract text from image"
)

var (
	// ErrSuperseded is returned to an upload whose result arrived after a newer
	// upload started or the form was cancelled. The draft is left untouched.
	ErrSuperseded = errors.New("assist: superseded by a newer upload")
	ErrNoText     = errors.New("assist: no text in image")
	ErrOCRFailed  = errors.New("assist: recognition failed")
)

// Submitter is the part of jobs.Store the session needs.
type Submitter interface {
	Submit(ctx context.Context, d jobs.Draft, editingID string) (jobs.Job, error)
}

// Outcome describes an upload that was merged into the draft.
type Outcome struct {
	Record extract.Record
	OCR    TextResult
	Draft  jobs.Draft
}

// Session is one entry form with assisted fill. Every upload bumps a generation
// counter; only the upload holding the current generation may write back.
type Session struct {
	mu        sync.Mutex
	draft     jobs.Draft
	editingID string
	gen       uint64
	cancel    context.CancelFunc

	text   TextExtractor
	fields FieldExtractor
	logger *slog.Logger
	now    func() time.Time
}

func NewSession(text TextExtractor, fields FieldExtractor, draft jobs.Draft, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if fields == nil {
		fields = NewRuleExtractor(logger)
	}
	return &Session{draft: draft, text: text, fields: fields, logger: logger, now: time.Now}
}

// EditSession opens the form on an existing job.
func EditSession(text TextExtractor, fields FieldExtractor, job jobs.Job, logger *slog.Logger) *Session {
	s := NewSession(text, fields, jobs.DraftFromJob(job), logger)
	s.editingID = job.ID
	return s
}

func (s *Session) Draft() jobs.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *Session) EditingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingID
}

// Edit applies a user change to the draft.
func (s *Session) Edit(fn func(d *jobs.Draft)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.draft)
}

// Upload recognizes the image and merges the extracted fields into the draft.
// Starting an upload cancels any upload still in flight.
func (s *Session) Upload(ctx context.Context, dataURI string, progress ocr.ProgressFunc) (Outcome, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	log := s.logger.With("generation", gen)
	log.Debug("assist.upload.start")

	res, err := s.text.ExtractText(ctx, dataURI, s.guardProgress(gen, progress))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		log.Info("assist.superseded", "current", s.gen)
		return Outcome{}, ErrSuperseded
	}
	s.cancel = nil

	if err != nil {
		log.Warn("assist.ocr.failed", "error", err)
		return Outcome{}, common.NewAppError(common.CodeOCRFailed, MsgOCRFailed, fmt.Errorf("%w: %w", ErrOCRFailed, err))
	}
	if strings.TrimSpace(res.Text) == "" {
		log.Info("assist.ocr.empty")
		return Outcome{OCR: res}, common.NewAppError(common.CodeNoText, MsgNoText, ErrNoText)
	}

	rec := s.fields.ExtractFields(ctx, res.Text)
	s.draft = s.draft.Merge(rec)
	log.Info("assist.merged", "found", rec.Found(), "confidence", res.Confidence)
	return Outcome{Record: rec, OCR: res, Draft: s.draft}, nil
}

// guardProgress drops progress from uploads that are no longer current.
func (s *Session) guardProgress(gen uint64, fn ocr.ProgressFunc) ocr.ProgressFunc {
	if fn == nil {
		return nil
	}
	return func(status string, fraction float64) {
		s.mu.Lock()
		current := s.gen == gen
		s.mu.Unlock()
		if current {
			fn(status, fraction)
		}
	}
}

// Cancel abandons the form: in-flight uploads are invalidated and the draft
// is reset to draft.
func (s *Session) Cancel(draft jobs.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.draft = draft
	s.editingID = ""
	s.logger.Debug("assist.cancelled", "generation", s.gen)
}

// Submit hands the draft to the store and, on success, clears the form: the
// draft goes back to NewDraft and the session stops editing. In-flight uploads
// are invalidated so a late result cannot alter what was saved. A failed
// submission leaves the form as it was.
func (s *Session) Submit(ctx context.Context, store Submitter) (jobs.Job, error) {
	s.mu.Lock()
	draft, editingID := s.draft, s.editingID
	s.mu.Unlock()

	job, err := store.Submit(ctx, draft, editingID)
	if err != nil {
		return jobs.Job{}, err
	}

	s.mu.Lock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.draft = jobs.NewDraft(s.now())
	s.editingID = ""
	s.mu.Unlock()
	s.logger.Debug("assist.submitted", "job_id", job.ID, "edited", editingID != "")
	return job, nil
}
