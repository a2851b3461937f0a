package jobs

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/fedtech/jobtracker/constants"
	"github.com/fedtech/jobtracker/internal/common"
)

// RequiredFieldsMessage is shown when a submission lacks title or company.
const RequiredFieldsMessage = "Please fill in required fields"

// Stats are the dashboard counters.
type Stats struct {
	Total     int `json:"total"`
	Interview int `json:"interview"`
	Offer     int `json:"offer"`
}

// Store is the single owner of the in-memory collection. Every mutation is
// serialized and followed by a full-snapshot save; if the save fails the
// mutation is rolled back.
type Store struct {
	mu      sync.Mutex
	jobs    []Job
	persist Persister
	logger  *slog.Logger
	newID   func() string
}

type StoreOption func(*Store)

// WithIDGenerator overrides uuid-based id minting.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func NewStore(p Persister, logger *slog.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		persist: p,
		logger:  logger,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the stored collection. When nothing was stored yet the sample
// applications are seeded and saved.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, found, err := s.persist.Load(ctx)
	if err != nil {
		return common.WrapError(err, "load jobs")
	}
	if !found {
		seed := SeedJobs()
		if err := s.persist.Save(ctx, seed); err != nil {
			return common.WrapError(err, "seed jobs")
		}
		s.jobs = seed
		s.logger.Info("jobs.seeded", "count", len(seed))
		return nil
	}
	s.jobs = loaded
	s.logger.Info("jobs.loaded", "count", len(loaded))
	return nil
}

// Submit validates the draft and either creates a new job (editingID empty)
// or replaces the job with editingID, preserving its id.
func (s *Store) Submit(ctx context.Context, d Draft, editingID string) (Job, error) {
	if err := validateDraft(d); err != nil {
		s.logger.Warn("jobs.submit.rejected", "editing_id", editingID, "error", err)
		return Job{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.jobs)
	var job Job
	if editingID == "" {
		job = d.toJob(s.newID())
		next = append([]Job{job}, next...)
	} else {
		i := s.indexOf(editingID)
		if i < 0 {
			return Job{}, notFound(editingID)
		}
		job = d.toJob(editingID)
		next[i] = job
	}

	if err := s.commit(ctx, next); err != nil {
		return Job{}, err
	}
	s.logger.Info("jobs.submit.ok", "id", job.ID, "edit", editingID != "", "company", job.Company)
	return job, nil
}

// Delete removes exactly the job with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return notFound(id)
	}
	next := slices.Delete(slices.Clone(s.jobs), i, i+1)
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.logger.Info("jobs.delete.ok", "id", id)
	return nil
}

// SetStatus changes only the status of job id.
func (s *Store) SetStatus(ctx context.Context, id string, status Status) (Job, error) {
	if !status.Valid() {
		_, err := ParseStatus(string(status))
		return Job{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Job{}, notFound(id)
	}
	next := slices.Clone(s.jobs)
	next[i].Status = status
	if err := s.commit(ctx, next); err != nil {
		return Job{}, err
	}
	s.logger.Info("jobs.status.ok", "id", id, "status", status)
	return next[i], nil
}

func (s *Store) Get(id string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return Job{}, notFound(id)
	}
	return s.jobs[i], nil
}

// List returns jobs in display order. filter is "all" (or empty) or a status.
func (s *Store) List(filter string) ([]Job, error) {
	var want Status
	if filter != "" && filter != constants.FilterAll {
		st, err := ParseStatus(filter)
		if err != nil {
			return nil, err
		}
		want = st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if want == "" || j.Status == want {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{Total: len(s.jobs)}
	for _, j := range s.jobs {
		switch j.Status {
		case constants.StatusInterview:
			st.Interview++
		case constants.StatusOffer:
			st.Offer++
		}
	}
	return st
}

// Snapshot returns a copy of the whole collection.
func (s *Store) Snapshot() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.jobs)
}

// commit persists next and only then swaps it in. Caller holds mu.
func (s *Store) commit(ctx context.Context, next []Job) error {
	if err := s.persist.Save(ctx, next); err != nil {
		s.logger.Error("jobs.persist.failed", "error", err)
		return common.WrapError(err, "persist jobs")
	}
	s.jobs = next
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.jobs, func(j Job) bool { return j.ID == id })
}

func notFound(id string) error {
	return common.NotFound("job %q not found", id)
}

func validateDraft(d Draft) error {
	if d.Title == "" || d.Company == "" {
		return common.ValidationFailed(RequiredFieldsMessage)
	}
	verrs, err := common.ValidateStruct(d)
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		return common.ValidationFailed(common.JoinValidation(verrs))
	}
	return nil
}

// IsValidation reports whether err is a rejected submission.
func IsValidation(err error) bool {
	return errors.Is(err, common.ErrValidation)
}
