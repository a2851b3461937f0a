package server

import (
	"context"
	"log/slog"
	"strings"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/fedtech/jobtracker/internal/common"
	"github.com/fedtech/jobtracker/internal/jobs"
)

// JobStore is what JobsService needs from jobs.Store.
type JobStore interface {
	Submit(ctx context.Context, d jobs.Draft, editingID string) (jobs.Job, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status jobs.Status) (jobs.Job, error)
	Get(id string) (jobs.Job, error)
	List(filter string) ([]jobs.Job, error)
	Stats() jobs.Stats
}

type JobsService struct {
	store  JobStore
	logger *slog.Logger
}

func NewJobsService(store JobStore, logger *slog.Logger) *JobsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobsService{store: store, logger: logger}
}

func (s *JobsService) ListJobs(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	list, err := s.store.List(strings.TrimSpace(req.GetValue()))
	if err != nil {
		return nil, common.ToStatus(err)
	}
	common.LoggerFromContext(ctx, s.logger).Debug("jobs listed", "filter", req.GetValue(), "count", len(list))
	return jobsToStruct(list)
}

func (s *JobsService) GetJob(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id := strings.TrimSpace(req.GetValue())
	if id == "" {
		return nil, common.InvalidArgumentError("id is required")
	}
	j, err := s.store.Get(id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return jobToStruct(j)
}

// SubmitJob creates a job, or edits one when the request carries "id".
func (s *JobsService) SubmitJob(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	editingID := strings.TrimSpace(str(req, "id"))
	base := jobs.NewDraft(now())
	if editingID != "" {
		existing, err := s.store.Get(editingID)
		if err != nil {
			return nil, common.ToStatus(err)
		}
		base = jobs.DraftFromJob(existing)
	}
	d, err := draftFromStruct(req, base)
	if err != nil {
		return nil, common.InvalidArgumentError(common.UserMessage(err))
	}

	j, err := s.store.Submit(ctx, d, editingID)
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Warn("submit job failed", "editing_id", editingID, "error", err)
		return nil, common.ToStatus(err)
	}
	return jobToStruct(j)
}

func (s *JobsService) DeleteJob(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id := strings.TrimSpace(req.GetValue())
	if id == "" {
		return nil, common.InvalidArgumentError("id is required")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, common.ToStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *JobsService) SetStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := strings.TrimSpace(str(req, "id"))
	if id == "" {
		return nil, common.InvalidArgumentError("id is required")
	}
	st, err := jobs.StatusFromInput(str(req, "status"))
	if err != nil {
		return nil, common.ToStatus(err)
	}
	j, err := s.store.SetStatus(ctx, id, st)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return jobToStruct(j)
}

func (s *JobsService) Stats(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	st := s.store.Stats()
	return structpb.NewStruct(map[string]any{
		"total":     st.Total,
		"interview": st.Interview,
		"offer":     st.Offer,
	})
}
