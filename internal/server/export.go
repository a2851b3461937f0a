package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/fedtech/jobtracker/internal/common"
	"github.com/fedtech/jobtracker/internal/export"
	"github.com/fedtech/jobtracker/internal/jobs"
)

type ExportService struct {
	svc    *export.Service
	logger *slog.Logger
}

func NewExportService(svc *export.Service, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{svc: svc, logger: logger}
}

// ExportJobs accepts {"filter", "from_date", "to_date"}; dates are YYYY-MM-DD and optional.
func (s *ExportService) ExportJobs(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	var window export.Window
	if fd := strings.TrimSpace(str(req, "from_date")); fd != "" {
		t, err := time.Parse(jobs.DateLayout, fd)
		if err != nil {
			return nil, common.InvalidArgumentError("from_date must be YYYY-MM-DD")
		}
		window.From = &t
	}
	if td := strings.TrimSpace(str(req, "to_date")); td != "" {
		t, err := time.Parse(jobs.DateLayout, td)
		if err != nil {
			return nil, common.InvalidArgumentError("to_date must be YYYY-MM-DD")
		}
		window.To = &t
	}

	xlsx, err := s.svc.ExportJobsXLSX(ctx, strings.TrimSpace(str(req, "filter")), window)
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Error("export.xlsx.failed", "error", err)
		return nil, common.ToStatus(err)
	}
	return wrapperspb.Bytes(xlsx), nil
}
