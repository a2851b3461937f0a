package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type sample struct {
	Title string `json:"title" validate:"required,max=10"`
	Date  string `json:"date_applied" validate:"required,datetime=2006-01-02"`
}

func TestValidateStruct(t *testing.T) {
	errs, err := ValidateStruct(sample{Title: "ok", Date: "2026-02-05"})
	require.NoError(t, err)
	assert.Nil(t, errs)

	errs, err = ValidateStruct(sample{Date: "05/02/2026"})
	require.NoError(t, err)
	require.Len(t, errs, 2)
	assert.Equal(t, "title", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)
	assert.Equal(t, "date_applied", errs[1].Field)
	assert.Contains(t, JoinValidation(errs), "date_applied")
}

func TestToStatus(t *testing.T) {
	err := NewAppError("VALIDATION", "Please fill in required fields", ErrValidation)
	assert.Equal(t, codes.InvalidArgument, status.Code(ToStatus(err)))
	assert.Equal(t, "Please fill in required fields", status.Convert(ToStatus(err)).Message())

	assert.Equal(t, codes.NotFound, status.Code(ToStatus(WrapError(ErrNotFound, "job x"))))
	assert.Equal(t, codes.Internal, status.Code(ToStatus(errors.New("boom"))))
	assert.Equal(t, codes.Unavailable, status.Code(ToStatus(status.Error(codes.Unavailable, "down"))))
	assert.Equal(t, codes.Unavailable, status.Code(ToStatus(fmt.Errorf("write: %w", ErrDatabase))))
	assert.Equal(t, codes.DeadlineExceeded, status.Code(ToStatus(fmt.Errorf("tesseract: %w", context.DeadlineExceeded))))
	assert.Equal(t, codes.Canceled, status.Code(ToStatus(context.Canceled)))
	assert.NoError(t, ToStatus(nil))
}

func TestDomainErrorConstructors(t *testing.T) {
	v := ValidationFailed("Please fill in required fields")
	assert.ErrorIs(t, v, ErrValidation)
	assert.Equal(t, CodeValidation, v.Code)

	nf := NotFound("job %q not found", "7")
	assert.ErrorIs(t, nf, ErrNotFound)
	assert.Equal(t, `job "7" not found`, UserMessage(nf))
	assert.Equal(t, codes.NotFound, status.Code(ToStatus(nf)))
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NewAppError(CodeConfig, "DB_URL is required", ErrInvalidInput)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "DB_URL is required", UserMessage(err))
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("OCR_LANG", "ind")
	t.Setenv("IMPORT_WORKERS", "4")
	cfg := LoadConfig()
	assert.Equal(t, "jobtracker.db", cfg.Database.DSN)
	assert.Equal(t, "ind", cfg.OCR.Language)
	assert.Equal(t, 4, cfg.Import.Workers)
	assert.NoError(t, cfg.Validate())

	cfg.Import.Workers = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)
}

func TestEnsureRequestID(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	assert.NotEmpty(t, id)
	ctx2, id2 := EnsureRequestID(ctx)
	assert.Equal(t, id, id2)
	assert.Equal(t, id, RequestIDFromContext(ctx2))
}
