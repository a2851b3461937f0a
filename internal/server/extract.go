package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/fedtech/jobtracker/internal/assist"
	"github.com/fedtech/jobtracker/internal/common"
	"github.com/fedtech/jobtracker/internal/extract"
	"github.com/fedtech/jobtracker/internal/jobs"
)

var now = time.Now

const sessionTTL = 30 * time.Minute

type ExtractService struct {
	text     assist.TextExtractor
	fields   assist.FieldExtractor
	logger   *slog.Logger
	sessions *sessionRegistry
}

func NewExtractService(text assist.TextExtractor, logger *slog.Logger) *ExtractService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractService{
		text:     text,
		fields:   assist.NewRuleExtractor(logger),
		logger:   logger,
		sessions: &sessionRegistry{items: map[string]*sessionEntry{}, ttl: sessionTTL},
	}
}

// ExtractText runs the rule extractor over raw text and returns the fields
// together with the rule trace.
func (s *ExtractService) ExtractText(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	rec, trace := extract.Explain(req.GetValue())
	matches := make([]any, 0, len(trace))
	for _, m := range trace {
		matches = append(matches, map[string]any{
			"field": m.Field,
			"rule":  m.Rule,
			"line":  m.Line,
			"value": m.Value,
		})
	}
	return structpb.NewStruct(map[string]any{
		"record":  recordToMap(rec),
		"matches": matches,
		"found":   rec.Found(),
	})
}

// ExtractImage recognizes {"image": dataURI} and merges the result into
// {"draft": {...}}. Requests sharing a "session_id" behave like one form: a
// newer upload supersedes an older one still running, which then fails with
// codes.Aborted.
func (s *ExtractService) ExtractImage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	image := str(req, "image")
	if strings.TrimSpace(image) == "" {
		return nil, common.InvalidArgumentError("image is required")
	}

	base := jobs.NewDraft(now())
	var sess *assist.Session
	if id := strings.TrimSpace(str(req, "session_id")); id != "" {
		sess = s.sessions.get(id, func() *assist.Session {
			return assist.NewSession(s.text, s.fields, base, s.logger)
		})
	} else {
		sess = assist.NewSession(s.text, s.fields, base, s.logger)
	}

	if draftVal, ok := req.GetFields()["draft"]; ok && draftVal.GetStructValue() != nil {
		d, err := draftFromStruct(draftVal.GetStructValue(), sess.Draft())
		if err != nil {
			return nil, common.InvalidArgumentError(common.UserMessage(err))
		}
		sess.Edit(func(cur *jobs.Draft) { *cur = d })
	}

	out, err := sess.Upload(ctx, image, nil)
	switch {
	case errors.Is(err, assist.ErrSuperseded):
		return nil, status.Error(codes.Aborted, "superseded by a newer upload")
	case errors.Is(err, assist.ErrNoText):
		return nil, common.InvalidArgumentError(assist.MsgNoText)
	case errors.Is(err, common.ErrInvalidInput):
		return nil, common.InvalidArgumentError(err.Error())
	case err != nil:
		return nil, common.InternalError(assist.MsgOCRFailed)
	}

	warnings := make([]any, 0, len(out.OCR.Warnings))
	for _, w := range out.OCR.Warnings {
		warnings = append(warnings, w)
	}
	return structpb.NewStruct(map[string]any{
		"record":     recordToMap(out.Record),
		"draft":      draftToMap(out.Draft),
		"confidence": float64(out.OCR.Confidence),
		"language":   out.OCR.Language,
		"warnings":   warnings,
	})
}

type sessionEntry struct {
	session  *assist.Session
	lastUsed time.Time
}

// sessionRegistry keeps assisted-fill sessions keyed by client-chosen id and
// drops the ones idle for longer than ttl.
type sessionRegistry struct {
	mu    sync.Mutex
	items map[string]*sessionEntry
	ttl   time.Duration
}

func (r *sessionRegistry) get(id string, create func() *assist.Session) *assist.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := now()
	for k, e := range r.items {
		if t.Sub(e.lastUsed) > r.ttl {
			delete(r.items, k)
		}
	}
	e, ok := r.items[id]
	if !ok {
		e = &sessionEntry{session: create()}
		r.items[id] = e
	}
	e.lastUsed = t
	return e.session
}

func (r *sessionRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
