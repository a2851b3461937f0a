package server

import (
	"bytes"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/fedtech/jobtracker/internal/assist"
	"github.com/fedtech/jobtracker/internal/export"
	"github.com/fedtech/jobtracker/internal/jobs"
	"github.com/fedtech/jobtracker/internal/ocr"
	"github.com/fedtech/jobtracker/internal/repository"
)

// gatedOCR maps data-URIs to text; URIs with a gate block until it closes.
type gatedOCR struct {
	mu      sync.Mutex
	texts   map[string]string
	gates   map[string]chan struct{}
	started chan string
}

func (g *gatedOCR) ExtractText(_ context.Context, uri string, _ ocr.ProgressFunc) (assist.TextResult, error) {
	g.mu.Lock()
	gate := g.gates[uri]
	g.mu.Unlock()
	if g.started != nil {
		g.started <- uri
	}
	if gate != nil {
		<-gate
	}
	return assist.TextResult{Text: g.texts[uri], Language: "eng", Confidence: 0.5}, nil
}

type harness struct {
	client *Client
	conn   *grpc.ClientConn
	ocr    *gatedOCR
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	db, err := repository.Open(ctx, repository.Config{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db, nil) })

	p, err := jobs.NewKVPersister(repository.NewKVRepository(db, nil), nil)
	require.NoError(t, err)
	store := jobs.NewStore(p, nil)
	require.NoError(t, store.Load(ctx))

	g := &gatedOCR{texts: map[string]string{
		"data:image/png;base64,AA==": "PT Maju Jaya\nBackend Developer\nLokasi: Bandung",
		"data:image/png;base64,AQ==": "   ",
	}, gates: map[string]chan struct{}{}}

	gs, _ := New(Deps{Store: store, Text: g, Exporter: export.NewService(store, nil)})
	lis := bufconn.Listen(1 << 20)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &harness{client: NewClient(conn), conn: conn, ocr: g}
}

func ctxTimeout(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	resp, err := healthpb.NewHealthClient(h.conn).Check(ctxTimeout(t), &healthpb.HealthCheckRequest{Service: JobsServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestJobsLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := ctxTimeout(t)

	list, err := h.client.ListJobs(ctx, "all")
	require.NoError(t, err)
	assert.Len(t, list.GetFields()["jobs"].GetListValue().GetValues(), 3)

	created, err := h.client.SubmitJob(ctx, map[string]any{
		"title":   "Data Engineer",
		"company": "PT Sinar Data",
		"status":  "pending",
	})
	require.NoError(t, err)
	id := str(created, "id")
	assert.NotEmpty(t, id)
	assert.Equal(t, "PS", str(created, "initials"))
	assert.Equal(t, "pending", str(created, "status"))

	edited, err := h.client.SubmitJob(ctx, map[string]any{"id": id, "salary": "Rp 15.000.000"})
	require.NoError(t, err)
	assert.Equal(t, id, str(edited, "id"))
	assert.Equal(t, "Data Engineer", str(edited, "title"))
	assert.Equal(t, "Rp 15.000.000", str(edited, "salary"))

	interviewing, err := h.client.SetStatus(ctx, id, "Wawancara")
	require.NoError(t, err)
	assert.Equal(t, "interview", str(interviewing, "status"))

	updated, err := h.client.SetStatus(ctx, id, "offer")
	require.NoError(t, err)
	assert.Equal(t, "offer", str(updated, "status"))

	stats, err := h.client.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4.0, stats.GetFields()["total"].GetNumberValue())
	assert.Equal(t, 2.0, stats.GetFields()["offer"].GetNumberValue())

	offers, err := h.client.ListJobs(ctx, "offer")
	require.NoError(t, err)
	assert.Len(t, offers.GetFields()["jobs"].GetListValue().GetValues(), 2)

	require.NoError(t, h.client.DeleteJob(ctx, id))
	_, err = h.client.GetJob(ctx, id)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestJobsErrors(t *testing.T) {
	h := newHarness(t)
	ctx := ctxTimeout(t)

	_, err := h.client.SubmitJob(ctx, map[string]any{"title": "QA Engineer"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, jobs.RequiredFieldsMessage, status.Convert(err).Message())

	_, err = h.client.SubmitJob(ctx, map[string]any{"title": "QA", "company": "X", "status": "hired"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.client.SetStatus(ctx, "missing", "offer")
	assert.Equal(t, codes.NotFound, status.Code(err))

	assert.Equal(t, codes.NotFound, status.Code(h.client.DeleteJob(ctx, "missing")))
	assert.Equal(t, codes.InvalidArgument, status.Code(h.client.DeleteJob(ctx, " ")))

	_, err = h.client.ListJobs(ctx, "hired")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	list, err := h.client.ListJobs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list.GetFields()["jobs"].GetListValue().GetValues(), 3)
}

func TestExtractText(t *testing.T) {
	h := newHarness(t)
	out, err := h.client.ExtractText(ctxTimeout(t), "PT Maju Jaya\nBackend Developer\nGaji Rp 8.000.000")
	require.NoError(t, err)

	rec := out.GetFields()["record"].GetStructValue()
	assert.Equal(t, "PT Maju Jaya", str(rec, "company"))
	assert.Equal(t, "Backend Developer", str(rec, "title"))
	assert.Equal(t, "Rp 8.000.000", str(rec, "salary"))
	assert.Equal(t, 3.0, out.GetFields()["found"].GetNumberValue())
	assert.NotEmpty(t, out.GetFields()["matches"].GetListValue().GetValues())
}

func TestExtractImageMergesDraft(t *testing.T) {
	h := newHarness(t)
	out, err := h.client.ExtractImage(ctxTimeout(t), map[string]any{
		"image": "data:image/png;base64,AA==",
		"draft": map[string]any{"salary": "negotiable", "location": "Jakarta"},
	})
	require.NoError(t, err)

	d := out.GetFields()["draft"].GetStructValue()
	assert.Equal(t, "PT Maju Jaya", str(d, "company"))
	assert.Equal(t, "Backend Developer", str(d, "title"))
	assert.Equal(t, "Bandung", str(d, "location"))
	assert.Equal(t, "negotiable", str(d, "salary"))
	assert.Equal(t, "applied", str(d, "status"))
	assert.Equal(t, "eng", str(out, "language"))
}

func TestExtractImageErrors(t *testing.T) {
	h := newHarness(t)
	ctx := ctxTimeout(t)

	_, err := h.client.ExtractImage(ctx, map[string]any{"image": "data:image/png;base64,AQ=="})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, assist.MsgNoText, status.Convert(err).Message())

	_, err = h.client.ExtractImage(ctx, map[string]any{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestExtractImageSupersededInSession(t *testing.T) {
	h := newHarness(t)
	ctx := ctxTimeout(t)

	slow := "data:image/png;base64,Ag=="
	gate := make(chan struct{})
	h.ocr.mu.Lock()
	h.ocr.texts[slow] = "PT Lama Sekali\nData Analyst"
	h.ocr.gates[slow] = gate
	h.ocr.mu.Unlock()
	h.ocr.started = make(chan string, 2)

	errCh := make(chan error, 1)
	go func() {
		_, err := h.client.ExtractImage(ctx, map[string]any{"image": slow, "session_id": "form-1"})
		errCh <- err
	}()
	require.Equal(t, slow, <-h.ocr.started)

	out, err := h.client.ExtractImage(ctx, map[string]any{"image": "data:image/png;base64,AA==", "session_id": "form-1"})
	require.NoError(t, err)
	<-h.ocr.started
	close(gate)

	assert.Equal(t, codes.Aborted, status.Code(<-errCh))
	assert.Equal(t, "PT Maju Jaya", str(out.GetFields()["draft"].GetStructValue(), "company"))
}

func TestExportJobs(t *testing.T) {
	h := newHarness(t)
	ctx := ctxTimeout(t)

	b, err := h.client.ExportJobs(ctx, "interview", "", "")
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Applications")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "TechCorp", rows[1][2])

	_, err = h.client.ExportJobs(ctx, "all", "05-02-2026", "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestSessionRegistryExpires(t *testing.T) {
	orig := now
	t.Cleanup(func() { now = orig })
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	now = func() time.Time { return base }

	r := &sessionRegistry{items: map[string]*sessionEntry{}, ttl: time.Minute}
	create := func() *assist.Session { return assist.NewSession(nil, nil, jobs.NewDraft(base), nil) }
	a := r.get("a", create)
	assert.Same(t, a, r.get("a", create))

	base = base.Add(2 * time.Minute)
	r.get("b", create)
	assert.Equal(t, 1, r.size())
	assert.NotSame(t, a, r.get("a", create))
}
