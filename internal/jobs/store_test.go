package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedtech/jobtracker/constants"
	"github.com/fedtech/jobtracker/internal/common"
	"github.com/fedtech/jobtracker/internal/extract"
	"github.com/fedtech/jobtracker/internal/repository"
)

type memPersister struct {
	saved   []Job
	found   bool
	saves   int
	failErr error
}

func (m *memPersister) Load(context.Context) ([]Job, bool, error) {
	return m.saved, m.found, nil
}

func (m *memPersister) Save(_ context.Context, jobs []Job) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.saves++
	m.saved = append([]Job(nil), jobs...)
	m.found = true
	return nil
}

func sequentialIDs() StoreOption {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	})
}

func loadedStore(t *testing.T) (*Store, *memPersister) {
	t.Helper()
	p := &memPersister{}
	s := NewStore(p, nil, sequentialIDs())
	require.NoError(t, s.Load(context.Background()))
	return s, p
}

func validDraft() Draft {
	d := NewDraft(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	d.Title = "Backend Developer"
	d.Company = "PT Maju Jaya"
	return d
}

func TestLoadSeedsWhenEmpty(t *testing.T) {
	s, p := loadedStore(t)
	assert.Len(t, s.Snapshot(), 3)
	assert.Equal(t, 1, p.saves)
	assert.Equal(t, Stats{Total: 3, Interview: 1, Offer: 1}, s.Stats())
}

func TestLoadKeepsStoredEmptyCollection(t *testing.T) {
	p := &memPersister{found: true, saved: []Job{}}
	s := NewStore(p, nil)
	require.NoError(t, s.Load(context.Background()))
	assert.Empty(t, s.Snapshot())
	assert.Zero(t, p.saves)
}

func TestSubmitCreatePrepends(t *testing.T) {
	s, p := loadedStore(t)
	job, err := s.Submit(context.Background(), validDraft(), "")
	require.NoError(t, err)
	assert.Equal(t, "new-1", job.ID)
	assert.Equal(t, constants.StatusApplied, job.Status)
	assert.Equal(t, "2026-03-01", job.DateApplied)

	all := s.Snapshot()
	require.Len(t, all, 4)
	assert.Equal(t, "new-1", all[0].ID)
	assert.Equal(t, all, p.saved)
}

func TestSubmitRejectsMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		draft func() Draft
	}{
		{"empty company", func() Draft { d := validDraft(); d.Company = ""; return d }},
		{"empty title", func() Draft { d := validDraft(); d.Title = ""; return d }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := loadedStore(t)
			before := s.Snapshot()
			savesBefore := p.saves

			_, err := s.Submit(context.Background(), tt.draft(), "")
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Equal(t, RequiredFieldsMessage, common.UserMessage(err))
			assert.Equal(t, before, s.Snapshot())
			assert.Equal(t, savesBefore, p.saves)
		})
	}
}

func TestSubmitRejectsBadDate(t *testing.T) {
	s, _ := loadedStore(t)
	d := validDraft()
	d.DateApplied = "01/03/2026"
	_, err := s.Submit(context.Background(), d, "")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, common.UserMessage(err), "dateApplied")
}

func TestSubmitEditPreservesID(t *testing.T) {
	s, _ := loadedStore(t)
	orig, err := s.Get("2")
	require.NoError(t, err)

	d := DraftFromJob(orig)
	d.Title = "Platform Engineer"
	d.Status = constants.StatusInterview
	job, err := s.Submit(context.Background(), d, "2")
	require.NoError(t, err)
	assert.Equal(t, "2", job.ID)

	all := s.Snapshot()
	require.Len(t, all, 3)
	assert.Equal(t, "2", all[1].ID)
	assert.Equal(t, "Platform Engineer", all[1].Title)
	assert.Equal(t, orig.Company, all[1].Company)
}

func TestSubmitEditUnknownID(t *testing.T) {
	s, _ := loadedStore(t)
	_, err := s.Submit(context.Background(), validDraft(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Len(t, s.Snapshot(), 3)
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	s, p := loadedStore(t)
	require.NoError(t, s.Delete(context.Background(), "2"))

	all := s.Snapshot()
	require.Len(t, all, 2)
	assert.Equal(t, "1", all[0].ID)
	assert.Equal(t, "3", all[1].ID)
	assert.Equal(t, all, p.saved)

	assert.ErrorIs(t, s.Delete(context.Background(), "2"), common.ErrNotFound)
}

func TestSetStatus(t *testing.T) {
	s, _ := loadedStore(t)
	job, err := s.SetStatus(context.Background(), "1", constants.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusRejected, job.Status)
	assert.Equal(t, "Senior Frontend Developer", job.Title)
	assert.Equal(t, Stats{Total: 3, Interview: 0, Offer: 1}, s.Stats())

	_, err = s.SetStatus(context.Background(), "1", Status("hired"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestFailedPersistLeavesCollectionUnchanged(t *testing.T) {
	s, p := loadedStore(t)
	before := s.Snapshot()
	p.failErr = errors.New("disk full")

	_, err := s.Submit(context.Background(), validDraft(), "")
	assert.Error(t, err)
	assert.Error(t, s.Delete(context.Background(), "1"))
	_, err = s.SetStatus(context.Background(), "1", constants.StatusPending)
	assert.Error(t, err)

	assert.Equal(t, before, s.Snapshot())
}

func TestList(t *testing.T) {
	s, _ := loadedStore(t)

	all, err := s.List(constants.FilterAll)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	offers, err := s.List("offer")
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "React Developer", offers[0].Title)

	_, err = s.List("hired")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestDraftMerge(t *testing.T) {
	prev := validDraft()
	prev.Location = "Bandung"
	prev.Logo = "data:image/png;base64,AAAA"

	got := prev.Merge(extract.Record{
		Title:  "Data Analyst",
		Salary: "Rp 8.000.000",
		Notes:  "Extracted from image:\nData Analyst",
	})
	assert.Equal(t, "Data Analyst", got.Title)
	assert.Equal(t, "PT Maju Jaya", got.Company)
	assert.Equal(t, "Bandung", got.Location)
	assert.Equal(t, "Rp 8.000.000", got.Salary)
	assert.Equal(t, "Extracted from image:\nData Analyst", got.Notes)
	assert.Equal(t, prev.Logo, got.Logo)

	assert.Equal(t, prev, prev.Merge(extract.Record{}))
}

func TestInitialsAndFormatDate(t *testing.T) {
	assert.Equal(t, "TE", Initials("Tech Enterprise"))
	assert.Equal(t, "PM", Initials("pt maju jaya"))
	assert.Equal(t, "D", Initials("DigitalAgency"))
	assert.Equal(t, "", Initials("   "))

	assert.Equal(t, "Feb 5, 2026", FormatDate("2026-02-05"))
	assert.Equal(t, "soon", FormatDate("soon"))
}

func TestKVPersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db, nil) })

	kv := repository.NewKVRepository(db, nil)
	p, err := NewKVPersister(kv, nil)
	require.NoError(t, err)

	s := NewStore(p, nil, sequentialIDs())
	require.NoError(t, s.Load(ctx))
	_, err = s.Submit(ctx, validDraft(), "")
	require.NoError(t, err)

	reloaded := NewStore(p, nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, s.Snapshot(), reloaded.Snapshot())

	// a document that violates the schema is refused on load
	require.NoError(t, kv.Put(ctx, StorageKey, []byte(`[{"id":"x","title":"t","company":"c","status":"hired","dateApplied":""}]`)))
	assert.Error(t, NewStore(p, nil).Load(ctx))
}

func TestStatusFromInput(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"interview", constants.StatusInterview},
		{"Interview", constants.StatusInterview},
		{" wawancara ", constants.StatusInterview},
		{"ditolak", constants.StatusRejected},
		{"Diterima", constants.StatusOffer},
		{"menunggu", constants.StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := StatusFromInput(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := StatusFromInput("hired")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	// stored values stay strict
	_, err = ParseStatus("Interview")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
