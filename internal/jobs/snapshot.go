package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/fedtech/jobtracker/internal/common"
	"github.com/fedtech/jobtracker/internal/repository"
)

// StorageKey is the fixed key the whole collection is stored under.
const StorageKey = "fedtech-jobs"

// Persister loads and saves the full collection. found is false when nothing
// has been stored yet.
type Persister interface {
	Load(ctx context.Context) (jobs []Job, found bool, err error)
	Save(ctx context.Context, jobs []Job) error
}

// KVPersister stores the collection as one JSON document in a KVRepository.
type KVPersister struct {
	kv     repository.KVRepository
	key    string
	schema *jsonschema.Schema
	logger *slog.Logger
}

func NewKVPersister(kv repository.KVRepository, logger *slog.Logger) (*KVPersister, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := compileSnapshotSchema()
	if err != nil {
		return nil, err
	}
	return &KVPersister{kv: kv, key: StorageKey, schema: schema, logger: logger}, nil
}

func (p *KVPersister) Load(ctx context.Context) ([]Job, bool, error) {
	raw, err := p.kv.Get(ctx, p.key)
	if errors.Is(err, common.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := validateSnapshot(p.schema, raw); err != nil {
		p.logger.Error("snapshot.invalid", "key", p.key, "error", err)
		return nil, true, err
	}
	var jobs []Job
	if err := json.Unmarshal(raw, &jobs); err != nil {
		return nil, true, fmt.Errorf("decode snapshot: %w", err)
	}
	p.logger.Debug("snapshot.loaded", "key", p.key, "jobs", len(jobs))
	return jobs, true, nil
}

func (p *KVPersister) Save(ctx context.Context, jobs []Job) error {
	if jobs == nil {
		jobs = []Job{}
	}
	raw, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := validateSnapshot(p.schema, raw); err != nil {
		return err
	}
	if err := p.kv.Put(ctx, p.key, raw); err != nil {
		return err
	}
	p.logger.Debug("snapshot.saved", "key", p.key, "jobs", len(jobs))
	return nil
}
