package job

import (
	"context"

	"github.com/lectern-dev/lectern/internal/service"
)

// ReindexJob sweeps the content store and reindexes chapters whose content
// fingerprint changed since the last pass.
type ReindexJob struct {
	ingest *service.IngestService
}

func NewReindexJob(ingest *service.IngestService) *ReindexJob {
	return &ReindexJob{ingest: ingest}
}

func (j *ReindexJob) Name() string {
	return "reindex"
}

func (j *ReindexJob) Run(ctx context.Context) error {
	if j.ingest == nil {
		return nil
	}
	_, err := j.ingest.ReindexAll(ctx, false)
	return err
}
