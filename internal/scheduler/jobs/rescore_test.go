package jobs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dqs/internal/contracts"
	"github.com/wonny/dqs/internal/evaluation"
	"github.com/wonny/dqs/internal/scheduler"
	"github.com/wonny/dqs/pkg/logger"
)

type countingPublisher struct {
	mu      sync.Mutex
	sources []string
}

func (p *countingPublisher) Publish(r *contracts.EvaluationReport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sources = append(p.sources, filepath.Base(r.Source))
}

func TestRescoreJob_Run(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("id,amount\n1,10\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.csv"), []byte("id,amount\n1\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.csv"), []byte("id\n1\n"), 0o644))

	pub := &countingPublisher{}
	ev, err := evaluation.New(evaluation.WithPublisher(pub))
	require.NoError(t, err)

	job := NewRescoreJob(ev, dir, "@every 1h", true, 2, logger.Nop())
	assert.Equal(t, "rescore", job.Name())
	assert.Equal(t, "@every 1h", job.Schedule())

	tally, err := job.RunTally(context.Background())
	require.NoError(t, err)
	assert.Equal(t, scheduler.Tally{Evaluated: 3, Failed: 1}, tally)
	assert.ElementsMatch(t, []string{"a.csv", "b.csv"}, pub.sources)
}

func TestRescoreJob_NonRecursive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.csv"), []byte("id\n1\n"), 0o644))

	pub := &countingPublisher{}
	ev, err := evaluation.New(evaluation.WithPublisher(pub))
	require.NoError(t, err)

	job := NewRescoreJob(ev, dir, "@every 1h", false, 1, logger.Nop())
	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, pub.sources)
}

func TestRescoreJob_MissingDir(t *testing.T) {
	ev, err := evaluation.New()
	require.NoError(t, err)

	job := NewRescoreJob(ev, filepath.Join(t.TempDir(), "gone"), "@every 1h", true, 1, logger.Nop())
	assert.Error(t, job.Run(context.Background()))
}
