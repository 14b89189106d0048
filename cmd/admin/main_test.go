package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeKit/internal/config"
	"resumeKit/internal/database"
)

type memJobs struct {
	jobs []database.ExportJob
}

func (m *memJobs) ExpiredExportJobs(_ context.Context, _ time.Time, limit int) ([]database.ExportJob, error) {
	if len(m.jobs) < limit {
		return append([]database.ExportJob(nil), m.jobs...), nil
	}
	return append([]database.ExportJob(nil), m.jobs[:limit]...), nil
}

func (m *memJobs) DeleteExportJob(_ context.Context, id string) error {
	for i, j := range m.jobs {
		if j.ID == id {
			m.jobs = append(m.jobs[:i], m.jobs[i+1:]...)
			return nil
		}
	}
	return nil
}

type memObjects struct {
	deleted []string
	failOn  string
}

func (m *memObjects) DeleteObject(_ context.Context, key string) error {
	if key == m.failOn {
		return errors.New("access denied")
	}
	m.deleted = append(m.deleted, key)
	return nil
}

func TestPrune(t *testing.T) {
	jobs := &memJobs{jobs: []database.ExportJob{
		{ID: "a", ObjectKey: "exports/u1/a.pdf"},
		{ID: "b"},
		{ID: "c", ObjectKey: "exports/u1/c.pdf"},
	}}
	objects := &memObjects{failOn: "exports/u1/c.pdf"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	n, err := prune(context.Background(), logger, jobs, objects, time.Now(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"exports/u1/a.pdf"}, objects.deleted)
	require.Len(t, jobs.jobs, 1)
	assert.Equal(t, "c", jobs.jobs[0].ID)
}

func TestPruneDryRun(t *testing.T) {
	jobs := &memJobs{jobs: []database.ExportJob{{ID: "a", ObjectKey: "k"}}}
	objects := &memObjects{}

	n, err := prune(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), jobs, objects, time.Now(), true)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, jobs.jobs, 1)
	assert.Empty(t, objects.deleted)
}

func TestOverrideDatabase(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "localhost", Port: 5432, Name: "resumekit", SSLMode: "disable"}
	overrideDatabase(&cfg, " db.internal ", 0, "", "require")
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "resumekit", cfg.Name)
	assert.Equal(t, "require", cfg.SSLMode)
}
