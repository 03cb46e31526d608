package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/gridcast/internal/adapters/repository"
	"github.com/okian/gridcast/internal/domain/roster"
	"github.com/okian/gridcast/internal/domain/scoring"
	"github.com/okian/gridcast/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"manifest.yaml": `current_season: 2025
results:
  - {path: r2024.csv, season: 2024, event: race}
  - {path: r2025.csv, season: 2025, event: race}
qualifying:
  - {path: q2025.csv, event: regular}
`,
		"r2024.csv": "Driver,Team,Position\nAlpha,Ferrari,1\nBravo,McLaren,2\nCharlie,Haas,3\n",
		"r2025.csv": "Driver,Team,Position\nAlpha,Ferrari,2\nBravo,McLaren,1\nCharlie,Haas,\n",
		"q2025.csv": "Driver,Q1,Q2,Q3\nAlpha,1:15.0,1:14.5,\nBravo,1:15.2,1:14.9,1:14.1\nCharlie,1:16.0,,\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func testRoster(t *testing.T) scoring.Option {
	t.Helper()
	r, err := roster.New([]string{"alpha", "bravo", "charlie"})
	require.NoError(t, err)
	return scoring.WithRoster(r)
}

func TestRun(t *testing.T) {
	for _, backend := range []string{repository.BackendCSV, repository.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			dir := writeFixture(t)
			out := filepath.Join(dir, "cache")
			var table bytes.Buffer

			stats, err := Run(context.Background(), &Config{
				Manifest:       filepath.Join(dir, "manifest.yaml"),
				OutDir:         out,
				Backend:        backend,
				Output:         &table,
				ScoringOptions: []scoring.Option{testRoster(t)},
			})
			require.NoError(t, err)

			assert.NotEmpty(t, stats.RunID)
			assert.Equal(t, 2025, stats.Season)
			assert.True(t, stats.Verified)
			assert.Equal(t, 6, stats.Build.Records)
			assert.Equal(t, 1, stats.Build.MissingPositions)
			assert.Equal(t, 6, stats.ScoredWritten)
			assert.Equal(t, 3, stats.QualifyingOut)
			assert.False(t, stats.EndTime.Before(stats.StartTime))

			for _, name := range []string{"alpha", "bravo", "charlie"} {
				assert.Contains(t, table.String(), name)
			}

			store, err := repository.NewStore(backend, out)
			require.NoError(t, err)
			defer store.Close()
			scored, err := store.LoadScored(context.Background())
			require.NoError(t, err)
			assert.Len(t, scored, 6)

			info, err := store.LoadInfo(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 2025, info.CurrentSeason)
			assert.Equal(t, []string{"alpha", "bravo", "charlie"}, info.Roster)
			assert.Equal(t, scoring.DefaultQualifyingPolicy().SprintWeight, info.SprintWeight)
		})
	}
}

func TestRunSeasonFlagWins(t *testing.T) {
	dir := writeFixture(t)
	stats, err := Run(context.Background(), &Config{
		Manifest:       filepath.Join(dir, "manifest.yaml"),
		OutDir:         filepath.Join(dir, "cache"),
		Backend:        repository.BackendCSV,
		Season:         2024,
		ScoringOptions: []scoring.Option{testRoster(t)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2024, stats.Season)
}

func TestRunErrors(t *testing.T) {
	dir := writeFixture(t)

	_, err := Run(context.Background(), &Config{
		Manifest: filepath.Join(dir, "missing.yaml"),
		OutDir:   filepath.Join(dir, "cache"),
		Backend:  repository.BackendCSV,
	})
	assert.Error(t, err)

	_, err = Run(context.Background(), &Config{
		Manifest:       filepath.Join(dir, "manifest.yaml"),
		OutDir:         filepath.Join(dir, "cache"),
		Backend:        "parquet",
		ScoringOptions: []scoring.Option{testRoster(t)},
	})
	assert.ErrorIs(t, err, repository.ErrUnknownBackend)
}

func TestResolveSeason(t *testing.T) {
	assert.Equal(t, 2023, resolveSeason(2023, 2025))
	assert.Equal(t, 2025, resolveSeason(0, 2025))
	assert.Equal(t, 0, resolveSeason(0, 0))
}

func TestShowHelp(t *testing.T) {
	var buf bytes.Buffer
	ShowHelp(&buf)
	for _, flag := range []string{"-manifest", "-out", "-backend", "-season", "-log", "-verbose", "-help"} {
		assert.True(t, strings.Contains(buf.String(), flag), flag)
	}
}

func TestSetupLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	cleanup, err := SetupLogging(path, true)
	require.NoError(t, err)
	cleanup()
	defer func() { _ = logger.Init() }()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "logging to file")

	_, err = SetupLogging(filepath.Join(t.TempDir(), "no", "such", "dir.log"), false)
	assert.Error(t, err)
}

func TestRunRecordsPolicy(t *testing.T) {
	dir := writeFixture(t)
	out := filepath.Join(dir, "cache")
	policy := scoring.DefaultQualifyingPolicy()
	policy.SprintWeight = 0

	_, err := Run(context.Background(), &Config{
		Manifest:       filepath.Join(dir, "manifest.yaml"),
		OutDir:         out,
		Backend:        repository.BackendSQLite,
		ScoringOptions: []scoring.Option{testRoster(t), scoring.WithQualifyingPolicy(policy)},
	})
	require.NoError(t, err)

	store, err := repository.NewStore(repository.BackendSQLite, out)
	require.NoError(t, err)
	defer store.Close()
	info, err := store.LoadInfo(context.Background())
	require.NoError(t, err)

	sameSettings := scoring.NewBuilder(scoring.WithCurrentSeason(2025), testRoster(t), scoring.WithQualifyingPolicy(policy))
	assert.NoError(t, sameSettings.CheckInfo(info))
	defaults := scoring.NewBuilder(scoring.WithCurrentSeason(2025), testRoster(t))
	assert.ErrorIs(t, defaults.CheckInfo(info), scoring.ErrSettingsMismatch)
}
