package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesSpecPolicyConstants(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0.30, cfg.Resolver.MinScore)
	assert.Equal(t, 5, cfg.Resolver.MinMatchedRows)
}

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Resolver, cfg.Resolver)
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
resolver:
  min_score: 0.5
  min_matched_rows: 3
concurrency:
  max_concurrent_evaluations: 2
  total_timeout: 10s
  rule_timeout: 2s
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Resolver.MinScore)
	assert.Equal(t, 3, cfg.Resolver.MinMatchedRows)
	assert.Equal(t, 2, cfg.Concurrency.MaxConcurrentEvaluations)
	assert.Equal(t, 10*time.Second, cfg.Concurrency.TotalTimeout)
	assert.Equal(t, 2*time.Second, cfg.Concurrency.RuleTimeout)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WAREDGE_RESOLVER_MIN_SCORE", "0.75")
	t.Setenv("WAREDGE_MAX_CONCURRENT_EVALUATIONS", "16")

	cfg := Default()
	cfg.applyEnvOverrides()

	assert.Equal(t, 0.75, cfg.Resolver.MinScore)
	assert.Equal(t, 16, cfg.Concurrency.MaxConcurrentEvaluations)
}
