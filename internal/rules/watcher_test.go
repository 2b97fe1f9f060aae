package rules

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRuleFile = `
tenant: T1
rules:
  - id: R1
    name: Stagnant pallets in storage
    rule_type: STAGNANT_PALLETS
    category: FLOW_TIME
    priority: HIGH
    is_active: true
    precedence_level: 1
    conditions:
      location_types: ["STORAGE"]
      time_threshold_hours: 48
`

func TestLoadFileParsesRulesAndTenant(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRuleFile), 0o644))

	tenant, loaded, warnings, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "T1", tenant)
	assert.Empty(t, warnings)
	require.Len(t, loaded, 1)
	assert.Equal(t, "R1", loaded[0].ID)
	assert.Equal(t, TypeStagnantPallets, loaded[0].RuleType)
	assert.True(t, loaded[0].IsActive)
}

func TestLoadFileAssignsIDWhenOmitted(t *testing.T) {
	const noIDFile = `
tenant: T1
rules:
  - name: Overcapacity check
    rule_type: OVERCAPACITY
    category: SPACE
    priority: MEDIUM
    is_active: true
    precedence_level: 2
    conditions:
      location_types: ["STORAGE"]
`
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(noIDFile), 0o644))

	_, loaded, warnings, err := LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, loaded, 1)
	assert.NotEmpty(t, loaded[0].ID)
}

func TestLoadFileWarnsAndDeactivatesInvalidRule(t *testing.T) {
	const badFile = `
tenant: T1
rules:
  - id: R-bad
    rule_type: STAGNANT_PALLETS
    is_active: true
    conditions:
      time_threshold_hours: 48
`
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(badFile), 0o644))

	_, loaded, warnings, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.False(t, loaded[0].IsActive)
	assert.NotEmpty(t, warnings)
}

func TestWatcherAppliesExistingFilesOnStart(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte(sampleRuleFile), 0o644))

	store := NewMemoryStore()
	w, err := NewWatcher(dir, store)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	assert.Eventually(t, func() bool {
		return len(store.ActiveRules("T1")) == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatcherAppliesNewFileAfterDebounce(t *testing.T) {
	dir := t.TempDir()
	store := NewMemoryStore()
	w, err := NewWatcher(dir, store)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte(sampleRuleFile), 0o644))

	assert.Eventually(t, func() bool {
		return len(store.ActiveRules("T1")) == 1
	}, 3*time.Second, 50*time.Millisecond)
}
