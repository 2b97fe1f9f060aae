package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveRulesOrdersByPrecedenceThenPriorityThenID(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Upsert("T1", Rule{ID: "B", IsActive: true, Priority: Medium, PrecedenceLevel: 1}))
	require.NoError(t, s.Upsert("T1", Rule{ID: "A", IsActive: true, Priority: VeryHigh, PrecedenceLevel: 1}))
	require.NoError(t, s.Upsert("T1", Rule{ID: "C", IsActive: true, Priority: Low, PrecedenceLevel: 0}))

	got := s.ActiveRules("T1")
	require.Len(t, got, 3)
	assert.Equal(t, []string{"C", "A", "B"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestActiveRulesExcludesInactive(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Upsert("T1", Rule{ID: "A", IsActive: true}))
	require.NoError(t, s.Upsert("T1", Rule{ID: "B", IsActive: false}))

	got := s.ActiveRules("T1")
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].ID)
}

func TestUpsertPreservesHistoryOnConditionChange(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Upsert("T1", Rule{ID: "A", IsActive: true, Conditions: Conditions{"x": 1.0}}))
	require.NoError(t, s.Upsert("T1", Rule{ID: "A", IsActive: true, Conditions: Conditions{"x": 2.0}}))

	got := s.ActiveRules("T1")
	require.Len(t, got, 1)
	require.Len(t, got[0].History, 1)
	assert.Equal(t, 1.0, got[0].History[0]["x"])
	assert.Equal(t, 2.0, got[0].Conditions["x"])
}

func TestDeactivateMarksRuleInactive(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Upsert("T1", Rule{ID: "A", IsActive: true}))
	require.NoError(t, s.Deactivate("T1", "A"))
	assert.Empty(t, s.ActiveRules("T1"))
}

func TestDeactivateUnknownRuleErrors(t *testing.T) {
	s := NewMemoryStore()
	assert.Error(t, s.Deactivate("T1", "nope"))
}

func TestMarkMalformedDeactivatesRule(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Upsert("T1", Rule{ID: "A", IsActive: true}))
	require.NoError(t, s.MarkMalformed("T1", "A", "missing field"))
	assert.Empty(t, s.ActiveRules("T1"))
}

func TestLoadAllDeactivatesSchemaInvalidRules(t *testing.T) {
	s := NewMemoryStore()
	s.LoadAll("T1", []Rule{
		{ID: "good", RuleType: TypeOvercapacity, IsActive: true, Conditions: Conditions{}},
		{ID: "bad", RuleType: TypeStagnantPallets, IsActive: true, Conditions: Conditions{}},
	})

	got := s.ActiveRules("T1")
	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].ID)
}

func TestLoadAllReplacesTenantRuleSetWholesale(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Upsert("T1", Rule{ID: "old", IsActive: true}))
	s.LoadAll("T1", []Rule{{ID: "new", RuleType: TypeOvercapacity, IsActive: true, Conditions: Conditions{}}})

	got := s.ActiveRules("T1")
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}
