package evaluators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wareedge/rule-engine/internal/catalog"
	"github.com/wareedge/rule-engine/internal/rules"
	"github.com/wareedge/rule-engine/internal/snapshot"
)

func TestTemperatureZoneMismatchFlagsMatchingProductInProhibitedZone(t *testing.T) {
	now := time.Now()
	frozenDock := loc("DOCK-01", catalog.Dock, 10)
	frozenDock.Zone = "AMBIENT"
	s := store(frozenDock)

	r := rules.Rule{ID: "R1", Conditions: rules.Conditions{
		"product_patterns": []interface{}{"*FROZEN*"},
		"prohibited_zones": []interface{}{"AMBIENT"},
	}}
	rows := []snapshot.Row{row("P1", "DOCK-01", "Frozen Chicken Breast", "", now)}

	got, err := TemperatureZoneMismatch{}.Evaluate(ctxFor(r, rows, s, now))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "*FROZEN*", got[0].Details["matched_pattern"])
}

func TestTemperatureZoneMismatchHonorsTimeThreshold(t *testing.T) {
	now := time.Now()
	ambient := loc("DOCK-01", catalog.Dock, 10)
	ambient.Zone = "AMBIENT"
	s := store(ambient)

	r := rules.Rule{ID: "R1", Conditions: rules.Conditions{
		"product_patterns":       []interface{}{"*FROZEN*"},
		"prohibited_zones":       []interface{}{"AMBIENT"},
		"time_threshold_minutes": 30.0,
	}}
	rows := []snapshot.Row{row("P1", "DOCK-01", "Frozen Peas", "", now.Add(-5*time.Minute))}

	got, err := TemperatureZoneMismatch{}.Evaluate(ctxFor(r, rows, s, now))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTemperatureZoneMismatchIgnoresNonProhibitedZone(t *testing.T) {
	now := time.Now()
	cold := loc("FRZ-01", catalog.Storage, 10)
	cold.Zone = "FREEZER"
	s := store(cold)

	r := rules.Rule{ID: "R1", Conditions: rules.Conditions{
		"product_patterns": []interface{}{"*FROZEN*"},
		"prohibited_zones": []interface{}{"AMBIENT"},
	}}
	rows := []snapshot.Row{row("P1", "FRZ-01", "Frozen Chicken", "", now)}

	got, err := TemperatureZoneMismatch{}.Evaluate(ctxFor(r, rows, s, now))
	require.NoError(t, err)
	assert.Empty(t, got)
}
