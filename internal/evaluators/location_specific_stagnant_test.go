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

func TestLocationSpecificStagnantGatesOnPattern(t *testing.T) {
	now := time.Now()
	s := store(loc("DOCK-01", catalog.Dock, 10), loc("DOCK-02", catalog.Dock, 10))
	r := rules.Rule{ID: "R1", Conditions: rules.Conditions{
		"location_pattern":     "DOCK-01",
		"time_threshold_hours": 1.0,
	}}
	rows := []snapshot.Row{
		row("P1", "DOCK-01", "x", "", now.Add(-10*time.Hour)),
		row("P2", "DOCK-02", "x", "", now.Add(-10*time.Hour)),
	}

	got, err := LocationSpecificStagnant{}.Evaluate(ctxFor(r, rows, s, now))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "P1", got[0].PalletID)
}
