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

func TestInvalidLocationFlagsUndefinedCode(t *testing.T) {
	now := time.Now()
	s := store()
	r := rules.Rule{ID: "R1", Conditions: rules.Conditions{"check_undefined_locations": true}}
	rows := []snapshot.Row{row("P1", "GHOST-01", "x", "", now)}

	got, err := InvalidLocation{}.Evaluate(ctxFor(r, rows, s, now))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "undefined", got[0].Details["kind"])
}

func TestInvalidLocationFlagsImpossibleStructuredCode(t *testing.T) {
	now := time.Now()
	// 99-Z-999-Z is structurally shaped but wildly out of bounds for a
	// 5-aisle, 3-rack warehouse, and is not in the catalog — an
	// out-of-bounds code is by construction never a defined location, so
	// the impossible check must not depend on it resolving.
	s := store()
	r := rules.Rule{ID: "R1", Conditions: rules.Conditions{
		"check_undefined_locations":  true,
		"check_impossible_locations": true,
	}}
	rows := []snapshot.Row{row("P1", "99-Z-999-Z", "x", "", now)}

	ctx := ctxFor(r, rows, s, now)
	ctx.Config = &catalog.WarehouseConfig{Aisles: 5, Racks: 3, Positions: 20, LevelNames: "ABC"}

	got, err := InvalidLocation{}.Evaluate(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "impossible", got[0].Details["kind"])
	assert.Equal(t, "aisle", got[0].Details["dimension"])
}

func TestInvalidLocationSkipsImpossibleCheckWithoutConfig(t *testing.T) {
	now := time.Now()
	s := store(loc("99-Z-999-Z", catalog.Storage, 1))
	r := rules.Rule{ID: "R1", Conditions: rules.Conditions{
		"check_undefined_locations":  true,
		"check_impossible_locations": true,
	}}
	rows := []snapshot.Row{row("P1", "99-Z-999-Z", "x", "", now)}

	got, err := InvalidLocation{}.Evaluate(ctxFor(r, rows, s, now))
	require.NoError(t, err)
	assert.Empty(t, got)
}
