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

func TestUncoordinatedLotsFlagsStragglers(t *testing.T) {
	now := time.Now()
	s := store(loc("RECV-01", catalog.Receiving, 100), loc("A-01", catalog.Storage, 100))

	r := rules.Rule{ID: "R1", Conditions: rules.Conditions{
		"completion_threshold": 0.8,
		"location_types":       []interface{}{"RECEIVING"},
	}}

	rows := []snapshot.Row{
		row("P1", "RECV-01", "x", "LOT1", now),
		row("P2", "A-01", "x", "LOT1", now),
		row("P3", "A-01", "x", "LOT1", now),
		row("P4", "A-01", "x", "LOT1", now),
		row("P5", "A-01", "x", "LOT1", now),
	}

	got, err := UncoordinatedLots{}.Evaluate(ctxFor(r, rows, s, now))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "P1", got[0].PalletID)
	assert.Equal(t, 1, got[0].Details["straggler_count"])
}

func TestUncoordinatedLotsIgnoresLotsWithNoMigration(t *testing.T) {
	now := time.Now()
	s := store(loc("RECV-01", catalog.Receiving, 100))
	r := rules.Rule{ID: "R1", Conditions: rules.Conditions{
		"completion_threshold": 0.8,
		"location_types":       []interface{}{"RECEIVING"},
	}}
	rows := []snapshot.Row{
		row("P1", "RECV-01", "x", "LOT1", now),
		row("P2", "RECV-01", "x", "LOT1", now),
	}

	got, err := UncoordinatedLots{}.Evaluate(ctxFor(r, rows, s, now))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUncoordinatedLotsIgnoresBelowCompletionThreshold(t *testing.T) {
	now := time.Now()
	s := store(loc("RECV-01", catalog.Receiving, 100), loc("A-01", catalog.Storage, 100))
	r := rules.Rule{ID: "R1", Conditions: rules.Conditions{
		"completion_threshold": 0.9,
		"location_types":       []interface{}{"RECEIVING"},
	}}
	rows := []snapshot.Row{
		row("P1", "RECV-01", "x", "LOT1", now),
		row("P2", "A-01", "x", "LOT1", now),
	}

	got, err := UncoordinatedLots{}.Evaluate(ctxFor(r, rows, s, now))
	require.NoError(t, err)
	assert.Empty(t, got)
}
