package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wareedge/rule-engine/internal/catalog"
	"github.com/wareedge/rule-engine/internal/rules"
	"github.com/wareedge/rule-engine/internal/snapshot"
)

func TestEvaluateBoundsConcurrentEvaluationsBySemaphore(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := testConfig()
	cfg.Concurrency.MaxConcurrentEvaluations = 2

	locs := []catalog.Location{
		{WarehouseID: "T1", Code: "01-A-001-A", LocationType: catalog.Storage, Capacity: 10, IsActive: true},
	}
	catalogStore := catalog.NewMemoryStore(locs)
	ruleStore := rules.NewMemoryStore()
	seedStagnantRule(ruleStore, "T1")

	orch := New(catalogStore, catalog.NewMemoryConfigStore(), ruleStore, cfg, nil)

	user := snapshot.UserContext{UserID: "u1", AccessibleTenants: []string{"T1"}}
	snap := snapshot.Snapshot{Rows: []snapshot.Row{
		{PalletID: "P1", LocationCode: "01-A-001-A", CreationDate: time.Now()},
	}}

	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := orch.Evaluate(context.Background(), user, snap)
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestEvaluateCancellationStopsBeforeNextRule(t *testing.T) {
	cfg := testConfig()

	locs := []catalog.Location{
		{WarehouseID: "T1", Code: "01-A-001-A", LocationType: catalog.Storage, Capacity: 10, IsActive: true},
	}
	catalogStore := catalog.NewMemoryStore(locs)
	ruleStore := rules.NewMemoryStore()
	seedStagnantRule(ruleStore, "T1")

	orch := New(catalogStore, catalog.NewMemoryConfigStore(), ruleStore, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := orch.Evaluate(ctx, snapshot.UserContext{
		UserID:            "u1",
		AccessibleTenants: []string{"T1"},
	}, snapshot.Snapshot{Rows: []snapshot.Row{
		{PalletID: "P1", LocationCode: "01-A-001-A", CreationDate: time.Now()},
	}})

	require.Error(t, err)
}
