package evaluators

import (
	"time"

	"github.com/wareedge/rule-engine/internal/catalog"
	"github.com/wareedge/rule-engine/internal/rules"
	"github.com/wareedge/rule-engine/internal/snapshot"
)

const testTenant = "T1"

func loc(code string, lt catalog.LocationType, capacity int) catalog.Location {
	return catalog.Location{
		WarehouseID: testTenant, Code: code, LocationType: lt, Capacity: capacity, IsActive: true,
	}
}

func store(locs ...catalog.Location) catalog.Store {
	return catalog.NewMemoryStore(locs)
}

func ctxFor(rule rules.Rule, rows []snapshot.Row, s catalog.Store, now time.Time) Context {
	return Context{
		Rule:     rule,
		Rows:     rows,
		Resolver: NewResolver(s, testTenant, ""),
		Now:      now,
	}
}

func row(pallet, code, desc, receipt string, created time.Time) snapshot.Row {
	return snapshot.Row{
		PalletID: pallet, LocationCode: code, CanonicalLocationCode: code,
		Description: desc, ReceiptNumber: receipt, CreationDate: created,
	}
}
