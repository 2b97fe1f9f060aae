package evaluators

import (
	"strings"

	"github.com/wareedge/rule-engine/internal/catalog"
	"github.com/wareedge/rule-engine/internal/normalize"
)

// outOfBounds checks a structurally decoded code against a
// WarehouseConfig's declared aisle/rack/position/level ranges and names
// the first dimension that violates them, per spec §4.F.4's "impossible"
// check. ok is false when the code is within bounds.
func outOfBounds(d normalize.Decoded, cfg catalog.WarehouseConfig) (dimension string, ok bool) {
	if d.Aisle < 1 || d.Aisle > cfg.Aisles {
		return "aisle", true
	}
	if rackIndex(d.Rack) < 0 || rackIndex(d.Rack) >= cfg.Racks {
		return "rack", true
	}
	if d.Position < 1 || d.Position > cfg.Positions {
		return "position", true
	}
	if cfg.LevelNames != "" && !strings.Contains(cfg.LevelNames, d.Level) {
		return "level", true
	}
	return "", false
}

// rackIndex maps a single-letter rack identifier to its zero-based
// index (A=0, B=1, …), matching how Aisles/Racks/Positions/Levels are
// generated from a WarehouseConfig's structural parameters.
func rackIndex(rack string) int {
	if len(rack) != 1 {
		return -1
	}
	r := rack[0]
	if r < 'A' || r > 'Z' {
		return -1
	}
	return int(r - 'A')
}
