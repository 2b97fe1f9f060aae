package catalog

import "fmt"

// ConfigStore manages WarehouseConfig records: at most one active config
// per (warehouse_id, user_id), selecting which bound locations are
// visible to that user (spec §3).
type ConfigStore interface {
	// ActiveConfig returns the active WarehouseConfig for (tenant, userID),
	// if one is selected.
	ActiveConfig(tenant, userID string) (WarehouseConfig, bool)

	// Save upserts a config. If cfg.IsActive, any other active config for
	// the same (tenant, userID) is deactivated first, enforcing the
	// at-most-one invariant transactionally rather than relying on a DB
	// constraint.
	Save(cfg WarehouseConfig) error

	// Get returns a config by ID regardless of active state.
	Get(tenant, id string) (WarehouseConfig, bool)
}

// MemoryConfigStore is an in-process ConfigStore.
type MemoryConfigStore struct {
	// byTenant[warehouseID][configID] -> WarehouseConfig
	byTenant map[string]map[string]WarehouseConfig
}

// NewMemoryConfigStore returns an empty MemoryConfigStore.
func NewMemoryConfigStore() *MemoryConfigStore {
	return &MemoryConfigStore{byTenant: make(map[string]map[string]WarehouseConfig)}
}

func (m *MemoryConfigStore) ActiveConfig(tenant, userID string) (WarehouseConfig, bool) {
	for _, cfg := range m.byTenant[tenant] {
		if cfg.UserID == userID && cfg.IsActive {
			return cfg, true
		}
	}
	return WarehouseConfig{}, false
}

func (m *MemoryConfigStore) Get(tenant, id string) (WarehouseConfig, bool) {
	cfg, ok := m.byTenant[tenant][id]
	return cfg, ok
}

func (m *MemoryConfigStore) Save(cfg WarehouseConfig) error {
	if cfg.WarehouseID == "" || cfg.ID == "" {
		return fmt.Errorf("catalog: config requires WarehouseID and ID")
	}

	tenantCfgs, ok := m.byTenant[cfg.WarehouseID]
	if !ok {
		tenantCfgs = make(map[string]WarehouseConfig)
		m.byTenant[cfg.WarehouseID] = tenantCfgs
	}

	if cfg.IsActive {
		for id, existing := range tenantCfgs {
			if existing.UserID == cfg.UserID && existing.IsActive && id != cfg.ID {
				existing.IsActive = false
				tenantCfgs[id] = existing
			}
		}
	}

	tenantCfgs[cfg.ID] = cfg
	return nil
}
