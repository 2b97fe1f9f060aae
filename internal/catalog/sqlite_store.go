package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wareedge/rule-engine/internal/logging"
	"github.com/wareedge/rule-engine/internal/normalize"
)

// SQLiteStore is the durable Location Catalog, keyed by (warehouse_id,
// code) with a secondary index on (warehouse_id, warehouse_config_id),
// matching the logical persistence contract in spec §6. Reads take an
// RLock; the writer paths (Upsert, ClearConfigBinding) take the full lock, so a
// Store.AllLocations/Snapshot call can never race with a concurrent edit
// mid-read (spec §5: "catalog is read-only during an evaluation").
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the catalog database at path
// and ensures its schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	timer := logging.StartTimer(logging.CategoryCatalog, "NewSQLiteStore")
	defer timer.Stop()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate catalog db: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS locations (
	warehouse_id         TEXT NOT NULL,
	code                 TEXT NOT NULL,
	warehouse_config_id  TEXT NOT NULL DEFAULT '',
	location_type        TEXT NOT NULL,
	capacity             INTEGER NOT NULL,
	zone                 TEXT NOT NULL DEFAULT '',
	pattern              TEXT NOT NULL DEFAULT '',
	allowed_products     TEXT NOT NULL DEFAULT '[]',
	special_requirements TEXT NOT NULL DEFAULT '{}',
	structure            TEXT NOT NULL DEFAULT '',
	is_active            INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY (warehouse_id, code)
);
CREATE INDEX IF NOT EXISTS idx_locations_config
	ON locations (warehouse_id, warehouse_config_id);
`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Upsert inserts or replaces a location row. Deleting a warehouse_config
// is handled by ClearConfigBinding, not here (spec §3: "Deleting a
// warehouse_config sets bound locations' warehouse_config_id to null;
// locations are never cascade-deleted").
func (s *SQLiteStore) Upsert(l Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := json.Marshal(l.AllowedProducts)
	if err != nil {
		return fmt.Errorf("marshal allowed_products: %w", err)
	}
	reqs, err := json.Marshal(l.SpecialRequirements)
	if err != nil {
		return fmt.Errorf("marshal special_requirements: %w", err)
	}
	var structureJSON string
	if l.Structure != nil {
		b, err := json.Marshal(l.Structure)
		if err != nil {
			return fmt.Errorf("marshal structure: %w", err)
		}
		structureJSON = string(b)
	}

	_, err = s.db.Exec(`
		INSERT INTO locations
			(warehouse_id, code, warehouse_config_id, location_type, capacity,
			 zone, pattern, allowed_products, special_requirements, structure, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(warehouse_id, code) DO UPDATE SET
			warehouse_config_id=excluded.warehouse_config_id,
			location_type=excluded.location_type,
			capacity=excluded.capacity,
			zone=excluded.zone,
			pattern=excluded.pattern,
			allowed_products=excluded.allowed_products,
			special_requirements=excluded.special_requirements,
			structure=excluded.structure,
			is_active=excluded.is_active
	`, l.WarehouseID, l.Code, l.WarehouseConfigID, string(l.LocationType), l.Capacity,
		l.Zone, l.Pattern, string(products), string(reqs), structureJSON, boolToInt(l.IsActive))
	if err != nil {
		return fmt.Errorf("upsert location %s/%s: %w", l.WarehouseID, l.Code, err)
	}
	return nil
}

// ClearConfigBinding sets warehouse_config_id to '' for every location
// bound to configID, implementing the soft-dereference in spec §3/§9.
func (s *SQLiteStore) ClearConfigBinding(tenant, configID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`UPDATE locations SET warehouse_config_id='' WHERE warehouse_id=? AND warehouse_config_id=?`, tenant, configID)
	if err != nil {
		return fmt.Errorf("clear config binding: %w", err)
	}
	return nil
}

// GetByCode implements Store.
func (s *SQLiteStore) GetByCode(tenant, code string, activeConfigID string) (Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := normalize.Canonical(code)
	row := s.db.QueryRow(`SELECT warehouse_id, code, warehouse_config_id, location_type, capacity,
		zone, pattern, allowed_products, special_requirements, structure, is_active
		FROM locations WHERE warehouse_id=? AND code=?`, tenant, c)

	l, err := scanLocation(row)
	if err != nil {
		return Location{}, false
	}
	if !visible(l, activeConfigID) {
		return Location{}, false
	}
	return l, true
}

// Resolve implements Store.
func (s *SQLiteStore) Resolve(tenant, rawCode string, activeConfigID string) (Location, bool) {
	if l, ok := s.GetByCode(tenant, rawCode, activeConfigID); ok {
		return l, true
	}
	c := normalize.Canonical(rawCode)

	s.mu.RLock()
	candidates := s.queryPatterned(tenant)
	s.mu.RUnlock()

	var matches []Location
	for _, l := range candidates {
		if !visible(l, activeConfigID) {
			continue
		}
		if normalize.GlobMatch(l.Pattern, c) {
			matches = append(matches, l)
		}
	}
	if len(matches) == 0 {
		return Location{}, false
	}
	sort.Slice(matches, func(i, j int) bool {
		si, sj := specificity(matches[i].Pattern), specificity(matches[j].Pattern)
		if si != sj {
			return si > sj
		}
		if matches[i].IsActive != matches[j].IsActive {
			return matches[i].IsActive
		}
		return matches[i].Code < matches[j].Code
	})
	return matches[0], true
}

func (s *SQLiteStore) queryPatterned(tenant string) []Location {
	rows, err := s.db.Query(`SELECT warehouse_id, code, warehouse_config_id, location_type, capacity,
		zone, pattern, allowed_products, special_requirements, structure, is_active
		FROM locations WHERE warehouse_id=? AND pattern != ''`, tenant)
	if err != nil {
		logging.Get(logging.CategoryCatalog).Error("queryPatterned failed for tenant %s: %v", tenant, err)
		return nil
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			continue
		}
		out = append(out, l)
	}
	return out
}

// CountBy implements Store.
func (s *SQLiteStore) CountBy(tenant string, lt LocationType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	row := s.db.QueryRow(`SELECT COUNT(*) FROM locations WHERE warehouse_id=? AND location_type=? AND is_active=1`, tenant, string(lt))
	_ = row.Scan(&n)
	return n
}

// IterActive implements Store.
func (s *SQLiteStore) IterActive(tenant string) []Location {
	return s.queryAll(tenant, true)
}

// AllLocations implements Store.
func (s *SQLiteStore) AllLocations(tenant string) []Location {
	return s.queryAll(tenant, false)
}

func (s *SQLiteStore) queryAll(tenant string, activeOnly bool) []Location {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := `SELECT warehouse_id, code, warehouse_config_id, location_type, capacity,
		zone, pattern, allowed_products, special_requirements, structure, is_active
		FROM locations WHERE warehouse_id=?`
	args := []interface{}{tenant}
	if activeOnly {
		q += ` AND is_active=1`
	}
	q += ` ORDER BY code`

	rows, err := s.db.Query(q, args...)
	if err != nil {
		logging.Get(logging.CategoryCatalog).Error("queryAll failed for tenant %s: %v", tenant, err)
		return nil
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			continue
		}
		out = append(out, l)
	}
	return out
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanLocation(row scanner) (Location, error) {
	var l Location
	var locType, products, reqs, structureJSON string
	var active int
	if err := row.Scan(&l.WarehouseID, &l.Code, &l.WarehouseConfigID, &locType, &l.Capacity,
		&l.Zone, &l.Pattern, &products, &reqs, &structureJSON, &active); err != nil {
		return Location{}, err
	}
	l.LocationType = LocationType(locType)
	l.IsActive = active != 0
	_ = json.Unmarshal([]byte(products), &l.AllowedProducts)
	_ = json.Unmarshal([]byte(reqs), &l.SpecialRequirements)
	if strings.TrimSpace(structureJSON) != "" {
		var st Structure
		if err := json.Unmarshal([]byte(structureJSON), &st); err == nil {
			l.Structure = &st
		}
	}
	return l, nil
}

func visible(l Location, activeConfigID string) bool {
	if activeConfigID == "" {
		return l.WarehouseConfigID == ""
	}
	return l.WarehouseConfigID == "" || l.WarehouseConfigID == activeConfigID
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
