// Package snapshot defines the inputs the Rule Engine consumes: the
// uploaded inventory rows, the acting user's tenant access, and an
// injectable clock. None of these types know about HTTP, file formats,
// or persistence — those are external collaborators per the core's scope.
package snapshot

import "time"

// Row is one pallet record from an uploaded inventory snapshot. Column
// mapping from the source spreadsheet/file format happens externally;
// the engine only ever sees these five canonical fields.
type Row struct {
	PalletID       string
	LocationCode   string
	Description    string
	ReceiptNumber  string
	CreationDate   time.Time

	// CanonicalLocationCode is populated by the engine orchestrator once,
	// at the start of evaluation (spec §4.G.1), and read by every
	// evaluator afterwards. It is empty until the orchestrator fills it in.
	CanonicalLocationCode string
}

// Snapshot is the ordered sequence of rows uploaded for one analysis.
type Snapshot struct {
	Rows []Row
}

// DistinctLocationCodes returns the distinct raw location codes present in
// the snapshot, in first-seen order. The Orchestrator does not call it:
// it builds the Warehouse Context Resolver's input from the distinct
// canonical codes (CanonicalLocationCode) instead.
func (s Snapshot) DistinctLocationCodes() []string {
	seen := make(map[string]struct{}, len(s.Rows))
	out := make([]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		if _, ok := seen[r.LocationCode]; ok {
			continue
		}
		seen[r.LocationCode] = struct{}{}
		out = append(out, r.LocationCode)
	}
	return out
}

// UserContext identifies the acting user and the tenants they may evaluate
// against.
type UserContext struct {
	UserID            string
	AccessibleTenants []string
	DefaultTenant     string
}

// Clock supplies "now". Injectable so evaluations are reproducible in
// tests and so a running service can use a single, consistent notion of
// "now" across one evaluation.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, backed by time.Now in UTC.
type SystemClock struct{}

// Now returns the current time in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock is a Clock that always returns the same instant. Used in
// tests that need a deterministic "now".
type FixedClock time.Time

// Now returns the fixed instant.
func (f FixedClock) Now() time.Time { return time.Time(f) }
