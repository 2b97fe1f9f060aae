// Package correlate runs the Orchestrator's correlation pass (spec
// §4.G.5): given the pallet IDs carried by STAGNANT_PALLETS and
// OVERCAPACITY anomalies from one evaluation, it returns the pallet IDs
// that appear in both, so the Orchestrator can link those anomalies via
// correlated_anomaly_ids. No new anomalies are synthesized here.
//
// Adapted from the teacher's internal/mangle.Engine (a general-purpose
// Google Mangle wrapper used there to re-evaluate a whole Datalog
// knowledge graph incrementally). This package keeps only what a
// single, short-lived join query needs: declare two fact predicates,
// assert pallet IDs into them, run one join rule, and read back its
// result — a fresh store is built per evaluation rather than kept
// warm, since the correlation pass runs once per Report and any
// knowledge doesn't outlive it.
package correlate

import (
	"bytes"
	"fmt"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"
)

const schema = `
Decl stagnant_pallet(PalletID).
Decl overcapacity_pallet(PalletID).
Decl correlated_pallet(PalletID).

correlated_pallet(PalletID) :- stagnant_pallet(PalletID), overcapacity_pallet(PalletID).
`

// Engine holds one evaluation's correlation fact store. Build a new
// Engine per Report; it is not safe or meant to be reused across
// evaluations.
type Engine struct {
	store       factstore.ConcurrentFactStore
	programInfo *analysis.ProgramInfo
	predicates  map[string]ast.PredicateSym
}

// New parses the join schema and returns a ready-to-use Engine.
func New() (*Engine, error) {
	unit, err := parse.Unit(bytes.NewReader([]byte(schema)))
	if err != nil {
		return nil, fmt.Errorf("correlate: parse schema: %w", err)
	}

	programInfo, err := analysis.AnalyzeOneUnit(parse.SourceUnit{Clauses: unit.Clauses, Decls: unit.Decls}, nil)
	if err != nil {
		return nil, fmt.Errorf("correlate: analyze schema: %w", err)
	}

	predicates := make(map[string]ast.PredicateSym, len(programInfo.Decls))
	for sym := range programInfo.Decls {
		predicates[sym.Symbol] = sym
	}

	return &Engine{
		store:       factstore.NewConcurrentFactStore(factstore.NewSimpleInMemoryStore()),
		programInfo: programInfo,
		predicates:  predicates,
	}, nil
}

func (e *Engine) assert(predicate, palletID string) error {
	sym, ok := e.predicates[predicate]
	if !ok {
		return fmt.Errorf("correlate: predicate %s not declared", predicate)
	}
	atom := ast.Atom{Predicate: sym, Args: []ast.BaseTerm{ast.String(palletID)}}
	e.store.Add(atom)
	return nil
}

// AssertStagnant records that palletID appeared in a STAGNANT_PALLETS
// anomaly this evaluation.
func (e *Engine) AssertStagnant(palletID string) error {
	return e.assert("stagnant_pallet", palletID)
}

// AssertOvercapacity records that palletID appeared in an OVERCAPACITY
// anomaly this evaluation.
func (e *Engine) AssertOvercapacity(palletID string) error {
	return e.assert("overcapacity_pallet", palletID)
}

// Correlated evaluates the join rule and returns the pallet IDs present
// in both stagnant_pallet and overcapacity_pallet.
func (e *Engine) Correlated() ([]string, error) {
	if _, err := mengine.EvalProgramWithStats(e.programInfo, e.store); err != nil {
		return nil, fmt.Errorf("correlate: evaluate join: %w", err)
	}

	sym, ok := e.predicates["correlated_pallet"]
	if !ok {
		return nil, fmt.Errorf("correlate: correlated_pallet not declared")
	}

	var ids []string
	err := e.store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
		if len(atom.Args) != 1 {
			return nil
		}
		if c, ok := atom.Args[0].(ast.Constant); ok && c.Type == ast.StringType {
			ids = append(ids, c.Symbol)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("correlate: read correlated_pallet: %w", err)
	}
	return ids, nil
}
