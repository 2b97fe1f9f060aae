package evaluators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wareedge/rule-engine/internal/rules"
)

func TestRegistryLooksUpKnownTypes(t *testing.T) {
	reg := NewRegistry()
	for _, rt := range []rules.Type{
		rules.TypeStagnantPallets,
		rules.TypeUncoordinatedLots,
		rules.TypeOvercapacity,
		rules.TypeInvalidLocation,
		rules.TypeDataIntegrity,
		rules.TypeLocationSpecificStagnant,
		rules.TypeTemperatureZoneMismatch,
		rules.TypeLocationMappingError,
	} {
		eval, found := reg.Lookup(rt)
		assert.True(t, found, "expected evaluator for %s", rt)
		assert.NotNil(t, eval)
	}
}

func TestRegistryUnknownTypeReturnsNullEvaluator(t *testing.T) {
	reg := NewRegistry()
	eval, found := reg.Lookup(rules.Type("NOT_A_REAL_TYPE"))
	assert.False(t, found)

	got, err := eval.Evaluate(Context{})
	assert.NoError(t, err)
	assert.Empty(t, got)
}
