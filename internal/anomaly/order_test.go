package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wareedge/rule-engine/internal/rules"
)

func TestSortOrdersByPriorityThenPrecedenceThenCategoryThenRuleThenPallet(t *testing.T) {
	in := []Anomaly{
		{RuleID: "R2", PalletID: "P1", Priority: rules.Medium, PrecedenceLevel: 0, Category: rules.Space},
		{RuleID: "R1", PalletID: "P2", Priority: rules.VeryHigh, PrecedenceLevel: 1, Category: rules.FlowTime},
		{RuleID: "R1", PalletID: "P1", Priority: rules.VeryHigh, PrecedenceLevel: 1, Category: rules.FlowTime},
		{RuleID: "R3", PalletID: "P1", Priority: rules.VeryHigh, PrecedenceLevel: 0, Category: rules.Product},
	}
	Sort(in)

	got := make([]string, len(in))
	for i, a := range in {
		got[i] = a.RuleID + "/" + a.PalletID
	}
	assert.Equal(t, []string{"R3/P1", "R1/P1", "R1/P2", "R2/P1"}, got)
}

func TestSortIsStableOnFullTies(t *testing.T) {
	in := []Anomaly{
		{RuleID: "R1", PalletID: "P1", Details: map[string]interface{}{"order": 1}},
		{RuleID: "R1", PalletID: "P1", Details: map[string]interface{}{"order": 2}},
	}
	Sort(in)
	assert.Equal(t, 1, in[0].Details["order"])
	assert.Equal(t, 2, in[1].Details["order"])
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	in := []Anomaly{
		{RuleID: "R1", PalletID: "P1", LocationCode: "A-01", Details: map[string]interface{}{"which": "first"}},
		{RuleID: "R1", PalletID: "P1", LocationCode: "A-01", Details: map[string]interface{}{"which": "second"}},
		{RuleID: "R1", PalletID: "P2", LocationCode: "A-01"},
	}
	got := Dedupe(in)
	assert.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Details["which"])
}
