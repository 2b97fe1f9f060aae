package correlate

// Correlate is the convenience entry point the Orchestrator calls once
// per evaluation: given the distinct pallet IDs carried by this
// evaluation's STAGNANT_PALLETS and OVERCAPACITY anomalies, it returns
// the pallet IDs present in both.
func Correlate(stagnantPalletIDs, overcapacityPalletIDs []string) ([]string, error) {
	if len(stagnantPalletIDs) == 0 || len(overcapacityPalletIDs) == 0 {
		return nil, nil
	}

	eng, err := New()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(stagnantPalletIDs))
	for _, id := range stagnantPalletIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if err := eng.AssertStagnant(id); err != nil {
			return nil, err
		}
	}

	seen = make(map[string]bool, len(overcapacityPalletIDs))
	for _, id := range overcapacityPalletIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if err := eng.AssertOvercapacity(id); err != nil {
			return nil, err
		}
	}

	return eng.Correlated()
}
