package fixture

import "testing"

func TestFixtureDecodes(t *testing.T) {
	props := Properties()
	if len(props) == 0 {
		t.Fatalf("no fixture properties")
	}
	seen := map[int64]bool{}
	for _, p := range props {
		if seen[p.ID] {
			t.Errorf("duplicate property id %d", p.ID)
		}
		seen[p.ID] = true
		if p.ListPrice <= 0 || p.SquareFeet <= 0 || p.Address == "" {
			t.Errorf("property %d is incomplete: %+v", p.ID, p)
		}
	}

	for _, s := range LocationScores() {
		for _, v := range []float64{s.OverallScore, s.PerformanceScore, s.RiskScore, s.DemandScore, s.SupplyScore} {
			if v < 0 || v > 10 {
				t.Errorf("score %d (%s) out of range: %v", s.ID, s.Address, v)
			}
		}
	}
}

func TestLookupAndCopy(t *testing.T) {
	p, ok := Property(2)
	if !ok || p.Address != "12 York Street, Unit 5601" {
		t.Errorf("Property(2) = %+v, %v", p, ok)
	}
	if _, ok := Property(999); ok {
		t.Errorf("Property(999) found")
	}
	if s, ok := LocationScore(1); !ok || s.Address != "Downtown Toronto" {
		t.Errorf("LocationScore(1) = %+v, %v", s, ok)
	}

	props := Properties()
	props[0].City = "Mutated"
	if Properties()[0].City == "Mutated" {
		t.Errorf("Properties returned shared backing array")
	}
}
