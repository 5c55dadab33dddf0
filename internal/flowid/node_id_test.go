package flowid

import "testing"

// spec §8 "Round trips": DataFlowNodeId.localize(f,o).unlocalize() = self.
func TestLocalizeUnlocalizeRoundTrips(t *testing.T) {
	original := CallTo("my_func")
	localized := original.Localize("a.php", 10, 20)
	if !localized.Localized {
		t.Fatal("expected Localize to mark the id as localized")
	}
	back := localized.Unlocalize()
	if back != original {
		t.Fatalf("round trip mismatch: got %+v, want %+v", back, original)
	}
}

func TestUnlocalizedClearsLocalization(t *testing.T) {
	localized := Var("$x").Localize("a.php", 1, 2)
	unspec := localized.Unlocalized()
	if unspec.Localized {
		t.Fatal("expected Unlocalized to clear the Localized flag")
	}
	if unspec.Local != (Localization{}) {
		t.Fatal("expected Unlocalized to zero the Local field")
	}
}

func TestIDEqualityIsByValue(t *testing.T) {
	a := Param("f", "x")
	b := Param("f", "x")
	if a != b {
		t.Fatal("expected two IDs built from identical inputs to compare equal")
	}
	c := Param("f", "y")
	if a == c {
		t.Fatal("expected IDs with different Name to compare unequal")
	}
}
