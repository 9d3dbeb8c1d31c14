package roll

import (
	"testing"
)

func TestRollBasic(t *testing.T) {
	res, err := Roll("3d6")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(res.RawRolls) != 3 {
		t.Fatalf("expected 3 raw rolls, got %d", len(res.RawRolls))
	}

	for _, v := range res.RawRolls {
		if v < 1 || v > 6 {
			t.Errorf("roll out of bounds for d6: %d", v)
		}
	}
}

func TestRollKeepHighest(t *testing.T) {
	defer ResetMockDice()
	MockDice([]int{4, 18})

	res, err := Roll("2d20kh1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if res.Total != 18 {
		t.Errorf("expected kept highest 18, got %d", res.Total)
	}
	if len(res.Dropped) != 1 || res.Dropped[0] != 4 {
		t.Errorf("expected dropped [4], got %v", res.Dropped)
	}
}

func TestRollKeepLowest(t *testing.T) {
	defer ResetMockDice()
	MockDice([]int{4, 18})

	res, err := Roll("2d20kl1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if res.Total != 4 {
		t.Errorf("expected kept lowest 4, got %d", res.Total)
	}
}

func TestRollAdvantageShorthand(t *testing.T) {
	defer ResetMockDice()
	MockDice([]int{9, 2})

	// The count prefix is irrelevant: advantage is always two dice, keep one.
	res, err := Roll("1d20a")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(res.RawRolls) != 2 {
		t.Fatalf("expected 2 raw rolls, got %d", len(res.RawRolls))
	}
	if res.Total != 9 {
		t.Errorf("expected kept highest 9, got %d", res.Total)
	}
}

func TestRollKeepClampedToCount(t *testing.T) {
	defer ResetMockDice()
	MockDice([]int{4, 18})

	res, err := Roll("2d20kh5")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Total != 22 {
		t.Errorf("expected all dice kept (22), got %d", res.Total)
	}
	if len(res.Dropped) != 0 {
		t.Errorf("expected nothing dropped, got %v", res.Dropped)
	}
}

func TestRollModifier(t *testing.T) {
	res, err := Roll("1d1+5")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if res.Total != 6 {
		t.Errorf("expected total 6 (1 + 5), got %d", res.Total)
	}
}

func TestRollInvalid(t *testing.T) {
	if _, err := Roll("banana"); err == nil {
		t.Error("expected error for non-dice input")
	}
	if _, err := Roll("1d0"); err == nil {
		t.Error("expected error for zero-sided die")
	}
	if _, err := Roll(""); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestTotalCompoundFormula(t *testing.T) {
	defer ResetMockDice()
	MockDice([]int{3, 5, 2})

	total, breakdown, err := Total("2d6+1d4+3")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if total != 13 { // 3+5 + 2 + 3
		t.Errorf("expected 13, got %d", total)
	}
	if breakdown == "" {
		t.Error("expected a per-term breakdown")
	}
}

func TestTotalSubtraction(t *testing.T) {
	defer ResetMockDice()
	MockDice([]int{10})

	total, _, err := Total("1d20-2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if total != 8 {
		t.Errorf("expected 8, got %d", total)
	}
}

func TestTotalRejectsUnresolvedTerms(t *testing.T) {
	if _, _, err := Total("1d20+unknownVar"); err == nil {
		t.Error("expected error for unresolved term")
	}
}
