package plant

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

type fixedChooser struct{ idx int }

func (c fixedChooser) Pick(n int) int {
	if c.idx >= n {
		return n - 1
	}
	return c.idx
}

func TestThresholds(t *testing.T) {
	cases := []struct {
		phase int
		want  int
		ok    bool
	}{
		{1, 1, true},
		{2, 2, true},
		{3, 3, true},
		{4, 0, false},
		{0, 0, false},
	}
	for _, c := range cases {
		got, ok := Threshold(c.phase)
		if ok != c.ok || got != c.want {
			t.Fatalf("Threshold(%d) = (%d, %v), want (%d, %v)", c.phase, got, ok, c.want, c.ok)
		}
	}
}

func TestIsEligible(t *testing.T) {
	if IsEligible(1, 0) {
		t.Fatalf("phase 1 with 0 completions should not be eligible")
	}
	if !IsEligible(1, 1) {
		t.Fatalf("phase 1 with 1 completion should be eligible")
	}
	if IsEligible(2, 1) {
		t.Fatalf("phase 2 with 1 completion should not be eligible")
	}
	if !IsEligible(3, 3) {
		t.Fatalf("phase 3 with 3 completions should be eligible")
	}
	if IsEligible(4, 100) {
		t.Fatalf("terminal phase must never be eligible")
	}
}

func TestBranchGraphConsistency(t *testing.T) {
	// Every branch target must be a valid variant of the next phase, and every
	// non-terminal variant must have exactly two branches.
	if got := Branches("1"); len(got) != 2 {
		t.Fatalf("phase-1 root should branch to 2 variants, got %v", got)
	}
	for _, v := range Variants(2) {
		next := Branches(v)
		if len(next) != 2 {
			t.Fatalf("variant %s should branch to 2 variants, got %v", v, next)
		}
		for _, n := range next {
			if !ValidVariant(3, n) {
				t.Fatalf("branch target %s of %s is not a phase-3 variant", n, v)
			}
		}
	}
	for _, v := range Variants(3) {
		next := Branches(v)
		if len(next) != 2 {
			t.Fatalf("variant %s should branch to 2 variants, got %v", v, next)
		}
		for _, n := range next {
			if !ValidVariant(4, n) {
				t.Fatalf("branch target %s of %s is not a phase-4 variant", n, v)
			}
		}
	}
	for _, v := range Variants(4) {
		if got := Branches(v); len(got) != 0 {
			t.Fatalf("phase-4 variant %s should have no branches, got %v", v, got)
		}
	}
}

func TestSelectNext(t *testing.T) {
	// Phase 1 keys on the root, not the POT variant.
	phase, variant := SelectNext(fixedChooser{0}, 1, VariantPot)
	if phase != 2 || variant != "2A" {
		t.Fatalf("SelectNext from phase 1 = (%d, %s), want (2, 2A)", phase, variant)
	}
	phase, variant = SelectNext(fixedChooser{1}, 1, VariantPot)
	if phase != 2 || variant != "2B" {
		t.Fatalf("SelectNext from phase 1 = (%d, %s), want (2, 2B)", phase, variant)
	}

	phase, variant = SelectNext(fixedChooser{1}, 2, "2B")
	if phase != 3 || variant != "3D" {
		t.Fatalf("SelectNext from 2B = (%d, %s), want (3, 3D)", phase, variant)
	}

	phase, variant = SelectNext(fixedChooser{0}, 3, "3C")
	if phase != 4 || variant != "4E" {
		t.Fatalf("SelectNext from 3C = (%d, %s), want (4, 4E)", phase, variant)
	}

	// Terminal and unknown states come back unchanged.
	phase, variant = SelectNext(fixedChooser{0}, 4, "4A")
	if phase != 4 || variant != "4A" {
		t.Fatalf("SelectNext at terminal = (%d, %s), want (4, 4A)", phase, variant)
	}
	phase, variant = SelectNext(fixedChooser{0}, 2, "ZZ")
	if phase != 2 || variant != "ZZ" {
		t.Fatalf("SelectNext with unknown variant = (%d, %s), want unchanged", phase, variant)
	}
}

func TestSelectNextRandomStaysInGraph(t *testing.T) {
	chooser := NewChooser()
	for i := 0; i < 50; i++ {
		phase, variant := 1, VariantPot
		for phase < PhaseTerminal {
			nextPhase, nextVariant := SelectNext(chooser, phase, variant)
			if nextPhase != phase+1 {
				t.Fatalf("advance from phase %d went to %d", phase, nextPhase)
			}
			if !ValidVariant(nextPhase, nextVariant) {
				t.Fatalf("advance produced invalid variant %s for phase %d", nextVariant, nextPhase)
			}
			phase, variant = nextPhase, nextVariant
		}
	}
}

func TestAsset(t *testing.T) {
	if got := Asset(1, VariantPot); got != "plant_phase1_POT.png" {
		t.Fatalf("Asset(1, POT) = %q", got)
	}
	if got := Asset(4, "4H"); got != "plant_phase4_4H.png" {
		t.Fatalf("Asset(4, 4H) = %q", got)
	}
	if got := Asset(5, "X"); got != "" {
		t.Fatalf("Asset for unknown pair should be empty, got %q", got)
	}
}

func TestNewPlantState(t *testing.T) {
	st := NewPlantState(uuid.New(), time.Now())
	if st.Phase != PhaseSeed || st.Variant != VariantPot {
		t.Fatalf("initial state = phase %d variant %s", st.Phase, st.Variant)
	}
	if st.TasksCompletedSincePhase != 0 || st.TasksCompletedTotal != 0 {
		t.Fatalf("initial counters should be zero")
	}
	if st.AssetFilename != "plant_phase1_POT.png" {
		t.Fatalf("initial asset = %q", st.AssetFilename)
	}
	if st.LastUpdated.IsZero() || st.CreatedAt.IsZero() || st.UpdatedAt.IsZero() {
		t.Fatalf("initial timestamps must be set: %+v", st)
	}
	if st.Terminal() {
		t.Fatalf("initial state should not be terminal")
	}

	cp := st.Clone()
	cp.Phase = 3
	if st.Phase != PhaseSeed {
		t.Fatalf("Clone should not alias the original")
	}
}
