package plant

import "math/rand/v2"

// The progression graph is a binary tree of depth 3 rooted at the phase-1 pot:
// phase 1 branches to {2A,2B}, each phase-2 variant to two phase-3 variants,
// each phase-3 variant to two phase-4 leaves. Phase 4 is terminal.

var manifest = map[int]map[string]string{
	1: {VariantPot: "plant_phase1_POT.png"},
	2: {"2A": "plant_phase2_2A.png", "2B": "plant_phase2_2B.png"},
	3: {
		"3A": "plant_phase3_3A.png",
		"3B": "plant_phase3_3B.png",
		"3C": "plant_phase3_3C.png",
		"3D": "plant_phase3_3D.png",
	},
	4: {
		"4A": "plant_phase4_4A.png",
		"4B": "plant_phase4_4B.png",
		"4C": "plant_phase4_4C.png",
		"4D": "plant_phase4_4D.png",
		"4E": "plant_phase4_4E.png",
		"4F": "plant_phase4_4F.png",
		"4G": "plant_phase4_4G.png",
		"4H": "plant_phase4_4H.png",
	},
}

var branches = map[string][]string{
	"1":  {"2A", "2B"},
	"2A": {"3A", "3B"},
	"2B": {"3C", "3D"},
	"3A": {"4A", "4B"},
	"3B": {"4C", "4D"},
	"3C": {"4E", "4F"},
	"3D": {"4G", "4H"},
}

var thresholds = map[int]int{1: 1, 2: 2, 3: 3}

// Chooser picks a branch index. The default is uniform random; tests inject a
// deterministic one. Branch choice is cosmetic variety, not correctness.
type Chooser interface {
	Pick(n int) int
}

type randChooser struct{}

func (randChooser) Pick(n int) int { return rand.IntN(n) }

// NewChooser returns the uniform random chooser used in production.
func NewChooser() Chooser { return randChooser{} }

// Variants returns the valid variant codes for a phase.
func Variants(phase int) []string {
	m, ok := manifest[phase]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	return out
}

// ValidVariant reports whether (phase, variant) is a key in the variant table.
func ValidVariant(phase int, variant string) bool {
	m, ok := manifest[phase]
	if !ok {
		return false
	}
	_, ok = m[variant]
	return ok
}

// Branches returns the candidate next-variants reachable from a phase-1 state
// or from a specific variant key.
func Branches(key string) []string {
	return branches[key]
}

// Threshold returns the task completions required before leaving a phase, and
// whether that phase has a threshold at all (phase 4 does not).
func Threshold(phase int) (int, bool) {
	t, ok := thresholds[phase]
	return t, ok
}

// IsEligible reports whether tasksSincePhase completions satisfy the phase's
// advancement threshold. Terminal phase is never eligible.
func IsEligible(phase, tasksSincePhase int) bool {
	if phase >= PhaseTerminal {
		return false
	}
	t, ok := thresholds[phase]
	return ok && tasksSincePhase >= t
}

// SelectNext picks the next (phase, variant). Terminal states and states with
// no known branches return the input unchanged as a safe no-op.
func SelectNext(chooser Chooser, phase int, variant string) (int, string) {
	if phase >= PhaseTerminal {
		return phase, variant
	}
	key := variant
	if phase == PhaseSeed {
		key = "1"
	}
	next := branches[key]
	if len(next) == 0 {
		return phase, variant
	}
	return phase + 1, next[chooser.Pick(len(next))]
}

// Asset returns the manifest filename for (phase, variant), or "" when the
// pair is not in the manifest.
func Asset(phase int, variant string) string {
	m, ok := manifest[phase]
	if !ok {
		return ""
	}
	return m[variant]
}
