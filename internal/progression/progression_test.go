package progression

import (
	"testing"

	"github.com/talgya/shopfloor/internal/shop"
)

func TestXPToNextCurve(t *testing.T) {
	if got := XPToNext(1); got != 120 {
		t.Fatalf("XPToNext(1) = %d, want 120", got)
	}
	if got := XPToNext(10); got != 310 {
		t.Fatalf("XPToNext(10) = %d, want 310", got)
	}
	// Monotone below the cap.
	for lvl := 1; lvl < 200; lvl++ {
		if XPToNext(lvl+1) <= XPToNext(lvl) {
			t.Fatalf("curve not increasing at level %d", lvl)
		}
	}
	if got := XPToNext(MaxLevel); got != 0 {
		t.Fatalf("XPToNext at cap = %d, want 0", got)
	}
	// Out-of-range levels clamp instead of underflowing the formula.
	if XPToNext(0) != XPToNext(1) || XPToNext(-5) != XPToNext(1) {
		t.Fatalf("levels below 1 should clamp to level 1")
	}
}

func TestAddXPMultiLevelUp(t *testing.T) {
	p := NewProgression()
	// One grant big enough for three level-ups plus 5 XP left over.
	gained := p.AddXP(XPToNext(1) + XPToNext(2) + XPToNext(3) + 5)
	if gained != 3 {
		t.Fatalf("gained %d levels, want 3", gained)
	}
	if p.Level != 4 {
		t.Fatalf("level = %d, want 4", p.Level)
	}
	if p.XP != 5 {
		t.Fatalf("leftover xp = %d, want 5", p.XP)
	}
	if p.SkillPoints != 3 {
		t.Fatalf("skill points = %d, want 3", p.SkillPoints)
	}
	if p.AddXP(0) != 0 || p.AddXP(-10) != 0 {
		t.Fatalf("non-positive XP should be ignored")
	}
}

func TestAddXPAtCapZeroesXP(t *testing.T) {
	p := &Progression{Level: MaxLevel, XP: 40}
	if gained := p.AddXP(500); gained != 0 {
		t.Fatalf("capped progression gained %d levels", gained)
	}
	if p.XP != 0 {
		t.Fatalf("capped progression kept xp %d", p.XP)
	}
}

func TestDefaultTreeValidates(t *testing.T) {
	tree := DefaultTree()
	if tree.Len() < 20 {
		t.Fatalf("default tree has %d nodes, want >= 20", tree.Len())
	}
	if _, ok := tree.Node("haggle"); !ok {
		t.Fatalf("default tree missing haggle")
	}
}

func TestNewTreeRejectsBadGraphs(t *testing.T) {
	base := DefaultTree().Nodes()

	small := map[string]Node{"only": {SkillID: "only", MaxRank: 1, LevelReq: 1}}
	if _, err := NewTree(small); err == nil {
		t.Fatalf("undersized tree should be rejected")
	}

	cyclic := make(map[string]Node, len(base))
	for k, v := range base {
		cyclic[k] = v
	}
	h := cyclic["haggle"]
	h.Prereqs = []Prereq{{SkillID: "premium_display", Rank: 1}}
	cyclic["haggle"] = h
	if _, err := NewTree(cyclic); err == nil {
		t.Fatalf("prereq cycle should be rejected")
	}

	dangling := make(map[string]Node, len(base))
	for k, v := range base {
		dangling[k] = v
	}
	g := dangling["grit"]
	g.Prereqs = []Prereq{{SkillID: "nope", Rank: 1}}
	dangling["grit"] = g
	if _, err := NewTree(dangling); err == nil {
		t.Fatalf("dangling prereq should be rejected")
	}
}

func TestRankUpGates(t *testing.T) {
	tree := DefaultTree()
	prog := NewProgression()
	state := NewSkillState()

	if ok, reason := state.CanRankUp(tree, "haggle", prog); ok || reason != "No skill points." {
		t.Fatalf("rank up without points: ok=%v reason=%q", ok, reason)
	}
	prog.SkillPoints = 20
	if ok, _ := state.CanRankUp(tree, "haggle", prog); !ok {
		t.Fatalf("haggle rank 1 should be buyable")
	}
	// Level gate.
	if ok, reason := state.CanRankUp(tree, "premium_display", prog); ok || reason != "Requires level 5." {
		t.Fatalf("level gate: ok=%v reason=%q", ok, reason)
	}
	// Prereq gate.
	prog.Level = 10
	if ok, reason := state.CanRankUp(tree, "premium_display", prog); ok || reason != "Requires Haggle rank 3." {
		t.Fatalf("prereq gate: ok=%v reason=%q", ok, reason)
	}
	if ok, _ := state.CanRankUp(tree, "no_such_skill", prog); ok {
		t.Fatalf("unknown skill should not rank up")
	}
}

func TestRankUpSpendsPointsAndCapsAtMax(t *testing.T) {
	tree := DefaultTree()
	prog := &Progression{Level: 50, SkillPoints: 15}
	state := NewSkillState()

	bought := 0
	for state.RankUp(tree, "haggle", prog) {
		bought++
	}
	if bought != 10 {
		t.Fatalf("bought %d haggle ranks, want max rank 10", bought)
	}
	if prog.SkillPoints != 5 {
		t.Fatalf("points left %d, want 5", prog.SkillPoints)
	}
}

func TestModifiersCacheTracksRankChanges(t *testing.T) {
	tree := DefaultTree()
	prog := &Progression{Level: 50, SkillPoints: 10}
	state := NewSkillState()

	if m := state.Modifiers(tree); m != (Modifiers{}) {
		t.Fatalf("fresh state has modifiers %+v", m)
	}
	for i := 0; i < 5; i++ {
		if !state.RankUp(tree, "haggle", prog) {
			t.Fatalf("haggle rank %d failed", i+1)
		}
	}
	m := state.Modifiers(tree)
	if got, want := m.SellPricePct, 0.05; !almostEqual(got, want) {
		t.Fatalf("haggle x5 sell price pct = %v, want %v", got, want)
	}
	// Cached value stays correct on repeat calls.
	if m2 := state.Modifiers(tree); m2 != m {
		t.Fatalf("cache returned %+v then %+v", m, m2)
	}
}

func TestSkillStateNormalize(t *testing.T) {
	tree := DefaultTree()
	state := &SkillState{Ranks: map[string]int{
		"haggle":   99,
		"ghost":    3,
		"sparring": -2,
	}}
	state.Normalize(tree)
	if state.Rank("haggle") != 10 {
		t.Fatalf("over-ranked skill not clamped: %d", state.Rank("haggle"))
	}
	if _, ok := state.Ranks["ghost"]; ok {
		t.Fatalf("unknown skill survived normalization")
	}
	if _, ok := state.Ranks["sparring"]; ok {
		t.Fatalf("non-positive rank survived normalization")
	}
}

func TestComputeStaffXP(t *testing.T) {
	// Sale of $10 of boosters: 10*2*1.0 = 20.
	if got := ComputeStaffXP(StaffEventSale, 10, shop.ProductBooster); got != 20 {
		t.Fatalf("sale xp = %d, want 20", got)
	}
	// Restocking 2 legendary singles: round(2*3*2.4) = 14.
	if got := ComputeStaffXP(StaffEventRestock, 2, shop.ProductSingleLegendary); got != 14 {
		t.Fatalf("restock xp = %d, want 14", got)
	}
	if got := ComputeStaffXP(StaffEventPackOpen, 3, shop.ProductBooster); got != 36 {
		t.Fatalf("pack xp = %d, want 36", got)
	}
	// Tiny sales still teach something.
	if got := ComputeStaffXP(StaffEventSale, 0, shop.ProductBooster); got != 0 {
		t.Fatalf("zero amount awarded %d", got)
	}
}

func TestAwardStaffXPLevels(t *testing.T) {
	xp := 95
	award := AwardStaffXP(&xp, StaffEventSale, 5, shop.ProductDeck)
	if award.GainedXP != 10 || xp != 105 {
		t.Fatalf("award %+v total %d", award, xp)
	}
	if award.PrevLevel != 1 || award.NewLevel != 2 {
		t.Fatalf("level change %d -> %d, want 1 -> 2", award.PrevLevel, award.NewLevel)
	}
}

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
