package progression

import "fmt"

// SkillState is the player-owned side of the tree: ranks bought so far plus
// a cached aggregate of their modifiers. The cache is rebuilt lazily after
// any rank change.
type SkillState struct {
	Ranks map[string]int `json:"ranks"`

	cacheValid bool
	cached     Modifiers
}

func NewSkillState() *SkillState {
	return &SkillState{Ranks: make(map[string]int)}
}

// Rank returns the current rank of a skill, zero when unlearned.
func (s *SkillState) Rank(skillID string) int {
	return s.Ranks[skillID]
}

// CanRankUp checks every gate for buying the next rank and reports the first
// failure in a display-ready reason string.
func (s *SkillState) CanRankUp(tree *Tree, skillID string, prog *Progression) (bool, string) {
	node, ok := tree.Node(skillID)
	if !ok {
		return false, "Unknown skill."
	}
	if s.Rank(skillID) >= node.MaxRank {
		return false, "Already max rank."
	}
	if prog.SkillPoints <= 0 {
		return false, "No skill points."
	}
	if prog.Level < node.LevelReq {
		return false, fmt.Sprintf("Requires level %d.", node.LevelReq)
	}
	for _, pr := range node.Prereqs {
		if s.Rank(pr.SkillID) < pr.Rank {
			prNode, _ := tree.Node(pr.SkillID)
			return false, fmt.Sprintf("Requires %s rank %d.", prNode.Name, pr.Rank)
		}
	}
	return true, "OK"
}

// RankUp buys one rank, spending one skill point. Returns false without
// mutating anything when any gate fails.
func (s *SkillState) RankUp(tree *Tree, skillID string, prog *Progression) bool {
	ok, _ := s.CanRankUp(tree, skillID, prog)
	if !ok {
		return false
	}
	if s.Ranks == nil {
		s.Ranks = make(map[string]int)
	}
	s.Ranks[skillID]++
	prog.SkillPoints--
	s.cacheValid = false
	return true
}

// Modifiers sums every learned skill's per-rank modifiers, clamping ranks to
// each node's max. Unknown skill ids contribute nothing.
func (s *SkillState) Modifiers(tree *Tree) Modifiers {
	if s.cacheValid {
		return s.cached
	}
	mods := Modifiers{}
	for sid, rank := range s.Ranks {
		if rank <= 0 {
			continue
		}
		node, ok := tree.Node(sid)
		if !ok {
			continue
		}
		mods = mods.Add(node.ModsPerRank.Scale(float64(min(rank, node.MaxRank))))
	}
	s.cached = mods
	s.cacheValid = true
	return mods
}

// SpentPoints counts skill points already invested, clamped per node.
func (s *SkillState) SpentPoints(tree *Tree) int {
	total := 0
	for sid, rank := range s.Ranks {
		node, ok := tree.Node(sid)
		if !ok {
			continue
		}
		total += min(max(0, rank), node.MaxRank)
	}
	return total
}

// Normalize repairs loaded ranks against a tree: unknown skills are dropped,
// ranks clamp to [0, max], and the modifier cache is invalidated.
func (s *SkillState) Normalize(tree *Tree) {
	if s.Ranks == nil {
		s.Ranks = make(map[string]int)
	}
	for sid, rank := range s.Ranks {
		node, ok := tree.Node(sid)
		if !ok || rank <= 0 {
			delete(s.Ranks, sid)
			continue
		}
		if rank > node.MaxRank {
			s.Ranks[sid] = node.MaxRank
		}
	}
	s.cacheValid = false
}
