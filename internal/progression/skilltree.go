package progression

import "fmt"

// Modifiers aggregates the passive bonuses skills grant. Percent values are
// fractions: 0.10 means +10%.
type Modifiers struct {
	SellPricePct       float64 `json:"sell_price_pct"`
	SalesXPPct         float64 `json:"sales_xp_pct"`
	BattleXPPct        float64 `json:"battle_xp_pct"`
	FixtureDiscountPct float64 `json:"fixture_discount_pct"`
}

func (m Modifiers) Add(o Modifiers) Modifiers {
	return Modifiers{
		SellPricePct:       m.SellPricePct + o.SellPricePct,
		SalesXPPct:         m.SalesXPPct + o.SalesXPPct,
		BattleXPPct:        m.BattleXPPct + o.BattleXPPct,
		FixtureDiscountPct: m.FixtureDiscountPct + o.FixtureDiscountPct,
	}
}

func (m Modifiers) Scale(k float64) Modifiers {
	return Modifiers{
		SellPricePct:       m.SellPricePct * k,
		SalesXPPct:         m.SalesXPPct * k,
		BattleXPPct:        m.BattleXPPct * k,
		FixtureDiscountPct: m.FixtureDiscountPct * k,
	}
}

// Prereq names another skill and the rank it must hold.
type Prereq struct {
	SkillID string `json:"skill_id"`
	Rank    int    `json:"rank"`
}

// Node is one skill in the tree. Pos is a layout hint for renderers.
type Node struct {
	SkillID     string    `json:"skill_id"`
	Name        string    `json:"name"`
	Desc        string    `json:"desc"`
	Pos         [2]int    `json:"pos"`
	MaxRank     int       `json:"max_rank"`
	LevelReq    int       `json:"level_req"`
	Prereqs     []Prereq  `json:"prereqs,omitempty"`
	ModsPerRank Modifiers `json:"mods_per_rank"`
}

// Tree is an immutable skill tree definition. Construct with NewTree so the
// graph is validated once up front; hand the result to whoever needs it
// rather than reaching for a package-level singleton.
type Tree struct {
	nodes map[string]Node
}

// NewTree validates and wraps a node set: at least 20 skills, consistent ids,
// sane ranks and level requirements, prereqs that exist, and no prereq cycles.
func NewTree(nodes map[string]Node) (*Tree, error) {
	if len(nodes) < 20 {
		return nil, fmt.Errorf("skill tree needs at least 20 skills, got %d", len(nodes))
	}
	for sid, node := range nodes {
		if sid != node.SkillID {
			return nil, fmt.Errorf("skill id mismatch: key=%s node=%s", sid, node.SkillID)
		}
		if node.MaxRank < 1 {
			return nil, fmt.Errorf("%s: max rank must be >= 1", sid)
		}
		if node.LevelReq < 1 {
			return nil, fmt.Errorf("%s: level requirement must be >= 1", sid)
		}
		for _, pr := range node.Prereqs {
			if _, ok := nodes[pr.SkillID]; !ok {
				return nil, fmt.Errorf("%s: prereq missing: %s", sid, pr.SkillID)
			}
			if pr.Rank < 1 {
				return nil, fmt.Errorf("%s: prereq rank must be >= 1", sid)
			}
		}
	}

	visiting := make(map[string]bool)
	visited := make(map[string]bool)
	var dfs func(cur string) error
	dfs = func(cur string) error {
		if visited[cur] {
			return nil
		}
		if visiting[cur] {
			return fmt.Errorf("skill prereq cycle detected at %s", cur)
		}
		visiting[cur] = true
		for _, pr := range nodes[cur].Prereqs {
			if err := dfs(pr.SkillID); err != nil {
				return err
			}
		}
		delete(visiting, cur)
		visited[cur] = true
		return nil
	}
	for sid := range nodes {
		if err := dfs(sid); err != nil {
			return nil, err
		}
	}

	return &Tree{nodes: nodes}, nil
}

// Node looks up a skill by id.
func (t *Tree) Node(skillID string) (Node, bool) {
	n, ok := t.nodes[skillID]
	return n, ok
}

// Len is the number of skills in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Nodes returns the underlying definitions for read-only iteration.
func (t *Tree) Nodes() map[string]Node { return t.nodes }
