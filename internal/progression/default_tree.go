package progression

// DefaultTree builds the stock skill tree. The node table is static, so a
// construction failure is a programming error and panics like a bad
// regexp.MustCompile.
func DefaultTree() *Tree {
	n := func(sid, name, desc string, pos [2]int, maxRank, levelReq int, prereqs []Prereq, mods Modifiers) Node {
		return Node{
			SkillID:     sid,
			Name:        name,
			Desc:        desc,
			Pos:         pos,
			MaxRank:     maxRank,
			LevelReq:    levelReq,
			Prereqs:     prereqs,
			ModsPerRank: mods,
		}
	}

	nodes := map[string]Node{
		// Commerce spine
		"haggle": n("haggle", "Haggle", "Increase your sell prices slightly.",
			[2]int{0, 0}, 10, 1, nil, Modifiers{SellPricePct: 0.01}),
		"premium_display": n("premium_display", "Premium Display", "Better presentation means customers pay a little more.",
			[2]int{220, -40}, 10, 5, []Prereq{{"haggle", 3}}, Modifiers{SellPricePct: 0.005}),
		"local_reputation": n("local_reputation", "Local Reputation", "Earn more XP from sales.",
			[2]int{220, 40}, 5, 3, []Prereq{{"haggle", 2}}, Modifiers{SalesXPPct: 0.05}),
		"bulk_buying": n("bulk_buying", "Bulk Buying", "Discount fixture purchases.",
			[2]int{440, 0}, 5, 8, []Prereq{{"premium_display", 3}}, Modifiers{FixtureDiscountPct: 0.03}),
		"market_savvy": n("market_savvy", "Market Savvy", "Earn more XP from battle wins.",
			[2]int{440, 90}, 5, 6, []Prereq{{"local_reputation", 2}}, Modifiers{BattleXPPct: 0.05}),

		// Battle branch
		"sparring": n("sparring", "Sparring", "Learn by fighting; +battle XP.",
			[2]int{0, 220}, 5, 1, nil, Modifiers{BattleXPPct: 0.05}),
		"tactics": n("tactics", "Tactics", "More battle XP from smarter play.",
			[2]int{220, 220}, 5, 4, []Prereq{{"sparring", 2}}, Modifiers{BattleXPPct: 0.05}),
		"champion": n("champion", "Champion", "A proven winner; more battle XP.",
			[2]int{440, 220}, 5, 10, []Prereq{{"tactics", 3}}, Modifiers{BattleXPPct: 0.06}),

		// Operations branch
		"shopkeeping": n("shopkeeping", "Shopkeeping", "Core shop operations training.",
			[2]int{-180, 80}, 5, 1, nil, Modifiers{SalesXPPct: 0.03}),
		"inventory_habits": n("inventory_habits", "Inventory Habits", "Learn to run tighter operations.",
			[2]int{-360, 80}, 5, 4, []Prereq{{"shopkeeping", 2}}, Modifiers{}),
		"store_layout": n("store_layout", "Store Layout", "Place fixtures intentionally.",
			[2]int{-360, -20}, 5, 6, []Prereq{{"shopkeeping", 2}}, Modifiers{FixtureDiscountPct: 0.01}),
		"community_events": n("community_events", "Community Events", "More sales XP from engagement.",
			[2]int{-360, 180}, 5, 7, []Prereq{{"shopkeeping", 3}}, Modifiers{SalesXPPct: 0.04}),

		// Outer ring
		"collector": n("collector", "Collector", "A love of cards keeps you motivated (+sales XP).",
			[2]int{-180, -80}, 5, 2, []Prereq{{"haggle", 1}}, Modifiers{SalesXPPct: 0.03}),
		"advertising": n("advertising", "Advertising", "Premium display has more impact on pricing.",
			[2]int{220, -140}, 5, 9, []Prereq{{"premium_display", 4}}, Modifiers{SellPricePct: 0.004}),
		"vip_regulars": n("vip_regulars", "VIP Regulars", "Regulars pay a little more.",
			[2]int{440, -120}, 5, 12, []Prereq{{"advertising", 2}}, Modifiers{SellPricePct: 0.004}),
		"shrewd_deals": n("shrewd_deals", "Shrewd Deals", "Discount fixtures further.",
			[2]int{660, -60}, 5, 14, []Prereq{{"bulk_buying", 2}}, Modifiers{FixtureDiscountPct: 0.02}),
		"sales_grind": n("sales_grind", "Sales Grind", "More XP from sales (practice).",
			[2]int{660, 60}, 10, 11, []Prereq{{"local_reputation", 3}}, Modifiers{SalesXPPct: 0.02}),
		"battle_grind": n("battle_grind", "Battle Grind", "More XP from wins (practice).",
			[2]int{660, 180}, 10, 11, []Prereq{{"tactics", 2}}, Modifiers{BattleXPPct: 0.02}),
		"master_merchant": n("master_merchant", "Master Merchant", "Late-game pricing edge.",
			[2]int{880, 0}, 10, 25, []Prereq{{"vip_regulars", 3}, {"sales_grind", 5}}, Modifiers{SellPricePct: 0.003}),
		"legend": n("legend", "Legend", "Late-game battle XP edge.",
			[2]int{880, 220}, 10, 25, []Prereq{{"champion", 3}, {"battle_grind", 5}}, Modifiers{BattleXPPct: 0.02}),
		"frugal_builder": n("frugal_builder", "Frugal Builder", "Fixtures are cheaper.",
			[2]int{660, -180}, 10, 15, []Prereq{{"store_layout", 2}}, Modifiers{FixtureDiscountPct: 0.01}),
		"efficiency": n("efficiency", "Efficiency", "General skill; more sales XP.",
			[2]int{-540, 130}, 10, 10, []Prereq{{"inventory_habits", 2}}, Modifiers{SalesXPPct: 0.01}),
		"grit": n("grit", "Grit", "General skill; more battle XP.",
			[2]int{-180, 320}, 10, 10, []Prereq{{"sparring", 3}}, Modifiers{BattleXPPct: 0.01}),
	}

	tree, err := NewTree(nodes)
	if err != nil {
		panic("default skill tree: " + err.Error())
	}
	return tree
}
