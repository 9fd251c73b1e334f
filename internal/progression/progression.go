package progression

// MaxLevel caps shopkeeper progression.
const MaxLevel = 2000

// XPToNext is the XP needed to go from level to level+1. Returns 0 at cap.
func XPToNext(level int) int {
	if level >= MaxLevel {
		return 0
	}
	if level < 1 {
		level = 1
	}
	return 100 + 20*level + (level*level)/10
}

// SkillPointsForLevel is how many skill points reaching a level grants.
func SkillPointsForLevel(level int) int {
	if level > 1 {
		return 1
	}
	return 0
}

// Progression is the shopkeeper's level, banked XP toward the next level and
// unspent skill points.
type Progression struct {
	Level       int `json:"level"`
	XP          int `json:"xp"`
	SkillPoints int `json:"skill_points"`
}

func NewProgression() *Progression {
	return &Progression{Level: 1}
}

// AddXP banks XP and resolves any level-ups it causes, returning the number
// of levels gained. Each level gained grants its skill points immediately.
// At the cap, XP stops accumulating.
func (p *Progression) AddXP(amount int) int {
	if amount <= 0 {
		return 0
	}
	if p.Level >= MaxLevel {
		p.XP = 0
		return 0
	}
	p.XP += amount
	gained := 0
	for {
		need := XPToNext(p.Level)
		if need <= 0 || p.XP < need {
			break
		}
		p.XP -= need
		p.Level++
		gained++
		p.SkillPoints += SkillPointsForLevel(p.Level)
		if p.Level >= MaxLevel {
			p.XP = 0
			break
		}
	}
	return gained
}

// ProgressFrac is the fraction of the way to the next level, for display.
func (p *Progression) ProgressFrac() float64 {
	need := XPToNext(p.Level)
	if need <= 0 {
		return 1.0
	}
	f := float64(p.XP) / float64(need)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Normalize repairs a loaded progression: level clamped to [1, MaxLevel],
// XP and skill points floored at zero.
func (p *Progression) Normalize() {
	if p.Level < 1 {
		p.Level = 1
	}
	if p.Level > MaxLevel {
		p.Level = MaxLevel
	}
	if p.XP < 0 {
		p.XP = 0
	}
	if p.SkillPoints < 0 {
		p.SkillPoints = 0
	}
}
