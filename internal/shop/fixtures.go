package shop

// FixtureInventory tracks fixtures that are owned but not yet on the floor.
type FixtureInventory struct {
	Shelves  int `json:"shelves"`
	Counters int `json:"counters"`
	Posters  int `json:"posters"`
}

func (f *FixtureInventory) count(kind ObjectKind) *int {
	switch kind {
	case KindCounter:
		return &f.Counters
	case KindPoster:
		return &f.Posters
	default:
		return &f.Shelves
	}
}

func (f *FixtureInventory) Count(kind ObjectKind) int {
	return *f.count(kind)
}

func (f *FixtureInventory) Add(kind ObjectKind, n int) {
	if n > 0 {
		*f.count(kind) += n
	}
}

// CanPlace reports whether a fixture of this kind is available.
func (f *FixtureInventory) CanPlace(kind ObjectKind) bool {
	return *f.count(kind) > 0
}

// ConsumeForPlace spends one fixture of this kind for placement.
func (f *FixtureInventory) ConsumeForPlace(kind ObjectKind) bool {
	c := f.count(kind)
	if *c <= 0 {
		return false
	}
	*c--
	return true
}

// Normalize floors loaded counts at zero.
func (f *FixtureInventory) Normalize() {
	if f.Shelves < 0 {
		f.Shelves = 0
	}
	if f.Counters < 0 {
		f.Counters = 0
	}
	if f.Posters < 0 {
		f.Posters = 0
	}
}
