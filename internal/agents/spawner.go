package agents

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Spawn pacing. The base interval ramps down linearly over the first weeks
// of play, and the per-day cap keeps one noisy day from flooding the floor.
const (
	SpawnIntervalStart = 7.0
	SpawnIntervalMin   = 4.2
	SpawnRampDays      = 14

	MaxCustomersActive        = 10
	MaxCustomersSpawnedPerDay = 14
	MaxSpawnsPerTick          = 1
	SpawnRetryDelay           = 0.75
)

// Spawner schedules customer arrivals across a day phase. Offsets are laid
// out on a fixed interval with smooth day-to-day jitter from a noise field,
// so footfall feels organic without being random frame to frame.
type Spawner struct {
	noise opensimplex.Noise

	nextAt       float64
	spawnedToday int
	arrivalIdx   int
}

func NewSpawner(seed int64) *Spawner {
	return &Spawner{noise: opensimplex.NewNormalized(seed)}
}

// BaseInterval ramps from the opening-week interval down to the floor over
// SpawnRampDays. Non-increasing in day, clamped to [min, start].
func BaseInterval(day int) float64 {
	if day < 1 {
		day = 1
	}
	t := float64(day-1) / float64(SpawnRampDays)
	if t > 1 {
		t = 1
	}
	return SpawnIntervalStart - (SpawnIntervalStart-SpawnIntervalMin)*t
}

// EffectiveInterval is the working gap between arrivals: never faster than
// the ramp allows, never so fast the daily cap would overshoot the phase.
func EffectiveInterval(day int, dayDuration float64) float64 {
	hardFloor := dayDuration / float64(MaxCustomersSpawnedPerDay)
	interval := BaseInterval(day)
	if hardFloor > interval {
		return hardFloor
	}
	return interval
}

// ResetDay arms the schedule for a fresh day phase.
func (sp *Spawner) ResetDay() {
	sp.nextAt = 0
	sp.spawnedToday = 0
	sp.arrivalIdx = 0
}

// SpawnedToday reports arrivals so far this day.
func (sp *Spawner) SpawnedToday() int { return sp.spawnedToday }

// jitter scales an interval by [0.8, 1.2] using the noise field, keyed by
// day and arrival index so the pattern is stable for a given seed.
func (sp *Spawner) jitter(day int) float64 {
	n := sp.noise.Eval2(float64(day), float64(sp.arrivalIdx))
	return 0.8 + 0.4*n
}

// Update releases due arrivals. phaseT is seconds into the current day
// phase; spawn runs one arrival and reports whether it took (a full floor
// refuses). At most MaxSpawnsPerTick arrivals release per call; a refused
// arrival retries shortly instead of sliding a whole interval.
func (sp *Spawner) Update(day int, phaseT, dayDuration float64, active int, spawn func() bool) {
	spawnedThisTick := 0
	for phaseT >= sp.nextAt && spawnedThisTick < MaxSpawnsPerTick {
		if sp.spawnedToday >= MaxCustomersSpawnedPerDay {
			return
		}
		if active >= MaxCustomersActive || !spawn() {
			sp.nextAt += SpawnRetryDelay
			return
		}
		spawnedThisTick++
		sp.spawnedToday++
		active++
		sp.arrivalIdx++
		sp.nextAt += EffectiveInterval(day, dayDuration) * sp.jitter(day)
	}
}
