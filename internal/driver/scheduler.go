package driver

import (
	"math/bits"
	"time"
)

// TimerRate is the frequency of the delay and sound timers.
const TimerRate = 60

// DefaultMaxCatchUp is the longest stretch of missed time a Scheduler makes
// up for after the host stalled.
const DefaultMaxCatchUp = 250 * time.Millisecond

// Scheduler converts wall clock time into due instruction cycles and timer
// ticks. Counts are derived from the time elapsed since start, so rounding
// errors do not accumulate.
type Scheduler struct {
	start     time.Time
	cycleRate uint64

	cycles uint64 // cycles handed out since start
	ticks  uint64 // timer ticks handed out since start

	maxCycles uint64
	maxTicks  uint64
}

// NewScheduler returns a scheduler for the given cycle rate in Hz, starting
// at start. A maxCatchUp of 0 selects DefaultMaxCatchUp.
func NewScheduler(start time.Time, hz int, maxCatchUp time.Duration) *Scheduler {
	if maxCatchUp <= 0 {
		maxCatchUp = DefaultMaxCatchUp
	}

	s := &Scheduler{
		start:     start,
		cycleRate: uint64(max(hz, 1)),
	}
	s.maxCycles = max(count(maxCatchUp, s.cycleRate), 1)
	s.maxTicks = max(count(maxCatchUp, TimerRate), 1)

	return s
}

// Due returns the number of cycles and timer ticks that became due since the
// previous call. Instants before the last one yield nothing. When more than
// the catch up limit is due, the excess is dropped.
func (s *Scheduler) Due(now time.Time) (cycles, ticks int) {
	elapsed := now.Sub(s.start)
	if elapsed < 0 {
		return 0, 0
	}

	wantCycles := count(elapsed, s.cycleRate)
	wantTicks := count(elapsed, TimerRate)

	if wantCycles > s.cycles+s.maxCycles {
		s.cycles = wantCycles - s.maxCycles
	}
	if wantTicks > s.ticks+s.maxTicks {
		s.ticks = wantTicks - s.maxTicks
	}

	if wantCycles > s.cycles {
		cycles = int(wantCycles - s.cycles)
		s.cycles = wantCycles
	}
	if wantTicks > s.ticks {
		ticks = int(wantTicks - s.ticks)
		s.ticks = wantTicks
	}

	return cycles, ticks
}

// Hz returns the cycle rate.
func (s *Scheduler) Hz() int {
	return int(s.cycleRate)
}

// count returns the number of whole periods of a rate in Hz that fit into d.
func count(d time.Duration, rate uint64) uint64 {
	hi, lo := bits.Mul64(uint64(d), rate)
	n, _ := bits.Div64(hi, lo, uint64(time.Second))
	return n
}
