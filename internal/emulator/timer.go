package emulator

import "time"

// TimerFrequency is the rate in Hz at which the delay and sound timers
// count down.
const TimerFrequency = 60

// tickDuration is the period of one timer tick.
const tickDuration = time.Second / TimerFrequency

// updateTimers decrements the non-zero timers once for every whole tick
// that elapsed since the last update. The part of the elapsed time that
// does not form a whole tick is carried over to the next update.
func (e *Emulator) updateTimers() {
	now := e.clock()
	elapsed := now.Sub(e.lastTick)
	if elapsed < tickDuration {
		if elapsed < 0 {
			e.lastTick = now // clock went backwards
		}
		return
	}

	ticks := elapsed / tickDuration
	e.lastTick = e.lastTick.Add(ticks * tickDuration)
	e.delayTimer = decrement(e.delayTimer, ticks)
	e.soundTimer = decrement(e.soundTimer, ticks)
}

func decrement(timer uint8, ticks time.Duration) uint8 {
	if time.Duration(timer) <= ticks {
		return 0
	}
	return timer - uint8(ticks)
}
