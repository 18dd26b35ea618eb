package availability

import (
	"time"

	"interviewdesk/internal/domain"
)

// GenerateSlots lays the slot grid over date's business window and marks each
// slot against busy. Starts run from Open through LastSlotStart inclusive.
// The window is expected to be valid for slotDuration.
func GenerateSlots(clock domain.BusinessClock, date time.Time, window domain.BusinessWindow, slotDuration time.Duration, busy BusySet) []domain.Slot {
	step := int(slotDuration / time.Minute)
	if step <= 0 {
		return nil
	}

	last := window.LastSlotStart.Minutes()
	slots := make([]domain.Slot, 0, (last-window.Open.Minutes())/step+1)

	for start := window.Open; start.Minutes() <= last; {
		end, ok := start.Add(slotDuration)
		if !ok {
			break
		}

		span := domain.Interval{Start: clock.At(date, start), End: clock.At(date, end)}
		slots = append(slots, domain.Slot{
			Start:     start,
			End:       end,
			Available: !busy.Blocks(span),
		})
		start = end
	}
	return slots
}
