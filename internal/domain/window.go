package domain

import (
	"errors"
	"fmt"
	"time"
)

// BusinessWindow bounds the slot grid of one day. LastSlotStart is the final
// start time that gets generated; Close is never a start.
type BusinessWindow struct {
	Open          TimeOfDay
	Close         TimeOfDay
	LastSlotStart TimeOfDay
}

func (w BusinessWindow) Validate(slotDuration time.Duration) error {
	if slotDuration < time.Minute {
		return errors.New("slot duration must be at least one minute")
	}
	if !w.Open.Before(w.Close) {
		return fmt.Errorf("open %s must be before close %s", w.Open, w.Close)
	}
	if w.LastSlotStart.Before(w.Open) {
		return fmt.Errorf("last slot start %s is before open %s", w.LastSlotStart, w.Open)
	}
	end, ok := w.LastSlotStart.Add(slotDuration)
	if !ok || end.After(w.Close) {
		return fmt.Errorf("last slot starting %s runs past close %s", w.LastSlotStart, w.Close)
	}
	return nil
}
