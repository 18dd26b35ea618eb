package domain

type Slot struct {
	Start     TimeOfDay `json:"start"`
	End       TimeOfDay `json:"end"`
	Available bool      `json:"available"`
}

// Day is the slot grid for one date, in start order.
type Day struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}
