package domain

// EventTime mirrors a calendar provider's start/end field: DateTime for timed
// events, Date for all-day markers.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

func (t EventTime) Timed() bool {
	return t.DateTime != ""
}

type CalendarEvent struct {
	ID          string
	Summary     string
	Description string
	Start       EventTime
	End         EventTime
	HTMLLink    string
}

type EventRef struct {
	ID   string
	Link string
}

// EventPatch carries only the fields to change; nil fields are left as they are.
type EventPatch struct {
	Summary     *string
	Description *string
	Start       *EventTime
	End         *EventTime
}

func (p EventPatch) Empty() bool {
	return p.Summary == nil && p.Description == nil && p.Start == nil && p.End == nil
}
