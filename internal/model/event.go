package model

import "time"

// Event is a group session, workshop or outreach activity
type Event struct {
	Record
	Name        string `json:"name"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Capacity    int    `json:"capacity,omitempty"`
}

func (e Event) WithMeta(r Record) Event { e.Record = r; return e }

func (e Event) DisplayName() string { return e.Name }

// When parses the event date, accepting either a calendar date or an RFC 3339 timestamp.
func (e Event) When() time.Time {
	return ParseDate(e.Date)
}

// ParseDate parses a calendar date or RFC 3339 timestamp, returning the zero time on failure.
func ParseDate(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t
	}
	return time.Time{}
}
