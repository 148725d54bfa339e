package model

import "time"

// TimelineEvent is an entry on a client's timeline (timeline_events_<clientId>)
type TimelineEvent struct {
	Record
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	OccurredAt  time.Time `json:"occurredAt,omitzero"`
}

func (e TimelineEvent) WithMeta(r Record) TimelineEvent { e.Record = r; return e }

func (e TimelineEvent) DisplayName() string { return e.Title }

// Interaction is a contact with a client (interactions_<clientId>)
type Interaction struct {
	Record
	Channel    string    `json:"channel"`
	Summary    string    `json:"summary"`
	StaffID    string    `json:"staffId,omitempty"`
	OccurredAt time.Time `json:"occurredAt,omitzero"`
}

func (i Interaction) WithMeta(r Record) Interaction { i.Record = r; return i }

// Timeline kinds
const (
	TimelineRegistered  = "registered"
	TimelineAssessment  = "assessment"
	TimelineInteraction = "interaction"
	TimelineProgress    = "progress"
	TimelineNote        = "note"
)
