package model

import "time"

// JourneyType describes a support programme and its stages
type JourneyType struct {
	Record
	Name              string  `json:"name"`
	Slug              string  `json:"slug"`
	Description       string  `json:"description,omitempty"`
	Stages            []Stage `json:"stages,omitempty"`
	DefaultTemplateID string  `json:"defaultTemplateId,omitempty"`
}

func (j JourneyType) WithMeta(r Record) JourneyType { j.Record = r; return j }

func (j JourneyType) DisplayName() string { return j.Name }

type Stage struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// JourneyProgress records a client's movement through the stages of their journey.
// Entries live under journey_progress_<clientId>.
type JourneyProgress struct {
	Record
	Stage     string    `json:"stage"`
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	ReachedAt time.Time `json:"reachedAt,omitzero"`
}

func (p JourneyProgress) WithMeta(r Record) JourneyProgress { p.Record = r; return p }
