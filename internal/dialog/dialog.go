// Package dialog models modal workflows: a state machine per dialog, a
// registry of open confirmations and cancellable tasks for their async work.
package dialog

import (
	"errors"
	"fmt"
	"time"
)

type State string

const (
	Closed    State = "closed"
	Open      State = "open"
	Confirmed State = "confirmed"
	Cancelled State = "cancelled"
)

type Kind string

const (
	KindForm    Kind = "form"
	KindConfirm Kind = "confirm"
	KindToast   Kind = "toast"
)

var (
	ErrInvalidTransition = errors.New("invalid dialog transition")
	ErrNotFound          = errors.New("dialog not found")
)

var transitions = map[State][]State{
	Closed:    {Open},
	Open:      {Confirmed, Cancelled},
	Confirmed: {Closed},
	Cancelled: {Closed},
}

// Dialog is the state of a single modal
type Dialog struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Resource  string    `json:"resource,omitempty"`
	RecordID  string    `json:"recordId,omitempty"`
	OwnerID   string    `json:"-"`
	State     State     `json:"state"`
	Outcome   State     `json:"outcome,omitempty"`
	OpenedAt  time.Time `json:"openedAt,omitzero"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// Transition moves the dialog to the next state
func (d *Dialog) Transition(to State) error {
	from := d.State
	if from == "" {
		from = Closed
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			if from == Confirmed || from == Cancelled {
				d.Outcome = from
			}
			d.State = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
