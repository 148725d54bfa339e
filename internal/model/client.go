package model

import "strings"

// Client statuses
const (
	ClientActive   = "active"
	ClientInactive = "inactive"
	ClientClosed   = "closed"
)

// Client is a person receiving support
type Client struct {
	Record
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Location     string `json:"location,omitempty"`
	DateOfBirth  string `json:"dateOfBirth,omitempty"`
	JourneyType  string `json:"journeyType"`
	CaseWorkerID string `json:"caseWorkerId,omitempty"`
	Status       string `json:"status,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

func (c Client) WithMeta(r Record) Client { c.Record = r; return c }

func (c Client) DisplayName() string { return c.Name }

// Normalize derives Name from the first and last name and defaults the status.
func (c Client) Normalize() Client {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	if full := strings.TrimSpace(c.FirstName + " " + c.LastName); full != "" {
		c.Name = full
	}
	if c.Status == "" {
		c.Status = ClientActive
	}
	return c
}

// DateLayout is the calendar date format used by date fields.
const DateLayout = "2006-01-02"
