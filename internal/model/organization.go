package model

// Organization statuses. Organizations are never removed, only archived.
const (
	OrganizationActive   = "active"
	OrganizationArchived = "archived"
)

// Organization is a tenant of the system
type Organization struct {
	Record
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ContactEmail string `json:"contactEmail,omitempty"`
	Status       string `json:"status"`
}

func (o Organization) WithMeta(r Record) Organization { o.Record = r; return o }

func (o Organization) DisplayName() string { return o.Name }

// Active reports whether the organization has not been archived
func (o Organization) Active() bool { return o.Status != OrganizationArchived }
