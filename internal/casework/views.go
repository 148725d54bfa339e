package casework

import (
	"maps"
	"slices"
	"time"

	"casedesk/internal/form"
	"casedesk/internal/listview"
	"casedesk/internal/model"
)

func createdAt(r model.Record) time.Time { return r.CreatedAt }

var ClientView = listview.Definition[model.Client]{
	Search: func(c model.Client) []string {
		return []string{c.Name, c.Email, c.Location, c.Phone, c.JourneyType}
	},
	Categories: map[string]func(model.Client) string{
		"status":      func(c model.Client) string { return c.Status },
		"journeyType": func(c model.Client) string { return c.JourneyType },
	},
	Date: func(c model.Client) time.Time { return createdAt(c.Record) },
}

var ClientFields = []form.Field{
	{Name: "firstName", Label: "First name", Type: form.Text, Required: true},
	{Name: "lastName", Label: "Last name", Type: form.Text, Required: true},
	{Name: "email", Label: "Email", Type: form.Text},
	{Name: "phone", Label: "Phone", Type: form.Text},
	{Name: "dateOfBirth", Label: "Date of birth", Type: form.Date},
	{Name: "journeyType", Label: "Journey type", Type: form.Text, Required: true},
	{Name: "status", Label: "Status", Type: form.Select, Options: []string{model.ClientActive, model.ClientInactive, model.ClientClosed}},
}

var EventView = listview.Definition[model.Event]{
	Search: func(e model.Event) []string {
		return []string{e.Name, e.Location, e.Type, e.Description}
	},
	Categories: map[string]func(model.Event) string{
		"type":   func(e model.Event) string { return e.Type },
		"status": func(e model.Event) string { return e.Status },
	},
	Date: model.Event.When,
}

var EventFields = []form.Field{
	{Name: "name", Label: "Event name", Type: form.Text, Required: true},
	{Name: "type", Label: "Type", Type: form.Text, Required: true},
	{Name: "date", Label: "Date", Type: form.Date, Required: true},
	{Name: "location", Label: "Location", Type: form.Text},
	{Name: "capacity", Label: "Capacity", Type: form.Number},
}

var AssessmentView = listview.Definition[model.Assessment]{
	Search: func(a model.Assessment) []string {
		return []string{a.ClientName, a.JourneyType}
	},
	Categories: map[string]func(model.Assessment) string{
		"status":      func(a model.Assessment) string { return a.Status },
		"journeyType": func(a model.Assessment) string { return a.JourneyType },
	},
	Date: func(a model.Assessment) time.Time { return a.ScheduledFor },
}

var AssessmentFields = []form.Field{
	{Name: "clientId", Label: "Client", Type: form.Text, Required: true},
	{Name: "status", Label: "Status", Type: form.Select, Required: true,
		Options: []string{model.AssessmentScheduled, model.AssessmentInProgress, model.AssessmentCompleted}},
}

var TemplateView = listview.Definition[model.AssessmentTemplate]{
	Search: func(t model.AssessmentTemplate) []string {
		return []string{t.Name, t.Description, t.Category}
	},
	Categories: map[string]func(model.AssessmentTemplate) string{
		"category": func(t model.AssessmentTemplate) string { return t.Category },
	},
	Date: func(t model.AssessmentTemplate) time.Time { return t.UpdatedAt },
}

var TemplateFields = []form.Field{
	{Name: "name", Label: "Template name", Type: form.Text, Required: true},
	{Name: "sections", Label: "Sections", Type: form.List, Required: true},
}

var PackView = listview.Definition[model.AssessmentPack]{
	Search: func(p model.AssessmentPack) []string { return []string{p.Name, p.Description} },
	Date:   func(p model.AssessmentPack) time.Time { return createdAt(p.Record) },
}

var PackFields = []form.Field{
	{Name: "name", Label: "Pack name", Type: form.Text, Required: true},
	{Name: "templateIds", Label: "Templates", Type: form.List, Required: true},
}

var JourneyTypeView = listview.Definition[model.JourneyType]{
	Search: func(j model.JourneyType) []string { return []string{j.Name, j.Description} },
	Date:   func(j model.JourneyType) time.Time { return createdAt(j.Record) },
}

var JourneyTypeFields = []form.Field{
	{Name: "name", Label: "Journey name", Type: form.Text, Required: true},
	{Name: "slug", Label: "Slug", Type: form.Text, Required: true},
}

var TaskView = listview.Definition[model.Task]{
	Search: func(t model.Task) []string { return []string{t.Title, t.Description} },
	Categories: map[string]func(model.Task) string{
		"status":     func(t model.Task) string { return t.Status },
		"priority":   func(t model.Task) string { return t.Priority },
		"assigneeId": func(t model.Task) string { return t.AssigneeID },
	},
	Date: func(t model.Task) time.Time { return model.ParseDate(t.DueDate) },
}

var TaskFields = []form.Field{
	{Name: "title", Label: "Title", Type: form.Text, Required: true},
	{Name: "dueDate", Label: "Due date", Type: form.Date},
	{Name: "priority", Label: "Priority", Type: form.Select, Options: []string{"low", "medium", "high"}},
	{Name: "status", Label: "Status", Type: form.Select, Options: []string{model.TaskOpen, model.TaskDone}},
}

var UserView = listview.Definition[model.User]{
	Search: func(u model.User) []string { return []string{u.Name, u.Email, u.Role} },
	Categories: map[string]func(model.User) string{
		"role": func(u model.User) string { return u.Role },
	},
	Date: func(u model.User) time.Time { return createdAt(u.Record) },
}

var UserFields = []form.Field{
	{Name: "name", Label: "Name", Type: form.Text, Required: true},
	{Name: "email", Label: "Email", Type: form.Text, Required: true},
	{Name: "role", Label: "Role", Type: form.Select, Required: true,
		Options: []string{model.RoleSuperAdmin, model.RoleAdmin, model.RoleCaseWorker}},
}

var TimelineView = listview.Definition[model.TimelineEvent]{
	Search: func(e model.TimelineEvent) []string { return []string{e.Title, e.Description} },
	Categories: map[string]func(model.TimelineEvent) string{
		"kind": func(e model.TimelineEvent) string { return e.Kind },
	},
	Date: func(e model.TimelineEvent) time.Time { return e.OccurredAt },
}

var OrganizationView = listview.Definition[model.Organization]{
	Search: func(o model.Organization) []string { return []string{o.Name, o.Slug, o.ContactEmail} },
	Categories: map[string]func(model.Organization) string{
		"status": func(o model.Organization) string { return o.Status },
	},
	Date: func(o model.Organization) time.Time { return createdAt(o.Record) },
}

// Categories returns the sorted category names of a view, for query parsing
func Categories[T any](d listview.Definition[T]) []string {
	return slices.Sorted(maps.Keys(d.Categories))
}
