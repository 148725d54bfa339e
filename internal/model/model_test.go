package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientNormalize(t *testing.T) {
	c := Client{FirstName: "  Jane ", LastName: "Doe  "}.Normalize()
	assert.Equal(t, "Jane", c.FirstName)
	assert.Equal(t, "Doe", c.LastName)
	assert.Equal(t, "Jane Doe", c.Name)
	assert.Equal(t, ClientActive, c.Status)

	kept := Client{Name: "J. Doe", Status: ClientInactive}.Normalize()
	assert.Equal(t, "J. Doe", kept.Name, "name is kept when there are no parts to derive it from")
	assert.Equal(t, ClientInactive, kept.Status)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-11", time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)},
		{"2025-03-11T14:30:00Z", time.Date(2025, 3, 11, 14, 30, 0, 0, time.UTC)},
		{"11/03/2025", time.Time{}},
		{"", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ParseDate(tt.in)), "got %v", ParseDate(tt.in))
		})
	}
	assert.True(t, Event{Date: "2025-03-11"}.When().Equal(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)))
}

func TestScoreAgainst(t *testing.T) {
	tmpl := AssessmentTemplate{Sections: []Section{
		{ID: "s1", Questions: []Question{
			{ID: "mood", Options: []Option{{ID: "o1", Value: "low", Score: 3}, {ID: "o2", Value: "ok", Score: 1}}},
			{ID: "sleep", Options: []Option{{ID: "o3", Score: 2}, {ID: "o4", Score: 0}}},
		}},
	}}

	r := AssessmentResult{Answers: map[string]string{
		"mood":    "low", // matched by value
		"sleep":   "o3",  // matched by option id
		"missing": "o1",
	}}
	assert.Equal(t, 5, r.ScoreAgainst(tmpl))

	r.Answers = map[string]string{"mood": "unknown"}
	assert.Zero(t, r.ScoreAgainst(tmpl))
}

func TestDisplayNameOf(t *testing.T) {
	assert.Equal(t, "Dads Group", DisplayNameOf(Event{Name: "Dads Group"}, "this event"))
	assert.Equal(t, "this event", DisplayNameOf(Event{}, "this event"))
	assert.Equal(t, "this result", DisplayNameOf(AssessmentResult{}, "this result"))
	assert.Equal(t, "Assessment for Jane Doe", DisplayNameOf(Assessment{ClientName: "Jane Doe"}, ""))
}

func TestUserPublicAndRoles(t *testing.T) {
	u := User{Name: "Robin", PasswordHash: "$2a$10$hash"}
	assert.Empty(t, u.Public().PasswordHash)
	assert.NotEmpty(t, u.PasswordHash)

	assert.True(t, ValidRole(RoleCaseWorker))
	assert.True(t, ValidRole(RoleSuperAdmin))
	assert.False(t, ValidRole("owner"))
}
