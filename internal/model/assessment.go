package model

import "time"

// Assessment statuses
const (
	AssessmentScheduled  = "scheduled"
	AssessmentInProgress = "in-progress"
	AssessmentCompleted  = "completed"
)

// Assessment is an assessment scheduled for, or completed by, a client
type Assessment struct {
	Record
	ClientID     string    `json:"clientId"`
	ClientName   string    `json:"clientName,omitempty"`
	TemplateID   string    `json:"templateId,omitempty"`
	JourneyType  string    `json:"journeyType,omitempty"`
	Status       string    `json:"status"`
	ScheduledFor time.Time `json:"scheduledFor,omitzero"`
}

func (a Assessment) WithMeta(r Record) Assessment { a.Record = r; return a }

func (a Assessment) DisplayName() string {
	if a.ClientName == "" {
		return ""
	}
	return "Assessment for " + a.ClientName
}

// AssessmentTemplate is a questionnaire made of sections, questions and options.
// Each nested list always holds at least one element.
type AssessmentTemplate struct {
	Record
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Sections    []Section `json:"sections"`
}

func (t AssessmentTemplate) WithMeta(r Record) AssessmentTemplate { t.Record = r; return t }

func (t AssessmentTemplate) DisplayName() string { return t.Name }

// Question returns the question with the given id.
func (t AssessmentTemplate) Question(id string) (Question, bool) {
	for _, s := range t.Sections {
		for _, q := range s.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

type Section struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Question types
const (
	QuestionText     = "text"
	QuestionChoice   = "choice"
	QuestionScale    = "scale"
	QuestionCheckbox = "checkbox"
)

type Question struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Options  []Option `json:"options"`
}

type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value,omitempty"`
	Score int    `json:"score,omitempty"`
}

// AssessmentPack groups templates delivered together
type AssessmentPack struct {
	Record
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	TemplateIDs []string `json:"templateIds"`
}

func (p AssessmentPack) WithMeta(r Record) AssessmentPack { p.Record = r; return p }

func (p AssessmentPack) DisplayName() string { return p.Name }

// AssessmentResult stores a client's answers to an assessment.
// Results live under the per-client key assessment_results_<clientId>.
type AssessmentResult struct {
	Record
	AssessmentID string            `json:"assessmentId"`
	TemplateID   string            `json:"templateId,omitempty"`
	Answers      map[string]string `json:"answers"`
	Score        int               `json:"score"`
}

func (r AssessmentResult) WithMeta(m Record) AssessmentResult { r.Record = m; return r }

// ScoreAgainst sums the scores of the options selected in the answers.
// Answers to questions missing from the template contribute nothing.
func (r AssessmentResult) ScoreAgainst(t AssessmentTemplate) int {
	total := 0
	for qid, answer := range r.Answers {
		q, ok := t.Question(qid)
		if !ok {
			continue
		}
		for _, o := range q.Options {
			if o.ID == answer || (o.Value != "" && o.Value == answer) {
				total += o.Score
				break
			}
		}
	}
	return total
}
