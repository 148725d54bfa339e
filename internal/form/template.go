package form

import (
	"casedesk/internal/model"

	"github.com/google/uuid"
)

// NewTemplate returns a template with one section holding one question with one option
func NewTemplate(name string) model.AssessmentTemplate {
	return model.AssessmentTemplate{
		Name:     name,
		Sections: []model.Section{newSection("Section 1")},
	}
}

func newSection(title string) model.Section {
	return model.Section{
		ID:        uuid.NewString(),
		Title:     title,
		Questions: []model.Question{newQuestion("", model.QuestionChoice)},
	}
}

func newQuestion(text, kind string) model.Question {
	if kind == "" {
		kind = model.QuestionChoice
	}
	return model.Question{
		ID:      uuid.NewString(),
		Text:    text,
		Type:    kind,
		Options: []model.Option{newOption("", 0)},
	}
}

func newOption(label string, score int) model.Option {
	return model.Option{ID: uuid.NewString(), Label: label, Value: label, Score: score}
}

// TemplateEditor edits the nested lists of an assessment template held by a form.
// Removals that would leave a list empty are refused with a single notification.
type TemplateEditor struct {
	form *Controller[model.AssessmentTemplate]
}

func NewTemplateEditor(form *Controller[model.AssessmentTemplate]) *TemplateEditor {
	return &TemplateEditor{form: form}
}

func (e *TemplateEditor) Template() model.AssessmentTemplate { return e.form.State() }

// edit applies fn to the template and commits the result only when fn reports success
func (e *TemplateEditor) edit(fn func(t model.AssessmentTemplate) (model.AssessmentTemplate, bool)) bool {
	if e.form.Closed() {
		return false
	}
	next, ok := fn(e.form.State())
	if !ok {
		return false
	}
	_ = e.form.Update(func(model.AssessmentTemplate) model.AssessmentTemplate { return next })
	return true
}

func (e *TemplateEditor) withSection(s int, fn func(model.Section) (model.Section, bool)) bool {
	return e.edit(func(t model.AssessmentTemplate) (model.AssessmentTemplate, bool) {
		ok := true
		sections, found := UpdateAt(t.Sections, s, func(sec model.Section) model.Section {
			sec, ok = fn(sec)
			return sec
		}, e.form, "section")
		if !found || !ok {
			return t, false
		}
		t.Sections = sections
		return t, true
	})
}

func (e *TemplateEditor) withQuestion(s, q int, fn func(model.Question) (model.Question, bool)) bool {
	return e.withSection(s, func(sec model.Section) (model.Section, bool) {
		ok := true
		questions, found := UpdateAt(sec.Questions, q, func(qu model.Question) model.Question {
			qu, ok = fn(qu)
			return qu
		}, e.form, "question")
		if !found || !ok {
			return sec, false
		}
		sec.Questions = questions
		return sec, true
	})
}

// AddSection appends a section with one empty question
func (e *TemplateEditor) AddSection(title string) bool {
	return e.edit(func(t model.AssessmentTemplate) (model.AssessmentTemplate, bool) {
		t.Sections = AddAt(t.Sections, len(t.Sections), newSection(title))
		return t, true
	})
}

func (e *TemplateEditor) RemoveSection(s int) bool {
	return e.edit(func(t model.AssessmentTemplate) (model.AssessmentTemplate, bool) {
		sections, ok := RemoveAt(t.Sections, s, e.form, "section")
		t.Sections = sections
		return t, ok
	})
}

func (e *TemplateEditor) RenameSection(s int, title string) bool {
	return e.withSection(s, func(sec model.Section) (model.Section, bool) {
		sec.Title = title
		return sec, true
	})
}

// AddQuestion appends a question with one empty option to section s
func (e *TemplateEditor) AddQuestion(s int, text, kind string) bool {
	return e.withSection(s, func(sec model.Section) (model.Section, bool) {
		sec.Questions = AddAt(sec.Questions, len(sec.Questions), newQuestion(text, kind))
		return sec, true
	})
}

func (e *TemplateEditor) RemoveQuestion(s, q int) bool {
	return e.withSection(s, func(sec model.Section) (model.Section, bool) {
		questions, ok := RemoveAt(sec.Questions, q, e.form, "question")
		sec.Questions = questions
		return sec, ok
	})
}

func (e *TemplateEditor) UpdateQuestion(s, q int, text string, required bool) bool {
	return e.withQuestion(s, q, func(qu model.Question) (model.Question, bool) {
		qu.Text = text
		qu.Required = required
		return qu, true
	})
}

func (e *TemplateEditor) AddOption(s, q int, label string, score int) bool {
	return e.withQuestion(s, q, func(qu model.Question) (model.Question, bool) {
		qu.Options = AddAt(qu.Options, len(qu.Options), newOption(label, score))
		return qu, true
	})
}

func (e *TemplateEditor) RemoveOption(s, q, o int) bool {
	return e.withQuestion(s, q, func(qu model.Question) (model.Question, bool) {
		options, ok := RemoveAt(qu.Options, o, e.form, "option")
		qu.Options = options
		return qu, ok
	})
}
