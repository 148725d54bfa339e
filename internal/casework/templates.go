package casework

import (
	"context"

	"casedesk/internal/form"
	"casedesk/internal/model"
	"casedesk/internal/notify"
)

// CreateTemplate creates an assessment template. A template submitted without
// sections starts with one section holding one question with one option.
func (s *Service) CreateTemplate(ctx context.Context, scope Scope, input model.AssessmentTemplate, n notify.Notifier) (model.AssessmentTemplate, error) {
	if len(input.Sections) == 0 {
		input.Sections = form.NewTemplate(input.Name).Sections
	}
	return s.Templates.Create(ctx, scope, input, n)
}

// EditTemplate applies edit to the stored template and saves it. When edit
// reports that a change was refused nothing is written and ErrRefused is
// returned; the editor has already notified the user.
func (s *Service) EditTemplate(ctx context.Context, scope Scope, id string, n notify.Notifier, edit func(*form.TemplateEditor) bool) (model.AssessmentTemplate, error) {
	f, err := s.Templates.EditForm(ctx, scope, id, n)
	if err != nil {
		return model.AssessmentTemplate{}, err
	}
	editor := form.NewTemplateEditor(f)
	if !edit(editor) {
		f.Cancel()
		return editor.Template(), ErrRefused
	}
	return f.Submit(ctx)
}
