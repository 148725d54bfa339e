package form

import (
	"context"
	"testing"

	"casedesk/internal/model"
	"casedesk/internal/notify"
	"casedesk/internal/recordstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestAddAt(t *testing.T) {
	base := []string{"a", "c"}
	assert.Equal(t, []string{"a", "b", "c"}, AddAt(base, 1, "b"))
	assert.Equal(t, []string{"a", "c", "z"}, AddAt(base, 99, "z"))
	assert.Equal(t, []string{"a", "c"}, base)
}

func TestRemoveAtGuardsTheLastElement(t *testing.T) {
	sink := notify.NewSink(notify.Options{})

	list, ok := RemoveAt([]string{"only"}, 0, sink, "option")
	assert.False(t, ok)
	assert.Equal(t, []string{"only"}, list)
	require.Equal(t, 1, sink.Len())
	last, _ := sink.Last()
	assert.Equal(t, notify.Warning, last.Type)
	assert.Equal(t, "Cannot remove option", last.Title)
}

func TestRemoveAtOutOfRange(t *testing.T) {
	sink := notify.NewSink(notify.Options{})
	list, ok := RemoveAt([]string{"a", "b"}, 5, sink, "question")
	assert.False(t, ok)
	assert.Len(t, list, 2)
	assert.Equal(t, 1, sink.Len())
}

func TestRemoveAtKeepsOrder(t *testing.T) {
	base := []int{1, 2, 3}
	list, ok := RemoveAt(base, 1, notify.Discard, "x")
	assert.True(t, ok)
	assert.Equal(t, []int{1, 3}, list)
	assert.Equal(t, []int{1, 2, 3}, base)
}

func newEditor(t *testing.T) (*TemplateEditor, *notify.Sink, *Controller[model.AssessmentTemplate]) {
	t.Helper()
	store := recordstore.New(recordstore.NewMemoryBackend(), zaptest.NewLogger(t))
	templates := recordstore.NewCollection[model.AssessmentTemplate](store, recordstore.KeyAssessmentTemplates)
	sink := notify.NewSink(notify.Options{})
	ctrl := NewCreate(templates, NewTemplate("Wellbeing check"), Options{
		Label:    "Template",
		Fields:   []Field{{Name: "name", Label: "Name", Required: true}},
		Notifier: sink,
	})
	return NewTemplateEditor(ctrl), sink, ctrl
}

func TestTemplateEditorFloorGuards(t *testing.T) {
	tests := []struct {
		name   string
		remove func(e *TemplateEditor) bool
	}{
		{"last section", func(e *TemplateEditor) bool { return e.RemoveSection(0) }},
		{"last question", func(e *TemplateEditor) bool { return e.RemoveQuestion(0, 0) }},
		{"last option", func(e *TemplateEditor) bool { return e.RemoveOption(0, 0, 0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, sink, _ := newEditor(t)
			before := e.Template()

			assert.False(t, tt.remove(e))
			assert.Equal(t, before, e.Template())
			require.Equal(t, 1, sink.Len())
			last, _ := sink.Last()
			assert.Equal(t, notify.Warning, last.Type)
		})
	}
}

func TestTemplateEditorAddAndRemove(t *testing.T) {
	e, sink, ctrl := newEditor(t)

	require.True(t, e.AddSection("Support network"))
	require.True(t, e.AddQuestion(1, "Who can you call?", model.QuestionText))
	require.True(t, e.AddOption(0, 0, "Yes", 2))
	require.True(t, e.UpdateQuestion(0, 0, "Do you feel supported?", true))

	tpl := e.Template()
	require.Len(t, tpl.Sections, 2)
	assert.Len(t, tpl.Sections[1].Questions, 2)
	assert.Len(t, tpl.Sections[0].Questions[0].Options, 2)
	assert.True(t, tpl.Sections[0].Questions[0].Required)

	require.True(t, e.RemoveOption(0, 0, 0))
	require.True(t, e.RemoveQuestion(1, 0))
	require.True(t, e.RemoveSection(0))

	tpl = e.Template()
	require.Len(t, tpl.Sections, 1)
	assert.Equal(t, "Support network", tpl.Sections[0].Title)
	assert.Equal(t, "Who can you call?", tpl.Sections[0].Questions[0].Text)
	assert.Zero(t, sink.Len())

	saved, err := ctrl.Submit(context.Background())
	require.NoError(t, err)
	assert.Len(t, saved.Sections, 1)
}

func TestTemplateEditorDoesNotAliasPreviousState(t *testing.T) {
	e, _, _ := newEditor(t)
	before := e.Template()
	require.True(t, e.AddOption(0, 0, "Sometimes", 1))
	assert.Len(t, before.Sections[0].Questions[0].Options, 1)
}

func TestTemplateEditorBadIndex(t *testing.T) {
	e, sink, _ := newEditor(t)
	assert.False(t, e.AddQuestion(3, "x", ""))
	assert.Equal(t, 1, sink.Len())
}
