package casework

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"casedesk/internal/form"
	"casedesk/internal/listview"
	"casedesk/internal/model"
	"casedesk/internal/notify"
	"casedesk/internal/recordstore"

	"go.uber.org/zap"
)

// Intake is the result of registering a client
type Intake struct {
	Client     model.Client     `json:"client"`
	Assessment model.Assessment `json:"assessment,omitzero"`
}

// CreateClient registers a client and schedules their first assessment.
// The two records are saved independently; when scheduling fails the client
// stays registered and the error is returned with the partial intake.
func (s *Service) CreateClient(ctx context.Context, scope Scope, input model.Client, n notify.Notifier) (Intake, error) {
	client, err := s.Clients.Create(ctx, scope, input, n)
	if err != nil {
		return Intake{}, err
	}
	intake := Intake{Client: client}

	assessment := model.Assessment{
		Record:       s.meta(client.TenantID),
		ClientID:     client.ID,
		ClientName:   client.Name,
		JourneyType:  client.JourneyType,
		TemplateID:   s.defaultTemplate(ctx, scope, client.JourneyType),
		Status:       model.AssessmentScheduled,
		ScheduledFor: s.now().Add(s.assessAfter),
	}
	if _, err := s.Assessments.Coll.Upsert(ctx, assessment); err != nil {
		s.log.Error("Failed to schedule assessment", zap.String("client_id", client.ID), zap.Error(err))
		notify.SendWarning(n, "Assessment not scheduled", fmt.Sprintf("%s was registered but no assessment could be scheduled.", client.Name))
		return intake, fmt.Errorf("schedule assessment: %w", err)
	}
	intake.Assessment = assessment

	s.addTimeline(ctx, client, model.TimelineRegistered, "Client registered", "Journey: "+client.JourneyType)
	s.addTimeline(ctx, client, model.TimelineAssessment, "Assessment scheduled",
		"Scheduled for "+assessment.ScheduledFor.Format(model.DateLayout))
	s.log.Info("Client registered",
		zap.String("client_id", client.ID),
		zap.String("assessment_id", assessment.ID),
		zap.String("tenant_id", client.TenantID))
	return intake, nil
}

// DeleteClient removes the client and every per-client collection.
// Assessments referring to the client are left in place.
func (s *Service) DeleteClient(ctx context.Context, scope Scope, id string, n notify.Notifier) (model.Client, error) {
	client, err := s.Clients.Delete(ctx, scope, id, n)
	if err != nil {
		return client, err
	}
	for _, prefix := range recordstore.ClientPrefixes() {
		if err := s.store.Drop(ctx, recordstore.ClientKey(prefix, client.ID)); err != nil {
			s.log.Warn("Failed to drop client collection", zap.String("prefix", prefix), zap.Error(err))
		}
	}
	return client, nil
}

func (s *Service) defaultTemplate(ctx context.Context, scope Scope, journey string) string {
	journeys, err := s.JourneyTypes.All(ctx, scope)
	if err != nil {
		s.log.Warn("Could not read journey types", zap.Error(err))
		return ""
	}
	for _, j := range journeys {
		if j.Slug == journey || strings.EqualFold(j.Name, journey) {
			return j.DefaultTemplateID
		}
	}
	return ""
}

func clientCollection[T model.Entity[T]](s *Service, prefix, clientID string) *recordstore.Collection[T] {
	return recordstore.NewCollection[T](s.store, recordstore.ClientKey(prefix, clientID))
}

func listForClient[T model.Entity[T]](ctx context.Context, s *Service, scope Scope, prefix, clientID string) ([]T, error) {
	if _, err := s.Clients.Get(ctx, scope, clientID); err != nil {
		return nil, err
	}
	return clientCollection[T](s, prefix, clientID).Load(ctx)
}

// submitForClient validates input through a create form on the client's collection
func submitForClient[T model.Entity[T]](ctx context.Context, s *Service, client model.Client, prefix, label string, fields []form.Field, input T, n notify.Notifier) (T, error) {
	input = input.WithMeta(model.Record{TenantID: client.TenantID})
	f := form.NewCreate(clientCollection[T](s, prefix, client.ID), input, form.Options{
		Label:    label,
		Fields:   fields,
		Notifier: n,
		Logger:   s.log,
		Now:      s.now,
		NewID:    s.newID,
	})
	return f.Submit(ctx)
}

// addTimeline appends an automatic entry. Failures are logged only.
func (s *Service) addTimeline(ctx context.Context, client model.Client, kind, title, description string) {
	entry := model.TimelineEvent{
		Record:      s.meta(client.TenantID),
		Kind:        kind,
		Title:       title,
		Description: description,
		OccurredAt:  s.now(),
	}
	if _, err := clientCollection[model.TimelineEvent](s, recordstore.PrefixTimelineEvents, client.ID).Upsert(ctx, entry); err != nil {
		s.log.Warn("Failed to record timeline entry", zap.String("client_id", client.ID), zap.String("kind", kind), zap.Error(err))
	}
}

var timelineFields = []form.Field{
	{Name: "title", Label: "Title", Type: form.Text, Required: true},
}

// Timeline returns the client's timeline, newest first
func (s *Service) Timeline(ctx context.Context, scope Scope, clientID string) ([]model.TimelineEvent, error) {
	entries, err := listForClient[model.TimelineEvent](ctx, s, scope, recordstore.PrefixTimelineEvents, clientID)
	if err != nil {
		return nil, err
	}
	return TimelineView.Filter(entries, listview.Query{SortByDate: true}), nil
}

// AddNote adds a manual entry to the client's timeline
func (s *Service) AddNote(ctx context.Context, scope Scope, clientID string, entry model.TimelineEvent, n notify.Notifier) (model.TimelineEvent, error) {
	client, err := s.Clients.Get(ctx, scope, clientID)
	if err != nil {
		return model.TimelineEvent{}, err
	}
	if entry.Kind == "" {
		entry.Kind = model.TimelineNote
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = s.now()
	}
	return submitForClient(ctx, s, client, recordstore.PrefixTimelineEvents, "Note", timelineFields, entry, n)
}

var interactionFields = []form.Field{
	{Name: "channel", Label: "Channel", Type: form.Select, Required: true, Options: []string{"phone", "email", "in-person", "video", "text"}},
	{Name: "summary", Label: "Summary", Type: form.Text, Required: true},
}

func (s *Service) Interactions(ctx context.Context, scope Scope, clientID string) ([]model.Interaction, error) {
	return listForClient[model.Interaction](ctx, s, scope, recordstore.PrefixInteractions, clientID)
}

// LogInteraction records a contact with the client made by staffID
func (s *Service) LogInteraction(ctx context.Context, scope Scope, clientID, staffID string, in model.Interaction, n notify.Notifier) (model.Interaction, error) {
	client, err := s.Clients.Get(ctx, scope, clientID)
	if err != nil {
		return model.Interaction{}, err
	}
	if in.StaffID == "" {
		in.StaffID = staffID
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = s.now()
	}
	saved, err := submitForClient(ctx, s, client, recordstore.PrefixInteractions, "Interaction", interactionFields, in, n)
	if err != nil {
		return saved, err
	}
	s.addTimeline(ctx, client, model.TimelineInteraction, "Interaction by "+saved.Channel, saved.Summary)
	return saved, nil
}

var progressFields = []form.Field{
	{Name: "stage", Label: "Stage", Type: form.Text, Required: true},
}

func (s *Service) Progress(ctx context.Context, scope Scope, clientID string) ([]model.JourneyProgress, error) {
	return listForClient[model.JourneyProgress](ctx, s, scope, recordstore.PrefixJourneyProgress, clientID)
}

// RecordProgress moves the client to a stage of their journey
func (s *Service) RecordProgress(ctx context.Context, scope Scope, clientID string, p model.JourneyProgress, n notify.Notifier) (model.JourneyProgress, error) {
	client, err := s.Clients.Get(ctx, scope, clientID)
	if err != nil {
		return model.JourneyProgress{}, err
	}
	if p.Status == "" {
		p.Status = "reached"
	}
	if p.ReachedAt.IsZero() {
		p.ReachedAt = s.now()
	}
	saved, err := submitForClient(ctx, s, client, recordstore.PrefixJourneyProgress, "Progress", progressFields, p, n)
	if err != nil {
		return saved, err
	}
	s.addTimeline(ctx, client, model.TimelineProgress, "Moved to "+saved.Stage, saved.Note)
	return saved, nil
}

var resultFields = []form.Field{
	{Name: "assessmentId", Label: "Assessment", Type: form.Text, Required: true},
	{Name: "answers", Label: "Answers", Type: form.List, Required: true},
}

func (s *Service) Results(ctx context.Context, scope Scope, clientID string) ([]model.AssessmentResult, error) {
	return listForClient[model.AssessmentResult](ctx, s, scope, recordstore.PrefixAssessmentResults, clientID)
}

// SubmitResult stores the client's answers, scores them against the
// assessment's template and marks the assessment completed.
func (s *Service) SubmitResult(ctx context.Context, scope Scope, clientID string, res model.AssessmentResult, n notify.Notifier) (model.AssessmentResult, error) {
	client, err := s.Clients.Get(ctx, scope, clientID)
	if err != nil {
		return model.AssessmentResult{}, err
	}
	var assessment model.Assessment
	if res.AssessmentID != "" {
		assessment, err = s.Assessments.Get(ctx, scope, res.AssessmentID)
		if err == nil && assessment.ClientID != client.ID {
			err = ErrNotFound
		}
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				notify.SendError(n, "Assessment not found", "The assessment does not belong to this client.")
			}
			return model.AssessmentResult{}, err
		}
	}
	if res.TemplateID == "" {
		res.TemplateID = assessment.TemplateID
	}
	if res.TemplateID != "" {
		if tmpl, err := s.Templates.Get(ctx, scope, res.TemplateID); err == nil {
			res.Score = res.ScoreAgainst(tmpl)
		} else {
			s.log.Warn("Template not available for scoring", zap.String("template_id", res.TemplateID), zap.Error(err))
		}
	}

	saved, err := submitForClient(ctx, s, client, recordstore.PrefixAssessmentResults, "Assessment result", resultFields, res, n)
	if err != nil {
		return saved, err
	}

	assessment.Status = model.AssessmentCompleted
	assessment.UpdatedAt = s.now()
	if err := s.Assessments.Coll.Replace(ctx, assessment); err != nil {
		s.log.Warn("Failed to mark assessment completed", zap.String("assessment_id", assessment.ID), zap.Error(err))
	}
	s.addTimeline(ctx, client, model.TimelineAssessment, "Assessment completed", fmt.Sprintf("Score %d", saved.Score))
	return saved, nil
}
