package form

import (
	"context"
	"testing"
	"time"

	"casedesk/internal/model"
	"casedesk/internal/notify"
	"casedesk/internal/recordstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var eventFields = []Field{
	{Name: "name", Label: "Name", Type: Text, Required: true},
	{Name: "date", Label: "Date", Type: Date, Required: true},
	{Name: "type", Label: "Type", Type: Select, Required: true, Options: []string{"workshop", "group", "class"}},
	{Name: "location", Label: "Location", Type: Text},
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func setup(t *testing.T) (*recordstore.Collection[model.Event], *notify.Sink, *clock, Options) {
	t.Helper()
	store := recordstore.New(recordstore.NewMemoryBackend(), zaptest.NewLogger(t))
	coll := recordstore.NewCollection[model.Event](store, recordstore.KeyEvents)
	sink := notify.NewSink(notify.Options{})
	c := &clock{t: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	ids := 0
	opts := Options{
		Label:    "Event",
		Fields:   eventFields,
		Notifier: sink,
		Logger:   zaptest.NewLogger(t),
		Now:      c.Now,
		NewID: func() string {
			ids++
			return "evt-" + string(rune('0'+ids))
		},
	}
	return coll, sink, c, opts
}

func TestCreateAssignsIdentity(t *testing.T) {
	coll, sink, c, opts := setup(t)
	ctx := context.Background()

	f := NewCreate(coll, model.Event{Record: model.Record{TenantID: "t1"}}, opts)
	require.NoError(t, f.Update(func(e model.Event) model.Event {
		e.Name, e.Date, e.Type = "Parenting Circle", "2026-02-10", "workshop"
		return e
	}))
	saved, err := f.Submit(ctx)
	require.NoError(t, err)

	assert.Equal(t, "evt-1", saved.ID)
	assert.Equal(t, "t1", saved.TenantID)
	assert.Equal(t, c.t, saved.CreatedAt)
	assert.Equal(t, c.t, saved.UpdatedAt)
	assert.True(t, f.Closed())

	stored, err := coll.Load(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, saved, stored[0])

	last, ok := sink.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Success, last.Type)
	assert.Equal(t, "Event created", last.Title)
	assert.Contains(t, last.Message, "Parenting Circle")

	_, err = f.Submit(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestEditPreservesIdentity(t *testing.T) {
	coll, sink, c, opts := setup(t)
	ctx := context.Background()
	created := c.t.Add(-48 * time.Hour)
	existing := model.Event{
		Record: model.Record{ID: "42", TenantID: "t1", CreatedAt: created, UpdatedAt: created},
		Name:   "Old name", Date: "2026-01-01", Type: "group",
	}
	require.NoError(t, coll.Save(ctx, []model.Event{existing}))

	f := NewEdit(coll, existing, opts)
	require.NoError(t, f.Update(func(e model.Event) model.Event {
		e.Name = "New name"
		e.ID = "tampered"
		e.CreatedAt = time.Time{}
		return e
	}))
	saved, err := f.Submit(ctx)
	require.NoError(t, err)

	assert.Equal(t, "42", saved.ID)
	assert.Equal(t, created, saved.CreatedAt)
	assert.Equal(t, c.t, saved.UpdatedAt)
	assert.Equal(t, "New name", saved.Name)

	stored, err := coll.Load(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "New name", stored[0].Name)
	assert.Equal(t, 1, sink.Len())
}

func TestEditNeverMovesUpdatedAtBackwards(t *testing.T) {
	coll, _, c, opts := setup(t)
	ctx := context.Background()
	future := c.t.Add(time.Hour)
	existing := model.Event{Record: model.Record{ID: "1", CreatedAt: c.t, UpdatedAt: future}, Name: "n", Date: "2026-01-01", Type: "class"}
	require.NoError(t, coll.Save(ctx, []model.Event{existing}))

	saved, err := NewEdit(coll, existing, opts).Submit(ctx)
	require.NoError(t, err)
	assert.False(t, saved.UpdatedAt.Before(future))
}

func TestValidationFailureWritesNothing(t *testing.T) {
	coll, sink, _, opts := setup(t)
	ctx := context.Background()

	f := NewCreate(coll, model.Event{Name: "  ", Type: "workshop"}, opts)
	_, err := f.Submit(ctx)
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Name", "Date"}, verr.Missing)

	stored, err := coll.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)

	require.Equal(t, 1, sink.Len())
	last, _ := sink.Last()
	assert.Equal(t, notify.Error, last.Type)
	assert.False(t, f.Closed(), "the form stays open for correction")
}

func TestEditOfDeletedRecordFails(t *testing.T) {
	coll, sink, _, opts := setup(t)
	gone := model.Event{Record: model.Record{ID: "9"}, Name: "n", Date: "2026-01-01", Type: "class"}

	_, err := NewEdit(coll, gone, opts).Submit(context.Background())
	assert.ErrorIs(t, err, recordstore.ErrNotFound)
	last, _ := sink.Last()
	assert.Equal(t, "Event not found", last.Title)
}

func TestBeforeSaveDerivesFields(t *testing.T) {
	store := recordstore.New(recordstore.NewMemoryBackend(), zaptest.NewLogger(t))
	clients := recordstore.NewCollection[model.Client](store, recordstore.KeyClients)
	fields := []Field{{Name: "name", Label: "Name", Required: true}}

	saved, err := NewCreate(clients, model.Client{FirstName: "Jane", LastName: "Doe"}, Options{Fields: fields}).
		BeforeSave(model.Client.Normalize).
		Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", saved.Name)
	assert.NotEmpty(t, saved.ID)
}

func TestCancelClosesWithoutSaving(t *testing.T) {
	coll, sink, _, opts := setup(t)
	f := NewCreate(coll, model.Event{Name: "x", Date: "2026-01-01", Type: "class"}, opts)
	f.Cancel()

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, f.Update(func(e model.Event) model.Event { return e }), ErrClosed)
	assert.Zero(t, sink.Len())
}

func TestValidate(t *testing.T) {
	fields := []Field{
		{Name: "title", Label: "Title", Required: true},
		{Name: "priority", Label: "Priority", Type: Select, Options: []string{"low", "high"}},
		{Name: "tags", Label: "Tags", Type: List, Required: true},
		{Name: "consent", Label: "Consent", Type: Checkbox, Required: true},
	}
	type payload struct {
		Title    string   `json:"title"`
		Priority string   `json:"priority,omitempty"`
		Tags     []string `json:"tags"`
		Consent  bool     `json:"consent"`
	}

	assert.NoError(t, Validate(payload{Title: "a", Tags: []string{"x"}, Consent: true}, fields))
	assert.NoError(t, Validate(payload{Title: "a", Priority: "high", Tags: []string{"x"}, Consent: true}, fields))

	err := Validate(payload{Priority: "urgent"}, fields)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Title", "Tags", "Consent"}, verr.Missing)
	assert.Equal(t, []string{"Priority"}, verr.Invalid)
	assert.Equal(t, "missing required fields: Title, Tags, Consent; invalid values for: Priority", verr.Error())
}
