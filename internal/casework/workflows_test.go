package casework

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"casedesk/internal/blob"
	"casedesk/internal/form"
	"casedesk/internal/model"
	"casedesk/internal/notify"
	"casedesk/internal/recordstore"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRemoveLastSectionRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tmpl, err := f.svc.CreateTemplate(ctx, mainOrg, model.AssessmentTemplate{Name: "Wellbeing check"}, f.sink)
	require.NoError(t, err)
	require.Len(t, tmpl.Sections, 1)

	sink := notify.NewSink(notify.Options{})
	_, err = f.svc.EditTemplate(ctx, mainOrg, tmpl.ID, sink, func(e *form.TemplateEditor) bool {
		return e.RemoveSection(0)
	})
	require.ErrorIs(t, err, ErrRefused)
	require.Equal(t, 1, sink.Len())
	last, _ := sink.Last()
	assert.Equal(t, notify.Warning, last.Type)

	stored, err := f.svc.Templates.Get(ctx, mainOrg, tmpl.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(tmpl, stored); diff != "" {
		t.Errorf("template changed after refused edit (-want +got):\n%s", diff)
	}
}

func TestTemplateNestedEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tmpl, err := f.svc.CreateTemplate(ctx, mainOrg, model.AssessmentTemplate{Name: "Wellbeing check"}, f.sink)
	require.NoError(t, err)

	edited, err := f.svc.EditTemplate(ctx, mainOrg, tmpl.ID, f.sink, func(e *form.TemplateEditor) bool {
		return e.AddSection("Sleep") &&
			e.AddQuestion(1, "How many hours do you sleep?", model.QuestionScale) &&
			e.AddOption(1, 1, "Fewer than 5", 3) &&
			e.RemoveQuestion(1, 0)
	})
	require.NoError(t, err)
	require.Len(t, edited.Sections, 2)
	require.Len(t, edited.Sections[1].Questions, 1)
	q := edited.Sections[1].Questions[0]
	assert.Equal(t, "How many hours do you sleep?", q.Text)
	assert.Len(t, q.Options, 2)
	assert.Equal(t, tmpl.ID, edited.ID)

	_, err = f.svc.EditTemplate(ctx, mainOrg, "missing", f.sink, func(*form.TemplateEditor) bool { return true })
	assert.ErrorIs(t, err, ErrNotFound)
}

func adminInput(email string) UserInput {
	return UserInput{Name: "Robin Case", Email: email, Role: model.RoleCaseWorker, Password: "correct-horse", ConfirmPassword: "correct-horse"}
}

func TestCreateUserRejectsPasswordMismatch(t *testing.T) {
	f := newFixture(t)
	in := adminInput("robin@example.org")
	in.ConfirmPassword = "different-horse"

	_, err := f.svc.CreateUser(context.Background(), mainOrg, in, f.sink)
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 1, f.sink.Len())
	assert.Empty(t, load[model.User](t, f.store, recordstore.KeyUsers))
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateUser(ctx, mainOrg, adminInput("robin@example.org"), f.sink)
	require.NoError(t, err)
	assert.Empty(t, created.PasswordHash)

	stored := load[model.User](t, f.store, recordstore.KeyUsers)
	require.Len(t, stored, 1)
	assert.NotEmpty(t, stored[0].PasswordHash)
	assert.Equal(t, model.UserActive, stored[0].Status)

	sink := notify.NewSink(notify.Options{})
	_, err = f.svc.CreateUser(ctx, TenantScope("org-community"), adminInput("Robin@Example.org"), sink)
	require.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, 1, sink.Len())
	assert.Len(t, load[model.User](t, f.store, recordstore.KeyUsers), 1)
}

func TestOnlySuperAdminsGrantSuperAdmin(t *testing.T) {
	f := newFixture(t)
	in := adminInput("root@example.org")
	in.Role = model.RoleSuperAdmin

	_, err := f.svc.CreateUser(context.Background(), mainOrg, in, f.sink)
	require.ErrorIs(t, err, ErrValidation)

	u, err := f.svc.CreateUser(context.Background(), Scope{All: true}, in, f.sink)
	require.NoError(t, err)
	assert.Equal(t, "", u.TenantID)
}

func TestUpdateUserKeepsPasswordUnlessGiven(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.CreateUser(ctx, mainOrg, adminInput("robin@example.org"), f.sink)
	require.NoError(t, err)

	_, err = f.svc.UpdateUser(ctx, mainOrg, created.ID, UserInput{Name: "Robin C.", Email: "robin@example.org", Role: model.RoleAdmin}, f.sink)
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, "robin@example.org", "correct-horse")
	require.NoError(t, err)

	_, err = f.svc.UpdateUser(ctx, mainOrg, created.ID, UserInput{Name: "Robin C.", Email: "robin@example.org", Role: model.RoleAdmin, Password: "battery-staple", ConfirmPassword: "battery-staple"}, f.sink)
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, "robin@example.org", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	u, err := f.svc.Login(ctx, "ROBIN@example.org", "battery-staple")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Empty(t, u.PasswordHash)
}

func TestTenantAdminCannotManageSuperAdmins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := adminInput("sam@example.org")
	in.Role = model.RoleSuperAdmin
	in.TenantID = "org-main"
	root, err := f.svc.CreateUser(ctx, Scope{All: true}, in, f.sink)
	require.NoError(t, err)
	require.Equal(t, "org-main", root.TenantID)

	sink := notify.NewSink(notify.Options{})
	_, err = f.svc.UpdateUser(ctx, mainOrg, root.ID, UserInput{
		Name: "Sam", Email: "sam@example.org", Role: model.RoleAdmin,
		Password: "hijacked1", ConfirmPassword: "hijacked1",
	}, sink)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, 1, sink.Len())
	_, err = f.svc.Login(ctx, "sam@example.org", "hijacked1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	stored := load[model.User](t, f.store, recordstore.KeyUsers)
	require.Len(t, stored, 1)
	assert.Equal(t, model.RoleSuperAdmin, stored[0].Role)

	_, err = f.svc.DeleteUser(ctx, mainOrg, root.ID, sink)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Len(t, load[model.User](t, f.store, recordstore.KeyUsers), 1)

	super := Scope{TenantID: "org-main", Super: true}
	u, err := f.svc.UpdateUser(ctx, super, root.ID, UserInput{Name: "Sam Root", Email: "sam@example.org", Role: model.RoleSuperAdmin}, f.sink)
	require.NoError(t, err)
	assert.Equal(t, "Sam Root", u.Name)
	_, err = f.svc.DeleteUser(ctx, super, root.ID, f.sink)
	require.NoError(t, err)
	assert.Empty(t, load[model.User](t, f.store, recordstore.KeyUsers))
}

func TestLoginAndBootstrap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Bootstrap(ctx, "Admin@Example.org", "s3cret-pass", "Site Admin")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.svc.Bootstrap(ctx, "other@example.org", "s3cret-pass", "Other")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := f.svc.Login(ctx, "admin@example.org", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, model.RoleSuperAdmin, u.Role)

	_, err = f.svc.Login(ctx, "admin@example.org", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "nobody@example.org", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func scoringTemplate() model.AssessmentTemplate {
	return model.AssessmentTemplate{
		Name: "Perinatal wellbeing",
		Sections: []model.Section{{
			ID:    "s1",
			Title: "Mood",
			Questions: []model.Question{
				{ID: "q1", Text: "Sleep", Type: model.QuestionChoice, Options: []model.Option{
					{ID: "o1", Label: "Poor", Score: 3},
					{ID: "o2", Label: "Good"},
				}},
				{ID: "q2", Text: "Support at home", Type: model.QuestionChoice, Options: []model.Option{
					{ID: "o3", Label: "No", Value: "no", Score: 2},
				}},
			},
		}},
	}
}

func TestSubmitResultScoresAndCompletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tmpl, err := f.svc.CreateTemplate(ctx, mainOrg, scoringTemplate(), f.sink)
	require.NoError(t, err)
	_, err = f.svc.JourneyTypes.Create(ctx, mainOrg, model.JourneyType{Name: "Perinatal Support", DefaultTemplateID: tmpl.ID}, f.sink)
	require.NoError(t, err)
	intake, err := f.svc.CreateClient(ctx, mainOrg, model.Client{FirstName: "Jane", LastName: "Doe", JourneyType: "perinatal-support"}, f.sink)
	require.NoError(t, err)

	res, err := f.svc.SubmitResult(ctx, mainOrg, intake.Client.ID, model.AssessmentResult{
		AssessmentID: intake.Assessment.ID,
		Answers:      map[string]string{"q1": "o1", "q2": "no", "q9": "o1"},
	}, f.sink)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Score)
	assert.Equal(t, tmpl.ID, res.TemplateID)

	results, err := f.svc.Results(ctx, mainOrg, intake.Client.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)

	a, err := f.svc.Assessments.Get(ctx, mainOrg, intake.Assessment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssessmentCompleted, a.Status)

	_, err = f.svc.SubmitResult(ctx, TenantScope("org-community"), intake.Client.ID, model.AssessmentResult{AssessmentID: intake.Assessment.ID}, f.sink)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInteractionsAndProgressReachTimeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	intake, err := f.svc.CreateClient(ctx, mainOrg, model.Client{FirstName: "Jane", LastName: "Doe", JourneyType: "perinatal-support"}, f.sink)
	require.NoError(t, err)
	id := intake.Client.ID

	_, err = f.svc.LogInteraction(ctx, mainOrg, id, "staff-1", model.Interaction{Channel: "carrier-pigeon", Summary: "hello"}, f.sink)
	require.ErrorIs(t, err, ErrValidation)

	in, err := f.svc.LogInteraction(ctx, mainOrg, id, "staff-1", model.Interaction{Channel: "phone", Summary: "Follow-up call"}, f.sink)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", in.StaffID)
	assert.Equal(t, "org-main", in.TenantID)

	f.now = testNow.Add(time.Hour)
	_, err = f.svc.RecordProgress(ctx, mainOrg, id, model.JourneyProgress{Stage: "Antenatal"}, f.sink)
	require.NoError(t, err)

	timeline, err := f.svc.Timeline(ctx, mainOrg, id)
	require.NoError(t, err)
	require.Len(t, timeline, 4)
	assert.Equal(t, model.TimelineProgress, timeline[0].Kind)
	assert.Equal(t, "Moved to Antenatal", timeline[0].Title)

	interactions, err := f.svc.Interactions(ctx, mainOrg, id)
	require.NoError(t, err)
	assert.Len(t, interactions, 1)

	_, err = f.svc.DeleteClient(ctx, mainOrg, id, f.sink)
	require.NoError(t, err)
	keys, err := f.store.Keys(ctx)
	require.NoError(t, err)
	assert.NotContains(t, keys, recordstore.ClientKey(recordstore.PrefixTimelineEvents, id))
	assert.Len(t, load[model.Assessment](t, f.store, recordstore.KeyAssessments), 1, "assessments may refer to deleted clients")
}

func TestDashboardByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedEvents(t, f)
	require.NoError(t, f.svc.Tasks.Coll.Save(ctx, []model.Task{
		{Record: model.Record{ID: "t1", TenantID: "org-main"}, Title: "Call Jane", AssigneeID: "u1", Status: model.TaskOpen},
		{Record: model.Record{ID: "t2", TenantID: "org-main"}, Title: "Book room", AssigneeID: "u2", Status: model.TaskOpen},
		{Record: model.Record{ID: "t3", TenantID: "org-main"}, Title: "Old", AssigneeID: "u1", Status: model.TaskDone},
	}))
	_, err := f.svc.CreateClient(ctx, mainOrg, model.Client{FirstName: "Jane", LastName: "Doe", JourneyType: "perinatal-support"}, f.sink)
	require.NoError(t, err)

	worker, err := f.svc.Dashboard(ctx, mainOrg, model.RoleCaseWorker, "u1")
	require.NoError(t, err)
	require.Len(t, worker.OpenTasks, 1)
	assert.Equal(t, "t1", worker.OpenTasks[0].ID)
	assert.Len(t, worker.UpcomingEvents, DashboardLimit)
	assert.Equal(t, "40", worker.UpcomingEvents[0].ID)
	assert.Equal(t, 1, worker.ClientsByStatus[model.ClientActive])
	assert.Nil(t, worker.UsersByRole)

	admin, err := f.svc.Dashboard(ctx, mainOrg, model.RoleAdmin, "u9")
	require.NoError(t, err)
	assert.Len(t, admin.OpenTasks, 2)
	assert.Equal(t, 0, admin.Counts[recordstore.KeyUsers])
	assert.Equal(t, 1, admin.ClientsByJourney["perinatal-support"])
}

func TestExportFiltersByTenant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedEvents(t, f)
	_, err := f.svc.Events.Create(ctx, TenantScope("org-community"), model.Event{Name: "Other", Type: "group", Date: "2025-03-20"}, f.sink)
	require.NoError(t, err)
	intake, err := f.svc.CreateClient(ctx, mainOrg, model.Client{FirstName: "Jane", LastName: "Doe", JourneyType: "perinatal-support"}, f.sink)
	require.NoError(t, err)
	_, err = f.svc.CreateUser(ctx, mainOrg, adminInput("robin@example.org"), f.sink)
	require.NoError(t, err)

	bs, err := blob.NewFSStore(t.TempDir())
	require.NoError(t, err)

	res, err := f.svc.Export(ctx, mainOrg, bs, nil, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, blob.DriverFS, res.Driver)
	assert.Empty(t, res.URL)
	assert.True(t, strings.HasPrefix(res.Key, "exports/org-main/20250310T093000Z-"), res.Key)
	assert.True(t, strings.HasSuffix(res.Key, ".json"), res.Key)
	assert.Equal(t, 5, res.Collections[recordstore.KeyEvents])
	assert.Equal(t, 2, res.Collections[recordstore.ClientKey(recordstore.PrefixTimelineEvents, intake.Client.ID)])

	_, data, err := bs.Get(ctx, res.Key)
	require.NoError(t, err)
	var doc Export
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "org-main", doc.TenantID)
	assert.NotContains(t, doc.Collections, recordstore.KeyUsers)
	for _, e := range doc.Collections[recordstore.KeyEvents] {
		assert.Equal(t, "org-main", e["tenantId"])
	}
}

func TestExportsInTheSameSecondAreKept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedEvents(t, f)
	bs, err := blob.NewFSStore(t.TempDir())
	require.NoError(t, err)

	first, err := f.svc.Export(ctx, mainOrg, bs, []string{recordstore.KeyEvents}, time.Minute)
	require.NoError(t, err)
	second, err := f.svc.Export(ctx, mainOrg, bs, []string{recordstore.KeyEvents}, time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, first.Key, second.Key)

	infos, err := bs.List(ctx, "exports/org-main/")
	require.NoError(t, err)
	assert.Len(t, infos, 2)
}

func TestExportRejectsUsersAndUnknownKeys(t *testing.T) {
	f := newFixture(t)
	bs, err := blob.NewFSStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{recordstore.KeyUsers, "organizations", "timeline_events_../x"} {
		_, err := f.svc.Export(context.Background(), mainOrg, bs, []string{key}, time.Minute)
		assert.ErrorIs(t, err, ErrValidation, key)
	}
}
