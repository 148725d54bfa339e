package casework

import (
	"time"

	"casedesk/internal/model"
	"casedesk/internal/organization"
	"casedesk/internal/recordstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service groups the entity resources of one record store and the
// workflows spanning several collections.
type Service struct {
	store *recordstore.Store
	log   *zap.Logger

	now         func() time.Time
	newID       func() string
	hashCost    int
	assessAfter time.Duration

	Clients      *Resource[model.Client]
	Events       *Resource[model.Event]
	Assessments  *Resource[model.Assessment]
	Templates    *Resource[model.AssessmentTemplate]
	Packs        *Resource[model.AssessmentPack]
	JourneyTypes *Resource[model.JourneyType]
	Tasks        *Resource[model.Task]
	Users        *Resource[model.User]
}

type Option func(*Service)

// WithClock replaces time.Now for every resource of the service
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs replaces the record id generator
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithPasswordCost sets the bcrypt cost used for new password hashes
func WithPasswordCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// WithAssessmentDelay sets how far after intake the first assessment is scheduled
func WithAssessmentDelay(d time.Duration) Option {
	return func(s *Service) { s.assessAfter = d }
}

func New(store *recordstore.Store, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.L()
	}
	log = log.Named("casework")
	s := &Service{
		store:       store,
		log:         log,
		now:         time.Now,
		newID:       uuid.NewString,
		hashCost:    bcrypt.DefaultCost,
		assessAfter: 7 * 24 * time.Hour,

		Clients:      NewResource(store, recordstore.KeyClients, "Client", ClientView, ClientFields, log),
		Events:       NewResource(store, recordstore.KeyEvents, "Event", EventView, EventFields, log),
		Assessments:  NewResource(store, recordstore.KeyAssessments, "Assessment", AssessmentView, AssessmentFields, log),
		Templates:    NewResource(store, recordstore.KeyAssessmentTemplates, "Assessment template", TemplateView, TemplateFields, log),
		Packs:        NewResource(store, recordstore.KeyAssessmentPacks, "Assessment pack", PackView, PackFields, log),
		JourneyTypes: NewResource(store, recordstore.KeyJourneyTypes, "Journey type", JourneyTypeView, JourneyTypeFields, log),
		Tasks:        NewResource(store, recordstore.KeyTasks, "Task", TaskView, TaskFields, log),
		Users:        NewResource(store, recordstore.KeyUsers, "User", UserView, UserFields, log),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Clients.Prepare = model.Client.Normalize
	s.JourneyTypes.Prepare = prepareJourneyType
	s.Tasks.Prepare = func(t model.Task) model.Task {
		if t.Status == "" {
			t.Status = model.TaskOpen
		}
		return t
	}
	s.Users.Prepare = func(u model.User) model.User {
		if u.Status == "" {
			u.Status = model.UserActive
		}
		return u
	}
	setClock(s.now, s.newID, s.Clients, s.Events, s.Assessments, s.Templates, s.Packs, s.JourneyTypes, s.Tasks, s.Users)
	return s
}

type clocked interface {
	setClock(now func() time.Time, newID func() string)
}

func (r *Resource[T]) setClock(now func() time.Time, newID func() string) {
	r.now = now
	r.newID = newID
}

func setClock(now func() time.Time, newID func() string, resources ...clocked) {
	for _, r := range resources {
		r.setClock(now, newID)
	}
}

func (s *Service) Store() *recordstore.Store { return s.store }

// meta returns fresh metadata for a record created outside a form
func (s *Service) meta(tenantID string) model.Record {
	now := s.now()
	return model.Record{ID: s.newID(), TenantID: tenantID, CreatedAt: now, UpdatedAt: now}
}

func prepareJourneyType(j model.JourneyType) model.JourneyType {
	if j.Slug == "" {
		j.Slug = organization.Slugify(j.Name)
	}
	for i := range j.Stages {
		if j.Stages[i].Order == 0 {
			j.Stages[i].Order = i + 1
		}
	}
	return j
}
