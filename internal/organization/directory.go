// Package organization manages the tenant directory.
package organization

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"casedesk/internal/model"
	"casedesk/internal/notify"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("organization not found")
	ErrDuplicate = errors.New("organization slug already exists")
	ErrInvalid   = errors.New("organization name is required")
)

// Store is the persistence behind the directory
type Store interface {
	List(ctx context.Context) ([]model.Organization, error)
	Insert(ctx context.Context, org model.Organization) (model.Organization, error)
	Update(ctx context.Context, org model.Organization) (model.Organization, error)
}

// Predefined returns the organizations used when the store cannot be read
func Predefined() []model.Organization {
	return []model.Organization{
		{Record: model.Record{ID: "org-main", TenantID: "org-main"}, Name: "Main Office", Slug: "main-office", Status: model.OrganizationActive},
		{Record: model.Record{ID: "org-community", TenantID: "org-community"}, Name: "Community Outreach", Slug: "community-outreach", Status: model.OrganizationActive},
	}
}

// Directory lists and maintains organizations. Failures of the store are
// reported to the caller's notifier; listing then falls back to the last
// list read successfully, which starts out as Predefined.
type Directory struct {
	store Store
	log   *zap.Logger
	now   func() time.Time

	// OnFallback is called whenever List serves the fallback list
	OnFallback func()

	mu   sync.Mutex
	last []model.Organization
}

func NewDirectory(store Store, log *zap.Logger) *Directory {
	if log == nil {
		log = zap.L()
	}
	return &Directory{store: store, log: log.Named("organizations"), now: time.Now, last: Predefined()}
}

// List returns all organizations, or the last known list when the store fails
func (d *Directory) List(ctx context.Context, n notify.Notifier) []model.Organization {
	orgs, err := d.store.List(ctx)
	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.log.Error("Failed to load organizations, using last known list", zap.Error(err))
		notify.SendError(n, "Could not load organizations", err.Error())
		if d.OnFallback != nil {
			d.OnFallback()
		}
		return slices.Clone(d.last)
	}
	d.last = slices.Clone(orgs)
	return orgs
}

// Get looks up an organization by id or slug
func (d *Directory) Get(ctx context.Context, idOrSlug string, n notify.Notifier) (model.Organization, error) {
	for _, o := range d.List(ctx, n) {
		if o.ID == idOrSlug || o.Slug == idOrSlug {
			return o, nil
		}
	}
	return model.Organization{}, ErrNotFound
}

// Create adds an active organization. The slug is derived from the name when empty.
func (d *Directory) Create(ctx context.Context, org model.Organization, n notify.Notifier) (model.Organization, error) {
	org.Name = strings.TrimSpace(org.Name)
	if org.Name == "" {
		notify.SendError(n, "Please check the form", "Organization name is required.")
		return model.Organization{}, ErrInvalid
	}
	if org.Slug == "" {
		org.Slug = Slugify(org.Name)
	}

	existing, err := d.store.List(ctx)
	if err != nil {
		return model.Organization{}, d.fail(n, "create", err)
	}
	for _, o := range existing {
		if o.Slug == org.Slug {
			notify.SendError(n, "Organization exists", fmt.Sprintf("An organization with slug %q already exists.", org.Slug))
			return model.Organization{}, ErrDuplicate
		}
	}

	now := d.now()
	id := uuid.NewString()
	org.Record = model.Record{ID: id, TenantID: id, CreatedAt: now, UpdatedAt: now}
	org.Status = model.OrganizationActive

	saved, err := d.store.Insert(ctx, org)
	if err != nil {
		return model.Organization{}, d.fail(n, "create", err)
	}
	d.log.Info("Organization created", zap.String("organization_id", saved.ID), zap.String("slug", saved.Slug))
	notify.SendSuccess(n, "Organization created", fmt.Sprintf("%s has been created.", saved.Name))
	return saved, nil
}

// Update applies fn to the stored organization. Identity fields cannot be changed.
func (d *Directory) Update(ctx context.Context, id string, fn func(model.Organization) model.Organization, n notify.Notifier) (model.Organization, error) {
	orgs, err := d.store.List(ctx)
	if err != nil {
		return model.Organization{}, d.fail(n, "update", err)
	}
	var current *model.Organization
	for i := range orgs {
		if orgs[i].ID == id {
			current = &orgs[i]
			break
		}
	}
	if current == nil {
		notify.SendError(n, "Organization not found", "The organization no longer exists.")
		return model.Organization{}, ErrNotFound
	}

	next := fn(*current)
	next.Record = current.Record
	next.UpdatedAt = d.now()
	if strings.TrimSpace(next.Name) == "" {
		notify.SendError(n, "Please check the form", "Organization name is required.")
		return model.Organization{}, ErrInvalid
	}

	saved, err := d.store.Update(ctx, next)
	if err != nil {
		return model.Organization{}, d.fail(n, "update", err)
	}
	notify.SendSuccess(n, "Organization updated", fmt.Sprintf("%s has been updated.", saved.Name))
	return saved, nil
}

// Archive soft-deletes an organization by marking it archived
func (d *Directory) Archive(ctx context.Context, id string, n notify.Notifier) (model.Organization, error) {
	return d.setStatus(ctx, id, model.OrganizationArchived, n)
}

// Restore marks an archived organization active again
func (d *Directory) Restore(ctx context.Context, id string, n notify.Notifier) (model.Organization, error) {
	return d.setStatus(ctx, id, model.OrganizationActive, n)
}

func (d *Directory) setStatus(ctx context.Context, id, status string, n notify.Notifier) (model.Organization, error) {
	return d.Update(ctx, id, func(o model.Organization) model.Organization {
		o.Status = status
		return o
	}, n)
}

func (d *Directory) fail(n notify.Notifier, op string, err error) error {
	d.log.Error("Organization operation failed", zap.String("operation", op), zap.Error(err))
	if errors.Is(err, ErrNotFound) {
		notify.SendError(n, "Organization not found", "The organization no longer exists.")
		return err
	}
	notify.SendError(n, "Could not "+op+" organization", err.Error())
	return err
}

// Slugify lowercases s and joins its alphanumeric runs with dashes
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
		default:
			dash = true
		}
	}
	return b.String()
}
