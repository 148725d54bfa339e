// Package casework implements the case management workflows on top of the
// record store, form controller and list view.
package casework

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"casedesk/internal/form"
	"casedesk/internal/listview"
	"casedesk/internal/model"
	"casedesk/internal/notify"
	"casedesk/internal/recordstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound   = recordstore.ErrNotFound
	ErrValidation = form.ErrValidation
	ErrDuplicate  = errors.New("record already exists")
	ErrForbidden  = errors.New("not permitted")
	ErrRefused    = errors.New("change refused")
)

// Scope limits which records a caller can see. Records of other tenants are
// reported as not found.
type Scope struct {
	TenantID string
	All      bool // super admins without a selected tenant read across tenants
	Super    bool // the caller is a super admin working inside TenantID
}

// TenantScope returns the scope of a caller working inside tenantID
func TenantScope(tenantID string) Scope { return Scope{TenantID: tenantID} }

func (s Scope) Allows(r model.Record) bool {
	return s.All || r.TenantID == s.TenantID
}

// SuperAdmin reports whether the caller is a super admin
func (s Scope) SuperAdmin() bool { return s.All || s.Super }

// Resource is the CRUD workflow shared by every tenant scoped collection
type Resource[T model.Entity[T]] struct {
	Label   string
	Coll    *recordstore.Collection[T]
	View    listview.Definition[T]
	Fields  []form.Field
	Prepare func(T) T

	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// NewResource binds a collection to its list view and form fields
func NewResource[T model.Entity[T]](store *recordstore.Store, key, label string, view listview.Definition[T], fields []form.Field, log *zap.Logger) *Resource[T] {
	if log == nil {
		log = zap.L()
	}
	return &Resource[T]{
		Label:  label,
		Coll:   recordstore.NewCollection[T](store, key),
		View:   view,
		Fields: fields,
		log:    log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (r *Resource[T]) Key() string { return r.Coll.Key() }

// All returns every record visible in scope, in insertion order
func (r *Resource[T]) All(ctx context.Context, scope Scope) ([]T, error) {
	records, err := r.Coll.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", r.Key(), err)
	}
	out := records[:0:0]
	for _, rec := range records {
		if scope.Allows(rec.Meta()) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// List applies search, filters, sort and paging to the records in scope
func (r *Resource[T]) List(ctx context.Context, scope Scope, q listview.Query) (listview.Page[T], error) {
	records, err := r.All(ctx, scope)
	if err != nil {
		return listview.Page[T]{}, err
	}
	return r.View.Apply(records, q), nil
}

func (r *Resource[T]) Get(ctx context.Context, scope Scope, id string) (T, error) {
	var zero T
	rec, err := r.Coll.Find(ctx, id)
	if err != nil {
		return zero, err
	}
	if !scope.Allows(rec.Meta()) {
		return zero, ErrNotFound
	}
	return rec, nil
}

func (r *Resource[T]) options(n notify.Notifier) form.Options {
	return form.Options{
		Label:    r.Label,
		Fields:   r.Fields,
		Notifier: n,
		Logger:   r.log,
		Now:      r.now,
		NewID:    r.newID,
	}
}

// NewForm opens a create form for input inside the caller's tenant
func (r *Resource[T]) NewForm(scope Scope, input T, n notify.Notifier) *form.Controller[T] {
	input = input.WithMeta(model.Record{TenantID: scope.TenantID})
	return form.NewCreate(r.Coll, input, r.options(n)).BeforeSave(r.Prepare)
}

// EditForm opens an edit form over the stored record with the given id
func (r *Resource[T]) EditForm(ctx context.Context, scope Scope, id string, n notify.Notifier) (*form.Controller[T], error) {
	existing, err := r.Get(ctx, scope, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			notify.SendError(n, r.Label+" not found", fmt.Sprintf("No %s with id %s.", strings.ToLower(r.Label), id))
		}
		return nil, err
	}
	return form.NewEdit(r.Coll, existing, r.options(n)).BeforeSave(r.Prepare), nil
}

// Create validates input and appends it as a new record
func (r *Resource[T]) Create(ctx context.Context, scope Scope, input T, n notify.Notifier) (T, error) {
	return r.NewForm(scope, input, n).Submit(ctx)
}

// Update replaces the fields of the record with the given id by those of
// input. Metadata of the stored record is kept.
func (r *Resource[T]) Update(ctx context.Context, scope Scope, id string, input T, n notify.Notifier) (T, error) {
	var zero T
	f, err := r.EditForm(ctx, scope, id, n)
	if err != nil {
		return zero, err
	}
	_ = f.Update(func(current T) T { return input.WithMeta(current.Meta()) })
	return f.Submit(ctx)
}

// Delete removes the record and reports it by name
func (r *Resource[T]) Delete(ctx context.Context, scope Scope, id string, n notify.Notifier) (T, error) {
	var zero T
	if _, err := r.Get(ctx, scope, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			notify.SendError(n, r.Label+" not found", fmt.Sprintf("No %s with id %s.", strings.ToLower(r.Label), id))
		}
		return zero, err
	}
	removed, err := r.Coll.Remove(ctx, id)
	if err != nil {
		r.log.Error("Failed to delete record", zap.String("collection", r.Key()), zap.String("id", id), zap.Error(err))
		notify.SendError(n, "Could not delete "+strings.ToLower(r.Label), err.Error())
		return zero, err
	}
	name := model.DisplayNameOf(removed, r.Label)
	r.log.Info("Record deleted", zap.String("collection", r.Key()), zap.String("id", id))
	notify.SendSuccess(n, r.Label+" deleted", fmt.Sprintf("%s has been deleted.", name))
	return removed, nil
}

// Count returns the number of records in scope
func (r *Resource[T]) Count(ctx context.Context, scope Scope) (int, error) {
	records, err := r.All(ctx, scope)
	return len(records), err
}
