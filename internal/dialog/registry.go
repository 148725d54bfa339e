package dialog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Action is the work performed when a dialog is confirmed
type Action func(ctx context.Context) error

// ExpireFunc is called after an open dialog times out and is cancelled
type ExpireFunc func(d Dialog)

type entry struct {
	dialog Dialog
	action Action
	expiry *Task
}

// Registry tracks open confirmation dialogs. Each open dialog owns an expiry
// task; confirming, cancelling or closing the registry stops it.
type Registry struct {
	mu       sync.Mutex
	open     map[string]*entry
	ttl      time.Duration
	now      func() time.Time
	log      *zap.Logger
	onExpire ExpireFunc
	ctx      context.Context
	stop     context.CancelFunc
}

type RegistryOption func(*Registry)

func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

func WithLogger(log *zap.Logger) RegistryOption {
	return func(r *Registry) { r.log = log }
}

func WithExpireHook(fn ExpireFunc) RegistryOption {
	return func(r *Registry) { r.onExpire = fn }
}

// NewRegistry creates a registry whose dialogs expire after ttl
func NewRegistry(ttl time.Duration, opts ...RegistryOption) *Registry {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	ctx, stop := context.WithCancel(context.Background())
	r := &Registry{
		open: make(map[string]*entry),
		ttl:  ttl,
		now:  time.Now,
		log:  zap.L(),
		ctx:  ctx,
		stop: stop,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open registers d as an open dialog that runs action when confirmed
func (r *Registry) Open(d Dialog, action Action) (Dialog, error) {
	if d.Kind == "" {
		d.Kind = KindConfirm
	}
	if err := d.Transition(Open); err != nil {
		return Dialog{}, err
	}
	d.ID = uuid.NewString()
	d.OpenedAt = r.now()
	d.ExpiresAt = d.OpenedAt.Add(r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx.Err() != nil {
		return Dialog{}, context.Canceled
	}
	e := &entry{dialog: d, action: action}
	id := d.ID
	e.expiry = Go(r.ctx, func(ctx context.Context) error {
		timer := time.NewTimer(r.ttl)
		defer timer.Stop()
		select {
		case <-timer.C:
			r.expire(id)
		case <-ctx.Done():
		}
		return nil
	})
	r.open[id] = e
	r.log.Debug("Dialog opened", zap.String("dialog_id", id), zap.String("resource", d.Resource), zap.String("record_id", d.RecordID))
	return d, nil
}

// Get returns an open dialog owned by owner
func (r *Registry) Get(id, owner string) (Dialog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.open[id]
	if !ok || e.dialog.OwnerID != owner {
		return Dialog{}, ErrNotFound
	}
	return e.dialog, nil
}

// take removes the dialog from the registry and stops its expiry task
func (r *Registry) take(id, owner string, to State) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.open[id]
	if !ok || e.dialog.OwnerID != owner {
		return nil, ErrNotFound
	}
	if err := e.dialog.Transition(to); err != nil {
		return nil, err
	}
	delete(r.open, id)
	e.expiry.Cancel()
	return e, nil
}

// Confirm runs the dialog's action under ctx and closes the dialog.
// The dialog is closed even when the action fails; the action error is returned.
func (r *Registry) Confirm(ctx context.Context, id, owner string) (Dialog, error) {
	e, err := r.take(id, owner, Confirmed)
	if err != nil {
		return Dialog{}, err
	}
	var actionErr error
	if e.action != nil {
		actionErr = Go(ctx, func(ctx context.Context) error { return e.action(ctx) }).Wait()
	}
	_ = e.dialog.Transition(Closed)
	if actionErr != nil {
		r.log.Warn("Dialog action failed", zap.String("dialog_id", id), zap.Error(actionErr))
	}
	return e.dialog, actionErr
}

// Cancel closes the dialog without running its action
func (r *Registry) Cancel(id, owner string) (Dialog, error) {
	e, err := r.take(id, owner, Cancelled)
	if err != nil {
		return Dialog{}, err
	}
	_ = e.dialog.Transition(Closed)
	return e.dialog, nil
}

func (r *Registry) expire(id string) {
	r.mu.Lock()
	e, ok := r.open[id]
	if ok {
		delete(r.open, id)
		_ = e.dialog.Transition(Cancelled)
		_ = e.dialog.Transition(Closed)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	r.log.Info("Dialog expired", zap.String("dialog_id", id), zap.String("resource", e.dialog.Resource))
	if r.onExpire != nil {
		r.onExpire(e.dialog)
	}
}

// Len returns the number of open dialogs
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.open)
}

// Close cancels every open dialog and waits for their tasks to stop
func (r *Registry) Close() error {
	r.mu.Lock()
	r.stop()
	tasks := make([]*Task, 0, len(r.open))
	for id, e := range r.open {
		tasks = append(tasks, e.expiry)
		delete(r.open, id)
	}
	r.mu.Unlock()

	var errs []error
	for _, t := range tasks {
		if err := t.Wait(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
