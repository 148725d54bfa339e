// Package form implements the create/edit controller shared by every entity screen.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"casedesk/internal/model"
	"casedesk/internal/notify"
	"casedesk/internal/recordstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrClosed is returned when a submitted or cancelled form is used again
var ErrClosed = errors.New("form is closed")

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Options configures a Controller
type Options struct {
	Label    string // entity label used in notifications, e.g. "Client"
	Fields   []Field
	Notifier notify.Notifier
	Logger   *zap.Logger
	Now      func() time.Time
	NewID    func() string
}

// Controller holds the state of one create or edit form and writes it back
// to its collection on submit.
type Controller[T model.Entity[T]] struct {
	coll     *recordstore.Collection[T]
	opts     Options
	mode     Mode
	original model.Record
	state    T
	prepare  func(T) T
	closed   bool
}

// NewCreate opens a form for a new record starting from initial
func NewCreate[T model.Entity[T]](coll *recordstore.Collection[T], initial T, opts Options) *Controller[T] {
	return &Controller[T]{coll: coll, opts: opts.withDefaults(), mode: ModeCreate, state: initial}
}

// NewEdit opens a form over an existing record
func NewEdit[T model.Entity[T]](coll *recordstore.Collection[T], existing T, opts Options) *Controller[T] {
	return &Controller[T]{coll: coll, opts: opts.withDefaults(), mode: ModeEdit, original: existing.Meta(), state: existing}
}

func (o Options) withDefaults() Options {
	if o.Notifier == nil {
		o.Notifier = notify.Discard
	}
	if o.Logger == nil {
		o.Logger = zap.L()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Label == "" {
		o.Label = "Record"
	}
	return o
}

// BeforeSave registers a function that derives fields right before validation
func (c *Controller[T]) BeforeSave(fn func(T) T) *Controller[T] {
	c.prepare = fn
	return c
}

func (c *Controller[T]) Mode() Mode { return c.mode }

func (c *Controller[T]) Fields() []Field { return c.opts.Fields }

func (c *Controller[T]) State() T { return c.state }

func (c *Controller[T]) Closed() bool { return c.closed }

// Update replaces the state with fn(state)
func (c *Controller[T]) Update(fn func(T) T) error {
	if c.closed {
		return ErrClosed
	}
	c.state = fn(c.state)
	return nil
}

// Notify pushes to the form's notifier. Nested list guards report through it.
func (c *Controller[T]) Notify(n notify.Notification) notify.Notification {
	return c.opts.Notifier.Notify(n)
}

// Cancel closes the form without saving
func (c *Controller[T]) Cancel() {
	c.closed = true
}

// Submit validates the state and writes it to the collection.
// On a validation failure one error notification is sent and nothing is
// written. On success the record keeps its id and creation time when editing,
// gets fresh ones when creating, and the form closes.
func (c *Controller[T]) Submit(ctx context.Context) (T, error) {
	var zero T
	if c.closed {
		return zero, ErrClosed
	}
	candidate := c.state
	if c.prepare != nil {
		candidate = c.prepare(candidate)
	}

	log := c.opts.Logger.With(zap.String("collection", c.coll.Key()), zap.String("mode", string(c.mode)))
	if err := Validate(candidate, c.opts.Fields); err != nil {
		log.Warn("Form validation failed", zap.Error(err))
		notify.SendError(c.opts.Notifier, "Please check the form", capitalize(err.Error()))
		return zero, err
	}

	now := c.opts.Now()
	meta := candidate.Meta()
	var err error
	switch c.mode {
	case ModeEdit:
		meta.ID = c.original.ID
		meta.TenantID = c.original.TenantID
		meta.CreatedAt = c.original.CreatedAt
		if now.Before(c.original.UpdatedAt) {
			now = c.original.UpdatedAt
		}
		meta.UpdatedAt = now
		candidate = candidate.WithMeta(meta)
		err = c.coll.Replace(ctx, candidate)
	default:
		meta.ID = c.opts.NewID()
		meta.CreatedAt = now
		meta.UpdatedAt = now
		candidate = candidate.WithMeta(meta)
		_, err = c.coll.Upsert(ctx, candidate)
	}

	name := model.DisplayNameOf(candidate, c.opts.Label)
	if err != nil {
		log.Error("Failed to save record", zap.String("id", meta.ID), zap.Error(err))
		if errors.Is(err, recordstore.ErrNotFound) {
			notify.SendError(c.opts.Notifier, c.opts.Label+" not found", fmt.Sprintf("%s no longer exists.", name))
		} else {
			notify.SendError(c.opts.Notifier, "Could not save "+strings.ToLower(c.opts.Label), err.Error())
		}
		return zero, err
	}

	verb := "created"
	if c.mode == ModeEdit {
		verb = "updated"
	}
	log.Info("Record saved", zap.String("id", meta.ID))
	notify.SendSuccess(c.opts.Notifier, fmt.Sprintf("%s %s", c.opts.Label, verb), fmt.Sprintf("%s has been %s.", name, verb))

	c.state = candidate
	c.closed = true
	return candidate, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
