package dialog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		name  string
		path  []State
		valid bool
	}{
		{"confirm", []State{Open, Confirmed, Closed}, true},
		{"cancel", []State{Open, Cancelled, Closed}, true},
		{"reopen", []State{Open, Cancelled, Closed, Open}, true},
		{"skip open", []State{Confirmed}, false},
		{"close while open", []State{Open, Closed}, false},
		{"confirm twice", []State{Open, Confirmed, Confirmed}, false},
		{"cancel after confirm", []State{Open, Confirmed, Cancelled}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Dialog
			var err error
			for _, s := range tt.path {
				if err = d.Transition(s); err != nil {
					break
				}
			}
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestOutcomeRecorded(t *testing.T) {
	var d Dialog
	require.NoError(t, d.Transition(Open))
	require.NoError(t, d.Transition(Cancelled))
	require.NoError(t, d.Transition(Closed))
	assert.Equal(t, Closed, d.State)
	assert.Equal(t, Cancelled, d.Outcome)
}

func TestTaskCancel(t *testing.T) {
	task := Go(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	task.Cancel()
	task.Cancel()
	assert.ErrorIs(t, task.Wait(), context.Canceled)
	select {
	case <-task.Done():
	default:
		t.Fatal("task should be done")
	}
}

func TestTaskResult(t *testing.T) {
	boom := errors.New("boom")
	task := Go(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, task.Wait(), boom)
}

func newRegistry(t *testing.T, ttl time.Duration, opts ...RegistryOption) *Registry {
	t.Helper()
	r := NewRegistry(ttl, append([]RegistryOption{WithLogger(zaptest.NewLogger(t))}, opts...)...)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestConfirmRunsAction(t *testing.T) {
	r := newRegistry(t, time.Minute)
	var ran atomic.Int32

	d, err := r.Open(Dialog{Title: "Delete event", Resource: "events", RecordID: "42", OwnerID: "u1"}, func(context.Context) error {
		ran.Add(1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, Open, d.State)
	assert.Equal(t, KindConfirm, d.Kind)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get(d.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, d, got)

	closed, err := r.Confirm(context.Background(), d.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, Closed, closed.State)
	assert.Equal(t, Confirmed, closed.Outcome)
	assert.EqualValues(t, 1, ran.Load())
	assert.Zero(t, r.Len())

	_, err = r.Confirm(context.Background(), d.ID, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmReturnsActionError(t *testing.T) {
	r := newRegistry(t, time.Minute)
	boom := errors.New("store unavailable")
	d, err := r.Open(Dialog{OwnerID: "u1"}, func(context.Context) error { return boom })
	require.NoError(t, err)

	closed, err := r.Confirm(context.Background(), d.ID, "u1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Closed, closed.State)
	assert.Zero(t, r.Len())
}

func TestCancelSkipsAction(t *testing.T) {
	r := newRegistry(t, time.Minute)
	d, err := r.Open(Dialog{OwnerID: "u1"}, func(context.Context) error {
		t.Error("action must not run")
		return nil
	})
	require.NoError(t, err)

	closed, err := r.Cancel(d.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, Cancelled, closed.Outcome)
	assert.Zero(t, r.Len())
}

func TestOtherOwnerCannotSeeDialog(t *testing.T) {
	r := newRegistry(t, time.Minute)
	d, err := r.Open(Dialog{OwnerID: "u1"}, nil)
	require.NoError(t, err)

	_, err = r.Get(d.ID, "u2")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Cancel(d.ID, "u2")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, r.Len())
}

func TestDialogExpires(t *testing.T) {
	expired := make(chan Dialog, 1)
	r := newRegistry(t, 20*time.Millisecond, WithExpireHook(func(d Dialog) { expired <- d }))

	d, err := r.Open(Dialog{OwnerID: "u1"}, func(context.Context) error {
		t.Error("expired dialog must not run its action")
		return nil
	})
	require.NoError(t, err)

	select {
	case got := <-expired:
		assert.Equal(t, d.ID, got.ID)
		assert.Equal(t, Cancelled, got.Outcome)
	case <-time.After(2 * time.Second):
		t.Fatal("dialog did not expire")
	}
	_, err = r.Confirm(context.Background(), d.ID, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCloseStopsOpenDialogs(t *testing.T) {
	r := NewRegistry(time.Hour)
	for range 3 {
		_, err := r.Open(Dialog{OwnerID: "u1"}, nil)
		require.NoError(t, err)
	}
	require.NoError(t, r.Close())
	assert.Zero(t, r.Len())

	_, err := r.Open(Dialog{OwnerID: "u1"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
