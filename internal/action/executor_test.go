package action

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfcabral/rulegate/internal/fact"
)

// stubHandler lets tests script handler behaviour.
type stubHandler struct {
	typ  string
	exec func(ctx context.Context) (*Result, error)
}

func (s *stubHandler) Type() string { return s.typ }

func (s *stubHandler) Validate(map[string]any) error { return nil }

func (s *stubHandler) Execute(ctx context.Context, _ string, _ map[string]any, _ fact.Snapshot) (*Result, error) {
	return s.exec(ctx)
}

func TestRegistryGetUnknownType(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("does_not_exist")
	var ute *UnsupportedTypeError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, "does_not_exist", ute.Type)
}

func TestRegistryDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubHandler{typ: "x"})
	assert.Panics(t, func() { r.Register(&stubHandler{typ: "x"}) })
}

func TestExecuteUnsupportedTypeFailsSoft(t *testing.T) {
	e := NewExecutor(NewRegistry(), time.Second)
	res := e.Execute(context.Background(), "r1", map[string]any{"type": "launch_rocket"}, nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Detail, "unsupported action type")
	assert.Equal(t, "launch_rocket", res.Type)
}

func TestExecuteHandlerError(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubHandler{typ: "boom", exec: func(context.Context) (*Result, error) {
		return nil, errors.New("exploded")
	}})
	e := NewExecutor(r, time.Second)

	res := e.Execute(context.Background(), "r1", map[string]any{"type": "boom"}, nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Detail, "exploded")
}

func TestExecuteTimeoutDoesNotHang(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubHandler{typ: "slow", exec: func(ctx context.Context) (*Result, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return &Result{Type: "slow", Success: true}, nil
		}
	}})
	e := NewExecutor(r, 20*time.Millisecond)

	start := time.Now()
	res := e.Execute(context.Background(), "r1", map[string]any{"type": "slow"}, nil)
	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, res.Success)
	assert.Contains(t, res.Detail, "timed out")
}

func TestExecuteSuccess(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubHandler{typ: "ok", exec: func(context.Context) (*Result, error) {
		return &Result{Type: "ok", Success: true, Detail: "done"}, nil
	}})
	e := NewExecutor(r, time.Second)

	res := e.Execute(context.Background(), "r1", map[string]any{"type": "ok"}, nil)
	assert.True(t, res.Success)
	assert.Equal(t, "done", res.Detail)
}

func TestValidateParamsSkipsUnknownTypes(t *testing.T) {
	e := NewExecutor(NewRegistry(), time.Second)
	assert.NoError(t, e.ValidateParams(map[string]any{"type": "future_handler"}))
}
