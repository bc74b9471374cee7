package action

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mfcabral/rulegate/internal/fact"
	"github.com/mfcabral/rulegate/internal/metrics"
)

// Executor dispatches action payloads to registered handlers by their
// "type" discriminator. Execution failures (unknown type, handler error,
// timeout) come back as a failed Result, never as a panic or a lost error:
// one bad action must not take down the evaluation pass.
type Executor struct {
	registry *Registry
	timeout  time.Duration
}

// NewExecutor wraps a registry with a per-action timeout. A zero timeout
// disables the bound.
func NewExecutor(registry *Registry, timeout time.Duration) *Executor {
	return &Executor{registry: registry, timeout: timeout}
}

// Execute runs the action described by params for the given rule. The
// returned Result always has Type set to the payload's discriminator.
func (e *Executor) Execute(ctx context.Context, ruleID string, params map[string]any, snap fact.Snapshot) *Result {
	actionType, _ := params["type"].(string)

	h, err := e.registry.Get(actionType)
	if err != nil {
		metrics.ActionsExecuted.WithLabelValues(actionType, "unsupported").Inc()
		return &Result{Type: actionType, Success: false, Detail: err.Error()}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	res, err := h.Execute(ctx, ruleID, params, snap)
	if err != nil {
		detail := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			detail = "action timed out after " + e.timeout.String()
		}
		slog.Warn("action failed", "rule_id", ruleID, "type", actionType, "err", err)
		metrics.ActionsExecuted.WithLabelValues(actionType, "error").Inc()
		if res == nil {
			res = &Result{Type: actionType, Success: false, Detail: detail}
		}
		res.Success = false
		if res.Detail == "" {
			res.Detail = detail
		}
		return res
	}

	status := "success"
	if !res.Success {
		status = "error"
	}
	slog.Info("action executed", "rule_id", ruleID, "type", actionType, "status", status)
	metrics.ActionsExecuted.WithLabelValues(actionType, status).Inc()
	return res
}

// ValidateParams checks an action payload against its handler's Validate.
// Unknown types are not an error here: they are allowed into the store and
// surface as a failed execution, so a rule targeting a handler that ships
// later does not block creation.
func (e *Executor) ValidateParams(params map[string]any) error {
	actionType, _ := params["type"].(string)
	h, err := e.registry.Get(actionType)
	if err != nil {
		return nil
	}
	return h.Validate(params)
}
