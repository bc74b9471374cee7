// Package engine orchestrates evaluation passes: read every rule, evaluate
// its condition against a fact snapshot, execute actions on matches, and
// record the outcome in the notification feed.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mfcabral/rulegate/internal/action"
	"github.com/mfcabral/rulegate/internal/condition"
	"github.com/mfcabral/rulegate/internal/fact"
	"github.com/mfcabral/rulegate/internal/feed"
	"github.com/mfcabral/rulegate/internal/metrics"
	"github.com/mfcabral/rulegate/internal/store"
)

// ErrBusy rejects an evaluation request that arrives while a pass is
// already in flight. Requests are not queued; the caller retries.
var ErrBusy = errors.New("an evaluation pass is already running")

// PassResult summarizes one completed evaluation pass.
type PassResult struct {
	RulesEvaluated int           `json:"rules_evaluated"`
	Fired          int           `json:"fired"`
	Failed         int           `json:"failed"`
	Duration       time.Duration `json:"-"`
}

// Summary renders the human-readable pass outcome for API responses.
func (r *PassResult) Summary() string {
	return fmt.Sprintf("evaluated %d rules: %d fired, %d failed", r.RulesEvaluated, r.Fired, r.Failed)
}

// Engine runs evaluation passes. At most one pass is in flight at a time;
// the feed is only ever written while the pass lock is held, so two passes
// never interleave their notifications.
type Engine struct {
	store    store.Store
	executor *action.Executor
	feed     *feed.Feed
	facts    fact.Provider

	passMu sync.Mutex
}

func New(st store.Store, executor *action.Executor, fd *feed.Feed, facts fact.Provider) *Engine {
	return &Engine{store: st, executor: executor, feed: fd, facts: facts}
}

// Evaluate runs one pass over all rules in creation order. overlay, if
// non-nil, is applied on top of the provider's snapshot for this pass only.
//
// Per-rule failures (condition syntax, unsupported action, handler error,
// timeout) become failure notifications and never abort the rest of the
// pass. A store failure is fatal: the pass stops, records a partial-failure
// notification, and returns the error.
//
// A rule deleted while a pass is running may still fire once in that pass:
// the rule list was already read. That race is accepted.
func (e *Engine) Evaluate(ctx context.Context, overlay fact.Snapshot) (*PassResult, error) {
	if !e.passMu.TryLock() {
		metrics.PassesRejectedBusy.Inc()
		return nil, ErrBusy
	}
	defer e.passMu.Unlock()

	start := time.Now()

	snap, err := e.facts.Snapshot(ctx)
	if err != nil {
		e.feed.AppendFailure("", "evaluation pass aborted: fact snapshot unavailable: "+err.Error())
		metrics.EvaluationPasses.WithLabelValues("aborted").Inc()
		return nil, fmt.Errorf("build fact snapshot: %w", err)
	}
	snap = snap.Merge(overlay)

	rules, err := e.store.List(ctx)
	if err != nil {
		e.feed.AppendFailure("", "evaluation pass aborted: "+err.Error())
		metrics.EvaluationPasses.WithLabelValues("aborted").Inc()
		return nil, err
	}

	res := &PassResult{RulesEvaluated: len(rules)}
	for _, r := range rules {
		matched, err := condition.EvalString(r.Condition, snap)
		if err != nil {
			e.feed.AppendFailure(r.ID, fmt.Sprintf("rule %s: %v", r.ID, err))
			res.Failed++
			continue
		}
		if !matched {
			continue
		}

		ar := e.executor.Execute(ctx, r.ID, r.Action, snap)
		if ar.Success {
			e.feed.Append(r.ID, fmt.Sprintf("rule %s fired: %s", r.ID, ar.Detail))
			metrics.RulesFired.WithLabelValues(r.ID).Inc()
			res.Fired++
		} else {
			e.feed.AppendFailure(r.ID, fmt.Sprintf("rule %s action failed: %s", r.ID, ar.Detail))
			res.Failed++
		}
	}

	res.Duration = time.Since(start)
	metrics.EvaluationPasses.WithLabelValues("ok").Inc()
	metrics.PassDuration.Observe(float64(res.Duration.Milliseconds()))
	metrics.NotificationsRetained.Set(float64(e.feed.Len()))

	slog.Info("evaluation pass complete",
		"rules", res.RulesEvaluated, "fired", res.Fired, "failed", res.Failed,
		"duration_ms", res.Duration.Milliseconds())
	return res, nil
}

// RunPeriodic triggers a pass every interval until ctx is cancelled. Ticks
// that land while a pass is still running are skipped, not queued.
func (e *Engine) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := e.Evaluate(ctx, nil); err != nil {
				if errors.Is(err, ErrBusy) {
					slog.Debug("periodic pass skipped: previous pass still running")
					continue
				}
				slog.Error("periodic evaluation pass failed", "err", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
