package rule

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is the base class for schema validation failures. Callers can
// errors.Is against it without caring which field was bad.
var ErrInvalid = errors.New("invalid rule")

// Rule is a persisted condition→action pair. The action payload is opaque to
// the store; only the executor interprets it.
type Rule struct {
	ID        string         `json:"id" yaml:"id"`
	Condition string         `json:"condition" yaml:"condition"`
	Action    map[string]any `json:"action" yaml:"action"`
	CreatedAt time.Time      `json:"created_at" yaml:"-"`
	UpdatedAt time.Time      `json:"updated_at" yaml:"-"`
}

// Validate checks the schema invariants: non-empty id and condition, and an
// action payload carrying a string "type" discriminator.
func (r *Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalid)
	}
	if r.Condition == "" {
		return fmt.Errorf("%w: condition is required", ErrInvalid)
	}
	if len(r.Action) == 0 {
		return fmt.Errorf("%w: action is required", ErrInvalid)
	}
	t, ok := r.Action["type"].(string)
	if !ok || t == "" {
		return fmt.Errorf("%w: action must carry a string \"type\"", ErrInvalid)
	}
	return nil
}

// ActionType returns the action's "type" discriminator ("" if absent).
func (r *Rule) ActionType() string {
	t, _ := r.Action["type"].(string)
	return t
}
