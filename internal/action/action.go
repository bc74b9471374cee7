package action

import (
	"context"
	"fmt"

	"github.com/mfcabral/rulegate/internal/fact"
)

// Result holds the outcome of executing a single action.
type Result struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
}

// Handler is the interface all action implementations satisfy. Handlers may
// run more than once per rule across passes; a rule whose condition stays
// true fires every pass, so effects must tolerate repetition.
type Handler interface {
	// Type returns the discriminator string this handler is registered under.
	Type() string
	// Execute runs the action against the pass's fact snapshot.
	Execute(ctx context.Context, ruleID string, params map[string]any, snap fact.Snapshot) (*Result, error)
	// Validate checks params up front (used by the compiler before a draft
	// is admitted to the store).
	Validate(params map[string]any) error
}

// UnsupportedTypeError reports an action payload whose "type" discriminator
// has no registered handler.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported action type %q", e.Type)
}

// StringParam extracts a required string parameter from an action payload.
func StringParam(params map[string]any, key string) (string, error) {
	v, ok := params[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("parameter %q is required and must be a non-empty string", key)
	}
	return v, nil
}
