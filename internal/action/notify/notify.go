// Package notify implements the "notify" action: it renders a message for
// the notification feed. The feed itself is appended by the evaluation
// cycle, which owns the queue; this handler only produces the text.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/mfcabral/rulegate/internal/action"
	"github.com/mfcabral/rulegate/internal/fact"
)

type Notify struct{}

func New() *Notify { return &Notify{} }

func (n *Notify) Type() string { return "notify" }

func (n *Notify) Validate(params map[string]any) error {
	_, err := action.StringParam(params, "message")
	return err
}

// Execute renders the message, substituting {fact_name} placeholders with
// values from the snapshot. Unknown placeholders are left as-is.
func (n *Notify) Execute(_ context.Context, _ string, params map[string]any, snap fact.Snapshot) (*action.Result, error) {
	msg, err := action.StringParam(params, "message")
	if err != nil {
		return nil, err
	}
	return &action.Result{Type: n.Type(), Success: true, Detail: render(msg, snap)}, nil
}

func render(msg string, snap fact.Snapshot) string {
	for name, val := range snap {
		msg = strings.ReplaceAll(msg, "{"+name+"}", fmt.Sprintf("%v", val))
	}
	return msg
}
