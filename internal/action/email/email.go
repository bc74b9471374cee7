// Package email implements the "send_email" action backed by the SMTP sink.
package email

import (
	"context"
	"fmt"

	"github.com/mfcabral/rulegate/internal/action"
	"github.com/mfcabral/rulegate/internal/fact"
)

// Sink is the slice of the mailer this action needs.
type Sink interface {
	Configured() bool
	Send(to, subject, body string) error
}

type Email struct {
	sink Sink
}

func New(sink Sink) *Email { return &Email{sink: sink} }

func (e *Email) Type() string { return "send_email" }

func (e *Email) Validate(params map[string]any) error {
	for _, key := range []string{"to", "subject", "body"} {
		if _, err := action.StringParam(params, key); err != nil {
			return err
		}
	}
	return nil
}

func (e *Email) Execute(_ context.Context, _ string, params map[string]any, _ fact.Snapshot) (*action.Result, error) {
	if !e.sink.Configured() {
		return nil, fmt.Errorf("email sink not configured; configure SMTP first")
	}
	to, err := action.StringParam(params, "to")
	if err != nil {
		return nil, err
	}
	subject, err := action.StringParam(params, "subject")
	if err != nil {
		return nil, err
	}
	body, err := action.StringParam(params, "body")
	if err != nil {
		return nil, err
	}

	if err := e.sink.Send(to, subject, body); err != nil {
		return nil, err
	}
	return &action.Result{Type: e.Type(), Success: true, Detail: "email sent to " + to}, nil
}
