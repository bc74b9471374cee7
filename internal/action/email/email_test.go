package email

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	configured bool
	sendErr    error
	to         string
	subject    string
	body       string
}

func (f *fakeSink) Configured() bool { return f.configured }

func (f *fakeSink) Send(to, subject, body string) error {
	f.to, f.subject, f.body = to, subject, body
	return f.sendErr
}

func params() map[string]any {
	return map[string]any{
		"type":    "send_email",
		"to":      "user@example.com",
		"subject": "Alert",
		"body":    "temperature exceeded threshold",
	}
}

func TestExecuteSends(t *testing.T) {
	sink := &fakeSink{configured: true}
	e := New(sink)

	res, err := e.Execute(context.Background(), "r1", params(), nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "user@example.com", sink.to)
	assert.Equal(t, "Alert", sink.subject)
}

func TestExecuteRefusesUnconfiguredSink(t *testing.T) {
	e := New(&fakeSink{configured: false})
	_, err := e.Execute(context.Background(), "r1", params(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestExecuteSendFailure(t *testing.T) {
	e := New(&fakeSink{configured: true, sendErr: errors.New("smtp down")})
	_, err := e.Execute(context.Background(), "r1", params(), nil)
	assert.Error(t, err)
}

func TestValidateRequiresFields(t *testing.T) {
	e := New(&fakeSink{})
	for _, missing := range []string{"to", "subject", "body"} {
		p := params()
		delete(p, missing)
		assert.Error(t, e.Validate(p), "missing %s", missing)
	}
	assert.NoError(t, e.Validate(params()))
}
