package mailer

import (
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{Server: "smtp.example.com", Port: 587, Account: "bot@example.com", Password: "secret"}
}

func TestConfigureValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"missing server", func(c *Config) { c.Server = "" }, false},
		{"zero port", func(c *Config) { c.Port = 0 }, false},
		{"port out of range", func(c *Config) { c.Port = 70000 }, false},
		{"bad account", func(c *Config) { c.Account = "not-an-address" }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := New()
			cfg := validConfig()
			tc.mutate(&cfg)
			err := m.Configure(cfg)
			if tc.ok {
				require.NoError(t, err)
				assert.True(t, m.Configured())
			} else {
				require.Error(t, err)
				assert.False(t, m.Configured())
			}
		})
	}
}

func TestSendRequiresConfiguration(t *testing.T) {
	m := New()
	err := m.Send("user@example.com", "subject", "body")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendUsesConfiguredServer(t *testing.T) {
	m := New()
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}
	require.NoError(t, m.Configure(validConfig()))

	require.NoError(t, m.Send("user@example.com", "Alert", "temp is high"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "bot@example.com", gotFrom)
	assert.Equal(t, []string{"user@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Alert")
	assert.Contains(t, string(gotMsg), "temp is high")
}

func TestSendRejectsBadRecipient(t *testing.T) {
	m := New()
	require.NoError(t, m.Configure(validConfig()))
	err := m.Send("nope", "s", "b")
	assert.Error(t, err)
}
