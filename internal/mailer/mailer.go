// Package mailer is the email notification sink. The engine treats it as a
// black box: it is either configured or not, and sending can fail.
package mailer

import (
	"errors"
	"fmt"
	"net/mail"
	"net/smtp"
	"sync"
)

// ErrNotConfigured is returned by Send before Configure has succeeded.
var ErrNotConfigured = errors.New("email sink not configured")

// Config holds SMTP connection settings.
type Config struct {
	Server   string `json:"smtp_server" yaml:"server"`
	Port     int    `json:"smtp_port" yaml:"port"`
	Account  string `json:"account" yaml:"account"`
	Password string `json:"password" yaml:"-"`
}

// sendFunc is swapped out in tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends plain-text mail over SMTP with STARTTLS (smtp.SendMail
// upgrades automatically when the server advertises it).
type Mailer struct {
	mu         sync.RWMutex
	cfg        Config
	configured bool
	send       sendFunc
}

func New() *Mailer {
	return &Mailer{send: smtp.SendMail}
}

// Configure validates and applies SMTP settings. A later call replaces the
// previous configuration wholesale.
func (m *Mailer) Configure(cfg Config) error {
	if cfg.Server == "" {
		return errors.New("smtp server is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid smtp port %d", cfg.Port)
	}
	if _, err := mail.ParseAddress(cfg.Account); err != nil {
		return fmt.Errorf("invalid account address %q: %w", cfg.Account, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
	m.configured = true
	return nil
}

// Configured reports whether the sink is ready to send.
func (m *Mailer) Configured() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.configured
}

// Send delivers a plain-text message to a single recipient.
func (m *Mailer) Send(to, subject, body string) error {
	m.mu.RLock()
	cfg, configured, send := m.cfg, m.configured, m.send
	m.mu.RUnlock()

	if !configured {
		return ErrNotConfigured
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		cfg.Account, to, subject, body)
	addr := fmt.Sprintf("%s:%d", cfg.Server, cfg.Port)
	auth := smtp.PlainAuth("", cfg.Account, cfg.Password, cfg.Server)

	if err := send(addr, auth, cfg.Account, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	return nil
}
