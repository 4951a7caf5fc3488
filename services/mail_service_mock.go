package services

import (
	"context"
	"sync"
)

// SentMail is a message captured by MockMailer
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// MockMailer is a mock implementation of Mailer for testing
type MockMailer struct {
	mu   sync.RWMutex
	sent []SentMail
	err  error
}

// NewMockMailer creates a new mock mailer
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// FailWith makes every subsequent Send return err
func (m *MockMailer) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Send records the message
func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}

// Sent returns a copy of all recorded messages
func (m *MockMailer) Sent() []SentMail {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}

// LastTo returns the most recent message sent to the address
func (m *MockMailer) LastTo(to string) (SentMail, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To == to {
			return m.sent[i], true
		}
	}
	return SentMail{}, false
}
