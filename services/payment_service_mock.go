package services

import (
	"context"
	"fmt"
	"sync"
)

// MockPaymentGateway is a mock implementation of PaymentGateway for testing
type MockPaymentGateway struct {
	mu        sync.RWMutex
	intents   map[string]*PaymentIntent
	metadata  map[string]map[string]string
	cancelled []string
	seq       int

	// CreateErr, GetErr and CancelErr make the matching call fail
	CreateErr error
	GetErr    error
	CancelErr error
}

// NewMockPaymentGateway creates a new mock payment gateway
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{
		intents:  make(map[string]*PaymentIntent),
		metadata: make(map[string]map[string]string),
	}
}

// CreateIntent records a new intent in requires_payment_method state
func (m *MockPaymentGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}

	m.seq++
	id := fmt.Sprintf("pi_mock_%d", m.seq)
	intent := &PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       "requires_payment_method",
		Amount:       amount,
		Currency:     currency,
	}
	m.intents[id] = intent
	m.metadata[id] = metadata

	copied := *intent
	return &copied, nil
}

// GetIntent returns a recorded intent
func (m *MockPaymentGateway) GetIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	intent, ok := m.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such payment intent: %s", id)
	}
	copied := *intent
	return &copied, nil
}

// CancelIntent marks an intent cancelled
func (m *MockPaymentGateway) CancelIntent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CancelErr != nil {
		return m.CancelErr
	}
	if intent, ok := m.intents[id]; ok {
		intent.Status = "canceled"
	}
	m.cancelled = append(m.cancelled, id)
	return nil
}

// SetStatus forces the status of a recorded intent
func (m *MockPaymentGateway) SetStatus(id, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if intent, ok := m.intents[id]; ok {
		intent.Status = status
		return
	}
	m.intents[id] = &PaymentIntent{ID: id, Status: status}
}

// SetAmount overwrites the charged amount and currency of a recorded intent
func (m *MockPaymentGateway) SetAmount(id string, amount int64, currency string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if intent, ok := m.intents[id]; ok {
		intent.Amount = amount
		intent.Currency = currency
	}
}

// Intent returns a recorded intent and its metadata
func (m *MockPaymentGateway) Intent(id string) (*PaymentIntent, map[string]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	intent, ok := m.intents[id]
	if !ok {
		return nil, nil, false
	}
	copied := *intent
	return &copied, m.metadata[id], true
}

// Cancelled returns the ids passed to CancelIntent
func (m *MockPaymentGateway) Cancelled() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.cancelled))
	copy(out, m.cancelled)
	return out
}
