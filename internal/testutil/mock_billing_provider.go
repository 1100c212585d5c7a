package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// InvoiceItemCall records one CreateInvoiceItem invocation for assertions.
type InvoiceItemCall struct {
	CustomerID  string
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// MockBillingProvider implements stripe.BillingProvider and records every
// call so tests can assert on what was sent upstream.
type MockBillingProvider struct {
	mu sync.Mutex

	CustomerCounter     int
	SubscriptionCounter int

	CancelledSubscriptions []string
	InvoiceItems           []InvoiceItemCall

	// FailNext makes the next call return this error, then clears it.
	FailNext error
}

func NewMockBillingProvider() *MockBillingProvider {
	return &MockBillingProvider{}
}

func (p *MockBillingProvider) takeFailure() error {
	err := p.FailNext
	p.FailNext = nil
	return err
}

func (p *MockBillingProvider) EnsureCustomer(ctx context.Context, userID, email, existingCustomerID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.takeFailure(); err != nil {
		return "", err
	}
	if existingCustomerID != "" {
		return existingCustomerID, nil
	}
	p.CustomerCounter++
	return fmt.Sprintf("cus_test_%d", p.CustomerCounter), nil
}

func (p *MockBillingProvider) CreateSubscription(ctx context.Context, customerID, priceID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.takeFailure(); err != nil {
		return "", err
	}
	p.SubscriptionCounter++
	return fmt.Sprintf("sub_test_%d", p.SubscriptionCounter), nil
}

func (p *MockBillingProvider) CancelSubscription(ctx context.Context, subscriptionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.takeFailure(); err != nil {
		return err
	}
	p.CancelledSubscriptions = append(p.CancelledSubscriptions, subscriptionID)
	return nil
}

func (p *MockBillingProvider) CreateInvoiceItem(ctx context.Context, customerID string, amount decimal.Decimal, currency, description string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.takeFailure(); err != nil {
		return err
	}
	p.InvoiceItems = append(p.InvoiceItems, InvoiceItemCall{
		CustomerID:  customerID,
		Amount:      amount,
		Currency:    currency,
		Description: description,
	})
	return nil
}
