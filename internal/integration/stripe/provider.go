// Package stripe holds the payment processor integration. Services depend on
// the BillingProvider capability, never on the vendor SDK directly; test and
// local deployments wire the no-op provider instead.
package stripe

import (
	"context"

	"github.com/shopspring/decimal"
)

// BillingProvider defines the payment processor operations the engine needs.
type BillingProvider interface {
	// EnsureCustomer returns the processor customer ID for a user, creating
	// the customer upstream when none exists yet
	EnsureCustomer(ctx context.Context, userID, email, existingCustomerID string) (string, error)

	// CreateSubscription starts a processor subscription for the customer on
	// the given price and returns the processor subscription ID
	CreateSubscription(ctx context.Context, customerID, priceID string) (string, error)

	// CancelSubscription flags the processor subscription to end at the
	// close of the current period
	CancelSubscription(ctx context.Context, subscriptionID string) error

	// CreateInvoiceItem adds a one-off charge line to the customer's next
	// invoice. Amount is in major currency units.
	CreateInvoiceItem(ctx context.Context, customerID string, amount decimal.Decimal, currency, description string) error
}
