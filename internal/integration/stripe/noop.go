package stripe

import (
	"context"
	"fmt"

	"github.com/dialhaven/dialhaven/internal/logger"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/shopspring/decimal"
)

// NoopProvider satisfies BillingProvider without calling any processor.
// Wired when stripe is disabled so local and test deployments run the same
// code path as production.
type NoopProvider struct {
	logger *logger.Logger
}

func NewNoopProvider(log *logger.Logger) BillingProvider {
	return &NoopProvider{logger: log}
}

func (p *NoopProvider) EnsureCustomer(ctx context.Context, userID, email, existingCustomerID string) (string, error) {
	if existingCustomerID != "" {
		return existingCustomerID, nil
	}
	id := fmt.Sprintf("cus_noop_%s", types.GenerateUUID())
	p.logger.Debugw("noop billing: customer created", "user_id", userID, "customer_id", id)
	return id, nil
}

func (p *NoopProvider) CreateSubscription(ctx context.Context, customerID, priceID string) (string, error) {
	id := fmt.Sprintf("sub_noop_%s", types.GenerateUUID())
	p.logger.Debugw("noop billing: subscription created", "customer_id", customerID, "price_id", priceID)
	return id, nil
}

func (p *NoopProvider) CancelSubscription(ctx context.Context, subscriptionID string) error {
	p.logger.Debugw("noop billing: subscription cancelled", "subscription_id", subscriptionID)
	return nil
}

func (p *NoopProvider) CreateInvoiceItem(ctx context.Context, customerID string, amount decimal.Decimal, currency, description string) error {
	p.logger.Debugw("noop billing: invoice item created",
		"customer_id", customerID,
		"amount", amount.String(),
		"currency", currency,
		"description", description)
	return nil
}
