package stripe

import (
	"context"

	"github.com/dialhaven/dialhaven/internal/config"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/logger"
	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// Client implements BillingProvider against the Stripe API.
type Client struct {
	api    *client.API
	logger *logger.Logger
}

// NewClient creates a Stripe-backed billing provider.
func NewClient(cfg *config.Configuration, log *logger.Logger) (BillingProvider, error) {
	if cfg.Stripe.SecretKey == "" {
		return nil, ierr.NewError("stripe secret key is not configured").
			WithHint("Set stripe.secret_key or disable stripe").
			Mark(ierr.ErrValidation)
	}

	api := &client.API{}
	api.Init(cfg.Stripe.SecretKey, nil)

	return &Client{api: api, logger: log}, nil
}

func (c *Client) EnsureCustomer(ctx context.Context, userID, email, existingCustomerID string) (string, error) {
	if existingCustomerID != "" {
		return existingCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	cust, err := c.api.Customers.New(params)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to create payment processor customer").
			WithReportableDetails(map[string]interface{}{
				"user_id": userID,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	c.logger.Infow("created stripe customer", "user_id", userID, "customer_id", cust.ID)
	return cust.ID, nil
}

func (c *Client) CreateSubscription(ctx context.Context, customerID, priceID string) (string, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
	}
	params.Context = ctx

	sub, err := c.api.Subscriptions.New(params)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to create payment processor subscription").
			WithReportableDetails(map[string]interface{}{
				"customer_id": customerID,
				"price_id":    priceID,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	return sub.ID, nil
}

func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx

	if _, err := c.api.Subscriptions.Update(subscriptionID, params); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to cancel payment processor subscription").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": subscriptionID,
			}).
			Mark(ierr.ErrHTTPClient)
	}
	return nil
}

func (c *Client) CreateInvoiceItem(ctx context.Context, customerID string, amount decimal.Decimal, currency, description string) error {
	// Stripe amounts are in the currency's smallest unit
	amountCents := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	params := &stripe.InvoiceItemParams{
		Customer:    stripe.String(customerID),
		Amount:      stripe.Int64(amountCents),
		Currency:    stripe.String(currency),
		Description: stripe.String(description),
	}
	params.Context = ctx

	if _, err := c.api.InvoiceItems.New(params); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create invoice line item").
			WithReportableDetails(map[string]interface{}{
				"customer_id": customerID,
				"amount":      amount,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	return nil
}
