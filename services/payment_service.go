package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/solarhub/solarhub-api/utils"
)

// PaymentIntentSucceeded is the gateway status of a captured payment
const PaymentIntentSucceeded = string(stripe.PaymentIntentStatusSucceeded)

// PaymentIntent is the gateway's view of a payment authorization
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
}

// PaymentGateway authorizes charges with an external payment provider
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*PaymentIntent, error)
	CancelIntent(ctx context.Context, id string) error
}

// StripeGateway implements PaymentGateway with a Stripe API client
type StripeGateway struct {
	api *client.API
}

// NewStripeClient builds the API client once at process start
func NewStripeClient(secretKey string) *client.API {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return sc
}

// NewStripeGateway wraps an initialized Stripe client
func NewStripeGateway(api *client.API) *StripeGateway {
	return &StripeGateway{api: api}
}

// CreateIntent requests a payment intent for amount in the currency's smallest unit
func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	utils.PaymentIntentsTotal.WithLabelValues("create", utils.Outcome(err)).Inc()
	if err != nil {
		return nil, errors.Wrap(err, "create payment intent")
	}
	return fromStripe(pi), nil
}

// GetIntent retrieves a payment intent by id
func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(id, params)
	utils.PaymentIntentsTotal.WithLabelValues("get", utils.Outcome(err)).Inc()
	if err != nil {
		return nil, errors.Wrapf(err, "retrieve payment intent %s", id)
	}
	return fromStripe(pi), nil
}

// CancelIntent voids an intent that has not been captured
func (g *StripeGateway) CancelIntent(ctx context.Context, id string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	_, err := g.api.PaymentIntents.Cancel(id, params)
	utils.PaymentIntentsTotal.WithLabelValues("cancel", utils.Outcome(err)).Inc()
	return errors.Wrapf(err, "cancel payment intent %s", id)
}

func fromStripe(pi *stripe.PaymentIntent) *PaymentIntent {
	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}
}
