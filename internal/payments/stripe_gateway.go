package payments

import (
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/customer"
	"github.com/stripe/stripe-go/v81/price"
	"github.com/stripe/stripe-go/v81/subscription"
)

type stripeGateway struct{}

// NewStripeGateway configures the Stripe SDK with the secret key and returns
// the production gateway.
func NewStripeGateway(secretKey string) Gateway {
	stripe.Key = secretKey
	return &stripeGateway{}
}

// recurringInterval maps a donation frequency onto a Stripe billing cycle.
// Quarterly bills every three months on a monthly cycle.
func recurringInterval(frequency string) (interval string, count int64, ok bool) {
	switch frequency {
	case "monthly":
		return "month", 1, true
	case "quarterly":
		return "month", 3, true
	case "annual":
		return "year", 1, true
	}
	return "", 0, false
}

func (g *stripeGateway) ensureCustomer(email, name string) (string, error) {
	listParams := &stripe.CustomerListParams{Email: stripe.String(email)}
	listParams.Limit = stripe.Int64(1)
	iter := customer.List(listParams)
	for iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("list customers: %w", err)
	}

	cust, err := customer.New(&stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return cust.ID, nil
}

func donationMetadata(p DonationParams) map[string]string {
	return map[string]string{
		"type":          "donation",
		"donation_type": p.DonationType,
		"frequency":     p.Frequency,
		"donor_name":    p.DonorName,
		"donor_email":   p.DonorEmail,
		"donor_phone":   p.DonorPhone,
		"campus":        p.Campus,
		"student_name":  p.StudentName,
		"message":       p.Message,
		"anonymous":     strconv.FormatBool(p.Anonymous),
	}
}

func (g *stripeGateway) CreateDonationSession(p DonationParams) (*Session, error) {
	customerID, err := g.ensureCustomer(p.DonorEmail, p.DonorName)
	if err != nil {
		return nil, err
	}

	metadata := donationMetadata(p)

	lineItem := &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency: stripe.String("usd"),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String("PTO Donation"),
			},
			UnitAmount: stripe.Int64(p.Amount),
		},
		Quantity: stripe.Int64(1),
	}

	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(customerID),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		LineItems:  []*stripe.CheckoutSessionLineItemParams{lineItem},
	}
	params.Metadata = metadata

	if interval, count, ok := recurringInterval(p.Frequency); ok {
		lineItem.PriceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval:      stripe.String(interval),
			IntervalCount: stripe.Int64(count),
		}
		params.Mode = stripe.String(string(stripe.CheckoutSessionModeSubscription))
		// Renewal invoices only reference the subscription, so the
		// metadata has to live there as well.
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		}
	} else {
		params.Mode = stripe.String(string(stripe.CheckoutSessionModePayment))
		params.SubmitType = stripe.String("donate")
	}

	s, err := session.New(params)
	if err != nil {
		return nil, stripeError("create donation session", err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

func (g *stripeGateway) CreateTicketSession(p TicketParams) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		CustomerEmail: stripe.String(p.BuyerEmail),
		SuccessURL:    stripe.String(p.SuccessURL),
		CancelURL:     stripe.String(p.CancelURL),
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(p.Quantity),
			},
		},
	}
	params.Metadata = map[string]string{
		"type":      "ticket",
		"ticket_id": p.TicketID,
		"event_id":  p.EventID,
	}

	s, err := session.New(params)
	if err != nil {
		return nil, stripeError("create ticket session", err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

// CreateEventPrice lazily creates the product and price for an event on its
// first ticket sale.
func (g *stripeGateway) CreateEventPrice(eventTitle string, unitAmount int64) (string, error) {
	pr, err := price.New(&stripe.PriceParams{
		Currency:   stripe.String("usd"),
		UnitAmount: stripe.Int64(unitAmount),
		ProductData: &stripe.PriceProductDataParams{
			Name: stripe.String(fmt.Sprintf("%s Ticket", eventTitle)),
		},
	})
	if err != nil {
		return "", stripeError("create event price", err)
	}
	return pr.ID, nil
}

func (g *stripeGateway) GetSubscription(id string) (*SubscriptionInfo, error) {
	sub, err := subscription.Get(id, nil)
	if err != nil {
		return nil, stripeError("retrieve subscription", err)
	}
	info := &SubscriptionInfo{ID: sub.ID, Metadata: sub.Metadata}
	if sub.Customer != nil {
		info.CustomerID = sub.Customer.ID
	}
	return info, nil
}

func stripeError(op string, err error) error {
	if stripeErr, ok := err.(*stripe.Error); ok {
		return fmt.Errorf("%s: %s", op, stripeErr.Msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}
