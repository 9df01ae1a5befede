package payments

// Gateway is the surface of the payment provider the handlers need. The
// checkout endpoints build sessions through it and the webhook reconciler
// re-fetches subscriptions through it; everything else stays inside the
// Stripe implementation.
type Gateway interface {
	CreateDonationSession(p DonationParams) (*Session, error)
	CreateTicketSession(p TicketParams) (*Session, error)
	CreateEventPrice(eventTitle string, unitAmount int64) (string, error)
	GetSubscription(id string) (*SubscriptionInfo, error)
}

// Session is the provider checkout session the buyer gets redirected to.
type Session struct {
	ID  string
	URL string
}

// SubscriptionInfo carries the metadata a recurring donation was created
// with. Renewal invoices do not carry session metadata, so the reconciler
// reads it from the subscription instead.
type SubscriptionInfo struct {
	ID         string
	CustomerID string
	Metadata   map[string]string
}

type DonationParams struct {
	Amount       int64
	Frequency    string // one_time, monthly, quarterly, annual
	DonorName    string
	DonorEmail   string
	DonorPhone   string
	DonationType string
	Campus       string
	StudentName  string
	Message      string
	Anonymous    bool
	SuccessURL   string
	CancelURL    string
}

type TicketParams struct {
	PriceID    string
	Quantity   int64
	TicketID   string
	EventID    string
	EventTitle string
	BuyerEmail string
	SuccessURL string
	CancelURL  string
}
