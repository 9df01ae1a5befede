package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/oakcrestpto/ptoportal/internal/helpers"
	"github.com/oakcrestpto/ptoportal/internal/mailer"
	"github.com/oakcrestpto/ptoportal/internal/middleware"
	"github.com/oakcrestpto/ptoportal/internal/models"
)

// webhookResult is what a single event handler reports back to the
// dispatcher. A note marks an event that was acknowledged without effect
// (missing metadata and the like); it lands on the webhook_events row so the
// condition stays visible instead of disappearing into the logs.
type webhookResult struct {
	note string
}

// StripeWebhook verifies, deduplicates and dispatches payment provider
// callbacks. Authenticity comes solely from the signature header; requests
// that fail verification are rejected before any handler runs. Unrecognized
// event types are acknowledged with 200 so the provider does not retry them
// forever.
func StripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Failed to read request body.")
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), os.Getenv("STRIPE_WEBHOOK_SECRET"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid webhook signature.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)
	logger := middleware.GetLogger(c)

	// True duplicate deliveries are skipped by event id; the status guards
	// in the individual handlers only cover out-of-order delivery.
	var seen int64
	gormDB.Model(&models.WebhookEvent{}).Where("event_id = ?", event.ID).Count(&seen)
	if seen > 0 {
		logger.Info("skipping already processed webhook event", zap.String("event_id", event.ID))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var result webhookResult
	var handlerErr error

	switch string(event.Type) {
	case "checkout.session.completed":
		handlerErr = handleCheckoutCompleted(c, gormDB, event, &result)
	case "checkout.session.expired":
		handlerErr = handleCheckoutExpired(gormDB, event, &result)
	case "charge.refunded":
		handlerErr = handleChargeRefunded(gormDB, event)
	case "invoice.paid":
		handlerErr = handleInvoicePaid(c, gormDB, event, &result)
	case "customer.subscription.deleted":
		handlerErr = handleSubscriptionDeleted(gormDB, event)
	default:
		logger.Info("unhandled webhook event type", zap.String("type", string(event.Type)))
	}

	if handlerErr != nil {
		logger.Error("webhook handler failed",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(handlerErr))
		helpers.RespondWithError(c, http.StatusInternalServerError, "Webhook handler failed.")
		return
	}

	if result.note != "" {
		logger.Warn("webhook event acknowledged without effect",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.String("note", result.note))
	}

	record := models.WebhookEvent{
		EventID:         event.ID,
		EventType:       string(event.Type),
		ProcessingError: result.note,
		ProcessedAt:     time.Now(),
	}
	if err := gormDB.Create(&record).Error; err != nil {
		logger.Error("failed to record processed webhook event",
			zap.String("event_id", event.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func handleCheckoutCompleted(c *gin.Context, db *gorm.DB, event stripe.Event, result *webhookResult) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return err
	}

	switch session.Metadata["type"] {
	case "donation":
		return recordDonationFromSession(c, db, session)
	case "ticket":
		return markTicketPaid(c, db, session, result)
	default:
		result.note = "checkout session without a recognized type in metadata"
		return nil
	}
}

// recordDonationFromSession creates the donation row for a completed
// checkout. Amount and currency come from the session totals, not from
// anything the client submitted.
func recordDonationFromSession(c *gin.Context, db *gorm.DB, session stripe.CheckoutSession) error {
	metadata := session.Metadata
	rawMetadata, _ := json.Marshal(metadata)

	donation := models.Donation{
		CheckoutSessionID: session.ID,
		Amount:            session.AmountTotal,
		Currency:          string(session.Currency),
		Status:            models.DonationSucceeded,
		DonationType:      metadata["donation_type"],
		DonorName:         metadata["donor_name"],
		DonorEmail:        metadata["donor_email"],
		DonorPhone:        metadata["donor_phone"],
		Campus:            metadata["campus"],
		StudentName:       metadata["student_name"],
		Message:           metadata["message"],
		IsAnonymous:       metadata["anonymous"] == "true",
		ProviderMetadata:  string(rawMetadata),
	}

	if session.PaymentIntent != nil {
		id := session.PaymentIntent.ID
		donation.PaymentIntentID = &id
	}
	if session.Subscription != nil {
		id := session.Subscription.ID
		donation.SubscriptionID = &id
		donation.IsRecurring = true
		donation.RecurringInterval = metadata["frequency"]
	}

	if err := db.Create(&donation).Error; err != nil {
		return err
	}

	sendReceipt(c, mailer.DonationReceipt(donation))
	return nil
}

func markTicketPaid(c *gin.Context, db *gorm.DB, session stripe.CheckoutSession, result *webhookResult) error {
	ticketID := session.Metadata["ticket_id"]
	if ticketID == "" {
		result.note = "ticket checkout session missing ticket_id metadata"
		return nil
	}

	updates := map[string]interface{}{"status": models.TicketPaid}
	if session.PaymentIntent != nil {
		updates["payment_intent_id"] = session.PaymentIntent.ID
	}
	if session.Customer != nil {
		updates["customer_id"] = session.Customer.ID
	}

	res := db.Model(&models.EventTicket{}).
		Where("id = ? AND status = ?", ticketID, models.TicketPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Stale or out-of-order delivery; the ticket already left pending.
		return nil
	}

	var ticket models.EventTicket
	if err := db.Preload("Codes").Preload("Event").Where("id = ?", ticketID).First(&ticket).Error; err != nil {
		return nil
	}
	codes := make([]string, 0, len(ticket.Codes))
	for _, code := range ticket.Codes {
		codes = append(codes, code.Code)
	}
	sendReceipt(c, mailer.TicketReceipt(ticket, ticket.Event.Title, codes))
	return nil
}

// handleCheckoutExpired cancels a ticket purchase that never paid. The status
// guard keeps a late expiry event from clobbering a ticket that was paid in
// the meantime, and the claimed capacity goes back on sale.
func handleCheckoutExpired(db *gorm.DB, event stripe.Event, result *webhookResult) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return err
	}

	if session.Metadata["type"] != "ticket" {
		return nil
	}
	ticketID := session.Metadata["ticket_id"]
	if ticketID == "" {
		result.note = "expired checkout session missing ticket_id metadata"
		return nil
	}

	var ticket models.EventTicket
	if err := db.Where("id = ?", ticketID).First(&ticket).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			result.note = "expired checkout session references unknown ticket"
			return nil
		}
		return err
	}

	res := db.Model(&models.EventTicket{}).
		Where("id = ? AND status = ?", ticketID, models.TicketPending).
		Update("status", models.TicketCancelled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return db.Model(&models.Event{}).
			Where("id = ?", ticket.EventID).
			Update("tickets_sold", gorm.Expr("tickets_sold - ?", ticket.Quantity)).Error
	}
	return nil
}

// handleChargeRefunded marks the matching ticket refunded regardless of its
// prior status; a refund is authoritative.
func handleChargeRefunded(db *gorm.DB, event stripe.Event) error {
	var charge stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		return err
	}
	if charge.PaymentIntent == nil {
		return nil
	}

	return db.Model(&models.EventTicket{}).
		Where("payment_intent_id = ?", charge.PaymentIntent.ID).
		Update("status", models.TicketRefunded).Error
}

// handleInvoicePaid records one donation per recurring billing cycle. The
// initial subscription invoice is skipped because checkout.session.completed
// already recorded it. Invoices do not carry the session metadata, so it is
// recovered from the subscription.
func handleInvoicePaid(c *gin.Context, db *gorm.DB, event stripe.Event, result *webhookResult) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return err
	}

	if invoice.BillingReason == stripe.InvoiceBillingReasonSubscriptionCreate {
		return nil
	}
	if invoice.Subscription == nil {
		result.note = "paid invoice without a subscription reference"
		return nil
	}

	gateway := middleware.GetPaymentGateway(c)
	if gateway == nil {
		result.note = "payment gateway not configured for subscription lookup"
		return nil
	}

	sub, err := gateway.GetSubscription(invoice.Subscription.ID)
	if err != nil {
		return err
	}
	metadata := sub.Metadata
	if metadata["type"] != "donation" {
		result.note = "paid invoice for a subscription without donation metadata"
		return nil
	}
	rawMetadata, _ := json.Marshal(metadata)

	subID := sub.ID
	donation := models.Donation{
		SubscriptionID:    &subID,
		Amount:            invoice.AmountPaid,
		Currency:          string(invoice.Currency),
		Status:            models.DonationSucceeded,
		DonationType:      metadata["donation_type"],
		DonorName:         metadata["donor_name"],
		DonorEmail:        metadata["donor_email"],
		DonorPhone:        metadata["donor_phone"],
		Campus:            metadata["campus"],
		StudentName:       metadata["student_name"],
		Message:           metadata["message"],
		IsAnonymous:       metadata["anonymous"] == "true",
		IsRecurring:       true,
		RecurringInterval: metadata["frequency"],
		ProviderMetadata:  string(rawMetadata),
	}
	if err := db.Create(&donation).Error; err != nil {
		return err
	}

	sendReceipt(c, mailer.DonationReceipt(donation))
	return nil
}

func handleSubscriptionDeleted(db *gorm.DB, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return err
	}

	return db.Model(&models.Donation{}).
		Where("subscription_id = ? AND status = ?", sub.ID, models.DonationSucceeded).
		Update("status", models.DonationCancelled).Error
}

// sendReceipt is best-effort: the financial record is authoritative and a
// failed notification must never fail the webhook.
func sendReceipt(c *gin.Context, msg mailer.Message) {
	m := middleware.GetMailer(c)
	if m == nil {
		return
	}
	if err := m.Send(msg); err != nil {
		middleware.GetLogger(c).Error("failed to send receipt email",
			zap.String("to", msg.To), zap.Error(err))
	}
}
