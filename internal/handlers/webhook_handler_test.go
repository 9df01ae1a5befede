package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"gorm.io/gorm"

	"github.com/oakcrestpto/ptoportal/internal/models"
	"github.com/oakcrestpto/ptoportal/internal/payments"
)

const testWebhookSecret = "whsec_test_secret"

func stripeSignature(secret string, payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func webhookPayload(t *testing.T, eventID, eventType string, object interface{}) []byte {
	t.Helper()

	raw, err := json.Marshal(object)
	require.NoError(t, err)

	payload, err := json.Marshal(map[string]interface{}{
		"id":          eventID,
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        eventType,
		"data":        map[string]interface{}{"object": json.RawMessage(raw)},
	})
	require.NoError(t, err)
	return payload
}

func postWebhook(r *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newWebhookRouter(t *testing.T, db *gorm.DB, gateway payments.Gateway, m *fakeMailer) *gin.Engine {
	t.Helper()
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)
	r := newTestRouter(db, gateway, m)
	r.POST("/api/webhooks/stripe", StripeWebhook)
	return r
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	db := setupTestDB(t)
	r := newWebhookRouter(t, db, &fakeGateway{}, &fakeMailer{})

	payload := webhookPayload(t, "evt_bad_sig", "checkout.session.completed", map[string]interface{}{"id": "cs_1"})

	w := postWebhook(r, payload, "t=123,v1=deadbeef")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&models.WebhookEvent{}).Count(&count)
	assert.Zero(t, count)
}

func TestStripeWebhookDonationCompleted(t *testing.T) {
	db := setupTestDB(t)
	m := &fakeMailer{}
	r := newWebhookRouter(t, db, &fakeGateway{}, m)

	payload := webhookPayload(t, "evt_donation_1", "checkout.session.completed", map[string]interface{}{
		"id":             "cs_donation_1",
		"amount_total":   2500,
		"currency":       "usd",
		"payment_intent": "pi_123",
		"metadata": map[string]string{
			"type":          "donation",
			"donation_type": "stem",
			"frequency":     "one_time",
			"donor_name":    "Dana Whitfield",
			"donor_email":   "dana@example.com",
			"campus":        "north",
			"anonymous":     "false",
		},
	})

	w := postWebhook(r, payload, stripeSignature(testWebhookSecret, payload))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received": true}`, w.Body.String())

	var donation models.Donation
	require.NoError(t, db.Where("checkout_session_id = ?", "cs_donation_1").First(&donation).Error)
	assert.Equal(t, int64(2500), donation.Amount)
	assert.Equal(t, "usd", donation.Currency)
	assert.Equal(t, models.DonationSucceeded, donation.Status)
	assert.Equal(t, "stem", donation.DonationType)
	assert.Equal(t, "Dana Whitfield", donation.DonorName)
	assert.Equal(t, "north", donation.Campus)
	assert.False(t, donation.IsRecurring)
	require.NotNil(t, donation.PaymentIntentID)
	assert.Equal(t, "pi_123", *donation.PaymentIntentID)

	require.Len(t, m.sent, 1)
	assert.Equal(t, "dana@example.com", m.sent[0].To)
}

func TestStripeWebhookDuplicateDeliverySkipped(t *testing.T) {
	db := setupTestDB(t)
	r := newWebhookRouter(t, db, &fakeGateway{}, &fakeMailer{})

	payload := webhookPayload(t, "evt_dup", "checkout.session.completed", map[string]interface{}{
		"id":           "cs_dup",
		"amount_total": 1000,
		"currency":     "usd",
		"metadata": map[string]string{
			"type":          "donation",
			"donation_type": "general",
			"donor_name":    "Pat",
			"donor_email":   "pat@example.com",
		},
	})

	w := postWebhook(r, payload, stripeSignature(testWebhookSecret, payload))
	require.Equal(t, http.StatusOK, w.Code)
	w = postWebhook(r, payload, stripeSignature(testWebhookSecret, payload))
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Donation{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestStripeWebhookTicketPaid(t *testing.T) {
	db := setupTestDB(t)
	m := &fakeMailer{}
	r := newWebhookRouter(t, db, &fakeGateway{}, m)

	event := createTestEvent(t, db, 50, 1500)
	ticket := models.EventTicket{
		EventID:    event.ID,
		BuyerName:  "Sam Ortega",
		BuyerEmail: "sam@example.com",
		Quantity:   2,
		UnitPrice:  1500,
		TotalPrice: 3000,
		Status:     models.TicketPending,
		Codes:      []models.TicketCode{{Code: "FC-AAAA1111"}, {Code: "FC-BBBB2222"}},
	}
	require.NoError(t, db.Create(&ticket).Error)

	payload := webhookPayload(t, "evt_ticket_paid", "checkout.session.completed", map[string]interface{}{
		"id":             "cs_ticket_1",
		"payment_intent": "pi_ticket_1",
		"metadata": map[string]string{
			"type":      "ticket",
			"ticket_id": ticket.ID.String(),
			"event_id":  event.ID.String(),
		},
	})

	w := postWebhook(r, payload, stripeSignature(testWebhookSecret, payload))
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.EventTicket
	require.NoError(t, db.Where("id = ?", ticket.ID).First(&updated).Error)
	assert.Equal(t, models.TicketPaid, updated.Status)
	assert.Equal(t, "pi_ticket_1", updated.PaymentIntentID)

	require.Len(t, m.sent, 1)
	assert.Equal(t, "sam@example.com", m.sent[0].To)
	assert.Contains(t, m.sent[0].HTML, "FC-AAAA1111")
}

func TestStripeWebhookExpiredCancelsPendingAndReleasesCapacity(t *testing.T) {
	db := setupTestDB(t)
	r := newWebhookRouter(t, db, &fakeGateway{}, &fakeMailer{})

	event := createTestEvent(t, db, 10, 1000)
	require.NoError(t, db.Model(&models.Event{}).Where("id = ?", event.ID).
		Update("tickets_sold", 2).Error)

	ticket := models.EventTicket{
		EventID:    event.ID,
		BuyerName:  "Lee",
		BuyerEmail: "lee@example.com",
		Quantity:   2,
		UnitPrice:  1000,
		TotalPrice: 2000,
		Status:     models.TicketPending,
	}
	require.NoError(t, db.Create(&ticket).Error)

	sessionObject := map[string]interface{}{
		"id": "cs_expired_1",
		"metadata": map[string]string{
			"type":      "ticket",
			"ticket_id": ticket.ID.String(),
		},
	}

	payload := webhookPayload(t, "evt_expired_1", "checkout.session.expired", sessionObject)
	w := postWebhook(r, payload, stripeSignature(testWebhookSecret, payload))
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.EventTicket
	require.NoError(t, db.Where("id = ?", ticket.ID).First(&updated).Error)
	assert.Equal(t, models.TicketCancelled, updated.Status)

	var freshEvent models.Event
	require.NoError(t, db.Where("id = ?", event.ID).First(&freshEvent).Error)
	assert.Equal(t, 0, freshEvent.TicketsSold)

	// A second expiry for the same session arrives with a new event id; the
	// status guard keeps it from releasing the capacity again.
	payload = webhookPayload(t, "evt_expired_2", "checkout.session.expired", sessionObject)
	w = postWebhook(r, payload, stripeSignature(testWebhookSecret, payload))
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.Where("id = ?", event.ID).First(&freshEvent).Error)
	assert.Equal(t, 0, freshEvent.TicketsSold)
}

func TestStripeWebhookExpiredDoesNotClobberPaid(t *testing.T) {
	db := setupTestDB(t)
	r := newWebhookRouter(t, db, &fakeGateway{}, &fakeMailer{})

	event := createTestEvent(t, db, 10, 1000)
	require.NoError(t, db.Model(&models.Event{}).Where("id = ?", event.ID).
		Update("tickets_sold", 1).Error)

	ticket := models.EventTicket{
		EventID:    event.ID,
		BuyerName:  "Mia",
		BuyerEmail: "mia@example.com",
		Quantity:   1,
		UnitPrice:  1000,
		TotalPrice: 1000,
		Status:     models.TicketPaid,
	}
	require.NoError(t, db.Create(&ticket).Error)

	payload := webhookPayload(t, "evt_expired_late", "checkout.session.expired", map[string]interface{}{
		"id": "cs_late",
		"metadata": map[string]string{
			"type":      "ticket",
			"ticket_id": ticket.ID.String(),
		},
	})
	w := postWebhook(r, payload, stripeSignature(testWebhookSecret, payload))
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.EventTicket
	require.NoError(t, db.Where("id = ?", ticket.ID).First(&updated).Error)
	assert.Equal(t, models.TicketPaid, updated.Status)

	var freshEvent models.Event
	require.NoError(t, db.Where("id = ?", event.ID).First(&freshEvent).Error)
	assert.Equal(t, 1, freshEvent.TicketsSold)
}

func TestStripeWebhookChargeRefunded(t *testing.T) {
	db := setupTestDB(t)
	r := newWebhookRouter(t, db, &fakeGateway{}, &fakeMailer{})

	event := createTestEvent(t, db, 10, 1000)
	ticket := models.EventTicket{
		EventID:         event.ID,
		BuyerName:       "Ray",
		BuyerEmail:      "ray@example.com",
		Quantity:        1,
		UnitPrice:       1000,
		TotalPrice:      1000,
		PaymentIntentID: "pi_refund_1",
		Status:          models.TicketPaid,
	}
	require.NoError(t, db.Create(&ticket).Error)

	payload := webhookPayload(t, "evt_refund_1", "charge.refunded", map[string]interface{}{
		"id":             "ch_1",
		"payment_intent": "pi_refund_1",
	})
	w := postWebhook(r, payload, stripeSignature(testWebhookSecret, payload))
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.EventTicket
	require.NoError(t, db.Where("id = ?", ticket.ID).First(&updated).Error)
	assert.Equal(t, models.TicketRefunded, updated.Status)
}

func TestStripeWebhookInvoicePaidRecordsRenewal(t *testing.T) {
	db := setupTestDB(t)
	m := &fakeMailer{}
	gateway := &fakeGateway{
		subscription: &payments.SubscriptionInfo{
			ID: "sub_1",
			Metadata: map[string]string{
				"type":          "donation",
				"donation_type": "general",
				"frequency":     "monthly",
				"donor_name":    "Jordan Li",
				"donor_email":   "jordan@example.com",
			},
		},
	}
	r := newWebhookRouter(t, db, gateway, m)

	payload := webhookPayload(t, "evt_invoice_1", "invoice.paid", map[string]interface{}{
		"id":             "in_1",
		"billing_reason": "subscription_cycle",
		"amount_paid":    2500,
		"currency":       "usd",
		"subscription":   "sub_1",
	})
	w := postWebhook(r, payload, stripeSignature(testWebhookSecret, payload))
	require.Equal(t, http.StatusOK, w.Code)

	var donation models.Donation
	require.NoError(t, db.Where("subscription_id = ?", "sub_1").First(&donation).Error)
	assert.Equal(t, int64(2500), donation.Amount)
	assert.True(t, donation.IsRecurring)
	assert.Equal(t, "monthly", donation.RecurringInterval)
	assert.Equal(t, "Jordan Li", donation.DonorName)
	require.Len(t, m.sent, 1)
}

func TestStripeWebhookInvoicePaidSkipsInitialInvoice(t *testing.T) {
	db := setupTestDB(t)
	r := newWebhookRouter(t, db, &fakeGateway{}, &fakeMailer{})

	payload := webhookPayload(t, "evt_invoice_create", "invoice.paid", map[string]interface{}{
		"id":             "in_initial",
		"billing_reason": "subscription_create",
		"amount_paid":    2500,
		"currency":       "usd",
		"subscription":   "sub_1",
	})
	w := postWebhook(r, payload, stripeSignature(testWebhookSecret, payload))
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Donation{}).Count(&count)
	assert.Zero(t, count)
}

func TestStripeWebhookInvoicePaidWithoutDonationMetadata(t *testing.T) {
	db := setupTestDB(t)
	gateway := &fakeGateway{
		subscription: &payments.SubscriptionInfo{ID: "sub_other", Metadata: map[string]string{}},
	}
	r := newWebhookRouter(t, db, gateway, &fakeMailer{})

	payload := webhookPayload(t, "evt_invoice_other", "invoice.paid", map[string]interface{}{
		"id":             "in_other",
		"billing_reason": "subscription_cycle",
		"amount_paid":    900,
		"currency":       "usd",
		"subscription":   "sub_other",
	})
	w := postWebhook(r, payload, stripeSignature(testWebhookSecret, payload))
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Donation{}).Count(&count)
	assert.Zero(t, count)

	// The acknowledged-without-effect condition lands on the processed row.
	var record models.WebhookEvent
	require.NoError(t, db.Where("event_id = ?", "evt_invoice_other").First(&record).Error)
	assert.NotEmpty(t, record.ProcessingError)
}

func TestStripeWebhookSubscriptionDeleted(t *testing.T) {
	db := setupTestDB(t)
	r := newWebhookRouter(t, db, &fakeGateway{}, &fakeMailer{})

	subID := "sub_cancel_1"
	donation := models.Donation{
		SubscriptionID: &subID,
		Amount:         2500,
		Currency:       "usd",
		Status:         models.DonationSucceeded,
		DonationType:   "general",
		IsRecurring:    true,
		DonorName:      "Quinn",
		DonorEmail:     "quinn@example.com",
	}
	require.NoError(t, db.Create(&donation).Error)

	payload := webhookPayload(t, "evt_sub_deleted", "customer.subscription.deleted", map[string]interface{}{
		"id": subID,
	})
	w := postWebhook(r, payload, stripeSignature(testWebhookSecret, payload))
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Donation
	require.NoError(t, db.Where("id = ?", donation.ID).First(&updated).Error)
	assert.Equal(t, models.DonationCancelled, updated.Status)
}

func TestStripeWebhookUnrecognizedTypeAcknowledged(t *testing.T) {
	db := setupTestDB(t)
	r := newWebhookRouter(t, db, &fakeGateway{}, &fakeMailer{})

	payload := webhookPayload(t, "evt_unknown", "payout.created", map[string]interface{}{"id": "po_1"})
	w := postWebhook(r, payload, stripeSignature(testWebhookSecret, payload))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received": true}`, w.Body.String())

	var record models.WebhookEvent
	require.NoError(t, db.Where("event_id = ?", "evt_unknown").First(&record).Error)
	assert.Equal(t, "payout.created", record.EventType)
}
