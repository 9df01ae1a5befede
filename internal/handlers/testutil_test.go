package handlers

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oakcrestpto/ptoportal/config"
	"github.com/oakcrestpto/ptoportal/internal/mailer"
	"github.com/oakcrestpto/ptoportal/internal/middleware"
	"github.com/oakcrestpto/ptoportal/internal/models"
	"github.com/oakcrestpto/ptoportal/internal/payments"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database keeps the schema visible across the
	// connections gorm pools, while staying isolated per test.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

type fakeGateway struct {
	donationParams []payments.DonationParams
	ticketParams   []payments.TicketParams
	session        payments.Session
	priceID        string
	subscription   *payments.SubscriptionInfo
	sessionErr     error
	subErr         error
}

func (g *fakeGateway) CreateDonationSession(p payments.DonationParams) (*payments.Session, error) {
	g.donationParams = append(g.donationParams, p)
	if g.sessionErr != nil {
		return nil, g.sessionErr
	}
	s := g.session
	return &s, nil
}

func (g *fakeGateway) CreateTicketSession(p payments.TicketParams) (*payments.Session, error) {
	g.ticketParams = append(g.ticketParams, p)
	if g.sessionErr != nil {
		return nil, g.sessionErr
	}
	s := g.session
	return &s, nil
}

func (g *fakeGateway) CreateEventPrice(eventTitle string, unitAmount int64) (string, error) {
	if g.priceID == "" {
		return "price_test", nil
	}
	return g.priceID, nil
}

func (g *fakeGateway) GetSubscription(id string) (*payments.SubscriptionInfo, error) {
	if g.subErr != nil {
		return nil, g.subErr
	}
	return g.subscription, nil
}

type fakeMailer struct {
	sent []mailer.Message
}

func (m *fakeMailer) Send(msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func newTestRouter(db *gorm.DB, gateway payments.Gateway, m mailer.Mailer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.LoggerMiddleware(zap.NewNop()))
	if gateway != nil {
		r.Use(middleware.PaymentGatewayMiddleware(gateway))
	}
	if m != nil {
		r.Use(middleware.MailerMiddleware(m))
	}
	return r
}

func createTestEvent(t *testing.T, db *gorm.DB, quantity int, price int64) models.Event {
	t.Helper()

	event := models.Event{
		Title:          "Fall Carnival",
		Description:    "Games and food trucks on the back field.",
		StartTime:      time.Now().Add(72 * time.Hour),
		EndTime:        time.Now().Add(76 * time.Hour),
		Location:       "Oakcrest Elementary",
		TicketPrice:    price,
		TicketQuantity: quantity,
		UserID:         uuid.New(),
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}
