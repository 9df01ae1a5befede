package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakcrestpto/ptoportal/internal/models"
	"github.com/oakcrestpto/ptoportal/internal/payments"
)

func postDonation(r *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/v1/donations/create-session", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func donationBody(amount int64, frequency string) map[string]interface{} {
	return map[string]interface{}{
		"amount":        amount,
		"frequency":     frequency,
		"donation_type": "general",
		"donor_name":    "Dana Whitfield",
		"donor_email":   "dana@example.com",
	}
}

func TestCreateDonationSession(t *testing.T) {
	db := setupTestDB(t)
	gateway := &fakeGateway{
		session: payments.Session{ID: "cs_donate_1", URL: "https://checkout.example.com/cs_donate_1"},
	}
	r := newTestRouter(db, gateway, nil)
	r.POST("/v1/donations/create-session", CreateDonationSession)

	w := postDonation(r, donationBody(2500, "monthly"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cs_donate_1", resp["sessionId"])

	require.Len(t, gateway.donationParams, 1)
	assert.Equal(t, int64(2500), gateway.donationParams[0].Amount)
	assert.Equal(t, "monthly", gateway.donationParams[0].Frequency)

	// The donation row is written by the webhook, never here.
	var count int64
	db.Model(&models.Donation{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateDonationSessionValidation(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, &fakeGateway{}, nil)
	r.POST("/v1/donations/create-session", CreateDonationSession)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"below minimum", donationBody(499, "one_time")},
		{"above maximum", donationBody(1000001, "one_time")},
		{"unknown frequency", donationBody(2500, "weekly")},
		{"missing donor email", map[string]interface{}{
			"amount": 2500, "frequency": "one_time",
			"donation_type": "general", "donor_name": "Dana",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postDonation(r, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	for _, frequency := range []string{"one_time", "monthly", "quarterly", "annual"} {
		t.Run("accepts "+frequency, func(t *testing.T) {
			gateway := &fakeGateway{session: payments.Session{ID: "cs_x", URL: "https://x"}}
			r := newTestRouter(db, gateway, nil)
			r.POST("/v1/donations/create-session", CreateDonationSession)
			w := postDonation(r, donationBody(500, frequency))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}
