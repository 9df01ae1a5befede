package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/oakcrestpto/ptoportal/internal/helpers"
	"github.com/oakcrestpto/ptoportal/internal/models"
)

func signTicketCode(code string) string {
	secretKey := os.Getenv("JWT_SECRET")
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(code))
	return hex.EncodeToString(h.Sum(nil))
}

func ticketQRData(code string) string {
	return fmt.Sprintf("code:%s;signature:%s", code, signTicketCode(code))
}

func parseTicketQRData(qrData string) (code string, signature string, err error) {
	parts := strings.Split(qrData, ";")
	if len(parts) != 2 || !strings.HasPrefix(parts[0], "code:") || !strings.HasPrefix(parts[1], "signature:") {
		return "", "", fmt.Errorf("invalid QR data format")
	}
	return strings.TrimPrefix(parts[0], "code:"), strings.TrimPrefix(parts[1], "signature:"), nil
}

// LookupTicket lets a buyer check a code's status without signing in.
func LookupTicket(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var code models.TicketCode
	if err := gormDB.Where("code = ?", c.Param("code")).First(&code).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	var ticket models.EventTicket
	if err := gormDB.Preload("Event").Where("id = ?", code.EventTicketID).First(&ticket).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket purchase.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":        code.Code,
		"is_used":     code.IsUsed,
		"status":      ticket.Status,
		"buyer_name":  ticket.BuyerName,
		"event_title": ticket.Event.Title,
		"start_time":  ticket.Event.StartTime,
	})
}

// TicketQR renders the signed admission QR for a paid ticket code.
func TicketQR(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var code models.TicketCode
	if err := gormDB.Where("code = ?", c.Param("code")).First(&code).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	var ticket models.EventTicket
	if err := gormDB.Where("id = ?", code.EventTicketID).First(&ticket).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket purchase.")
		return
	}

	if ticket.Status != models.TicketPaid {
		helpers.RespondWithError(c, http.StatusForbidden, "Ticket is not paid.")
		return
	}

	qrImage, err := qrcode.Encode(ticketQRData(code.Code), qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}

// ValidateTicket checks a scanned QR at the door and marks the code used.
// Only admins validate; a code admits once.
func ValidateTicket(c *gin.Context) {
	var validationRequest struct {
		QRData string `json:"qr_data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&validationRequest); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	codeValue, signature, err := parseTicketQRData(validationRequest.QRData)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid QR code format.")
		return
	}

	expected := signTicketCode(codeValue)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		helpers.RespondWithError(c, http.StatusForbidden, "Invalid QR code signature.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var code models.TicketCode
	if err := gormDB.Where("code = ?", codeValue).First(&code).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	var ticket models.EventTicket
	if err := gormDB.Preload("Event").Where("id = ?", code.EventTicketID).First(&ticket).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket purchase.")
		return
	}

	if ticket.Status != models.TicketPaid {
		helpers.RespondWithError(c, http.StatusForbidden, "Ticket is not paid.")
		return
	}

	if code.IsUsed {
		helpers.RespondWithError(c, http.StatusForbidden, "Ticket already used.")
		return
	}

	now := time.Now()
	if err := gormDB.Model(&code).Updates(map[string]interface{}{
		"is_used": true,
		"used_at": &now,
	}).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to validate ticket.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ticket validated successfully.",
		"ticket": gin.H{
			"code":        code.Code,
			"event_title": ticket.Event.Title,
			"buyer_name":  ticket.BuyerName,
		},
	})
}
