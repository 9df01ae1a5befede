package mailer

import (
	"fmt"
	"strings"

	"github.com/oakcrestpto/ptoportal/internal/models"
)

func formatAmount(minor int64, currency string) string {
	return fmt.Sprintf("$%.2f %s", float64(minor)/100, strings.ToUpper(currency))
}

// DonationReceipt builds the thank-you email for a settled donation.
func DonationReceipt(donation models.Donation) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>Thank you for your donation!</h1>")
	fmt.Fprintf(&b, "<p>Dear %s,</p>", donation.DonorName)
	fmt.Fprintf(&b, "<p>We received your %s donation of %s.</p>",
		donation.DonationType, formatAmount(donation.Amount, donation.Currency))
	if donation.IsRecurring {
		fmt.Fprintf(&b, "<p>This is a recurring gift. You can cancel any time by contacting us.</p>")
	}
	if donation.StudentName != "" {
		fmt.Fprintf(&b, "<p>In honor of: %s</p>", donation.StudentName)
	}
	fmt.Fprintf(&b, "<p>Your support makes our programs possible.</p>")

	return Message{
		To:      donation.DonorEmail,
		Subject: "Your donation receipt",
		HTML:    b.String(),
	}
}

// TicketReceipt builds the confirmation email with the admission codes.
func TicketReceipt(ticket models.EventTicket, eventTitle string, codes []string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>Your tickets for %s</h1>", eventTitle)
	fmt.Fprintf(&b, "<p>Dear %s,</p>", ticket.BuyerName)
	fmt.Fprintf(&b, "<p>Your payment of %s for %d ticket(s) is confirmed.</p>",
		formatAmount(ticket.TotalPrice, "usd"), ticket.Quantity)
	b.WriteString("<p>Present these codes at the door:</p><ul>")
	for _, code := range codes {
		fmt.Fprintf(&b, "<li><strong>%s</strong></li>", code)
	}
	b.WriteString("</ul>")

	return Message{
		To:      ticket.BuyerEmail,
		Subject: fmt.Sprintf("Tickets for %s", eventTitle),
		HTML:    b.String(),
	}
}
