package orderControllers

import (
	"fmt"
	"log"
	"os"

	"github.com/keighl/postmark"

	"github.com/snackbasket/storefront-api/models"
)

// sendOrderConfirmation emails the shopper after an order is placed. Failures
// are logged, never surfaced to the caller.
func sendOrderConfirmation(order models.Order) {
	apiToken := os.Getenv("POSTMARK_API_TOKEN")
	if apiToken == "" || order.Email == "" {
		return
	}

	client := postmark.NewClient(apiToken, "")

	htmlBody := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your order! Your order (Ref: %s) has been placed successfully.<br><br>Total Amount: <strong>₹%.2f</strong><br>Payment Method: <strong>%s</strong><br><br>Thank you for shopping with us!",
		order.CustomerName,
		order.Ref,
		order.TotalAmount,
		order.PaymentMethod,
	)

	_, err := client.SendEmail(postmark.Email{
		From:     os.Getenv("EMAIL_SENDER"),
		To:       order.Email,
		Subject:  "Order Confirmation",
		HtmlBody: htmlBody,
		TextBody: fmt.Sprintf("Thank you for your order %s. Total: %.2f", order.Ref, order.TotalAmount),
	})
	if err != nil {
		log.Printf("❌ Failed to send order confirmation for %s: %v", order.Ref, err)
	}
}
