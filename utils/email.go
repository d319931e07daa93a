// utils/email.go
package utils

import (
	"fmt"
	"go-storefront/models"
	"os"

	"github.com/keighl/postmark"
)

// EmailService handles sending emails using Postmark
type EmailService struct {
	client *postmark.Client
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService() *EmailService {
	apiToken := os.Getenv("POSTMARK_API_TOKEN")
	if apiToken == "" {
		panic("POSTMARK_API_TOKEN is not set in environment variables")
	}
	client := postmark.NewClient(apiToken, "")
	return &EmailService{
		client: client,
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     os.Getenv("EMAIL_SENDER"),
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendVerificationEmail sends an email verification link to the user
func (es *EmailService) SendVerificationEmail(toEmail, token string) error {
	subject := "Verify Your Email"
	verificationLink := fmt.Sprintf("http://localhost:%s/verify-email?token=%s", os.Getenv("PORT"), token)
	htmlContent := fmt.Sprintf(
		"<strong>Please verify your email by clicking on the following link:</strong> <a href=\"%s\">Verify Email</a>",
		verificationLink,
	)

	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendOrderConfirmationEmail sends an order confirmation after the payment
// is reconciled as successful.
func (es *EmailService) SendOrderConfirmationEmail(order models.Order) error {
	subject := "Order Confirmation"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order <strong>%s</strong> has been confirmed.<br><br>Subtotal: %.2f<br>Discount: %.2f<br>Shipping: %.2f<br>Total: <strong>%.2f</strong><br>Payment Method: <strong>%s</strong><br><br>Thank you for shopping with us!",
		order.Customer.Name,
		order.OrderNumber,
		order.Subtotal,
		order.CouponDiscount,
		order.ShippingCost,
		order.Total,
		order.PaymentMethod,
	)

	return es.SendEmail(order.Customer.Email, subject, htmlContent)
}

// SendPaymentFailedEmail tells the customer a payment attempt did not go
// through. The order number is included so support can trace the attempt; if
// funds were deducted they are reversed by the gateway within its
// reconciliation window.
func (es *EmailService) SendPaymentFailedEmail(order models.Order) error {
	subject := "Payment Failed"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>We could not complete the payment of <strong>%.2f</strong> for order <strong>%s</strong> (method: %s).<br><br>Your cart has been kept as it was, so you can retry the payment at any time. If money was deducted from your account, it will be refunded automatically within 5-7 business days.<br><br>Please quote order %s when contacting support.",
		order.Customer.Name,
		order.Total,
		order.OrderNumber,
		order.PaymentMethod,
		order.OrderNumber,
	)

	return es.SendEmail(order.Customer.Email, subject, htmlContent)
}
