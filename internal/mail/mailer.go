// Package mail sends transactional storefront email. Delivery failures are
// for the caller to log; placing an order never depends on email going out.
package mail

import (
	"context"
	"fmt"

	"savra-store/internal/domain"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends order lifecycle notifications
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, to string, order *domain.Order) error
}

// SendGridMailer implements Mailer over the SendGrid API
type SendGridMailer struct {
	apiKey   string
	from     string
	fromName string
}

// NewSendGridMailer creates a SendGrid-backed mailer
func NewSendGridMailer(apiKey, from, fromName string) *SendGridMailer {
	return &SendGridMailer{apiKey: apiKey, from: from, fromName: fromName}
}

// SendOrderConfirmation emails the customer an order summary
func (m *SendGridMailer) SendOrderConfirmation(ctx context.Context, to string, order *domain.Order) error {
	if m.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if to == "" {
		return fmt.Errorf("recipient address is empty")
	}

	subject := fmt.Sprintf("Order %s confirmed", shortID(order))
	body := orderSummary(order)

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail(m.fromName, m.from),
		subject,
		sgmail.NewEmail("", to),
		body,
		fmt.Sprintf("<pre>%s</pre>", body),
	)

	client := sendgrid.NewSendClient(m.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}

	return nil
}

func shortID(order *domain.Order) string {
	id := order.ID.String()
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func orderSummary(order *domain.Order) string {
	body := "Thank you for your order!\n\n"
	for _, item := range order.Items {
		line := fmt.Sprintf("%s x%d", item.Name, item.Quantity)
		if item.Size != "" {
			line += fmt.Sprintf(" (size %s)", item.Size)
		}
		body += fmt.Sprintf("%s: %d\n", line, item.Subtotal())
	}
	body += fmt.Sprintf("\nSubtotal: %d\n", order.Subtotal)
	if order.Discount > 0 {
		body += fmt.Sprintf("Discount (%s): -%d\n", order.PromoCode, order.Discount)
	}
	body += fmt.Sprintf("Delivery: %d\nTotal: %d\n", order.Delivery, order.Total)
	body += "\nOur manager will contact you shortly to confirm the details."
	return body
}

// NopMailer discards every message; used when no SendGrid key is configured
type NopMailer struct{}

// SendOrderConfirmation does nothing
func (NopMailer) SendOrderConfirmation(context.Context, string, *domain.Order) error {
	return nil
}
