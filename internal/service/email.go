package service

import (
	"context"
	"fmt"

	"car-rental-adjustments/internal/domain"
	"car-rental-adjustments/internal/events"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridEmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &sendGridEmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) Send(ctx context.Context, toEmail, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

// emailEventNotifier turns lifecycle events into customer-facing mail. It is
// one sink on the outbound event fan-out, so a mail failure is reported back
// to the publisher and logged there, never to the caller of the operation.
type emailEventNotifier struct {
	email EmailService
}

func NewEmailEventNotifier(email EmailService) events.Publisher {
	return &emailEventNotifier{email: email}
}

func (n *emailEventNotifier) Publish(ctx context.Context, event domain.Event) error {
	if event.CustomerEmail == "" {
		return nil
	}
	subject, body := n.compose(event)
	if subject == "" {
		return nil
	}
	return n.email.Send(ctx, event.CustomerEmail, event.CustomerName, subject, body, "")
}

func (n *emailEventNotifier) compose(event domain.Event) (string, string) {
	amount := fmt.Sprintf("%.2f %s", float64(event.AmountCents)/100, event.Currency)
	switch event.Type {
	case domain.EventDamageAssessed:
		return "Damage assessment completed",
			fmt.Sprintf("Hello %s,\n\nThe damage reported on your rental #%d has been assessed. Your liability was determined to be %d cents.\n\nCar Rental Team",
				event.CustomerName, event.RentalID, event.AmountCents)
	case domain.EventDamageCharged:
		return "Damage charge processed",
			fmt.Sprintf("Hello %s,\n\nA damage charge of %s was processed for your rental #%d.\n\nCar Rental Team",
				event.CustomerName, amount, event.RentalID)
	case domain.EventDamageDisputed:
		return "Damage dispute received",
			fmt.Sprintf("Hello %s,\n\nWe received your dispute for the damage charge on rental #%d. Our team will review it shortly.\n\nCar Rental Team",
				event.CustomerName, event.RentalID)
	case domain.EventDamageResolved:
		if event.AmountCents > 0 {
			return "Damage dispute resolved",
				fmt.Sprintf("Hello %s,\n\nYour dispute on rental #%d has been resolved. A refund of %s has been initiated.\n\nCar Rental Team",
					event.CustomerName, event.RentalID, amount)
		}
		return "Damage dispute resolved",
			fmt.Sprintf("Hello %s,\n\nYour dispute on rental #%d has been resolved. The original charge stands.\n\nCar Rental Team",
				event.CustomerName, event.RentalID)
	case domain.EventPenaltyWaived:
		return "Late-return penalty adjusted",
			fmt.Sprintf("Hello %s,\n\nA penalty of %s on your rental #%d has been waived.\n\nCar Rental Team",
				event.CustomerName, amount, event.RentalID)
	default:
		return "", ""
	}
}
