// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"
	"os"

	"github.com/resendlabs/resend-go"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/email/templates"
	"github.com/syab726/project2-face-sub001/pkg/config"
)

// CompensationNotice is everything needed to notify a user that a paid
// service failed and compensation is on the way.
type CompensationNotice struct {
	ToEmail     string
	ToName      string
	ServiceName string
	OrderID     string
	ErrorID     string
	Amount      int // KRW, 0 when no refund is owed
}

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendCompensationNotice(notice CompensationNotice) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: config.CompensationEmailFrom,
		fromName:  config.CompensationEmailFromName,
	}, nil
}

// SendCompensationNotice composes and sends a compensation notice email.
func (c *ResendClient) SendCompensationNotice(notice CompensationNotice) error {
	if notice.ToEmail == "" {
		return fmt.Errorf("compensation notice requires a recipient email")
	}

	subject := "About your recent FaceWisdom order"
	if notice.Amount > 0 {
		subject = "Your FaceWisdom refund is on its way"
	}

	content := templates.GetCompensationEmailContent(templates.CompensationEmailProps{
		Name:        notice.ToName,
		ServiceName: notice.ServiceName,
		OrderID:     notice.OrderID,
		ErrorID:     notice.ErrorID,
		AmountWon:   templates.FormatAmountWon(notice.Amount),
		HasRefund:   notice.Amount > 0,
	})

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Content: content,
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{notice.ToEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	if _, err := c.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send compensation notice via Resend: %w", err)
	}

	return nil
}
