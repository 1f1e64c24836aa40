package notification

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"emergencyreport/internal/domain/entity"
	"emergencyreport/internal/domain/service"
	"emergencyreport/pkg/logger"
)

// MailClient is the part of the SendGrid client the notifier uses.
type MailClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridNotifier struct {
	client        MailClient
	fromEmail     string
	fromName      string
	ministryEmail string
}

var _ service.Notifier = (*SendGridNotifier)(nil)

func NewSendGridNotifier(apiKey, fromEmail, fromName, ministryEmail string) *SendGridNotifier {
	return NewSendGridNotifierWithClient(sendgrid.NewSendClient(apiKey), fromEmail, fromName, ministryEmail)
}

func NewSendGridNotifierWithClient(client MailClient, fromEmail, fromName, ministryEmail string) *SendGridNotifier {
	return &SendGridNotifier{
		client:        client,
		fromEmail:     fromEmail,
		fromName:      fromName,
		ministryEmail: ministryEmail,
	}
}

func (n *SendGridNotifier) NotifyReporter(ctx context.Context, report *entity.Report) error {
	return n.send(ctx, ReporterConfirmation(report), nil)
}

func (n *SendGridNotifier) NotifyMinistry(ctx context.Context, report *entity.Report, image *service.AttachedImage) error {
	if n.ministryEmail == "" {
		return fmt.Errorf("ministry email is not configured")
	}
	return n.send(ctx, MinistryAlert(n.ministryEmail, report), image)
}

func (n *SendGridNotifier) send(ctx context.Context, msg Message, image *service.AttachedImage) error {
	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(n.fromName, n.fromEmail))
	message.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(msg.To, msg.To))
	message.AddPersonalizations(p)

	message.AddContent(mail.NewContent("text/plain", msg.Text))
	message.AddContent(mail.NewContent("text/html", msg.HTML))

	if image != nil && len(image.Data) > 0 {
		attachment := mail.NewAttachment()
		attachment.SetContent(base64.StdEncoding.EncodeToString(image.Data))
		attachment.SetType(image.ContentType)
		attachment.SetFilename(image.Filename)
		attachment.SetDisposition("attachment")
		message.AddAttachment(attachment)
	}

	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected message to %s: status %d: %s", msg.To, resp.StatusCode, resp.Body)
	}

	logger.Debug("Email sent to %s, status %d", msg.To, resp.StatusCode)
	return nil
}
