package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config}
}

// Configured reports whether an SMTP host is set
func (s *EmailService) Configured() bool {
	return strings.TrimSpace(s.config.SMTPHost) != ""
}

// OrderCreatedEmail is the content of an order confirmation message
type OrderCreatedEmail struct {
	To           string
	TenantName   string
	OrderNumber  string
	CustomerName string
	Status       string
	Currency     string
	Subtotal     string
	Tax          string
	Shipping     string
	Withholding  string
	Total        string
	CreatedAt    time.Time
	Lines        []OrderEmailLine
}

// OrderEmailLine is one row of the order table in the email
type OrderEmailLine struct {
	Name      string
	Quantity  string
	UnitPrice string
	LineTotal string
}

// SendOrderCreatedEmail sends the order confirmation to msg.To
func (s *EmailService) SendOrderCreatedEmail(ctx context.Context, msg OrderCreatedEmail) error {
	htmlContent, err := RenderOrderCreatedEmail(msg)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Order %s received - %s", msg.OrderNumber, msg.TenantName)
	message := s.buildHTMLEmail(msg.To, subject, htmlContent)

	return s.sendEmail(ctx, msg.To, message)
}

// sendEmail delivers one message over SMTP. The connection honours the
// context deadline.
func (s *EmailService) sendEmail(ctx context.Context, to string, message []byte) error {
	addr := net.JoinHostPort(s.config.SMTPHost, fmt.Sprint(s.config.SMTPPort))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start smtp session: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.config.SMTPHost}); err != nil {
			return fmt.Errorf("failed to start tls: %w", err)
		}
	}
	if s.config.SMTPUsername != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}
		}
	}

	if err := client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if _, err := w.Write(message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return client.Quit()
}

// buildHTMLEmail builds an HTML email message
func (s *EmailService) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		to,
		subject,
	)

	return []byte(headers + htmlBody)
}

var orderCreatedTmpl = template.Must(template.New("order_created").Parse(orderCreatedTemplate))

// RenderOrderCreatedEmail renders the order confirmation body
func RenderOrderCreatedEmail(msg OrderCreatedEmail) (string, error) {
	var buf bytes.Buffer
	if err := orderCreatedTmpl.Execute(&buf, msg); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// orderCreatedTemplate is the HTML template for order confirmation emails
const orderCreatedTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Order {{.OrderNumber}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="width: 100%; border-collapse: collapse;">
        <tr>
            <td style="padding: 40px 0;">
                <table role="presentation" style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 12px; overflow: hidden;">
                    <!-- Header -->
                    <tr>
                        <td style="background-color: #1a1a2e; padding: 30px; text-align: center;">
                            <h1 style="color: #ffffff; margin: 0; font-size: 24px; font-weight: 600;">{{.TenantName}}</h1>
                        </td>
                    </tr>

                    <!-- Content -->
                    <tr>
                        <td style="padding: 30px;">
                            <h2 style="color: #1a1a2e; margin: 0 0 16px 0; font-size: 20px;">Order {{.OrderNumber}}</h2>
                            <p style="color: #4a5568; font-size: 15px; margin: 0 0 8px 0;">Customer: <strong>{{.CustomerName}}</strong></p>
                            <p style="color: #4a5568; font-size: 15px; margin: 0 0 24px 0;">Status: {{.Status}} &middot; {{.CreatedAt.Format "2006-01-02 15:04"}}</p>

                            <table role="presentation" style="width: 100%; border-collapse: collapse; font-size: 14px;">
                                <tr style="border-bottom: 1px solid #e2e8f0; text-align: left;">
                                    <th style="padding: 8px 0;">Item</th>
                                    <th style="padding: 8px 0; text-align: right;">Qty</th>
                                    <th style="padding: 8px 0; text-align: right;">Price</th>
                                    <th style="padding: 8px 0; text-align: right;">Total</th>
                                </tr>
                                {{range .Lines}}
                                <tr style="border-bottom: 1px solid #f1f5f9;">
                                    <td style="padding: 8px 0;">{{.Name}}</td>
                                    <td style="padding: 8px 0; text-align: right;">{{.Quantity}}</td>
                                    <td style="padding: 8px 0; text-align: right;">{{.UnitPrice}}</td>
                                    <td style="padding: 8px 0; text-align: right;">{{.LineTotal}}</td>
                                </tr>
                                {{end}}
                            </table>

                            <table role="presentation" style="width: 100%; margin-top: 20px; font-size: 14px;">
                                <tr><td>Subtotal (incl. VAT)</td><td style="text-align: right;">{{.Currency}} {{.Subtotal}}</td></tr>
                                <tr><td>VAT</td><td style="text-align: right;">{{.Currency}} {{.Tax}}</td></tr>
                                <tr><td>Shipping</td><td style="text-align: right;">{{.Currency}} {{.Shipping}}</td></tr>
                                {{if ne .Withholding "0.00"}}<tr><td>Withholding tax</td><td style="text-align: right;">- {{.Currency}} {{.Withholding}}</td></tr>{{end}}
                                <tr><td><strong>Total</strong></td><td style="text-align: right;"><strong>{{.Currency}} {{.Total}}</strong></td></tr>
                            </table>
                        </td>
                    </tr>

                    <!-- Footer -->
                    <tr>
                        <td style="background-color: #f8fafc; padding: 20px; text-align: center; border-top: 1px solid #e2e8f0;">
                            <p style="color: #a0aec0; font-size: 12px; margin: 0;">This email was sent by {{.TenantName}}</p>
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>
`
