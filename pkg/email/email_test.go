package email

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrderEmail() OrderCreatedEmail {
	return OrderCreatedEmail{
		To:           "buyer@example.com",
		TenantName:   "Acme <Kenya>",
		OrderNumber:  "SO-1001",
		CustomerName: "Jane Buyer",
		Status:       "pending",
		Currency:     "KES",
		Subtotal:     "224.00",
		Tax:          "24.00",
		Shipping:     "10.00",
		Withholding:  "0.00",
		Total:        "234.00",
		CreatedAt:    time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Lines: []OrderEmailLine{
			{Name: "Widget", Quantity: "2.000", UnitPrice: "112.00", LineTotal: "224.00"},
		},
	}
}

func TestRenderOrderCreatedEmail(t *testing.T) {
	body, err := RenderOrderCreatedEmail(sampleOrderEmail())
	require.NoError(t, err)

	assert.Contains(t, body, "Order SO-1001")
	assert.Contains(t, body, "Widget")
	assert.Contains(t, body, "KES 234.00")
	assert.Contains(t, body, "2026-03-01 09:30")
	assert.Contains(t, body, "Acme &lt;Kenya&gt;")
	assert.NotContains(t, body, "Withholding tax")
}

func TestRenderOrderCreatedEmail_ShowsWithholding(t *testing.T) {
	msg := sampleOrderEmail()
	msg.Withholding = "10.00"
	msg.Total = "224.00"

	body, err := RenderOrderCreatedEmail(msg)
	require.NoError(t, err)
	assert.Contains(t, body, "Withholding tax")
	assert.Contains(t, body, "- KES 10.00")
}

func TestBuildHTMLEmail(t *testing.T) {
	svc := NewEmailService(EmailConfig{FromName: "BizOps", FromEmail: "orders@example.com"})

	msg := string(svc.buildHTMLEmail("buyer@example.com", "Order SO-1001 received", "<p>hi</p>"))

	assert.True(t, strings.HasPrefix(msg, "From: BizOps <orders@example.com>\r\n"))
	assert.Contains(t, msg, "To: buyer@example.com\r\n")
	assert.Contains(t, msg, "Subject: Order SO-1001 received\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>hi</p>"))
}

func TestConfigured(t *testing.T) {
	assert.False(t, NewEmailService(EmailConfig{}).Configured())
	assert.True(t, NewEmailService(EmailConfig{SMTPHost: "smtp.example.com"}).Configured())
}
