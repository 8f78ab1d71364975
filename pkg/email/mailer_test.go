package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSendClient struct {
	status int
	err    error
	sent   []*mail.SGMailV3
}

func (s *stubSendClient) SendWithContext(ctx context.Context, m *mail.SGMailV3) (*rest.Response, error) {
	s.sent = append(s.sent, m)
	if s.err != nil {
		return nil, s.err
	}
	return &rest.Response{StatusCode: s.status, Body: "bad request"}, nil
}

func sampleOrderEmail() OrderEmail {
	return OrderEmail{
		To:            "buyer@example.com",
		CustomerName:  "Rahim <b>",
		OrderNumber:   "ORD-20260314-000042",
		PlacedAt:      "14 Mar 2026",
		Currency:      "BDT",
		PaymentMethod: "cod",
		Lines:         []OrderLine{{Name: "Tea", Quantity: 2, UnitPrice: "150.00", LineTotal: "300.00"}},
		Subtotal:      "300.00",
		Discount:      "0.00",
		Shipping:      "0.00",
		Tax:           "0.00",
		Total:         "300.00",
		ShippingTo:    []string{"Rahim", "House 1", "Dhaka", "Bangladesh"},
	}
}

func TestNewWithoutAPIKeyIsNoop(t *testing.T) {
	mailer := New(config.SendgridConfig{}, nil, nil)
	err := mailer.Send(context.Background(), Message{To: "a@b.c", Subject: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendgridMailerSend(t *testing.T) {
	client := &stubSendClient{status: 202}
	mailer := &sendgridMailer{client: client, from: mail.NewEmail("Shop", "orders@shop.test")}

	msg, err := OrderConfirmation(sampleOrderEmail())
	require.NoError(t, err)
	require.NoError(t, mailer.Send(context.Background(), msg))
	require.Len(t, client.sent, 1)
	assert.Equal(t, "Order Confirmation - ORD-20260314-000042", client.sent[0].Subject)
}

func TestSendgridMailerReportsFailures(t *testing.T) {
	mailer := &sendgridMailer{client: &stubSendClient{status: 400}, from: mail.NewEmail("Shop", "orders@shop.test")}
	err := mailer.Send(context.Background(), Message{Template: TemplateInvoice, To: "a@b.c", Subject: "Invoice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")

	mailer.client = &stubSendClient{err: errors.New("dial tcp: timeout")}
	assert.Error(t, mailer.Send(context.Background(), Message{To: "a@b.c", Subject: "Invoice"}))

	assert.Error(t, mailer.Send(context.Background(), Message{Subject: "no recipient"}))
}

func TestTemplatesRender(t *testing.T) {
	confirmation, err := OrderConfirmation(sampleOrderEmail())
	require.NoError(t, err)
	assert.Equal(t, TemplateOrderConfirmation, confirmation.Template)
	assert.Contains(t, confirmation.HTML, "ORD-20260314-000042")
	assert.Contains(t, confirmation.HTML, "Rahim &lt;b&gt;")
	assert.True(t, strings.Contains(confirmation.Text, "2 x Tea"))

	invoice, err := Invoice(sampleOrderEmail())
	require.NoError(t, err)
	assert.Equal(t, "Invoice - INV-ORD-20260314-000042", invoice.Subject)
	assert.Contains(t, invoice.HTML, "Amount due (BDT): 300.00")
}
