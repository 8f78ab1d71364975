package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const (
	TemplateOrderConfirmation = "order_confirmation"
	TemplateInvoice           = "invoice"
)

// OrderLine is one rendered item row.
type OrderLine struct {
	Name      string
	Variant   string
	Quantity  int
	UnitPrice string
	LineTotal string
}

// OrderEmail carries the values the order emails render.
type OrderEmail struct {
	To            string
	CustomerName  string
	OrderNumber   string
	PlacedAt      string
	Currency      string
	PaymentMethod string
	Lines         []OrderLine
	Subtotal      string
	Discount      string
	Shipping      string
	Tax           string
	Total         string
	ShippingTo    []string
	TrackURL      string
	SupportEmail  string
}

var (
	confirmationTmpl = template.Must(template.New(TemplateOrderConfirmation).Parse(`<!doctype html>
<html><body style="font-family:Arial,sans-serif;color:#222">
<h2>Thank you for your order{{if .CustomerName}}, {{.CustomerName}}{{end}}!</h2>
<p>Your order <strong>{{.OrderNumber}}</strong> was placed on {{.PlacedAt}}.</p>
<table cellpadding="6" style="border-collapse:collapse;width:100%">
<tr><th align="left">Item</th><th align="right">Qty</th><th align="right">Price</th><th align="right">Total</th></tr>
{{range .Lines}}<tr><td>{{.Name}}{{if .Variant}} ({{.Variant}}){{end}}</td><td align="right">{{.Quantity}}</td><td align="right">{{.UnitPrice}}</td><td align="right">{{.LineTotal}}</td></tr>
{{end}}</table>
<p>Subtotal: {{.Currency}} {{.Subtotal}}<br>Shipping: {{.Currency}} {{.Shipping}}<br><strong>Total: {{.Currency}} {{.Total}}</strong></p>
<p>Payment method: {{.PaymentMethod}}</p>
<p>Shipping to:<br>{{range .ShippingTo}}{{.}}<br>{{end}}</p>
{{if .TrackURL}}<p><a href="{{.TrackURL}}">Track your order</a></p>{{end}}
{{if .SupportEmail}}<p>Questions? Contact {{.SupportEmail}}.</p>{{end}}
</body></html>`))

	invoiceTmpl = template.Must(template.New(TemplateInvoice).Parse(`<!doctype html>
<html><body style="font-family:Arial,sans-serif;color:#222">
<h2>Invoice INV-{{.OrderNumber}}</h2>
<p>Order {{.OrderNumber}} &middot; {{.PlacedAt}}</p>
<p>Bill to:<br>{{range .ShippingTo}}{{.}}<br>{{end}}</p>
<table cellpadding="6" style="border-collapse:collapse;width:100%">
<tr><th align="left">Description</th><th align="right">Qty</th><th align="right">Unit</th><th align="right">Amount</th></tr>
{{range .Lines}}<tr><td>{{.Name}}{{if .Variant}} ({{.Variant}}){{end}}</td><td align="right">{{.Quantity}}</td><td align="right">{{.UnitPrice}}</td><td align="right">{{.LineTotal}}</td></tr>
{{end}}</table>
<p>Subtotal: {{.Subtotal}}<br>Discount: {{.Discount}}<br>Shipping: {{.Shipping}}<br>Tax: {{.Tax}}<br><strong>Amount due ({{.Currency}}): {{.Total}}</strong></p>
<p>Payment method: {{.PaymentMethod}}</p>
</body></html>`))
)

// OrderConfirmation renders the customer confirmation email.
func OrderConfirmation(data OrderEmail) (Message, error) {
	return render(confirmationTmpl, data, fmt.Sprintf("Order Confirmation - %s", data.OrderNumber))
}

// Invoice renders the invoice email.
func Invoice(data OrderEmail) (Message, error) {
	return render(invoiceTmpl, data, fmt.Sprintf("Invoice - INV-%s", data.OrderNumber))
}

func render(tmpl *template.Template, data OrderEmail, subject string) (Message, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return Message{
		Template: tmpl.Name(),
		To:       data.To,
		ToName:   data.CustomerName,
		Subject:  subject,
		HTML:     buf.String(),
		Text:     plainText(data, subject),
	}, nil
}

func plainText(data OrderEmail, subject string) string {
	var b strings.Builder
	b.WriteString(subject + "\n\n")
	for _, line := range data.Lines {
		fmt.Fprintf(&b, "%d x %s  %s\n", line.Quantity, line.Name, line.LineTotal)
	}
	fmt.Fprintf(&b, "\nTotal: %s %s\n", data.Currency, data.Total)
	return b.String()
}
