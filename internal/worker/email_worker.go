package worker

// email_worker.go
// Sends the order confirmation mail, with a PDF receipt attached, through the
// SMTP circuit breaker.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/infra"

	"github.com/rs/zerolog/log"
)

// OrderConfirmationPayload is the job payload enqueued after an order commits.
type OrderConfirmationPayload struct {
	ToEmail string        `json:"to_email"`
	Receipt infra.Receipt `json:"receipt"`
}

// MailSender is satisfied by *infra.Mailer.
type MailSender interface {
	Send(to, subject, body string, attachments ...infra.Attachment) error
}

// EmailWorker handles JobOrderConfirmation.
type EmailWorker struct {
	mailer  MailSender
	breaker *infra.CircuitBreaker
}

// NewEmailWorker creates an EmailWorker. breaker may be nil.
func NewEmailWorker(mailer MailSender, breaker *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, breaker: breaker}
}

// Process renders the receipt and sends it. Malformed payloads are dropped
// without error since retrying cannot fix them.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload OrderConfirmationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if payload.ToEmail == "" {
		log.Warn().Uint("order_id", payload.Receipt.OrderID).Msg("email_worker: empty to_email, skipping")
		return nil
	}

	var pdf bytes.Buffer
	if err := infra.RenderOrderReceipt(&pdf, payload.Receipt); err != nil {
		return fmt.Errorf("email_worker: render receipt: %w", err)
	}

	r := payload.Receipt
	subject := fmt.Sprintf("Your order #%d", r.OrderID)
	attachment := infra.Attachment{
		Name:        fmt.Sprintf("order_%d.pdf", r.OrderID),
		ContentType: "application/pdf",
		Data:        pdf.Bytes(),
	}
	send := func() error {
		return w.mailer.Send(payload.ToEmail, subject, confirmationBody(r), attachment)
	}

	var err error
	if w.breaker != nil {
		err = w.breaker.Execute(send)
	} else {
		err = send()
	}
	if err != nil {
		if errors.Is(err, infra.ErrCircuitOpen) {
			log.Warn().Uint("order_id", r.OrderID).Msg("email_worker: smtp circuit open")
		}
		return err
	}

	log.Info().Str("to", payload.ToEmail).Uint("order_id", r.OrderID).Msg("email_worker: confirmation sent")
	return nil
}

func confirmationBody(r infra.Receipt) string {
	var b strings.Builder
	name := r.CustomerName
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\nThanks for your order #%d.\n\n", name, r.OrderID)
	for _, l := range r.Lines {
		fmt.Fprintf(&b, "  %d x %s @ $%s\n", l.Quantity, l.Name, l.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: $%s\n\nYour receipt is attached.\n", r.Total.StringFixed(2))
	return b.String()
}
