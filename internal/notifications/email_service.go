package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"
	"time"

	"tickethub/internal/orders"
	"tickethub/internal/shared/config"
	"tickethub/pkg/logger"
)

// EmailSender delivers one order confirmation to the buyer.
type EmailSender interface {
	SendOrderConfirmation(ctx context.Context, confirmation orders.OrderConfirmation) error
}

const confirmationTemplate = `
{{define "html"}}
<h2>Your tickets are confirmed!</h2>
<p>Hi {{.CustomerName}},</p>
<p>Your order <strong>{{.OrderRef}}</strong> is confirmed.</p>
<p>{{.TicketCount}} ticket(s), total {{.TotalAmount}} {{.Currency}}.</p>
<p>Your tickets are available in your account. See you there!</p>
{{end}}
{{define "text"}}
Hi {{.CustomerName}},

Your order {{.OrderRef}} is confirmed.
{{.TicketCount}} ticket(s), total {{.TotalAmount}} {{.Currency}}.

Your tickets are available in your account. See you there!
{{end}}`

type smtpSender struct {
	cfg      config.EmailConfig
	fromName string
	template *template.Template
}

// NewSMTPSender builds the production email sender. It returns an error
// instead of a sender when SMTP is not configured so callers can fall
// back to NewLogSender.
func NewSMTPSender(cfg config.EmailConfig) (EmailSender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP host is not configured")
	}
	if cfg.SMTPUsername == "" || cfg.SMTPPassword == "" {
		return nil, fmt.Errorf("SMTP credentials are not configured")
	}

	tmpl, err := template.New("order_confirmation").Parse(confirmationTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse confirmation template: %w", err)
	}

	return &smtpSender{cfg: cfg, fromName: "TicketHub", template: tmpl}, nil
}

func (s *smtpSender) SendOrderConfirmation(ctx context.Context, confirmation orders.OrderConfirmation) error {
	subject := fmt.Sprintf("Order %s confirmed", confirmation.OrderRef)

	var htmlBuf, textBuf bytes.Buffer
	if err := s.template.ExecuteTemplate(&htmlBuf, "html", confirmation); err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}
	if err := s.template.ExecuteTemplate(&textBuf, "text", confirmation); err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}

	message := s.buildMessage(confirmation.CustomerEmail, subject, htmlBuf.String(), textBuf.String())
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{confirmation.CustomerEmail}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.GetDefault().Info("confirmation email sent",
		"order_ref", confirmation.OrderRef,
		"recipient", confirmation.CustomerEmail,
	)
	return nil
}

func (s *smtpSender) buildMessage(to, subject, htmlBody, textBody string) []byte {
	boundary := "boundary_" + strconv.FormatInt(time.Now().UnixNano(), 10)

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.fromName, s.cfg.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(textBody + "\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(htmlBody + "\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes()
}

// logSender is the development sender used when SMTP is not configured.
type logSender struct{}

func NewLogSender() EmailSender {
	return logSender{}
}

func (logSender) SendOrderConfirmation(_ context.Context, confirmation orders.OrderConfirmation) error {
	logger.GetDefault().Info("confirmation email (log only)",
		"order_ref", confirmation.OrderRef,
		"recipient", confirmation.CustomerEmail,
		"tickets", confirmation.TicketCount,
		"total", confirmation.TotalAmount+" "+confirmation.Currency,
	)
	return nil
}
