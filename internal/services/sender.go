package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vmcandles/commerce-api/internal/lib/sl"
	smtplib "github.com/vmcandles/commerce-api/internal/lib/smtp"
)

type Transport interface {
	Connect() (smtplib.Client, error)
	GetSMTPUser() string
}

// SenderService turns queued renewal notices into customer emails.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

func NewSenderService(transport Transport, log *slog.Logger) *SenderService {
	return &SenderService{transport: transport, log: log}
}

// SendRenewalConfirmation handles a subscription.renewed message.
func (s *SenderService) SendRenewalConfirmation(body []byte) error {
	var notice RenewalNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Tu suscripcion V&M Candles fue renovada"
	bodyText := fmt.Sprintf(
		"Hola %s,\n\nTu suscripcion %s fue renovada. El nuevo periodo vence el %s.\n\nGracias por seguir con nosotros.\nV&M Candle Experience",
		notice.FirstName, notice.PlanID, notice.ExpiresAt.Format("02-01-2006"))

	return s.sendEmail([]string{notice.Email}, subject, bodyText)
}

// SendExpiryNotice handles a subscription.expired message.
func (s *SenderService) SendExpiryNotice(body []byte) error {
	var notice RenewalNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Tu suscripcion V&M Candles ha expirado"
	bodyText := fmt.Sprintf(
		"Hola %s,\n\nTu suscripcion %s expiro el %s. Puedes reactivarla desde tu cuenta cuando quieras.\n\nV&M Candle Experience",
		notice.FirstName, notice.PlanID, notice.ExpiresAt.Format("02-01-2006"))

	return s.sendEmail([]string{notice.Email}, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	s.log.Info("sent email", slog.String("subject", subject))
	return client.Quit()
}
