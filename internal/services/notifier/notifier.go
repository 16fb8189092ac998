// Package notifier отправляет письма-квитанции о покупках дней доступа.
// Сообщения приходят из очереди биллинга и уходят через SMTP-транспорт.
package notifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/terramail/terramail-backend/internal/lib/sl"
	"github.com/terramail/terramail-backend/internal/lib/smtp"
	"github.com/terramail/terramail-backend/internal/models"
)

// NotifierService преобразует события покупок в письма.
type NotifierService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewNotifierService создает новый экземпляр NotifierService.
func NewNotifierService(transport smtp.TransportInterface, log *slog.Logger) *NotifierService {
	return &NotifierService{
		transport: transport,
		log:       log,
	}
}

// SendPurchaseReceipt разбирает событие покупки и отправляет квитанцию.
// Используется как обработчик сообщений очереди.
func (s *NotifierService) SendPurchaseReceipt(body []byte) error {
	var event models.PurchaseEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal purchase event", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Квитанция об оплате TerrraMail"
	bodyText := fmt.Sprintf(
		"Здравствуйте!\n\nМы получили вашу оплату %.2f за тариф «%s».\nНа ваш счет зачислено %d дней доступа.\n\nСпасибо, что пользуетесь TerrraMail.",
		event.AmountPaid, event.PlanName, event.DaysAdded)

	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + event.Email,
		"Subject: " + subject,
		"Content-Type: text/plain; charset=utf-8",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to smtp: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			s.log.Warn("failed to close smtp client", sl.Err(closeErr))
		}
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(event.Email); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data stream: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data stream: %w", err)
	}
	if err := client.Quit(); err != nil {
		s.log.Warn("smtp quit failed", sl.Err(err))
	}

	s.log.Info("purchase receipt sent", slog.String("email", event.Email))
	return nil
}
