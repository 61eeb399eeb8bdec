// Package mail отправляет уведомления по SMTP (wneessen/go-mail).
package mail

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Config содержит параметры SMTP сервера
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// dialer - часть *gomail.Client, которая нужна SMTPSender
type dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// SMTPSender реализует service.Sender поверх SMTP
type SMTPSender struct {
	logger *zap.Logger
	client dialer
	from   string
}

// NewSMTPSender создаёт SMTP клиент. Соединение открывается на каждую отправку.
func NewSMTPSender(logger *zap.Logger, cfg Config) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return newSMTPSender(logger, client, cfg.From), nil
}

func newSMTPSender(logger *zap.Logger, client dialer, from string) *SMTPSender {
	return &SMTPSender{logger: logger, client: client, from: from}
}

// Send отправляет plain text письмо
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	s.logger.Debug("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// NoOpSender - no-op реализация Sender (когда SMTP не настроен)
type NoOpSender struct {
	logger *zap.Logger
}

// NewNoOpSender создаёт no-op sender
func NewNoOpSender(logger *zap.Logger) *NoOpSender {
	return &NoOpSender{logger: logger}
}

// Send ничего не отправляет, только логирует
func (s *NoOpSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("no-op sender: email not sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body_preview", truncate(body, 50)),
	)
	return nil
}

// truncate обрезает строку до maxLen символов (рун), не разрывая UTF-8 последовательности
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
