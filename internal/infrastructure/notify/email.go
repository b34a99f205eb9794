package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/St1cky1/task-tracker/internal/config"
	"github.com/St1cky1/task-tracker/internal/log"
	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

// Sender - отправка готового письма (gomail.Dialer)
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier отправляет письма со ссылкой/токеном сброса пароля
type EmailNotifier struct {
	cfg    config.EmailConfig
	sender Sender
}

func NewEmailNotifier(cfg config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		cfg:    cfg,
		sender: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
	}
}

// WithSender подменяет транспорт (для тестов)
func (n *EmailNotifier) WithSender(sender Sender) *EmailNotifier {
	n.sender = sender
	return n
}

// SendResetToken отправляет токен сброса пароля сотруднику
func (n *EmailNotifier) SendResetToken(ctx context.Context, toEmail, name, token string, expiresAt time.Time) error {
	if !n.cfg.Enabled() {
		log.GetLogger().Warn("email config missing, skip reset notification")
		return nil
	}
	if strings.TrimSpace(toEmail) == "" {
		return errors.New("empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.FromEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "[Task Tracker] Password reset")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nUse this token to reset your password:\n\n%s\n\nThe token expires at %s UTC.\n",
		name, token, expiresAt.UTC().Format("2006-01-02 15:04"),
	))

	if err := n.sender.DialAndSend(m); err != nil {
		return errors.Wrap(err, "send reset email")
	}

	log.GetLogger().WithField("to", toEmail).Info("reset email sent")
	return nil
}
