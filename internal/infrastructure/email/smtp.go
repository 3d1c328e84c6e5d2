// Package email delivers the weekly summary notification over SMTP.
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/forkcast/v1/internal/domain/recommendation"
	"github.com/forkcast/v1/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SMTPSender sends plain-text weekly summaries. When no SMTP host is
// configured every send is a logged no-op, so local environments work
// without a mail relay.
type SMTPSender struct {
	config config.EmailConfig
	logger *zap.Logger
}

// NewSMTPSender creates an SMTP-backed email sender.
func NewSMTPSender(cfg config.EmailConfig, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{config: cfg, logger: logger.Named("email")}
}

// SendWeeklySummary sends the weekly meal set to one recipient.
func (s *SMTPSender) SendWeeklySummary(ctx context.Context, to string, set *recommendation.WeeklyMealSet) error {
	if s.config.SMTPHost == "" {
		s.logger.Info("email disabled, skipping weekly summary", zap.String("to", to))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("Your dinner plan for the week of %s", set.WeekStart.Format("January 2"))
	body := buildSummaryBody(set)

	from := s.config.FromAddress
	headers := []string{
		fmt.Sprintf("From: %s <%s>", s.config.FromName, from),
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
	}
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + body

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send weekly summary to %s: %w", to, err)
	}

	s.logger.Info("weekly summary sent",
		zap.String("to", to),
		zap.Int("suggestions", len(set.Suggestions)))
	return nil
}

func buildSummaryBody(set *recommendation.WeeklyMealSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here is your dinner plan for the week starting %s.\n\n", set.WeekStart.Format("Monday, January 2"))
	for i, s := range set.Suggestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.Title)
		if s.Description != "" {
			fmt.Fprintf(&b, "   %s\n", s.Description)
		}
		if s.Reason != "" {
			fmt.Fprintf(&b, "   Why: %s\n", s.Reason)
		}
		b.WriteString("\n")
	}
	b.WriteString("Enjoy your week!\n")
	return b.String()
}
